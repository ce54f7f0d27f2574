package dbretry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/civicwatch/civicwatch/internal/database/dbretry"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnReset = errors.New("read tcp 10.0.0.2:5432: connection reset by peer")

func TestIsRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "connection reset", err: errConnReset, expected: true},
		{name: "wrapped broken pipe", err: fmt.Errorf("query: %w", errors.New("write: broken pipe")), expected: true},
		{name: "unexpected eof", err: errors.New("unexpected EOF"), expected: true},
		{name: "domain error", err: types.ErrVoteExists, expected: false},
		{name: "canceled", err: context.Canceled, expected: false},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, dbretry.IsRetryableError(tt.err))
		})
	}
}

func TestConstraintViolationsNeedDriverErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, dbretry.IsUniqueViolation(nil))
	assert.False(t, dbretry.IsUniqueViolation(errors.New("duplicate key value violates unique constraint")))
	assert.False(t, dbretry.IsForeignKeyViolation(types.ErrReportNotFound))
}

func TestOperationRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := dbretry.Operation(t.Context(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errConnReset
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestOperationStopsOnPermanentErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := dbretry.Operation(t.Context(), func(context.Context) (string, error) {
		calls++
		return "", types.ErrVoteExists
	})

	require.ErrorIs(t, err, types.ErrVoteExists)
	assert.Equal(t, 1, calls)
}

func TestNoResultGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	err := dbretry.NoResult(t.Context(), func(context.Context) error {
		calls++
		return errConnReset
	})

	require.ErrorIs(t, err, errConnReset)
	assert.Equal(t, 4, calls)
}
