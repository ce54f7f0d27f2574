package alerting_test

import (
	"testing"

	"github.com/civicwatch/civicwatch/internal/alerting"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
)

func TestSeverityFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count    int
		expected enum.AlertSeverity
	}{
		{count: 1, expected: enum.AlertSeverityLow},
		{count: 3, expected: enum.AlertSeverityLow},
		{count: 4, expected: enum.AlertSeverityLow},
		{count: 5, expected: enum.AlertSeverityMedium},
		{count: 6, expected: enum.AlertSeverityMedium},
		{count: 7, expected: enum.AlertSeverityHigh},
		{count: 9, expected: enum.AlertSeverityHigh},
		{count: 10, expected: enum.AlertSeverityCritical},
		{count: 250, expected: enum.AlertSeverityCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, alerting.SeverityFor(tt.count), "count %d", tt.count)
	}
}
