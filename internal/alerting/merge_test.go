package alerting_test

import (
	"context"
	"testing"
	"time"

	"github.com/civicwatch/civicwatch/internal/alerting"
	"github.com/civicwatch/civicwatch/internal/database/memstore"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// resolvingStore resolves every alert right after handing it out, as an
// authority acting between lookup and merge would.
type resolvingStore struct {
	*memstore.Store
	resolvedAt time.Time
}

func (s *resolvingStore) FindActiveAlert(ctx context.Context, query *types.ActiveAlertQuery) (*types.Alert, error) {
	alert, err := s.Store.FindActiveAlert(ctx, query)
	if err != nil {
		return nil, err
	}
	if _, err := s.Store.ResolveAlert(ctx, alert.ID, uuid.New(), s.resolvedAt); err != nil {
		return nil, err
	}
	return alert, nil
}

func TestMergeIntoAlertResolvedAfterLookupCreatesFreshAlert(t *testing.T) {
	t.Parallel()
	f := setupService(t)

	var members []*types.Report
	for range 3 {
		members = append(members, f.submit(t))
	}
	alerts := f.store.Alerts()
	require.Len(t, alerts, 1)
	original := alerts[0].ID

	synthesizer := alerting.NewSynthesizer(
		&resolvingStore{Store: f.store, resolvedAt: f.now},
		alerting.NewLocalLocker(), alerting.DefaultParams(),
		func() time.Time { return f.now }, zaptest.NewLogger(t),
	)

	trigger := f.addReport(t)
	alert, err := synthesizer.Synthesize(t.Context(), &alerting.Cluster{
		Report:     trigger,
		Members:    members,
		TotalCount: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.NotEqual(t, original, alert.ID)
	assert.True(t, alert.IsActive)
	assert.Equal(t, 4, alert.ReportCount)

	stale, err := f.store.GetAlert(t.Context(), original)
	require.NoError(t, err)
	assert.False(t, stale.IsActive)
	assert.Equal(t, 3, stale.ReportCount)
	assert.False(t, stale.HasReport(trigger.ID))
}
