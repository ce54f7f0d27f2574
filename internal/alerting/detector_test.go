package alerting_test

import (
	"testing"
	"time"

	"github.com/civicwatch/civicwatch/internal/alerting"
	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFindCluster(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		trigger   []reportOption
		neighbors [][]reportOption
		expected  int
	}{
		{
			name:      "lone report",
			expected:  1,
			neighbors: nil,
		},
		{
			name:      "urgent neighbors within radius",
			neighbors: [][]reportOption{{withOffset(300, 0)}, {withOffset(0, -900), withPriority(enum.ReportPriorityCritical)}},
			expected:  3,
		},
		{
			name:      "verified low priority neighbor qualifies",
			neighbors: [][]reportOption{{withPriority(enum.ReportPriorityLow), verified()}},
			expected:  2,
		},
		{
			name:      "unverified low priority neighbor is ignored",
			neighbors: [][]reportOption{{withPriority(enum.ReportPriorityMedium)}},
			expected:  1,
		},
		{
			name:      "other category is ignored",
			neighbors: [][]reportOption{{withCategory(enum.ReportCategoryHazard)}},
			expected:  1,
		},
		{
			name:      "outside the radius is ignored",
			neighbors: [][]reportOption{{withOffset(1100, 0)}},
			expected:  1,
		},
		{
			name:      "outside the window is ignored",
			neighbors: [][]reportOption{{withAge(25 * time.Hour)}},
			expected:  1,
		},
		{
			name:      "unqualified trigger never clusters",
			trigger:   []reportOption{withPriority(enum.ReportPriorityLow)},
			neighbors: [][]reportOption{{}, {}, {}},
			expected:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := setupService(t)

			for _, opts := range tt.neighbors {
				f.addReport(t, opts...)
			}
			trigger := f.addReport(t, tt.trigger...)

			detector := alerting.NewDetector(
				f.store, alerting.DefaultParams(), func() time.Time { return f.now }, zaptest.NewLogger(t),
			)

			cluster, err := detector.FindCluster(t.Context(), trigger)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cluster.TotalCount)
			assert.Len(t, cluster.ReportIDs(), tt.expected)
			assert.Equal(t, trigger.ID, cluster.ReportIDs()[0])
			assert.NotContains(t, memberIDs(cluster.Members), trigger.ID.String())
		})
	}
}

func memberIDs(reports []*types.Report) []string {
	ids := make([]string, 0, len(reports))
	for _, report := range reports {
		ids = append(ids, report.ID.String())
	}
	return ids
}
