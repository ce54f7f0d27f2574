package main

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		required []string
		present  []string
		want     []string
	}{
		{
			name:     "all present",
			required: []string{"reports", "votes"},
			present:  []string{"votes", "reports"},
		},
		{
			name:     "keeps required order",
			required: []string{"reports", "votes", "alerts"},
			present:  []string{"votes"},
			want:     []string{"reports", "alerts"},
		},
		{
			name:     "empty database",
			required: []string{"alerts"},
			want:     []string{"alerts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, missing(tt.required, tt.present))
		})
	}
}

func TestSchemaReportOK(t *testing.T) {
	t.Parallel()

	assert.True(t, (&schemaReport{}).ok())
	assert.False(t, (&schemaReport{missingIndexes: []string{"idx_votes_report_voter"}}).ok())
}

func TestRequiredIndexesAreCreatedByMigrations(t *testing.T) {
	t.Parallel()

	files, err := filepath.Glob(filepath.Join("..", "..", "internal", "database", "migrations", "*.go"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	created := regexp.MustCompile(`CREATE (?:UNIQUE )?INDEX IF NOT EXISTS (\w+)`)
	tables := regexp.MustCompile(`\(\*types\.(\w+)\)\(nil\)`)

	var indexes []string
	var models []string
	for _, file := range files {
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		for _, match := range created.FindAllStringSubmatch(string(data), -1) {
			indexes = append(indexes, match[1])
		}
		for _, match := range tables.FindAllStringSubmatch(string(data), -1) {
			models = append(models, match[1])
		}
	}

	assert.Empty(t, missing(requiredIndexes, indexes))
	assert.Len(t, requiredTables, 3)
	assert.Subset(t, models, []string{"Report", "Vote", "Alert"})
}
