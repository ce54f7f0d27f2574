package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/uptrace/bun"
)

// requiredTables are the tables the report, vote and alert stores query.
var requiredTables = []string{"reports", "votes", "alerts"}

// requiredIndexes back vote uniqueness, cluster detection and active alert lookup.
var requiredIndexes = []string{
	"idx_votes_report_voter",
	"idx_reports_category_time",
	"idx_reports_location",
	"idx_reports_author",
	"idx_alerts_active_category_time",
	"idx_alerts_active_location",
	"idx_alerts_report_ids",
}

// schemaReport lists required objects absent from the database.
type schemaReport struct {
	missingTables  []string
	missingIndexes []string
}

func (r *schemaReport) ok() bool {
	return len(r.missingTables) == 0 && len(r.missingIndexes) == 0
}

// inspectSchema compares the public schema against the required objects.
func inspectSchema(ctx context.Context, db *bun.DB) (*schemaReport, error) {
	var tables []string
	err := db.NewSelect().
		TableExpr("information_schema.tables").
		Column("table_name").
		Where("table_schema = 'public'").
		Where("table_name IN (?)", bun.In(requiredTables)).
		Scan(ctx, &tables)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var indexes []string
	err = db.NewSelect().
		TableExpr("pg_indexes").
		Column("indexname").
		Where("schemaname = 'public'").
		Where("indexname IN (?)", bun.In(requiredIndexes)).
		Scan(ctx, &indexes)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}

	return &schemaReport{
		missingTables:  missing(requiredTables, tables),
		missingIndexes: missing(requiredIndexes, indexes),
	}, nil
}

// missing returns the required names not present, in required order.
func missing(required, present []string) []string {
	var result []string
	for _, name := range required {
		if !slices.Contains(present, name) {
			result = append(result, name)
		}
	}
	return result
}
