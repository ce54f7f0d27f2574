package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			-- One vote per voter per report
			CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_report_voter
			ON votes (report_id, voter_id);

			-- Cluster detection
			CREATE INDEX IF NOT EXISTS idx_reports_category_time
			ON reports (category, created_at DESC);

			CREATE INDEX IF NOT EXISTS idx_reports_location
			ON reports (latitude, longitude);

			CREATE INDEX IF NOT EXISTS idx_reports_author
			ON reports (author_id);

			-- Active alert lookup
			CREATE INDEX IF NOT EXISTS idx_alerts_active_category_time
			ON alerts (category, created_at DESC)
			WHERE is_active = true;

			CREATE INDEX IF NOT EXISTS idx_alerts_active_location
			ON alerts (latitude, longitude)
			WHERE is_active = true;

			CREATE INDEX IF NOT EXISTS idx_alerts_report_ids
			ON alerts USING GIN (report_ids);
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			DROP INDEX IF EXISTS idx_alerts_report_ids;
			DROP INDEX IF EXISTS idx_alerts_active_location;
			DROP INDEX IF EXISTS idx_alerts_active_category_time;
			DROP INDEX IF EXISTS idx_reports_author;
			DROP INDEX IF EXISTS idx_reports_location;
			DROP INDEX IF EXISTS idx_reports_category_time;
			DROP INDEX IF EXISTS idx_votes_report_voter;
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop indexes: %w", err)
		}

		return nil
	})
}
