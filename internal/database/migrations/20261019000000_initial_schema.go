package migrations

import (
	"context"
	"fmt"

	"github.com/civicwatch/civicwatch/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Report)(nil),
			(*types.Vote)(nil),
			(*types.Alert)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table %T: %w", model, err)
			}
		}

		// Votes disappear with their report
		_, err := db.NewRaw(`
			DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint WHERE conname = 'fk_votes_report'
				) THEN
					ALTER TABLE votes
					ADD CONSTRAINT fk_votes_report
					FOREIGN KEY (report_id) REFERENCES reports (id) ON DELETE CASCADE;
				END IF;
			END $$;
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to add vote foreign key: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Alert)(nil),
			(*types.Vote)(nil),
			(*types.Report)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Cascade().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table %T: %w", model, err)
			}
		}

		return nil
	})
}
