package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/civicwatch/civicwatch/internal/database/types/enum"
	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "sim",
		Usage: "Replay an incident scenario against in-memory stores",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "reports",
				Usage: "number of reports to submit around the center",
				Value: 5,
			},
			&cli.IntFlag{
				Name:  "voters",
				Usage: "number of neighbors confirming the first report",
				Value: 10,
			},
			&cli.FloatFlag{
				Name:  "lat",
				Usage: "latitude of the incident area",
				Value: 8.4657,
			},
			&cli.FloatFlag{
				Name:  "lng",
				Usage: "longitude of the incident area",
				Value: -13.2317,
			},
			&cli.FloatFlag{
				Name:  "spread",
				Usage: "maximum distance in meters between a report and the center",
				Value: 400,
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "report category",
				Value: enum.ReportCategoryCrime.String(),
			},
			&cli.StringFlag{
				Name:  "priority",
				Usage: "report priority",
				Value: enum.ReportPriorityHigh.String(),
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "random seed for report placement",
				Value: 1,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			category, err := enum.ReportCategoryString(c.String("category"))
			if err != nil {
				return fmt.Errorf("invalid category: %w", err)
			}

			priority, err := enum.ReportPriorityString(c.String("priority"))
			if err != nil {
				return fmt.Errorf("invalid priority: %w", err)
			}

			logger, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			scenario := &Scenario{
				Center:   geo.Point{Lat: c.Float("lat"), Lng: c.Float("lng")},
				Spread:   c.Float("spread"),
				Reports:  int(c.Int("reports")),
				Voters:   int(c.Int("voters")),
				Category: category,
				Priority: priority,
				Seed:     uint64(c.Int("seed")),
			}

			return scenario.Run(ctx, logger)
		},
	}

	return app.Run(context.Background(), os.Args)
}
