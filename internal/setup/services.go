package setup

import (
	"context"

	"github.com/civicwatch/civicwatch/internal/alerting"
	"github.com/civicwatch/civicwatch/internal/database"
	"github.com/civicwatch/civicwatch/internal/database/memstore"
	"github.com/civicwatch/civicwatch/internal/reporting"
	"github.com/civicwatch/civicwatch/internal/setup/config"
	"github.com/civicwatch/civicwatch/internal/voting"
	"go.uber.org/zap"
)

// ReportStore covers every report operation the core needs.
type ReportStore interface {
	voting.ReportStore
	reporting.ReportStore
	alerting.ReportFinder
}

// Stores groups the persistence backends used by the core services.
type Stores struct {
	Reports ReportStore
	Votes   voting.VoteStore
	Alerts  alerting.AlertStore
	Locker  alerting.Locker
}

// PostgresStores returns stores backed by the database client.
func PostgresStores(db database.Client) Stores {
	repo := db.Model()
	return Stores{
		Reports: repo.Report(),
		Votes:   repo.Vote(),
		Alerts:  repo.Alert(),
		Locker:  repo.Lock(),
	}
}

// MemoryStores returns stores kept in process memory.
func MemoryStores(store *memstore.Store) Stores {
	return Stores{
		Reports: store,
		Votes:   store,
		Alerts:  store,
		Locker:  alerting.NewLocalLocker(),
	}
}

// Services bundles the report, voting and alerting services.
type Services struct {
	Reports    *reporting.Service
	Ledger     *voting.Ledger
	Alerts     *alerting.Service
	dispatcher alerting.Dispatcher
}

// NewPoolDispatcher creates the background dispatcher sized from config.
func NewPoolDispatcher(ctx context.Context, cfg *config.Alerting, logger *zap.Logger) *alerting.PoolDispatcher {
	return alerting.NewPoolDispatcher(ctx, cfg.MaxConcurrent, cfg.QueueSize, logger)
}

// NewServices wires the core services together. The stats cache may be nil.
func NewServices(
	cfg *config.CommonConfig,
	stores Stores,
	cache voting.StatsCache,
	dispatcher alerting.Dispatcher,
	logger *zap.Logger,
) *Services {
	params := alerting.Params{
		ClusterRadiusMeters: cfg.Alerting.ClusterRadiusMeters,
		TimeWindow:          cfg.Alerting.TimeWindow(),
		AlertThreshold:      cfg.Alerting.AlertThreshold,
	}

	detector := alerting.NewDetector(stores.Reports, params, nil, logger)
	synthesizer := alerting.NewSynthesizer(stores.Alerts, stores.Locker, params, nil, logger)
	alerts := alerting.NewService(
		detector, synthesizer, stores.Alerts, dispatcher, cfg.Alerting.DetectionTimeoutDuration(), logger,
	)

	policy := voting.Policy{
		VerificationThreshold: cfg.Voting.VerificationThreshold,
		FlagThreshold:         cfg.Voting.FlagThreshold,
	}

	return &Services{
		Reports:    reporting.NewService(stores.Reports, alerts, logger),
		Ledger:     voting.NewLedger(stores.Reports, stores.Votes, policy, cfg.Voting.ProximityLimitKm, cache, alerts, logger),
		Alerts:     alerts,
		dispatcher: dispatcher,
	}
}

// Close waits for in-flight alert detections to finish.
func (s *Services) Close() {
	s.dispatcher.Close()
}
