package rest

import (
	"net/http"

	"github.com/civicwatch/civicwatch/internal/rest/handler"
	"github.com/civicwatch/civicwatch/internal/rest/middleware/identity"
	"github.com/civicwatch/civicwatch/internal/rest/middleware/ratelimit"
	"github.com/civicwatch/civicwatch/internal/setup"
	"github.com/civicwatch/civicwatch/internal/setup/config"
	"github.com/klauspost/compress/gzhttp"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
)

// Server implements the REST API service.
type Server struct {
	reportHandler *handler.ReportHandler
	voteHandler   *handler.VoteHandler
	alertHandler  *handler.AlertHandler
}

// NewServer creates a new REST API server.
func NewServer(services *setup.Services, config *config.APIConfig, logger *zap.Logger) http.Handler {
	server := &Server{
		reportHandler: handler.NewReportHandler(services.Reports, logger),
		voteHandler:   handler.NewVoteHandler(services.Ledger, logger),
		alertHandler:  handler.NewAlertHandler(services.Alerts, logger),
	}

	identityMiddleware := identity.New(logger)
	rateLimiter := ratelimit.New(&config.RateLimit, logger)

	router := bunrouter.New()

	router.GET("/healthz", func(w http.ResponseWriter, _ bunrouter.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	})

	// Identity runs first so the rate limiter can key on the caller
	router.Use(
		identityMiddleware.AsRESTMiddleware,
		rateLimiter.AsRESTMiddleware,
	).WithGroup("/v1", func(g *bunrouter.Group) {
		g.POST("/reports", server.reportHandler.SubmitReport)
		g.GET("/reports/:id", server.reportHandler.GetReport)

		g.PUT("/reports/:id/vote", server.voteHandler.CastVote)
		g.DELETE("/reports/:id/vote", server.voteHandler.RetractVote)
		g.GET("/reports/:id/vote", server.voteHandler.GetVote)
		g.GET("/reports/:id/stats", server.voteHandler.GetStats)

		g.GET("/alerts", server.alertHandler.ListAlerts)
		g.GET("/alerts/:id", server.alertHandler.GetAlert)
		g.POST("/alerts/:id/resolve", server.alertHandler.ResolveAlert)
	})

	return gzhttp.GzipHandler(router)
}
