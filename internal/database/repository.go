package database

import (
	"github.com/civicwatch/civicwatch/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	report *models.ReportModel
	vote   *models.VoteModel
	alert  *models.AlertModel
	lock   *models.LockModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		report: models.NewReport(db, logger),
		vote:   models.NewVote(db, logger),
		alert:  models.NewAlert(db, logger),
		lock:   models.NewLock(db, logger),
	}
}

// Report returns the report model repository.
func (r *Repository) Report() *models.ReportModel {
	return r.report
}

// Vote returns the vote model repository.
func (r *Repository) Vote() *models.VoteModel {
	return r.vote
}

// Alert returns the alert model repository.
func (r *Repository) Alert() *models.AlertModel {
	return r.alert
}

// Lock returns the advisory lock model.
func (r *Repository) Lock() *models.LockModel {
	return r.lock
}
