// Package sweeper runs the trash retention sweep, either on demand from the
// maintenance endpoint or periodically on a ticker, and hands every run to
// the configured audit sinks.
package sweeper

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Triggers recorded in reports.
const (
	TriggerEndpoint  = "endpoint"
	TriggerScheduler = "scheduler"
	TriggerCLI       = "cli"
)

// Trash is the part of the trash service the sweeper drives.
type Trash interface {
	SweepExpired(ctx context.Context, now time.Time) (*models.SweepResult, error)
}

// TokenPruner removes expired refresh tokens after each sweep.
type TokenPruner interface {
	PruneRefreshTokens(ctx context.Context) (int64, error)
}

// Report describes one sweep run.
type Report struct {
	Trigger      string              `json:"trigger"`
	StartedAt    time.Time           `json:"startedAt"`
	FinishedAt   time.Time           `json:"finishedAt"`
	DeletedCount int64               `json:"deletedCount"`
	DeletedNotes []models.PurgedNote `json:"deletedNotes"`
	Error        string              `json:"error,omitempty"`
}

// Runner executes sweeps and reports them.
type Runner struct {
	trash  Trash
	pruner TokenPruner
	sinks  []AuditSink
	logger logging.Logger
	now    func() time.Time
}

// NewRunner builds a Runner. pruner may be nil.
func NewRunner(trash Trash, pruner TokenPruner, logger logging.Logger, sinks ...AuditSink) *Runner {
	return &Runner{
		trash:  trash,
		pruner: pruner,
		sinks:  sinks,
		logger: logger.With("module", "sweeper"),
		now:    time.Now,
	}
}

// Run sweeps once. The error of the sweep itself is returned; sink and
// token pruning failures are only logged.
func (r *Runner) Run(ctx context.Context, trigger string) (*models.SweepResult, error) {
	report := Report{Trigger: trigger, StartedAt: r.now(), DeletedNotes: []models.PurgedNote{}}

	res, err := r.trash.SweepExpired(ctx, report.StartedAt)
	report.FinishedAt = r.now()
	if err != nil {
		report.Error = err.Error()
		r.logger.Error(ctx, "sweep failed", "trigger", trigger, "error", err)
	} else {
		report.DeletedCount = res.DeletedCount
		report.DeletedNotes = res.DeletedNotes
		if res.DeletedCount > 0 {
			r.logger.Info(ctx, "sweep completed", "trigger", trigger, "deleted", res.DeletedCount)
		} else {
			r.logger.Debug(ctx, "sweep completed, nothing expired", "trigger", trigger)
		}
	}

	for _, s := range r.sinks {
		if serr := s.Record(ctx, report); serr != nil {
			r.logger.Warn(ctx, "audit sink failed", "sink", s.Name(), "error", serr)
		}
	}

	if err == nil && r.pruner != nil {
		if n, perr := r.pruner.PruneRefreshTokens(ctx); perr != nil {
			r.logger.Warn(ctx, "pruning refresh tokens failed", "error", perr)
		} else if n > 0 {
			r.logger.Debug(ctx, "expired refresh tokens pruned", "count", n)
		}
	}

	return res, err
}
