package handlers

import (
	"go.uber.org/zap"

	"folio_tracker/internal/database"
	"folio_tracker/internal/metrics"
	"folio_tracker/internal/middleware"
	"folio_tracker/internal/services"
)

// Rescheduler picks up a changed refresh interval.
type Rescheduler interface {
	Reschedule()
}

// Dependencies holds all handler dependencies.
type Dependencies struct {
	Tracker   *services.Tracker
	Symbols   *services.SymbolService
	RSI       *services.RSIService
	History   *services.History
	Scheduler Rescheduler
	Metrics   *metrics.Metrics
	DB        *database.DB
	Limiter   *middleware.RateLimiter
	Logger    *zap.Logger

	// DemoMode makes the finance API settings read-only.
	DemoMode bool
}

// NewDependencies creates a Dependencies container with a no-op logger.
// Use the With methods to set the rest.
func NewDependencies() *Dependencies {
	return &Dependencies{Logger: zap.NewNop()}
}

// WithTracker sets the portfolio tracker.
func (d *Dependencies) WithTracker(t *services.Tracker) *Dependencies {
	d.Tracker = t
	return d
}

// WithSymbols sets the symbol directory service.
func (d *Dependencies) WithSymbols(s *services.SymbolService) *Dependencies {
	d.Symbols = s
	return d
}

// WithRSI sets the RSI service.
func (d *Dependencies) WithRSI(s *services.RSIService) *Dependencies {
	d.RSI = s
	return d
}

// WithHistory sets the fetch history recorder.
func (d *Dependencies) WithHistory(h *services.History) *Dependencies {
	d.History = h
	return d
}

// WithScheduler sets the refresh scheduler.
func (d *Dependencies) WithScheduler(s Rescheduler) *Dependencies {
	d.Scheduler = s
	return d
}

// WithMetrics sets the Prometheus collectors.
func (d *Dependencies) WithMetrics(m *metrics.Metrics) *Dependencies {
	d.Metrics = m
	return d
}

// WithDB sets the database used by the health check.
func (d *Dependencies) WithDB(db *database.DB) *Dependencies {
	d.DB = db
	return d
}

// WithLimiter sets the API rate limiter.
func (d *Dependencies) WithLimiter(l *middleware.RateLimiter) *Dependencies {
	d.Limiter = l
	return d
}

// WithLogger sets the logger.
func (d *Dependencies) WithLogger(l *zap.Logger) *Dependencies {
	d.Logger = l
	return d
}

// WithDemoMode sets demo mode.
func (d *Dependencies) WithDemoMode(v bool) *Dependencies {
	d.DemoMode = v
	return d
}
