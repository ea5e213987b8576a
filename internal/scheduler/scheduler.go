// Package scheduler refreshes the portfolio on a timer while the market
// is open and for a while after it closes.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/logging"
	"folio_tracker/internal/services"
)

// Refresher is the part of the tracker the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) (services.Packet, error)
	IsClosed() bool
	Flags() services.Flags
	UpdateSchedule() (every, afterClose time.Duration)
}

// Clock reports how long ago the market closed.
type Clock interface {
	SinceClose(t time.Time) time.Duration
}

// Scheduler runs refreshes on a cron schedule.
type Scheduler struct {
	tracker Refresher
	clock   Clock
	logger  *zap.Logger
	cron    *cron.Cron
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	entry         cron.EntryID
	every         time.Duration
	closedFetched bool
}

// New creates a Scheduler. Call Start to begin.
func New(tracker Refresher, clock Clock, logger *zap.Logger) *Scheduler {
	cl := logging.CronLogger{L: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tracker: tracker,
		clock:   clock,
		logger:  logger,
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start schedules the refresh job and runs the first refresh right away.
func (s *Scheduler) Start() {
	s.Reschedule()
	s.cron.Start()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Tick()
	}()
}

// Reschedule picks up a changed refresh interval.
func (s *Scheduler) Reschedule() {
	every, _ := s.tracker.UpdateSchedule()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry != 0 && every == s.every {
		return
	}
	if s.entry != 0 {
		s.cron.Remove(s.entry)
	}
	s.every = every
	s.entry = s.cron.Schedule(cron.Every(every), cron.FuncJob(s.Tick))
	s.logger.Info("refresh scheduled", zap.Duration("every", every))
}

// Stop halts the schedule, cancels a running refresh and waits for it.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	s.cancel()
	<-done.Done()
	s.wg.Wait()
}

// Tick refreshes when the market is open, within the after-hours window,
// or once after the market has closed.
func (s *Scheduler) Tick() {
	if s.tracker.Flags().Fetching {
		s.logger.Debug("refresh skipped, fetch in progress")
		return
	}
	if !s.due() {
		return
	}

	_, err := s.tracker.Refresh(s.ctx)
	switch {
	case err == nil:
	case apperrors.IsConflict(err), apperrors.IsCanceled(err):
		s.logger.Debug("refresh did not complete", zap.Error(err))
	default:
		s.logger.Warn("scheduled refresh failed", zap.Error(err))
	}
}

func (s *Scheduler) due() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tracker.IsClosed() {
		s.closedFetched = false
		return true
	}

	_, after := s.tracker.UpdateSchedule()
	if since := s.clock.SinceClose(s.now()); since > 0 && since < after {
		return true
	}
	if !s.closedFetched {
		s.closedFetched = true
		return true
	}
	return false
}
