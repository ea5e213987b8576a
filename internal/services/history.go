package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/models"
	"folio_tracker/internal/quotes"
	"folio_tracker/internal/repository"
)

// History runs quote batches and records each one in fetch_history.
type History struct {
	repo   *repository.FetchHistoryRepository
	logger *zap.Logger
}

// NewHistory creates a new History. repo may be nil to skip recording.
func NewHistory(repo *repository.FetchHistoryRepository, logger *zap.Logger) *History {
	return &History{repo: repo, logger: logger}
}

// Run executes reqs on b under a fresh batch id.
func (h *History) Run(ctx context.Context, b *quotes.Batch, kind string, reqs []quotes.Request) (map[string][]byte, error) {
	batchID := uuid.NewString()
	log := h.logger.With(zap.String("batch", batchID), zap.String("kind", kind))

	var id int64
	if h.repo != nil {
		var err error
		if id, err = h.repo.Start(batchID, kind, len(reqs)); err != nil {
			log.Warn("recording fetch start", zap.Error(err))
		}
	}

	start := time.Now()
	out, err := b.Run(ctx, reqs)

	status, msg := repository.FetchSuccess, ""
	switch {
	case err == nil:
		log.Debug("fetch complete", zap.Int("requests", len(reqs)), zap.Duration("took", time.Since(start)))
	case apperrors.IsCanceled(err):
		status = repository.FetchCanceled
		log.Info("fetch canceled")
	default:
		status, msg = repository.FetchError, err.Error()
		log.Warn("fetch failed", zap.Error(err))
	}

	if id != 0 {
		if ferr := h.repo.Finish(id, status, msg); ferr != nil {
			log.Warn("recording fetch result", zap.Error(ferr))
		}
	}
	return out, err
}

// Recent returns the latest recorded batches.
func (h *History) Recent(limit int) ([]*models.FetchHistory, error) {
	if h.repo == nil {
		return nil, nil
	}
	return h.repo.Recent(limit)
}

// Prune drops recorded batches started more than maxAge ago.
func (h *History) Prune(maxAge time.Duration) (int64, error) {
	if h.repo == nil {
		return 0, nil
	}
	n, err := h.repo.DeleteOlderThan(time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		h.logger.Debug("pruned fetch history", zap.Int64("removed", n))
	}
	return n, nil
}
