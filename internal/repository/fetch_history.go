package repository

import (
	"database/sql"
	"time"

	"folio_tracker/internal/database"
	"folio_tracker/internal/models"
)

// Fetch statuses.
const (
	FetchStarted  = "started"
	FetchSuccess  = "success"
	FetchError    = "error"
	FetchCanceled = "canceled"
)

// FetchHistoryRepository records finance API batches.
type FetchHistoryRepository struct {
	db *database.DB
}

// NewFetchHistoryRepository creates a new FetchHistoryRepository.
func NewFetchHistoryRepository(db *database.DB) *FetchHistoryRepository {
	return &FetchHistoryRepository{db: db}
}

// Start creates a history entry with status "started" and returns its ID.
func (r *FetchHistoryRepository) Start(batchID, kind string, requests int) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO fetch_history (batch_id, kind, status, requests, started_at)
		VALUES (?, ?, 'started', ?, ?)
	`, batchID, kind, requests, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Finish marks a batch with its final status. errMsg is stored for
// failed batches only.
func (r *FetchHistoryRepository) Finish(id int64, status, errMsg string) error {
	now := time.Now()
	var msg any
	if errMsg != "" {
		msg = errMsg
	}
	_, err := r.db.Exec(`
		UPDATE fetch_history
		SET status = ?, error_message = ?, completed_at = ?,
		    duration_ms = CAST((julianday(?) - julianday(started_at)) * 86400000 AS INTEGER)
		WHERE id = ?
	`, status, msg, now, now, id)
	return err
}

// Recent returns the latest entries, most recent first.
func (r *FetchHistoryRepository) Recent(limit int) ([]*models.FetchHistory, error) {
	rows, err := r.db.Query(`
		SELECT id, batch_id, kind, status, requests, error_message, started_at, completed_at, duration_ms
		FROM fetch_history
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	histories := make([]*models.FetchHistory, 0)
	for rows.Next() {
		h := &models.FetchHistory{}
		var errorMsg sql.NullString
		var completedAt sql.NullTime
		var durationMs sql.NullInt64

		err := rows.Scan(&h.ID, &h.BatchID, &h.Kind, &h.Status, &h.Requests,
			&errorMsg, &h.StartedAt, &completedAt, &durationMs)
		if err != nil {
			return nil, err
		}
		if errorMsg.Valid {
			h.ErrorMessage = errorMsg.String
		}
		if completedAt.Valid {
			h.CompletedAt = &completedAt.Time
		}
		if durationMs.Valid {
			h.DurationMS = &durationMs.Int64
		}
		histories = append(histories, h)
	}
	return histories, rows.Err()
}

// DeleteOlderThan removes entries started before the given time.
func (r *FetchHistoryRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM fetch_history WHERE started_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
