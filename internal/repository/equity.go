package repository

import (
	"database/sql"
	"time"

	"folio_tracker/internal/database"
	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/models"
)

// EquityRepository handles equity database operations.
type EquityRepository struct {
	db *database.DB
}

// NewEquityRepository creates a new EquityRepository.
func NewEquityRepository(db *database.DB) *EquityRepository {
	return &EquityRepository{db: db}
}

// Add inserts an equity or replaces the share count of an existing one.
func (r *EquityRepository) Add(symbol string, shares int64) error {
	_, err := r.db.Exec(`
		INSERT INTO equities (symbol, shares, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET shares = excluded.shares
	`, symbol, shares, time.Now())
	return err
}

// Remove deletes an equity.
func (r *EquityRepository) Remove(symbol string) error {
	result, err := r.db.Exec(`DELETE FROM equities WHERE symbol = ?`, symbol)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.NotFound("equity " + symbol)
	}
	return nil
}

// RemoveAll deletes every equity and returns how many were removed.
func (r *EquityRepository) RemoveAll() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM equities`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Get retrieves an equity by symbol. It returns nil if there is none.
func (r *EquityRepository) Get(symbol string) (*models.Equity, error) {
	row := r.db.QueryRow(`SELECT symbol, shares, created_at FROM equities WHERE symbol = ?`, symbol)

	e, err := scanEquity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// List retrieves all equities ordered by symbol.
func (r *EquityRepository) List() ([]*models.Equity, error) {
	rows, err := r.db.Query(`SELECT symbol, shares, created_at FROM equities ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	equities := make([]*models.Equity, 0)
	for rows.Next() {
		e, err := scanEquity(rows)
		if err != nil {
			return nil, err
		}
		equities = append(equities, e)
	}
	return equities, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEquity(s scanner) (*models.Equity, error) {
	e := &models.Equity{}
	var createdAt sql.NullTime
	if err := s.Scan(&e.Symbol, &e.Shares, &createdAt); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		e.CreatedAt = createdAt.Time
	}
	return e, nil
}
