package repository

import (
	"database/sql"
	"time"

	"folio_tracker/internal/database"
	"folio_tracker/internal/models"
)

// SymbolRepository stores the exchange symbol directory.
type SymbolRepository struct {
	db *database.DB
}

// NewSymbolRepository creates a new SymbolRepository.
func NewSymbolRepository(db *database.DB) *SymbolRepository {
	return &SymbolRepository{db: db}
}

// Replace swaps the stored directory for symbols and records the fetch time.
func (r *SymbolRepository) Replace(symbols []models.Symbol, fetchedAt time.Time) error {
	return r.db.InTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM symbol_names`); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO symbol_names (symbol, name) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, s := range symbols {
			if _, err := stmt.Exec(s.Symbol, s.Name); err != nil {
				return err
			}
		}
		_, err = tx.Exec(`
			INSERT INTO symbol_meta (id, fetched_at) VALUES (1, ?)
			ON CONFLICT(id) DO UPDATE SET fetched_at = excluded.fetched_at
		`, fetchedAt)
		return err
	})
}

// List returns the stored directory ordered by symbol and the time it was
// fetched. The time is zero when nothing was ever stored.
func (r *SymbolRepository) List() ([]models.Symbol, time.Time, error) {
	var fetchedAt time.Time
	err := r.db.QueryRow(`SELECT fetched_at FROM symbol_meta WHERE id = 1`).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	rows, err := r.db.Query(`SELECT symbol, name FROM symbol_names ORDER BY symbol`)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()

	symbols := make([]models.Symbol, 0)
	for rows.Next() {
		var s models.Symbol
		if err := rows.Scan(&s.Symbol, &s.Name); err != nil {
			return nil, time.Time{}, err
		}
		symbols = append(symbols, s)
	}
	return symbols, fetchedAt, rows.Err()
}

// Name returns the security name of symbol, or "" if unknown.
func (r *SymbolRepository) Name(symbol string) (string, error) {
	var name string
	err := r.db.QueryRow(`SELECT name FROM symbol_names WHERE symbol = ?`, symbol).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return name, err
}
