package repository

import (
	"database/sql"

	"folio_tracker/internal/database"
	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/models"
)

// BullionRepository handles precious metal holdings.
type BullionRepository struct {
	db *database.DB
}

// NewBullionRepository creates a new BullionRepository.
func NewBullionRepository(db *database.DB) *BullionRepository {
	return &BullionRepository{db: db}
}

// Set stores the ounces and per-ounce premium held of a metal.
func (r *BullionRepository) Set(b models.Bullion) error {
	if !models.IsMetal(b.Metal) {
		return apperrors.ValidationField("metal", "unknown metal "+b.Metal)
	}
	_, err := r.db.Exec(`
		INSERT INTO bullion (metal, ounces, premium) VALUES (?, ?, ?)
		ON CONFLICT(metal) DO UPDATE SET ounces = excluded.ounces, premium = excluded.premium
	`, b.Metal, b.Ounces, b.Premium)
	return err
}

// Get retrieves one metal. Metals never stored read as zero.
func (r *BullionRepository) Get(metal string) (models.Bullion, error) {
	b := models.Bullion{Metal: metal}
	err := r.db.QueryRow(`SELECT ounces, premium FROM bullion WHERE metal = ?`, metal).Scan(&b.Ounces, &b.Premium)
	if err == sql.ErrNoRows {
		return b, nil
	}
	return b, err
}

// List returns every tracked metal in display order.
func (r *BullionRepository) List() ([]models.Bullion, error) {
	rows, err := r.db.Query(`SELECT metal, ounces, premium FROM bullion`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := make(map[string]models.Bullion)
	for rows.Next() {
		var b models.Bullion
		if err := rows.Scan(&b.Metal, &b.Ounces, &b.Premium); err != nil {
			return nil, err
		}
		stored[b.Metal] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]models.Bullion, 0, len(models.Metals))
	for _, m := range models.Metals {
		b, ok := stored[m]
		if !ok {
			b = models.Bullion{Metal: m}
		}
		out = append(out, b)
	}
	return out, nil
}
