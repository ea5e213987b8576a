package repository

import (
	"database/sql"
	"fmt"
	"strconv"

	"folio_tracker/internal/database"
	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/models"
	"folio_tracker/internal/secrets"
)

// SettingsRepository handles the single-row and keyword tables: cash,
// API settings, preferences and view geometry.
type SettingsRepository struct {
	db  *database.DB
	box *secrets.Box
}

// NewSettingsRepository creates a new SettingsRepository. When box is nil
// the API key is stored in plain text.
func NewSettingsRepository(db *database.DB, box *secrets.Box) *SettingsRepository {
	return &SettingsRepository{db: db, box: box}
}

// Cash returns the cash balance.
func (r *SettingsRepository) Cash() (float64, error) {
	var v float64
	err := r.db.QueryRow(`SELECT value FROM cash WHERE id = 1`).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return v, err
}

// SetCash stores the cash balance.
func (r *SettingsRepository) SetCash(v float64) error {
	_, err := r.db.Exec(`
		INSERT INTO cash (id, value) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET value = excluded.value
	`, v)
	return err
}

// SetAPIData stores one API keyword. The key is encrypted at rest.
func (r *SettingsRepository) SetAPIData(keyword, data string) error {
	switch keyword {
	case models.APIStockURL, models.APIKey, models.APINasdaqURL, models.APINYSEURL:
	default:
		return apperrors.ValidationField("keyword", "unknown API keyword "+keyword)
	}
	if keyword == models.APIKey && r.box != nil {
		sealed, err := r.box.Seal(data)
		if err != nil {
			return fmt.Errorf("encrypting API key: %w", err)
		}
		data = sealed
	}
	return upsertKeyword(r.db, "api", keyword, data)
}

// APIData returns one API keyword, decrypted. Unknown keywords are empty.
func (r *SettingsRepository) APIData(keyword string) (string, error) {
	data, err := r.keyword("api", keyword)
	if err != nil {
		return "", err
	}
	if keyword != models.APIKey {
		return data, nil
	}
	if r.box == nil {
		if secrets.IsSealed(data) {
			return "", secrets.ErrNoKey
		}
		return data, nil
	}
	return r.box.Open(data)
}

// API returns every API setting.
func (r *SettingsRepository) API() (models.APISettings, error) {
	var s models.APISettings
	for kw, dst := range map[string]*string{
		models.APIStockURL:  &s.StockURL,
		models.APIKey:       &s.Key,
		models.APINasdaqURL: &s.NasdaqURL,
		models.APINYSEURL:   &s.NYSEURL,
	} {
		v, err := r.APIData(kw)
		if err != nil {
			return s, fmt.Errorf("reading %s: %w", kw, err)
		}
		*dst = v
	}
	return s, nil
}

// SetAPI stores every API setting in one transaction.
func (r *SettingsRepository) SetAPI(s models.APISettings) error {
	key := s.Key
	if r.box != nil {
		sealed, err := r.box.Seal(key)
		if err != nil {
			return fmt.Errorf("encrypting API key: %w", err)
		}
		key = sealed
	}
	return r.db.InTx(func(tx *sql.Tx) error {
		for kw, v := range map[string]string{
			models.APIStockURL:  s.StockURL,
			models.APIKey:       key,
			models.APINasdaqURL: s.NasdaqURL,
			models.APINYSEURL:   s.NYSEURL,
		} {
			if err := upsertKeyword(tx, "api", kw, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetPreference stores one preference keyword as text.
func (r *SettingsRepository) SetPreference(keyword, data string) error {
	return upsertKeyword(r.db, "preferences", keyword, data)
}

// Preferences reads every preference, using defaults for missing or
// unparsable values.
func (r *SettingsRepository) Preferences() (models.Preferences, error) {
	p := models.DefaultPreferences()

	rows, err := r.db.Query(`SELECT keyword, data FROM preferences`)
	if err != nil {
		return p, err
	}
	defer rows.Close()

	for rows.Next() {
		var kw, data string
		if err := rows.Scan(&kw, &data); err != nil {
			return p, err
		}
		switch kw {
		case models.PrefMainFont:
			p.MainFont = data
		case models.PrefClocksDisplayed:
			p.ClocksDisplayed = data == "TRUE"
		case models.PrefIndicesDisplayed:
			p.IndicesDisplayed = data == "TRUE"
		case models.PrefDecimalPlaces:
			if n, err := strconv.Atoi(data); err == nil {
				p.DecimalPlaces = n
			}
		case models.PrefUpdatesPerMin:
			if f, err := strconv.ParseFloat(data, 64); err == nil {
				p.UpdatesPerMin = f
			}
		case models.PrefUpdatesHours:
			if f, err := strconv.ParseFloat(data, 64); err == nil {
				p.UpdatesHours = f
			}
		}
	}
	return p, rows.Err()
}

// SetPreferences stores every preference in one transaction.
func (r *SettingsRepository) SetPreferences(p models.Preferences) error {
	return r.db.InTx(func(tx *sql.Tx) error {
		for kw, v := range map[string]string{
			models.PrefMainFont:         p.MainFont,
			models.PrefClocksDisplayed:  boolString(p.ClocksDisplayed),
			models.PrefIndicesDisplayed: boolString(p.IndicesDisplayed),
			models.PrefDecimalPlaces:    strconv.Itoa(p.DecimalPlaces),
			models.PrefUpdatesPerMin:    strconv.FormatFloat(p.UpdatesPerMin, 'f', -1, 64),
			models.PrefUpdatesHours:     strconv.FormatFloat(p.UpdatesHours, 'f', -1, 64),
		} {
			if err := upsertKeyword(tx, "preferences", kw, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveView stores the geometry of a view.
func (r *SettingsRepository) SaveView(v models.View) error {
	_, err := r.db.Exec(`
		INSERT INTO views (name, width, height, x, y) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			width = excluded.width, height = excluded.height, x = excluded.x, y = excluded.y
	`, v.Name, v.Width, v.Height, v.X, v.Y)
	return err
}

// View retrieves a view by name. It returns nil if there is none.
func (r *SettingsRepository) View(name string) (*models.View, error) {
	v := &models.View{}
	err := r.db.QueryRow(`SELECT name, width, height, x, y FROM views WHERE name = ?`, name).
		Scan(&v.Name, &v.Width, &v.Height, &v.X, &v.Y)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Views retrieves every stored view ordered by name.
func (r *SettingsRepository) Views() ([]models.View, error) {
	rows, err := r.db.Query(`SELECT name, width, height, x, y FROM views ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]models.View, 0)
	for rows.Next() {
		var v models.View
		if err := rows.Scan(&v.Name, &v.Width, &v.Height, &v.X, &v.Y); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *SettingsRepository) keyword(table, keyword string) (string, error) {
	var data string
	err := r.db.QueryRow(`SELECT data FROM `+table+` WHERE keyword = ?`, keyword).Scan(&data)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return data, err
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// upsertKeyword writes a keyword row; table is always a package constant.
func upsertKeyword(db execer, table, keyword, data string) error {
	_, err := db.Exec(`
		INSERT INTO `+table+` (keyword, data) VALUES (?, ?)
		ON CONFLICT(keyword) DO UPDATE SET data = excluded.data
	`, keyword, data)
	return err
}

func boolString(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
