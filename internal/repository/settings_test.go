package repository

import (
	"errors"
	"testing"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/models"
	"folio_tracker/internal/secrets"
)

func newSettings(t *testing.T) (*SettingsRepository, *secrets.Box) {
	t.Helper()
	box, err := secrets.NewBox("this-is-a-valid-32-character-key", "api")
	if err != nil {
		t.Fatalf("NewBox() error = %v", err)
	}
	return NewSettingsRepository(setupTestDB(t), box), box
}

func TestSettingsRepository_Cash(t *testing.T) {
	repo, _ := newSettings(t)

	if v, err := repo.Cash(); err != nil || v != 0 {
		t.Fatalf("Cash() = %v, %v; want 0, nil", v, err)
	}
	if err := repo.SetCash(1234.56); err != nil {
		t.Fatalf("SetCash() error = %v", err)
	}
	if v, _ := repo.Cash(); v != 1234.56 {
		t.Errorf("Cash() = %v, want 1234.56", v)
	}
}

func TestSettingsRepository_APIKeyEncryptedAtRest(t *testing.T) {
	repo, _ := newSettings(t)

	if err := repo.SetAPIData(models.APIKey, "my-finnhub-key"); err != nil {
		t.Fatalf("SetAPIData() error = %v", err)
	}

	var raw string
	if err := repo.db.QueryRow(`SELECT data FROM api WHERE keyword = ?`, models.APIKey).Scan(&raw); err != nil {
		t.Fatalf("reading raw key: %v", err)
	}
	if !secrets.IsSealed(raw) {
		t.Errorf("stored key = %q, want encrypted value", raw)
	}

	got, err := repo.APIData(models.APIKey)
	if err != nil {
		t.Fatalf("APIData() error = %v", err)
	}
	if got != "my-finnhub-key" {
		t.Errorf("APIData() = %q, want %q", got, "my-finnhub-key")
	}
}

func TestSettingsRepository_SealedKeyWithoutBox(t *testing.T) {
	repo, _ := newSettings(t)
	if err := repo.SetAPIData(models.APIKey, "my-finnhub-key"); err != nil {
		t.Fatalf("SetAPIData() error = %v", err)
	}

	plain := NewSettingsRepository(repo.db, nil)
	got, err := plain.APIData(models.APIKey)
	if !errors.Is(err, secrets.ErrNoKey) {
		t.Fatalf("APIData() = %q, %v; want ErrNoKey", got, err)
	}
	if _, err := plain.API(); !errors.Is(err, secrets.ErrNoKey) {
		t.Errorf("API() error = %v, want ErrNoKey", err)
	}

	// a key stored in plain text still reads without a box
	if err := plain.SetAPIData(models.APIKey, "plain-key"); err != nil {
		t.Fatalf("SetAPIData() error = %v", err)
	}
	if got, err := plain.APIData(models.APIKey); err != nil || got != "plain-key" {
		t.Errorf("APIData() = %q, %v; want plain-key, nil", got, err)
	}
}

func TestSettingsRepository_SetAPIData_UnknownKeyword(t *testing.T) {
	repo, _ := newSettings(t)

	if err := repo.SetAPIData("Bogus", "x"); !apperrors.IsValidation(err) {
		t.Errorf("SetAPIData() error = %v, want validation error", err)
	}
}

func TestSettingsRepository_API_RoundTrip(t *testing.T) {
	repo, _ := newSettings(t)

	defaults, err := repo.API()
	if err != nil {
		t.Fatalf("API() error = %v", err)
	}
	if defaults.StockURL == "" || defaults.NasdaqURL == "" || defaults.NYSEURL == "" {
		t.Errorf("API() defaults = %+v, want seeded URLs", defaults)
	}

	want := models.APISettings{
		StockURL:  "https://example.test/quote?symbol=",
		Key:       "k3y",
		NasdaqURL: "https://example.test/nasdaq.txt",
		NYSEURL:   "https://example.test/nyse.txt",
	}
	if err := repo.SetAPI(want); err != nil {
		t.Fatalf("SetAPI() error = %v", err)
	}
	got, err := repo.API()
	if err != nil {
		t.Fatalf("API() error = %v", err)
	}
	if got != want {
		t.Errorf("API() = %+v, want %+v", got, want)
	}
}

func TestSettingsRepository_Preferences(t *testing.T) {
	repo, _ := newSettings(t)

	p, err := repo.Preferences()
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if p != models.DefaultPreferences() {
		t.Errorf("Preferences() = %+v, want defaults", p)
	}

	p.ClocksDisplayed = true
	p.DecimalPlaces = 3
	p.UpdatesPerMin = 0.5
	if err := repo.SetPreferences(p); err != nil {
		t.Fatalf("SetPreferences() error = %v", err)
	}
	got, _ := repo.Preferences()
	if got != p {
		t.Errorf("Preferences() = %+v, want %+v", got, p)
	}

	// stored as the TRUE/FALSE text keywords
	var raw string
	repo.db.QueryRow(`SELECT data FROM preferences WHERE keyword = ?`, models.PrefClocksDisplayed).Scan(&raw)
	if raw != "TRUE" {
		t.Errorf("Clocks_Displayed = %q, want TRUE", raw)
	}
}

func TestSettingsRepository_Preferences_BadValueKeepsDefault(t *testing.T) {
	repo, _ := newSettings(t)

	if err := repo.SetPreference(models.PrefDecimalPlaces, "lots"); err != nil {
		t.Fatalf("SetPreference() error = %v", err)
	}
	p, _ := repo.Preferences()
	if p.DecimalPlaces != 2 {
		t.Errorf("DecimalPlaces = %d, want default 2", p.DecimalPlaces)
	}
}

func TestSettingsRepository_Views(t *testing.T) {
	repo, _ := newSettings(t)

	v := models.View{Name: models.ViewRSI, Width: 1024, Height: 700, X: 10, Y: 20}
	if err := repo.SaveView(v); err != nil {
		t.Fatalf("SaveView() error = %v", err)
	}
	got, err := repo.View(models.ViewRSI)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if got == nil || *got != v {
		t.Errorf("View() = %+v, want %+v", got, v)
	}

	missing, err := repo.View("nope")
	if err != nil || missing != nil {
		t.Errorf("View(nope) = %+v, %v; want nil, nil", missing, err)
	}

	all, _ := repo.Views()
	if len(all) != 3 {
		t.Errorf("Views() returned %d, want 3", len(all))
	}
}
