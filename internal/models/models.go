// Package models contains the domain models for the folio tracker.
package models

import "time"

// Metal names, in display order.
const (
	Gold      = "gold"
	Silver    = "silver"
	Platinum  = "platinum"
	Palladium = "palladium"
)

// Metals lists every tracked precious metal.
var Metals = []string{Gold, Silver, Platinum, Palladium}

// IsMetal reports whether name is a tracked metal.
func IsMetal(name string) bool {
	for _, m := range Metals {
		if m == name {
			return true
		}
	}
	return false
}

// Equity is a stock position: a ticker and a whole number of shares.
type Equity struct {
	Symbol    string    `json:"symbol"`
	Shares    int64     `json:"shares"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Bullion is a precious metal holding. Premium is the per-ounce amount
// paid over spot.
type Bullion struct {
	Metal   string  `json:"metal"`
	Ounces  float64 `json:"ounces"`
	Premium float64 `json:"premium"`
}

// API settings keywords.
const (
	APIStockURL  = "Stock_URL"
	APIKey       = "URL_KEY"
	APINasdaqURL = "Nasdaq_Symbol_URL"
	APINYSEURL   = "NYSE_Symbol_URL"
)

// APISettings are the finance API endpoints and key.
type APISettings struct {
	StockURL  string `json:"stock_url"`
	Key       string `json:"key"`
	NasdaqURL string `json:"nasdaq_url"`
	NYSEURL   string `json:"nyse_url"`
}

// Preference keywords.
const (
	PrefMainFont         = "Main_Font"
	PrefClocksDisplayed  = "Clocks_Displayed"
	PrefIndicesDisplayed = "Indices_Displayed"
	PrefDecimalPlaces    = "Decimal_Places"
	PrefUpdatesPerMin    = "Updates_Per_Min"
	PrefUpdatesHours     = "Updates_Hours"
)

// Preferences are the user's display and refresh settings.
type Preferences struct {
	MainFont         string  `json:"main_font"`
	ClocksDisplayed  bool    `json:"clocks_displayed"`
	IndicesDisplayed bool    `json:"indices_displayed"`
	DecimalPlaces    int     `json:"decimal_places"`
	UpdatesPerMin    float64 `json:"updates_per_min"`
	UpdatesHours     float64 `json:"updates_hours"`
}

// DefaultPreferences matches the rows seeded by the migrations.
func DefaultPreferences() Preferences {
	return Preferences{
		MainFont:         "Sans 10",
		IndicesDisplayed: true,
		DecimalPlaces:    2,
		UpdatesPerMin:    6,
		UpdatesHours:     1,
	}
}

// View names.
const (
	ViewMain    = "main"
	ViewRSI     = "rsi"
	ViewHistory = "history"
)

// View is the stored geometry of a client view.
type View struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// Symbol is a security ticker and its name from the exchange listings.
type Symbol struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// FetchHistory records one batch of finance API requests.
type FetchHistory struct {
	ID           int64      `json:"id"`
	BatchID      string     `json:"batch_id"`
	Kind         string     `json:"kind"`   // "main", "history", "symbols"
	Status       string     `json:"status"` // "started", "success", "error", "canceled"
	Requests     int        `json:"requests"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationMS   *int64     `json:"duration_ms,omitempty"`
}
