package services

import (
	"time"

	"folio_tracker/internal/indicators"
	"folio_tracker/internal/models"
)

// Index is a tracked market index or crypto pair.
type Index struct {
	Symbol string
	Name   string
}

// Indices are fetched with every refresh.
var Indices = []Index{
	{"^DJI", "Dow"},
	{"^IXIC", "Nasdaq"},
	{"^GSPC", "S&P 500"},
	{"BTC-USD", "Bitcoin"},
}

// metalSymbols maps each metal to its front-month futures ticker.
var metalSymbols = map[string]string{
	models.Gold:      "GC=F",
	models.Silver:    "SI=F",
	models.Platinum:  "PL=F",
	models.Palladium: "PA=F",
}

// IndexQuote is the latest value of an index.
type IndexQuote struct {
	Symbol    string           `json:"symbol"`
	Name      string           `json:"name"`
	Price     float64          `json:"price"`
	PrevClose float64          `json:"prev_close"`
	Change    float64          `json:"change"`
	Gain      float64          `json:"gain"`
	Trend     indicators.Trend `json:"trend"`
	Valid     bool             `json:"valid"`
}

// MetalQuote is a metal holding valued at the spot price. Value includes
// the per-ounce premium.
type MetalQuote struct {
	Metal       string           `json:"metal"`
	Ounces      float64          `json:"ounces"`
	Premium     float64          `json:"premium"`
	Spot        float64          `json:"spot"`
	PrevClose   float64          `json:"prev_close"`
	Change      float64          `json:"change"`
	Gain        float64          `json:"gain"`
	Value       float64          `json:"value"`
	ChangeValue float64          `json:"change_value"`
	Trend       indicators.Trend `json:"trend"`
	Valid       bool             `json:"valid"`
}

// Position is an equity holding valued at its latest quote.
type Position struct {
	Symbol      string           `json:"symbol"`
	Name        string           `json:"name,omitempty"`
	Shares      int64            `json:"shares"`
	Price       float64          `json:"price"`
	PrevClose   float64          `json:"prev_close"`
	Open        float64          `json:"open"`
	High        float64          `json:"high"`
	Low         float64          `json:"low"`
	Change      float64          `json:"change"`
	Gain        float64          `json:"gain"`
	Value       float64          `json:"value"`
	ChangeValue float64          `json:"change_value"`
	Trend       indicators.Trend `json:"trend"`
	Valid       bool             `json:"valid"`
}

// Totals summarise the whole portfolio.
type Totals struct {
	Equity          float64          `json:"equity"`
	Bullion         float64          `json:"bullion"`
	Cash            float64          `json:"cash"`
	Total           float64          `json:"total"`
	DayChange       float64          `json:"day_change"`
	DayGain         float64          `json:"day_gain"`
	GoldSilverRatio float64          `json:"gold_silver_ratio"`
	Trend           indicators.Trend `json:"trend"`
}

// Packet is the computed state of the portfolio after a refresh.
type Packet struct {
	Indices   []IndexQuote `json:"indices"`
	Metals    []MetalQuote `json:"metals"`
	Equities  []Position   `json:"equities"`
	Totals    Totals       `json:"totals"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (p Packet) clone() Packet {
	p.Indices = append([]IndexQuote(nil), p.Indices...)
	p.Metals = append([]MetalQuote(nil), p.Metals...)
	p.Equities = append([]Position(nil), p.Equities...)
	return p
}

// calculate fills the derived fields of every line and the totals.
func calculate(p *Packet, cash float64) {
	var t Totals
	t.Cash = cash

	for i := range p.Indices {
		ix := &p.Indices[i]
		if !ix.Valid {
			continue
		}
		ix.Change = ix.Price - ix.PrevClose
		ix.Gain = gain(ix.Price, ix.PrevClose)
		ix.Trend = indicators.TrendOf(ix.Change)
	}

	var gold, silver float64
	for i := range p.Metals {
		m := &p.Metals[i]
		if !m.Valid {
			continue
		}
		m.Change = m.Spot - m.PrevClose
		m.Gain = gain(m.Spot, m.PrevClose)
		m.Value = m.Ounces * (m.Spot + m.Premium)
		m.ChangeValue = m.Ounces * m.Change
		m.Trend = indicators.TrendOf(m.Change)
		t.Bullion += m.Value
		t.DayChange += m.ChangeValue
		switch m.Metal {
		case models.Gold:
			gold = m.Spot
		case models.Silver:
			silver = m.Spot
		}
	}
	if silver > 0 {
		t.GoldSilverRatio = gold / silver
	}

	for i := range p.Equities {
		e := &p.Equities[i]
		if !e.Valid {
			continue
		}
		e.Change = e.Price - e.PrevClose
		e.Gain = gain(e.Price, e.PrevClose)
		e.Value = float64(e.Shares) * e.Price
		e.ChangeValue = float64(e.Shares) * e.Change
		e.Trend = indicators.TrendOf(e.Change)
		t.Equity += e.Value
		t.DayChange += e.ChangeValue
	}

	t.Total = t.Equity + t.Bullion + t.Cash
	t.DayGain = gain(t.Total, t.Total-t.DayChange)
	t.Trend = indicators.TrendOf(t.DayChange)
	p.Totals = t
}

// gain is indicators.Gain guarded against a zero base.
func gain(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return indicators.Gain(cur, prev)
}
