package services

import (
	"strconv"
	"time"

	"folio_tracker/internal/format"
	"folio_tracker/internal/indicators"
)

// IndexLine is an index formatted for display.
type IndexLine struct {
	Name   string           `json:"name"`
	Price  string           `json:"price"`
	Change string           `json:"change"`
	Gain   string           `json:"gain"`
	Trend  indicators.Trend `json:"trend"`
}

// MetalLine is a metal holding formatted for display.
type MetalLine struct {
	Metal   string           `json:"metal"`
	Ounces  string           `json:"ounces"`
	Spot    string           `json:"spot"`
	Premium string           `json:"premium"`
	Change  string           `json:"change"`
	Gain    string           `json:"gain"`
	Value   string           `json:"value"`
	DayGain string           `json:"day_gain"`
	Trend   indicators.Trend `json:"trend"`
}

// EquityLine is an equity position formatted for display.
type EquityLine struct {
	Symbol    string           `json:"symbol"`
	Name      string           `json:"name"`
	Shares    string           `json:"shares"`
	Price     string           `json:"price"`
	PrevClose string           `json:"prev_close"`
	High      string           `json:"high"`
	Low       string           `json:"low"`
	Open      string           `json:"open"`
	Change    string           `json:"change"`
	Gain      string           `json:"gain"`
	Value     string           `json:"value"`
	DayGain   string           `json:"day_gain"`
	Trend     indicators.Trend `json:"trend"`
}

// TotalsLine is the portfolio summary formatted for display.
type TotalsLine struct {
	Equity          string           `json:"equity"`
	Bullion         string           `json:"bullion"`
	Cash            string           `json:"cash"`
	Total           string           `json:"total"`
	DayChange       string           `json:"day_change"`
	DayGain         string           `json:"day_gain"`
	GoldSilverRatio string           `json:"gold_silver_ratio"`
	Trend           indicators.Trend `json:"trend"`
}

// Report is a Packet rendered as strings.
type Report struct {
	Indices      []IndexLine  `json:"indices,omitempty"`
	Metals       []MetalLine  `json:"metals"`
	Equities     []EquityLine `json:"equities"`
	Totals       TotalsLine   `json:"totals"`
	UpdatedAt    time.Time    `json:"updated_at"`
	MarketClosed bool         `json:"market_closed"`
	Status       MarketStatus `json:"market"`
}

// render formats p with digits decimal places. Indices are omitted when
// withIndices is false.
func render(f *format.Formatter, p Packet, digits int, withIndices bool) Report {
	if digits < 0 {
		digits = 0
	}
	if digits > format.MaxPrecision {
		digits = format.MaxPrecision
	}

	r := Report{
		Metals:    make([]MetalLine, 0, len(p.Metals)),
		Equities:  make([]EquityLine, 0, len(p.Equities)),
		UpdatedAt: p.UpdatedAt,
	}
	if withIndices {
		for _, ix := range p.Indices {
			r.Indices = append(r.Indices, IndexLine{
				Name:   ix.Name,
				Price:  f.MustNumber(ix.Price, 2),
				Change: f.MustNumber(ix.Change, 2),
				Gain:   f.MustPercent(ix.Gain, 2),
				Trend:  ix.Trend,
			})
		}
	}

	for _, m := range p.Metals {
		r.Metals = append(r.Metals, MetalLine{
			Metal:   format.UpperCase(m.Metal[:1]) + m.Metal[1:],
			Ounces:  f.MustNumber(m.Ounces, 4),
			Spot:    f.MustMoney(m.Spot, digits),
			Premium: f.MustMoney(m.Premium, digits),
			Change:  f.MustMoney(m.Change, digits),
			Gain:    f.MustPercent(m.Gain, digits),
			Value:   f.MustMoney(m.Value, digits),
			DayGain: f.MustMoney(m.ChangeValue, digits),
			Trend:   m.Trend,
		})
	}

	for _, e := range p.Equities {
		r.Equities = append(r.Equities, EquityLine{
			Symbol:    e.Symbol,
			Name:      e.Name,
			Shares:    strconv.FormatInt(e.Shares, 10),
			Price:     f.MustMoney(e.Price, digits),
			PrevClose: f.MustMoney(e.PrevClose, digits),
			High:      f.MustMoney(e.High, digits),
			Low:       f.MustMoney(e.Low, digits),
			Open:      f.MustMoney(e.Open, digits),
			Change:    f.MustMoney(e.Change, digits),
			Gain:      f.MustPercent(e.Gain, digits),
			Value:     f.MustMoney(e.Value, digits),
			DayGain:   f.MustMoney(e.ChangeValue, digits),
			Trend:     e.Trend,
		})
	}

	t := p.Totals
	r.Totals = TotalsLine{
		Equity:          f.MustMoney(t.Equity, digits),
		Bullion:         f.MustMoney(t.Bullion, digits),
		Cash:            f.MustMoney(t.Cash, digits),
		Total:           f.MustMoney(t.Total, digits),
		DayChange:       f.MustMoney(t.DayChange, digits),
		DayGain:         f.MustPercent(t.DayGain, digits),
		GoldSilverRatio: f.MustNumber(t.GoldSilverRatio, 2),
		Trend:           t.Trend,
	}
	return r
}
