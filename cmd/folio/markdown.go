package main

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"folio_tracker/internal/indicators"
	"folio_tracker/internal/models"
	"folio_tracker/internal/services"
)

// table builds a markdown table.
type table struct {
	b strings.Builder
}

func newTable(headers ...string) *table {
	t := &table{}
	t.row(headers...)
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	t.row(seps...)
	return t
}

func (t *table) row(cells ...string) {
	t.b.WriteString("|")
	for _, c := range cells {
		t.b.WriteString(" ")
		t.b.WriteString(cell(c))
		t.b.WriteString(" |")
	}
	t.b.WriteString("\n")
}

func (t *table) String() string {
	return t.b.String()
}

// cell escapes pipes and flattens newlines so a value stays in its cell.
func cell(s string) string {
	if s == "" {
		return " "
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

var titleCase = cases.Title(language.English)

func trendMark(t indicators.Trend) string {
	switch t {
	case indicators.TrendUp:
		return "▲"
	case indicators.TrendDown:
		return "▼"
	}
	return "="
}

func summaryMarkdown(r services.Report) string {
	var b strings.Builder
	b.WriteString("# Portfolio\n\n")

	state := "market open"
	if r.MarketClosed {
		state = "market closed"
		if r.Status.Reason != "" {
			state += " (" + r.Status.Reason + ")"
		}
	}
	updated := "never"
	if !r.UpdatedAt.IsZero() {
		updated = r.UpdatedAt.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(&b, "_Updated %s, %s_\n\n", updated, state)

	if len(r.Indices) > 0 {
		b.WriteString("## Indices\n\n")
		t := newTable("", "Index", "Price", "Change", "Gain")
		for _, ix := range r.Indices {
			t.row(trendMark(ix.Trend), ix.Name, ix.Price, ix.Change, ix.Gain)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	if len(r.Metals) > 0 {
		b.WriteString("## Bullion\n\n")
		t := newTable("", "Metal", "Ounces", "Spot", "Premium", "Change", "Gain", "Value", "Day")
		for _, m := range r.Metals {
			t.row(trendMark(m.Trend), titleCase.String(m.Metal), m.Ounces, m.Spot, m.Premium, m.Change, m.Gain, m.Value, m.DayGain)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	b.WriteString("## Equities\n\n")
	if len(r.Equities) == 0 {
		b.WriteString("No equities. Add one with `folio equity add SYMBOL SHARES`.\n\n")
	} else {
		t := newTable("", "Symbol", "Name", "Shares", "Price", "Change", "Gain", "Value", "Day")
		for _, e := range r.Equities {
			t.row(trendMark(e.Trend), e.Symbol, e.Name, e.Shares, e.Price, e.Change, e.Gain, e.Value, e.DayGain)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	tot := r.Totals
	b.WriteString("## Totals\n\n")
	t := newTable("Equity", "Bullion", "Cash", "Total", "Day change", "Day gain")
	t.row(tot.Equity, tot.Bullion, tot.Cash, tot.Total, tot.DayChange, tot.DayGain)
	b.WriteString(t.String())
	if tot.GoldSilverRatio != "" {
		fmt.Fprintf(&b, "\nGold/silver ratio: %s\n", tot.GoldSilverRatio)
	}
	return b.String()
}

func rsiMarkdown(v *services.RSIView, rows int) string {
	var b strings.Builder
	title := v.Symbol
	if v.Name != "" {
		title += " - " + v.Name
	}
	fmt.Fprintf(&b, "# RSI %s\n\n", title)

	cells := v.Cells
	if rows > 0 && rows < len(cells) {
		cells = cells[:rows]
	}
	t := newTable(v.Columns...)
	for _, c := range cells {
		t.row(c...)
	}
	b.WriteString(t.String())
	if len(cells) < len(v.Cells) {
		fmt.Fprintf(&b, "\n_%d of %d days shown_\n", len(cells), len(v.Cells))
	}
	return b.String()
}

func equitiesMarkdown(equities []models.Equity) string {
	if len(equities) == 0 {
		return "No equities.\n"
	}
	t := newTable("Symbol", "Shares", "Added")
	for _, e := range equities {
		added := ""
		if !e.CreatedAt.IsZero() {
			added = e.CreatedAt.Local().Format("2006-01-02")
		}
		t.row(e.Symbol, fmt.Sprint(e.Shares), added)
	}
	return t.String()
}

func bullionMarkdown(metals []models.Bullion) string {
	t := newTable("Metal", "Ounces", "Premium")
	for _, m := range metals {
		t.row(titleCase.String(m.Metal), fmt.Sprint(m.Ounces), fmt.Sprint(m.Premium))
	}
	return t.String()
}

func apiMarkdown(s models.APISettings) string {
	t := newTable("Setting", "Value")
	t.row("Stock URL", s.StockURL)
	t.row("API key", s.Key)
	t.row("Nasdaq symbols URL", s.NasdaqURL)
	t.row("NYSE symbols URL", s.NYSEURL)
	return t.String()
}

func prefsMarkdown(p models.Preferences) string {
	t := newTable("Preference", "Value")
	t.row("Main font", p.MainFont)
	t.row("Clocks displayed", fmt.Sprint(p.ClocksDisplayed))
	t.row("Indices displayed", fmt.Sprint(p.IndicesDisplayed))
	t.row("Decimal places", fmt.Sprint(p.DecimalPlaces))
	t.row("Updates per minute", fmt.Sprint(p.UpdatesPerMin))
	t.row("Hours of updates after close", fmt.Sprint(p.UpdatesHours))
	return t.String()
}

func completionsMarkdown(key string, matches []services.Completion) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No symbols match %q.\n", key)
	}
	t := newTable("Symbol", "Name")
	for _, m := range matches {
		t.row(m.Symbol, m.Name)
	}
	return t.String()
}

func historyMarkdown(runs []*models.FetchHistory) string {
	if len(runs) == 0 {
		return "No fetches recorded.\n"
	}
	t := newTable("Started", "Kind", "Status", "Requests", "Duration", "Error")
	for _, r := range runs {
		dur := ""
		if r.DurationMS != nil {
			dur = (time.Duration(*r.DurationMS) * time.Millisecond).String()
		}
		t.row(r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Kind, r.Status, fmt.Sprint(r.Requests), dur, r.ErrorMessage)
	}
	return t.String()
}
