package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"folio_tracker/internal/services"
)

// ExportHandler handles CSV downloads.
type ExportHandler struct {
	tracker *services.Tracker
	rsi     *services.RSIService
	logger  *zap.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(d *Dependencies) *ExportHandler {
	return &ExportHandler{tracker: d.Tracker, rsi: d.RSI, logger: d.Logger}
}

// ExportRSI exports the RSI table of the symbol in the path as CSV.
func (h *ExportHandler) ExportRSI(w http.ResponseWriter, r *http.Request) {
	view, err := h.rsi.View(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filename := fmt.Sprintf("rsi_%s_%s.csv", view.Symbol, view.FetchedAt.Format("2006-01-02"))
	h.writeCSV(w, filename, view.CSVRecords())
}

// ExportPortfolio exports the formatted portfolio report as CSV: one row
// per index, metal and equity, then the totals.
func (h *ExportHandler) ExportPortfolio(w http.ResponseWriter, r *http.Request) {
	rep := h.tracker.ToStrings()

	records := [][]string{{"Type", "Symbol", "Name", "Quantity", "Price", "Change", "Gain", "Value", "Day Gain"}}
	for _, ix := range rep.Indices {
		records = append(records, []string{"index", "", ix.Name, "", ix.Price, ix.Change, ix.Gain, "", ""})
	}
	for _, m := range rep.Metals {
		records = append(records, []string{"metal", "", m.Metal, m.Ounces, m.Spot, m.Change, m.Gain, m.Value, m.DayGain})
	}
	for _, e := range rep.Equities {
		records = append(records, []string{"equity", e.Symbol, e.Name, e.Shares, e.Price, e.Change, e.Gain, e.Value, e.DayGain})
	}
	t := rep.Totals
	records = append(records,
		[]string{"total", "", "Equity", "", "", "", "", t.Equity, ""},
		[]string{"total", "", "Bullion", "", "", "", "", t.Bullion, ""},
		[]string{"total", "", "Cash", "", "", "", "", t.Cash, ""},
		[]string{"total", "", "Portfolio", "", "", t.DayChange, t.DayGain, t.Total, ""},
	)

	filename := fmt.Sprintf("portfolio_%s.csv", time.Now().Format("2006-01-02"))
	h.writeCSV(w, filename, records)
}

func (h *ExportHandler) writeCSV(w http.ResponseWriter, filename string, records [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(records); err != nil {
		h.logger.Warn("writing CSV export", zap.String("file", filename), zap.Error(err))
	}
}
