package services

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/format"
	"folio_tracker/internal/indicators"
	"folio_tracker/internal/quotes"
)

// RSIColumns are the headings of an RSI table.
var RSIColumns = []string{
	"Date", "Price", "High", "Low", "Opening", "Prev Closing",
	"Chg ($)", "Gain (%)", "Volume", "RSI", "Indicator",
}

// rsiDigits is the precision of every RSI table figure except volume.
const rsiDigits = 3

// RSIView is the RSI table of one security, newest day first.
type RSIView struct {
	Symbol    string             `json:"symbol"`
	Name      string             `json:"name,omitempty"`
	Columns   []string           `json:"columns"`
	Rows      []indicators.Row   `json:"rows"`
	Cells     [][]string         `json:"cells"`
	Trends    []indicators.Trend `json:"trends"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// RSIService builds RSI tables from a year of daily prices.
type RSIService struct {
	batch     *quotes.Batch
	history   *History
	symbols   *SymbolService
	formatter *format.Formatter
	logger    *zap.Logger
	yahooBase string
	now       func() time.Time
}

// NewRSIService creates a new RSIService. symbols may be nil.
func NewRSIService(client *quotes.Client, history *History, symbols *SymbolService,
	f *format.Formatter, yahooBase string, logger *zap.Logger) *RSIService {
	return &RSIService{
		batch:     quotes.NewBatch(client, 1),
		history:   history,
		symbols:   symbols,
		formatter: f,
		logger:    logger,
		yahooBase: yahooBase,
		now:       time.Now,
	}
}

// ParseSymbol accepts a ticker or a "SYM - Name" completion and returns
// the upper-cased ticker.
func ParseSymbol(input string) (string, error) {
	s := strings.TrimSpace(input)
	if i := strings.Index(s, " - "); i > 0 {
		s = s[:i]
	}
	if !format.CheckValidString(s) {
		return "", apperrors.ValidationField("symbol", "invalid symbol")
	}
	return format.UpperCase(s), nil
}

// View fetches the daily history of symbol and computes its RSI table.
func (s *RSIService) View(ctx context.Context, symbol string) (*RSIView, error) {
	sym, err := ParseSymbol(symbol)
	if err != nil {
		return nil, err
	}

	now := s.now()
	bodies, err := s.history.Run(ctx, s.batch, "history", []quotes.Request{{
		Name: sym,
		Kind: quotes.KindHistory,
		URL:  quotes.HistoryURL(s.yahooBase, sym, quotes.RSIHistoryPeriod, now),
	}})
	if err != nil {
		return nil, err
	}

	body := bodies[sym]
	if bytes.Contains(body, []byte("<")) {
		return nil, apperrors.Upstream("history reply for "+sym+" is not CSV", quotes.ErrInvalidReply)
	}
	rows, err := indicators.Compute(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Upstream("reading history for "+sym, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("enough price history for " + sym)
	}

	v := &RSIView{
		Symbol:    sym,
		Columns:   RSIColumns,
		Rows:      rows,
		Cells:     make([][]string, len(rows)),
		Trends:    make([]indicators.Trend, len(rows)),
		FetchedAt: now,
	}
	for i, r := range rows {
		v.Cells[i] = s.cells(r)
		v.Trends[i] = r.Trend
	}

	if s.symbols != nil {
		if err := s.symbols.Ensure(ctx); err != nil {
			s.logger.Debug("symbol names unavailable", zap.Error(err))
		}
		v.Name = s.symbols.Name(sym)
	}
	return v, nil
}

func (s *RSIService) cells(r indicators.Row) []string {
	f := s.formatter
	return []string{
		r.Date,
		f.MustMoney(r.Price, rsiDigits),
		f.MustMoney(r.High, rsiDigits),
		f.MustMoney(r.Low, rsiDigits),
		f.MustMoney(r.Open, rsiDigits),
		f.MustMoney(r.PrevClose, rsiDigits),
		f.MustMoney(r.Change, rsiDigits),
		f.MustPercent(r.Gain, rsiDigits),
		f.MustNumber(float64(r.Volume), 0),
		f.MustNumber(r.RSI, rsiDigits),
		r.Indicator,
	}
}

// Stop cancels a running history fetch.
func (s *RSIService) Stop() bool {
	return s.batch.Stop()
}

// CSVRecords returns the table as CSV records with a header row. Numbers
// are written plain so the file loads into a spreadsheet.
func (v *RSIView) CSVRecords() [][]string {
	out := make([][]string, 0, len(v.Rows)+1)
	out = append(out, v.Columns)
	for _, r := range v.Rows {
		out = append(out, []string{
			r.Date,
			strconv.FormatFloat(r.Price, 'f', rsiDigits, 64),
			strconv.FormatFloat(r.High, 'f', rsiDigits, 64),
			strconv.FormatFloat(r.Low, 'f', rsiDigits, 64),
			strconv.FormatFloat(r.Open, 'f', rsiDigits, 64),
			strconv.FormatFloat(r.PrevClose, 'f', rsiDigits, 64),
			strconv.FormatFloat(r.Change, 'f', rsiDigits, 64),
			strconv.FormatFloat(r.Gain, 'f', rsiDigits, 64),
			strconv.FormatInt(r.Volume, 10),
			strconv.FormatFloat(r.RSI, 'f', rsiDigits, 64),
			r.Indicator,
		})
	}
	return out
}
