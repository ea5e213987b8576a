package indicators

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Trend is the direction of a day's close relative to the previous close.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Row is one trading day of an RSI table.
type Row struct {
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Open      float64 `json:"open"`
	PrevClose float64 `json:"prev_close"`
	Change    float64 `json:"change"`
	Gain      float64 `json:"gain"`
	Volume    int64   `json:"volume"`
	RSI       float64 `json:"rsi"`
	Indicator string  `json:"indicator"`
	Trend     Trend   `json:"trend"`
}

// Stream turns daily history lines, oldest first, into RSI rows.
// Lines follow the Yahoo layout: Date,Open,High,Low,Close,Adj Close,Volume.
type Stream struct {
	wilder Wilder
	close  float64
}

// Reset discards all accumulated state.
func (s *Stream) Reset() {
	s.wilder.Reset()
	s.close = 0
}

// Push consumes one line. It returns a row and true once Period+1 daily
// gains have been seen. Header lines and lines holding null values are
// skipped without touching state.
func (s *Stream) Push(line string) (Row, bool, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || strings.Contains(line, "null") || strings.Contains(line, "Date") {
		return Row{}, false, nil
	}

	fields, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return Row{}, false, fmt.Errorf("parsing history line %q: %w", line, err)
	}
	if len(fields) < 7 {
		return Row{}, false, fmt.Errorf("history line %q: want 7 columns, got %d", line, len(fields))
	}

	cur, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return Row{}, false, fmt.Errorf("history line %q: close: %w", line, err)
	}
	prev := s.close
	s.close = cur

	// The first close has nothing to compare against.
	if prev == 0 {
		return Row{}, false, nil
	}

	gain := Gain(cur, prev)
	rsi, ready := s.wilder.Add(gain)
	if !ready {
		return Row{}, false, nil
	}

	row := Row{
		Date:      fields[0],
		Price:     cur,
		Open:      parseOrZero(fields[1]),
		High:      parseOrZero(fields[2]),
		Low:       parseOrZero(fields[3]),
		PrevClose: prev,
		Change:    cur - prev,
		Gain:      gain,
		RSI:       rsi,
		Indicator: Indicator(rsi),
	}
	row.Volume, _ = strconv.ParseInt(fields[6], 10, 64)
	row.Trend = TrendOf(gain)
	return row, true, nil
}

// TrendOf classifies a change by its sign.
func TrendOf(change float64) Trend {
	switch {
	case change > 0:
		return TrendUp
	case change < 0:
		return TrendDown
	}
	return TrendFlat
}

// Compute reads a whole history and returns its RSI rows, newest first.
func Compute(r io.Reader) ([]Row, error) {
	var s Stream
	var rows []Row

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		row, ok, err := s.Push(sc.Text())
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

func parseOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
