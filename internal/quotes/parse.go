package quotes

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// ErrInvalidReply is returned when a reply cannot be a price history or quote.
var ErrInvalidReply = errors.New("invalid finance API reply")

// Latest is the newest close of a daily history and the close before it.
type Latest struct {
	PrevClose float64 `json:"prev_close"`
	Price     float64 `json:"price"`
	Line      string  `json:"-"`
}

// ExtractLatest scans a Yahoo daily history to its end. The previous close
// is taken before skipping a line, so a trailing null line makes it equal
// to the price. HTML replies and short lines are invalid.
func ExtractLatest(data []byte) (Latest, error) {
	var l Latest
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		l.PrevClose = l.Price
		if line == "" || strings.Contains(line, "null") || strings.Contains(line, "Date") {
			continue
		}
		l.Line = line
		if strings.Contains(line, "<") {
			return Latest{}, fmt.Errorf("%w: markup in history", ErrInvalidReply)
		}
		fields := strings.Split(line, ",")
		if len(fields) < 7 {
			return Latest{}, fmt.Errorf("%w: %d columns in history line", ErrInvalidReply, len(fields))
		}
		l.Price, _ = strconv.ParseFloat(fields[4], 64)
	}
	if err := sc.Err(); err != nil {
		return Latest{}, fmt.Errorf("reading history: %w", err)
	}
	return l, nil
}

// EquityQuote is a real-time quote for one security.
type EquityQuote struct {
	Price     float64 `json:"price"`
	PrevClose float64 `json:"prev_close"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

var equityFields = []struct {
	path string
	dst  func(*EquityQuote) *float64
}{
	{"$.c", func(q *EquityQuote) *float64 { return &q.Price }},
	{"$.pc", func(q *EquityQuote) *float64 { return &q.PrevClose }},
	{"$.o", func(q *EquityQuote) *float64 { return &q.Open }},
	{"$.h", func(q *EquityQuote) *float64 { return &q.High }},
	{"$.l", func(q *EquityQuote) *float64 { return &q.Low }},
	{"$.d", func(q *EquityQuote) *float64 { return &q.Change }},
	{"$.dp", func(q *EquityQuote) *float64 { return &q.ChangePct }},
}

// ParseEquityQuote reads a quote reply of the form
// {"c":cur,"pc":prev,"o":open,"h":high,"l":low,"d":chg,"dp":chg%}.
// Unknown symbols come back as all zeros and are rejected.
func ParseEquityQuote(data []byte) (EquityQuote, error) {
	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		return EquityQuote{}, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}

	var q EquityQuote
	for _, f := range equityFields {
		v, err := jsonpath.Get(f.path, obj)
		if err != nil {
			// d and dp are null before the first trade of a new listing
			continue
		}
		if n, ok := v.(float64); ok {
			*f.dst(&q) = n
		}
	}
	if q.Price == 0 && q.PrevClose == 0 {
		return EquityQuote{}, fmt.Errorf("%w: empty quote", ErrInvalidReply)
	}
	return q, nil
}

// Listing is one security of an exchange symbol directory.
type Listing struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// ParseListings reads a pipe-delimited Nasdaq Trader symbol directory.
// The first column is the symbol and the "Security Name" column the name;
// test issues and the trailing file-creation line are dropped.
func ParseListings(data []byte) ([]Listing, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: empty symbol directory", ErrInvalidReply)
	}
	header := strings.Split(strings.TrimSpace(sc.Text()), "|")
	nameCol, testCol := -1, -1
	for i, h := range header {
		switch h {
		case "Security Name":
			nameCol = i
		case "Test Issue":
			testCol = i
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("%w: symbol directory header %q", ErrInvalidReply, sc.Text())
	}

	var out []Listing
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "File Creation Time") {
			continue
		}
		cols := strings.Split(line, "|")
		if len(cols) <= nameCol {
			continue
		}
		if testCol >= 0 && testCol < len(cols) && cols[testCol] == "Y" {
			continue
		}
		out = append(out, Listing{Symbol: cols[0], Name: cols[nameCol]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading symbol directory: %w", err)
	}
	return out, nil
}

// MergeListings combines directories, keeping the first name seen for a
// symbol, sorted by symbol.
func MergeListings(lists ...[]Listing) []Listing {
	seen := make(map[string]bool)
	var out []Listing
	for _, l := range lists {
		for _, s := range l {
			if seen[s.Symbol] {
				continue
			}
			seen[s.Symbol] = true
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
