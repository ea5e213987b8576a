package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"folio_tracker/internal/database"
	"folio_tracker/internal/format"
	"folio_tracker/internal/metrics"
	"folio_tracker/internal/models"
	"folio_tracker/internal/quotes"
	"folio_tracker/internal/repository"
)

// fakeAPI serves Yahoo histories under /history/, quotes under /quote and
// symbol listings under /nasdaq.txt and /nyse.txt.
type fakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	quotes   map[string]string
	failures map[string]int
	block    chan struct{}
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		hits:     make(map[string]int),
		failures: make(map[string]int),
		quotes: map[string]string{
			"AAPL": `{"c":110,"d":10,"dp":10,"h":111,"l":99,"o":100,"pc":100}`,
			"MSFT": `{"c":45,"d":-5,"dp":-10,"h":50,"l":44,"o":50,"pc":50}`,
		},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.Path == "/quote" {
		key = "/quote/" + r.URL.Query().Get("symbol")
	}

	f.mu.Lock()
	f.hits[key]++
	status := f.failures[key]
	block := f.block
	q := f.quotes[strings.TrimPrefix(key, "/quote/")]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		w.WriteHeader(status)
		return
	}

	switch {
	case strings.HasPrefix(key, "/history/"):
		sym := strings.TrimPrefix(key, "/history/")
		fmt.Fprint(w, historyFor(sym))
	case strings.HasPrefix(key, "/quote/"):
		if q == "" {
			q = `{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0}`
		}
		fmt.Fprint(w, q)
	case key == "/nasdaq.txt":
		fmt.Fprint(w, "Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares\n"+
			"AAPL|Apple Inc. - Common Stock|Q|N|N|100|N|N\n"+
			"AMZN|Amazon.com, Inc. - Common Stock|Q|N|N|100|N|N\n"+
			"MSFT|Microsoft Corporation - Common Stock|Q|N|N|100|N|N\n"+
			"File Creation Time: 0215202418:01|||||||\n")
	case key == "/nyse.txt":
		fmt.Fprint(w, "ACT Symbol|Security Name|Exchange|CQS Symbol|ETF|Round Lot Size|Test Issue|NASDAQ Symbol\n"+
			"IBM|International Business Machines Corporation Common Stock|N|IBM|N|100|N|IBM\n"+
			"File Creation Time: 0215202418:01|||||||\n")
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) hitCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *fakeAPI) fail(key string, status int) {
	f.mu.Lock()
	f.failures[key] = status
	f.mu.Unlock()
}

// historyFor returns a short daily history whose last two closes are
// fixed per symbol so tests can check the values.
func historyFor(sym string) string {
	prev, cur := 100.0, 101.0
	switch sym {
	case "GC=F":
		prev, cur = 2000, 2020
	case "SI=F":
		prev, cur = 25, 24
	case "PL=F":
		prev, cur = 900, 900
	case "^DJI":
		prev, cur = 38000, 38380
	}
	return "Date,Open,High,Low,Close,Adj Close,Volume\n" +
		fmt.Sprintf("2024-02-13,%.2f,%.2f,%.2f,%.2f,%.2f,1000\n", prev, prev, prev, prev, prev) +
		fmt.Sprintf("2024-02-14,%.2f,%.2f,%.2f,%.2f,%.2f,1000\n", cur, cur, cur, cur, cur)
}

type testEnv struct {
	db       *database.DB
	api      *fakeAPI
	settings *repository.SettingsRepository
	symbols  *SymbolService
	rsi      *RSIService
	tracker  *Tracker
	history  *History
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	api := newFakeAPI(t)
	settings := repository.NewSettingsRepository(db, nil)
	require.NoError(t, settings.SetAPI(models.APISettings{
		StockURL:  api.URL + "/quote?symbol=",
		Key:       "test-key",
		NasdaqURL: api.URL + "/nasdaq.txt",
		NYSEURL:   api.URL + "/nyse.txt",
	}))

	logger := zap.NewNop()
	m := metrics.New()
	client := quotes.NewClient(quotes.Options{Timeout: 5 * time.Second}, m, logger)
	history := NewHistory(repository.NewFetchHistoryRepository(db), logger)
	f := format.New("en-US", "USD")
	yahoo := api.URL + "/history/"

	symbols := NewSymbolService(repository.NewSymbolRepository(db), settings, client, history, logger)
	rsi := NewRSIService(client, history, symbols, f, yahoo, logger)
	clock, err := NewMarketClock()
	require.NoError(t, err)

	tracker := NewTracker(TrackerOptions{
		Equities:  repository.NewEquityRepository(db),
		Bullion:   repository.NewBullionRepository(db),
		Settings:  settings,
		History:   history,
		Client:    client,
		Symbols:   symbols,
		RSI:       rsi,
		Clock:     clock,
		Formatter: f,
		Metrics:   m,
		Logger:    logger,
		YahooBase: yahoo,
	})
	require.NoError(t, tracker.Load())

	return &testEnv{db: db, api: api, settings: settings, symbols: symbols, rsi: rsi, tracker: tracker, history: history}
}
