package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/models"
	"folio_tracker/internal/quotes"
	"folio_tracker/internal/repository"
)

// MinCompletionKey is the shortest key Complete answers.
const MinCompletionKey = 2

// Completion is one symbol suggestion.
type Completion struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Display string `json:"display"`
}

// SymbolService keeps the exchange symbol directory, cached in memory and
// in the database, and refreshed from the Nasdaq Trader listings.
type SymbolService struct {
	repo     *repository.SymbolRepository
	settings *repository.SettingsRepository
	batch    *quotes.Batch
	history  *History
	logger   *zap.Logger
	maxAge   time.Duration
	now      func() time.Time

	mu        sync.RWMutex
	symbols   []models.Symbol
	names     map[string]string
	fetchedAt time.Time

	loadMu sync.Mutex
}

// NewSymbolService creates a new SymbolService.
func NewSymbolService(repo *repository.SymbolRepository, settings *repository.SettingsRepository,
	client *quotes.Client, history *History, logger *zap.Logger) *SymbolService {
	return &SymbolService{
		repo:     repo,
		settings: settings,
		batch:    quotes.NewBatch(client, 2),
		history:  history,
		logger:   logger,
		maxAge:   24 * time.Hour, // listings change daily at most
		now:      time.Now,
		names:    make(map[string]string),
	}
}

// Ensure makes sure a directory is loaded, fetching when the cached one is
// missing or older than a day. A stale directory is kept if the fetch fails.
func (s *SymbolService) Ensure(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.fresh() {
		return nil
	}

	// Check database cache
	symbols, fetchedAt, err := s.repo.List()
	if err != nil {
		s.logger.Warn("reading cached symbols", zap.Error(err))
	} else if len(symbols) > 0 {
		s.set(symbols, fetchedAt)
		if s.fresh() {
			return nil
		}
	}

	if err := s.fetch(ctx); err != nil {
		if s.Len() > 0 {
			s.logger.Warn("using stale symbol directory", zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

// Refresh fetches the directory regardless of its age.
func (s *SymbolService) Refresh(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.fetch(ctx)
}

// Stop cancels a running directory fetch.
func (s *SymbolService) Stop() bool {
	return s.batch.Stop()
}

// Len returns the number of loaded symbols.
func (s *SymbolService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.symbols)
}

// FetchedAt returns when the loaded directory was downloaded.
func (s *SymbolService) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// Name returns the security name of symbol, or "" if it is not listed.
func (s *SymbolService) Name(symbol string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[strings.ToUpper(symbol)]
}

// Names returns the security names of symbols that are listed.
func (s *SymbolService) Names(symbols []string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(symbols))
	for _, sym := range symbols {
		if n, ok := s.names[sym]; ok {
			out[sym] = n
		}
	}
	return out
}

// Complete returns up to limit symbols whose ticker or name starts with key,
// ignoring case. Keys shorter than MinCompletionKey match nothing.
func (s *SymbolService) Complete(key string, limit int) []Completion {
	key = strings.TrimSpace(key)
	if len(key) < MinCompletionKey {
		return nil
	}
	key = strings.ToLower(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Completion, 0)
	for _, sym := range s.symbols {
		if !strings.HasPrefix(strings.ToLower(sym.Symbol), key) &&
			!strings.HasPrefix(strings.ToLower(sym.Name), key) {
			continue
		}
		out = append(out, Completion{
			Symbol:  sym.Symbol,
			Name:    sym.Name,
			Display: sym.Symbol + " - " + sym.Name,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (s *SymbolService) fresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.symbols) > 0 && s.now().Sub(s.fetchedAt) < s.maxAge
}

func (s *SymbolService) set(symbols []models.Symbol, fetchedAt time.Time) {
	names := make(map[string]string, len(symbols))
	for _, sym := range symbols {
		names[sym.Symbol] = sym.Name
	}
	s.mu.Lock()
	s.symbols = symbols
	s.names = names
	s.fetchedAt = fetchedAt
	s.mu.Unlock()
}

func (s *SymbolService) fetch(ctx context.Context) error {
	api, err := s.settings.API()
	if err != nil {
		return apperrors.Internal("reading API settings", err)
	}
	nasdaqURL, nyseURL := api.NasdaqURL, api.NYSEURL
	if nasdaqURL == "" {
		nasdaqURL = quotes.DefaultNasdaqURL
	}
	if nyseURL == "" {
		nyseURL = quotes.DefaultNYSEURL
	}

	reqs := []quotes.Request{
		{Name: "nasdaq", Kind: quotes.KindSymbols, URL: nasdaqURL},
		{Name: "nyse", Kind: quotes.KindSymbols, URL: nyseURL},
	}
	bodies, err := s.history.Run(ctx, s.batch, "symbols", reqs)
	if err != nil {
		return err
	}

	nasdaq, err := quotes.ParseListings(bodies["nasdaq"])
	if err != nil {
		return apperrors.Upstream("parsing Nasdaq listings", err)
	}
	nyse, err := quotes.ParseListings(bodies["nyse"])
	if err != nil {
		return apperrors.Upstream("parsing NYSE listings", err)
	}

	merged := quotes.MergeListings(nasdaq, nyse)
	symbols := make([]models.Symbol, len(merged))
	for i, l := range merged {
		symbols[i] = models.Symbol{Symbol: l.Symbol, Name: l.Name}
	}

	now := s.now()
	if err := s.repo.Replace(symbols, now); err != nil {
		s.logger.Error("saving symbol directory", zap.Error(err))
	}
	s.set(symbols, now)
	s.logger.Info("symbol directory refreshed", zap.Int("symbols", len(symbols)))
	return nil
}
