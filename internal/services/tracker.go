package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/format"
	"folio_tracker/internal/metrics"
	"folio_tracker/internal/models"
	"folio_tracker/internal/quotes"
	"folio_tracker/internal/repository"
)

// Flags are the tracker's run-time switches.
type Flags struct {
	Fetching         bool `json:"fetching"`
	MainCanceled     bool `json:"main_canceled"`
	Canceled         bool `json:"canceled"`
	DefaultView      bool `json:"default_view"`
	ClocksDisplayed  bool `json:"clocks_displayed"`
	IndicesDisplayed bool `json:"indices_displayed"`
	MarketClosed     bool `json:"market_closed"`
}

// TrackerOptions holds the Tracker dependencies.
type TrackerOptions struct {
	Equities  *repository.EquityRepository
	Bullion   *repository.BullionRepository
	Settings  *repository.SettingsRepository
	History   *History
	Client    *quotes.Client
	Symbols   *SymbolService
	RSI       *RSIService
	Clock     *MarketClock
	Formatter *format.Formatter
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	// YahooBase overrides the history download endpoint.
	YahooBase string
}

// Tracker holds the portfolio: holdings and settings loaded from the
// database, the raw replies of the last fetch and the values computed
// from them.
type Tracker struct {
	equities  *repository.EquityRepository
	bullion   *repository.BullionRepository
	settings  *repository.SettingsRepository
	history   *History
	batch     *quotes.Batch
	symbols   *SymbolService
	rsi       *RSIService
	clock     *MarketClock
	formatter *format.Formatter
	metrics   *metrics.Metrics
	logger    *zap.Logger
	yahooBase string
	now       func() time.Time

	// fetchMu is held for the whole of GetData.
	fetchMu sync.Mutex

	mu       sync.RWMutex
	holdings []models.Equity
	metals   map[string]models.Bullion
	cash     float64
	prefs    models.Preferences
	api      models.APISettings
	views    map[string]models.View
	raw      map[string][]byte
	packet   Packet
	flags    Flags
}

// NewTracker creates a Tracker. Call Load before use.
func NewTracker(opts TrackerOptions) *Tracker {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		equities:  opts.Equities,
		bullion:   opts.Bullion,
		settings:  opts.Settings,
		history:   opts.History,
		batch:     quotes.NewBatch(opts.Client, 8),
		symbols:   opts.Symbols,
		rsi:       opts.RSI,
		clock:     opts.Clock,
		formatter: opts.Formatter,
		metrics:   opts.Metrics,
		logger:    logger,
		yahooBase: opts.YahooBase,
		now:       time.Now,
		metals:    make(map[string]models.Bullion),
		views:     make(map[string]models.View),
		prefs:     models.DefaultPreferences(),
		flags:     Flags{DefaultView: true},
	}
}

// Load reads holdings and settings from the database.
func (t *Tracker) Load() error {
	equities, err := t.equities.List()
	if err != nil {
		return fmt.Errorf("loading equities: %w", err)
	}
	bullion, err := t.bullion.List()
	if err != nil {
		return fmt.Errorf("loading bullion: %w", err)
	}
	cash, err := t.settings.Cash()
	if err != nil {
		return fmt.Errorf("loading cash: %w", err)
	}
	prefs, err := t.settings.Preferences()
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}
	api, err := t.settings.API()
	if err != nil {
		return fmt.Errorf("loading API settings: %w", err)
	}
	views, err := t.settings.Views()
	if err != nil {
		return fmt.Errorf("loading views: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.holdings = t.holdings[:0]
	for _, e := range equities {
		t.holdings = append(t.holdings, *e)
	}
	for _, b := range bullion {
		t.metals[b.Metal] = b
	}
	t.cash = cash
	t.prefs = prefs
	t.api = api
	for _, v := range views {
		t.views[v.Name] = v
	}
	t.flags.ClocksDisplayed = prefs.ClocksDisplayed
	t.flags.IndicesDisplayed = prefs.IndicesDisplayed
	return nil
}

// GetData fetches every index, metal and equity quote as one batch. On
// failure nothing fetched is kept. Only one GetData runs at a time.
func (t *Tracker) GetData(ctx context.Context) error {
	if !t.fetchMu.TryLock() {
		return apperrors.Conflict("a refresh is already running")
	}
	defer t.fetchMu.Unlock()

	t.mu.Lock()
	reqs := t.requests()
	t.flags.Fetching = true
	t.flags.MainCanceled = false
	t.flags.Canceled = false
	t.mu.Unlock()

	out, err := t.history.Run(ctx, t.batch, "main", reqs)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.flags.Fetching = false
	if err != nil {
		t.raw = nil
		if apperrors.IsCanceled(err) {
			t.flags.MainCanceled = true
		}
		return err
	}
	t.raw = out
	return nil
}

// requests builds the batch: four indices, gold and silver always,
// platinum and palladium only when held, then every equity.
// Callers hold t.mu.
func (t *Tracker) requests() []quotes.Request {
	now := t.now()
	reqs := make([]quotes.Request, 0, len(Indices)+len(models.Metals)+len(t.holdings))

	for _, ix := range Indices {
		reqs = append(reqs, quotes.Request{
			Name: "index:" + ix.Symbol,
			Kind: quotes.KindIndex,
			URL:  quotes.HistoryURL(t.yahooBase, ix.Symbol, quotes.IntradayPeriod, now),
		})
	}
	for _, m := range t.fetchedMetals() {
		reqs = append(reqs, quotes.Request{
			Name: "metal:" + m,
			Kind: quotes.KindMetal,
			URL:  quotes.HistoryURL(t.yahooBase, metalSymbols[m], quotes.IntradayPeriod, now),
		})
	}
	for _, e := range t.holdings {
		reqs = append(reqs, quotes.Request{
			Name: "equity:" + e.Symbol,
			Kind: quotes.KindEquity,
			URL:  quotes.EquityURL(t.api.StockURL, t.api.Key, e.Symbol),
		})
	}
	return reqs
}

func (t *Tracker) fetchedMetals() []string {
	out := []string{models.Gold, models.Silver}
	for _, m := range []string{models.Platinum, models.Palladium} {
		if t.metals[m].Ounces > 0 {
			out = append(out, m)
		}
	}
	return out
}

// ExtractData parses the raw replies of the last fetch. A reply that
// cannot be parsed leaves its line invalid rather than failing the rest.
func (t *Tracker) ExtractData() {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := Packet{
		Indices:  make([]IndexQuote, 0, len(Indices)),
		Metals:   make([]MetalQuote, 0, len(models.Metals)),
		Equities: make([]Position, 0, len(t.holdings)),
	}

	for _, ix := range Indices {
		q := IndexQuote{Symbol: ix.Symbol, Name: ix.Name}
		if body, ok := t.raw["index:"+ix.Symbol]; ok {
			if l, err := quotes.ExtractLatest(body); err != nil {
				t.logger.Warn("bad index reply", zap.String("symbol", ix.Symbol), zap.Error(err))
			} else {
				q.Price, q.PrevClose, q.Valid = l.Price, l.PrevClose, true
			}
		}
		p.Indices = append(p.Indices, q)
	}

	for _, m := range t.fetchedMetals() {
		b := t.metals[m]
		q := MetalQuote{Metal: m, Ounces: b.Ounces, Premium: b.Premium}
		if body, ok := t.raw["metal:"+m]; ok {
			if l, err := quotes.ExtractLatest(body); err != nil {
				t.logger.Warn("bad metal reply", zap.String("metal", m), zap.Error(err))
			} else {
				q.Spot, q.PrevClose, q.Valid = l.Price, l.PrevClose, true
			}
		}
		p.Metals = append(p.Metals, q)
	}

	var names map[string]string
	if t.symbols != nil {
		syms := make([]string, len(t.holdings))
		for i, e := range t.holdings {
			syms[i] = e.Symbol
		}
		names = t.symbols.Names(syms)
	}
	for _, e := range t.holdings {
		pos := Position{Symbol: e.Symbol, Shares: e.Shares, Name: names[e.Symbol]}
		if body, ok := t.raw["equity:"+e.Symbol]; ok {
			if q, err := quotes.ParseEquityQuote(body); err != nil {
				t.logger.Warn("bad equity reply", zap.String("symbol", e.Symbol), zap.Error(err))
			} else {
				pos.Price, pos.PrevClose = q.Price, q.PrevClose
				pos.Open, pos.High, pos.Low = q.Open, q.High, q.Low
				pos.Valid = true
			}
		}
		p.Equities = append(p.Equities, pos)
	}

	t.packet = p
}

// Calculate computes values, changes and portfolio totals.
func (t *Tracker) Calculate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	calculate(&t.packet, t.cash)
	t.packet.UpdatedAt = t.now()
	if t.metrics != nil {
		t.metrics.PortfolioValue.Set(t.packet.Totals.Total)
	}
}

// ToStrings renders the last computed packet with the configured number
// of decimal places.
func (t *Tracker) ToStrings() Report {
	t.mu.RLock()
	p := t.packet
	digits := t.prefs.DecimalPlaces
	withIndices := t.flags.IndicesDisplayed
	t.mu.RUnlock()

	r := render(t.formatter, p, digits, withIndices)
	if t.clock != nil {
		r.Status = t.clock.Status(t.now())
	}
	r.MarketClosed = t.IsClosed()
	return r
}

// Refresh runs GetData, ExtractData and Calculate and returns the result.
func (t *Tracker) Refresh(ctx context.Context) (Packet, error) {
	err := t.GetData(ctx)
	t.observeRefresh(err)
	if err != nil {
		return Packet{}, err
	}
	t.ExtractData()
	t.Calculate()
	return t.Packet(), nil
}

func (t *Tracker) observeRefresh(err error) {
	if t.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case apperrors.IsCanceled(err):
		outcome = "canceled"
	case apperrors.IsConflict(err):
		outcome = "skipped"
	default:
		outcome = "error"
	}
	t.metrics.Refreshes.WithLabelValues(outcome).Inc()
}

// Packet returns a copy of the last computed packet.
func (t *Tracker) Packet() Packet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.packet.clone()
}

// StopMain cancels the running portfolio fetch. It reports whether one
// was running.
func (t *Tracker) StopMain() bool {
	return t.batch.Stop()
}

// StopAll cancels the portfolio fetch and any symbol directory or price
// history fetch.
func (t *Tracker) StopAll() {
	t.StopMain()
	stopped := false
	if t.symbols != nil && t.symbols.Stop() {
		stopped = true
	}
	if t.rsi != nil && t.rsi.Stop() {
		stopped = true
	}
	if stopped {
		t.mu.Lock()
		t.flags.Canceled = true
		t.mu.Unlock()
	}
}

// Flags returns the current flags.
func (t *Tracker) Flags() Flags {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.flags
}

// SetDefaultView records whether the client shows the default (empty
// portfolio) view.
func (t *Tracker) SetDefaultView(v bool) {
	t.mu.Lock()
	t.flags.DefaultView = v
	t.mu.Unlock()
}

// SetClosed overrides the market-closed flag. The clock display drives it
// while clocks are shown.
func (t *Tracker) SetClosed(v bool) {
	t.mu.Lock()
	t.flags.MarketClosed = v
	t.mu.Unlock()
}

// IsClosed reports whether the market is closed. While clocks are not
// displayed the market clock is consulted.
func (t *Tracker) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.flags.ClocksDisplayed && t.clock != nil {
		t.flags.MarketClosed = t.clock.Closed(t.now())
	}
	return t.flags.MarketClosed
}

// UpdateSchedule returns the refresh interval and how long refreshes
// continue after the close.
func (t *Tracker) UpdateSchedule() (time.Duration, time.Duration) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return updateInterval(t.prefs.UpdatesPerMin), time.Duration(t.prefs.UpdatesHours * float64(time.Hour))
}

func updateInterval(perMin float64) time.Duration {
	if perMin <= 0 {
		perMin = 1
	}
	d := time.Duration(float64(time.Minute) / perMin)
	if d < time.Second {
		d = time.Second
	}
	return d
}

// Equities returns the equity holdings.
func (t *Tracker) Equities() []models.Equity {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.Equity(nil), t.holdings...)
}

// AddEquity adds an equity or changes its share count.
func (t *Tracker) AddEquity(symbol string, shares int64) (models.Equity, error) {
	symbol = format.UpperCase(strings.TrimSpace(symbol))
	if !format.CheckValidString(symbol) {
		return models.Equity{}, apperrors.ValidationField("symbol", "invalid symbol")
	}
	if shares < 0 {
		return models.Equity{}, apperrors.ValidationField("shares", "shares must not be negative")
	}
	if err := t.equities.Add(symbol, shares); err != nil {
		return models.Equity{}, apperrors.Internal("saving equity", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	e := models.Equity{Symbol: symbol, Shares: shares, CreatedAt: t.now()}
	for i := range t.holdings {
		if t.holdings[i].Symbol == symbol {
			t.holdings[i].Shares = shares
			return t.holdings[i], nil
		}
	}
	t.holdings = append(t.holdings, e)
	sort.Slice(t.holdings, func(i, j int) bool { return t.holdings[i].Symbol < t.holdings[j].Symbol })
	t.flags.DefaultView = false
	return e, nil
}

// RemoveEquity removes one equity.
func (t *Tracker) RemoveEquity(symbol string) error {
	symbol = format.UpperCase(strings.TrimSpace(symbol))
	if err := t.equities.Remove(symbol); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.holdings {
		if t.holdings[i].Symbol == symbol {
			t.holdings = append(t.holdings[:i], t.holdings[i+1:]...)
			break
		}
	}
	return nil
}

// RemoveAllEquity removes every equity and returns how many there were.
func (t *Tracker) RemoveAllEquity() (int64, error) {
	n, err := t.equities.RemoveAll()
	if err != nil {
		return 0, apperrors.Internal("removing equities", err)
	}
	t.mu.Lock()
	t.holdings = t.holdings[:0]
	t.mu.Unlock()
	return n, nil
}

// Bullion returns every metal holding in display order.
func (t *Tracker) Bullion() []models.Bullion {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Bullion, 0, len(models.Metals))
	for _, m := range models.Metals {
		b := t.metals[m]
		b.Metal = m
		out = append(out, b)
	}
	return out
}

// SetBullion stores the ounces and premium of a metal.
func (t *Tracker) SetBullion(b models.Bullion) error {
	b.Metal = strings.ToLower(strings.TrimSpace(b.Metal))
	if !models.IsMetal(b.Metal) {
		return apperrors.ValidationField("metal", "unknown metal")
	}
	if b.Ounces < 0 || b.Premium < 0 {
		return apperrors.Validation("ounces and premium must not be negative")
	}
	if err := t.bullion.Set(b); err != nil {
		return apperrors.Internal("saving bullion", err)
	}
	t.mu.Lock()
	t.metals[b.Metal] = b
	t.mu.Unlock()
	return nil
}

// Cash returns the cash balance.
func (t *Tracker) Cash() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cash
}

// SetCash stores the cash balance.
func (t *Tracker) SetCash(v float64) error {
	if v < 0 {
		return apperrors.ValidationField("cash", "cash must not be negative")
	}
	if err := t.settings.SetCash(v); err != nil {
		return apperrors.Internal("saving cash", err)
	}
	t.mu.Lock()
	t.cash = v
	t.mu.Unlock()
	return nil
}

// API returns the finance API settings.
func (t *Tracker) API() models.APISettings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.api
}

// SetAPI stores the finance API settings. Empty fields keep their value.
func (t *Tracker) SetAPI(s models.APISettings) (models.APISettings, error) {
	t.mu.RLock()
	cur := t.api
	t.mu.RUnlock()

	if s.StockURL == "" {
		s.StockURL = cur.StockURL
	}
	if s.Key == "" {
		s.Key = cur.Key
	}
	if s.NasdaqURL == "" {
		s.NasdaqURL = cur.NasdaqURL
	}
	if s.NYSEURL == "" {
		s.NYSEURL = cur.NYSEURL
	}
	if err := t.settings.SetAPI(s); err != nil {
		return cur, apperrors.Internal("saving API settings", err)
	}
	t.mu.Lock()
	t.api = s
	t.mu.Unlock()
	return s, nil
}

// Preferences returns the display and refresh settings.
func (t *Tracker) Preferences() models.Preferences {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.prefs
}

// SetPreferences validates and stores the display and refresh settings.
func (t *Tracker) SetPreferences(p models.Preferences) error {
	if p.DecimalPlaces < 0 || p.DecimalPlaces > format.MaxPrecision {
		return apperrors.ValidationField("decimal_places", fmt.Sprintf("decimal places must be 0 to %d", format.MaxPrecision))
	}
	if p.UpdatesPerMin <= 0 || p.UpdatesPerMin > 60 {
		return apperrors.ValidationField("updates_per_min", "updates per minute must be above 0 and at most 60")
	}
	if p.UpdatesHours < 0 {
		return apperrors.ValidationField("updates_hours", "update hours must not be negative")
	}
	if p.MainFont == "" {
		p.MainFont = models.DefaultPreferences().MainFont
	}
	if err := t.settings.SetPreferences(p); err != nil {
		return apperrors.Internal("saving preferences", err)
	}
	t.mu.Lock()
	t.prefs = p
	t.flags.ClocksDisplayed = p.ClocksDisplayed
	t.flags.IndicesDisplayed = p.IndicesDisplayed
	t.mu.Unlock()
	return nil
}

// Views returns the stored view geometry.
func (t *Tracker) Views() []models.View {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.View, 0, len(t.views))
	for _, name := range []string{models.ViewMain, models.ViewRSI, models.ViewHistory} {
		if v, ok := t.views[name]; ok {
			out = append(out, v)
		}
	}
	return out
}

// SaveView stores the geometry of a view.
func (t *Tracker) SaveView(v models.View) error {
	switch v.Name {
	case models.ViewMain, models.ViewRSI, models.ViewHistory:
	default:
		return apperrors.ValidationField("name", "unknown view")
	}
	if v.Width < 0 || v.Height < 0 {
		return apperrors.Validation("view size must not be negative")
	}
	if err := t.settings.SaveView(v); err != nil {
		return apperrors.Internal("saving view", err)
	}
	t.mu.Lock()
	t.views[v.Name] = v
	t.mu.Unlock()
	return nil
}

// SaveSqlData writes the in-memory views, preferences, API settings, cash
// and bullion to the database. Equities are saved as they change.
func (t *Tracker) SaveSqlData() error {
	t.mu.RLock()
	views := make([]models.View, 0, len(t.views))
	for _, v := range t.views {
		views = append(views, v)
	}
	prefs, api, cash := t.prefs, t.api, t.cash
	metals := make([]models.Bullion, 0, len(t.metals))
	for _, b := range t.metals {
		metals = append(metals, b)
	}
	t.mu.RUnlock()

	var errs []error
	for _, v := range views {
		if err := t.settings.SaveView(v); err != nil {
			errs = append(errs, fmt.Errorf("saving view %s: %w", v.Name, err))
		}
	}
	if err := t.settings.SetPreferences(prefs); err != nil {
		errs = append(errs, fmt.Errorf("saving preferences: %w", err))
	}
	if err := t.settings.SetAPI(api); err != nil {
		errs = append(errs, fmt.Errorf("saving API settings: %w", err))
	}
	if err := t.settings.SetCash(cash); err != nil {
		errs = append(errs, fmt.Errorf("saving cash: %w", err))
	}
	for _, b := range metals {
		if err := t.bullion.Set(b); err != nil {
			errs = append(errs, fmt.Errorf("saving %s: %w", b.Metal, err))
		}
	}
	return errors.Join(errs...)
}
