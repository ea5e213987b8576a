// Package app wires the folio tracker's database, finance API client and
// services together for the server and the CLI.
package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"folio_tracker/internal/config"
	"folio_tracker/internal/database"
	"folio_tracker/internal/demo"
	"folio_tracker/internal/format"
	"folio_tracker/internal/metrics"
	"folio_tracker/internal/quotes"
	"folio_tracker/internal/repository"
	"folio_tracker/internal/secrets"
	"folio_tracker/internal/services"
)

// defaultSecret is the config default; it is accepted but logged loudly
// outside development.
const defaultSecret = "change-me-in-production-32chars!"

// historyRetention bounds the fetch_history table.
const historyRetention = 30 * 24 * time.Hour

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *database.DB
	Metrics   *metrics.Metrics
	Formatter *format.Formatter
	Client    *quotes.Client
	History   *services.History
	Symbols   *services.SymbolService
	RSI       *services.RSIService
	Clock     *services.MarketClock
	Tracker   *services.Tracker
}

// New opens the database, runs migrations and builds the services. The
// tracker is loaded and, in demo mode, seeded.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a, err := build(cfg, logger, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func build(cfg *config.Config, logger *zap.Logger, db *database.DB) (*App, error) {
	if err := db.RunMigrations(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Debug("database migrations completed", zap.String("path", cfg.DBPath))

	box, err := secrets.NewBox(cfg.EncryptionSecret, "api")
	switch {
	case errors.Is(err, secrets.ErrInvalidKey):
		logger.Warn("ENCRYPTION_SECRET shorter than 32 characters, API key stored in plain text")
		box = nil
	case err != nil:
		return nil, fmt.Errorf("creating secret box: %w", err)
	case cfg.EncryptionSecret == defaultSecret && !cfg.IsDevelopment():
		logger.Warn("using the default ENCRYPTION_SECRET, set your own")
	}

	m := metrics.New()
	f := format.New(cfg.Locale, cfg.Currency)
	client := quotes.NewClient(quotes.Options{
		Timeout: cfg.HTTPTimeout,
		Rate:    cfg.APIRate,
		Burst:   cfg.APIBurst,
	}, m, logger.Named("quotes"))

	settings := repository.NewSettingsRepository(db, box)
	history := services.NewHistory(repository.NewFetchHistoryRepository(db), logger)
	symbols := services.NewSymbolService(repository.NewSymbolRepository(db), settings, client, history, logger.Named("symbols"))
	rsi := services.NewRSIService(client, history, symbols, f, cfg.YahooURL, logger.Named("rsi"))
	clock, err := services.NewMarketClock()
	if err != nil {
		return nil, fmt.Errorf("loading market clock: %w", err)
	}

	tracker := services.NewTracker(services.TrackerOptions{
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
		Logger:    logger.Named("tracker"),
		YahooBase: cfg.YahooURL,
	})
	if err := tracker.Load(); err != nil {
		return nil, fmt.Errorf("loading portfolio: %w", err)
	}
	if _, err := history.Prune(historyRetention); err != nil {
		logger.Warn("pruning fetch history", zap.Error(err))
	}

	if cfg.DemoMode {
		if err := demo.NewSeeder(tracker, logger).SeedIfEmpty(); err != nil {
			return nil, fmt.Errorf("seeding demo data: %w", err)
		}
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Metrics:   m,
		Formatter: f,
		Client:    client,
		History:   history,
		Symbols:   symbols,
		RSI:       rsi,
		Clock:     clock,
		Tracker:   tracker,
	}, nil
}

// Close cancels any fetch, saves the in-memory settings and closes the
// database.
func (a *App) Close() error {
	a.Tracker.StopAll()
	saveErr := a.Tracker.SaveSqlData()
	if saveErr != nil {
		a.Logger.Error("saving settings on exit", zap.Error(saveErr))
	}
	return errors.Join(saveErr, a.DB.Close())
}
