package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"folio_tracker/internal/app"
	"folio_tracker/internal/config"
	"folio_tracker/internal/handlers"
	"folio_tracker/internal/logging"
	"folio_tracker/internal/middleware"
	"folio_tracker/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.New()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("starting folio tracker", zap.Error(err))
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("closing", zap.Error(err))
		}
	}()

	sched := scheduler.New(a.Tracker, a.Clock, logger.Named("scheduler"))
	limiter := middleware.NewRateLimiter(cfg.APIRate, cfg.APIBurst)
	defer limiter.Stop()

	deps := handlers.NewDependencies().
		WithTracker(a.Tracker).
		WithSymbols(a.Symbols).
		WithRSI(a.RSI).
		WithHistory(a.History).
		WithScheduler(sched).
		WithMetrics(a.Metrics).
		WithDB(a.DB).
		WithLimiter(limiter).
		WithLogger(logger.Named("http")).
		WithDemoMode(cfg.DemoMode)

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handlers.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // a refresh or RSI fetch waits on the finance API
		IdleTimeout:  60 * time.Second,
	}

	// Load the symbol directory in the background so the first search is fast.
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	ensured := make(chan struct{})
	go func() {
		defer close(ensured)
		if err := a.Symbols.Ensure(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("loading symbol directory", zap.Error(err))
		}
	}()

	sched.Start()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", "http://"+cfg.Address()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	bgCancel()
	a.Tracker.StopAll()
	sched.Stop()
	<-ensured

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
