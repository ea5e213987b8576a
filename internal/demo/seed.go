// Package demo provides demo data seeding for demonstration deployments.
package demo

import (
	"fmt"

	"go.uber.org/zap"

	"folio_tracker/internal/models"
	"folio_tracker/internal/services"
)

// Seeder seeds an empty portfolio with sample holdings.
type Seeder struct {
	tracker *services.Tracker
	logger  *zap.Logger
}

// NewSeeder creates a new demo data seeder.
func NewSeeder(tracker *services.Tracker, logger *zap.Logger) *Seeder {
	return &Seeder{tracker: tracker, logger: logger}
}

// Sample holdings written by Seed.
var (
	demoEquities = []models.Equity{
		{Symbol: "AAPL", Shares: 50},
		{Symbol: "MSFT", Shares: 30},
		{Symbol: "NVDA", Shares: 25},
		{Symbol: "KO", Shares: 120},
		{Symbol: "IBM", Shares: 40},
	}
	demoBullion = []models.Bullion{
		{Metal: models.Gold, Ounces: 10, Premium: 35},
		{Metal: models.Silver, Ounces: 250, Premium: 3.5},
		{Metal: models.Platinum, Ounces: 2, Premium: 60},
	}
	demoCash = 12500.0
)

// SeedIfEmpty seeds demo data if the portfolio holds no equities, metals
// or cash.
func (s *Seeder) SeedIfEmpty() error {
	if !s.empty() {
		s.logger.Info("portfolio already has holdings, skipping demo seed")
		return nil
	}
	s.logger.Info("seeding demo portfolio")
	return s.Seed()
}

func (s *Seeder) empty() bool {
	if len(s.tracker.Equities()) > 0 || s.tracker.Cash() != 0 {
		return false
	}
	for _, b := range s.tracker.Bullion() {
		if b.Ounces != 0 {
			return false
		}
	}
	return true
}

// Seed writes the sample holdings.
func (s *Seeder) Seed() error {
	for _, e := range demoEquities {
		if _, err := s.tracker.AddEquity(e.Symbol, e.Shares); err != nil {
			return fmt.Errorf("seeding %s: %w", e.Symbol, err)
		}
	}
	for _, b := range demoBullion {
		if err := s.tracker.SetBullion(b); err != nil {
			return fmt.Errorf("seeding %s: %w", b.Metal, err)
		}
	}
	if err := s.tracker.SetCash(demoCash); err != nil {
		return fmt.Errorf("seeding cash: %w", err)
	}
	s.logger.Info("demo portfolio seeded",
		zap.Int("equities", len(demoEquities)),
		zap.Int("metals", len(demoBullion)))
	return nil
}
