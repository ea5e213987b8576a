package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/middleware"
)

// NewRouter builds the HTTP routes.
func NewRouter(d *Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer(d.Logger))
	r.Use(middleware.SecurityHeaders)

	tools := NewToolsHandler(d)
	r.Get("/health", tools.Health)
	r.Get("/qr", tools.QRCode)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	portfolio := NewPortfolioHandler(d)
	holdings := NewHoldingsHandler(d)
	settings := NewSettingsHandler(d)
	symbols := NewSymbolsHandler(d)
	rsi := NewRSIHandler(d)
	export := NewExportHandler(d)
	history := NewHistoryHandler(d)

	r.Route("/api", func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Limit)
		}
		r.Use(middleware.RequireJSON)
		r.Use(chimw.Compress(5, "application/json", "text/csv"))

		r.Get("/portfolio", portfolio.Get)
		r.Get("/portfolio/packet", portfolio.Packet)
		r.Get("/portfolio/export.csv", export.ExportPortfolio)
		r.Post("/portfolio/refresh", portfolio.Refresh)
		r.Delete("/portfolio/fetch", portfolio.Stop)
		r.Get("/flags", portfolio.Flags)
		r.Put("/flags", portfolio.SetFlags)
		r.Delete("/fetch", portfolio.StopAll)

		r.Get("/equities", holdings.ListEquities)
		r.Post("/equities", holdings.AddEquity)
		r.Delete("/equities", holdings.RemoveAllEquity)
		r.Delete("/equities/{symbol}", holdings.RemoveEquity)

		r.Get("/bullion", holdings.ListBullion)
		r.Put("/bullion/{metal}", holdings.SetBullion)

		r.Get("/cash", holdings.GetCash)
		r.Put("/cash", holdings.SetCash)

		r.Get("/settings/api", settings.GetAPI)
		r.Put("/settings/api", settings.SetAPI)
		r.Get("/preferences", settings.GetPreferences)
		r.Put("/preferences", settings.SetPreferences)
		r.Get("/views", settings.ListViews)
		r.Put("/views/{name}", settings.SaveView)

		r.Get("/symbols", symbols.Search)
		r.Post("/symbols/refresh", symbols.Refresh)
		r.Get("/symbols/{symbol}", symbols.Name)

		r.Get("/rsi/{symbol}", rsi.Get)
		r.Get("/rsi/{symbol}/export.csv", export.ExportRSI)
		r.Delete("/rsi", rsi.Stop)

		r.Get("/history", history.List)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, d.Logger, apperrors.NotFound("route "+r.URL.Path))
		})
	})

	return r
}
