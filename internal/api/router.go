package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "loan-servicing/docs"
	"loan-servicing/internal/api/handler"
	mw "loan-servicing/internal/api/middleware"
	"loan-servicing/internal/config"
	"loan-servicing/internal/domain/loan"
)

// Dependencies are the services the HTTP surface reads from.
type Dependencies struct {
	Schedules    loan.ScheduleService
	Transitions  handler.TransitionReader
	HealthChecks map[string]handler.HealthCheck
}

// SetupRouter builds the chi router. ctx bounds background work started by
// middleware.
func SetupRouter(ctx context.Context, deps Dependencies, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(ctx, router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupHealthRoutes(router, deps.HealthChecks)
	setupScheduleRoutes(router, deps, logger)
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(ctx context.Context, router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(timeout))
	router.Use(mw.NewRateLimiterMiddleware(ctx, cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupHealthRoutes(router *chi.Mux, checks map[string]handler.HealthCheck) {
	h := handler.NewHealthHandler(checks)
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupScheduleRoutes(router *chi.Mux, deps Dependencies, logger *slog.Logger) {
	scheduleHandler := handler.NewScheduleHandler(deps.Schedules, deps.Transitions, logger)
	calculatorHandler := handler.NewCalculatorHandler(deps.Schedules, logger)

	router.Route("/loans/{loanID}", func(r chi.Router) {
		r.Get("/schedule", scheduleHandler.GetSchedule)
		r.Get("/transitions", scheduleHandler.ListTransitions)
	})

	router.Get("/calculator/installment", calculatorHandler.QuoteInstallment)
}
