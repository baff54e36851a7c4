package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/courseloop/insights/internal/core/domain"
	"github.com/courseloop/insights/internal/orchestrator"
)

type Server struct {
	Router *chi.Mux
	Port   int
	logger *slog.Logger

	httpSrv *http.Server
}

// New builds the HTTP surface over the analytics orchestrator. Middleware
// order matters: the request id must exist before logging, and the caller
// must be decoded before any report handler runs.
func New(port int, logger *slog.Logger, orch *orchestrator.Orchestrator, requestTimeout time.Duration) *Server {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(requestTimeout))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "insights")
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/reports", func(r chi.Router) {
		r.Use(CallerMiddleware)

		r.Get("/costs", reportHandler(func(req *http.Request, caller domain.CallerContext, f orchestrator.Filters) (domain.CostBreakdown, error) {
			return orch.CostBreakdown(req.Context(), caller, f)
		}))
		r.Get("/usage", reportHandler(func(req *http.Request, caller domain.CallerContext, f orchestrator.Filters) (domain.UsageSnapshot, error) {
			return orch.UsageSnapshot(req.Context(), caller, f)
		}))
		r.Get("/trends", reportHandler(func(req *http.Request, caller domain.CallerContext, f orchestrator.Filters) (domain.TrendSeries, error) {
			return orch.TrendSeries(req.Context(), caller, f)
		}))
		r.Get("/hourly", reportHandler(func(req *http.Request, caller domain.CallerContext, f orchestrator.Filters) (domain.HourlyProfile, error) {
			return orch.HourlyProfile(req.Context(), caller, f)
		}))
		r.Get("/engagement", reportHandler(func(req *http.Request, caller domain.CallerContext, f orchestrator.Filters) (domain.EngagementSummary, error) {
			return orch.EngagementSummary(req.Context(), caller, f)
		}))
		r.Get("/performance", reportHandler(func(req *http.Request, caller domain.CallerContext, f orchestrator.Filters) (domain.PerformanceProfile, error) {
			return orch.PerformanceProfile(req.Context(), caller, f)
		}))
		r.Get("/modules", reportHandler(func(req *http.Request, caller domain.CallerContext, f orchestrator.Filters) (domain.ModuleComparison, error) {
			return orch.ModuleComparison(req.Context(), caller, f)
		}))
		r.Get("/faq", reportHandler(func(req *http.Request, caller domain.CallerContext, f orchestrator.Filters) (domain.FAQList, error) {
			return orch.FAQList(req.Context(), caller, f)
		}))
	})

	return &Server{
		Router: r,
		Port:   port,
		logger: logger,
	}
}

func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.Port),
		Handler: s.Router,
	}
	s.logger.Info("starting server", slog.Int("port", s.Port))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
