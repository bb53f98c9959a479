// Package server exposes the dashboard session over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/importer-intel/internal/cost"
	"github.com/sells-group/importer-intel/internal/dashboard"
)

// UsageReporter reports estimated generator spend.
type UsageReporter interface {
	Spend() []cost.Spend
}

// Server serves one dashboard session.
type Server struct {
	session *dashboard.Session
	usage   UsageReporter
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithUsage enables GET /api/usage.
func WithUsage(u UsageReporter) Option {
	return func(s *Server) { s.usage = u }
}

// New builds the router. An empty origins list allows any origin.
func New(session *dashboard.Session, origins []string, opts ...Option) *Server {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s := &Server{session: session}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.dashboard)
		r.Post("/search", s.search)
		r.Get("/results", s.results)
		r.Post("/select", s.selectImporter)

		r.Route("/record", func(r chi.Router) {
			r.Get("/", s.record)
			r.Delete("/", s.closeRecord)
			r.Post("/refresh", s.refresh)
			r.Get("/history", s.history)
			r.Get("/chart", s.chartLayout)
			r.Get("/chart.svg", s.chartSVG)
			r.Get("/chart/hover", s.chartHover)
			r.Get("/map", s.tradeMap)
			r.Get("/map.svg", s.tradeMapSVG)
			r.Get("/map/hover", s.mapHover)
			r.Post("/map/click", s.mapClick)
			r.Get("/commodities/{index}/sparkline.svg", s.sparkline)
			r.Get("/export/{format}", s.export)
		})

		r.Get("/subscriptions", s.subscriptions)
		r.Post("/subscriptions", s.subscribe)
		r.Get("/notifications", s.notifications)
		r.Delete("/notifications", s.clearNotifications)
		r.Get("/notifications/unread", s.unread)

		if s.usage != nil {
			r.Get("/usage", s.usageReport)
		}
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down and
// waits for background fetches.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("server: listening", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	s.session.Wait()
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
