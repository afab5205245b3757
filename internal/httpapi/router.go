package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/richard-senior/goalclock/internal/config"
	"github.com/richard-senior/goalclock/internal/logger"
)

// NewRouter wires the JSON API and the form page
func NewRouter(s *config.Settings) http.Handler {
	handler := NewHandler(s)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   handler.settings.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handler.HealthCheck)
	r.Get("/", handler.Form)
	r.Post("/", handler.Submit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/goal-times", handler.CalculateGoalTimes)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func ListenAndServe(ctx context.Context, s *config.Settings) error {
	server := &http.Server{
		Addr:         s.HTTPAddr,
		Handler:      NewRouter(s),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on", s.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
