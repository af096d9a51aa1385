// cmd/worker-manager/router.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type readinessChecker interface {
	Ready(ctx context.Context) error
}

type brokerChecker interface {
	HealthCheck(ctx context.Context) error
}

func newOpsRouter(backends readinessChecker, broker brokerChecker, version string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"version": version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		body := map[string]string{"time": time.Now().Format(time.RFC3339)}
		status := http.StatusOK
		if err := backends.Ready(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["backends"] = err.Error()
		}
		if broker != nil {
			if err := broker.HealthCheck(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["zeebe"] = err.Error()
			}
		}
		if status == http.StatusOK {
			body["status"] = "ready"
		} else {
			body["status"] = "not ready"
		}
		writeStatus(w, status, body)
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
