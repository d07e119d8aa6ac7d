package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"orgdir/internal"
)

// OrganizationFetcher runs one directory fetch cycle.
type OrganizationFetcher interface {
	FetchAll(ctx context.Context) ([]internal.Organization, error)
}

// SetupRoutes registers the directory API on router.
func SetupRoutes(router *mux.Router, fetcher OrganizationFetcher, logger *zap.Logger, allowedOrigin string) {
	if logger == nil {
		logger = zap.NewNop()
	}
	router.Use(requestLogger(logger))
	router.Use(corsMiddleware(allowedOrigin))

	router.HandleFunc("/api/organizations", organizationsHandler(fetcher, logger)).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
}

func NewRouter(fetcher OrganizationFetcher, logger *zap.Logger, allowedOrigin string) *mux.Router {
	router := mux.NewRouter()
	SetupRoutes(router, fetcher, logger, allowedOrigin)
	return router
}

func organizationsHandler(fetcher OrganizationFetcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgs, err := fetcher.FetchAll(r.Context())
		if err != nil {
			logger.Error("error fetching organizations", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, internal.ErrorResponse{
				Error:   "Failed to fetch organizations",
				Details: err.Error(),
			})
			return
		}
		if orgs == nil {
			orgs = []internal.Organization{}
		}
		writeJSON(w, http.StatusOK, orgs)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func corsMiddleware(allowedOrigin string) mux.MiddlewareFunc {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(start)))
		})
	}
}
