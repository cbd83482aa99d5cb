package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/teerapatch/linklytics/pkg/config"
	"github.com/teerapatch/linklytics/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, links ports.LinkService, clicks ports.ClickService, analytics ports.AnalyticsService, log zerolog.Logger) http.Handler {
	h := NewHTTPHandler(links, clicks, analytics, log)
	mw := NewMiddleware(cfg)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /{short_code}", h.Redirect)

	// Protected API Routes. The caller identity comes from the verified
	// token; none of these handlers see unauthenticated traffic.
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /api/v1/links", h.Create)
	protectedMux.HandleFunc("GET /api/v1/links", h.List)
	protectedMux.HandleFunc("DELETE /api/v1/links/{code}", h.Delete)
	protectedMux.HandleFunc("GET /api/v1/links/{code}/analytics", h.Analytics)

	mux.Handle("/api/v1/", mw.Auth(protectedMux))

	return mux
}
