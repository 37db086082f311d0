// Package api serves the signboard pipeline over HTTP.
//
// Routes:
//
//	POST /v1/translate   multipart upload: file, target_language
//	GET  /v1/languages   supported target languages
//	GET  /healthz        liveness plus OCR status
//	GET  /metrics        Prometheus scrape endpoint
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ironsheep/signboard-mcp/internal/metrics"
)

// NewRouter returns the API router. Middleware order: request id, recovery,
// access log. Unmatched paths and methods get JSON 404/405 bodies through the
// same middleware.
func NewRouter(h *Handlers, logger zerolog.Logger) *mux.Router {
	router := mux.NewRouter()

	chain := []mux.MiddlewareFunc{
		requestIDMiddleware(logger),
		recoveryMiddleware,
		accessLogMiddleware,
	}
	for _, mw := range chain {
		router.Use(mw)
	}

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/v1/translate", h.Translate).Methods(http.MethodPost)
	router.HandleFunc("/v1/languages", h.Languages).Methods(http.MethodGet)

	// mux skips Use middleware for these two
	router.NotFoundHandler = wrap(http.HandlerFunc(h.NotFound), chain)
	router.MethodNotAllowedHandler = wrap(http.HandlerFunc(h.MethodNotAllowed), chain)

	return router
}

// wrap applies chain so that chain[0] runs first.
func wrap(handler http.Handler, chain []mux.MiddlewareFunc) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i].Middleware(handler)
	}
	return handler
}
