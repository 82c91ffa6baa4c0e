package main

import (
	"net/http"
	"os"

	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/server"
)

// NewApp bundles the API router with the CORS layer the SPA frontend needs.
// The frontend is served separately; this binary only speaks JSON (and PDF).
func NewApp(dbConn *gorm.DB) http.Handler {
	return withCORS(server.New(dbConn))
}

// withCORS allows the configured frontend origin (FRONTEND_ORIGIN) to call the
// API with credentials. Without the variable, same-origin deployments work
// as before and no CORS headers are emitted.
func withCORS(next http.Handler) http.Handler {
	origin := os.Getenv("FRONTEND_ORIGIN")
	if origin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Origin") == origin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
