package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/auth"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/gate"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/httpx"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/handlers"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/middleware"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/policy"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// Role profiles are cached briefly so the gate does not hit the DB on
	// every request of the same user.
	resolver := gate.NewCachedResolver(policy.NewRoleResolver(db), 30*time.Second)
	g := policy.NewGate(db, resolver)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1), no error details in the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	// Product endpoints. List/Create via /products, update/delete via
	// /products/update & /products/delete for simplicity.
	ph := handlers.NewProductHandler(db, g)
	mux.Handle("/products", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			ph.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/products/update", protected(ph.Update))
	mux.Handle("/products/delete", protected(ph.Delete))

	// Kit endpoints
	kh := handlers.NewKitHandler(db, g)
	mux.Handle("/kits", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			kh.List(w, r)
		case http.MethodPost:
			kh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/kits/update", protected(kh.Update))
	mux.Handle("/kits/delete", protected(kh.Delete))

	// Project endpoints
	pjh := handlers.NewProjectHandler(db, g)
	mux.Handle("/projects", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			pjh.List(w, r)
		case http.MethodPost:
			pjh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/projects/get", protected(pjh.Get))
	mux.Handle("/projects/update", protected(pjh.Update))
	mux.Handle("/projects/delete", protected(pjh.Delete))
	mux.Handle("/projects/kits", protected(pjh.AddKits))
	mux.Handle("/projects/kits/delete", protected(pjh.RemoveKit))
	mux.Handle("/projects/summary", protected(pjh.Summary))
	mux.Handle("/projects/history", protected(pjh.ListHistory))
	mux.Handle("/projects/pdf", protected(pjh.PDF))

	// Root placeholder, the real UI is a separate SPA
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Moduloop Kits API"))
	})
	//revive:enable:unused-parameter

	return middleware.Lang(withRecover(withLogging(mux)))
}

// Simple middleware logging & recovery kept private to this package to avoid duplication.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
