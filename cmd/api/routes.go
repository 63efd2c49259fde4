package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/httpx"
	"bookreview/internal/review"
	"bookreview/internal/user"
)

type routerDeps struct {
	cfg      config.Config
	verifier httpx.TokenVerifier
	auth     *auth.HTTPHandler
	users    *user.HTTPHandler
	books    *book.HTTPHandler
	reviews  *review.HTTPHandler
	limiter  *httpx.RateLimitMiddleware
	metrics  *httpx.Metrics
	gatherer prometheus.Gatherer
	// ping reports database readiness. nil means always ready.
	ping func(ctx context.Context) error
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(httpx.AccessLogMiddleware)
	r.Use(httpx.RecoveryMiddleware)
	r.Use(d.metrics.Middleware)
	r.Use(httpx.SecurityHeadersMiddleware(d.cfg.EnableHSTS))
	r.Use(httpx.CORSMiddleware(d.cfg.CORSOrigins))
	r.Use(httpx.RequestSizeLimitMiddleware(d.cfg.MaxBodyBytes))
	r.Use(d.limiter.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := d.ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", d.auth.Signup)
		r.Post("/auth/login", d.auth.Login)

		r.Get("/books", d.books.List)
		r.Get("/books/{id}", d.books.Get)
		r.Get("/genres", d.books.Genres)
		r.Get("/authors", d.books.Authors)

		r.Group(func(r chi.Router) {
			r.Use(httpx.AuthMiddleware(d.verifier))

			r.Get("/auth/me", d.users.GetCurrentUser)
			r.Post("/books", d.books.Create)
			r.Post("/books/{id}/reviews", d.reviews.Create)
		})
	})

	return r
}
