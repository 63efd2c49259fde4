package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/config"
	"bookreview/internal/httpx"
	"bookreview/internal/logger"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/platform/postgres"
	"bookreview/internal/review"
	"bookreview/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Fatalw("server stopped", "error", err)
	}
}

type repositories struct {
	users   user.Repository
	books   book.Repository
	reviews review.Repository
}

// wire builds the router on top of the given repositories. The returned
// limiter must be stopped by the caller.
func wire(cfg config.Config, repos repositories, reg *prometheus.Registry, ping func(context.Context) error) (http.Handler, *httpx.RateLimitMiddleware) {
	tokens := crypto.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	userService := user.NewService(repos.users)
	reviewService := review.NewService(repos.reviews)
	bookService := book.NewService(repos.books, reviewService)
	authService := auth.NewService(userService, tokens)

	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)

	router := newRouter(routerDeps{
		cfg:      cfg,
		verifier: tokens,
		auth:     auth.NewHTTPHandler(authService),
		users:    user.NewHTTPHandler(userService),
		books:    book.NewHTTPHandler(bookService),
		reviews:  review.NewHTTPHandler(reviewService),
		limiter:  limiter,
		metrics:  httpx.NewMetrics(reg),
		gatherer: reg,
		ping:     ping,
	})
	return router, limiter
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Log.Infow("database connection OK", "dsn", postgres.RedactDSN(cfg.DatabaseDSN))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router, limiter := wire(cfg, repositories{
		users:   user.NewPostgresRepo(pool, cfg.QueryTimeout),
		books:   book.NewPostgresRepo(pool, cfg.QueryTimeout),
		reviews: review.NewPostgresRepo(pool, cfg.QueryTimeout),
	}, reg, pool.Ping)
	defer limiter.Stop()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infow("starting server", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
