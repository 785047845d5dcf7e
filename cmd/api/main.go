// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ceylonmate/culture-kb/internal/answer"
	"github.com/ceylonmate/culture-kb/internal/api"
	"github.com/ceylonmate/culture-kb/internal/config"
	"github.com/ceylonmate/culture-kb/internal/embedder"
	"github.com/ceylonmate/culture-kb/internal/logging"
	"github.com/ceylonmate/culture-kb/internal/service"
	"github.com/ceylonmate/culture-kb/internal/storage"
)

func main() {
	// Server flags
	addr := flag.String("addr", ":8080", "Server address")
	envFile := flag.String("env-file", ".env", "dotenv file to load before reading the environment")

	// Rate limiting flags
	rateLimit := flag.Int("rate-limit", 100, "Requests per minute per IP (0 to disable)")

	// CORS flags
	corsOrigins := flag.String("cors-origins", "", "Comma-separated list of allowed CORS origins (empty to disable)")

	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogHandler)

	if err := run(cfg, logger, *addr, *rateLimit, *corsOrigins); err != nil {
		logger.Error("api server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, addr string, rateLimit int, corsOrigins string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize storage
	store, err := storage.New(ctx, cfg.Storage())
	if err != nil {
		return err
	}
	defer store.Close()

	// Initialize embedder
	emb, err := embedder.New(cfg.Embedder())
	if err != nil {
		return err
	}

	var opts []service.Option
	if cfg.AnswerEnabled() {
		gen, err := answer.New(cfg.Answer())
		if err != nil {
			return err
		}
		opts = append(opts, service.WithGenerator(gen))
	} else {
		logger.Info("GROQ_API_KEY not set, /v1/knowledge/ask disabled")
	}

	svc := service.New(store, emb, opts...)
	handlers := api.NewHandlers(svc, logger)

	// Health verifies storage connectivity
	handlers.SetHealthCheck(func() error {
		hctx, hcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer hcancel()
		_, err := store.Count(hctx, "")
		return err
	})

	r := newRouter(handlers, rateLimit, corsOrigins)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")

		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer scancel()

		if err := srv.Shutdown(sctx); err != nil {
			logger.Error("shutdown error", "err", err)
		}
		close(done)
	}()

	logger.Info("starting API server", "addr", addr, "driver", cfg.StorageDriver, "model", cfg.EmbeddingModel)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}

func newRouter(handlers *api.Handlers, rateLimit int, corsOrigins string) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(api.RequestID)
	r.Use(api.MaxBodySize)

	// Rate limiting (if enabled)
	if rateLimit > 0 {
		limiter := api.NewRateLimiter(rateLimit, time.Minute)
		r.Use(limiter.Middleware)
	}

	// CORS (if enabled)
	if corsOrigins != "" {
		origins := strings.Split(corsOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		r.Use(api.CORSMiddleware(origins))
	}

	// Routes
	r.Get("/health", handlers.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/knowledge", handlers.List)
		r.Post("/knowledge/search", handlers.Search)
		r.Post("/knowledge/ask", handlers.Ask)
	})

	return r
}
