package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"huddle/internal/archive"
	"huddle/internal/config"
	"huddle/internal/hub"
	"huddle/internal/reserve"
	"huddle/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded", "err", err)
	}

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if cfg.Env == "development" {
		logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	slog.SetDefault(logger)

	sessions := ws.NewSessionManager(logger)

	hubOpts := []hub.Option{
		hub.WithLogger(logger),
		hub.WithHistoryLimit(cfg.HistoryLimit),
	}

	// Optional Postgres message archive.
	if cfg.ArchiveDSN != "" {
		arc, err := archive.Open(cfg.ArchiveDSN)
		if err != nil {
			logger.Error("failed to open message archive", "err", err)
			os.Exit(1)
		}
		defer arc.Close()
		hubOpts = append(hubOpts, hub.WithArchiver(arc))
		logger.Info("message archive enabled")
	}

	h := hub.New(sessions, hubOpts...)
	wsHandler := ws.NewHandler(h, sessions, cfg.AllowedOrigins, cfg.MaxMessageSize, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ws", wsHandler.ServeWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	// Optional Redis-backed name reservation API.
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		store := reserve.NewStore(redisClient, cfg.ReserveTTL)
		reserve.NewHandler(store, logger).Routes(r)
		logger.Info("name reservation API enabled", "redis", cfg.RedisAddr)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: corsHandler.Handler(r),
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	sessions.CloseAll()
	logger.Info("shutdown complete")
}
