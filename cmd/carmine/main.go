package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/carmine-visuals/carmine-web/internal/admin"
	"github.com/carmine-visuals/carmine-web/internal/app"
	"github.com/carmine-visuals/carmine-web/internal/auth"
	"github.com/carmine-visuals/carmine-web/internal/news"
	"github.com/carmine-visuals/carmine-web/internal/observability"
	"github.com/carmine-visuals/carmine-web/internal/pages"
	platformdb "github.com/carmine-visuals/carmine-web/internal/platform/db"
	"github.com/carmine-visuals/carmine-web/internal/shared"
	"github.com/carmine-visuals/carmine-web/internal/store"
	"github.com/carmine-visuals/carmine-web/internal/view"
	"github.com/carmine-visuals/carmine-web/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	db, err := platformdb.Open(ctx, platformdb.Options{
		Backend:       cfg.DBBackend,
		SQLitePath:    cfg.SQLitePath,
		SQLServerConn: cfg.SQLServerConn,
	})
	if err != nil {
		logger.Error("connect database", slog.String("backend", cfg.DBBackend), slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("database close", slog.Any("error", err))
		}
	}()

	if err := store.CreateSchema(ctx, db); err != nil {
		logger.Error("create schema", slog.Any("error", err))
		os.Exit(1)
	}

	users := store.NewUsers(db)
	posts := store.NewPosts(db)

	adminHash, err := auth.HashPassword(cfg.SeedAdminPass)
	if err != nil {
		logger.Error("hash seed admin password", slog.Any("error", err))
		os.Exit(1)
	}
	seeded, err := store.SeedAdmin(ctx, users, cfg.SeedAdminUser, adminHash)
	if err != nil {
		logger.Error("seed admin", slog.Any("error", err))
		os.Exit(1)
	}
	if seeded {
		logger.Info("seeded initial superuser", slog.String("username", cfg.SeedAdminUser))
	}
	if _, err := store.SeedPosts(ctx, posts); err != nil {
		logger.Error("seed posts", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "carmine_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	tokenSecret, fellBack := cfg.EffectiveTokenSecret()
	if fellBack {
		logger.Warn("TOKEN_SECRET not set, reusing SESSION_SECRET for activation tokens")
	}
	tokenIssuer := auth.NewTokenIssuer([]byte(tokenSecret), cfg.ActivationTTL)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	notifier := jobs.NewQueuedSender(jobClient, cfg.ContactEmail)

	authService := auth.NewService(logger, users, tokenIssuer, notifier, cfg.BaseURL)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)
	pagesHandler := pages.NewHandler(logger, templates, csrfManager, notifier)
	newsHandler := news.NewHandler(logger, news.NewService(logger, posts), templates, csrfManager)
	adminHandler := admin.NewHandler(logger, authService, templates, csrfManager)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		PagesHandler:   pagesHandler,
		AuthHandler:    authHandler,
		NewsHandler:    newsHandler,
		AdminHandler:   adminHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
