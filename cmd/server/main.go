package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/garnizeh/interviewdesk/api"
	dbfs "github.com/garnizeh/interviewdesk/db"
	"github.com/garnizeh/interviewdesk/internal/config"
	"github.com/garnizeh/interviewdesk/internal/db"
	"github.com/garnizeh/interviewdesk/internal/invite"
	"github.com/garnizeh/interviewdesk/internal/jobs"
	"github.com/garnizeh/interviewdesk/internal/repository/sqlite"
	"github.com/garnizeh/interviewdesk/internal/session"
	"github.com/garnizeh/interviewdesk/internal/templates"
	"github.com/garnizeh/interviewdesk/internal/workspace"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting interviewdesk", slog.String("version", version), slog.String("build_time", buildTime))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database connection
	conn, err := db.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer conn.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
			log.Fatalf("Failed to migrate DB: %v", err)
		}
	}

	repo := sqlite.New(conn, logger)
	checks := map[string]api.Check{
		"database": func(ctx context.Context) error { return conn.GetConn().PingContext(ctx) },
	}

	// Revocations live in redis when configured, otherwise in process memory.
	var store session.Store = session.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		rs := session.NewRedisStore(client)
		if err := rs.Ping(ctx); err != nil {
			log.Fatalf("Failed to reach redis: %v", err)
		}
		store = rs
		checks["redis"] = rs.Ping
	}

	oauth := session.NewOAuth(cfg.OAuth, &http.Client{Timeout: cfg.APITimeout})
	sessions := session.NewManager(repo, session.NewIssuer(cfg.JWTSecret, cfg.TokenDuration), store, oauth, logger)

	mailer, err := invite.NewMailer(ctx, cfg.Mail, logger)
	if err != nil {
		log.Fatalf("Failed to set up mail: %v", err)
	}
	pool := jobs.NewWorkerPool(jobs.NewRepository(conn), map[string]jobs.Handler{
		invite.JobType: invite.Handler(mailer, cfg.Mail.From),
	}, logger, cfg.Workers)
	pool.Start(ctx)
	defer pool.Stop()

	catalog := templates.Default()
	registry := workspace.NewRegistry(workspace.Deps{
		Interviews: repo,
		Tasks:      repo,
		Results:    repo,
		Invites:    invite.NewService(repo, pool, cfg.PublicURL, logger),
		Catalog:    catalog,
		Logger:     logger,
	})
	registry.Start(sessions)
	defer registry.Close()

	handler := api.SetupRoutes(cfg, version, buildTime, api.Services{
		Sessions:   sessions,
		Registry:   registry,
		Interviews: repo,
		Results:    repo,
		Catalog:    catalog,
		Checks:     checks,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}
	logger.Info("server exited")
}
