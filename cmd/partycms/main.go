// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/aljanabi/partycms/internal/assets"
	"github.com/aljanabi/partycms/internal/cache"
	"github.com/aljanabi/partycms/internal/config"
	"github.com/aljanabi/partycms/internal/content"
	"github.com/aljanabi/partycms/internal/handler"
	"github.com/aljanabi/partycms/internal/images"
	"github.com/aljanabi/partycms/internal/logging"
	"github.com/aljanabi/partycms/internal/mailer"
	"github.com/aljanabi/partycms/internal/middleware"
	"github.com/aljanabi/partycms/internal/review"
	"github.com/aljanabi/partycms/internal/scheduler"
	"github.com/aljanabi/partycms/internal/session"
	"github.com/aljanabi/partycms/internal/stats"
	"github.com/aljanabi/partycms/internal/store"
	"github.com/aljanabi/partycms/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "partycms - Party Website CMS and Membership Backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTYCMS_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTYCMS_DB_PATH           SQLite database path (default: ./data/partycms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTYCMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTYCMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTYCMS_UPLOADS_DIR       Uploaded asset directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTYCMS_REDIS_URL         Redis URL for the page cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTYCMS_SMTP_HOST         SMTP host for applicant notifications (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTYCMS_SESSION_LIFETIME_HOURS  Admin session lifetime (default: 24)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PARTYCMS_DO_SEED           Create the initial admin account (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		info := version.Info{
			Version:   appVersion,
			GitCommit: appGitCommit,
			BuildTime: appBuildTime,
		}
		fmt.Printf("partycms %s (commit %s, built %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development convenience)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Configure logging
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	logger.Info("starting partycms",
		"version", appVersion,
		"commit", appGitCommit,
		"env", cfg.Env,
	)

	// Ensure database directory exists
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Upgrade the logger to also record WARN+ entries in the events table.
	logger = slog.New(logging.NewEventHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()

	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	queries := store.New(db)
	sessionManager := session.New(db, time.Duration(cfg.SessionLifetimeHours)*time.Hour, cfg.IsDevelopment())

	assetStore, err := assets.NewLocalStore(cfg.UploadsDir, cfg.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("initializing asset store: %w", err)
	}

	byteCache, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := byteCache.Close(); err != nil {
			logger.Error("closing cache", "error", err)
		}
	}()
	pageCache := cache.NewPageCache(byteCache, time.Duration(cfg.CacheTTL)*time.Second)

	contentService := content.NewService(queries, pageCache)
	imageLifecycle := images.NewLifecycle(assetStore, queries)

	var sender mailer.Sender
	if cfg.SMTPEnabled() {
		sender, err = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		if err != nil {
			return fmt.Errorf("initializing SMTP sender: %w", err)
		}
		logger.Info("notifier enabled", "smtp_host", cfg.SMTPHost)
	} else {
		sender = mailer.LogSender{}
		logger.Info("notifier in log-only mode (no SMTP host configured)")
	}
	notifier := mailer.NewNotifier(sender)

	reviewService := review.NewService(queries, notifier)
	statsLedger := stats.NewLedger(queries)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	// Background jobs
	sched := scheduler.New(logger)
	if cfg.OrphanSweepSchedule != "" {
		sweep := scheduler.NewOrphanSweep(queries, assetStore, scheduler.DefaultOrphanGrace, logger)
		if err := sched.AddJob(cfg.OrphanSweepSchedule, "orphan-sweep", sweep.Run); err != nil {
			return fmt.Errorf("registering orphan sweep: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	h := handler.New(handler.Deps{
		DB:              db,
		Content:         contentService,
		Review:          reviewService,
		Stats:           statsLedger,
		Images:          imageLifecycle,
		Sessions:        sessionManager,
		LoginProtection: loginProtection,
		Logger:          logger,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(cfg.IsDevelopment()))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadAccount(sessionManager, db))
	// The public intake form and the login form are submitted without a
	// session, so they bypass the Fetch-metadata CSRF check.
	r.Use(middleware.SkipCSRF("/api/applications", "/api/auth/login"))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))

	h.Routes(r)
	handler.StaticUploads(r, cfg.PublicBaseURL, cfg.UploadsDir)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	go func() {
		logger.Info("server listening", "addr", cfg.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
