// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gatherly/gatherly/internal/cache"
	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/internal/geoip"
	"github.com/gatherly/gatherly/internal/handler"
	"github.com/gatherly/gatherly/internal/logging"
	"github.com/gatherly/gatherly/internal/middleware"
	"github.com/gatherly/gatherly/internal/render"
	"github.com/gatherly/gatherly/internal/scheduler"
	"github.com/gatherly/gatherly/internal/service"
	"github.com/gatherly/gatherly/internal/session"
	"github.com/gatherly/gatherly/internal/store"
	"github.com/gatherly/gatherly/internal/version"
	"github.com/gatherly/gatherly/web"
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
		_, _ = fmt.Fprintf(os.Stderr, "Gatherly - Event Management Platform\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GATHERLY_SESSION_SECRET  Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GATHERLY_MONGO_URI       MongoDB URI (default: mongodb://localhost:27017)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GATHERLY_MONGO_DBNAME    MongoDB database name (default: gatherly)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GATHERLY_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GATHERLY_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GATHERLY_REDIS_URL       Redis URL for the category cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GATHERLY_GEOIP_DB_PATH   GeoLite2 country database for audit entries (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("gatherly %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Connect to MongoDB
	ctx := context.Background()
	slog.Info("connecting to mongodb", "uri", cfg.MongoURI, "db", cfg.MongoDBName)
	st, client, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return fmt.Errorf("connecting to mongodb: %w", err)
	}
	defer func(client *mongo.Client) {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from mongodb", "error", err)
		}
	}(client)

	if err := st.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensuring indexes: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR records to the audit trail
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	auditLogHandler := logging.NewAuditHandler(textHandler, st)
	logger = slog.New(auditLogHandler)
	slog.SetDefault(logger)
	slog.Info("audit log integration enabled", "min_level", "warn")

	// Seed default event categories
	if err := st.Seed(ctx, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Session manager backed by MongoDB
	sessionManager := session.New(st.Database(), cfg.IsDevelopment())

	// Category cache: in-memory by default, Redis when configured
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	var categoryCache cache.Cache
	if cfg.UseRedisCache() {
		redisCache, err := cache.NewRedisCache(cache.RedisCacheOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.CachePrefix,
			DefaultTTL: cacheTTL,
		})
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		categoryCache = redisCache
		slog.Info("category cache backend: redis")
	} else {
		categoryCache = cache.NewMemoryCache(cache.MemoryCacheOptions{
			DefaultTTL: cacheTTL,
			MaxSize:    cfg.CacheMaxSize,
		})
		slog.Info("category cache backend: memory")
	}
	defer func() {
		if err := categoryCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	categories := cache.NewCategories(categoryCache, st, cacheTTL)

	// Optional GeoIP lookup for audit entries
	geo, err := geoip.New(cfg.GeoIPDBPath)
	if err != nil {
		return fmt.Errorf("opening geoip database: %w", err)
	}
	defer geo.Close()
	if geo.IsEnabled() {
		slog.Info("geoip lookup enabled", "path", cfg.GeoIPDBPath)
	}

	var resolver service.CountryResolver
	if geo.IsEnabled() {
		resolver = geo
	}
	auditService := service.NewAuditService(st, resolver)

	// Template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Maintenance scheduler
	sched := scheduler.New(st, logger, time.Duration(cfg.AuditRetentionDays)*24*time.Hour)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Handlers
	authHandler := handler.NewAuthHandler(st, renderer, sessionManager, auditService)
	eventHandler := handler.NewEventHandler(st, categories, renderer, sessionManager, auditService)
	userHandler := handler.NewUserHandler(st, renderer)

	// Router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())))

	// Public routes
	r.Get(handler.RouteRoot, userHandler.Home)
	r.Get(handler.RouteGetUser, userHandler.Home)
	r.Get(handler.RouteRegister, authHandler.RegisterForm)
	r.Post(handler.RouteRegister, authHandler.Register)
	r.Get(handler.RouteLogin, authHandler.LoginForm)
	r.Post(handler.RouteLogin, authHandler.Login)
	r.Get(handler.RouteLogout, authHandler.Logout)
	r.Post(handler.RouteLogout, authHandler.Logout)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, st))
		r.Get(handler.RouteProfile, eventHandler.Profile)
		r.Post(handler.RouteProfile, eventHandler.Profile)
		r.Get(handler.RouteCreateEvent, eventHandler.CreateEventForm)
		r.Post(handler.RouteCreateEvent, eventHandler.CreateEvent)
		r.Get(handler.RouteEditEvent, eventHandler.EditEventForm)
		r.Post(handler.RouteEditEvent, eventHandler.EditEvent)
		r.Post(handler.RouteDeleteEvent, eventHandler.DeleteEvent)
	})

	// 404 Not Found handler
	r.NotFound(handler.NotFound)

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			"addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
