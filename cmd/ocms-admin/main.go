// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-admin/internal/analytics"
	"github.com/olegiv/ocms-admin/internal/cache"
	"github.com/olegiv/ocms-admin/internal/collection"
	"github.com/olegiv/ocms-admin/internal/config"
	"github.com/olegiv/ocms-admin/internal/docstore"
	"github.com/olegiv/ocms-admin/internal/geoip"
	"github.com/olegiv/ocms-admin/internal/handler"
	"github.com/olegiv/ocms-admin/internal/handler/api"
	"github.com/olegiv/ocms-admin/internal/idle"
	"github.com/olegiv/ocms-admin/internal/imaging"
	"github.com/olegiv/ocms-admin/internal/logging"
	"github.com/olegiv/ocms-admin/internal/middleware"
	"github.com/olegiv/ocms-admin/internal/model"
	"github.com/olegiv/ocms-admin/internal/scheduler"
	"github.com/olegiv/ocms-admin/internal/service"
	"github.com/olegiv/ocms-admin/internal/session"
	"github.com/olegiv/ocms-admin/internal/store"
	"github.com/olegiv/ocms-admin/internal/util"
	"github.com/olegiv/ocms-admin/internal/version"
	"github.com/olegiv/ocms-admin/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ocms-admin - content administration console\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_DB_PATH           SQLite database path (default: ./data/ocms-admin.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_IDLE_TIMEOUT      Sign out after this much inactivity (default: 5m)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_REDIS_URL         Redis URL for caching and snapshot fan-out (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_GEOIP_DB_PATH     GeoLite2-Country.mmdb for visitor countries (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Printf("ocms-admin %s\n", versionInfo)
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewTextLogger(os.Stdout, level)
	slog.SetDefault(logger)

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Warnings and errors also go to the event log from here on.
	logger = slog.New(logging.NewEventLogHandler(logger.Handler(), db))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	sm := session.New(db, session.Config{
		Lifetime: cfg.SessionLifetime,
		IsDev:    cfg.IsDevelopment(),
	})
	creds := session.NewCredentials(sm)

	cacher := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTL,
		MaxSize:         10000,
		CleanupInterval: time.Minute,
	})
	defer func() {
		if err := cacher.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	storeOpts := []docstore.Option{docstore.WithLogger(logger)}
	if rc, ok := cacher.(*cache.RedisCache); ok {
		storeOpts = append(storeOpts, docstore.WithNotifier(
			docstore.NewRedisNotifier(rc.Client(), cfg.CachePrefix+"collections", logger)))
	}
	docs := docstore.NewSQLStore(db, storeOpts...)
	go func() {
		if err := docs.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("collection change listener stopped", "error", err)
		}
	}()
	repos := collection.NewRegistry(docs)

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("GeoIP database unavailable, countries will be unknown", "error", err)
	}
	defer func() { _ = geo.Close() }()

	events := service.NewEventService(db)

	var tracker *analytics.Tracker
	if cfg.TrackVisits {
		opts := []analytics.Option{analytics.WithCountryLookup(geo), analytics.WithLogger(logger)}
		if cfg.IPLookupURL != "" {
			resolver, err := analytics.NewLookupResolver(cfg.IPLookupURL, nil)
			if err != nil {
				return fmt.Errorf("configuring IP lookup: %w", err)
			}
			opts = append(opts, analytics.WithResolver(resolver))
		}
		salt := cfg.VisitorSalt
		if salt == "" {
			salt = analytics.GenerateSalt()
			slog.Warn("OCMS_VISITOR_SALT not set, visitor keys will change on restart")
		}
		tracker = analytics.NewTracker(repos.Visitors, salt, opts...)
	}

	schedCfg := scheduler.Config{
		Events:           events,
		EventRetention:   cfg.EventRetention,
		Documents:        docs,
		VisitorRetention: cfg.VisitorRetention,
	}
	if cfg.GeoIPEnabled() {
		schedCfg.GeoIP = geo
	}
	sched, err := scheduler.New(schedCfg, logger)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(ctx, middleware.DefaultLoginProtectionConfig())
	authn := service.NewAuthenticator(db, loginProtection, events)

	apiHandler := api.NewHandler(api.Deps{
		Creds:         creds,
		Authenticator: authn,
		Events:        events,
		Collections:   repos,
		Images:        imaging.NewProcessor(),
		Tracker:       tracker,
		Monitors:      idle.NewRegistry(),
		Cache:         cacher,
		CacheTTL:      cfg.CacheTTL,
		IdleLimit:     cfg.IdleTimeout,
		IdleInterval:  cfg.IdleCheckInterval,
		KnownRoute:    handler.IsShellRoute,
		Logger:        logger,
	})

	assets, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("loading shell assets: %w", err)
	}
	shell, err := handler.NewShellHandler(assets)
	if err != nil {
		return fmt.Errorf("creating shell handler: %w", err)
	}

	health := handler.NewHealthHandler(db, handler.HealthOptions{
		Creds:       creds,
		Cache:       cacher,
		Subscribers: docs.Hub(),
		DataDir:     dataDir,
		Version:     versionInfo,
	})

	onIdleExpire := func(r *http.Request, u session.User) {
		_ = events.LogSessionEvent(r.Context(), model.EventLevelInfo, "Session expired after inactivity",
			&u.ID, util.ClientIP(r), nil)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.SkipCSRF("/api/visit"))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())))

	// Health checks stay outside the session so probes create no rows.
	r.Get(handler.RouteHealthLive, health.Liveness)
	r.Get(handler.RouteHealthReady, health.Readiness)
	r.With(sm.LoadAndSave).Get(handler.RouteHealth, health.Health)

	r.With(middleware.StaticCache(3600)).Handle(handler.RouteStatic, shell.Assets())

	r.Group(func(r chi.Router) {
		r.Use(sm.LoadAndSave)
		r.Use(middleware.IdleTimeout(creds, cfg.IdleTimeout, onIdleExpire))

		r.With(middleware.RedirectIfAuthenticated(creds, middleware.LandingPath)).
			Get(handler.RouteLogin, shell.Page)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(creds))
			for _, route := range handler.ShellRoutes {
				r.Get(route, shell.Page)
			}
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.NoStore)
			apiHandler.Routes(r, api.Guards{
				RequireAuth:   middleware.RequireAuth(creds),
				TrackActivity: middleware.TrackActivity(creds),
				LoginLimiter:  loginProtection.Middleware(),
				VisitLimiter:  middleware.NewRateLimiter(1, 5).Middleware(),
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
