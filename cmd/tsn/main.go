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
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/James-Git-Repo/eu-market-pulse/internal/auth"
	"github.com/James-Git-Repo/eu-market-pulse/internal/cache"
	"github.com/James-Git-Repo/eu-market-pulse/internal/config"
	"github.com/James-Git-Repo/eu-market-pulse/internal/geoip"
	"github.com/James-Git-Repo/eu-market-pulse/internal/handler"
	"github.com/James-Git-Repo/eu-market-pulse/internal/handler/api"
	"github.com/James-Git-Repo/eu-market-pulse/internal/logging"
	"github.com/James-Git-Repo/eu-market-pulse/internal/market"
	"github.com/James-Git-Repo/eu-market-pulse/internal/middleware"
	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
	"github.com/James-Git-Repo/eu-market-pulse/internal/service"
	"github.com/James-Git-Repo/eu-market-pulse/internal/session"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
	"github.com/James-Git-Repo/eu-market-pulse/web"
)

// Version information, injected at build time via ldflags.
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
		_, _ = fmt.Fprintf(os.Stderr, "tsn - The (un)Stable Net\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TSN_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TSN_DB_PATH           SQLite database path (default: ./data/tsn.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TSN_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TSN_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TSN_REDIS_URL         Redis URL for the quote cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TSN_OPENAI_API_KEY    Enables the editorial assistant (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TSN_GEOIP_DB_PATH     MaxMind database for view stats (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("tsn %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run() error {
	// .env is for development convenience only.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and above also land in the events table.
	inner := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})
	slog.SetDefault(slog.New(logging.NewEventLogHandler(inner, db)))

	ctx := context.Background()
	adminHash := ""
	if cfg.AdminPassword != "" {
		if adminHash, err = auth.HashPassword(cfg.AdminPassword); err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
	}
	if err := store.SeedAdmin(ctx, db, cfg.AdminEmail, adminHash); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	if err := store.SeedContent(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding content: %w", err)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	quoteTTL := time.Duration(cfg.MarketCacheTTL) * time.Second
	quoteCache := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: quoteTTL,
	})
	ticker := market.NewService(quoteCache, quoteTTL)

	geo := geoip.NewLookup()
	if err := geo.Init(cfg.GeoIPDBPath); err != nil {
		slog.Warn("geoip disabled", "error", err)
	}
	defer func() { _ = geo.Close() }()

	// Background refreshes: quotes on the configured cadence, the GeoIP
	// database nightly.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.MarketRefreshCron, func() {
		ticker.Refresh(context.Background())
	}); err != nil {
		return fmt.Errorf("scheduling market refresh: %w", err)
	}
	if geo.IsEnabled() {
		if _, err := scheduler.AddFunc("0 4 * * *", func() {
			if err := geo.Reload(); err != nil {
				slog.Warn("geoip reload failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("scheduling geoip reload: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("templates sub fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	eventService := service.NewEventService(db)
	mediaService := service.NewMediaService(cfg.UploadsDir)
	assistService := service.NewAssistService(cfg.OpenAIKey)
	analyticsService := service.NewAnalyticsService(db, geo)
	loginProtection := middleware.NewLoginProtection(middleware.LoginProtectionConfig{})

	publicHandler := handler.NewPublicHandler(db, renderer, sessionManager, ticker, analyticsService)
	formsHandler := handler.NewFormsHandler(db, renderer, eventService)
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	studioHandler := handler.NewStudioHandler(db, renderer, sessionManager, analyticsService)
	articlesHandler := handler.NewArticlesHandler(db, renderer, mediaService, assistService)
	resourcesHandler := handler.NewResourcesStudioHandler(db, renderer)
	audienceHandler := handler.NewAudienceHandler(db, renderer)
	eventsHandler := handler.NewEventsHandler(db, renderer)
	apiHandler := api.NewHandler(ticker)

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
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.CSRF([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	// Public site.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalLoadUser(sessionManager, db))

		r.Get("/", publicHandler.Home)
		r.Get(handler.RouteArchive, publicHandler.Archive)
		r.Get("/posts/{slug}", publicHandler.Post)
		r.Get(handler.RouteResources, publicHandler.Resources)
		r.Get("/about", publicHandler.About)
		r.Get("/privacy", publicHandler.Privacy)
		r.Get("/terms", publicHandler.Terms)

		r.Post("/newsletter", formsHandler.Subscribe)
		r.Get("/newsletter/unsubscribe/{token}", formsHandler.Unsubscribe)
		r.Post("/contribute", formsHandler.Contribute)

		r.Get("/api/market-data", apiHandler.Market)
	})

	// Studio: sign-in is open, everything else needs an editing role.
	r.Route(handler.RouteStudio, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(loginProtection.Middleware())
			r.Get("/login", authHandler.LoginForm)
			r.Post("/login", authHandler.Login)
		})
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessionManager))
			r.Use(middleware.LoadUser(sessionManager, db))

			r.Post("/editor-mode", authHandler.ToggleEditorMode)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireEditor())

				r.Get("/", studioHandler.Dashboard)

				r.Get("/articles", articlesHandler.List)
				r.Get("/articles/new", articlesHandler.NewForm)
				r.Post("/articles", articlesHandler.Create)
				r.Post("/articles/suggest-dek", articlesHandler.SuggestDek)
				r.Get("/articles/{id}/edit", articlesHandler.EditForm)
				r.Post("/articles/{id}/update", articlesHandler.Update)
				r.Post("/articles/{id}/toggle-publish", articlesHandler.TogglePublish)
				r.Post("/articles/{id}/delete", articlesHandler.Delete)
				r.Post("/articles/{id}/cover", articlesHandler.UploadCover)
				r.Post("/articles/{id}/cover/delete", articlesHandler.DeleteCover)

				r.Get("/resources", resourcesHandler.List)
				r.Post("/resources", resourcesHandler.Create)
				r.Post("/resources/{id}/update", resourcesHandler.Update)
				r.Post("/resources/{id}/delete", resourcesHandler.Delete)
				r.Post("/resources/{id}/move/up", resourcesHandler.Move)
				r.Post("/resources/{id}/move/down", resourcesHandler.Move)

				r.Get("/audience", audienceHandler.List)
				r.Get("/audience/export", audienceHandler.ExportCSV)
				r.Post("/audience/{id}/delete", audienceHandler.DeleteSubscriber)

				r.Get("/events", eventsHandler.List)
				r.Post("/events/backfill-covers", eventsHandler.BackfillCovers)
			})
		})
	})

	// Embedded static assets and on-disk uploads.
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("static sub fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))

	r.NotFound(publicHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
