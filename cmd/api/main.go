// Package main is the entrypoint for the Keebmart API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/keebmart/keebmart/internal/auth"
	"github.com/keebmart/keebmart/internal/config"
	"github.com/keebmart/keebmart/internal/handler"
	"github.com/keebmart/keebmart/internal/metrics"
	"github.com/keebmart/keebmart/internal/middleware"
	"github.com/keebmart/keebmart/internal/server"
	"github.com/keebmart/keebmart/internal/service"
	"github.com/keebmart/keebmart/internal/store"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize document store
	st, err := store.New(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", "database", cfg.DatabaseName)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	recorder := metrics.NewInMemory()
	authService := service.NewAuthService(st, tokens, cfg.BcryptCost, recorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(st)
	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(authService, logger)
	productHandler := handler.NewCatalogHandler(st, store.ProductsCollection, logger)
	allProductsHandler := handler.NewCatalogHandler(st, store.AllProductsCollection, logger)
	cartHandler := handler.NewCartHandler(st, logger)

	// Setup router
	r := setupRouter(routerDeps{
		base:        h,
		health:      healthHandler,
		auth:        authHandler,
		users:       userHandler,
		products:    productHandler,
		allProducts: allProductsHandler,
		carts:       cartHandler,
		tokens:      tokens,
		metrics:     recorder,
		cfg:         cfg,
		logger:      logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("mongodb", st.Close)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything the router needs.
type routerDeps struct {
	base        *handler.Handler
	health      *handler.HealthHandler
	auth        *handler.AuthHandler
	users       *handler.UserHandler
	products    *handler.CatalogHandler
	allProducts *handler.CatalogHandler
	carts       *handler.CartHandler
	tokens      *auth.TokenManager
	metrics     metrics.Recorder
	cfg         *config.Config
	logger      *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.BodyLimit(deps.cfg.MaxRequestBodySize))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	// Registration and login
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.auth.Register)
		r.Post("/login", deps.auth.Login)
	})

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:  deps.logger,
		Tokens:  deps.tokens,
		Metrics: deps.metrics,
	})

	// Token-guarded user reads
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/users", deps.users.Me)
		r.Get("/admin/users", deps.users.ListAll)
	})

	// Catalog: reads are public, mutations need a token
	r.Route("/products", func(r chi.Router) {
		r.Get("/", deps.products.List)
		r.Get("/{id}", deps.products.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", deps.products.Create)
			r.Put("/{id}", deps.products.Update)
			r.Delete("/{id}", deps.products.Delete)
		})
	})

	// Unfiled "all products" bucket
	r.Route("/all-products", func(r chi.Router) {
		r.Get("/", deps.allProducts.List)
		r.With(requireAuth).Post("/", deps.allProducts.Create)
	})

	// Shopping cart, always scoped to the caller
	r.Route("/carts", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", deps.carts.List)
		r.Post("/", deps.carts.Add)
		r.Delete("/{id}", deps.carts.Remove)
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

// redactURL strips credentials out of a connection URL before logging.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError removes secrets from an error message before logging.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return msg
}
