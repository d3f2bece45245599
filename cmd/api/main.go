package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/kelontong-pos/internal/modules/analytics"
	"github.com/georgemunganga/kelontong-pos/internal/modules/auth"
	"github.com/georgemunganga/kelontong-pos/internal/modules/catalog"
	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
	"github.com/georgemunganga/kelontong-pos/internal/modules/pos"
	"github.com/georgemunganga/kelontong-pos/internal/modules/receipt"
	"github.com/georgemunganga/kelontong-pos/internal/pkg/cache"
	"github.com/georgemunganga/kelontong-pos/internal/pkg/config"
	"github.com/georgemunganga/kelontong-pos/internal/pkg/metrics"
	"github.com/georgemunganga/kelontong-pos/internal/pkg/telemetry"
	"github.com/georgemunganga/kelontong-pos/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := telemetry.InitLogger(cfg.LogLevel)
	ctx := context.Background()

	// ── Stores ──────────────────────────────────────────────
	var (
		catalogRepo catalog.Repository
		ledgerRepo  ledger.Repository
		authRepo    auth.Repository
		settler     pos.Settler
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			fatal(log, "open database", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			fatal(log, "ping database", err)
		}
		if err := migrations.Apply(ctx, db); err != nil {
			fatal(log, "apply migrations", err)
		}
		log.Info("connected to postgres")

		catalogRepo = catalog.NewPostgresRepository(db)
		ledgerRepo = ledger.NewPostgresRepository(db)
		settler = pos.NewPostgresSettler(db)

		if err := auth.SeedUsers(ctx, db, auth.DemoUsers(), bcrypt.DefaultCost); err != nil {
			fatal(log, "seed users", err)
		}
		authRepo = auth.NewPostgresRepository(db)
	} else {
		log.Warn("DATABASE_URL not set, sales are kept in memory only")
		catalogRepo = catalog.NewMemoryRepository()
		ledgerRepo = ledger.NewMemoryRepository()
		settler = pos.NewSettler(catalogRepo, ledgerRepo)

		authRepo, err = auth.NewStaticRepository(auth.DemoUsers(), bcrypt.DefaultCost)
		if err != nil {
			fatal(log, "hash credentials", err)
		}
	}

	seed, err := catalog.LoadSeedFile(cfg.CatalogSeedFile)
	if err != nil {
		fatal(log, "load catalog seed", err)
	}
	if err := catalogRepo.Seed(ctx, seed); err != nil {
		fatal(log, "seed catalog", err)
	}

	var idem cache.Cache
	if cfg.RedisAddr != "" {
		idem = cache.NewRedisCache(cfg.RedisAddr, "kelontong-pos")
		if err := cache.Ping(ctx, idem); err != nil {
			fatal(log, "ping redis", err)
		}
		log.Info("checkout idempotency enabled", "redis", cfg.RedisAddr)
	}

	// ── Router ──────────────────────────────────────────────
	serverMetrics := metrics.NewServerMetrics(prometheus.DefaultRegisterer)
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(serverMetrics.Middleware)
	router.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))

	// ── Identity ────────────────────────────────────────────
	authService := auth.NewService(authRepo, cfg.JWTSecret, 24*time.Hour)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Catalog ─────────────────────────────────────────────
	catalog.NewHandler(catalog.NewService(catalogRepo)).RegisterRoutes(router)

	// ── Till & Analytics ────────────────────────────────────
	posService := pos.NewService(catalogRepo, ledgerRepo, settler,
		pos.WithMetrics(metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)),
		pos.WithLogger(log),
	)
	printer := &receipt.Printer{ShopName: cfg.ShopName, Location: cfg.Location}
	analyticsService := analytics.NewService(ledgerRepo, catalogRepo, cfg.Location, time.Now)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService))
		pos.NewHandler(posService, idem, printer).RegisterRoutes(r)
		analytics.NewHandler(analyticsService).RegisterRoutes(r)
	})

	// ── Start Server ─────────────────────────────────────────
	log.Info("kelontong POS API starting", "port", cfg.AppPort, "shop", cfg.ShopName)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		fatal(log, "server stopped", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
