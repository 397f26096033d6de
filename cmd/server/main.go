package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/astro81/pathsala-backend/config"
	"github.com/astro81/pathsala-backend/internal/api/handler"
	"github.com/astro81/pathsala-backend/internal/api/middleware"
	"github.com/astro81/pathsala-backend/internal/api/router"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	"github.com/astro81/pathsala-backend/internal/service"
	"github.com/astro81/pathsala-backend/pkg/database"
	"github.com/astro81/pathsala-backend/pkg/jwt"
	applogger "github.com/astro81/pathsala-backend/pkg/logger"
	"github.com/astro81/pathsala-backend/pkg/metrics"
	"github.com/astro81/pathsala-backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config/config.yaml)")
	flag.Parse()

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. permission table
	oracle, err := permission.FromConfig(cfg.RBAC.Roles)
	if err != nil {
		logger.Fatal("invalid rbac table", zap.Error(err))
	}
	if err := oracle.Validate(model.Roles()); err != nil {
		logger.Fatal("incomplete rbac table", zap.Error(err))
	}

	// 4. database
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := migrate(cfg, db, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	// 5. redis is optional: without it logout-by-jti and rate limiting
	// are off, and deactivation still applies through the user lookup
	var (
		rdb     *redis.Client
		tokens  service.TokenStore
		limiter middleware.RateLimiter
		pinger  router.Pinger
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, token revocation and rate limiting disabled", zap.Error(err))
			rdb = nil
		} else {
			tokens, limiter, pinger = rdb, rdb, rdb
		}
	}

	// 6. wiring: repository → service → handler
	m := metrics.New()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, oracle, jwtMgr, tokens, m, logger)
	h := handler.NewHandler(svc)

	engine := router.Setup(cfg, h, router.Deps{
		Auth:    svc.Auth,
		Oracle:  oracle,
		DB:      sqlDB,
		Redis:   pinger,
		Limiter: limiter,
		Metrics: m,
		Logger:  logger,
	})

	// 7. serve with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("close database", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
}

// migrate applies the SQL migrations on postgres. SQLite gets its
// schema from the models.
func migrate(cfg *config.Config, db *gorm.DB, logger *zap.Logger) error {
	if cfg.Database.Driver == "sqlite" {
		return database.AutoMigrate(db, model.All()...)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return database.RunMigrations(sqlDB, logger)
}
