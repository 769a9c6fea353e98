package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/baharkarakas/storefront-backend/internal/api"
	"github.com/baharkarakas/storefront-backend/internal/auth"
	"github.com/baharkarakas/storefront-backend/internal/config"
	"github.com/baharkarakas/storefront-backend/internal/db"
	"github.com/baharkarakas/storefront-backend/internal/logger"
	"github.com/baharkarakas/storefront-backend/internal/metrics"
	"github.com/baharkarakas/storefront-backend/internal/middleware"
	"github.com/baharkarakas/storefront-backend/internal/repository"
	"github.com/baharkarakas/storefront-backend/internal/repository/memory"
	"github.com/baharkarakas/storefront-backend/internal/repository/postgres"
	"github.com/baharkarakas/storefront-backend/internal/services"
	"github.com/baharkarakas/storefront-backend/internal/storage"
	"github.com/baharkarakas/storefront-backend/internal/storage/minio"
	"github.com/baharkarakas/storefront-backend/internal/worker"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront backend API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{Use: "serve", Short: "Run the HTTP API", RunE: runServe},
		&cobra.Command{Use: "migrate", Short: "Apply database migrations", RunE: runMigrate},
		createAdminCmd(),
	)
	return root
}

// bootstrap loads configuration and the process logger.
func bootstrap() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("store", "err", err)
		return err
	}
	defer store.Close()

	images, err := openImages(ctx, cfg)
	if err != nil {
		log.Error("image store", "err", err)
		return err
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, log)
	defer closeLimiter()

	wp := worker.NewPool(cfg.WorkerCount, log)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	users := services.NewUserService(store.Users, tm, cfg.BcryptCost, log)
	catalog := services.NewCatalogService(store.Products, images, wp, cfg.Upload.MaxBytes, log)

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Log:         log,
		Prod:        cfg.IsProd(),
		Users:       users,
		Catalog:     catalog,
		Ratings:     services.NewRatingService(store.Products, log),
		Carts:       services.NewCartService(store.Users, store.Products, log),
		Stats:       services.NewStatsService(store.Users, store.Products),
		Limiter:     limiter,
		RateWindow:  cfg.RateLimit.Window,
		MaxUpload:   cfg.Upload.MaxBytes,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "store", cfg.StoreDriver, "images", cfg.ImageStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("server", "err", err)
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	pool, err := db.NewPool(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.RunMigrations(cmd.Context(), pool); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func createAdminCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator or promote an existing account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.StoreDriver == "memory" {
				return errors.New("create-admin needs a persistent store")
			}
			store, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer store.Close()

			tm := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
			u, err := services.NewUserService(store.Users, tm, cfg.BcryptCost, log).
				CreateAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin ready: %s <%s>\n", u.ID, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Store, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore(), nil
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return repository.Store{}, err
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return repository.Store{}, err
		}
	}
	return postgres.NewStore(pool), nil
}

func openImages(ctx context.Context, cfg config.Config) (storage.Images, error) {
	if cfg.ImageStore == "memory" {
		return storage.NewMemoryImages(), nil
	}
	return minio.Dial(ctx, minio.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
}

// newLimiter shares rate-limit windows through Redis when configured. A
// Redis that is down at startup is only logged; requests fail open.
func newLimiter(ctx context.Context, cfg config.Config, log *slog.Logger) (middleware.Limiter, func()) {
	if cfg.RateLimit.Max <= 0 {
		return nil, func() {}
	}
	if cfg.Redis.Addr == "" {
		return middleware.NewMemoryLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window), func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable", "addr", cfg.Redis.Addr, "err", err)
	}
	return middleware.NewRedisLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window), func() { _ = rdb.Close() }
}
