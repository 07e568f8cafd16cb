package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/basho-studio/storefront/api/controllers"
	"github.com/basho-studio/storefront/api/routes"
	"github.com/basho-studio/storefront/internal/booking"
	"github.com/basho-studio/storefront/internal/cart"
	"github.com/basho-studio/storefront/internal/catalog"
	"github.com/basho-studio/storefront/internal/checkout"
	"github.com/basho-studio/storefront/internal/inflight"
	"github.com/basho-studio/storefront/internal/pricing"
	"github.com/basho-studio/storefront/pkg/bashoapi"
	"github.com/basho-studio/storefront/pkg/config"
	"github.com/basho-studio/storefront/pkg/db"
	"github.com/basho-studio/storefront/pkg/logger"
	"github.com/basho-studio/storefront/pkg/metrics"
	"github.com/basho-studio/storefront/pkg/migrate"
	"github.com/basho-studio/storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "basho-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "basho-api",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	storefrontMetrics := metrics.NewStorefront(prometheus.DefaultRegisterer)
	readyChecks := map[string]controllers.Pinger{}

	backend, err := bashoapi.NewClient(cfg.Backend.BaseURL, bashoapi.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		closers = append(closers, redisClient.Close)
		readyChecks["redis"] = redisClient
	}

	persister, err := cartPersister(ctx, cfg, logg, redisClient, readyChecks, &closers)
	if err != nil {
		return err
	}

	rules, err := pricing.RulesFromConfig(cfg.Pricing)
	if err != nil {
		return fmt.Errorf("pricing rules: %w", err)
	}

	catalogService, err := catalog.NewService(backend, logg,
		catalog.WithFixturesFallback(cfg.Backend.FixturesFallback),
		catalog.WithMetrics(storefrontMetrics),
	)
	if err != nil {
		return fmt.Errorf("catalog service: %w", err)
	}

	cartService, err := cart.NewService(persister, catalogService, logg,
		cart.WithKeyPrefix(cfg.Cart.KeyPrefix),
		cart.WithPricing(rules),
		cart.WithMetrics(storefrontMetrics),
	)
	if err != nil {
		return fmt.Errorf("cart service: %w", err)
	}

	submitGuard, err := inflightGuard(redisClient, "booking_submit", cfg.Booking.SubmitLockTTL)
	if err != nil {
		return err
	}
	submitter, err := booking.NewSubmitter(backend, submitGuard, logg, storefrontMetrics)
	if err != nil {
		return fmt.Errorf("booking submitter: %w", err)
	}

	checkoutGuard, err := inflightGuard(redisClient, "checkout", cfg.Booking.SubmitLockTTL)
	if err != nil {
		return err
	}
	checkoutService, err := checkout.NewService(backend, cartService, checkoutGuard, rules, logg, storefrontMetrics)
	if err != nil {
		return fmt.Errorf("checkout service: %w", err)
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			storefrontMetrics,
			promhttp.Handler(),
			readyChecks,
			redisClient,
			catalogService,
			cartService,
			submitter,
			checkoutService,
			rules,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"addr":       addr,
		"cart_store": cfg.Cart.Store,
		"redis":      redisClient != nil,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// cartPersister picks the cart backing store named by BASHO_CART_STORE.
func cartPersister(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, readyChecks map[string]controllers.Pinger, closers *[]func() error) (cart.Persister, error) {
	switch cfg.Cart.Store {
	case config.CartStoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("cart store %q requires BASHO_REDIS_URL or BASHO_REDIS_ADDR", cfg.Cart.Store)
		}
		return cart.NewRedisPersister(redisClient, cfg.Cart.SessionTTL)
	case config.CartStoreSQL:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		*closers = append(*closers, dbClient.Close)
		readyChecks["database"] = dbClient
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			return nil, fmt.Errorf("dev migrations: %w", err)
		}
		return cart.NewSnapshotRepository(dbClient.DB(), cfg.Cart.SessionTTL), nil
	default:
		if cfg.App.IsProd() {
			logg.Warn(logg.WithField(ctx, "cart_store", cfg.Cart.Store), "cart snapshots are held in process memory and lost on restart")
		}
		return cart.NewMemory(), nil
	}
}

func inflightGuard(redisClient *redis.Client, scope string, ttl time.Duration) (inflight.Guard, error) {
	if redisClient == nil {
		return inflight.NewLocal(), nil
	}
	guard, err := inflight.NewRedis(redisClient, scope, ttl)
	if err != nil {
		return nil, fmt.Errorf("%s guard: %w", scope, err)
	}
	return guard, nil
}
