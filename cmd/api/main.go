package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/Kai120789/marketplace/api/routes"
	"github.com/Kai120789/marketplace/internal/address"
	"github.com/Kai120789/marketplace/internal/auth"
	"github.com/Kai120789/marketplace/internal/cart"
	"github.com/Kai120789/marketplace/internal/catalog"
	"github.com/Kai120789/marketplace/internal/export"
	"github.com/Kai120789/marketplace/internal/orders"
	product "github.com/Kai120789/marketplace/internal/products"
	"github.com/Kai120789/marketplace/internal/reviews"
	"github.com/Kai120789/marketplace/internal/users"
	"github.com/Kai120789/marketplace/pkg/auth/session"
	"github.com/Kai120789/marketplace/pkg/config"
	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/enums"
	"github.com/Kai120789/marketplace/pkg/logger"
	"github.com/Kai120789/marketplace/pkg/metrics"
	"github.com/Kai120789/marketplace/pkg/migrate"
	"github.com/Kai120789/marketplace/pkg/outbox"
	"github.com/Kai120789/marketplace/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
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

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	commerceMetrics := metrics.NewCommerceMetrics(reg)

	svc, err := buildServices(cfg, logg, dbClient, redisClient, sessionManager, commerceMetrics)
	if err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, routes.Infra{
		DB:          dbClient,
		Redis:       redisClient,
		Idempotency: redisClient,
		RateLimiter: redisClient,
		Sessions:    sessionManager,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
	}, svc)

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
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

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, sessions *session.Manager, commerce *metrics.CommerceMetrics) (routes.Services, error) {
	var svc routes.Services
	conn := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)

	basketPolicy, err := enums.ParseBasketPolicy(cfg.Order.BasketPolicy)
	if err != nil {
		return svc, err
	}

	catalogRepo := catalog.NewRepository(conn)
	svc.Catalog = catalog.NewService(catalogRepo)
	svc.Addresses = address.NewService(address.NewRepository(conn))

	if svc.Auth, err = auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}); err != nil {
		return svc, err
	}
	if svc.Profiles, err = users.NewProfileService(dbClient, logg); err != nil {
		return svc, err
	}
	if svc.Products, err = product.NewService(product.ServiceParams{
		DB:          dbClient,
		Outbox:      emitter,
		Brands:      catalogRepo,
		Cache:       redisClient,
		CacheTTL:    cfg.Catalog.IndexCacheTTL,
		MaxAttempts: cfg.Catalog.VariantSlugMaxAttempts,
		Metrics:     commerce,
		Logger:      logg,
	}); err != nil {
		return svc, err
	}
	if svc.Reviews, err = reviews.NewService(reviews.ServiceParams{
		DB:      dbClient,
		Outbox:  emitter,
		Metrics: commerce,
		Logger:  logg,
	}); err != nil {
		return svc, err
	}
	if svc.Cart, err = cart.NewService(cart.ServiceParams{
		Repo:        cart.NewRepository(conn),
		Tx:          dbClient,
		MaxAttempts: cfg.Catalog.CartMaxAttempts,
		Metrics:     commerce,
		Logger:      logg,
	}); err != nil {
		return svc, err
	}
	if svc.Orders, err = orders.NewService(orders.ServiceParams{
		Repo:         orders.NewRepository(conn),
		Tx:           dbClient,
		Outbox:       emitter,
		BasketPolicy: basketPolicy,
		MaxAttempts:  cfg.Order.MaxAttempts,
		Metrics:      commerce,
		Logger:       logg,
	}); err != nil {
		return svc, err
	}
	if svc.Export, err = export.NewService(export.NewRepository(conn), cfg.Export.MaxRows, logg); err != nil {
		return svc, err
	}
	return svc, nil
}
