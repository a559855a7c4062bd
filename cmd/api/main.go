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

	"github.com/ortizlabs/storefront-backend/api/routes"
	"github.com/ortizlabs/storefront-backend/internal/auth"
	"github.com/ortizlabs/storefront-backend/internal/cart"
	"github.com/ortizlabs/storefront-backend/internal/catalog"
	"github.com/ortizlabs/storefront-backend/internal/contact"
	"github.com/ortizlabs/storefront-backend/internal/orders"
	"github.com/ortizlabs/storefront-backend/internal/reports"
	"github.com/ortizlabs/storefront-backend/internal/reviews"
	"github.com/ortizlabs/storefront-backend/internal/users"
	"github.com/ortizlabs/storefront-backend/internal/wishlist"
	"github.com/ortizlabs/storefront-backend/pkg/auth/session"
	"github.com/ortizlabs/storefront-backend/pkg/config"
	"github.com/ortizlabs/storefront-backend/pkg/db"
	"github.com/ortizlabs/storefront-backend/pkg/env"
	"github.com/ortizlabs/storefront-backend/pkg/logger"
	"github.com/ortizlabs/storefront-backend/pkg/metrics"
	"github.com/ortizlabs/storefront-backend/pkg/migrate"
	pkgredis "github.com/ortizlabs/storefront-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := catalog.NewProductRepo(dbClient.DB())
	categoryRepo := catalog.NewCategoryRepo(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	wishlistRepo := wishlist.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	reviewRepo := reviews.NewRepository(dbClient.DB())
	reportRepo := reports.NewRepository(dbClient.DB())
	contactRepo := contact.NewRepository(dbClient.DB())

	authService, err := auth.NewService(userRepo, sessionManager, cfg.JWT, cfg.Password, logg)
	exitOn(logg, "auth service", err)
	userService, err := users.NewService(userRepo)
	exitOn(logg, "users service", err)
	catalogService, err := catalog.NewService(productRepo, categoryRepo)
	exitOn(logg, "catalog service", err)
	cartService, err := cart.NewService(cartRepo, catalogService)
	exitOn(logg, "cart service", err)
	wishlistService, err := wishlist.NewService(wishlistRepo, catalogService)
	exitOn(logg, "wishlist service", err)
	orderService, err := orders.NewService(orderRepo, cartRepo, productRepo, userRepo, dbClient, cfg.Checkout, logg)
	exitOn(logg, "orders service", err)
	reviewService, err := reviews.NewService(reviewRepo, catalogService)
	exitOn(logg, "reviews service", err)
	reportService, err := reports.NewService(reportRepo)
	exitOn(logg, "reports service", err)
	contactService, err := contact.NewService(contactRepo)
	exitOn(logg, "contact service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	handler := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessionManager,
		HTTPMetrics: httpMetrics,
		Registry:    registry,

		Auth:     authService,
		Users:    userService,
		Catalog:  catalogService,
		Cart:     cartService,
		Wishlist: wishlistService,
		Orders:   orderService,
		Reviews:  reviewService,
		Reports:  reportService,
		Contact:  contactService,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var closeErr error
		closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
		closeErr = multierr.Append(closeErr, redisClient.Close())
		closeErr = multierr.Append(closeErr, dbClient.Close())
		if closeErr != nil {
			logg.Error(ctx, "shutdown finished with errors", closeErr)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}

func exitOn(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+resource, err)
	os.Exit(1)
}
