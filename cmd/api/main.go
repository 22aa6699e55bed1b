package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mercatura/catalog-backend/api/routes"
	"github.com/mercatura/catalog-backend/internal/catalog"
	"github.com/mercatura/catalog-backend/internal/defaults"
	"github.com/mercatura/catalog-backend/internal/notifications"
	"github.com/mercatura/catalog-backend/internal/prices"
	product "github.com/mercatura/catalog-backend/internal/products"
	"github.com/mercatura/catalog-backend/internal/tenants"
	"github.com/mercatura/catalog-backend/pkg/config"
	"github.com/mercatura/catalog-backend/pkg/db"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	"github.com/mercatura/catalog-backend/pkg/enums"
	"github.com/mercatura/catalog-backend/pkg/logger"
	"github.com/mercatura/catalog-backend/pkg/metrics"
	"github.com/mercatura/catalog-backend/pkg/migrate"
	"github.com/mercatura/catalog-backend/pkg/redis"
)

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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// The defaults cache is optional; without Redis every lookup goes to
	// the database.
	var redisClient *redis.Client
	if cfg.Redis.Configured() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	defaultsMetrics := metrics.NewDefaultsMetrics(registry)

	resolver := defaults.NewResolver(cfg.Tenancy)
	policy := defaults.NewPolicy(resolver)
	cache := defaults.NewCache(redisClient, cfg.Defaults.CacheTTL)
	column := cfg.Tenancy.TenantForeignKey

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	tenantService, err := tenants.NewService(tenants.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create tenant service", err)
		os.Exit(1)
	}

	// Repositories whose rows hold foreign keys into the catalogue tables
	// double as deletion guards for the services below.
	productRepo := product.NewRepository(dbClient.DB(), column)
	priceRepo := prices.NewRepository(dbClient.DB())
	productRefs := func(col string) catalog.ReferenceCounter {
		return func(ctx context.Context, id uuid.UUID) (int64, error) {
			return productRepo.CountUsingReference(ctx, col, id)
		}
	}

	priceListMutex := defaults.FlagPair{A: models.FlagDefault, B: models.FlagDefaultPurchase}
	priceListService, err := catalog.NewService(catalog.Config[models.PriceList, *models.PriceList]{
		Kind:                 enums.CatalogEntityPriceList,
		Repo:                 catalog.NewRepository[models.PriceList](dbClient, column),
		Policy:               policy,
		Resolver:             resolver,
		UniqueCodeConstraint: "uq_price_lists_code",
		Mutex:                &priceListMutex,
		References:           priceRepo.CountForPriceList,
		Cache:                cache,
		Notifier:             notificationService,
		Metrics:              defaultsMetrics,
		Logger:               logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create price list service", err)
		os.Exit(1)
	}

	productTypeService, err := catalog.NewService(catalog.Config[models.ProductType, *models.ProductType]{
		Kind:                 enums.CatalogEntityProductType,
		Repo:                 catalog.NewRepository[models.ProductType](dbClient, column),
		Policy:               policy,
		Resolver:             resolver,
		UniqueCodeConstraint: "uq_product_types_code",
		References:           productRefs("type_id"),
		Cache:                cache,
		Notifier:             notificationService,
		Metrics:              defaultsMetrics,
		Logger:               logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create product type service", err)
		os.Exit(1)
	}

	productStatusService, err := catalog.NewService(catalog.Config[models.ProductStatus, *models.ProductStatus]{
		Kind:                 enums.CatalogEntityProductStatus,
		Repo:                 catalog.NewRepository[models.ProductStatus](dbClient, column),
		Policy:               policy,
		Resolver:             resolver,
		UniqueCodeConstraint: "uq_product_statuses_code",
		References:           productRefs("status_id"),
		Cache:                cache,
		Notifier:             notificationService,
		Metrics:              defaultsMetrics,
		Logger:               logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create product status service", err)
		os.Exit(1)
	}

	taxClassService, err := catalog.NewService(catalog.Config[models.TaxClass, *models.TaxClass]{
		Kind:                 enums.CatalogEntityTaxClass,
		Repo:                 catalog.NewRepository[models.TaxClass](dbClient, column),
		Policy:               policy,
		Resolver:             resolver,
		UniqueCodeConstraint: "uq_tax_classes_code",
		References:           productRefs("tax_class_id"),
		Cache:                cache,
		Notifier:             notificationService,
		Metrics:              defaultsMetrics,
		Logger:               logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tax class service", err)
		os.Exit(1)
	}

	measureUnitService, err := catalog.NewService(catalog.Config[models.MeasureUnit, *models.MeasureUnit]{
		Kind:                 enums.CatalogEntityMeasureUnit,
		Repo:                 catalog.NewRepository[models.MeasureUnit](dbClient, column),
		Policy:               policy,
		Resolver:             resolver,
		UniqueCodeConstraint: "uq_measure_units_code",
		References:           productRefs("measure_unit_id"),
		Cache:                cache,
		Notifier:             notificationService,
		Metrics:              defaultsMetrics,
		Logger:               logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create measure unit service", err)
		os.Exit(1)
	}

	groupingService, err := catalog.NewGroupingService(dbClient, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create grouping service", err)
		os.Exit(1)
	}

	productService, err := product.NewService(
		productRepo,
		productTypeService,
		productStatusService,
		taxClassService,
		measureUnitService,
		resolver,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	priceService, err := prices.NewService(priceRepo, defaultsMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create price service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, routes.Services{
			Tenants:       tenantService,
			PriceLists:    priceListService,
			ProductTypes:  productTypeService,
			Statuses:      productStatusService,
			TaxClasses:    taxClassService,
			MeasureUnits:  measureUnitService,
			Grouping:      groupingService,
			Products:      productService,
			Prices:        priceService,
			Notifications: notificationService,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
