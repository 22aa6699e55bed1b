package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mercatura/catalog-backend/api/controllers"
	"github.com/mercatura/catalog-backend/api/middleware"
	"github.com/mercatura/catalog-backend/internal/catalog"
	"github.com/mercatura/catalog-backend/internal/notifications"
	"github.com/mercatura/catalog-backend/internal/prices"
	product "github.com/mercatura/catalog-backend/internal/products"
	"github.com/mercatura/catalog-backend/internal/tenants"
	"github.com/mercatura/catalog-backend/pkg/config"
	"github.com/mercatura/catalog-backend/pkg/db"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	"github.com/mercatura/catalog-backend/pkg/logger"
	"github.com/mercatura/catalog-backend/pkg/redis"
)

// Services bundles everything the HTTP surface needs. Explicit wiring
// instead of package-level singletons keeps tests and main honest about
// what each route depends on.
type Services struct {
	Tenants       tenants.Service
	PriceLists    *controllers.PriceListService
	ProductTypes  *controllers.ProductTypeService
	Statuses      *controllers.ProductStatusService
	TaxClasses    *controllers.TaxClassService
	MeasureUnits  *controllers.MeasureUnitService
	Grouping      *catalog.GroupingService
	Products      product.Service
	Prices        prices.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		var cachePinger redis.Pinger
		if redisClient != nil {
			cachePinger = redisClient
		}
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Tenant(logg))

		r.Route("/tenants", func(r chi.Router) {
			r.Post("/", controllers.TenantCreate(svcs.Tenants, logg))
			r.Get("/", controllers.TenantList(svcs.Tenants, logg))
			r.Get("/{tenantId}", controllers.TenantGet(svcs.Tenants, logg))
			r.Put("/{tenantId}/status", controllers.TenantSetStatus(svcs.Tenants, logg))
			r.Put("/{tenantId}/name", controllers.TenantRename(svcs.Tenants, logg))
		})

		r.Route("/price-lists", func(r chi.Router) {
			r.Post("/", controllers.PriceListCreate(svcs.PriceLists, logg))
			r.Get("/", controllers.PriceListList(svcs.PriceLists, logg))
			r.Get("/default", controllers.PriceListGetDefault(svcs.PriceLists, logg))
			r.Get("/{priceListId}", controllers.PriceListGet(svcs.PriceLists, logg))
			r.Put("/{priceListId}", controllers.PriceListUpdate(svcs.PriceLists, logg))
			r.Put("/{priceListId}/default", controllers.PriceListSetDefault(svcs.PriceLists, logg))
			r.Delete("/{priceListId}", controllers.PriceListDelete(svcs.PriceLists, logg))
		})

		r.Route("/product-types", func(r chi.Router) {
			toDTO := func(m *models.ProductType) any { return catalog.ProductTypeFromModel(m) }
			r.Post("/", controllers.ProductTypeCreate(svcs.ProductTypes, logg))
			r.Get("/", controllers.ClassificationList(svcs.ProductTypes, logg, toDTO))
			r.Get("/default", controllers.ClassificationGetDefault(svcs.ProductTypes, logg, toDTO))
			r.Get("/{typeId}", controllers.ClassificationGet(svcs.ProductTypes, logg, "typeId", toDTO))
			r.Put("/{typeId}", controllers.ProductTypeUpdate(svcs.ProductTypes, logg))
			r.Put("/{typeId}/default", controllers.ClassificationSetDefault(svcs.ProductTypes, logg, "typeId", toDTO))
			r.Delete("/{typeId}", controllers.ClassificationDelete(svcs.ProductTypes, logg, "typeId"))
		})

		r.Route("/product-statuses", func(r chi.Router) {
			toDTO := func(m *models.ProductStatus) any { return catalog.ProductStatusFromModel(m) }
			r.Post("/", controllers.ProductStatusCreate(svcs.Statuses, logg))
			r.Get("/", controllers.ClassificationList(svcs.Statuses, logg, toDTO))
			r.Get("/default", controllers.ClassificationGetDefault(svcs.Statuses, logg, toDTO))
			r.Get("/{statusId}", controllers.ClassificationGet(svcs.Statuses, logg, "statusId", toDTO))
			r.Put("/{statusId}", controllers.ProductStatusUpdate(svcs.Statuses, logg))
			r.Put("/{statusId}/default", controllers.ClassificationSetDefault(svcs.Statuses, logg, "statusId", toDTO))
			r.Delete("/{statusId}", controllers.ClassificationDelete(svcs.Statuses, logg, "statusId"))
		})

		r.Route("/tax-classes", func(r chi.Router) {
			toDTO := func(m *models.TaxClass) any { return catalog.TaxClassFromModel(m) }
			r.Post("/", controllers.TaxClassCreate(svcs.TaxClasses, logg))
			r.Get("/", controllers.ClassificationList(svcs.TaxClasses, logg, toDTO))
			r.Get("/default", controllers.ClassificationGetDefault(svcs.TaxClasses, logg, toDTO))
			r.Get("/{taxClassId}", controllers.ClassificationGet(svcs.TaxClasses, logg, "taxClassId", toDTO))
			r.Put("/{taxClassId}", controllers.TaxClassUpdate(svcs.TaxClasses, logg))
			r.Put("/{taxClassId}/default", controllers.ClassificationSetDefault(svcs.TaxClasses, logg, "taxClassId", toDTO))
			r.Delete("/{taxClassId}", controllers.ClassificationDelete(svcs.TaxClasses, logg, "taxClassId"))
		})

		r.Route("/measure-units", func(r chi.Router) {
			toDTO := func(m *models.MeasureUnit) any { return catalog.MeasureUnitFromModel(m) }
			r.Post("/", controllers.MeasureUnitCreate(svcs.MeasureUnits, logg))
			r.Get("/", controllers.ClassificationList(svcs.MeasureUnits, logg, toDTO))
			r.Get("/default", controllers.ClassificationGetDefault(svcs.MeasureUnits, logg, toDTO))
			r.Get("/{unitId}", controllers.ClassificationGet(svcs.MeasureUnits, logg, "unitId", toDTO))
			r.Put("/{unitId}", controllers.MeasureUnitUpdate(svcs.MeasureUnits, logg))
			r.Put("/{unitId}/default", controllers.ClassificationSetDefault(svcs.MeasureUnits, logg, "unitId", toDTO))
			r.Delete("/{unitId}", controllers.ClassificationDelete(svcs.MeasureUnits, logg, "unitId"))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CategoryCreate(svcs.Grouping, logg))
			r.Get("/", controllers.CategoryList(svcs.Grouping, logg))
			r.Put("/{categoryId}/move", controllers.CategoryMove(svcs.Grouping, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(svcs.Grouping, logg))
		})

		r.Route("/product-groups", func(r chi.Router) {
			r.Post("/", controllers.ProductGroupCreate(svcs.Grouping, logg))
			r.Get("/", controllers.ProductGroupList(svcs.Grouping, logg))
			r.Delete("/{groupId}", controllers.ProductGroupDelete(svcs.Grouping, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(svcs.Products, logg))
			r.Get("/", controllers.ProductList(svcs.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(svcs.Products, logg))
			r.Put("/{productId}", controllers.ProductUpdate(svcs.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(svcs.Products, logg))

			r.Get("/{productId}/prices", controllers.PriceListForProduct(svcs.Prices, logg))
			r.Get("/{productId}/price-lists/{priceListId}/effective", controllers.PriceResolveEffective(svcs.Prices, logg))
		})

		r.Route("/prices", func(r chi.Router) {
			r.Post("/", controllers.PriceCreate(svcs.Prices, logg))
			r.Put("/{priceId}", controllers.PriceUpdate(svcs.Prices, logg))
			r.Delete("/{priceId}", controllers.PriceDelete(svcs.Prices, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationList(svcs.Notifications, logg))
			r.Put("/{notificationId}/read", controllers.NotificationMarkRead(svcs.Notifications, logg))
			r.Put("/read-all", controllers.NotificationMarkAllRead(svcs.Notifications, logg))
		})
	})

	return r
}
