// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"fleettrack/internal/domain/auth"
	"fleettrack/internal/domain/catalogs/organization"
	"fleettrack/internal/domain/catalogs/vehicle"
	"fleettrack/internal/domain/inventory/oil"
	"fleettrack/internal/domain/inventory/tire"
	"fleettrack/internal/domain/reminders"
	"fleettrack/internal/domain/serviceevent"
	"fleettrack/internal/infrastructure/http/v1/handlers"
	"fleettrack/internal/infrastructure/http/v1/middleware"
	"fleettrack/internal/infrastructure/storage/postgres"
	"fleettrack/pkg/logger"
)

// RouterConfig carries the wired services the HTTP surface exposes.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	JWTValidator middleware.JWTValidator

	AuthService         *auth.Service
	OrganizationService *organization.Service
	VehicleService      *vehicle.Service
	OilService          *oil.Service
	TireService         *tire.Service
	ServiceEventService *serviceevent.Service
	ReminderService     *reminders.Service

	// IdempotencyStore enables replay protection for mutating requests
	// carrying an Idempotency-Key header. Nil disables the middleware.
	IdempotencyStore *postgres.IdempotencyStore
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: Recovery outermost, ErrorHandler closest to handlers.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	baseHandler := handlers.NewBaseHandler()

	// Health endpoints, no auth required.
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")

	// Public auth endpoints.
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
	publicAuth := v1.Group("/auth")
	{
		publicAuth.POST("/register", authHandler.Register)
		publicAuth.POST("/login", authHandler.Login)
	}

	// Everything else requires a token and an organization scope.
	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.Use(middleware.OrgScope(cfg.OrganizationService))
	if cfg.IdempotencyStore != nil {
		protected.Use(middleware.Idempotency(cfg.IdempotencyStore))
	}

	protected.GET("/auth/me", authHandler.Me)

	registerOrganizationRoutes(protected, baseHandler, cfg)
	registerVehicleRoutes(protected, baseHandler, cfg)
	registerOilRoutes(protected, baseHandler, cfg)
	registerTireRoutes(protected, baseHandler, cfg)
	registerServiceEventRoutes(protected, baseHandler, cfg)
	registerReminderRoutes(protected, baseHandler, cfg)

	return router
}

func registerOrganizationRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewOrganizationHandler(base, cfg.OrganizationService)
	RegisterCatalogRoutes(rg.Group("/organizations"), handler)
}

func registerVehicleRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewVehicleHandler(base, cfg.VehicleService, cfg.OilService, cfg.TireService)

	vehicles := rg.Group("/vehicles")
	RegisterCatalogRoutes(vehicles, handler)
	vehicles.POST("/:id/odometer", handler.RecordOdometer)
	vehicles.GET("/:id/odometer", handler.ListOdometer)
	vehicles.GET("/:id/mounted-tires", handler.MountedTires)
	vehicles.GET("/:id/oil-usage", handler.OilUsage)
}

func registerOilRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewOilHandler(base, cfg.OilService)

	oilGroup := rg.Group("/oil")
	{
		oilGroup.GET("/stocks", handler.ListStock)
		oilGroup.POST("/stocks", handler.CreateStock)
		oilGroup.GET("/stocks/:id", handler.GetStock)
		oilGroup.PUT("/stocks/:id", handler.UpdateStock)
		oilGroup.DELETE("/stocks/:id", handler.DeleteStock)
		oilGroup.POST("/stocks/:id/adjust", handler.AdjustStock)
		oilGroup.GET("/stocks/:id/movements", handler.StockMovements)
		oilGroup.POST("/usage", handler.RecordUsage)
		oilGroup.GET("/movements", handler.Movements)
	}
}

func registerTireRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewTireHandler(base, cfg.TireService)

	tireGroup := rg.Group("/tire")
	{
		tireGroup.GET("/stocks", handler.ListStock)
		tireGroup.POST("/stocks", handler.CreateStock)
		tireGroup.GET("/stocks/:id", handler.GetStock)
		tireGroup.DELETE("/stocks/:id", handler.DeleteStock)
		tireGroup.POST("/stocks/:id/adjust", handler.AdjustStock)
		tireGroup.GET("/stocks/:id/movements", handler.StockMovements)
		tireGroup.POST("/mount", handler.Mount)
		tireGroup.POST("/unmount", handler.Unmount)
		tireGroup.GET("/movements", handler.Movements)
		tireGroup.DELETE("/movements/:id", handler.DeleteMovement)
	}
}

func registerServiceEventRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewServiceEventHandler(base, cfg.ServiceEventService)

	events := rg.Group("/service-events")
	{
		events.GET("", handler.List)
		events.POST("", handler.Create)
		events.GET("/:id", handler.Get)
		events.DELETE("/:id", handler.Delete)
	}
}

func registerReminderRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewReminderHandler(base, cfg.ReminderService)

	remindersGroup := rg.Group("/reminders")
	{
		remindersGroup.GET("", handler.List)
		remindersGroup.POST("", handler.Create)
		remindersGroup.GET("/:id", handler.Get)
		remindersGroup.DELETE("/:id", handler.Delete)
		remindersGroup.POST("/:id/evaluate", handler.Evaluate)
	}
}
