// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/http/v1/handlers"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/infrastructure/http/v1/middleware"
	"github.com/alenprastyaa/hakimah-laporan-harian/pkg/logger"
	"github.com/alenprastyaa/hakimah-laporan-harian/pkg/metrics"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Mode is the gin mode (debug, release, test)
	Mode string

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// StoreAccess decides employee access to a store
	StoreAccess middleware.StoreAccessChecker

	Users   handlers.UserService
	Stores  handlers.StoreService
	Banks   handlers.BankService
	Reports handlers.ReportService

	// HealthChecks are probed by /health/ready
	HealthChecks map[string]handlers.Pinger

	// CORSOrigins lists allowed origins; empty allows all
	CORSOrigins []string

	// Metrics is optional; nil disables /metrics and request metrics
	Metrics     *metrics.Metrics
	MetricsPath string
}

var (
	adminOnly  = []string{appctx.RoleAdmin}
	staffRoles = []string{appctx.RoleAdmin, appctx.RoleEmployee}
)

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(corsMiddleware(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api")
	auth := middleware.Auth(cfg.JWTValidator)
	base := handlers.NewBaseHandler()

	registerUserRoutes(api.Group("/users"), auth, handlers.NewAuthHandler(base, cfg.Users))
	registerStoreRoutes(api.Group("/stores", auth), handlers.NewStoreHandler(base, cfg.Stores))
	registerBankRoutes(api.Group("/banks", auth), handlers.NewBankHandler(base, cfg.Banks))
	registerReportRoutes(api.Group("/reports", auth), handlers.NewReportsHandler(base, cfg.Reports), cfg.StoreAccess)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AddAllowMethods("PATCH")
	corsConfig.AddAllowHeaders("Authorization", middleware.HeaderRequestID, middleware.HeaderTraceID)
	corsConfig.AddExposeHeaders("Content-Disposition", middleware.HeaderRequestID, middleware.HeaderTraceID)
	return cors.New(corsConfig)
}

// registerUserRoutes registers registration, login and user management.
func registerUserRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc, h *handlers.AuthHandler) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)

	rg.GET("/me", auth, h.Me)

	admin := rg.Group("", auth, middleware.RequireRole(adminOnly...))
	admin.GET("", h.List)
	admin.GET("/employees", h.Employees)
	admin.GET("/:id", h.Get)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}

// registerStoreRoutes registers the store catalog. Reads are scoped by the
// service, writes are admin only.
func registerStoreRoutes(rg *gin.RouterGroup, h *handlers.StoreHandler) {
	RegisterCRUDRoutes(rg, h, RouteGuards{
		Read:   []gin.HandlerFunc{middleware.RequireRole(staffRoles...)},
		Create: []gin.HandlerFunc{middleware.RequireRole(adminOnly...)},
		Write:  []gin.HandlerFunc{middleware.RequireRole(adminOnly...)},
	})
}

// registerBankRoutes registers the bank catalog.
func registerBankRoutes(rg *gin.RouterGroup, h *handlers.BankHandler) {
	staff := middleware.RequireRole(staffRoles...)
	rg.GET("/store/:store_id", staff, h.ListByStore)
	RegisterCRUDRoutes(rg, h, RouteGuards{
		Read:   []gin.HandlerFunc{staff},
		Create: []gin.HandlerFunc{staff},
		Write:  []gin.HandlerFunc{staff},
	})
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, h *handlers.ReportsHandler, access middleware.StoreAccessChecker) {
	staff := rg.Group("", middleware.RequireRole(staffRoles...))

	staff.GET("/analysis/profit", h.Profit)
	staff.GET("/dashboard", h.Dashboard)
	staff.GET("/export", h.Export)

	staff.POST("", middleware.RequireStoreAccess(access), h.Create)
	staff.GET("", h.List)
	staff.GET("/:id", h.Get)
	staff.PUT("/:id", middleware.RequireStoreAccess(access), h.Update)
	staff.DELETE("/:id", h.Delete)
	staff.PATCH("/:id/remove-uang-nitip", h.RemoveUangNitip)

	rg.GET("/:id/history", middleware.RequireRole(adminOnly...), h.History)
}
