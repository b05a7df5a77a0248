package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/pricelist-review-api/internal/middleware"
	"github.com/noah-isme/pricelist-review-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/pricelist-review-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/pricelist-review-api/pkg/middleware/requestid"
)

// RouterConfig carries the handlers and switches the router needs.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	AdminRoles     []string
	EnableDocs     bool
	Logger         *zap.Logger

	Auth     middleware.TokenValidator
	Requests middleware.RequestObserver

	System    *SystemHandler
	Jobs      *JobHandler
	Clients   *ClientHandler
	Uploads   *UploadHandler
	Products  *ProductHandler
	Users     *UserHandler
	Audit     *AuditHandler
	// Downloads is nil when signed export links are disabled.
	Downloads *DownloadHandler
	// Live is nil when the live feed is disabled.
	Live      *LiveHandler
}

// NewRouter builds the gin engine with every route of the gateway.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Requests))

	r.GET("/health", cfg.System.Health)
	r.GET("/ready", cfg.System.Ready)
	r.GET("/metrics", cfg.System.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.Downloads != nil {
		r.GET(cfg.APIPrefix+"/downloads/:token", cfg.Downloads.Download)
	}

	api := r.Group(cfg.APIPrefix, middleware.JWT(cfg.Auth), middleware.WithResponseMeta())
	admin := middleware.RequireRoles(cfg.AdminRoles...)

	api.GET("/dashboard", cfg.Jobs.Dashboard)
	api.GET("/clients", cfg.Clients.List)

	jobs := api.Group("/jobs")
	jobs.GET("", cfg.Jobs.List)
	jobs.GET("/:id", cfg.Jobs.Detail)
	jobs.GET("/:id/tables/:category", cfg.Jobs.Table)
	jobs.GET("/:id/tables/:category/export.csv", cfg.Jobs.CategoryCSV)
	jobs.GET("/:id/status/confirmation", cfg.Jobs.Confirmation)
	jobs.POST("/:id/status", admin, cfg.Jobs.ChangeStatus)
	jobs.GET("/:id/export", cfg.Jobs.Export)
	jobs.GET("/:id/summary.pdf", cfg.Jobs.Summary)
	if cfg.Downloads != nil {
		jobs.POST("/:id/export/link", cfg.Downloads.CreateLink)
	}

	api.POST("/uploads/preview", cfg.Uploads.Preview)
	api.POST("/clients/:client_id/pricelists", cfg.Uploads.UploadPricelist)
	api.POST("/clients/:client_id/catalog", admin, cfg.Uploads.ImportCatalog)

	api.GET("/products", cfg.Products.List)
	api.GET("/products/export", cfg.Products.Export)

	users := api.Group("/users", admin)
	users.GET("", cfg.Users.List)
	users.PATCH("/:id/approval", cfg.Users.SetApproval)
	users.PUT("/:id/role", cfg.Users.ChangeRole)

	api.GET("/audit", admin, cfg.Audit.List)
	api.GET("/system/metrics", admin, cfg.System.Snapshot)

	if cfg.Live != nil {
		api.GET("/ws/jobs", cfg.Live.Serve)
	}

	return r
}
