package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/pricelist-review-api/api/swagger"
	"github.com/noah-isme/pricelist-review-api/internal/handler"
	"github.com/noah-isme/pricelist-review-api/internal/realtime"
	"github.com/noah-isme/pricelist-review-api/internal/repository"
	"github.com/noah-isme/pricelist-review-api/internal/service"
	"github.com/noah-isme/pricelist-review-api/pkg/cache"
	"github.com/noah-isme/pricelist-review-api/pkg/config"
	"github.com/noah-isme/pricelist-review-api/pkg/database"
	"github.com/noah-isme/pricelist-review-api/pkg/gateway"
	"github.com/noah-isme/pricelist-review-api/pkg/jobs"
	"github.com/noah-isme/pricelist-review-api/pkg/logger"
	"github.com/noah-isme/pricelist-review-api/pkg/storage"
)

// @title Pricelist Review API
// @version 1.0.0
// @description Backend-for-frontend for the pricelist analysis review dashboard
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()
	checks := map[string]handler.ReadinessCheck{}

	remote := gateway.New(
		gateway.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout},
		gateway.ContextToken,
		gateway.WithLogger(logr.Named("gateway")),
		gateway.WithObserver(metrics),
	)

	jobRepo := repository.NewJobRepository(remote)
	clientRepo := repository.NewClientRepository(remote)
	productRepo := repository.NewProductRepository(remote)
	userRepo := repository.NewUserRepository(remote)
	uploadRepo := repository.NewUploadRepository(remote)

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		redisRepo := repository.NewCacheRepository(redisClient)
		cacheRepo = redisRepo
		checks["redis"] = redisRepo.Ping
	}
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Cache.JobTTL, logr, cfg.Cache.Enabled)

	auditService := newAuditService(ctx, cfg, metrics, logr, checks)
	defer auditService.Stop()

	var (
		hub       *realtime.Hub
		publisher service.EventPublisher
	)
	if cfg.LiveFeed.Enabled {
		hub = realtime.NewHub(logr.Named("live"), metrics)
		go hub.Run(ctx)
		publisher = hub
	}

	inFlight := service.NewInFlight()
	clientService := service.NewClientService(clientRepo, cacheService, cfg.Cache.ClientsTTL, logr)
	jobService := service.NewJobService(service.JobServiceParams{
		Jobs:     jobRepo,
		Clients:  clientService,
		Cache:    cacheService,
		InFlight: inFlight,
		Logger:   logr,
		Config: service.JobServiceConfig{
			PageSize:    cfg.Review.PageSize,
			MaxPageSize: cfg.Review.MaxPageSize,
			JobTTL:      cfg.Cache.JobTTL,
		},
	})
	statusService := service.NewStatusService(service.StatusServiceParams{
		Jobs:      jobRepo,
		Cache:     cacheService,
		InFlight:  inFlight,
		Audit:     auditService,
		Publisher: publisher,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
	})
	exportService := service.NewExportService(jobService, logr, nil, nil, nil)
	uploadService := service.NewUploadService(uploadRepo, publisher, service.UploadServiceConfig{
		MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
		PreviewRows: cfg.Uploads.PreviewRows,
	}, logr)
	productService := service.NewProductService(productRepo, cfg.Review.ProductPageSize, logr)
	userService := service.NewUserService(userRepo, validate, cfg.Review.PageSize, logr)
	authService := service.NewAuthService(cfg.Auth)
	if cfg.Auth.Secret == "" {
		logr.Warn("AUTH_JWT_SECRET is empty; bearer tokens are decoded without signature verification")
	}

	routerCfg := handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AdminRoles:     cfg.Auth.AdminRoles,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Auth:           authService,
		Requests:       metrics,
		System:         handler.NewSystemHandler(metrics, checks),
		Jobs:           handler.NewJobHandler(jobService, statusService, exportService),
		Clients:        handler.NewClientHandler(clientService),
		Uploads:        handler.NewUploadHandler(uploadService),
		Products:       handler.NewProductHandler(productService),
		Users:          handler.NewUserHandler(userService),
		Audit:          handler.NewAuditHandler(auditService),
	}
	if cfg.Exports.Enabled {
		links := newExportLinks(cfg, exportService, logr)
		go links.RunJanitor(ctx, 0)
		routerCfg.Downloads = handler.NewDownloadHandler(links)
	}
	if hub != nil {
		routerCfg.Live = handler.NewLiveHandler(hub, jobService, handler.LiveConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			PingInterval:   cfg.LiveFeed.PingInterval,
			SearchDebounce: cfg.Review.SearchDebounce,
		}, logr.Named("live"))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newAuditService connects the audit database when enabled. Without it the
// service records nothing and the audit endpoint reports it as disabled.
func newAuditService(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger, checks map[string]handler.ReadinessCheck) *service.AuditService {
	queueCfg := jobs.Config{Workers: cfg.Audit.Workers, MaxRetries: cfg.Audit.MaxRetries}
	if !cfg.Audit.Enabled {
		return service.NewAuditService(nil, metrics, logr, queueCfg)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect audit database", "error", err)
	}
	checks["postgres"] = postgresCheck(db)

	auditService := service.NewAuditService(repository.NewAuditRepository(db), metrics, logr, queueCfg)
	auditService.Start(ctx)
	logr.Info("audit trail enabled", zap.Int("workers", cfg.Audit.Workers))
	return auditService
}

// newExportLinks stores rendered exports on disk behind signed links.
func newExportLinks(cfg *config.Config, exports *service.ExportService, logr *zap.Logger) *service.ExportLinkService {
	if cfg.Exports.Secret == "" {
		logr.Fatal("export links need EXPORT_LINK_SECRET or AUTH_JWT_SECRET")
	}
	store, err := storage.NewStore(cfg.Exports.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export directory", "error", err)
	}
	signer := storage.NewLinkSigner(cfg.Exports.Secret, cfg.Exports.TTL)
	return service.NewExportLinkService(exports, store, signer, cfg.APIPrefix+"/downloads", logr.Named("exports"))
}

func postgresCheck(db *sqlx.DB) handler.ReadinessCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
