package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campus-ops/room-allocation-api/api/swagger"
	"github.com/campus-ops/room-allocation-api/internal/handler"
	"github.com/campus-ops/room-allocation-api/internal/middleware"
	"github.com/campus-ops/room-allocation-api/internal/models"
	"github.com/campus-ops/room-allocation-api/internal/repository"
	"github.com/campus-ops/room-allocation-api/internal/service"
	"github.com/campus-ops/room-allocation-api/pkg/cache"
	"github.com/campus-ops/room-allocation-api/pkg/config"
	"github.com/campus-ops/room-allocation-api/pkg/database"
	"github.com/campus-ops/room-allocation-api/pkg/logger"
	corsmiddleware "github.com/campus-ops/room-allocation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-ops/room-allocation-api/pkg/middleware/requestid"
	"github.com/campus-ops/room-allocation-api/pkg/storage"
)

// @title Room Allocation API
// @version 1.0.0
// @description Classroom allocation conflict engine and change-request workflow
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, allocation caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	allocationRepo := repository.NewAllocationRepository(db)
	requestRepo := repository.NewChangeRequestRepository(db, allocationRepo)
	scheduleRepo := repository.NewScheduleRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	var archive *storage.LocalStorage
	var signer *storage.SignedURLSigner
	if cfg.Exports.Enabled {
		archive, err = storage.NewLocalStorage(cfg.Exports.Dir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export archive", "error", err)
		}
		signer = storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Exports.DownloadTTL)
	}

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "room-allocation-api",
	})
	notificationSvc := service.NewNotificationService(notificationRepo, logr, service.NotificationConfig{
		Workers:    cfg.Requests.NotifyWorkers,
		MaxRetries: cfg.Requests.NotifyRetries,
		RetryDelay: cfg.Requests.NotifyRetryDelay,
	})
	conflictSvc := service.NewConflictService(allocationRepo, cacheRepo, metricsSvc, validate, logr, cfg.Engine)
	requestSvc := service.NewChangeRequestService(
		requestRepo,
		allocationRepo,
		scheduleRepo,
		notificationSvc,
		cacheRepo,
		metricsSvc,
		validate,
		logr,
		service.ChangeRequestConfig{
			Enabled:         cfg.Requests.Enabled,
			MaxReasonLength: cfg.Requests.MaxReasonLength,
		},
	)
	reassignSvc := service.NewReassignmentService(allocationRepo, roomRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, allocationRepo, cacheRepo, notificationSvc, archive, signer, logr)
	allocationSvc := service.NewAllocationService(allocationRepo, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	notificationSvc.Start(rootCtx)
	defer notificationSvc.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	requestHandler := handler.NewChangeRequestHandler(requestSvc)
	reassignHandler := handler.NewReassignmentHandler(reassignSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, cfg.Exports.Enabled)
	allocationHandler := handler.NewAllocationHandler(allocationSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	// Signed tokens carry their own authorization.
	api.GET("/exports/download", scheduleHandler.DownloadArchived)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/allocations", allocationHandler.List)
		authed.GET("/allocations/:id", allocationHandler.Get)
		authed.GET("/allocations/:id/reassignment-options", reassignHandler.RankRooms)
		authed.POST("/reassignment/teacher-check", reassignHandler.CheckTeacherMove)

		authed.GET("/schedules/:id", scheduleHandler.Get)
		authed.POST("/schedules/:id/conflict-check", conflictHandler.Check)
		authed.GET("/schedules/:id/slot-grid", conflictHandler.SlotGrid)

		authed.GET("/notifications", notificationHandler.List)

		authed.POST("/change-requests", requestHandler.Create)
		authed.GET("/change-requests", requestHandler.List)
		authed.GET("/change-requests/:id", requestHandler.Get)
	}

	admin := api.Group("")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	{
		admin.PUT("/schedules/:id/lock",
			middleware.Audit(auditRepo, models.AuditActionScheduleLock, "schedule"),
			scheduleHandler.SetLock)
		admin.GET("/schedules/:id/export",
			middleware.Audit(auditRepo, models.AuditActionScheduleExport, "schedule"),
			scheduleHandler.Export)
		admin.POST("/change-requests/:id/decision",
			middleware.Audit(auditRepo, models.AuditActionRequestDecide, "change_request"),
			requestHandler.Decide)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
