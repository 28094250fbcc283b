package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/innovex/ideahub-api/api/swagger"
	"github.com/innovex/ideahub-api/internal/handler"
	"github.com/innovex/ideahub-api/internal/middleware"
	"github.com/innovex/ideahub-api/internal/repository"
	"github.com/innovex/ideahub-api/internal/service"
	"github.com/innovex/ideahub-api/pkg/cache"
	"github.com/innovex/ideahub-api/pkg/config"
	"github.com/innovex/ideahub-api/pkg/database"
	"github.com/innovex/ideahub-api/pkg/export"
	"github.com/innovex/ideahub-api/pkg/jobs"
	"github.com/innovex/ideahub-api/pkg/logger"
	"github.com/innovex/ideahub-api/pkg/mailer"
	corsmiddleware "github.com/innovex/ideahub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/innovex/ideahub-api/pkg/middleware/requestid"
	"github.com/innovex/ideahub-api/pkg/storage"
)

// @title IdeaHub API
// @version 1.0.0
// @description Internal idea management platform
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
		redisClient = nil
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	validate := validator.New()

	// Repositories.
	staffRepo := repository.NewStaffRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	academicRepo := repository.NewAcademicRepository(db)
	ideaRepo := repository.NewIdeaRepository(db)
	viewRepo := repository.NewViewRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Background notification queue.
	notifications := service.NewNotificationService(
		mailer.New(cfg.SMTP, logr),
		announcementRepo,
		jobs.QueueConfig{
			Workers:    cfg.Notify.Workers,
			BufferSize: cfg.Notify.BufferSize,
			MaxRetries: cfg.Notify.MaxRetries,
			RetryDelay: cfg.Notify.RetryDelay,
			Logger:     logr,
		},
		logr,
	)
	notifications.Start(ctx)
	defer notifications.Stop()

	// Services.
	authSvc := service.NewAuthService(staffRepo, tokenRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "ideahub-api",
	})
	staffSvc := service.NewStaffService(staffRepo, tokenRepo, validate, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo, validate, logr)
	categorySvc := service.NewCategoryService(categoryRepo, validate, logr)
	academicSvc := service.NewAcademicService(academicRepo, validate, logr)
	ideaSvc := service.NewIdeaService(ideaRepo, viewRepo, academicRepo, staffRepo, categoryRepo, notifications, cacheRepo, validate, logr)
	commentSvc := service.NewCommentService(commentRepo, ideaRepo, academicRepo, staffRepo, notifications, validate, logr)
	voteSvc := service.NewVoteService(voteRepo, ideaRepo, validate, logr)
	reportSvc := service.NewReportService(reportRepo, ideaRepo, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, staffRepo, notifications, validate, logr)
	statsSvc := service.NewStatsService(statsRepo, cacheRepo, export.NewPDFExporter(), cfg.Stats.CacheTTL, logr)
	metricsSvc := service.NewMetricsService()

	exportSigner := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(ideaRepo, academicRepo, exportStore, exportSigner, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)
	go exportSvc.RunCleanupLoop(ctx, cfg.Exports.CleanupInterval)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, routeDeps{
		auth:          authSvc,
		staff:         handler.NewStaffHandler(staffSvc),
		departments:   handler.NewDepartmentHandler(departmentSvc),
		categories:    handler.NewCategoryHandler(categorySvc),
		academics:     handler.NewAcademicHandler(academicSvc),
		ideas:         handler.NewIdeaHandler(ideaSvc),
		comments:      handler.NewCommentHandler(commentSvc),
		votes:         handler.NewVoteHandler(voteSvc),
		reports:       handler.NewReportHandler(reportSvc),
		announcements: handler.NewAnnouncementHandler(announcementSvc),
		stats:         handler.NewStatsHandler(statsSvc),
		exports:       handler.NewExportHandler(exportSvc),
		metrics:       handler.NewMetricsHandler(metricsSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
