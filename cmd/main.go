// @title       DojoHub API
// @version     1.0
// @description Multi-tenant management for martial arts academies and sports clubs.
// @BasePath    /v1
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "dojohub/docs"
	"dojohub/internal/analytics"
	"dojohub/internal/caching"
	"dojohub/internal/config"
	"dojohub/internal/handlers"
	"dojohub/internal/jobs"
	"dojohub/internal/jobs/background"
	"dojohub/internal/logging"
	"dojohub/internal/metrics"
	"dojohub/internal/middleware"
	"dojohub/internal/repositories"
	"dojohub/internal/services"
	"dojohub/internal/validation"
	"dojohub/pkg/database"
)

const version = "1.0.0"

const (
	providerTimeout = 15 * time.Second
	shutdownTimeout = 20 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(cfg.Database.URL); err != nil {
			logging.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}
	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	storage, err := services.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize object storage")
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		logging.Warn().Err(err).Str("bucket", cfg.Minio.Bucket).Msg("object storage bucket unavailable")
	}

	// Repositories
	txManager := repositories.NewTxManager(pool)
	academyRepo := repositories.NewAcademyRepository(pool)
	brandingRepo := repositories.NewBrandingRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	planRepo := repositories.NewPlanRepository(pool)
	membershipRepo := repositories.NewMembershipRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	bankAccountRepo := repositories.NewBankAccountRepository(pool)
	classRepo := repositories.NewClassRepository(pool)
	scheduleRepo := repositories.NewClassScheduleRepository(pool)
	instanceRepo := repositories.NewClassInstanceRepository(pool)
	attendanceRepo := repositories.NewAttendanceRepository(pool)
	beltRepo := repositories.NewBeltRepository(pool)
	curriculumRepo := repositories.NewCurriculumRepository(pool)
	promotionRepo := repositories.NewPromotionRepository(pool)
	eventRepo := repositories.NewEventRepository(pool)
	matchRepo := repositories.NewMatchRepository(pool)
	evaluationRepo := repositories.NewEvaluationRepository(pool)
	trainingRepo := repositories.NewTrainingRepository(pool)
	expenseRepo := repositories.NewExpenseRepository(pool)
	channelRepo := repositories.NewChannelRepository(pool)
	contentRepo := repositories.NewContentRepository(pool)
	auditLogRepo := repositories.NewAuditLogsRepository(pool)

	// Services
	rbacService := services.NewRBACService()
	auditService := services.NewAuditLogsService(auditLogRepo)
	authService := services.NewAuthService(academyRepo, userRepo, cacheSvc, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	academyService := services.NewAcademyService(txManager, academyRepo, cfg.Billing.TrialDays, cfg.Billing.DefaultCurrency)
	brandingService := services.NewBrandingService(academyRepo, brandingRepo, storage, cacheSvc)
	bankAccountService := services.NewBankAccountService(bankAccountRepo)
	userService := services.NewUserService(userRepo)
	planService := services.NewPlanService(planRepo, academyRepo)
	membershipService := services.NewMembershipService(txManager, membershipRepo, cfg.Billing.TrialDays)

	httpClient := &http.Client{Timeout: providerTimeout}
	paymentService := services.NewPaymentService(services.PaymentDeps{
		TxManager:   txManager,
		Payments:    paymentRepo,
		Memberships: membershipRepo,
		Plans:       planRepo,
		Users:       userRepo,
		Academies:   academyRepo,
		Membership:  membershipService,
		Storage:     storage,
		Cache:       cacheSvc,
		MercadoPago: services.NewMercadoPagoClient(cfg.MercadoPago.BaseURL, cfg.MercadoPago.AccessToken, cfg.MercadoPago.WebhookSecret, httpClient),
		Flow:        services.NewFlowClient(cfg.Flow.BaseURL, cfg.Flow.APIKey, cfg.Flow.SecretKey, httpClient),
		Receipts:    services.NewReceiptRenderer(),
		URLs: services.CheckoutURLs{
			MercadoPagoNotification: cfg.MercadoPago.NotificationURL,
			MercadoPagoSuccess:      cfg.MercadoPago.SuccessURL,
			FlowConfirmation:        cfg.Flow.ConfirmationURL,
			FlowReturn:              cfg.Flow.ReturnURL,
		},
	})

	classService := services.NewClassService(classRepo, scheduleRepo, instanceRepo, userRepo, academyRepo)
	attendanceService := services.NewAttendanceService(attendanceRepo, instanceRepo, userRepo, membershipRepo, cacheSvc, services.AttendanceConfig{
		Secret:     cfg.JWT.Secret,
		OpenBefore: cfg.Attendance.OpenBefore,
		CloseAfter: cfg.Attendance.CloseAfterEnd,
		QRSize:     cfg.Attendance.QRSize,
		Lookback:   cfg.Attendance.LookbackWindow,
	})
	materializer := services.NewMaterializer(academyRepo, scheduleRepo, instanceRepo, trainingRepo)
	curriculumService := services.NewCurriculumService(beltRepo, curriculumRepo, promotionRepo, attendanceRepo, contentRepo, userRepo)
	eventService := services.NewEventService(eventRepo)
	clubService := services.NewClubService(services.ClubDeps{
		Academies:   academyService,
		Matches:     matchRepo,
		Evaluations: evaluationRepo,
		Training:    trainingRepo,
		Expenses:    expenseRepo,
		Users:       userRepo,
		Storage:     storage,
	})
	contentService := services.NewContentService(channelRepo, contentRepo, beltRepo, storage)
	dashboards := analytics.NewDashboardService(academyRepo, membershipRepo, paymentRepo, attendanceRepo, instanceRepo, cacheSvc)

	// Jobs
	suspensionJob := jobs.NewOverdueSuspension(txManager, membershipRepo, cfg.Billing.GracePeriod())
	trialJob := jobs.NewTrialExpiry(membershipRepo, academyRepo)
	materializeJob := jobs.NewScheduleMaterializer(materializer, cfg.Cron.HorizonDays)
	dashboardJob := jobs.NewAnalyticsRefreshService(academyRepo, dashboards)

	if cfg.Cron.Enabled {
		scheduler, err := background.NewJobScheduler(cfg.Cron, background.Jobs{
			Suspension:   suspensionJob,
			Trials:       trialJob,
			Materializer: materializeJob,
			Dashboards:   dashboardJob,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to create job scheduler")
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logging.Error().Err(err).Msg("failed to stop job scheduler")
			}
		}()
	}

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.HTTPErrorHandler
	e.Validator = validation.EchoValidator{}

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Pre(middleware.RejectUnknownVersion())
	e.Use(echoMiddleware.RequestID())
	e.Use(logging.RequestContext())
	e.Use(logging.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{AllowOrigins: cfg.Server.CORSOrigins}))
	e.Use(echoMiddleware.BodyLimit("25M"))
	e.Use(middleware.Metrics())

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	if cfg.Server.EnableDocs {
		e.GET("/docs/*", echoSwagger.WrapHandler)
	}

	handlers.RegisterRoutes(e, &handlers.Handlers{
		Auth:        handlers.NewAuthHandlers(authService, academyService, userService),
		Academy:     handlers.NewAcademyHandlers(academyService, brandingService, bankAccountService),
		Users:       handlers.NewUserHandlers(userService),
		Plans:       handlers.NewPlanHandlers(planService),
		Memberships: handlers.NewMembershipHandlers(membershipService),
		Payments:    handlers.NewPaymentHandlers(paymentService),
		Classes:     handlers.NewClassHandlers(classService, attendanceService, materializer),
		Curriculum:  handlers.NewCurriculumHandlers(curriculumService),
		Events:      handlers.NewEventHandlers(eventService),
		Club:        handlers.NewClubHandlers(clubService),
		Content:     handlers.NewContentHandlers(contentService),
		Dashboard:   handlers.NewDashboardHandlers(dashboards),
		AuditLogs:   handlers.NewAuditLogsHandlers(auditService),
		Webhooks:    handlers.NewWebhookHandlers(paymentService),
		Health:      handlers.NewHealthHandlers(pool, cacheSvc, storage, version),
		Jobs:        handlers.NewJobHandlers(suspensionJob, trialJob, materializeJob, dashboardJob),
	}, handlers.RouteMiddleware{
		JWT:        middleware.JWT(authService),
		RBAC:       middleware.NewRBACMiddleware(rbacService),
		Audit:      middleware.NewAuditMiddleware(auditService),
		CronSecret: cfg.Cron.Secret,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logging.Info().Str("version", version).Str("addr", addr).Str("environment", cfg.Server.Environment).Msg("dojohub server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
