package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/rinkpass/backend/docs"
	accountingapp "github.com/rinkpass/backend/internal/application/accounting"
	billingapp "github.com/rinkpass/backend/internal/application/billing"
	membershipapp "github.com/rinkpass/backend/internal/application/membership"
	"github.com/rinkpass/backend/internal/application/notification"
	xero "github.com/rinkpass/backend/internal/infrastructure/accounting"
	"github.com/rinkpass/backend/internal/infrastructure/auth"
	"github.com/rinkpass/backend/internal/infrastructure/cache"
	"github.com/rinkpass/backend/internal/infrastructure/config"
	"github.com/rinkpass/backend/internal/infrastructure/email"
	"github.com/rinkpass/backend/internal/infrastructure/event"
	"github.com/rinkpass/backend/internal/infrastructure/logger"
	"github.com/rinkpass/backend/internal/infrastructure/payment"
	"github.com/rinkpass/backend/internal/infrastructure/persistence"
	"github.com/rinkpass/backend/internal/infrastructure/scheduler"
	"github.com/rinkpass/backend/internal/infrastructure/storage"
	"github.com/rinkpass/backend/internal/infrastructure/telemetry"
	"github.com/rinkpass/backend/internal/interfaces/http/handler"
	"github.com/rinkpass/backend/internal/interfaces/http/middleware"
	"github.com/rinkpass/backend/internal/interfaces/http/router"
)

//	@title			RinkPass Backend API
//	@version		1.0
//	@description	Hockey association membership and registration backend

//	@contact.name	RinkPass Support
//	@contact.url	https://github.com/rinkpass/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()

	// Initialize telemetry providers. Disabled config yields no-op providers
	// so the rest of the wiring never branches on cfg.Telemetry.Enabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilerEnabled,
		ServerAddress:   cfg.Telemetry.ProfilerEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	if cfg.Telemetry.Enabled && cfg.Telemetry.ProfilerEnabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		if err := loggerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	if cfg.Telemetry.Enabled {
		otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider, zapcore.InfoLevel)
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelCore)
		}))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	var syncMetrics *telemetry.SyncMetrics
	if meterProvider.IsEnabled() {
		syncMetrics, err = telemetry.NewSyncMetrics(meterProvider.Meter("rinkpass.sync"))
		if err != nil {
			log.Fatal("Failed to create sync metrics", zap.Error(err))
		}
	}

	log.Info("Starting RinkPass Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection with zap-backed SQL logging
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level,
		cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	seasonRepo := persistence.NewGormSeasonRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	registrationRepo := persistence.NewGormRegistrationRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	refundRepo := persistence.NewGormRefundRepository(db.DB)
	planRepo := persistence.NewGormPaymentPlanRepository(db.DB)
	invoiceStagingRepo := persistence.NewGormInvoiceStagingRepository(db.DB)
	paymentStagingRepo := persistence.NewGormPaymentStagingRepository(db.DB)
	syncRunRepo := persistence.NewGormSyncRunRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Inject outbox publisher into repositories that record domain events
	memberRepo.SetOutboxEventSaver(outboxPublisher)
	registrationRepo.SetOutboxEventSaver(outboxPublisher)
	paymentRepo.SetOutboxEventSaver(outboxPublisher)
	refundRepo.SetOutboxEventSaver(outboxPublisher)
	planRepo.SetOutboxEventSaver(outboxPublisher)
	invoiceStagingRepo.SetOutboxEventSaver(outboxPublisher)
	paymentStagingRepo.SetOutboxEventSaver(outboxPublisher)

	// External adapters
	stripeAdapter, err := payment.NewStripeAdapter(&payment.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe adapter", zap.Error(err))
	}

	xeroClient, err := xero.NewXeroClient(&xero.XeroConfig{
		ClientID:     cfg.Xero.ClientID,
		ClientSecret: cfg.Xero.ClientSecret,
		RefreshToken: cfg.Xero.RefreshToken,
		TenantID:     cfg.Xero.TenantID,
		BaseURL:      cfg.Xero.BaseURL,
		Timeout:      cfg.Xero.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize Xero client", zap.Error(err))
	}

	loopsClient, err := email.NewLoopsClient(&email.LoopsConfig{
		APIKey:  cfg.Loops.APIKey,
		BaseURL: cfg.Loops.BaseURL,
		Enabled: cfg.Loops.Enabled,
		Timeout: cfg.Loops.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize Loops client", zap.Error(err))
	}

	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	// Document storage is optional. Without it document endpoints report
	// storage unavailable but everything else works.
	var documents membershipapp.DocumentStore
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3DocumentStore(&cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize document storage", zap.Error(err))
		}
		documents = s3Store
		log.Info("Document storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Initialize application services
	memberService := membershipapp.NewMemberService(memberRepo, documents)
	seasonService := membershipapp.NewSeasonService(seasonRepo)
	productService := membershipapp.NewProductService(productRepo)
	registrationService := membershipapp.NewRegistrationService(registrationRepo, memberRepo, seasonRepo, productRepo)

	paymentService := billingapp.NewPaymentService(paymentRepo, registrationRepo, stripeAdapter)
	refundService := billingapp.NewRefundService(refundRepo, paymentRepo, stripeAdapter)
	planService := billingapp.NewPaymentPlanService(planRepo, paymentRepo, registrationRepo, productRepo, stripeAdapter, log)
	webhookService := billingapp.NewWebhookService(billingapp.WebhookServiceConfig{
		Verifier:         stripeAdapter,
		PaymentRepo:      paymentRepo,
		RefundRepo:       refundRepo,
		PlanRepo:         planRepo,
		RegistrationRepo: registrationRepo,
		Idempotency:      idempotencyStore,
		Logger:           log,
	})

	syncService := accountingapp.NewSyncService(invoiceStagingRepo, paymentStagingRepo, syncRunRepo, xeroClient, cfg.Sync.BatchSize, log)
	queueService := accountingapp.NewQueueService(invoiceStagingRepo, paymentStagingRepo, syncRunRepo)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize event bus and subscribe the integration handlers
	eventBus := event.NewInMemoryEventBus(log)

	stagingWriter := accountingapp.NewStagingWriter(invoiceStagingRepo, paymentStagingRepo,
		memberRepo, registrationRepo, cfg.Xero.BankAccountCode, log)
	eventBus.Subscribe(stagingWriter)

	emailHandler := notification.NewEmailNotificationHandler(loopsClient, memberRepo, notification.TemplateConfig{
		RegistrationPaid:   cfg.Loops.RegistrationPaidTemplateID,
		PaymentFailed:      cfg.Loops.PaymentFailedTemplateID,
		RefundIssued:       cfg.Loops.RefundIssuedTemplateID,
		SyncAlert:          cfg.Loops.SyncAlertTemplateID,
		SyncAlertRecipient: cfg.Loops.SyncAlertRecipient,
	}, log)
	eventBus.Subscribe(emailHandler)

	log.Info("Event handlers registered",
		zap.Strings("staging_writer_events", stagingWriter.EventTypes()),
		zap.Strings("email_handler_events", emailHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor drains the outbox_events table onto the event bus
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
		}
		outboxProcessorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			outboxProcessorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
	}

	// The nightly scheduler charges due installments then runs the batch
	// sync. It is constructed even when disabled so the cron endpoint can
	// trigger the same job from an external scheduler.
	dailySync := scheduler.NewDailySyncScheduler(scheduler.Config{
		Enabled:    cfg.Scheduler.Enabled,
		DailyAt:    cfg.Scheduler.DailyAt,
		JobTimeout: cfg.Scheduler.JobTimeout,
	}, syncService, planService, syncMetrics, log)
	if cfg.Scheduler.Enabled {
		if err := dailySync.Start(context.Background()); err != nil {
			log.Fatal("Failed to start daily sync scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := dailySync.Stop(stopCtx); err != nil {
				log.Error("Error stopping daily sync scheduler", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	memberHandler := handler.NewMemberHandler(memberService)
	seasonHandler := handler.NewSeasonHandler(seasonService)
	productHandler := handler.NewProductHandler(productService)
	registrationHandler := handler.NewRegistrationHandler(registrationService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	refundHandler := handler.NewRefundHandler(refundService)
	planHandler := handler.NewPaymentPlanHandler(planService)
	webhookHandler := handler.NewWebhookHandler(webhookService, syncMetrics, log)
	xeroHandler := handler.NewXeroHandler(syncService, queueService)
	cronHandler := handler.NewCronHandler(dailySync)
	systemHandler := handler.NewSystemHandler(db.DB)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - OTEL spans (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Stripe webhook endpoint. No JWT, verified by its signature.
	webhookGroup := engine.Group("/api/v1/webhooks")
	webhookGroup.POST("/stripe", webhookHandler.HandleStripe)

	// External cron endpoint, guarded by the shared cron secret
	cronGroup := engine.Group("/api/v1/cron")
	cronGroup.Use(middleware.CronSecret(cfg.Scheduler.CronSecret))
	cronGroup.POST("/daily-sync", cronHandler.RunDailySync)

	// Setup API routes. Admin-only operations carry the JWT middleware per
	// route, the member-facing registration flow stays public.
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	adminAuth := middleware.JWTAuthMiddleware(jwtService, log)

	// Membership domain (members, seasons, products, registrations)
	membershipRoutes := router.NewDomainGroup("membership", "")
	membershipRoutes.POST("/members", memberHandler.Create)
	membershipRoutes.GET("/members", memberHandler.List)
	membershipRoutes.GET("/members/:id", memberHandler.GetByID)
	membershipRoutes.PUT("/members/:id", memberHandler.Update)
	membershipRoutes.POST("/members/:id/deactivate", adminAuth, memberHandler.Deactivate)
	membershipRoutes.POST("/members/:id/reactivate", adminAuth, memberHandler.Reactivate)
	membershipRoutes.POST("/members/:id/archive", adminAuth, memberHandler.Archive)
	membershipRoutes.POST("/members/:id/document", memberHandler.UploadDocument)
	membershipRoutes.GET("/members/:id/document", memberHandler.DocumentURL)

	membershipRoutes.POST("/seasons", adminAuth, seasonHandler.Create)
	membershipRoutes.GET("/seasons", seasonHandler.List)
	membershipRoutes.GET("/seasons/:id", seasonHandler.GetByID)
	membershipRoutes.PUT("/seasons/:id", adminAuth, seasonHandler.Update)
	membershipRoutes.DELETE("/seasons/:id", adminAuth, seasonHandler.Delete)

	membershipRoutes.POST("/products", adminAuth, productHandler.Create)
	membershipRoutes.GET("/products", productHandler.List)
	membershipRoutes.GET("/products/:id", productHandler.GetByID)
	membershipRoutes.PUT("/products/:id", adminAuth, productHandler.Update)
	membershipRoutes.POST("/products/:id/activate", adminAuth, productHandler.Activate)
	membershipRoutes.POST("/products/:id/deactivate", adminAuth, productHandler.Deactivate)

	membershipRoutes.POST("/registrations", registrationHandler.Create)
	membershipRoutes.GET("/registrations", registrationHandler.List)
	membershipRoutes.GET("/registrations/:id", registrationHandler.GetByID)
	membershipRoutes.GET("/registrations/reference/:reference", registrationHandler.GetByReference)
	membershipRoutes.POST("/registrations/:id/submit", registrationHandler.Submit)
	membershipRoutes.POST("/registrations/:id/cancel", registrationHandler.Cancel)
	membershipRoutes.GET("/registrations/:id/payment-plan", planHandler.GetByRegistration)

	// Billing domain (payments, refunds, payment plans)
	billingRoutes := router.NewDomainGroup("billing", "")
	billingRoutes.POST("/payments/intent", paymentHandler.CreateIntent)
	billingRoutes.GET("/payments", adminAuth, paymentHandler.List)
	billingRoutes.GET("/payments/:id", adminAuth, paymentHandler.GetByID)
	billingRoutes.GET("/payments/:id/refunds", adminAuth, refundHandler.ListByPayment)
	billingRoutes.POST("/refunds", adminAuth, refundHandler.Create)
	billingRoutes.GET("/refunds/:id", adminAuth, refundHandler.GetByID)
	billingRoutes.POST("/payment-plans", planHandler.Create)
	billingRoutes.GET("/payment-plans/:id", planHandler.GetByID)
	billingRoutes.POST("/payment-plans/:id/cancel", adminAuth, planHandler.Cancel)

	// Admin domain (Xero staging queues and sync)
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(adminAuth)
	adminRoutes.POST("/xero/sync", xeroHandler.TriggerSync)
	adminRoutes.GET("/xero/ping", xeroHandler.Ping)
	adminRoutes.GET("/xero/invoices", xeroHandler.ListInvoiceRows)
	adminRoutes.GET("/xero/payments", xeroHandler.ListPaymentRows)
	adminRoutes.GET("/xero/counts", xeroHandler.Counts)
	adminRoutes.GET("/xero/runs", xeroHandler.RecentRuns)
	adminRoutes.POST("/xero/invoices/:id/retry", xeroHandler.RetryInvoiceRow)
	adminRoutes.POST("/xero/payments/:id/retry", xeroHandler.RetryPaymentRow)
	adminRoutes.POST("/xero/invoices/:id/ignore", xeroHandler.IgnoreInvoiceRow)
	adminRoutes.POST("/xero/payments/:id/ignore", xeroHandler.IgnorePaymentRow)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(membershipRoutes).
		Register(billingRoutes).
		Register(adminRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
