package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appapartment "github.com/tenancy/backend/internal/application/apartment"
	appbilling "github.com/tenancy/backend/internal/application/billing"
	appchat "github.com/tenancy/backend/internal/application/chat"
	appcomplaint "github.com/tenancy/backend/internal/application/complaint"
	appidentity "github.com/tenancy/backend/internal/application/identity"
	"github.com/tenancy/backend/internal/application/notification"
	apprules "github.com/tenancy/backend/internal/application/rules"
	"github.com/tenancy/backend/internal/infrastructure/auth"
	"github.com/tenancy/backend/internal/infrastructure/cache"
	"github.com/tenancy/backend/internal/infrastructure/config"
	"github.com/tenancy/backend/internal/infrastructure/event"
	"github.com/tenancy/backend/internal/infrastructure/logger"
	"github.com/tenancy/backend/internal/infrastructure/mail"
	"github.com/tenancy/backend/internal/infrastructure/persistence"
	"github.com/tenancy/backend/internal/infrastructure/printing"
	"github.com/tenancy/backend/internal/infrastructure/realtime"
	"github.com/tenancy/backend/internal/infrastructure/scheduler"
	"github.com/tenancy/backend/internal/infrastructure/storage"
	"github.com/tenancy/backend/internal/infrastructure/telemetry"
	"github.com/tenancy/backend/internal/interfaces/http/handler"
	"github.com/tenancy/backend/internal/interfaces/http/middleware"
	"github.com/tenancy/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

const monthlyBillsJob = "monthly-bills"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("Starting tenancy backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Root context for background workers
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	domainMetrics, err := telemetry.NewDomainMetrics(mp.Meter("tenancy.domain"))
	if err != nil {
		log.Fatal("Failed to create domain metrics", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.App.Env == "development"
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	apartmentRepo := persistence.NewGormApartmentRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	complaintRepo := persistence.NewGormComplaintRepository(db.DB)
	rulesRepo := persistence.NewGormRulesRepository(db.DB)
	chatRepo := persistence.NewGormChatRepository(db.DB)
	registrar := persistence.NewGormRegistrar(db.DB)

	// Token blacklist and payment idempotency: Redis when configured,
	// otherwise process-local
	var (
		blacklist   auth.TokenBlacklist
		idempotency middleware.IdempotencyStore
	)
	if cfg.Redis.Enabled() {
		redisClient, err := auth.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		blacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
		idempotency = cache.NewRedisIdempotencyStoreWithClient(redisClient, "")
		log.Info("Token blacklist backed by Redis", zap.String("host", cfg.Redis.Host))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		local := cache.NewInMemoryIdempotencyStore()
		defer func() { _ = local.Close() }()
		idempotency = local
		log.Warn("Redis not configured, using in-memory token blacklist and idempotency store")
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	// Mail delivery
	sender, err := mail.NewSender(cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to create mail sender", zap.Error(err))
	}
	dispatcher := mail.NewDispatcher(sender, mail.DispatcherConfig{
		QueueSize:    cfg.Mail.QueueSize,
		MaxRetries:   cfg.Mail.MaxRetries,
		RetryBackoff: cfg.Mail.RetryBackoff,
		SendTimeout:  cfg.Mail.SendTimeout,
	}, log)
	dispatcher.Start()

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	mailHandler := notification.NewMailHandler(dispatcher, userRepo, cfg.Billing.Currency, log)
	eventBus.Subscribe(mailHandler, mailHandler.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Documents
	renderer := printing.NewChromedpRenderer(printing.ChromedpConfig{
		ExecPath:       cfg.Printing.ChromePath,
		DefaultTimeout: cfg.Printing.Timeout,
		MaxParallel:    cfg.Printing.MaxParallel,
		NoSandbox:      cfg.App.Env != "development",
		Logger:         log,
	})
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Failed to close PDF renderer", zap.Error(err))
		}
	}()
	var archive appbilling.Archiver
	if cfg.Storage.Bucket != "" {
		objects, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create object storage", zap.Error(err))
		}
		archive = storage.NewDocumentArchive(objects, "")
		log.Info("Archiving documents to S3", zap.String("bucket", objects.Bucket()))
	}

	// Application services
	authService := appidentity.NewAuthService(userRepo, apartmentRepo, registrar, jwtService, blacklist, log)
	userService := appidentity.NewUserService(userRepo, log)
	apartmentService := appapartment.NewService(apartmentRepo, userRepo, log)
	billService := appbilling.NewService(billRepo, userRepo, eventBus, domainMetrics, appbilling.Config{
		DueDay:      cfg.Billing.DueDay,
		MaxAttempts: cfg.Billing.PaymentRetries,
	}, log)
	documentService := appbilling.NewDocumentService(billRepo,
		printing.NewTemplateEngine(printing.WithCurrency(cfg.Billing.Currency)), renderer, archive, log)
	complaintService := appcomplaint.NewService(complaintRepo, userRepo, eventBus, log)
	rulesService := apprules.NewService(rulesRepo, eventBus, log)
	chatService := appchat.NewService(chatRepo, userRepo, nil, domainMetrics, log)

	// Realtime hub; the chat service pushes stored messages through it
	hub := realtime.NewHub(log, realtime.WithObserver(domainMetrics))
	chatService.SetNotifier(hub)
	go hub.Run(ctx)

	// Scheduled monthly billing
	jobs := scheduler.New(log)
	if cfg.Billing.AutoGenerate {
		err := jobs.AddJob(monthlyBillsJob, cfg.Billing.AutoGenerateCron, cfg.Billing.AutoGenerateJobTTL,
			func(ctx context.Context) error {
				summary, err := billService.GenerateForAllLandlords(ctx, time.Now())
				if err != nil {
					return err
				}
				log.Info("Monthly bills generated",
					zap.Int("landlords", summary.Landlords),
					zap.Int("created", summary.Created),
					zap.Int("skipped", summary.Skipped),
					zap.Int("failed", summary.Failed),
				)
				return nil
			})
		if err != nil {
			log.Fatal("Failed to schedule monthly billing", zap.Error(err))
		}
	}
	jobs.Start(ctx)

	// Credentials throttle
	credentialsLimiter := middleware.NewRateLimiter(10, time.Minute)
	go credentialsLimiter.Run(ctx)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	} else if err := engine.SetTrustedProxies(nil); err != nil {
		log.Fatal("Failed to disable trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(mp.Meter("http.server")))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	authenticated := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		Actors:         userService,
		TokenBlacklist: blacklist,
		Logger:         log,
	}
	socketAuthenticated := authenticated
	socketAuthenticated.AllowQueryToken = true

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Apartment: handler.NewApartmentHandler(apartmentService),
		Bill:      handler.NewBillHandler(billService, documentService),
		Complaint: handler.NewComplaintHandler(complaintService),
		Rules:     handler.NewRulesHandler(rulesService),
		Chat:      handler.NewChatHandler(chatService),
		WebSocket: handler.NewWebSocketHandler(hub, chatService, userService,
			realtime.NewUpgrader(cfg.Realtime.AllowedOrigins), realtime.Config{
				WriteWait:      cfg.Realtime.WriteWait,
				PongWait:       cfg.Realtime.PongWait,
				PingInterval:   cfg.Realtime.PingInterval,
				MaxMessageSize: cfg.Realtime.MaxMessageSize,
				SendBuffer:     cfg.Realtime.SendBuffer,
				SendTimeout:    realtime.DefaultConfig().SendTimeout,
			}),
		System: handler.NewSystemHandler(db, version),
	}
	guards := router.Guards{
		Authenticated: []gin.HandlerFunc{
			middleware.JWTAuthMiddlewareWithConfig(authenticated),
			middleware.TracingAttributeInjector(),
		},
		SocketAuthenticated: []gin.HandlerFunc{
			middleware.JWTAuthMiddlewareWithConfig(socketAuthenticated),
			middleware.TracingAttributeInjector(),
		},
		Landlord:    middleware.RequireLandlord(),
		Tenant:      middleware.RequireTenant(),
		Credentials: middleware.RateLimit(credentialsLimiter),
		Idempotent:  middleware.Idempotency(idempotency, cfg.Billing.IdempotencyTTL, log),
	}

	// Health check endpoint (outside API versioning)
	router.RegisterHealth(engine, handlers)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, handlers, guards)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	// Websocket connections are hijacked and not closed by srv.Shutdown
	hub.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Warn("Mail queue not drained", zap.Error(err), zap.Int("pending", dispatcher.Pending()))
	}
	stop()
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
