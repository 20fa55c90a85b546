package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/VadymFES/dekop-compliance/internal/config"
	"github.com/VadymFES/dekop-compliance/internal/handler"
	"github.com/VadymFES/dekop-compliance/internal/handler/middleware"
	"github.com/VadymFES/dekop-compliance/internal/repository/postgres"
	"github.com/VadymFES/dekop-compliance/internal/service"
	"github.com/VadymFES/dekop-compliance/pkg/email"
	"github.com/VadymFES/dekop-compliance/pkg/revocation"
	"github.com/VadymFES/dekop-compliance/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}()
	log.Println("✓ Database connection established")

	// Initialize Redis client
	redisClient, err := initRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}()
	log.Println("✓ Redis connection established")

	// Initialize validator
	validate := validator.New()

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepository(db)
	csrfRepo := postgres.NewCSRFTokenRepository(db)
	consentRepo := postgres.NewConsentRepository(db)
	policyRepo := postgres.NewPolicyAcceptanceRepository(db)
	deletionRepo := postgres.NewDeletionRequestRepository(db)
	auditRepo := postgres.NewAuditLogRepository(db)
	storeRepo := postgres.NewStoreDataRepository(db)

	// Initialize email service
	var mailer email.EmailService
	if cfg.Email.Enabled {
		mailer, err = email.NewResendEmailService(&email.EmailConfig{
			APIKey:          cfg.Email.APIKey,
			FromEmail:       cfg.Email.FromEmail,
			FromName:        cfg.Email.FromName,
			VerificationURL: cfg.Email.VerificationURL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize email service: %v", err)
			log.Println("Email functionality will be disabled")
			mailer = email.NewNoopEmailService()
		} else {
			log.Printf("✓ Email service initialized (Resend) - %s", cfg.Email.FromEmail)
		}
	} else {
		log.Println("ℹ Email service disabled (set EMAIL_ENABLED=true to enable)")
		mailer = email.NewNoopEmailService()
	}

	// Initialize services
	revocationCache := revocation.NewCache(redisClient)
	auditService := service.NewAuditService(auditRepo)
	sessionService := service.NewSessionService(sessionRepo, csrfRepo, revocationCache)
	csrfService := service.NewCSRFService(csrfRepo)
	consentService := service.NewConsentService(consentRepo, auditService)
	policyService := service.NewPolicyService(policyRepo, auditService)
	exportService := service.NewExportService(storeRepo, consentRepo, policyRepo, sessionRepo, auditService)
	deletionService := service.NewDeletionService(
		storeRepo, sessionRepo, csrfRepo, consentRepo, deletionRepo,
		auditService, mailer, cfg.Security.GracePeriodDays,
	)

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(sessionService, csrfService, cfg, validate)
	consentHandler := handler.NewConsentHandler(consentService, policyService, cfg, validate)
	exportHandler := handler.NewExportHandler(exportService)
	deletionHandler := handler.NewDeletionHandler(deletionService, validate)
	auditHandler := handler.NewAuditHandler(auditService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Dekop Compliance Service v1.0",
		ErrorHandler: customErrorHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	// Setup global middlewares
	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CORSMiddleware(cfg))

	// Setup routes
	handler.SetupRoutes(
		app,
		sessionHandler,
		consentHandler,
		exportHandler,
		deletionHandler,
		auditHandler,
		healthHandler,
		middleware.SessionMiddleware(sessionService),
		middleware.CSRFMiddleware(csrfService),
	)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Background maintenance: expired-session GC and due deletion sweep
	go maintenanceLoop(ctx, cfg.Security.MaintenanceInterval, sessionService, deletionService)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("🚀 Server starting on http://localhost%s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		if err := app.Listen(addr); err != nil {
			log.Printf("❌ Server failed to start: %v", err)
			stop()
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Println("⏳ Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✓ Server stopped")
}

// maintenanceLoop runs the best-effort background tasks until ctx is done.
func maintenanceLoop(ctx context.Context, interval time.Duration, sessions *service.SessionService, deletions *service.DeletionService) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			if removed := sessions.CleanupExpired(runCtx); removed > 0 {
				log.Printf("[MAINTENANCE] Removed %d expired sessions", removed)
			}
			if processed := deletions.ProcessDueRequests(runCtx); processed > 0 {
				log.Printf("[MAINTENANCE] Executed %d scheduled deletions", processed)
			}
			cancel()
		}
	}
}

// initDB initializes PostgreSQL database connection with retry logic
func initDB(cfg *config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()

	var db *sqlx.DB
	var err error

	maxRetries := 5
	retryInterval := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			break
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Error closing database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initRedis initializes Redis client and verifies connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Printf("Error closing Redis after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// customErrorHandler handles Fiber errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Log error for debugging (sanitized)
	log.Printf("Error handling request [%s %s]: %v", c.Method(), c.Path(), err)

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
