// Package main provides the main entry point for the rental back-office API
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/handlers"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/middleware"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/router"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/scheduler"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/services"
	businessflow "github.com/Nastu94/gestionale-subnoleggio-sub002/business_flow"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/config"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/models"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting subnoleggio back-office application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// runAutoMigrate applies the schema when DB_AUTO_MIGRATE is set. Production
// deployments run migrations out of band and leave this off.
func runAutoMigrate(db *gorm.DB) error {
	if os.Getenv("DB_AUTO_MIGRATE") != "true" {
		return nil
	}
	log.Println("Running schema auto-migration...")
	return db.AutoMigrate(
		&models.Organization{},
		&models.Vehicle{},
		&models.VehicleAssignment{},
		&models.Pricelist{},
		&models.Season{},
		&models.Tier{},
		&models.Rental{},
		&models.SequenceLedgerEntry{},
		&models.Checklist{},
		&models.RentalCharge{},
		&models.FeeRate{},
	)
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := runAutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.DefaultTTL)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	orgRepo := repository.NewOrganizationRepository(db)
	rentalRepo := repository.NewRentalRepository(db)
	ledgerRepo := repository.NewSequenceLedgerRepository(db)
	pricelistRepo := repository.NewPricelistRepository(db)
	feeRateRepo := repository.NewFeeRateRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	chargeRepo := repository.NewRentalChargeRepository(db)
	assignmentRepo := repository.NewVehicleAssignmentRepository(db)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	numberFlow := businessflow.NewRentalNumberFlow(orgRepo, ledgerRepo, db)
	rentalFlow := businessflow.NewRentalFlow(rentalRepo, numberFlow)
	backfillFlow := businessflow.NewNumberBackfillFlow(orgRepo, rentalRepo, ledgerRepo, db, log.Default())
	pricingFlow := businessflow.NewPricingFlow(pricelistRepo)
	closeFlow := businessflow.NewCloseRentalFlow(rentalRepo, checklistRepo, db)
	feeFlow := businessflow.NewAdminFeeFlow(feeRateRepo, rentalRepo, chargeRepo, rc, &cfg.Cache)

	// Initialize handlers
	rentalHandler := handlers.NewRentalHandler(rentalFlow, closeFlow, backfillFlow)
	quoteHandler := handlers.NewQuoteHandler(pricingFlow)
	feeHandler := handlers.NewFeeHandler(feeFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		rentalHandler,
		quoteHandler,
		feeHandler,
		authMiddleware,
		cfg.Security.AllowedOrigins,
	)

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewAssignmentScheduler(assignmentRepo, db, cfg.Scheduler)
		stopScheduler, err := sched.Start(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to start assignment scheduler: %w", err)
		}
		stopFuncs = append(stopFuncs, stopScheduler)
	}

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
