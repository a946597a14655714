package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"park/internal/app"
	"park/internal/config"
	"park/internal/handler"
	"park/internal/logging"
	internalRedis "park/internal/redis"
	"park/internal/repository/postgres"
	"park/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()
	log := logging.New(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database driver can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	server := wireServer(db, redisClient, nrApp, cfg, log)

	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, log *logrus.Logger) *http.Server {
	// Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)

	// Repositories.
	customerRepo := postgres.NewCustomerRepository(db)
	employeeRepo := postgres.NewEmployeeRepository(db)
	vendorRepo := postgres.NewVendorRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	sessionTx := postgres.NewSessionUnitOfWork(db)
	sampleRepo := postgres.NewSampleRepository(db)

	// Services.
	gateway := service.NewStripeGateway(cfg.Payment.StripeAPIKey)
	densityService := service.NewDensityService(sampleRepo, cfg.Density.Window)
	discoveryService := service.NewDiscoveryService(vendorRepo, densityService, log)
	vendorService := service.NewVendorService(vendorRepo, employeeRepo, densityService, log)
	customerService := service.NewCustomerService(customerRepo)
	verificationService := service.NewVerificationService(customerRepo, employeeRepo)
	sessionService := service.NewSessionService(
		sessionRepo, sessionTx, customerRepo, vendorRepo, employeeRepo,
		sampleRepo, lockStore, gateway, cfg.Payment.Currency, log,
	)

	// Handlers.
	sessionHandler := handler.NewSessionHandler(sessionService)
	vendorHandler := handler.NewVendorHandler(vendorService, discoveryService)
	customerHandler := handler.NewCustomerHandler(customerService)
	employeeHandler := handler.NewEmployeeHandler(vendorService)
	verificationHandler := handler.NewVerificationHandler(verificationService)

	router := app.NewRouter(app.RouterDeps{
		SessionHandler:      sessionHandler,
		VendorHandler:       vendorHandler,
		CustomerHandler:     customerHandler,
		EmployeeHandler:     employeeHandler,
		VerificationHandler: verificationHandler,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
		HTTP:                cfg.HTTP,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
