package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medichain/ledger-api/internal/access"
	"github.com/medichain/ledger-api/internal/config"
	adminHandler "github.com/medichain/ledger-api/internal/handler/admin"
	appointmentHandler "github.com/medichain/ledger-api/internal/handler/appointment"
	authHandler "github.com/medichain/ledger-api/internal/handler/auth"
	doctorHandler "github.com/medichain/ledger-api/internal/handler/doctor"
	medicineHandler "github.com/medichain/ledger-api/internal/handler/medicine"
	notificationHandler "github.com/medichain/ledger-api/internal/handler/notification"
	orderHandler "github.com/medichain/ledger-api/internal/handler/order"
	patientHandler "github.com/medichain/ledger-api/internal/handler/patient"
	prescriptionHandler "github.com/medichain/ledger-api/internal/handler/prescription"
	"github.com/medichain/ledger-api/internal/kvstore"
	"github.com/medichain/ledger-api/internal/ledger"
	"github.com/medichain/ledger-api/internal/middleware"
	"github.com/medichain/ledger-api/internal/router"
	adminService "github.com/medichain/ledger-api/internal/service/admin"
	appointmentService "github.com/medichain/ledger-api/internal/service/appointment"
	authService "github.com/medichain/ledger-api/internal/service/auth"
	doctorService "github.com/medichain/ledger-api/internal/service/doctor"
	inventoryService "github.com/medichain/ledger-api/internal/service/inventory"
	notificationService "github.com/medichain/ledger-api/internal/service/notification"
	patientService "github.com/medichain/ledger-api/internal/service/patient"
	prescriptionService "github.com/medichain/ledger-api/internal/service/prescription"
	jwtauth "github.com/medichain/ledger-api/pkg/auth"
	"github.com/medichain/ledger-api/pkg/logger"
	redisbroker "github.com/medichain/ledger-api/pkg/messaging/redis"
	"github.com/medichain/ledger-api/pkg/metrics"
	"github.com/medichain/ledger-api/pkg/payment"
	"github.com/medichain/ledger-api/pkg/security"
	"github.com/medichain/ledger-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	store, err := kvstore.OpenLevelDB(cfg.Ledger.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open ledger store")
	}
	defer store.Close()

	lgr, err := ledger.Open(store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open ledger")
	}

	hasher := security.NewBcryptHasher(0)
	if err := bootstrap(lgr, cfg.Bootstrap, hasher); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap ledger")
	}

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("ledger", "api")
	lgr.Instrument(m)
	checker := access.NewChecker(lgr)
	jwtSvc := jwtauth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	notificationSvc := notificationService.NewService(lgr, broker, m, appLogger.Zerolog())
	patientSvc := patientService.NewService(lgr, checker, notificationSvc, hasher, appLogger.Zerolog())
	doctorSvc := doctorService.NewService(lgr, checker, notificationSvc, hasher, appLogger.Zerolog())
	inventorySvc := inventoryService.NewService(lgr, checker, notificationSvc, m, appLogger.Zerolog())
	appointmentSvc := appointmentService.NewService(lgr, checker, notificationSvc, appLogger.Zerolog())
	prescriptionSvc := prescriptionService.NewService(lgr, checker, notificationSvc, appLogger.Zerolog())
	adminSvc := adminService.NewService(lgr, checker, appLogger.Zerolog())
	authSvc := authService.NewService(lgr, jwtSvc, hasher, appLogger.Zerolog())

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			CacheTTL:       cfg.Server.CacheTTL(),
			AllowOrigins:   cfg.Server.AllowOrigins,
			MetricsPrefix:  "ledger_api",
		},
		authHandler.NewHandler(authSvc),
		patientHandler.NewHandler(patientSvc, appointmentSvc, prescriptionSvc, inventorySvc),
		doctorHandler.NewHandler(doctorSvc, appointmentSvc, prescriptionSvc),
		medicineHandler.NewHandler(inventorySvc),
		orderHandler.NewHandler(inventorySvc),
		appointmentHandler.NewHandler(appointmentSvc),
		prescriptionHandler.NewHandler(prescriptionSvc),
		notificationHandler.NewHandler(notificationSvc),
		adminHandler.NewHandler(adminSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Settlement runs in-process; the ledger store admits a single opener.
	// cmd/worker executes the dispatched transfers on the other side of the
	// broker.
	results, err := payment.SubscribeResults(ctx, broker)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to transfer results")
	}
	processor := worker.NewSettlementProcessor(
		inventorySvc,
		payment.NewBrokerGateway(broker),
		ownerSnapshot(lgr),
		worker.SettlementConfig{
			PollInterval: cfg.Settlement.PollInterval(),
			RetryDelay:   cfg.Settlement.RetryDelay(),
		},
		appLogger,
		m,
	)
	go processor.Start(ctx, results)

	go func() {
		appLogger.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}

// ownerSnapshot reads the transfer recipient under the aggregate lock; the
// owner identity can change at runtime via the admin surface.
func ownerSnapshot(lgr *ledger.Ledger) func() string {
	return func() string {
		var owner string
		_ = lgr.View(func() error {
			owner = lgr.Owner()
			return nil
		})
		return owner
	}
}

// bootstrap seeds the ledger owner, initial registered users and fees on
// first start. A ledger that is already initialized is left untouched.
func bootstrap(lgr *ledger.Ledger, cfg config.BootstrapConfig, hasher security.PasswordHasher) error {
	if lgr.Initialized() {
		return nil
	}
	if cfg.OwnerAccount == "" || cfg.OwnerPassword == "" {
		return fmt.Errorf("bootstrap owner account and password are required on first start")
	}

	hash, err := hasher.Hash(cfg.OwnerPassword)
	if err != nil {
		return fmt.Errorf("failed to hash owner password: %w", err)
	}
	if err := lgr.Init(cfg.OwnerAccount, cfg.Users, hash); err != nil {
		return err
	}

	return lgr.Update(func(tx *ledger.Tx) error {
		lgr.SetRegistrationFee(tx, cfg.RegistrationFee)
		lgr.SetAppointmentFee(tx, cfg.AppointmentFee)
		return nil
	})
}
