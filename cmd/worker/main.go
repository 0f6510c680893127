package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/medichain/ledger-api/pkg/circuitbreaker"
	"github.com/medichain/ledger-api/pkg/logger"
	redisbroker "github.com/medichain/ledger-api/pkg/messaging/redis"
	"github.com/medichain/ledger-api/pkg/metrics"
	"github.com/medichain/ledger-api/pkg/payment"
	"github.com/medichain/ledger-api/pkg/worker"
)

// WorkerConfig is read from the environment so the transfer worker can be
// deployed without a config file. The worker talks only to the broker and
// the payment service; the ledger store stays exclusive to the API process.
type WorkerConfig struct {
	RedisURL           string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	PaymentURL         string        `envconfig:"PAYMENT_URL" required:"true"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	BreakerMaxFailures int           `envconfig:"BREAKER_MAX_FAILURES" default:"5"`
	BreakerTimeout     time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s"`
	HealthPort         string        `envconfig:"HEALTH_PORT" default:"8081"`
}

func setupHealthCheck(appLogger *logger.Logger, port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			appLogger.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	var cfg WorkerConfig
	if err := envconfig.Process("LEDGER_WORKER", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	appLogger := logger.NewLogger(nil)

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:        cfg.RedisURL,
		MaxRetries: 3,
		PoolSize:   5,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("ledger", "worker")
	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "payment-service",
		MaxFailures: cfg.BreakerMaxFailures,
		Timeout:     cfg.BreakerTimeout,
	})
	executor := payment.NewHTTPExecutor(cfg.PaymentURL, cfg.RequestTimeout)
	bridge := worker.NewTransferBridge(executor, broker, breaker, appLogger, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	requests, err := payment.SubscribeRequests(ctx, broker)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to transfer requests")
	}

	setupHealthCheck(appLogger, cfg.HealthPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down transfer worker")
		cancel()
	}()

	appLogger.Info("transfer worker started", "payment_url", cfg.PaymentURL)
	bridge.Run(ctx, requests)
}
