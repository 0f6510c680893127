package worker

import (
	"context"

	"github.com/medichain/ledger-api/pkg/circuitbreaker"
	"github.com/medichain/ledger-api/pkg/logger"
	"github.com/medichain/ledger-api/pkg/messaging"
	"github.com/medichain/ledger-api/pkg/metrics"
	"github.com/medichain/ledger-api/pkg/payment"
)

// TransferBridge executes dispatched transfer requests against the payment
// service and publishes the outcome back over the broker. It holds no ledger
// state, so it can run beside the API process; the transfer ref keeps
// redispatched requests idempotent on the payment side.
type TransferBridge struct {
	executor payment.Executor
	broker   messaging.Broker
	breaker  *circuitbreaker.CircuitBreaker
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewTransferBridge(
	executor payment.Executor,
	broker messaging.Broker,
	breaker *circuitbreaker.CircuitBreaker,
	log *logger.Logger,
	m *metrics.Metrics,
) *TransferBridge {
	return &TransferBridge{
		executor: executor,
		broker:   broker,
		breaker:  breaker,
		logger:   log,
		metrics:  m,
	}
}

// Run consumes requests until ctx ends or the channel closes. A failed
// execution publishes nothing; the dispatcher redispatches the order after
// its retry delay.
func (b *TransferBridge) Run(ctx context.Context, requests <-chan payment.TransferRequest) {
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("transfer bridge stopping")
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			b.handle(ctx, req)
		}
	}
}

func (b *TransferBridge) handle(ctx context.Context, req payment.TransferRequest) {
	var res payment.Result
	err := b.breaker.Execute(func() error {
		var execErr error
		res, execErr = b.executor.Execute(ctx, req)
		return execErr
	})
	if err != nil {
		b.metrics.TransfersExecuted.WithLabelValues("error").Inc()
		b.logger.Error(err, "transfer execution failed", "ref", req.Ref)
		return
	}

	if err := b.broker.Publish(ctx, messaging.ChannelTransferResults, res); err != nil {
		b.metrics.TransfersExecuted.WithLabelValues("error").Inc()
		b.logger.Error(err, "failed to publish transfer result", "ref", req.Ref)
		return
	}

	outcome := "declined"
	if res.Success {
		outcome = "success"
	}
	b.metrics.TransfersExecuted.WithLabelValues(outcome).Inc()
	b.logger.Debug("transfer executed", "ref", req.Ref, "success", res.Success)
}
