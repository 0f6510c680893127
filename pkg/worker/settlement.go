package worker

import (
	"context"
	"time"

	"github.com/medichain/ledger-api/internal/model"
	"github.com/medichain/ledger-api/pkg/logger"
	"github.com/medichain/ledger-api/pkg/metrics"
	"github.com/medichain/ledger-api/pkg/payment"
)

// OrderSettler is the slice of the inventory service the processor needs.
type OrderSettler interface {
	PendingOrders() ([]*model.Order, error)
	MarkDispatched(orderID uint64) (*model.Order, error)
	OnTransferResult(orderID uint64, success bool) error
}

type SettlementConfig struct {
	PollInterval time.Duration
	RetryDelay   time.Duration
}

// SettlementProcessor drives the second phase of every purchase: it
// dispatches the external value transfer for each pending order and applies
// the transfer result callback when the gateway reports back. Orders whose
// dispatch got lost are redispatched after RetryDelay; the transfer ref
// lets the gateway deduplicate.
type SettlementProcessor struct {
	settler   OrderSettler
	gateway   payment.Gateway
	recipient func() string
	config    SettlementConfig
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewSettlementProcessor(
	settler OrderSettler,
	gateway payment.Gateway,
	recipient func() string,
	config SettlementConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *SettlementProcessor {
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}
	return &SettlementProcessor{
		settler:   settler,
		gateway:   gateway,
		recipient: recipient,
		config:    config,
		logger:    log,
		metrics:   m,
	}
}

// Start runs the dispatch loop and the result consumer until ctx ends.
func (p *SettlementProcessor) Start(ctx context.Context, results <-chan payment.Result) {
	go p.consumeResults(ctx, results)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("settlement processor stopping")
			return
		case <-ticker.C:
			if err := p.dispatchPending(ctx); err != nil {
				p.logger.Error(err, "dispatch cycle failed")
			}
		}
	}
}

func (p *SettlementProcessor) dispatchPending(ctx context.Context) error {
	orders, err := p.settler.PendingOrders()
	if err != nil {
		return err
	}

	now := time.Now()
	for _, order := range orders {
		if order.DispatchedAt != nil && now.Sub(*order.DispatchedAt) < p.config.RetryDelay {
			continue
		}

		marked, err := p.settler.MarkDispatched(order.ID)
		if err != nil {
			p.logger.Error(err, "failed to mark order dispatched", "order_id", order.ID)
			continue
		}
		order = marked

		req := payment.TransferRequest{
			OrderID: order.ID,
			Ref:     order.TransferRef,
			To:      p.recipient(),
			Amount:  order.Total,
		}
		if err := p.gateway.Dispatch(ctx, req); err != nil {
			// The next cycle redispatches after RetryDelay.
			p.logger.Error(err, "transfer dispatch failed", "order_id", order.ID)
			continue
		}
		p.metrics.TransfersDispatched.Inc()
		p.logger.Debug("transfer dispatched", "order_id", order.ID, "amount", order.Total)
	}
	return nil
}

func (p *SettlementProcessor) consumeResults(ctx context.Context, results <-chan payment.Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-results:
			if !ok {
				return
			}
			if err := p.settler.OnTransferResult(res.OrderID, res.Success); err != nil {
				p.logger.Error(err, "failed to apply transfer result", "order_id", res.OrderID)
			}
		}
	}
}
