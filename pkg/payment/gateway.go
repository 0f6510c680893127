package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/medichain/ledger-api/pkg/messaging"
)

// TransferRequest asks the external gateway to move the purchase total to
// the service owner. The ref is unique per order so the gateway can
// deduplicate redispatches.
type TransferRequest struct {
	OrderID uint64 `json:"order_id"`
	Ref     string `json:"ref"`
	To      string `json:"to"`
	Amount  uint64 `json:"amount"`
}

// Result is the callback-style continuation for a dispatched transfer:
// the gateway reports success or failure strictly after the initiating
// operation's local writes were committed.
type Result struct {
	OrderID uint64 `json:"order_id"`
	Ref     string `json:"ref"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Gateway is the required external collaborator interface for value
// transfers.
type Gateway interface {
	Dispatch(ctx context.Context, req TransferRequest) error
}

// BrokerGateway hands transfer requests to the external gateway over the
// message broker.
type BrokerGateway struct {
	broker messaging.Broker
}

func NewBrokerGateway(broker messaging.Broker) *BrokerGateway {
	return &BrokerGateway{broker: broker}
}

func (g *BrokerGateway) Dispatch(ctx context.Context, req TransferRequest) error {
	if err := g.broker.Publish(ctx, messaging.ChannelTransferRequests, req); err != nil {
		return fmt.Errorf("failed to dispatch transfer %s: %w", req.Ref, err)
	}
	return nil
}

// SubscribeRequests consumes dispatched transfer requests from the broker
// and decodes them for the transfer worker.
func SubscribeRequests(ctx context.Context, broker messaging.Broker) (<-chan TransferRequest, error) {
	raw, err := broker.Subscribe(ctx, messaging.ChannelTransferRequests)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to transfer requests: %w", err)
	}

	requests := make(chan TransferRequest, 100)
	go func() {
		defer close(requests)
		for msg := range raw {
			var req TransferRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				continue
			}
			requests <- req
		}
	}()
	return requests, nil
}

// SubscribeResults consumes transfer results from the broker and decodes
// them for the settlement processor.
func SubscribeResults(ctx context.Context, broker messaging.Broker) (<-chan Result, error) {
	raw, err := broker.Subscribe(ctx, messaging.ChannelTransferResults)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to transfer results: %w", err)
	}

	results := make(chan Result, 100)
	go func() {
		defer close(results)
		for msg := range raw {
			var res Result
			if err := json.Unmarshal(msg, &res); err != nil {
				continue
			}
			results <- res
		}
	}()
	return results, nil
}
