package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels used by the ledger service.
const (
	ChannelNotifications    = "ledger.notifications"
	ChannelTransferRequests = "ledger.transfers.requests"
	ChannelTransferResults  = "ledger.transfers.results"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
