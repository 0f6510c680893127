package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/medichain/ledger-api/internal/ledger"
	"github.com/medichain/ledger-api/internal/model"
	"github.com/medichain/ledger-api/pkg/errors"
	"github.com/medichain/ledger-api/pkg/messaging"
	"github.com/medichain/ledger-api/pkg/metrics"
)

// Service is the append-only notification bus. Entries are written inside
// the caller's ledger transaction so the fan-out commits atomically with
// the operation that caused it; the broker publish is a post-commit,
// best-effort side channel.
type Service struct {
	ledger  *ledger.Ledger
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

func NewService(l *ledger.Ledger, broker messaging.Broker, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	return &Service{ledger: l, broker: broker, metrics: m, logger: logger}
}

// Notify appends a notification within tx and schedules the broker publish
// for after commit. It fails only on malformed input.
func (s *Service) Notify(tx *ledger.Tx, recipient, message string, category model.NotificationCategory) error {
	if recipient == "" {
		return errors.InvalidArgument("notification recipient is required", nil)
	}

	n := &model.Notification{
		Recipient: recipient,
		Message:   message,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.ledger.Notifications.Insert(tx, n); err != nil {
		return err
	}

	tx.OnCommit(func() {
		s.metrics.NotificationsEmitted.Inc()
		if s.broker == nil {
			return
		}
		if err := s.broker.Publish(context.Background(), messaging.ChannelNotifications, n); err != nil {
			s.metrics.NotificationPublishes.WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Str("recipient", recipient).Msg("notification publish failed")
			return
		}
		s.metrics.NotificationPublishes.WithLabelValues("ok").Inc()
	})
	return nil
}

// ListFor returns all notifications for a recipient in emission order.
func (s *Service) ListFor(recipient string) ([]*model.Notification, error) {
	var out []*model.Notification
	err := s.ledger.View(func() error {
		var ferr error
		out, ferr = s.ledger.Notifications.Filter(func(n *model.Notification) bool {
			return n.Recipient == recipient
		})
		return ferr
	})
	return out, err
}

// List returns the full notification log in emission order.
func (s *Service) List() ([]*model.Notification, error) {
	var out []*model.Notification
	err := s.ledger.View(func() error {
		var ferr error
		out, ferr = s.ledger.Notifications.List()
		return ferr
	})
	return out, err
}
