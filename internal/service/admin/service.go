package admin

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medichain/ledger-api/internal/access"
	"github.com/medichain/ledger-api/internal/identity"
	"github.com/medichain/ledger-api/internal/ledger"
	"github.com/medichain/ledger-api/internal/model"
)

// Service covers the admin-only configuration surface: the two fee scalars
// and the owner identity. Fee changes are last-write-wins and apply only to
// operations initiated afterwards.
type Service struct {
	ledger *ledger.Ledger
	access *access.Checker
	logger *zerolog.Logger
}

func NewService(l *ledger.Ledger, checker *access.Checker, logger *zerolog.Logger) *Service {
	return &Service{ledger: l, access: checker, logger: logger}
}

func (s *Service) SetRegistrationFee(ctx context.Context, amount uint64) error {
	actor, _ := identity.FromContext(ctx)
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		if err := s.access.RequireAdmin(actor); err != nil {
			return err
		}
		s.ledger.SetRegistrationFee(tx, amount)
		return nil
	})
	if err == nil {
		s.logger.Info().Uint64("amount", amount).Msg("registration fee updated")
	}
	return err
}

func (s *Service) SetAppointmentFee(ctx context.Context, amount uint64) error {
	actor, _ := identity.FromContext(ctx)
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		if err := s.access.RequireAdmin(actor); err != nil {
			return err
		}
		s.ledger.SetAppointmentFee(tx, amount)
		return nil
	})
	if err == nil {
		s.logger.Info().Uint64("amount", amount).Msg("appointment fee updated")
	}
	return err
}

// SetOwner transfers the admin identity to another account.
func (s *Service) SetOwner(ctx context.Context, accountID string) error {
	actor, _ := identity.FromContext(ctx)
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		if err := s.access.RequireAdmin(actor); err != nil {
			return err
		}
		return s.ledger.SetOwner(tx, accountID)
	})
	if err == nil {
		s.logger.Info().Str("owner", accountID).Msg("owner identity transferred")
	}
	return err
}

func (s *Service) Fees(ctx context.Context) model.Fees {
	var fees model.Fees
	_ = s.ledger.View(func() error {
		fees = s.ledger.Fees()
		return nil
	})
	return fees
}
