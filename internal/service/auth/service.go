package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medichain/ledger-api/internal/ledger"
	"github.com/medichain/ledger-api/pkg/auth"
	"github.com/medichain/ledger-api/pkg/errors"
	"github.com/medichain/ledger-api/pkg/security"
)

// Service authenticates accounts and issues access tokens. Roles are not
// baked into tokens; they are derived from the ledger on every operation.
type Service struct {
	ledger *ledger.Ledger
	jwt    auth.JWTService
	hasher security.PasswordHasher
	logger *zerolog.Logger
}

func NewService(l *ledger.Ledger, jwtSvc auth.JWTService, hasher security.PasswordHasher, logger *zerolog.Logger) *Service {
	return &Service{ledger: l, jwt: jwtSvc, hasher: hasher, logger: logger}
}

type LoginRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	AccountID   string `json:"account_id"`
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var hash string
	err := s.ledger.View(func() error {
		h, ok := s.ledger.Credential(req.AccountID)
		if !ok {
			return errors.Unauthenticated("unknown account", nil)
		}
		hash = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Compare(hash, req.Password); err != nil {
		return nil, errors.Unauthenticated("invalid credentials", nil)
	}

	token, err := s.jwt.GenerateAccessToken(req.AccountID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	s.logger.Debug().Str("account", req.AccountID).Msg("login succeeded")
	return &LoginResponse{AccessToken: token, AccountID: req.AccountID}, nil
}

// ValidateToken resolves a bearer token into an account id.
func (s *Service) ValidateToken(ctx context.Context, token string) (string, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return "", errors.Unauthenticated("invalid token", err)
	}
	return claims.AccountID, nil
}
