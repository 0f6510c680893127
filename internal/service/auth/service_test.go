package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain/ledger-api/internal/kvstore"
	"github.com/medichain/ledger-api/internal/ledger"
	authService "github.com/medichain/ledger-api/internal/service/auth"
	"github.com/medichain/ledger-api/pkg/auth"
	"github.com/medichain/ledger-api/pkg/errors"
	"github.com/medichain/ledger-api/pkg/security"
)

func newService(t *testing.T) *authService.Service {
	t.Helper()
	l, err := ledger.Open(kvstore.NewMemoryStore())
	require.NoError(t, err)

	hasher := security.NewBcryptHasher(4)
	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	require.NoError(t, l.Init("admin", nil, hash))

	nop := zerolog.Nop()
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	return authService.NewService(l, jwtSvc, hasher, &nop)
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newService(t)

	resp, err := svc.Login(context.Background(), &authService.LoginRequest{
		AccountID: "admin",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "admin", resp.AccountID)

	account, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", account)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newService(t)

	_, err := svc.Login(context.Background(), &authService.LoginRequest{
		AccountID: "admin",
		Password:  "wrong",
	})
	assert.True(t, errors.HasCode(err, errors.ErrUnauthenticated))

	_, err = svc.Login(context.Background(), &authService.LoginRequest{
		AccountID: "nobody",
		Password:  "correct-horse",
	})
	assert.True(t, errors.HasCode(err, errors.ErrUnauthenticated))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newService(t)

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.True(t, errors.HasCode(err, errors.ErrUnauthenticated))
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc := newService(t)

	other := auth.NewJWTService("other-secret", time.Hour)
	token, err := other.GenerateAccessToken("admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.True(t, errors.HasCode(err, errors.ErrUnauthenticated))
}
