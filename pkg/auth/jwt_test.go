package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain/ledger-api/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := auth.NewJWTService("secret", time.Hour)

	token, err := svc.GenerateAccessToken("alice")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.AccountID)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "ledger-api", claims.Issuer)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := auth.NewJWTService("secret", -time.Minute)

	token, err := svc.GenerateAccessToken("alice")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := auth.NewJWTService("secret-a", time.Hour)
	verifier := auth.NewJWTService("secret-b", time.Hour)

	token, err := issuer.GenerateAccessToken("alice")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
