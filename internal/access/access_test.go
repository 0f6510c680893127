package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain/ledger-api/internal/access"
	"github.com/medichain/ledger-api/internal/identity"
	"github.com/medichain/ledger-api/internal/kvstore"
	"github.com/medichain/ledger-api/internal/ledger"
	"github.com/medichain/ledger-api/internal/model"
	"github.com/medichain/ledger-api/pkg/errors"
)

func newChecker(t *testing.T) (*access.Checker, *ledger.Ledger) {
	t.Helper()
	l, err := ledger.Open(kvstore.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, l.Init("admin", []string{"alice"}, "hash"))
	return access.NewChecker(l), l
}

func TestIsAdmin(t *testing.T) {
	c, _ := newChecker(t)

	assert.True(t, c.IsAdmin(identity.Actor{AccountID: "admin"}))
	assert.False(t, c.IsAdmin(identity.Actor{AccountID: "alice"}))
	assert.False(t, c.IsAdmin(identity.Actor{}))
}

func TestIsRegisteredUser(t *testing.T) {
	c, _ := newChecker(t)

	assert.True(t, c.IsRegisteredUser(identity.Actor{AccountID: "alice"}))
	assert.False(t, c.IsRegisteredUser(identity.Actor{AccountID: "admin"}))
	assert.False(t, c.IsRegisteredUser(identity.Actor{}))
}

func TestIsOwnerOrAdmin(t *testing.T) {
	c, _ := newChecker(t)

	assert.True(t, c.IsOwnerOrAdmin(identity.Actor{AccountID: "alice"}))
	assert.True(t, c.IsOwnerOrAdmin(identity.Actor{AccountID: "admin"}))
	assert.False(t, c.IsOwnerOrAdmin(identity.Actor{AccountID: "mallory"}))
}

func TestApprovedDoctor(t *testing.T) {
	c, l := newChecker(t)

	err := l.Update(func(tx *ledger.Tx) error {
		if _, err := l.Doctors.Insert(tx, &model.Doctor{AccountID: "dr-pending"}); err != nil {
			return err
		}
		_, err := l.Doctors.Insert(tx, &model.Doctor{AccountID: "dr-approved", Approved: true})
		return err
	})
	require.NoError(t, err)

	assert.False(t, c.IsApprovedDoctor(identity.Actor{AccountID: "dr-pending"}))
	assert.False(t, c.IsApprovedDoctor(identity.Actor{}))

	doctor, ok := c.ApprovedDoctor(identity.Actor{AccountID: "dr-approved"})
	require.True(t, ok)
	assert.Equal(t, uint64(2), doctor.ID)
}

func TestRequireVariants(t *testing.T) {
	c, _ := newChecker(t)
	mallory := identity.Actor{AccountID: "mallory"}

	assert.True(t, errors.HasCode(c.RequireAdmin(mallory), errors.ErrAuthorization))
	assert.True(t, errors.HasCode(c.RequireRegisteredUser(mallory), errors.ErrAuthorization))
	assert.True(t, errors.HasCode(c.RequireOwnerOrAdmin(mallory), errors.ErrAuthorization))

	_, err := c.RequireApprovedDoctor(mallory)
	assert.True(t, errors.HasCode(err, errors.ErrAuthorization))

	assert.NoError(t, c.RequireAdmin(identity.Actor{AccountID: "admin"}))
	assert.NoError(t, c.RequireRegisteredUser(identity.Actor{AccountID: "alice"}))
}
