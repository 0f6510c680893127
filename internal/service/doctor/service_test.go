package doctor_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain/ledger-api/internal/access"
	"github.com/medichain/ledger-api/internal/identity"
	"github.com/medichain/ledger-api/internal/kvstore"
	"github.com/medichain/ledger-api/internal/ledger"
	"github.com/medichain/ledger-api/internal/model"
	"github.com/medichain/ledger-api/internal/service/doctor"
	"github.com/medichain/ledger-api/internal/service/notification"
	"github.com/medichain/ledger-api/pkg/errors"
	"github.com/medichain/ledger-api/pkg/metrics"
	"github.com/medichain/ledger-api/pkg/security"
)

type env struct {
	ledger   *ledger.Ledger
	service  *doctor.Service
	notifier *notification.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	l, err := ledger.Open(kvstore.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, l.Init("admin", nil, "hash"))

	nop := zerolog.Nop()
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "ledger", "test")
	notifier := notification.NewService(l, nil, m, &nop)
	svc := doctor.NewService(l, access.NewChecker(l), notifier, security.NewBcryptHasher(4), &nop)
	return &env{ledger: l, service: svc, notifier: notifier}
}

func asActor(account string) context.Context {
	return identity.WithActor(context.Background(), identity.Actor{AccountID: account})
}

func registerRequest(account string) *model.RegisterDoctorRequest {
	return &model.RegisterDoctorRequest{
		AccountID: account,
		Password:  "supersecret",
		FirstName: "Bob",
		LastName:  "Nguyen",
		Email:     "bob@example.com",
	}
}

func TestRegisterCreatesUnapprovedDoctor(t *testing.T) {
	e := newEnv(t)

	d, err := e.service.Register(context.Background(), registerRequest("dr-bob"))
	require.NoError(t, err)
	assert.False(t, d.Approved)
	assert.Equal(t, uint64(1), d.ID)

	hash, ok := e.ledger.Credential("dr-bob")
	require.True(t, ok)
	assert.NotEqual(t, "supersecret", hash)

	// Registration notifies the doctor and the admin.
	forDoctor, err := e.notifier.ListFor("dr-bob")
	require.NoError(t, err)
	assert.Len(t, forDoctor, 1)
	forAdmin, err := e.notifier.ListFor("admin")
	require.NoError(t, err)
	assert.Len(t, forAdmin, 1)
}

func TestRegisterWithExplicitID(t *testing.T) {
	e := newEnv(t)

	id := uint64(40)
	req := registerRequest("dr-bob")
	req.ID = &id
	d, err := e.service.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), d.ID)

	req2 := registerRequest("dr-eve")
	req2.ID = &id
	_, err = e.service.Register(context.Background(), req2)
	assert.True(t, errors.HasCode(err, errors.ErrDuplicateID))

	// Auto-assignment continues past the explicit id.
	d3, err := e.service.Register(context.Background(), registerRequest("dr-carol"))
	require.NoError(t, err)
	assert.Equal(t, uint64(41), d3.ID)
}

func TestApproveRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	d, err := e.service.Register(context.Background(), registerRequest("dr-bob"))
	require.NoError(t, err)

	_, err = e.service.Approve(asActor("dr-bob"), d.ID)
	assert.True(t, errors.HasCode(err, errors.ErrAuthorization))

	_, err = e.service.Approve(asActor("admin"), 99)
	assert.True(t, errors.HasCode(err, errors.ErrNotFound))
}

func TestApproveIsIdempotent(t *testing.T) {
	e := newEnv(t)
	d, err := e.service.Register(context.Background(), registerRequest("dr-bob"))
	require.NoError(t, err)

	approved, err := e.service.Approve(asActor("admin"), d.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	again, err := e.service.Approve(asActor("admin"), d.ID)
	require.NoError(t, err)
	assert.True(t, again.Approved)

	// Only the first approval notifies.
	approvals, err := e.notifier.ListFor("dr-bob")
	require.NoError(t, err)
	count := 0
	for _, n := range approvals {
		if n.Category == model.CategoryApproval {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestListApproved(t *testing.T) {
	e := newEnv(t)
	d1, err := e.service.Register(context.Background(), registerRequest("dr-bob"))
	require.NoError(t, err)
	_, err = e.service.Register(context.Background(), registerRequest("dr-eve"))
	require.NoError(t, err)

	_, err = e.service.Approve(asActor("admin"), d1.ID)
	require.NoError(t, err)

	approved, err := e.service.ListApproved(context.Background())
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, d1.ID, approved[0].ID)
}

func TestMostPopularReturnsFullTieSet(t *testing.T) {
	e := newEnv(t)

	scores := []struct {
		account      string
		appointments uint64
		treatments   uint64
	}{
		{"dr-a", 3, 2}, // popularity 5
		{"dr-b", 1, 4}, // popularity 5
		{"dr-c", 2, 1}, // popularity 3
	}
	err := e.ledger.Update(func(tx *ledger.Tx) error {
		for _, s := range scores {
			d := &model.Doctor{
				AccountID:            s.account,
				AppointmentCount:     s.appointments,
				SuccessfulTreatments: s.treatments,
			}
			if _, err := e.ledger.Doctors.Insert(tx, d); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	top, err := e.service.MostPopular(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "dr-a", top[0].AccountID)
	assert.Equal(t, "dr-b", top[1].AccountID)
}

func TestMostPopularEmpty(t *testing.T) {
	e := newEnv(t)

	top, err := e.service.MostPopular(context.Background())
	require.NoError(t, err)
	assert.Empty(t, top)
}
