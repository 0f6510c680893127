package ledger_test

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain/ledger-api/internal/kvstore"
	"github.com/medichain/ledger-api/internal/ledger"
	"github.com/medichain/ledger-api/internal/model"
	"github.com/medichain/ledger-api/pkg/errors"
	"github.com/medichain/ledger-api/pkg/metrics"
)

func openLedger(t *testing.T) (*ledger.Ledger, *kvstore.MemoryStore) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	l, err := ledger.Open(store)
	require.NoError(t, err)
	return l, store
}

func TestInsertAssignsSequentialIDs(t *testing.T) {
	l, _ := openLedger(t)

	for i := 1; i <= 3; i++ {
		p := &model.Patient{AccountID: fmt.Sprintf("acct-%d", i)}
		err := l.Update(func(tx *ledger.Tx) error {
			_, err := l.Patients.Insert(tx, p)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), p.ID)
	}

	patients, err := l.Patients.List()
	require.NoError(t, err)
	require.Len(t, patients, 3)
	assert.Equal(t, "acct-1", patients[0].AccountID)
	assert.Equal(t, "acct-3", patients[2].AccountID)
}

func TestInsertWithIDRejectsCollision(t *testing.T) {
	l, _ := openLedger(t)

	err := l.Update(func(tx *ledger.Tx) error {
		return l.Doctors.InsertWithID(tx, 7, &model.Doctor{AccountID: "dr-a"})
	})
	require.NoError(t, err)

	err = l.Update(func(tx *ledger.Tx) error {
		return l.Doctors.InsertWithID(tx, 7, &model.Doctor{AccountID: "dr-b"})
	})
	assert.True(t, errors.HasCode(err, errors.ErrDuplicateID))

	// The counter moved past the explicit id.
	d := &model.Doctor{AccountID: "dr-c"}
	err = l.Update(func(tx *ledger.Tx) error {
		_, err := l.Doctors.Insert(tx, d)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(8), d.ID)
}

func TestInsertWithIDRejectsZero(t *testing.T) {
	l, _ := openLedger(t)

	err := l.Update(func(tx *ledger.Tx) error {
		return l.Doctors.InsertWithID(tx, 0, &model.Doctor{})
	})
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}

func TestCollisionInsideSameTx(t *testing.T) {
	l, _ := openLedger(t)

	err := l.Update(func(tx *ledger.Tx) error {
		if err := l.Doctors.InsertWithID(tx, 3, &model.Doctor{AccountID: "dr-a"}); err != nil {
			return err
		}
		return l.Doctors.InsertWithID(tx, 3, &model.Doctor{AccountID: "dr-b"})
	})
	assert.True(t, errors.HasCode(err, errors.ErrDuplicateID))
}

func TestUpdateMissingRecord(t *testing.T) {
	l, _ := openLedger(t)

	err := l.Update(func(tx *ledger.Tx) error {
		return l.Patients.Update(tx, &model.Patient{ID: 42})
	})
	assert.True(t, errors.HasCode(err, errors.ErrNotFound))
}

func TestGetMissingRecord(t *testing.T) {
	l, _ := openLedger(t)

	_, err := l.Medicines.Get(99)
	assert.True(t, errors.HasCode(err, errors.ErrNotFound))
}

func TestUpdateAbortsAtomically(t *testing.T) {
	l, _ := openLedger(t)

	hookRan := false
	err := l.Update(func(tx *ledger.Tx) error {
		if _, err := l.Patients.Insert(tx, &model.Patient{AccountID: "acct"}); err != nil {
			return err
		}
		tx.OnCommit(func() { hookRan = true })
		return fmt.Errorf("boom")
	})
	require.Error(t, err)
	assert.False(t, hookRan)

	patients, err := l.Patients.List()
	require.NoError(t, err)
	assert.Empty(t, patients)

	// The aborted insert did not consume an id.
	p := &model.Patient{AccountID: "acct"}
	err = l.Update(func(tx *ledger.Tx) error {
		_, err := l.Patients.Insert(tx, p)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.ID)
}

func TestFilterPreservesInsertionOrder(t *testing.T) {
	l, _ := openLedger(t)

	err := l.Update(func(tx *ledger.Tx) error {
		for i := 0; i < 5; i++ {
			apt := &model.Appointment{PatientID: uint64(i % 2)}
			if _, err := l.Appointments.Insert(tx, apt); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	matched, err := l.Appointments.Filter(func(a *model.Appointment) bool {
		return a.PatientID == 0
	})
	require.NoError(t, err)
	require.Len(t, matched, 3)
	assert.Equal(t, uint64(1), matched[0].ID)
	assert.Equal(t, uint64(3), matched[1].ID)
	assert.Equal(t, uint64(5), matched[2].ID)
}

func TestInitOnce(t *testing.T) {
	l, _ := openLedger(t)
	assert.False(t, l.Initialized())

	require.NoError(t, l.Init("admin", []string{"alice", "bob"}, "hash"))
	assert.True(t, l.Initialized())
	assert.Equal(t, "admin", l.Owner())
	assert.True(t, l.IsRegisteredUser("alice"))
	assert.True(t, l.IsRegisteredUser("bob"))
	assert.False(t, l.IsRegisteredUser("mallory"))

	err := l.Init("other", nil, "hash")
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyInitialized))
	assert.Equal(t, "admin", l.Owner())
}

func TestInitRequiresOwner(t *testing.T) {
	l, _ := openLedger(t)
	err := l.Init("", nil, "hash")
	assert.True(t, errors.HasCode(err, errors.ErrInvalidArgument))
}

func TestMetaSurvivesReopen(t *testing.T) {
	l, store := openLedger(t)
	require.NoError(t, l.Init("admin", []string{"alice"}, "admin-hash"))

	err := l.Update(func(tx *ledger.Tx) error {
		l.RegisterUser(tx, "carol")
		l.SetCredential(tx, "carol", "carol-hash")
		l.SetRegistrationFee(tx, 1000)
		l.SetAppointmentFee(tx, 500)
		return nil
	})
	require.NoError(t, err)

	reopened, err := ledger.Open(store)
	require.NoError(t, err)
	assert.Equal(t, "admin", reopened.Owner())
	assert.True(t, reopened.IsRegisteredUser("alice"))
	assert.True(t, reopened.IsRegisteredUser("carol"))

	hash, ok := reopened.Credential("carol")
	require.True(t, ok)
	assert.Equal(t, "carol-hash", hash)

	fees := reopened.Fees()
	assert.Equal(t, uint64(1000), fees.RegistrationFee)
	assert.Equal(t, uint64(500), fees.AppointmentFee)
}

func TestSetOwnerTransfersAdmin(t *testing.T) {
	l, _ := openLedger(t)
	require.NoError(t, l.Init("admin", nil, "hash"))

	err := l.Update(func(tx *ledger.Tx) error {
		return l.SetOwner(tx, "successor")
	})
	require.NoError(t, err)
	assert.Equal(t, "successor", l.Owner())
}

func TestOperationsRecordMetrics(t *testing.T) {
	l, _ := openLedger(t)
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "ledger", "test")
	l.Instrument(m)

	err := l.Update(func(tx *ledger.Tx) error {
		_, err := l.Patients.Insert(tx, &model.Patient{AccountID: "acct"})
		return err
	})
	require.NoError(t, err)

	err = l.Update(func(tx *ledger.Tx) error { return assert.AnError })
	require.Error(t, err)

	require.NoError(t, l.View(func() error { return nil }))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerOperations.WithLabelValues("update", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerOperations.WithLabelValues("update", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerOperations.WithLabelValues("view", "ok")))
}

func TestPatientByAccount(t *testing.T) {
	l, _ := openLedger(t)

	err := l.Update(func(tx *ledger.Tx) error {
		_, err := l.Patients.Insert(tx, &model.Patient{AccountID: "alice"})
		return err
	})
	require.NoError(t, err)

	err = l.View(func() error {
		p, err := l.PatientByAccount("alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), p.ID)

		_, err = l.PatientByAccount("nobody")
		assert.True(t, errors.HasCode(err, errors.ErrNotFound))
		return nil
	})
	require.NoError(t, err)
}

func TestMetaWritesVisibleWithinOneUpdate(t *testing.T) {
	l, store := openLedger(t)
	require.NoError(t, l.Init("admin", nil, "admin-hash"))

	err := l.Update(func(tx *ledger.Tx) error {
		l.SetRegistrationFee(tx, 1000)
		l.SetAppointmentFee(tx, 500)
		l.SetCredential(tx, "carol", "carol-hash")
		l.SetCredential(tx, "dave", "dave-hash")
		l.RegisterUser(tx, "carol")
		l.RegisterUser(tx, "dave")
		return nil
	})
	require.NoError(t, err)

	fees := l.Fees()
	assert.Equal(t, uint64(1000), fees.RegistrationFee)
	assert.Equal(t, uint64(500), fees.AppointmentFee)

	reopened, err := ledger.Open(store)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), reopened.Fees().RegistrationFee)
	assert.Equal(t, uint64(500), reopened.Fees().AppointmentFee)
	assert.True(t, reopened.IsRegisteredUser("carol"))
	assert.True(t, reopened.IsRegisteredUser("dave"))

	hash, ok := reopened.Credential("carol")
	require.True(t, ok)
	assert.Equal(t, "carol-hash", hash)
	hash, ok = reopened.Credential("dave")
	require.True(t, ok)
	assert.Equal(t, "dave-hash", hash)
}

func TestFeeUpdatesAreIndependent(t *testing.T) {
	l, _ := openLedger(t)

	err := l.Update(func(tx *ledger.Tx) error {
		l.SetRegistrationFee(tx, 100)
		return nil
	})
	require.NoError(t, err)

	err = l.Update(func(tx *ledger.Tx) error {
		l.SetAppointmentFee(tx, 50)
		return nil
	})
	require.NoError(t, err)

	fees := l.Fees()
	assert.Equal(t, uint64(100), fees.RegistrationFee)
	assert.Equal(t, uint64(50), fees.AppointmentFee)
}

func TestRecordsSurviveReopen(t *testing.T) {
	l, store := openLedger(t)

	err := l.Update(func(tx *ledger.Tx) error {
		_, err := l.Medicines.Insert(tx, &model.Medicine{Name: "aspirin", Price: 100, Quantity: 10})
		return err
	})
	require.NoError(t, err)

	reopened, err := ledger.Open(store)
	require.NoError(t, err)
	m, err := reopened.Medicines.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "aspirin", m.Name)
	assert.Equal(t, uint64(10), m.Quantity)
}
