package appointment_test

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
	"github.com/medichain/ledger-api/internal/service/appointment"
	"github.com/medichain/ledger-api/internal/service/notification"
	"github.com/medichain/ledger-api/pkg/errors"
	"github.com/medichain/ledger-api/pkg/metrics"
)

type env struct {
	ledger   *ledger.Ledger
	service  *appointment.Service
	notifier *notification.Service
	doctorID uint64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	l, err := ledger.Open(kvstore.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, l.Init("admin", []string{"alice"}, "hash"))

	nop := zerolog.Nop()
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "ledger", "test")
	notifier := notification.NewService(l, nil, m, &nop)
	svc := appointment.NewService(l, access.NewChecker(l), notifier, &nop)

	d := &model.Doctor{AccountID: "dr-bob", FirstName: "Bob", Approved: true}
	err = l.Update(func(tx *ledger.Tx) error {
		if _, err := l.Patients.Insert(tx, &model.Patient{AccountID: "alice", FirstName: "Alice"}); err != nil {
			return err
		}
		_, err := l.Doctors.Insert(tx, d)
		return err
	})
	require.NoError(t, err)

	return &env{ledger: l, service: svc, notifier: notifier, doctorID: d.ID}
}

func asActor(account string) context.Context {
	return identity.WithActor(context.Background(), identity.Actor{AccountID: account})
}

func (e *env) book(t *testing.T) *model.Appointment {
	t.Helper()
	apt, err := e.service.Book(asActor("alice"), &model.BookAppointmentRequest{
		DoctorID: e.doctorID,
		Date:     "2026-09-01",
		From:     "10:00",
		To:       "10:30",
	})
	require.NoError(t, err)
	return apt
}

func TestBookCreatesPendingAppointment(t *testing.T) {
	e := newEnv(t)
	apt := e.book(t)

	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, e.doctorID, apt.DoctorID)

	doctor, err := e.ledger.Doctors.Get(e.doctorID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), doctor.AppointmentCount)
	assert.Equal(t, uint64(0), doctor.SuccessfulTreatments)
}

func TestBookFansOutNotifications(t *testing.T) {
	e := newEnv(t)
	e.book(t)

	for _, recipient := range []string{"alice", "dr-bob", "admin"} {
		got, err := e.notifier.ListFor(recipient)
		require.NoError(t, err)
		require.Len(t, got, 1, "recipient %s", recipient)
		assert.Equal(t, model.CategoryAppointment, got[0].Category)
	}
}

func TestBookRequiresRegisteredUser(t *testing.T) {
	e := newEnv(t)

	_, err := e.service.Book(asActor("mallory"), &model.BookAppointmentRequest{DoctorID: e.doctorID})
	assert.True(t, errors.HasCode(err, errors.ErrAuthorization))

	_, err = e.service.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: e.doctorID})
	assert.True(t, errors.HasCode(err, errors.ErrAuthorization))
}

func TestBookRequiresExistingDoctor(t *testing.T) {
	e := newEnv(t)

	_, err := e.service.Book(asActor("alice"), &model.BookAppointmentRequest{DoctorID: 99})
	assert.True(t, errors.HasCode(err, errors.ErrNotFound))

	// The failed booking did not bump any counter.
	doctor, err := e.ledger.Doctors.Get(e.doctorID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), doctor.AppointmentCount)
}

func TestCompleteByAssignedDoctor(t *testing.T) {
	e := newEnv(t)
	apt := e.book(t)

	done, err := e.service.Complete(asActor("dr-bob"), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, done.Status)

	doctor, err := e.ledger.Doctors.Get(e.doctorID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), doctor.SuccessfulTreatments)
}

func TestCompleteRejectsOtherActors(t *testing.T) {
	e := newEnv(t)
	apt := e.book(t)

	for _, account := range []string{"alice", "admin", "dr-eve", ""} {
		_, err := e.service.Complete(asActor(account), apt.ID)
		assert.True(t, errors.HasCode(err, errors.ErrAuthorization), "actor %q", account)
	}
}

func TestCompleteOnlyOnce(t *testing.T) {
	e := newEnv(t)
	apt := e.book(t)

	_, err := e.service.Complete(asActor("dr-bob"), apt.ID)
	require.NoError(t, err)

	_, err = e.service.Complete(asActor("dr-bob"), apt.ID)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidTransition))

	// The rejected second completion did not double-count.
	doctor, err := e.ledger.Doctors.Get(e.doctorID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), doctor.SuccessfulTreatments)
}

func TestListByPatientAndDoctor(t *testing.T) {
	e := newEnv(t)
	first := e.book(t)
	second := e.book(t)

	byPatient, err := e.service.ListByPatient(context.Background(), first.PatientID)
	require.NoError(t, err)
	require.Len(t, byPatient, 2)
	assert.Equal(t, first.ID, byPatient[0].ID)
	assert.Equal(t, second.ID, byPatient[1].ID)

	byDoctor, err := e.service.ListByDoctor(context.Background(), e.doctorID)
	require.NoError(t, err)
	assert.Len(t, byDoctor, 2)

	none, err := e.service.ListByDoctor(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}
