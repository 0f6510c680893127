package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/medichain/ledger-api/internal/access"
	"github.com/medichain/ledger-api/internal/identity"
	"github.com/medichain/ledger-api/internal/ledger"
	"github.com/medichain/ledger-api/internal/model"
	"github.com/medichain/ledger-api/internal/service/notification"
	"github.com/medichain/ledger-api/pkg/errors"
)

// Service runs the appointment workflow. The state machine per appointment
// is pending -> completed, exactly once, completed is terminal.
type Service struct {
	ledger   *ledger.Ledger
	access   *access.Checker
	notifier *notification.Service
	logger   *zerolog.Logger
}

func NewService(l *ledger.Ledger, checker *access.Checker, notifier *notification.Service, logger *zerolog.Logger) *Service {
	return &Service{
		ledger:   l,
		access:   checker,
		notifier: notifier,
		logger:   logger,
	}
}

// Book creates a pending appointment for the calling patient, bumps the
// doctor's appointment count and fans out notifications to the patient,
// the doctor and the admin.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	actor, _ := identity.FromContext(ctx)

	var apt *model.Appointment
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		if err := s.access.RequireRegisteredUser(actor); err != nil {
			return err
		}
		patient, err := s.ledger.PatientByAccount(actor.AccountID)
		if err != nil {
			return err
		}

		doctor, err := s.ledger.Doctors.Get(req.DoctorID)
		if err != nil {
			return err
		}

		apt = &model.Appointment{
			PatientID: patient.ID,
			DoctorID:  doctor.ID,
			Date:      req.Date,
			From:      req.From,
			To:        req.To,
			Condition: req.Condition,
			Message:   req.Message,
			Status:    model.AppointmentStatusPending,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := s.ledger.Appointments.Insert(tx, apt); err != nil {
			return err
		}

		doctor.AppointmentCount++
		if err := s.ledger.Doctors.Update(tx, doctor); err != nil {
			return err
		}

		patientMsg := fmt.Sprintf("Appointment %d with Dr. %s %s booked for %s.", apt.ID, doctor.FirstName, doctor.LastName, apt.Date)
		doctorMsg := fmt.Sprintf("New appointment %d booked by %s %s for %s.", apt.ID, patient.FirstName, patient.LastName, apt.Date)
		adminMsg := fmt.Sprintf("Appointment %d booked (patient %d, doctor %d).", apt.ID, patient.ID, doctor.ID)
		if err := s.notifier.Notify(tx, patient.AccountID, patientMsg, model.CategoryAppointment); err != nil {
			return err
		}
		if err := s.notifier.Notify(tx, doctor.AccountID, doctorMsg, model.CategoryAppointment); err != nil {
			return err
		}
		return s.notifier.Notify(tx, s.ledger.Owner(), adminMsg, model.CategoryAppointment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint64("appointment_id", apt.ID).Uint64("doctor_id", apt.DoctorID).Msg("appointment booked")
	return apt, nil
}

// Complete moves a pending appointment to completed. Only the assigned
// doctor may complete it, and only once; the doctor's successful-treatment
// counter moves with the transition.
func (s *Service) Complete(ctx context.Context, appointmentID uint64) (*model.Appointment, error) {
	actor, _ := identity.FromContext(ctx)

	var apt *model.Appointment
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		var err error
		apt, err = s.ledger.Appointments.Get(appointmentID)
		if err != nil {
			return err
		}

		doctor, err := s.ledger.Doctors.Get(apt.DoctorID)
		if err != nil {
			return err
		}
		if actor.AccountID == "" || doctor.AccountID != actor.AccountID {
			return errors.Authorization("only the assigned doctor can complete this appointment", nil)
		}
		if apt.Status != model.AppointmentStatusPending {
			return errors.InvalidTransition(fmt.Sprintf("appointment %d is %s, not pending", apt.ID, apt.Status))
		}

		patient, err := s.ledger.Patients.Get(apt.PatientID)
		if err != nil {
			return err
		}

		apt.Status = model.AppointmentStatusCompleted
		if err := s.ledger.Appointments.Update(tx, apt); err != nil {
			return err
		}

		doctor.SuccessfulTreatments++
		if err := s.ledger.Doctors.Update(tx, doctor); err != nil {
			return err
		}

		doctorMsg := fmt.Sprintf("Appointment %d marked completed.", apt.ID)
		patientMsg := fmt.Sprintf("Dr. %s %s completed your appointment %d.", doctor.FirstName, doctor.LastName, apt.ID)
		adminMsg := fmt.Sprintf("Appointment %d completed by doctor %d.", apt.ID, doctor.ID)
		if err := s.notifier.Notify(tx, doctor.AccountID, doctorMsg, model.CategoryAppointment); err != nil {
			return err
		}
		if err := s.notifier.Notify(tx, patient.AccountID, patientMsg, model.CategoryAppointment); err != nil {
			return err
		}
		return s.notifier.Notify(tx, s.ledger.Owner(), adminMsg, model.CategoryAppointment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint64("appointment_id", apt.ID).Msg("appointment completed")
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*model.Appointment, error) {
	var apt *model.Appointment
	err := s.ledger.View(func() error {
		var gerr error
		apt, gerr = s.ledger.Appointments.Get(id)
		return gerr
	})
	return apt, err
}

func (s *Service) List(ctx context.Context) ([]*model.Appointment, error) {
	var out []*model.Appointment
	err := s.ledger.View(func() error {
		var lerr error
		out, lerr = s.ledger.Appointments.List()
		return lerr
	})
	return out, err
}

// ListByPatient returns a patient's appointments in insertion order.
func (s *Service) ListByPatient(ctx context.Context, patientID uint64) ([]*model.Appointment, error) {
	var out []*model.Appointment
	err := s.ledger.View(func() error {
		var ferr error
		out, ferr = s.ledger.Appointments.Filter(func(a *model.Appointment) bool {
			return a.PatientID == patientID
		})
		return ferr
	})
	return out, err
}

// ListByDoctor returns a doctor's appointments in insertion order.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uint64) ([]*model.Appointment, error) {
	var out []*model.Appointment
	err := s.ledger.View(func() error {
		var ferr error
		out, ferr = s.ledger.Appointments.Filter(func(a *model.Appointment) bool {
			return a.DoctorID == doctorID
		})
		return ferr
	})
	return out, err
}
