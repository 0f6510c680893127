package prescription

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
)

// Service issues prescriptions. A prescription is immutable once created.
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

// Prescribe creates a prescription linking patient, doctor and medicine.
// Only approved doctors may prescribe; the medicine and patient must exist.
func (s *Service) Prescribe(ctx context.Context, req *model.PrescribeRequest) (*model.Prescription, error) {
	actor, _ := identity.FromContext(ctx)

	var rx *model.Prescription
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		doctor, err := s.access.RequireApprovedDoctor(actor)
		if err != nil {
			return err
		}
		medicine, err := s.ledger.Medicines.Get(req.MedicineID)
		if err != nil {
			return err
		}
		patient, err := s.ledger.Patients.Get(req.PatientID)
		if err != nil {
			return err
		}

		rx = &model.Prescription{
			MedicineID: medicine.ID,
			PatientID:  patient.ID,
			DoctorID:   doctor.ID,
			IssuedAt:   time.Now().UTC(),
		}
		if _, err := s.ledger.Prescriptions.Insert(tx, rx); err != nil {
			return err
		}

		patientMsg := fmt.Sprintf("Dr. %s %s prescribed %s to you.", doctor.FirstName, doctor.LastName, medicine.Name)
		doctorMsg := fmt.Sprintf("Prescription %d issued for patient %d.", rx.ID, patient.ID)
		adminMsg := fmt.Sprintf("Prescription %d issued (doctor %d, patient %d, medicine %d).", rx.ID, doctor.ID, patient.ID, medicine.ID)
		if err := s.notifier.Notify(tx, patient.AccountID, patientMsg, model.CategoryPrescription); err != nil {
			return err
		}
		if err := s.notifier.Notify(tx, doctor.AccountID, doctorMsg, model.CategoryPrescription); err != nil {
			return err
		}
		return s.notifier.Notify(tx, s.ledger.Owner(), adminMsg, model.CategoryPrescription)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint64("prescription_id", rx.ID).Uint64("medicine_id", rx.MedicineID).Msg("prescription issued")
	return rx, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*model.Prescription, error) {
	var rx *model.Prescription
	err := s.ledger.View(func() error {
		var gerr error
		rx, gerr = s.ledger.Prescriptions.Get(id)
		return gerr
	})
	return rx, err
}

func (s *Service) List(ctx context.Context) ([]*model.Prescription, error) {
	var out []*model.Prescription
	err := s.ledger.View(func() error {
		var lerr error
		out, lerr = s.ledger.Prescriptions.List()
		return lerr
	})
	return out, err
}

// ListByPatient returns a patient's prescriptions in issue order.
func (s *Service) ListByPatient(ctx context.Context, patientID uint64) ([]*model.Prescription, error) {
	var out []*model.Prescription
	err := s.ledger.View(func() error {
		var ferr error
		out, ferr = s.ledger.Prescriptions.Filter(func(p *model.Prescription) bool {
			return p.PatientID == patientID
		})
		return ferr
	})
	return out, err
}

// ListByDoctor returns prescriptions a doctor issued, in issue order.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uint64) ([]*model.Prescription, error) {
	var out []*model.Prescription
	err := s.ledger.View(func() error {
		var ferr error
		out, ferr = s.ledger.Prescriptions.Filter(func(p *model.Prescription) bool {
			return p.DoctorID == doctorID
		})
		return ferr
	})
	return out, err
}
