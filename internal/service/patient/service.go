package patient

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
	"github.com/medichain/ledger-api/pkg/security"
)

type Service struct {
	ledger   *ledger.Ledger
	access   *access.Checker
	notifier *notification.Service
	hasher   security.PasswordHasher
	logger   *zerolog.Logger
}

func NewService(l *ledger.Ledger, checker *access.Checker, notifier *notification.Service, hasher security.PasswordHasher, logger *zerolog.Logger) *Service {
	return &Service{
		ledger:   l,
		access:   checker,
		notifier: notifier,
		hasher:   hasher,
		logger:   logger,
	}
}

// Register creates a patient record, adds the account to the registered-user
// set and stores the login credential. Registration is open.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.InvalidArgument("invalid password", err)
	}

	p := &model.Patient{
		AccountID:      req.AccountID,
		Title:          req.Title,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Gender:         req.Gender,
		Condition:      req.Condition,
		Phone:          req.Phone,
		Email:          req.Email,
		DOB:            req.DOB,
		City:           req.City,
		Address:        req.Address,
		Doctor:         req.Doctor,
		ProfilePic:     req.ProfilePic,
		Message:        req.Message,
		MedicalHistory: []string{},
		BoughtMedicine: []uint64{},
		CreatedAt:      time.Now().UTC(),
	}
	if req.Condition != "" {
		p.MedicalHistory = append(p.MedicalHistory, req.Condition)
	}

	err = s.ledger.Update(func(tx *ledger.Tx) error {
		if s.ledger.IsRegisteredUser(req.AccountID) {
			return errors.InvalidArgument("account already registered", nil)
		}
		if _, err := s.ledger.Patients.Insert(tx, p); err != nil {
			return err
		}
		s.ledger.RegisterUser(tx, req.AccountID)
		s.ledger.SetCredential(tx, req.AccountID, hash)
		return s.notifier.Notify(tx, req.AccountID, "Welcome! Your patient registration is complete.", model.CategoryRegistration)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint64("patient_id", p.ID).Str("account", p.AccountID).Msg("patient registered")
	return p, nil
}

// AppendMedicalNote appends a note to the patient's medical history. Only
// approved doctors may call it; the history is append-only.
func (s *Service) AppendMedicalNote(ctx context.Context, patientID uint64, note string) (*model.Patient, error) {
	actor, _ := identity.FromContext(ctx)
	if note == "" {
		return nil, errors.InvalidArgument("note is required", nil)
	}

	var p *model.Patient
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		doctor, err := s.access.RequireApprovedDoctor(actor)
		if err != nil {
			return err
		}
		p, err = s.ledger.Patients.Get(patientID)
		if err != nil {
			return err
		}
		p.MedicalHistory = append(p.MedicalHistory, note)
		if err := s.ledger.Patients.Update(tx, p); err != nil {
			return err
		}
		msg := fmt.Sprintf("Dr. %s %s updated your medical history.", doctor.FirstName, doctor.LastName)
		return s.notifier.Notify(tx, p.AccountID, msg, model.CategoryMedical)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// MedicalHistory returns the patient's history. Requires owner-or-admin.
func (s *Service) MedicalHistory(ctx context.Context, patientID uint64) ([]string, error) {
	actor, _ := identity.FromContext(ctx)

	var history []string
	err := s.ledger.View(func() error {
		if err := s.access.RequireOwnerOrAdmin(actor); err != nil {
			return err
		}
		p, err := s.ledger.Patients.Get(patientID)
		if err != nil {
			return err
		}
		history = p.MedicalHistory
		return nil
	})
	return history, err
}

func (s *Service) Get(ctx context.Context, id uint64) (*model.Patient, error) {
	var p *model.Patient
	err := s.ledger.View(func() error {
		var gerr error
		p, gerr = s.ledger.Patients.Get(id)
		return gerr
	})
	return p, err
}

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	var out []*model.Patient
	err := s.ledger.View(func() error {
		var lerr error
		out, lerr = s.ledger.Patients.List()
		return lerr
	})
	return out, err
}

// FindByAccount resolves a patient from an account id.
func (s *Service) FindByAccount(accountID string) (*model.Patient, error) {
	var p *model.Patient
	err := s.ledger.View(func() error {
		var ferr error
		p, ferr = s.ledger.PatientByAccount(accountID)
		return ferr
	})
	return p, err
}

// BoughtMedicines lists the medicines a patient has settled orders for.
func (s *Service) BoughtMedicines(ctx context.Context, patientID uint64) ([]*model.Medicine, error) {
	var out []*model.Medicine
	err := s.ledger.View(func() error {
		p, err := s.ledger.Patients.Get(patientID)
		if err != nil {
			return err
		}
		out = make([]*model.Medicine, 0, len(p.BoughtMedicine))
		for _, mid := range p.BoughtMedicine {
			m, err := s.ledger.Medicines.Get(mid)
			if err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	return out, err
}
