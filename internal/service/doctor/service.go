package doctor

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

// Register creates a doctor record pending admin approval. Registration is
// open; a caller-supplied id fails on collision.
func (s *Service) Register(ctx context.Context, req *model.RegisterDoctorRequest) (*model.Doctor, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.InvalidArgument("invalid password", err)
	}

	d := &model.Doctor{
		AccountID:      req.AccountID,
		Title:          req.Title,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Gender:         req.Gender,
		Designation:    req.Designation,
		LastWork:       req.LastWork,
		Email:          req.Email,
		CollegeName:    req.CollegeName,
		CollegeID:      req.CollegeID,
		JoiningYear:    req.JoiningYear,
		EndYear:        req.EndYear,
		Specialization: req.Specialization,
		RegistrationID: req.RegistrationID,
		CollegeAddress: req.CollegeAddress,
		ProfilePic:     req.ProfilePic,
		Bio:            req.Bio,
		Approved:       false,
		CreatedAt:      time.Now().UTC(),
	}

	err = s.ledger.Update(func(tx *ledger.Tx) error {
		if req.ID != nil {
			if err := s.ledger.Doctors.InsertWithID(tx, *req.ID, d); err != nil {
				return err
			}
		} else if _, err := s.ledger.Doctors.Insert(tx, d); err != nil {
			return err
		}
		s.ledger.SetCredential(tx, req.AccountID, hash)
		if err := s.notifier.Notify(tx, req.AccountID, "Your doctor registration was received and is pending approval.", model.CategoryRegistration); err != nil {
			return err
		}
		msg := fmt.Sprintf("Doctor %s %s (id %d) registered and awaits approval.", d.FirstName, d.LastName, d.ID)
		return s.notifier.Notify(tx, s.ledger.Owner(), msg, model.CategoryApproval)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint64("doctor_id", d.ID).Str("account", d.AccountID).Msg("doctor registered")
	return d, nil
}

// Approve grants prescribing/treatment authority. Admin only; idempotent,
// approving twice leaves a single approved record.
func (s *Service) Approve(ctx context.Context, doctorID uint64) (*model.Doctor, error) {
	actor, _ := identity.FromContext(ctx)

	var d *model.Doctor
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		if err := s.access.RequireAdmin(actor); err != nil {
			return err
		}
		var err error
		d, err = s.ledger.Doctors.Get(doctorID)
		if err != nil {
			return err
		}
		if d.Approved {
			return nil
		}
		d.Approved = true
		if err := s.ledger.Doctors.Update(tx, d); err != nil {
			return err
		}
		return s.notifier.Notify(tx, d.AccountID, "Your doctor account was approved.", model.CategoryApproval)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*model.Doctor, error) {
	var d *model.Doctor
	err := s.ledger.View(func() error {
		var gerr error
		d, gerr = s.ledger.Doctors.Get(id)
		return gerr
	})
	return d, err
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	var out []*model.Doctor
	err := s.ledger.View(func() error {
		var lerr error
		out, lerr = s.ledger.Doctors.List()
		return lerr
	})
	return out, err
}

// ListApproved returns doctors with treatment authority.
func (s *Service) ListApproved(ctx context.Context) ([]*model.Doctor, error) {
	var out []*model.Doctor
	err := s.ledger.View(func() error {
		var lerr error
		out, lerr = s.ledger.Doctors.Filter(func(d *model.Doctor) bool { return d.Approved })
		return lerr
	})
	return out, err
}

// MostPopular returns every doctor tied for the maximum popularity score
// (appointments plus successful treatments). Ties are not broken.
func (s *Service) MostPopular(ctx context.Context) ([]*model.Doctor, error) {
	var out []*model.Doctor
	err := s.ledger.View(func() error {
		doctors, err := s.ledger.Doctors.List()
		if err != nil {
			return err
		}
		var max uint64
		for _, d := range doctors {
			if d.Popularity() > max {
				max = d.Popularity()
			}
		}
		out = make([]*model.Doctor, 0)
		if len(doctors) == 0 {
			return nil
		}
		for _, d := range doctors {
			if d.Popularity() == max {
				out = append(out, d)
			}
		}
		return nil
	})
	return out, err
}
