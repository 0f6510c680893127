package access

import (
	"github.com/medichain/ledger-api/internal/identity"
	"github.com/medichain/ledger-api/internal/ledger"
	"github.com/medichain/ledger-api/internal/model"
	"github.com/medichain/ledger-api/pkg/errors"
)

// Checker evaluates role predicates over the current actor and the ledger.
// It holds no state of its own, so every decision is reproducible from
// (actor, ledger snapshot). Predicates must be called inside a ledger
// View/Update callback.
type Checker struct {
	ledger *ledger.Ledger
}

func NewChecker(l *ledger.Ledger) *Checker {
	return &Checker{ledger: l}
}

// IsAdmin reports whether the actor is the configured owner identity.
func (c *Checker) IsAdmin(actor identity.Actor) bool {
	return actor.AccountID != "" && actor.AccountID == c.ledger.Owner()
}

// IsRegisteredUser reports membership in the registered-user set.
func (c *Checker) IsRegisteredUser(actor identity.Actor) bool {
	return c.ledger.IsRegisteredUser(actor.AccountID)
}

// IsOwnerOrAdmin is the relaxed predicate for reading one's own records.
func (c *Checker) IsOwnerOrAdmin(actor identity.Actor) bool {
	return c.IsRegisteredUser(actor) || c.IsAdmin(actor)
}

// ApprovedDoctor returns the approved doctor record matching the actor, if
// one exists.
func (c *Checker) ApprovedDoctor(actor identity.Actor) (*model.Doctor, bool) {
	if actor.AccountID == "" {
		return nil, false
	}
	matches, err := c.ledger.Doctors.Filter(func(d *model.Doctor) bool {
		return d.AccountID == actor.AccountID && d.Approved
	})
	if err != nil || len(matches) == 0 {
		return nil, false
	}
	return matches[0], true
}

// IsApprovedDoctor reports whether the actor is an approved doctor.
func (c *Checker) IsApprovedDoctor(actor identity.Actor) bool {
	_, ok := c.ApprovedDoctor(actor)
	return ok
}

func (c *Checker) RequireAdmin(actor identity.Actor) error {
	if !c.IsAdmin(actor) {
		return errors.Authorization("only the admin can call this method", nil)
	}
	return nil
}

func (c *Checker) RequireRegisteredUser(actor identity.Actor) error {
	if !c.IsRegisteredUser(actor) {
		return errors.Authorization("only registered users can call this method", nil)
	}
	return nil
}

func (c *Checker) RequireOwnerOrAdmin(actor identity.Actor) error {
	if !c.IsOwnerOrAdmin(actor) {
		return errors.Authorization("only the owner or the admin can call this method", nil)
	}
	return nil
}

// RequireApprovedDoctor returns the doctor record for an approved doctor
// actor, or an authorization error.
func (c *Checker) RequireApprovedDoctor(actor identity.Actor) (*model.Doctor, error) {
	doctor, ok := c.ApprovedDoctor(actor)
	if !ok {
		return nil, errors.Authorization("only approved doctors can call this method", nil)
	}
	return doctor, nil
}
