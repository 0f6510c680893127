package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medichain/ledger-api/internal/access"
	"github.com/medichain/ledger-api/internal/identity"
	"github.com/medichain/ledger-api/internal/ledger"
	"github.com/medichain/ledger-api/internal/model"
	"github.com/medichain/ledger-api/internal/service/notification"
	"github.com/medichain/ledger-api/pkg/errors"
	"github.com/medichain/ledger-api/pkg/metrics"
)

// Service owns the medicine catalog and the purchase flow. A purchase is
// two-phase: the stock decrement and the pending order commit atomically,
// then the external value transfer is dispatched; the transfer result
// callback settles or fails the order, restoring stock on failure.
type Service struct {
	ledger   *ledger.Ledger
	access   *access.Checker
	notifier *notification.Service
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
}

func NewService(l *ledger.Ledger, checker *access.Checker, notifier *notification.Service, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	return &Service{
		ledger:   l,
		access:   checker,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// AddMedicine registers a medicine in the catalog. Admin only.
func (s *Service) AddMedicine(ctx context.Context, req *model.AddMedicineRequest) (*model.Medicine, error) {
	actor, _ := identity.FromContext(ctx)

	if req.Discount > 100 {
		return nil, errors.InvalidArgument("discount must be between 0 and 100", nil)
	}
	if req.Price == 0 {
		return nil, errors.InvalidArgument("price must be positive", nil)
	}

	m := &model.Medicine{
		DoctorID:            req.DoctorID,
		Name:                req.Name,
		Brand:               req.Brand,
		Manufacturer:        req.Manufacturer,
		ManufacturingDate:   req.ManufacturingDate,
		ExpiryDate:          req.ExpiryDate,
		CompanyEmail:        req.CompanyEmail,
		Phone:               req.Phone,
		Image:               req.Image,
		ManufacturerAddress: req.ManufacturerAddress,
		CurrentLocation:     req.CurrentLocation,
		Price:               req.Price,
		Quantity:            req.Quantity,
		Discount:            req.Discount,
		Available:           req.Quantity > 0,
		CreatedAt:           time.Now().UTC(),
	}

	err := s.ledger.Update(func(tx *ledger.Tx) error {
		if err := s.access.RequireAdmin(actor); err != nil {
			return err
		}
		_, err := s.ledger.Medicines.Insert(tx, m)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint64("medicine_id", m.ID).Str("name", m.Name).Msg("medicine added")
	return m, nil
}

// Purchase reserves stock and records a pending order. The order total is
// unit_price * quantity with unit_price = price * (100 - discount) / 100,
// integer arithmetic truncating toward zero. All checks run before any
// write; on failure the catalog and the order collection are untouched.
func (s *Service) Purchase(ctx context.Context, req *model.PurchaseRequest) (*model.Order, error) {
	actor, _ := identity.FromContext(ctx)

	var order *model.Order
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		if err := s.access.RequireRegisteredUser(actor); err != nil {
			return err
		}
		patient, err := s.ledger.PatientByAccount(actor.AccountID)
		if err != nil {
			return err
		}

		m, err := s.ledger.Medicines.Get(req.MedicineID)
		if err != nil {
			return err
		}
		if req.Quantity == 0 {
			return errors.InvalidArgument("quantity must be positive", nil)
		}
		if m.Quantity < req.Quantity {
			return errors.InsufficientStock(fmt.Sprintf("requested %d of %s, %d in stock", req.Quantity, m.Name, m.Quantity))
		}

		unitPrice := m.UnitPrice()
		m.Quantity -= req.Quantity
		m.Available = m.Quantity > 0
		if err := s.ledger.Medicines.Update(tx, m); err != nil {
			return err
		}

		order = &model.Order{
			MedicineID:  m.ID,
			PatientID:   patient.ID,
			Quantity:    req.Quantity,
			UnitPrice:   unitPrice,
			Total:       unitPrice * req.Quantity,
			Status:      model.OrderStatusPending,
			TransferRef: uuid.New().String(),
			CreatedAt:   time.Now().UTC(),
		}
		if _, err := s.ledger.Orders.Insert(tx, order); err != nil {
			return err
		}
		tx.OnCommit(func() { s.metrics.PendingOrders.Inc() })
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Uint64("order_id", order.ID).
		Uint64("medicine_id", order.MedicineID).
		Uint64("total", order.Total).
		Msg("purchase reserved, awaiting settlement")
	return order, nil
}

// PendingOrders lists orders awaiting transfer settlement.
func (s *Service) PendingOrders() ([]*model.Order, error) {
	var out []*model.Order
	err := s.ledger.View(func() error {
		var ferr error
		out, ferr = s.ledger.Orders.Filter(func(o *model.Order) bool {
			return o.Status == model.OrderStatusPending
		})
		return ferr
	})
	return out, err
}

// MarkDispatched records that the transfer for a pending order was handed
// to the gateway. Returns the refreshed order.
func (s *Service) MarkDispatched(orderID uint64) (*model.Order, error) {
	var order *model.Order
	err := s.ledger.Update(func(tx *ledger.Tx) error {
		var err error
		order, err = s.ledger.Orders.Get(orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPending {
			return errors.InvalidTransition(fmt.Sprintf("order %d is %s, not pending", orderID, order.Status))
		}
		now := time.Now().UTC()
		order.DispatchedAt = &now
		return s.ledger.Orders.Update(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// OnTransferResult is the settlement callback for a dispatched transfer.
// Success settles the order and credits the patient's bought-medicine list;
// failure restores the reserved stock. Results for orders that are no
// longer pending are ignored, so duplicate deliveries are harmless.
func (s *Service) OnTransferResult(orderID uint64, success bool) error {
	return s.ledger.Update(func(tx *ledger.Tx) error {
		order, err := s.ledger.Orders.Get(orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPending {
			return nil
		}

		patient, err := s.ledger.Patients.Get(order.PatientID)
		if err != nil {
			return err
		}
		m, err := s.ledger.Medicines.Get(order.MedicineID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		order.SettledAt = &now

		if success {
			order.Status = model.OrderStatusSettled
			patient.BoughtMedicine = append(patient.BoughtMedicine, order.MedicineID)
			if err := s.ledger.Patients.Update(tx, patient); err != nil {
				return err
			}
			msg := fmt.Sprintf("Your order %d for %s was settled.", order.ID, m.Name)
			if err := s.notifier.Notify(tx, patient.AccountID, msg, model.CategoryOrder); err != nil {
				return err
			}
		} else {
			order.Status = model.OrderStatusFailed
			m.Quantity += order.Quantity
			m.Available = true
			if err := s.ledger.Medicines.Update(tx, m); err != nil {
				return err
			}
			msg := fmt.Sprintf("Payment for order %d failed; the reservation was released.", order.ID)
			if err := s.notifier.Notify(tx, patient.AccountID, msg, model.CategoryOrder); err != nil {
				return err
			}
		}
		if err := s.ledger.Orders.Update(tx, order); err != nil {
			return err
		}

		tx.OnCommit(func() {
			s.metrics.PendingOrders.Dec()
			s.metrics.SettlementLatency.Observe(now.Sub(order.CreatedAt).Seconds())
			if success {
				s.metrics.OrdersSettled.Inc()
			} else {
				s.metrics.OrdersFailed.Inc()
			}
			s.logger.Info().
				Uint64("order_id", order.ID).
				Bool("success", success).
				Msg("order settled")
		})
		return nil
	})
}

func (s *Service) GetMedicine(ctx context.Context, id uint64) (*model.Medicine, error) {
	var m *model.Medicine
	err := s.ledger.View(func() error {
		var gerr error
		m, gerr = s.ledger.Medicines.Get(id)
		return gerr
	})
	return m, err
}

func (s *Service) ListMedicines(ctx context.Context) ([]*model.Medicine, error) {
	var out []*model.Medicine
	err := s.ledger.View(func() error {
		var lerr error
		out, lerr = s.ledger.Medicines.List()
		return lerr
	})
	return out, err
}

func (s *Service) GetOrder(ctx context.Context, id uint64) (*model.Order, error) {
	var o *model.Order
	err := s.ledger.View(func() error {
		var gerr error
		o, gerr = s.ledger.Orders.Get(id)
		return gerr
	})
	return o, err
}

func (s *Service) ListOrders(ctx context.Context) ([]*model.Order, error) {
	var out []*model.Order
	err := s.ledger.View(func() error {
		var lerr error
		out, lerr = s.ledger.Orders.List()
		return lerr
	})
	return out, err
}

// ListOrdersByPatient returns a patient's orders in insertion order.
func (s *Service) ListOrdersByPatient(ctx context.Context, patientID uint64) ([]*model.Order, error) {
	var out []*model.Order
	err := s.ledger.View(func() error {
		var ferr error
		out, ferr = s.ledger.Orders.Filter(func(o *model.Order) bool {
			return o.PatientID == patientID
		})
		return ferr
	})
	return out, err
}
