package model

import "time"

type OrderStatus string

const (
	// OrderStatusPending means stock is reserved and the external transfer
	// has not been confirmed yet.
	OrderStatusPending OrderStatus = "pending"
	OrderStatusSettled OrderStatus = "settled"
	OrderStatusFailed  OrderStatus = "failed"
)

// Order records a purchase. Price, total and quantity are fixed at purchase
// time; only the settlement fields change afterwards.
type Order struct {
	ID           uint64      `json:"id"`
	MedicineID   uint64      `json:"medicine_id"`
	PatientID    uint64      `json:"patient_id"`
	Quantity     uint64      `json:"quantity"`
	UnitPrice    uint64      `json:"unit_price"`
	Total        uint64      `json:"total"`
	Status       OrderStatus `json:"status"`
	TransferRef  string      `json:"transfer_ref"`
	CreatedAt    time.Time   `json:"created_at"`
	DispatchedAt *time.Time  `json:"dispatched_at,omitempty"`
	SettledAt    *time.Time  `json:"settled_at,omitempty"`
}

func (o *Order) EntityID() uint64      { return o.ID }
func (o *Order) SetEntityID(id uint64) { o.ID = id }

type PurchaseRequest struct {
	MedicineID uint64 `json:"medicine_id" binding:"required"`
	Quantity   uint64 `json:"quantity" binding:"required"`
}
