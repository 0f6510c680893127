package model

import "time"

type NotificationCategory string

const (
	CategoryRegistration NotificationCategory = "registration"
	CategoryApproval     NotificationCategory = "approval"
	CategoryAppointment  NotificationCategory = "appointment"
	CategoryPrescription NotificationCategory = "prescription"
	CategoryMedical      NotificationCategory = "medical"
	CategoryOrder        NotificationCategory = "order"
)

// Notification is an append-only log entry; entries are never mutated or
// removed.
type Notification struct {
	ID        uint64               `json:"id"`
	Recipient string               `json:"recipient"`
	Message   string               `json:"message"`
	Category  NotificationCategory `json:"category"`
	CreatedAt time.Time            `json:"created_at"`
}

func (n *Notification) EntityID() uint64      { return n.ID }
func (n *Notification) SetEntityID(id uint64) { n.ID = id }
