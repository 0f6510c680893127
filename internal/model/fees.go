package model

// Fees are the two admin-mutable scalar parameters. Changes apply only to
// operations initiated afterwards; nothing in flight is re-priced.
type Fees struct {
	RegistrationFee uint64 `json:"registration_fee"`
	AppointmentFee  uint64 `json:"appointment_fee"`
}

type SetFeeRequest struct {
	Amount *uint64 `json:"amount" binding:"required"`
}

type SetOwnerRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}
