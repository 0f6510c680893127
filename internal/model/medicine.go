package model

import "time"

type Medicine struct {
	ID                  uint64    `json:"id"`
	DoctorID            uint64    `json:"doctor_id"`
	Name                string    `json:"name"`
	Brand               string    `json:"brand"`
	Manufacturer        string    `json:"manufacturer"`
	ManufacturingDate   string    `json:"manufacturing_date"`
	ExpiryDate          string    `json:"expiry_date"`
	CompanyEmail        string    `json:"company_email"`
	Phone               string    `json:"phone"`
	Image               string    `json:"image"`
	ManufacturerAddress Address   `json:"manufacturer_address"`
	CurrentLocation     Address   `json:"current_location"`
	Price               uint64    `json:"price"`
	Quantity            uint64    `json:"quantity"`
	Discount            uint64    `json:"discount"`
	Available           bool      `json:"available"`
	CreatedAt           time.Time `json:"created_at"`
}

func (m *Medicine) EntityID() uint64      { return m.ID }
func (m *Medicine) SetEntityID(id uint64) { m.ID = id }

// UnitPrice is the discounted price per unit, truncated toward zero.
func (m *Medicine) UnitPrice() uint64 {
	return m.Price * (100 - m.Discount) / 100
}

type AddMedicineRequest struct {
	DoctorID            uint64  `json:"doctor_id"`
	Name                string  `json:"name" binding:"required"`
	Brand               string  `json:"brand"`
	Manufacturer        string  `json:"manufacturer"`
	ManufacturingDate   string  `json:"manufacturing_date"`
	ExpiryDate          string  `json:"expiry_date"`
	CompanyEmail        string  `json:"company_email"`
	Phone               string  `json:"phone"`
	Image               string  `json:"image"`
	ManufacturerAddress Address `json:"manufacturer_address"`
	CurrentLocation     Address `json:"current_location"`
	Price               uint64  `json:"price" binding:"required"`
	Quantity            uint64  `json:"quantity"`
	Discount            uint64  `json:"discount"`
}
