package model

import "time"

// Prescription is immutable once created.
type Prescription struct {
	ID         uint64    `json:"id"`
	MedicineID uint64    `json:"medicine_id"`
	PatientID  uint64    `json:"patient_id"`
	DoctorID   uint64    `json:"doctor_id"`
	IssuedAt   time.Time `json:"issued_at"`
}

func (p *Prescription) EntityID() uint64      { return p.ID }
func (p *Prescription) SetEntityID(id uint64) { p.ID = id }

type PrescribeRequest struct {
	MedicineID uint64 `json:"medicine_id" binding:"required"`
	PatientID  uint64 `json:"patient_id" binding:"required"`
}
