package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

type Appointment struct {
	ID        uint64            `json:"id"`
	PatientID uint64            `json:"patient_id"`
	DoctorID  uint64            `json:"doctor_id"`
	Date      string            `json:"date"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Condition string            `json:"condition"`
	Message   string            `json:"message"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

func (a *Appointment) EntityID() uint64      { return a.ID }
func (a *Appointment) SetEntityID(id uint64) { a.ID = id }

type BookAppointmentRequest struct {
	DoctorID  uint64 `json:"doctor_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	From      string `json:"from" binding:"required"`
	To        string `json:"to" binding:"required"`
	Condition string `json:"condition"`
	Message   string `json:"message"`
}
