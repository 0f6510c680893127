package model

import "time"

type Patient struct {
	ID             uint64    `json:"id"`
	AccountID      string    `json:"account_id"`
	Title          string    `json:"title"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Gender         string    `json:"gender"`
	Condition      string    `json:"condition"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	DOB            string    `json:"dob"`
	City           string    `json:"city"`
	Address        string    `json:"address"`
	Doctor         string    `json:"doctor"`
	ProfilePic     string    `json:"profile_pic"`
	Message        string    `json:"message"`
	MedicalHistory []string  `json:"medical_history"`
	BoughtMedicine []uint64  `json:"bought_medicine"`
	CreatedAt      time.Time `json:"created_at"`
}

func (p *Patient) EntityID() uint64      { return p.ID }
func (p *Patient) SetEntityID(id uint64) { p.ID = id }

type RegisterPatientRequest struct {
	AccountID  string `json:"account_id" binding:"required"`
	Password   string `json:"password" binding:"required,min=8"`
	Title      string `json:"title"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Gender     string `json:"gender"`
	Condition  string `json:"condition"`
	Phone      string `json:"phone"`
	Email      string `json:"email" binding:"required,email"`
	DOB        string `json:"dob"`
	City       string `json:"city"`
	Address    string `json:"address"`
	Doctor     string `json:"doctor"`
	ProfilePic string `json:"profile_pic"`
	Message    string `json:"message"`
}

type MedicalNoteRequest struct {
	Note string `json:"note" binding:"required"`
}
