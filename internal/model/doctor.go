package model

import "time"

type Doctor struct {
	ID                   uint64    `json:"id"`
	AccountID            string    `json:"account_id"`
	Title                string    `json:"title"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	Gender               string    `json:"gender"`
	Designation          string    `json:"designation"`
	LastWork             string    `json:"last_work"`
	Email                string    `json:"email"`
	CollegeName          string    `json:"college_name"`
	CollegeID            string    `json:"college_id"`
	JoiningYear          int       `json:"joining_year"`
	EndYear              int       `json:"end_year"`
	Specialization       string    `json:"specialization"`
	RegistrationID       string    `json:"registration_id"`
	CollegeAddress       Address   `json:"college_address"`
	ProfilePic           string    `json:"profile_pic"`
	Bio                  string    `json:"bio"`
	AppointmentCount     uint64    `json:"appointment_count"`
	SuccessfulTreatments uint64    `json:"successful_treatments"`
	Approved             bool      `json:"approved"`
	CreatedAt            time.Time `json:"created_at"`
}

func (d *Doctor) EntityID() uint64      { return d.ID }
func (d *Doctor) SetEntityID(id uint64) { d.ID = id }

// Popularity is the score used to rank doctors.
func (d *Doctor) Popularity() uint64 {
	return d.AppointmentCount + d.SuccessfulTreatments
}

type RegisterDoctorRequest struct {
	// ID is optional; when supplied, registration fails on collision.
	ID             *uint64 `json:"id"`
	AccountID      string  `json:"account_id" binding:"required"`
	Password       string  `json:"password" binding:"required,min=8"`
	Title          string  `json:"title"`
	FirstName      string  `json:"first_name" binding:"required"`
	LastName       string  `json:"last_name" binding:"required"`
	Gender         string  `json:"gender"`
	Designation    string  `json:"designation"`
	LastWork       string  `json:"last_work"`
	Email          string  `json:"email" binding:"required,email"`
	CollegeName    string  `json:"college_name"`
	CollegeID      string  `json:"college_id"`
	JoiningYear    int     `json:"joining_year"`
	EndYear        int     `json:"end_year"`
	Specialization string  `json:"specialization"`
	RegistrationID string  `json:"registration_id"`
	CollegeAddress Address `json:"college_address"`
	ProfilePic     string  `json:"profile_pic"`
	Bio            string  `json:"bio"`
}
