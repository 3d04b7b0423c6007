package booking

import (
	"time"

	"appointment-booking/internal/apierrors"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an appointment. PENDING is the
// initial state; APPROVED and REJECTED are terminal.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Valid checks if the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

const (
	// CascadeRejectionMessage is stored on pending appointments rejected because
	// another appointment in the same window was approved.
	CascadeRejectionMessage = "Rejected due to conflict with another approved appointment."

	// AutoRejectionMessage is stored on pending appointments whose slot has passed.
	AutoRejectionMessage = "Time passed, auto-rejected."
)

type Patient struct {
	ID     int64     `json:"-" dbfield:"id"`
	UserID int64     `json:"-" dbfield:"user_id"`
	UUID   uuid.UUID `json:"uuid" dbfield:"uuid"`
	Name   string    `json:"name" dbfield:"name"`
	Email  string    `json:"email" dbfield:"email"`
}

type Doctor struct {
	ID           int64        `json:"-" dbfield:"id"`
	UserID       int64        `json:"-" dbfield:"user_id"`
	UUID         uuid.UUID    `json:"uuid" dbfield:"uuid"`
	Name         string       `json:"name" dbfield:"name"`
	Email        string       `json:"email" dbfield:"email"`
	Specialty    string       `json:"specialty" dbfield:"specialty"`
	Availability Availability `json:"availability" dbfield:"availability"`
}

type Appointment struct {
	ID               int64     `json:"-" dbfield:"id"`
	UUID             uuid.UUID `json:"uuid" dbfield:"uuid"`
	DoctorID         int64     `json:"-" dbfield:"doctor_id"`
	Doctor           *Doctor   `json:"doctor,omitempty"`
	PatientID        int64     `json:"-" dbfield:"patient_id"`
	Patient          *Patient  `json:"patient,omitempty"`
	Date             time.Time `json:"date" dbfield:"date"`
	Reason           string    `json:"reason" dbfield:"reason"`
	Status           Status    `json:"status" dbfield:"status"`
	DoctorMessage    string    `json:"doctor_message,omitempty" dbfield:"doctor_message"`
	RejectionMessage string    `json:"rejection_message,omitempty" dbfield:"rejection_message"`
}

// AppointmentRequest holds the data a patient sends to request a new appointment.
type AppointmentRequest struct {
	DoctorUUID uuid.UUID `json:"doctor_uuid"`
	Date       time.Time `json:"date"`
	Reason     string    `json:"reason"`
}

// Validate checks if the given request is valid.
func (a AppointmentRequest) Validate() error {
	if a.DoctorUUID == (uuid.UUID{}) {
		return apierrors.NewValidationError("doctor_uuid", "required")
	}
	if a.Date.IsZero() {
		return apierrors.NewValidationError("date", "required")
	}
	if a.Reason == "" {
		return apierrors.NewValidationError("reason", "required")
	}
	return nil
}

// AppointmentUpdate holds the data a patient sends to reschedule a pending appointment.
type AppointmentUpdate struct {
	Date   time.Time `json:"date"`
	Reason string    `json:"reason"`
}

// Validate checks if the given update is valid.
func (a AppointmentUpdate) Validate() error {
	if a.Date.IsZero() {
		return apierrors.NewValidationError("date", "required")
	}
	if a.Reason == "" {
		return apierrors.NewValidationError("reason", "required")
	}
	return nil
}

// Decision holds the message a doctor attaches when approving or rejecting a request.
type Decision struct {
	Message string `json:"message"`
}

// Dashboard summarizes the appointments of a patient or a doctor.
type Dashboard struct {
	Counts   map[Status]int64 `json:"counts"`
	Upcoming *Appointment     `json:"upcoming,omitempty"`
}

// DoctorDetail is the doctor view shown to patients when booking, including the
// already committed slots and the next date the doctor operates.
type DoctorDetail struct {
	Doctor        Doctor        `json:"doctor"`
	Approved      []Appointment `json:"approved_appointments"`
	NextAvailable *time.Time    `json:"next_available,omitempty"`
}
