package booking

import (
	"fmt"
	"time"
)

const (
	ErrDoctorNotFound      = "doctor not found"
	ErrAppointmentNotFound = "appointment not found"
	ErrInvalidIdentifier   = "invalid identifier"
	ErrInvalidStatusFilter = "invalid status filter"
)

// PastDateError is returned when the requested or edited slot is not strictly
// in the future of the operating time zone's now.
type PastDateError struct {
	Detail string `json:"detail"`
}

func newPastDateError() *PastDateError {
	return &PastDateError{Detail: "the appointment date must be in the future"}
}

func (e PastDateError) Error() string {
	return e.Detail
}

// AvailabilityError is returned when the doctor does not operate on the
// requested weekday. NextAvailable carries the first operating date within the
// search horizon, or nil if there is none.
type AvailabilityError struct {
	Detail        string     `json:"detail"`
	NextAvailable *time.Time `json:"next_available,omitempty"`
}

func newAvailabilityError(doctorName string, next *time.Time) *AvailabilityError {
	return &AvailabilityError{
		Detail:        fmt.Sprintf("Dr. %s is not available on the chosen day", doctorName),
		NextAvailable: next,
	}
}

func (e AvailabilityError) Error() string {
	return e.Detail
}

// ConflictError is returned when booking the candidate slot would violate the
// patient-day or the doctor-window rule.
type ConflictError struct {
	Conflict Conflict `json:"conflict"`
}

func (e ConflictError) Error() string {
	switch e.Conflict.Kind {
	case PatientConflict:
		return fmt.Sprintf("you already have an appointment with Dr. %s on %s", e.Conflict.DoctorName, e.Conflict.When.Format("02 Jan 2006"))
	case DoctorConflict:
		return fmt.Sprintf("Dr. %s already has an appointment at %s", e.Conflict.DoctorName, e.Conflict.When.Format("02 Jan 2006 15:04"))
	}
	return "conflicting appointment"
}

// InvalidStateError is returned when a transition is attempted on an
// appointment that is no longer pending.
type InvalidStateError struct {
	Status Status `json:"status"`
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("the appointment was already processed (status %s)", e.Status)
}

// ForbiddenError is returned when the actor is not the owning patient or doctor
// of the appointment, or lacks the role the operation requires.
type ForbiddenError struct {
	Detail string `json:"detail"`
}

func newForbiddenError(detail string) *ForbiddenError {
	return &ForbiddenError{Detail: detail}
}

func (e ForbiddenError) Error() string {
	return e.Detail
}
