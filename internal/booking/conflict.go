package booking

import "time"

// DoctorConflictWindow is the closed window around an appointment within which
// a doctor cannot hold a second approved appointment.
const DoctorConflictWindow = 30 * time.Minute

// ConflictKind tags which booking rule a candidate appointment violates.
type ConflictKind string

const (
	// PatientConflict means the patient already has a pending or approved
	// appointment with the same doctor on the same calendar day.
	PatientConflict ConflictKind = "PATIENT_CONFLICT"

	// DoctorConflict means the doctor already has an approved appointment
	// within DoctorConflictWindow of the candidate slot.
	DoctorConflict ConflictKind = "DOCTOR_CONFLICT"
)

// Conflict describes why a candidate slot cannot be booked, with enough detail
// for the caller to render a precise message without re-querying.
type Conflict struct {
	Kind       ConflictKind `json:"kind"`
	DoctorName string       `json:"doctor_name"`
	When       time.Time    `json:"when"`
}
