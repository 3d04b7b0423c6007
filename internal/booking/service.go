// Package booking contains handlers, services and structures used to manage
// appointment requests between patients and doctors: the availability calendar,
// the conflict detection rules, the approval lifecycle with its cascade, and
// the lazy expiry sweep.
package booking

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"appointment-booking/internal/apierrors"
	"appointment-booking/internal/auth"
	"appointment-booking/internal/configs"
	"appointment-booking/internal/database"

	"github.com/google/uuid"
)

// Booker determines the methods available to patients to request and
// reschedule appointments.
type Booker interface {

	// RequestAppointment creates a new pending appointment for the
	// authenticated patient, after checking availability and conflicts.
	RequestAppointment(ctx context.Context, user auth.User, request AppointmentRequest) (*Appointment, error)

	// EditAppointment reschedules a pending appointment owned by the
	// authenticated patient.
	EditAppointment(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, update AppointmentUpdate) (*Appointment, error)
}

// Decider determines the methods available to doctors to resolve pending
// appointment requests.
type Decider interface {

	// ApproveAppointment approves a pending appointment owned by the
	// authenticated doctor and cascade-rejects competing pending requests.
	ApproveAppointment(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, doctorMessage string) (*Appointment, error)

	// RejectAppointment rejects a pending appointment owned by the
	// authenticated doctor with a mandatory reason.
	RejectAppointment(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, rejectionMessage string) (*Appointment, error)
}

// Reader determines the methods available to browse appointments and doctors.
type Reader interface {

	// ListForPatient lists the authenticated patient's appointments, newest first.
	ListForPatient(ctx context.Context, user auth.User, statusFilter string) ([]Appointment, error)

	// ListForDoctor lists the authenticated doctor's appointments, newest first.
	ListForDoctor(ctx context.Context, user auth.User, statusFilter string) ([]Appointment, error)

	// GetPatientDashboard summarizes the authenticated patient's appointments.
	GetPatientDashboard(ctx context.Context, user auth.User) (*Dashboard, error)

	// GetDoctorDashboard summarizes the authenticated doctor's appointments.
	GetDoctorDashboard(ctx context.Context, user auth.User) (*Dashboard, error)

	// ListDoctors lists doctors whose name or specialty contains the given query.
	ListDoctors(ctx context.Context, query string) ([]*Doctor, error)

	// GetDoctor returns the booking view of a doctor: its committed slots and
	// the next date it operates.
	GetDoctor(ctx context.Context, doctorUUID uuid.UUID) (*DoctorDetail, error)
}

// Sweeper determines the maintenance method that purges stale pending requests.
type Sweeper interface {

	// SweepExpired rejects every pending appointment whose slot is strictly
	// before the given instant. Idempotent.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// Service determines the methods used to manage the appointment lifecycle.
type Service interface {
	Booker
	Decider
	Reader
	Sweeper
}

type defaultService struct {
	repository Repository
	config     configs.Config
	clock      func() time.Time
}

// NewService creates a new booking service.
func NewService(config configs.Config, dbConn database.Connection) Service {
	return &defaultService{
		config:     config,
		repository: newRepository(dbConn),
		clock:      time.Now,
	}
}

// now returns the current instant in the operating time zone. Every "in the
// past" and "same day" comparison goes through it.
func (d defaultService) now() time.Time {
	return d.clock().In(d.config.OperatingLocation())
}

// dayBounds returns the operating time zone calendar day of the given instant
// as a half-open [start, end) interval.
func (d defaultService) dayBounds(date time.Time) (time.Time, time.Time) {
	local := date.In(d.config.OperatingLocation())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, d.config.OperatingLocation())
	return start, start.AddDate(0, 0, 1)
}

// findConflict applies the booking rules in order: the patient-day rule first,
// the doctor-window rule second. The first violation found wins. The candidate
// is identified by excludeID so edits do not collide with themselves; a zero
// excludeID matches no row.
func (d defaultService) findConflict(ctx context.Context, doctor Doctor, patientID int64, date time.Time, excludeID int64) (*Conflict, error) {
	dayStart, dayEnd := d.dayBounds(date)
	existing, err := d.repository.FindPatientDayAppointment(ctx, doctor.ID, patientID, dayStart, dayEnd, excludeID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Conflict{Kind: PatientConflict, DoctorName: doctor.Name, When: existing.Date}, nil
	}
	approved, err := d.repository.FindApprovedInWindow(ctx, doctor.ID, date.Add(-DoctorConflictWindow), date.Add(DoctorConflictWindow))
	if err != nil {
		return nil, err
	}
	if approved != nil {
		return &Conflict{Kind: DoctorConflict, DoctorName: doctor.Name, When: approved.Date}, nil
	}
	return nil, nil
}

func (d defaultService) RequestAppointment(ctx context.Context, user auth.User, request AppointmentRequest) (*Appointment, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	patient, err := d.repository.FindPatientByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if patient == nil {
		return nil, newForbiddenError("only a patient can request an appointment")
	}
	doctor, err := d.repository.FindDoctorByUUID(ctx, request.DoctorUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrDoctorNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	date := request.Date.In(d.config.OperatingLocation())
	if !date.After(d.now()) {
		return nil, newPastDateError()
	}
	if !doctor.Availability.IsAvailableOn(date) {
		next := doctor.Availability.NextAvailable(date, d.config.AvailabilityHorizonDays())
		return nil, newAvailabilityError(doctor.Name, next)
	}
	conflict, err := d.findConflict(ctx, *doctor, patient.ID, date, 0)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if conflict != nil {
		return nil, &ConflictError{Conflict: *conflict}
	}
	appointment := Appointment{
		UUID:      uuid.New(),
		DoctorID:  doctor.ID,
		Doctor:    doctor,
		PatientID: patient.ID,
		Patient:   patient,
		Date:      date,
		Reason:    request.Reason,
		Status:    StatusPending,
	}
	dayStart, _ := d.dayBounds(date)
	if err = d.repository.InsertAppointment(ctx, appointment, dayStart); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return &appointment, nil
}

func (d defaultService) EditAppointment(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, update AppointmentUpdate) (*Appointment, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	patient, err := d.repository.FindPatientByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if patient == nil {
		return nil, newForbiddenError("only a patient can edit an appointment")
	}
	// Sweep before loading so an expired request reads as REJECTED and cannot
	// be rescheduled back to life.
	if _, err = d.SweepExpired(ctx, d.now()); err != nil {
		return nil, err
	}
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrAppointmentNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	if appointment.PatientID != patient.ID {
		return nil, newForbiddenError("you are not allowed to edit this appointment")
	}
	if appointment.Status != StatusPending {
		return nil, &InvalidStateError{Status: appointment.Status}
	}
	date := update.Date.In(d.config.OperatingLocation())
	if !date.After(d.now()) {
		return nil, newPastDateError()
	}
	doctor, err := d.repository.FindDoctorByID(ctx, appointment.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrDoctorNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	// Rescheduling re-checks the patient-day rule only: overlap with approved
	// slots stays legal until the doctor approves.
	dayStart, dayEnd := d.dayBounds(date)
	existing, err := d.repository.FindPatientDayAppointment(ctx, doctor.ID, patient.ID, dayStart, dayEnd, appointment.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if existing != nil {
		return nil, &ConflictError{Conflict: Conflict{Kind: PatientConflict, DoctorName: doctor.Name, When: existing.Date}}
	}
	if err = d.repository.UpdateAppointmentSchedule(ctx, appointment.ID, date, dayStart, update.Reason); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	appointment.Date = date
	appointment.Reason = update.Reason
	appointment.Doctor = doctor
	appointment.Patient = patient
	return appointment, nil
}

// findOwnedPending loads the appointment and checks it belongs to the given
// doctor and is still pending. Expired requests are swept first, so one whose
// slot has already passed reads as REJECTED and fails the state check.
func (d defaultService) findOwnedPending(ctx context.Context, user auth.User, appointmentUUID uuid.UUID) (*Appointment, *Doctor, error) {
	doctor, err := d.repository.FindDoctorByUserID(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, nil, newForbiddenError("only a doctor can resolve an appointment request")
	}
	if _, err = d.SweepExpired(ctx, d.now()); err != nil {
		return nil, nil, err
	}
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment == nil {
		return nil, nil, apierrors.NewAPIError(apierrors.WithDetail(ErrAppointmentNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	if appointment.DoctorID != doctor.ID {
		return nil, nil, newForbiddenError("you are not allowed to resolve this appointment")
	}
	if appointment.Status != StatusPending {
		return nil, nil, &InvalidStateError{Status: appointment.Status}
	}
	return appointment, doctor, nil
}

func (d defaultService) ApproveAppointment(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, doctorMessage string) (*Appointment, error) {
	appointment, doctor, err := d.findOwnedPending(ctx, user, appointmentUUID)
	if err != nil {
		return nil, err
	}
	windowStart := appointment.Date.Add(-DoctorConflictWindow)
	windowEnd := appointment.Date.Add(DoctorConflictWindow)
	if _, err = d.repository.ApproveAppointment(ctx, appointment.ID, doctor.ID, doctorMessage, windowStart, windowEnd); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	appointment.Status = StatusApproved
	appointment.DoctorMessage = doctorMessage
	appointment.RejectionMessage = ""
	appointment.Doctor = doctor
	return appointment, nil
}

func (d defaultService) RejectAppointment(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, rejectionMessage string) (*Appointment, error) {
	rejectionMessage = strings.TrimSpace(rejectionMessage)
	if rejectionMessage == "" {
		return nil, apierrors.NewValidationError("rejection_message", "required")
	}
	appointment, doctor, err := d.findOwnedPending(ctx, user, appointmentUUID)
	if err != nil {
		return nil, err
	}
	if err = d.repository.RejectAppointment(ctx, appointment.ID, rejectionMessage); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	appointment.Status = StatusRejected
	appointment.RejectionMessage = rejectionMessage
	appointment.DoctorMessage = ""
	appointment.Doctor = doctor
	return appointment, nil
}

func (d defaultService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	count, err := d.repository.SweepExpired(ctx, now.In(d.config.OperatingLocation()))
	if err != nil {
		return 0, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return count, nil
}

// parseStatusFilter parses the optional status query parameter. An empty
// filter means no filtering.
func parseStatusFilter(statusFilter string) (*Status, error) {
	if statusFilter == "" {
		return nil, nil
	}
	status := Status(strings.ToUpper(statusFilter))
	if !status.Valid() {
		return nil, apierrors.NewValidationError("status", ErrInvalidStatusFilter)
	}
	return &status, nil
}

func (d defaultService) ListForPatient(ctx context.Context, user auth.User, statusFilter string) ([]Appointment, error) {
	status, err := parseStatusFilter(statusFilter)
	if err != nil {
		return nil, err
	}
	patient, err := d.repository.FindPatientByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if patient == nil {
		return nil, newForbiddenError("only a patient can list its appointments")
	}
	if _, err = d.SweepExpired(ctx, d.now()); err != nil {
		return nil, err
	}
	return d.repository.ListByPatient(ctx, patient.ID, status)
}

func (d defaultService) ListForDoctor(ctx context.Context, user auth.User, statusFilter string) ([]Appointment, error) {
	status, err := parseStatusFilter(statusFilter)
	if err != nil {
		return nil, err
	}
	doctor, err := d.repository.FindDoctorByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, newForbiddenError("only a doctor can list its appointments")
	}
	if _, err = d.SweepExpired(ctx, d.now()); err != nil {
		return nil, err
	}
	return d.repository.ListByDoctor(ctx, doctor.ID, status)
}

func (d defaultService) GetPatientDashboard(ctx context.Context, user auth.User) (*Dashboard, error) {
	patient, err := d.repository.FindPatientByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if patient == nil {
		return nil, newForbiddenError("only a patient can check its dashboard")
	}
	now := d.now()
	if _, err = d.SweepExpired(ctx, now); err != nil {
		return nil, err
	}
	counts, err := d.repository.CountByPatientStatus(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	upcoming, err := d.repository.FindUpcomingByPatient(ctx, patient.ID, now)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return &Dashboard{Counts: counts, Upcoming: upcoming}, nil
}

func (d defaultService) GetDoctorDashboard(ctx context.Context, user auth.User) (*Dashboard, error) {
	doctor, err := d.repository.FindDoctorByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, newForbiddenError("only a doctor can check its dashboard")
	}
	now := d.now()
	if _, err = d.SweepExpired(ctx, now); err != nil {
		return nil, err
	}
	counts, err := d.repository.CountByDoctorStatus(ctx, doctor.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	upcoming, err := d.repository.FindUpcomingByDoctor(ctx, doctor.ID, now)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return &Dashboard{Counts: counts, Upcoming: upcoming}, nil
}

func (d defaultService) ListDoctors(ctx context.Context, query string) ([]*Doctor, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	doctors, err := d.repository.ListDoctors(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return doctors, nil
}

func (d defaultService) GetDoctor(ctx context.Context, doctorUUID uuid.UUID) (*DoctorDetail, error) {
	doctor, err := d.repository.FindDoctorByUUID(ctx, doctorUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrDoctorNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	approved, err := d.repository.ListApprovedByDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	next := doctor.Availability.NextAvailable(d.now(), d.config.AvailabilityHorizonDays())
	return &DoctorDetail{Doctor: *doctor, Approved: approved, NextAvailable: next}, nil
}
