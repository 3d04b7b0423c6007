package booking

import (
	"context"
	"fmt"
	"time"

	"appointment-booking/internal/database"

	"github.com/google/uuid"
)

const (
	findDoctorByUUIDQuery   = "SELECT id, uuid, user_id, name, email, specialty, availability FROM tb_doctor WHERE uuid = $1"
	findDoctorByIDQuery     = "SELECT id, uuid, user_id, name, email, specialty, availability FROM tb_doctor WHERE id = $1"
	findDoctorByUserIDQuery = "SELECT id, uuid, user_id, name, email, specialty, availability FROM tb_doctor WHERE user_id = $1"
	listDoctorsQuery        = "SELECT id, uuid, user_id, name, email, specialty, availability FROM tb_doctor WHERE name ILIKE $1 OR specialty ILIKE $1 ORDER BY name"

	findPatientByIDQuery     = "SELECT id, uuid, user_id, name, email FROM tb_patient WHERE id = $1"
	findPatientByUserIDQuery = "SELECT id, uuid, user_id, name, email FROM tb_patient WHERE user_id = $1"

	appointmentColumns = "id, uuid, doctor_id, patient_id, date, reason, status, doctor_message, rejection_message"

	findAppointmentByUUIDQuery     = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE uuid = $1"
	insertAppointmentQuery         = "INSERT INTO tb_appointment (uuid, doctor_id, patient_id, date, day, reason, status) VALUES ($1, $2, $3, $4, $5, $6, $7)"
	updateAppointmentScheduleQuery = "UPDATE tb_appointment SET date = $1, day = $2, reason = $3 WHERE id = $4"

	findPatientDayAppointmentQuery = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE doctor_id = $1 AND patient_id = $2 AND status IN ('PENDING', 'APPROVED') AND date >= $3 AND date < $4 AND id <> $5"
	findApprovedInWindowQuery      = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE doctor_id = $1 AND status = 'APPROVED' AND date BETWEEN $2 AND $3"

	approveAppointmentQuery = "UPDATE tb_appointment SET status = 'APPROVED', doctor_message = $1, rejection_message = '' WHERE id = $2"
	cascadeRejectQuery      = "UPDATE tb_appointment SET status = 'REJECTED', rejection_message = $1, doctor_message = '' WHERE doctor_id = $2 AND status = 'PENDING' AND id <> $3 AND date BETWEEN $4 AND $5"
	rejectAppointmentQuery  = "UPDATE tb_appointment SET status = 'REJECTED', rejection_message = $1, doctor_message = '' WHERE id = $2"
	sweepExpiredQuery       = "UPDATE tb_appointment SET status = 'REJECTED', rejection_message = $1 WHERE status = 'PENDING' AND date < $2"

	listByPatientQuery        = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE patient_id = $1 ORDER BY date DESC"
	listByPatientStatusQuery  = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE patient_id = $1 AND status = $2 ORDER BY date DESC"
	listByDoctorQuery         = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE doctor_id = $1 ORDER BY date DESC"
	listByDoctorStatusQuery   = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE doctor_id = $1 AND status = $2 ORDER BY date DESC"
	listApprovedByDoctorQuery = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE doctor_id = $1 AND status = 'APPROVED' ORDER BY date DESC"

	countByPatientStatusQuery = "SELECT status, COUNT(id) FROM tb_appointment WHERE patient_id = $1 GROUP BY status"
	countByDoctorStatusQuery  = "SELECT status, COUNT(id) FROM tb_appointment WHERE doctor_id = $1 GROUP BY status"

	findUpcomingByPatientQuery = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE patient_id = $1 AND status = 'APPROVED' AND date >= $2 ORDER BY date LIMIT 1"
	findUpcomingByDoctorQuery  = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE doctor_id = $1 AND status = 'APPROVED' AND date >= $2 ORDER BY date LIMIT 1"
)

// Repository provides access to booking data.
type Repository interface {

	// FindDoctorByUUID finds a doctor by its UUID.
	FindDoctorByUUID(ctx context.Context, uuid uuid.UUID) (*Doctor, error)

	// FindDoctorByID finds a doctor by its ID.
	FindDoctorByID(ctx context.Context, id int64) (*Doctor, error)

	// FindDoctorByUserID finds a doctor by its user ID.
	FindDoctorByUserID(ctx context.Context, userID int64) (*Doctor, error)

	// ListDoctors lists doctors whose name or specialty matches the given pattern.
	ListDoctors(ctx context.Context, pattern string) ([]*Doctor, error)

	// FindPatientByID finds a patient by its ID.
	FindPatientByID(ctx context.Context, id int64) (*Patient, error)

	// FindPatientByUserID finds a patient by its user ID.
	FindPatientByUserID(ctx context.Context, userID int64) (*Patient, error)

	// FindAppointmentByUUID finds an appointment by its UUID.
	FindAppointmentByUUID(ctx context.Context, uuid uuid.UUID) (*Appointment, error)

	// InsertAppointment inserts a new appointment. The day is the calendar day
	// of the appointment date in the operating time zone and backs the
	// storage-level uniqueness net.
	InsertAppointment(ctx context.Context, appointment Appointment, day time.Time) error

	// UpdateAppointmentSchedule mutates the date, day and reason of an
	// appointment in place.
	UpdateAppointmentSchedule(ctx context.Context, appointmentID int64, date, day time.Time, reason string) error

	// FindPatientDayAppointment finds a pending or approved appointment of the
	// given patient with the given doctor within [dayStart, dayEnd), excluding
	// the appointment with the given ID.
	FindPatientDayAppointment(ctx context.Context, doctorID, patientID int64, dayStart, dayEnd time.Time, excludeID int64) (*Appointment, error)

	// FindApprovedInWindow finds an approved appointment of the given doctor
	// with a date within the closed [windowStart, windowEnd] interval.
	FindApprovedInWindow(ctx context.Context, doctorID int64, windowStart, windowEnd time.Time) (*Appointment, error)

	// ApproveAppointment approves the given appointment and cascade-rejects
	// every other pending appointment of the same doctor within the closed
	// window, under a single transaction. It returns how many appointments
	// were cascade-rejected.
	ApproveAppointment(ctx context.Context, appointmentID int64, doctorID int64, doctorMessage string, windowStart, windowEnd time.Time) (int64, error)

	// RejectAppointment rejects the given appointment with the given message.
	RejectAppointment(ctx context.Context, appointmentID int64, rejectionMessage string) error

	// SweepExpired rejects every pending appointment whose date is strictly
	// before the given instant and returns how many were affected.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)

	// ListByPatient lists the patient's appointments, optionally filtered by
	// status, ordered by date descending.
	ListByPatient(ctx context.Context, patientID int64, status *Status) ([]Appointment, error)

	// ListByDoctor lists the doctor's appointments, optionally filtered by
	// status, ordered by date descending.
	ListByDoctor(ctx context.Context, doctorID int64, status *Status) ([]Appointment, error)

	// ListApprovedByDoctor lists the doctor's approved appointments, ordered by
	// date descending.
	ListApprovedByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error)

	// CountByPatientStatus counts the patient's appointments grouped by status.
	CountByPatientStatus(ctx context.Context, patientID int64) (map[Status]int64, error)

	// CountByDoctorStatus counts the doctor's appointments grouped by status.
	CountByDoctorStatus(ctx context.Context, doctorID int64) (map[Status]int64, error)

	// FindUpcomingByPatient finds the patient's next approved appointment from the given instant.
	FindUpcomingByPatient(ctx context.Context, patientID int64, from time.Time) (*Appointment, error)

	// FindUpcomingByDoctor finds the doctor's next approved appointment from the given instant.
	FindUpcomingByDoctor(ctx context.Context, doctorID int64, from time.Time) (*Appointment, error)
}

type defaultRepository struct {
	dbConn database.Connection
}

// newRepository creates a new Repository.
func newRepository(dbConn database.Connection) Repository {
	return &defaultRepository{dbConn: dbConn}
}

func (d defaultRepository) findDoctor(ctx context.Context, query string, param interface{}) (*Doctor, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, param)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	doctor := new(Doctor)
	for rows.Next() {
		if err = database.TransformRow(rows, doctor); err != nil {
			return nil, err
		}
		if doctor.ID > 0 {
			return doctor, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) FindDoctorByUUID(ctx context.Context, uuid uuid.UUID) (*Doctor, error) {
	return d.findDoctor(ctx, findDoctorByUUIDQuery, uuid)
}

func (d defaultRepository) FindDoctorByID(ctx context.Context, id int64) (*Doctor, error) {
	return d.findDoctor(ctx, findDoctorByIDQuery, id)
}

func (d defaultRepository) FindDoctorByUserID(ctx context.Context, userID int64) (*Doctor, error) {
	return d.findDoctor(ctx, findDoctorByUserIDQuery, userID)
}

func (d defaultRepository) ListDoctors(ctx context.Context, pattern string) ([]*Doctor, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listDoctorsQuery, pattern)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	doctors := make([]*Doctor, 0)
	for rows.Next() {
		doctor := new(Doctor)
		if err = database.TransformRow(rows, doctor); err != nil {
			return nil, err
		}
		doctors = append(doctors, doctor)
	}
	return doctors, nil
}

func (d defaultRepository) findPatient(ctx context.Context, query string, param interface{}) (*Patient, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, param)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	patient := new(Patient)
	for rows.Next() {
		if err = database.TransformRow(rows, patient); err != nil {
			return nil, err
		}
		if patient.ID > 0 {
			return patient, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) FindPatientByID(ctx context.Context, id int64) (*Patient, error) {
	return d.findPatient(ctx, findPatientByIDQuery, id)
}

func (d defaultRepository) FindPatientByUserID(ctx context.Context, userID int64) (*Patient, error) {
	return d.findPatient(ctx, findPatientByUserIDQuery, userID)
}

func (d defaultRepository) findAppointment(ctx context.Context, query string, params ...interface{}) (*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointment := new(Appointment)
	for rows.Next() {
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		if appointment.ID > 0 {
			return appointment, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) FindAppointmentByUUID(ctx context.Context, uuid uuid.UUID) (*Appointment, error) {
	return d.findAppointment(ctx, findAppointmentByUUIDQuery, uuid)
}

func (d defaultRepository) InsertAppointment(ctx context.Context, appointment Appointment, day time.Time) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	params := make([]interface{}, 7)
	params[0] = appointment.UUID
	params[1] = appointment.DoctorID
	params[2] = appointment.PatientID
	params[3] = appointment.Date
	params[4] = day.Format(time.DateOnly)
	params[5] = appointment.Reason
	params[6] = appointment.Status
	result, err := d.dbConn.DB().ExecContext(ctx, insertAppointmentQuery, params...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("appointment not inserted")
	}
	return nil
}

// The day is bound as a plain date literal so the database does not shift it
// through the session time zone.
func (d defaultRepository) UpdateAppointmentSchedule(ctx context.Context, appointmentID int64, date, day time.Time, reason string) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, updateAppointmentScheduleQuery, date, day.Format(time.DateOnly), reason, appointmentID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("appointment not updated")
	}
	return nil
}

func (d defaultRepository) FindPatientDayAppointment(ctx context.Context, doctorID, patientID int64, dayStart, dayEnd time.Time, excludeID int64) (*Appointment, error) {
	return d.findAppointment(ctx, findPatientDayAppointmentQuery, doctorID, patientID, dayStart, dayEnd, excludeID)
}

func (d defaultRepository) FindApprovedInWindow(ctx context.Context, doctorID int64, windowStart, windowEnd time.Time) (*Appointment, error) {
	return d.findAppointment(ctx, findApprovedInWindowQuery, doctorID, windowStart, windowEnd)
}

func (d defaultRepository) ApproveAppointment(ctx context.Context, appointmentID int64, doctorID int64, doctorMessage string, windowStart, windowEnd time.Time) (int64, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	tx, err := d.dbConn.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	result, err := tx.ExecContext(ctx, approveAppointmentQuery, doctorMessage, appointmentID)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return 0, fmt.Errorf("appointment not approved")
	}
	result, err = tx.ExecContext(ctx, cascadeRejectQuery, CascadeRejectionMessage, doctorID, appointmentID, windowStart, windowEnd)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	cascaded, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return cascaded, nil
}

func (d defaultRepository) RejectAppointment(ctx context.Context, appointmentID int64, rejectionMessage string) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, rejectAppointmentQuery, rejectionMessage, appointmentID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("appointment not rejected")
	}
	return nil
}

func (d defaultRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, sweepExpiredQuery, AutoRejectionMessage, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d defaultRepository) listAppointments(ctx context.Context, query string, params ...interface{}) ([]Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointments := make([]Appointment, 0)
	for rows.Next() {
		appointment := new(Appointment)
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		appointments = append(appointments, *appointment)
	}
	return appointments, nil
}

func (d defaultRepository) ListByPatient(ctx context.Context, patientID int64, status *Status) ([]Appointment, error) {
	if status == nil {
		return d.listAppointments(ctx, listByPatientQuery, patientID)
	}
	return d.listAppointments(ctx, listByPatientStatusQuery, patientID, *status)
}

func (d defaultRepository) ListByDoctor(ctx context.Context, doctorID int64, status *Status) ([]Appointment, error) {
	if status == nil {
		return d.listAppointments(ctx, listByDoctorQuery, doctorID)
	}
	return d.listAppointments(ctx, listByDoctorStatusQuery, doctorID, *status)
}

func (d defaultRepository) ListApprovedByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	return d.listAppointments(ctx, listApprovedByDoctorQuery, doctorID)
}

func (d defaultRepository) countByStatus(ctx context.Context, query string, param int64) (map[Status]int64, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, param)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	counts := make(map[Status]int64)
	for rows.Next() {
		var status Status
		var count int64
		if err = rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, nil
}

func (d defaultRepository) CountByPatientStatus(ctx context.Context, patientID int64) (map[Status]int64, error) {
	return d.countByStatus(ctx, countByPatientStatusQuery, patientID)
}

func (d defaultRepository) CountByDoctorStatus(ctx context.Context, doctorID int64) (map[Status]int64, error) {
	return d.countByStatus(ctx, countByDoctorStatusQuery, doctorID)
}

func (d defaultRepository) FindUpcomingByPatient(ctx context.Context, patientID int64, from time.Time) (*Appointment, error) {
	return d.findAppointment(ctx, findUpcomingByPatientQuery, patientID, from)
}

func (d defaultRepository) FindUpcomingByDoctor(ctx context.Context, doctorID int64, from time.Time) (*Appointment, error) {
	return d.findAppointment(ctx, findUpcomingByDoctorQuery, doctorID, from)
}
