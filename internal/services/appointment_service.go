package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lokita-bj/lokita-backend/internal/dto"
	"github.com/lokita-bj/lokita-backend/internal/models"
	"github.com/lokita-bj/lokita-backend/internal/phone"
	"github.com/lokita-bj/lokita-backend/internal/sms"
	"gorm.io/gorm"
)

var (
	ErrMissingFields       = errors.New("all fields are required")
	ErrInvalidSlot         = errors.New("invalid time slot")
	ErrInvalidDate         = errors.New("invalid date")
	ErrHospitalNotFound    = errors.New("hospital not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrTooManyPending      = errors.New("too many pending appointment requests")
	ErrForbidden           = errors.New("not allowed to act on this appointment")
	ErrInvalidTransition   = errors.New("appointment status does not allow this transition")
)

// AppointmentService owns the appointment state machine and the notification
// side effects each transition triggers. SMS dispatch and notification rows are
// best-effort: they never roll back a committed transition.
type AppointmentService struct {
	db         *gorm.DB
	gateway    sms.Gateway
	audit      *AuditRecorder
	maxPending int
}

func NewAppointmentService(db *gorm.DB, gateway sms.Gateway, audit *AuditRecorder, maxPending int) *AppointmentService {
	return &AppointmentService{
		db:         db,
		gateway:    gateway,
		audit:      audit,
		maxPending: maxPending,
	}
}

// Create books a new PENDING appointment. requester is nil for anonymous
// callers; in that case the patient record is found or created by phone number
// and the name fields are backfilled when provided.
func (s *AppointmentService) Create(req *dto.CreateAppointmentRequest, requester *models.User, meta RequestMeta) (*models.Appointment, error) {
	if req.HospitalID == "" || req.RequestedDate == "" || req.RequestedSlot == "" || req.Reason == "" || req.PhoneNumber == "" {
		return nil, ErrMissingFields
	}

	normalized, err := phone.Normalize(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	if !models.IsValidTimeSlot(req.RequestedSlot) {
		return nil, ErrInvalidSlot
	}

	requestedDate, err := parseDate(req.RequestedDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	hospitalID, err := uuid.Parse(req.HospitalID)
	if err != nil {
		return nil, ErrHospitalNotFound
	}

	patient, err := s.resolvePatient(requester, normalized, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}

	var hospital models.Hospital
	if err := s.db.First(&hospital, "id = ?", hospitalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHospitalNotFound
		}
		return nil, fmt.Errorf("failed to load hospital: %w", err)
	}

	// Admission control: one patient may hold only maxPending PENDING requests.
	var pending int64
	if err := s.db.Model(&models.Appointment{}).
		Where("patient_id = ? AND status = ?", patient.ID, models.StatusPending).
		Count(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending appointments: %w", err)
	}
	if pending >= int64(s.maxPending) {
		return nil, ErrTooManyPending
	}

	appointment := models.Appointment{
		ID:            uuid.New(),
		PatientID:     patient.ID,
		HospitalID:    hospital.ID,
		RequestedDate: requestedDate,
		RequestedSlot: req.RequestedSlot,
		Reason:        req.Reason,
		Status:        models.StatusPending,
	}
	if err := s.db.Create(&appointment).Error; err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	appointment.Patient = patient
	appointment.Hospital = &hospital

	s.notify(patient.ID, appointment.ID, "Demande de rendez-vous reçue",
		sms.AppointmentRequestMessage(hospital.Name), patient.PhoneNumber)

	s.audit.Record(patient.ID, models.ActionCreateAppointment, "Appointment", appointment.ID,
		nil, map[string]interface{}{
			"hospitalId":    hospital.ID,
			"requestedDate": req.RequestedDate,
			"requestedSlot": req.RequestedSlot,
			"reason":        req.Reason,
		}, meta)

	return &appointment, nil
}

// GetByID returns an appointment. Anonymous reads are permitted (the
// confirmation page is reachable before login); an authenticated requester must
// be the patient, a SUPER_ADMIN, or staff of the appointment's hospital.
func (s *AppointmentService) GetByID(id uuid.UUID, requester *models.User) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.Preload("Patient").Preload("Hospital").First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}

	if requester != nil && !canViewAppointment(requester, &appointment) {
		return nil, ErrForbidden
	}

	return &appointment, nil
}

func canViewAppointment(user *models.User, appointment *models.Appointment) bool {
	if user.ID == appointment.PatientID || user.Role == models.RoleSuperAdmin {
		return true
	}
	return user.IsStaff() && user.HospitalID != nil && *user.HospitalID == appointment.HospitalID
}

// ListForPatient returns the requester's own appointments, newest request first.
func (s *AppointmentService) ListForPatient(patientID uuid.UUID) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.Preload("Hospital").
		Where("patient_id = ?", patientID).
		Order("requested_date DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListForSecretary returns the open queue (PENDING and CONFIRMED) of the
// secretary's hospital.
func (s *AppointmentService) ListForSecretary(hospitalID uuid.UUID) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.db.Preload("Patient").
		Where("hospital_id = ? AND status IN ?", hospitalID, []string{models.StatusPending, models.StatusConfirmed}).
		Order("created_at DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListTodayForDoctor returns today's confirmed schedule for the doctor's hospital.
func (s *AppointmentService) ListTodayForDoctor(hospitalID uuid.UUID) ([]models.Appointment, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	var appointments []models.Appointment
	err := s.db.Preload("Patient").
		Where("hospital_id = ? AND confirmed_date >= ? AND confirmed_date < ? AND status IN ?",
			hospitalID, today, tomorrow,
			[]string{models.StatusConfirmed, models.StatusArrived, models.StatusCompleted}).
		Order("confirmed_date ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list today's appointments: %w", err)
	}
	return appointments, nil
}

// Confirm moves a PENDING appointment to CONFIRMED with the exact date the
// secretary picked, and notifies the patient.
func (s *AppointmentService) Confirm(actor *models.User, id uuid.UUID, confirmedDate string, meta RequestMeta) (*models.Appointment, error) {
	if confirmedDate == "" {
		return nil, ErrMissingFields
	}
	date, err := parseDate(confirmedDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	appointment, err := s.loadForStaff(actor, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}
	oldStatus := appointment.Status

	now := time.Now()
	updates := map[string]interface{}{
		"status":         models.StatusConfirmed,
		"confirmed_date": date,
		"confirmed_by":   actor.ID,
		"updated_at":     now,
	}
	if err := s.db.Model(appointment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to confirm appointment: %w", err)
	}
	appointment.Status = models.StatusConfirmed
	appointment.ConfirmedDate = &date
	appointment.ConfirmedBy = &actor.ID

	dateFr := date.Format("02/01/2006 15:04")
	s.notify(appointment.PatientID, appointment.ID, "Rendez-vous confirmé",
		sms.AppointmentConfirmedMessage(appointment.Hospital.Name, dateFr),
		appointment.Patient.PhoneNumber)

	s.audit.Record(actor.ID, models.ActionConfirmAppointment, "Appointment", appointment.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": appointment.Status, "confirmedDate": date}, meta)

	return appointment, nil
}

// Reject cancels a PENDING or CONFIRMED appointment and notifies the patient.
func (s *AppointmentService) Reject(actor *models.User, id uuid.UUID, meta RequestMeta) (*models.Appointment, error) {
	appointment, err := s.loadForStaff(actor, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status != models.StatusPending && appointment.Status != models.StatusConfirmed {
		return nil, ErrInvalidTransition
	}
	oldStatus := appointment.Status

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.StatusCancelled,
		"cancelled_at": now,
		"cancelled_by": actor.ID,
		"updated_at":   now,
	}
	if err := s.db.Model(appointment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to reject appointment: %w", err)
	}
	appointment.Status = models.StatusCancelled
	appointment.CancelledAt = &now
	appointment.CancelledBy = &actor.ID

	s.notify(appointment.PatientID, appointment.ID, "Demande de rendez-vous refusée",
		sms.AppointmentRejectedMessage(appointment.Hospital.Name),
		appointment.Patient.PhoneNumber)

	s.audit.Record(actor.ID, models.ActionRejectAppointment, "Appointment", appointment.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": appointment.Status, "cancelledAt": now}, meta)

	return appointment, nil
}

// Complete marks a CONFIRMED or ARRIVED appointment as COMPLETED. No SMS is
// sent for completion.
func (s *AppointmentService) Complete(actor *models.User, id uuid.UUID, meta RequestMeta) (*models.Appointment, error) {
	appointment, err := s.loadForStaff(actor, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status != models.StatusConfirmed && appointment.Status != models.StatusArrived {
		return nil, ErrInvalidTransition
	}
	oldStatus := appointment.Status

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.StatusCompleted,
		"completed_at": now,
		"completed_by": actor.ID,
		"updated_at":   now,
	}
	if err := s.db.Model(appointment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to complete appointment: %w", err)
	}
	appointment.Status = models.StatusCompleted
	appointment.CompletedAt = &now
	appointment.CompletedBy = &actor.ID

	s.audit.Record(actor.ID, models.ActionCompleteAppointment, "Appointment", appointment.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": appointment.Status, "completedAt": now}, meta)

	return appointment, nil
}

// loadForStaff fetches the appointment and enforces the hospital-scope rule:
// staff only act on appointments of their own hospital.
func (s *AppointmentService) loadForStaff(actor *models.User, id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.Preload("Patient").Preload("Hospital").First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}

	if actor.HospitalID == nil || *actor.HospitalID != appointment.HospitalID {
		return nil, ErrForbidden
	}

	return &appointment, nil
}

// resolvePatient returns the acting patient: the authenticated requester if
// present, otherwise the user behind the phone number (created on first
// contact, names backfilled when supplied).
func (s *AppointmentService) resolvePatient(requester *models.User, normalized, firstName, lastName string) (*models.User, error) {
	if requester != nil {
		return requester, nil
	}

	var user models.User
	err := s.db.Where("phone_number = ?", normalized).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:          uuid.New(),
			PhoneNumber: normalized,
			FirstName:   firstName,
			LastName:    lastName,
			Role:        models.RolePatient,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if firstName != "" && lastName != "" {
		if err := s.db.Model(&user).Updates(map[string]interface{}{
			"first_name": firstName,
			"last_name":  lastName,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to update user name: %w", err)
		}
		user.FirstName = firstName
		user.LastName = lastName
	}

	return &user, nil
}

// notify sends the SMS and records the Notification row. Both are best-effort.
func (s *AppointmentService) notify(userID, appointmentID uuid.UUID, title, message, phoneNumber string) {
	if _, err := s.gateway.Send(phoneNumber, message); err != nil {
		slog.Error("failed to send appointment SMS", "to", phone.Mask(phoneNumber), "error", err)
	}

	now := time.Now()
	notification := models.Notification{
		ID:            uuid.New(),
		UserID:        userID,
		AppointmentID: &appointmentID,
		Type:          "SMS",
		Title:         title,
		Message:       message,
		IsSent:        true,
		SentAt:        &now,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		slog.Error("failed to record notification", "user_id", userID, "error", err)
	}
}

// parseDate accepts RFC3339 timestamps and bare dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
