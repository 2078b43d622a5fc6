package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lokita-bj/lokita-backend/internal/models"
	"gorm.io/gorm"
)

var ErrHospitalHasAppointments = errors.New("hospital still has active appointments")

// HospitalService manages the hospital catalog and the SUPER_ADMIN approval
// workflow.
type HospitalService struct {
	db    *gorm.DB
	audit *AuditRecorder
}

func NewHospitalService(db *gorm.DB, audit *AuditRecorder) *HospitalService {
	return &HospitalService{db: db, audit: audit}
}

// HospitalFilter narrows the public hospital listing.
type HospitalFilter struct {
	District    string
	SpecialtyID string
	Search      string
}

// ListApproved returns approved hospitals only; unapproved ones are invisible
// to patients.
func (s *HospitalService) ListApproved(filter HospitalFilter) ([]models.Hospital, error) {
	query := s.db.Preload("Specialties.Specialty").
		Where("is_approved = ?", true)

	if filter.District != "" {
		query = query.Where("district = ?", filter.District)
	}
	if filter.Search != "" {
		// LOWER on both sides keeps the match case-insensitive on every driver.
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", pattern, pattern)
	}
	if filter.SpecialtyID != "" {
		query = query.Where("id IN (?)",
			s.db.Model(&models.HospitalSpecialty{}).
				Select("hospital_id").
				Where("specialty_id = ?", filter.SpecialtyID))
	}

	var hospitals []models.Hospital
	if err := query.Order("name ASC").Find(&hospitals).Error; err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}

// ListAll returns every hospital for the admin dashboard, unapproved first.
func (s *HospitalService) ListAll() ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := s.db.Preload("Specialties.Specialty").
		Order("is_approved ASC").
		Order("created_at DESC").
		Find(&hospitals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}

// ListSpecialties returns the specialty catalog.
func (s *HospitalService) ListSpecialties() ([]models.Specialty, error) {
	var specialties []models.Specialty
	if err := s.db.Order("name ASC").Find(&specialties).Error; err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

// Approve marks a hospital visible to patients.
func (s *HospitalService) Approve(actor *models.User, id uuid.UUID, meta RequestMeta) (*models.Hospital, error) {
	var hospital models.Hospital
	if err := s.db.First(&hospital, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHospitalNotFound
		}
		return nil, fmt.Errorf("failed to load hospital: %w", err)
	}
	wasApproved := hospital.IsApproved

	now := time.Now()
	updates := map[string]interface{}{
		"is_approved": true,
		"approved_by": actor.ID,
		"approved_at": now,
	}
	if err := s.db.Model(&hospital).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to approve hospital: %w", err)
	}
	hospital.IsApproved = true
	hospital.ApprovedBy = &actor.ID
	hospital.ApprovedAt = &now

	s.audit.Record(actor.ID, models.ActionApproveHospital, "Hospital", hospital.ID,
		map[string]interface{}{"isApproved": wasApproved},
		map[string]interface{}{"isApproved": true, "approvedAt": now}, meta)

	return &hospital, nil
}

// Reject hard-deletes a hospital. Refused while any appointment is still
// PENDING, CONFIRMED or ARRIVED. The audit record is written before the delete
// since the row will be gone.
func (s *HospitalService) Reject(actor *models.User, id uuid.UUID, meta RequestMeta) error {
	var hospital models.Hospital
	if err := s.db.First(&hospital, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHospitalNotFound
		}
		return fmt.Errorf("failed to load hospital: %w", err)
	}

	var active int64
	err := s.db.Model(&models.Appointment{}).
		Where("hospital_id = ? AND status IN ?", id,
			[]string{models.StatusPending, models.StatusConfirmed, models.StatusArrived}).
		Count(&active).Error
	if err != nil {
		return fmt.Errorf("failed to count active appointments: %w", err)
	}
	if active > 0 {
		return fmt.Errorf("%w: %d active", ErrHospitalHasAppointments, active)
	}

	s.audit.Record(actor.ID, models.ActionRejectHospital, "Hospital", hospital.ID,
		map[string]interface{}{
			"name":       hospital.Name,
			"address":    hospital.Address,
			"isApproved": hospital.IsApproved,
		}, nil, meta)

	if err := s.db.Delete(&hospital).Error; err != nil {
		return fmt.Errorf("failed to delete hospital: %w", err)
	}
	return nil
}
