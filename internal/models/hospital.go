package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Hospital is created unapproved and becomes visible to patients only once a
// SUPER_ADMIN approves it.
type Hospital struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Address      string         `gorm:"size:255" json:"address"`
	District     string         `gorm:"size:100;index" json:"district"`
	City         string         `gorm:"size:100" json:"city"`
	PhoneNumber  string         `gorm:"size:20" json:"phoneNumber"`
	Email        string         `gorm:"size:255" json:"email"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	OpeningHours datatypes.JSON `gorm:"type:jsonb" json:"openingHours"`
	IsApproved   bool           `gorm:"default:false;index" json:"isApproved"`
	ApprovedBy   *uuid.UUID     `gorm:"type:uuid" json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time     `json:"approvedAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`

	Specialties []HospitalSpecialty `gorm:"foreignKey:HospitalID" json:"specialties,omitempty"`
}

type Specialty struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	IconName    string    `gorm:"size:50" json:"iconName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HospitalSpecialty links a hospital to a specialty it offers.
type HospitalSpecialty struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HospitalID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hospital_specialty" json:"hospitalId"`
	SpecialtyID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hospital_specialty" json:"specialtyId"`
	AvailableDoctors int       `gorm:"default:0" json:"availableDoctors"`
	CreatedAt        time.Time `json:"createdAt"`

	Specialty Specialty `gorm:"foreignKey:SpecialtyID" json:"specialty"`
}
