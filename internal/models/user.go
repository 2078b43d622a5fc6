package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user can hold. Staff roles (SECRETARY, DOCTOR) are always bound to a hospital.
const (
	RolePatient    = "PATIENT"
	RoleSecretary  = "SECRETARY"
	RoleDoctor     = "DOCTOR"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// User is created lazily: on the first OTP request or the first anonymous
// appointment request for an unseen phone number.
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PhoneNumber     string     `gorm:"size:20;not null;uniqueIndex" json:"phoneNumber"`
	FirstName       string     `gorm:"size:100" json:"firstName"`
	LastName        string     `gorm:"size:100" json:"lastName"`
	Role            string     `gorm:"size:20;not null;default:'PATIENT'" json:"role"`
	HospitalID      *uuid.UUID `gorm:"type:uuid;index" json:"hospitalId,omitempty"`
	IsPhoneVerified bool       `gorm:"default:false" json:"isPhoneVerified"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// IsStaff reports whether the user acts on behalf of a hospital.
func (u *User) IsStaff() bool {
	return u.Role == RoleSecretary || u.Role == RoleDoctor
}
