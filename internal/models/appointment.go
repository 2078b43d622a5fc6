package models

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Allowed transitions:
// PENDING -> CONFIRMED -> ARRIVED -> COMPLETED, with CANCELLED reachable from
// PENDING and CONFIRMED. Nothing leaves COMPLETED or CANCELLED.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusArrived   = "ARRIVED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// TimeSlots are the five day segments a patient may request; the secretary
// fixes the exact time when confirming.
var TimeSlots = []string{
	"MORNING_8_10",
	"MORNING_10_12",
	"AFTERNOON_14_16",
	"AFTERNOON_16_18",
	"EVENING_18_20",
}

func IsValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"patientId"`
	HospitalID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"hospitalId"`
	RequestedDate time.Time  `gorm:"not null" json:"requestedDate"`
	RequestedSlot string     `gorm:"size:20;not null" json:"requestedSlot"`
	Reason        string     `gorm:"type:text" json:"reason"`
	Status        string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ConfirmedDate *time.Time `json:"confirmedDate,omitempty"`
	ConfirmedBy   *uuid.UUID `gorm:"type:uuid" json:"confirmedBy,omitempty"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
	CancelledBy   *uuid.UUID `gorm:"type:uuid" json:"cancelledBy,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CompletedBy   *uuid.UUID `gorm:"type:uuid" json:"completedBy,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Patient  *User     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}
