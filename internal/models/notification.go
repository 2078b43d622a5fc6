package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification records every message dispatched to a patient. IsSent is set as
// soon as the dispatch call is invoked; delivery confirmation is out of scope.
type Notification struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointmentId,omitempty"`
	Type          string     `gorm:"size:20;not null;default:'SMS'" json:"type"`
	Title         string     `gorm:"size:255" json:"title"`
	Message       string     `gorm:"type:text" json:"message"`
	IsSent        bool       `gorm:"default:false" json:"isSent"`
	SentAt        *time.Time `json:"sentAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
