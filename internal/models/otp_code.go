package models

import (
	"time"

	"github.com/google/uuid"
)

// OtpCode is a short-lived SMS credential. At most one row per user is live
// (is_used=false and unexpired): requesting a new code invalidates all prior
// unused ones first.
type OtpCode struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	Code        string     `gorm:"size:10;not null;index" json:"-"`
	IsUsed      bool       `gorm:"default:false;index" json:"isUsed"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	MaxAttempts int        `gorm:"default:3" json:"maxAttempts"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expiresAt"`
	UsedAt      *time.Time `json:"usedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
