package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit actions. One record per mutating business action.
const (
	ActionSendOTP             = "SEND_OTP"
	ActionLogin               = "LOGIN"
	ActionCreateAppointment   = "CREATE_APPOINTMENT"
	ActionConfirmAppointment  = "CONFIRM_APPOINTMENT"
	ActionRejectAppointment   = "REJECT_APPOINTMENT"
	ActionCompleteAppointment = "COMPLETE_APPOINTMENT"
	ActionApproveHospital     = "APPROVE_HOSPITAL"
	ActionRejectHospital      = "REJECT_HOSPITAL"
)

// AuditLog is append-only: rows are never updated or deleted.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	Action     string         `gorm:"size:50;not null;index" json:"action"`
	EntityType string         `gorm:"size:50;not null" json:"entityType"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"entityId"`
	OldData    datatypes.JSON `gorm:"type:jsonb" json:"oldData,omitempty"`
	NewData    datatypes.JSON `gorm:"type:jsonb" json:"newData,omitempty"`
	IPAddress  string         `gorm:"size:45" json:"ipAddress"`
	UserAgent  string         `gorm:"size:255" json:"userAgent"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`
}
