package services

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lokita-bj/lokita-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RequestMeta carries the caller context stamped onto every audit record.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuditRecorder appends one AuditLog row per mutating business action. Rows
// are write-once. A failed append is logged and never fails the operation it
// trails.
type AuditRecorder struct {
	db *gorm.DB
}

func NewAuditRecorder(db *gorm.DB) *AuditRecorder {
	return &AuditRecorder{db: db}
}

func (r *AuditRecorder) Record(actorID uuid.UUID, action, entityType string, entityID uuid.UUID, oldData, newData interface{}, meta RequestMeta) {
	entry := models.AuditLog{
		ID:         uuid.New(),
		UserID:     actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldData:    marshalSnapshot(oldData),
		NewData:    marshalSnapshot(newData),
		IPAddress:  orUnknown(meta.IPAddress),
		UserAgent:  orUnknown(meta.UserAgent),
	}

	if err := r.db.Create(&entry).Error; err != nil {
		slog.Error("failed to append audit log", "action", action, "entity_id", entityID, "error", err)
	}
}

func marshalSnapshot(data interface{}) datatypes.JSON {
	if data == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal audit snapshot", "error", err)
		return nil
	}
	return datatypes.JSON(b)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
