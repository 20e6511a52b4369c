package service

import (
	"encoding/json"

	"shop-service/internal/model"

	"gorm.io/gorm"
)

// AuditEntry describes one recordable action.
type AuditEntry struct {
	UserID     *string
	CompanyID  *string
	Action     string
	EntityType string
	EntityID   string
	OldValue   interface{}
	NewValue   interface{}
	IPAddress  string
	UserAgent  string
}

// RecordAudit appends one audit log row. Values are serialized to JSON.
func RecordAudit(db *gorm.DB, entry AuditEntry) error {
	log := model.AuditLog{
		UserID:     entry.UserID,
		CompanyID:  entry.CompanyID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}
	if entry.OldValue != nil {
		if b, err := json.Marshal(entry.OldValue); err == nil {
			log.OldValue = string(b)
		}
	}
	if entry.NewValue != nil {
		if b, err := json.Marshal(entry.NewValue); err == nil {
			log.NewValue = string(b)
		}
	}
	return db.Create(&log).Error
}
