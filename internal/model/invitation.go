package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation lets a company invite a user by email with a pre-assigned role
type Invitation struct {
	ID              string    `json:"id" gorm:"type:char(36);primaryKey"`
	Email           string    `json:"email" gorm:"type:varchar(255);index;not null"`
	Role            UserRole  `json:"role" gorm:"not null"`
	CompanyID       *string   `json:"company_id,omitempty" gorm:"type:char(36)"`
	Token           string    `json:"token" gorm:"type:varchar(255);uniqueIndex;not null"`
	ExpiresAt       time.Time `json:"expires_at" gorm:"not null"`
	IsAccepted      bool      `json:"is_accepted" gorm:"default:false"`
	IsRejected      bool      `json:"is_rejected" gorm:"default:false"`
	InvitedByUserID string    `json:"invited_by_user_id" gorm:"type:char(36)"`
	CreatedAt       time.Time `json:"created_at"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// EmailVerification holds a one-time OTP for verifying a user's email
type EmailVerification struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID     string    `json:"user_id" gorm:"type:char(36);index;not null"`
	Email      string    `json:"email" gorm:"type:varchar(255);not null"`
	OTP        string    `json:"-" gorm:"type:varchar(10);not null"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null"`
	IsVerified bool      `json:"is_verified" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
}

func (v *EmailVerification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// AuditLog records security-relevant actions such as logins and company
// approval decisions
type AuditLog struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID     *string   `json:"user_id,omitempty" gorm:"type:char(36);index"`
	CompanyID  *string   `json:"company_id,omitempty" gorm:"type:char(36);index"`
	Action     string    `json:"action" gorm:"type:varchar(100);not null"`
	EntityType string    `json:"entity_type,omitempty" gorm:"type:varchar(50)"`
	EntityID   string    `json:"entity_id,omitempty" gorm:"type:char(36)"`
	OldValue   string    `json:"old_value,omitempty" gorm:"type:text"`
	NewValue   string    `json:"new_value,omitempty" gorm:"type:text"`
	IPAddress  string    `json:"ip_address,omitempty" gorm:"type:varchar(45)"`
	UserAgent  string    `json:"user_agent,omitempty" gorm:"type:varchar(255)"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
