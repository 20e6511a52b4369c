package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole is the role of a user inside a company
type UserRole int

const (
	RoleSystemAdmin UserRole = iota
	RoleOwner
	RoleManager
	RoleStaff
	RoleUnassigned
)

func (r UserRole) String() string {
	switch r {
	case RoleSystemAdmin:
		return "SystemAdmin"
	case RoleOwner:
		return "Owner"
	case RoleManager:
		return "Manager"
	case RoleStaff:
		return "Staff"
	case RoleUnassigned:
		return "UnAssignedUser"
	default:
		return "Unknown"
	}
}

// User represents the user model stored in the database
type User struct {
	ID                 string     `json:"id" gorm:"type:char(36);primaryKey"`
	Email              string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name               string     `json:"name" gorm:"type:varchar(255);not null"`
	Phone              string     `json:"phone,omitempty" gorm:"type:varchar(20)"`
	PasswordHash       string     `json:"-" gorm:"type:varchar(255)"`
	Role               UserRole   `json:"role" gorm:"default:3"`
	IsActive           int        `json:"is_active" gorm:"default:0"`
	ShopName           string     `json:"shop_name" gorm:"type:varchar(255)"`
	CompanyID          *string    `json:"company_id,omitempty" gorm:"type:char(36);index"`
	BranchID           *string    `json:"branch_id,omitempty" gorm:"type:char(36)"`
	IsEmailVerified    bool       `json:"is_email_verified" gorm:"default:false"`
	RefreshToken       *string    `json:"-" gorm:"type:varchar(255)"`
	RefreshTokenExpiry *time.Time `json:"-"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
