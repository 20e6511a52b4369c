package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyStatus tracks the approval workflow for a registered company
type CompanyStatus int

const (
	CompanyPending CompanyStatus = iota
	CompanyApproved
	CompanyRejected
	CompanySuspended
)

// Company is the tenant boundary: every shop entity belongs to exactly one
type Company struct {
	ID          string        `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string        `json:"name" gorm:"type:varchar(255);not null"`
	Description string        `json:"description" gorm:"type:varchar(500)"`
	Phone       string        `json:"phone" gorm:"type:varchar(20)"`
	Email       string        `json:"email" gorm:"type:varchar(255)"`
	Address     string        `json:"address" gorm:"type:text"`
	LogoURL     string        `json:"logo_url" gorm:"type:varchar(255)"`
	Currency    string        `json:"currency" gorm:"type:varchar(50);default:BDT"`
	Timezone    string        `json:"timezone" gorm:"type:varchar(50);default:Asia/Dhaka"`
	Status      CompanyStatus `json:"status" gorm:"default:0"`
	IsActive    bool          `json:"is_active" gorm:"default:true"`
	OwnerID     *string       `json:"owner_id,omitempty" gorm:"type:char(36);index"`
	ApprovedBy  *string       `json:"approved_by,omitempty" gorm:"type:char(36)"`
	ApprovedAt  *time.Time    `json:"approved_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Branch is a physical location of a company
type Branch struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	CompanyID string    `json:"company_id" gorm:"type:char(36);index;not null"`
	Address   string    `json:"address" gorm:"type:text"`
	Phone     string    `json:"phone" gorm:"type:varchar(20)"`
	Email     string    `json:"email" gorm:"type:varchar(255)"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	IsMain    bool      `json:"is_main" gorm:"default:false"`
	CreatedBy *string   `json:"created_by,omitempty" gorm:"type:char(36)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Branch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
