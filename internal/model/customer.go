package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer carries denormalized purchase aggregates maintained by the sale
// engine inside the same transaction as the sale itself
type Customer struct {
	ID                string          `json:"id" gorm:"type:char(36);primaryKey"`
	Name              string          `json:"name" gorm:"type:varchar(255);not null"`
	Phone             string          `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Email             string          `json:"email,omitempty" gorm:"type:varchar(255)"`
	Address           string          `json:"address,omitempty" gorm:"type:text"`
	TotalPurchases    decimal.Decimal `json:"total_purchases" gorm:"type:decimal(15,2);default:0"`
	TotalTransactions int             `json:"total_transactions" gorm:"default:0"`
	LastPurchaseDate  time.Time       `json:"last_purchase_date" gorm:"autoCreateTime"`
	CreatedBy         string          `json:"created_by" gorm:"type:char(36)"`
	CompanyID         string          `json:"company_id" gorm:"type:char(36);index;not null"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Supplier provides products; aggregates are maintained by catalog operations
type Supplier struct {
	ID               string          `json:"id" gorm:"type:char(36);primaryKey"`
	Name             string          `json:"name" gorm:"type:varchar(255);not null"`
	ContactPerson    string          `json:"contact_person,omitempty" gorm:"type:varchar(255)"`
	Phone            string          `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Email            string          `json:"email,omitempty" gorm:"type:varchar(255)"`
	Address          string          `json:"address,omitempty" gorm:"type:text"`
	TotalPurchases   decimal.Decimal `json:"total_purchases" gorm:"type:decimal(15,2);default:0"`
	TotalProducts    int             `json:"total_products" gorm:"default:0"`
	LastPurchaseDate time.Time       `json:"last_purchase_date" gorm:"autoCreateTime"`
	CreatedBy        string          `json:"created_by" gorm:"type:char(36)"`
	CompanyID        string          `json:"company_id" gorm:"type:char(36);index;not null"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
