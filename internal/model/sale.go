package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is the header of a sale transaction. Totals are derived from the
// items and never authored independently. Customer name and phone are
// snapshots taken at sale time.
type Sale struct {
	ID            string          `json:"id" gorm:"type:char(36);primaryKey"`
	SaleDate      time.Time       `json:"sale_date" gorm:"index;autoCreateTime"`
	CustomerID    *string         `json:"customer_id,omitempty" gorm:"type:char(36);index"`
	Customer      *Customer       `json:"customer,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
	CustomerName  string          `json:"customer_name,omitempty" gorm:"type:varchar(255)"`
	CustomerPhone string          `json:"customer_phone,omitempty" gorm:"type:varchar(20)"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(50);default:cash"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	TotalCost     decimal.Decimal `json:"total_cost" gorm:"type:decimal(15,2);default:0"`
	TotalProfit   decimal.Decimal `json:"total_profit" gorm:"type:decimal(15,2);default:0"`
	Items         []SaleItem      `json:"items" gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedBy     string          `json:"created_by" gorm:"type:char(36);index"`
	CompanyID     string          `json:"company_id" gorm:"type:char(36);index;not null"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SaleItem is one line of a sale. UnitBuyingPrice is the product's cost at
// transaction time, kept for historical costing regardless of later price
// changes.
type SaleItem struct {
	ID               string          `json:"id" gorm:"type:char(36);primaryKey"`
	SaleID           string          `json:"sale_id" gorm:"type:char(36);index;not null"`
	ProductID        string          `json:"product_id" gorm:"type:char(36);index;not null"`
	Product          *Product        `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	ProductName      string          `json:"product_name" gorm:"type:varchar(255);not null"`
	Quantity         int             `json:"quantity" gorm:"not null"`
	UnitBuyingPrice  decimal.Decimal `json:"unit_buying_price" gorm:"type:decimal(15,2);not null"`
	UnitSellingPrice decimal.Decimal `json:"unit_selling_price" gorm:"type:decimal(15,2);not null"`
	TotalAmount      decimal.Decimal `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	TotalCost        decimal.Decimal `json:"total_cost" gorm:"type:decimal(15,2);default:0"`
	TotalProfit      decimal.Decimal `json:"total_profit" gorm:"type:decimal(15,2);default:0"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
