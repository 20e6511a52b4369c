package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products, optionally under a parent category
type Category struct {
	ID                 string           `json:"id" gorm:"type:char(36);primaryKey"`
	Name               string           `json:"name" gorm:"type:varchar(255);not null"`
	ParentCategoryID   *string          `json:"parent_category_id,omitempty" gorm:"type:char(36);index"`
	ParentCategory     *Category        `json:"parent_category,omitempty" gorm:"foreignKey:ParentCategoryID;constraint:OnDelete:RESTRICT"`
	Description        string           `json:"description" gorm:"type:text"`
	ProfitMarginTarget *decimal.Decimal `json:"profit_margin_target,omitempty" gorm:"type:decimal(5,2)"`
	CreatedBy          string           `json:"created_by" gorm:"type:char(36)"`
	CompanyID          string           `json:"company_id" gorm:"type:char(36);index;not null"`
	CreatedAt          time.Time        `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Product is the catalog entry owning current_stock, the value the sale
// engine debits and credits under a row lock
type Product struct {
	ID            string          `json:"id" gorm:"type:char(36);primaryKey"`
	Name          string          `json:"name" gorm:"type:varchar(255);not null"`
	Barcode       string          `json:"barcode,omitempty" gorm:"type:varchar(255)"`
	CategoryID    string          `json:"category_id" gorm:"type:char(36);index;not null"`
	Category      *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	BuyingPrice   decimal.Decimal `json:"buying_price" gorm:"type:decimal(15,2);not null"`
	SellingPrice  decimal.Decimal `json:"selling_price" gorm:"type:decimal(15,2);not null"`
	CurrentStock  int             `json:"current_stock" gorm:"default:0"`
	MinStockLevel int             `json:"min_stock_level" gorm:"default:10"`
	SupplierID    *string         `json:"supplier_id,omitempty" gorm:"type:char(36);index"`
	Supplier      *Supplier       `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	IsActive      bool            `json:"is_active" gorm:"default:true"`
	CreatedBy     string          `json:"created_by" gorm:"type:char(36)"`
	CompanyID     string          `json:"company_id" gorm:"type:char(36);index;not null"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProfitPerUnit returns selling price minus buying price
func (p *Product) ProfitPerUnit() decimal.Decimal {
	return p.SellingPrice.Sub(p.BuyingPrice)
}

// ProfitMargin returns the margin as a percentage of the selling price
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.SellingPrice.IsPositive() {
		return p.ProfitPerUnit().Div(p.SellingPrice).Mul(decimal.NewFromInt(100))
	}
	return decimal.Zero
}

// IsLowStock reports whether stock is at or below the minimum level
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStockLevel
}
