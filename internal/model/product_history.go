package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock transaction types recorded in the product history ledger.
const (
	StockTxSale             = "Sale"
	StockTxSaleUpdate       = "Sale Update"
	StockTxSaleReversal     = "Sale Update (Reversal)"
	StockTxSaleCancellation = "Sale Cancellation"
	StockTxInitialStock     = "Initial Stock"
	StockTxAdjustment       = "Stock Adjustment"
)

// ProductHistory is the append-only audit ledger of stock movements.
// Rows are never mutated or deleted; for each product, stock_before of the
// Nth row equals stock_after of the previous one in commit order.
type ProductHistory struct {
	ID              string           `json:"id" gorm:"type:char(36);primaryKey"`
	ProductID       string           `json:"product_id" gorm:"type:char(36);index;not null"`
	Product         *Product         `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	TransactionType string           `json:"transaction_type" gorm:"type:varchar(50);not null"`
	QuantityChanged int              `json:"quantity_changed" gorm:"not null"`
	StockBefore     int              `json:"stock_before" gorm:"not null"`
	StockAfter      int              `json:"stock_after" gorm:"not null"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty" gorm:"type:decimal(15,2)"`
	TotalValue      *decimal.Decimal `json:"total_value,omitempty" gorm:"type:decimal(15,2)"`
	Notes           string           `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy       string           `json:"created_by" gorm:"type:char(36)"`
	CompanyID       string           `json:"company_id" gorm:"type:char(36);index;not null"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (h *ProductHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
