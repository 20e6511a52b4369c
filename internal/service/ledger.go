package service

import (
	"errors"
	"fmt"

	"shop-service/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// stockMovement reports the stock level around a single ledger posting.
type stockMovement struct {
	Previous int
	New      int
}

// lockProduct loads a product row under an exclusive lock, scoped to the
// company, for the duration of the enclosing transaction. The lock is what
// serializes two concurrent sales touching the same product.
func lockProduct(tx *gorm.DB, productID, companyID string) (*model.Product, error) {
	q := tx
	// SQLite (tests) has no SELECT ... FOR UPDATE; its single-writer lock
	// already serializes the transaction.
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product model.Product
	err := q.Where("id = ? AND company_id = ?", productID, companyID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// debitStock decreases a locked product's stock and appends the matching
// history row. The caller must hold the row lock acquired by lockProduct.
func debitStock(tx *gorm.DB, product *model.Product, quantity int, txType string,
	unitPrice, totalValue decimal.Decimal, notes, actorID, companyID string) (*stockMovement, error) {

	if product.CurrentStock < quantity {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.CurrentStock,
		}
	}

	before := product.CurrentStock
	product.CurrentStock = before - quantity
	if err := tx.Model(product).Update("current_stock", product.CurrentStock).Error; err != nil {
		return nil, err
	}

	if err := appendHistory(tx, product, txType, -quantity, before, unitPrice, totalValue, notes, actorID, companyID); err != nil {
		return nil, err
	}
	return &stockMovement{Previous: before, New: product.CurrentStock}, nil
}

// creditStock increases a locked product's stock and appends the matching
// history row. Used for restock on sale update reversal and cancellation.
func creditStock(tx *gorm.DB, product *model.Product, quantity int, txType string,
	unitPrice, totalValue decimal.Decimal, notes, actorID, companyID string) (*stockMovement, error) {

	before := product.CurrentStock
	product.CurrentStock = before + quantity
	if err := tx.Model(product).Update("current_stock", product.CurrentStock).Error; err != nil {
		return nil, err
	}

	if err := appendHistory(tx, product, txType, quantity, before, unitPrice, totalValue, notes, actorID, companyID); err != nil {
		return nil, err
	}
	return &stockMovement{Previous: before, New: product.CurrentStock}, nil
}

func appendHistory(tx *gorm.DB, product *model.Product, txType string, quantityChanged, stockBefore int,
	unitPrice, totalValue decimal.Decimal, notes, actorID, companyID string) error {

	history := model.ProductHistory{
		ProductID:       product.ID,
		TransactionType: txType,
		QuantityChanged: quantityChanged,
		StockBefore:     stockBefore,
		StockAfter:      stockBefore + quantityChanged,
		UnitPrice:       &unitPrice,
		TotalValue:      &totalValue,
		Notes:           notes,
		CreatedBy:       actorID,
		CompanyID:       companyID,
	}
	return tx.Create(&history).Error
}
