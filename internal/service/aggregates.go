package service

import (
	"time"

	"shop-service/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer aggregates (total_purchases, total_transactions,
// last_purchase_date) are denormalized state maintained incrementally by
// the sale engine, always inside the sale's own transaction. They are never
// recomputed by re-scan in the hot path.

// resolveCustomer returns the customer when the reference resolves inside
// the company, or nil when no reference was supplied or it does not
// resolve. A non-resolving reference never fails the sale; the sale simply
// carries no customer link.
func resolveCustomer(tx *gorm.DB, customerID *string, companyID string) (*model.Customer, error) {
	if customerID == nil || *customerID == "" {
		return nil, nil
	}
	var customer model.Customer
	err := tx.Where("id = ? AND company_id = ?", *customerID, companyID).First(&customer).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// adjustCustomerAggregates applies signed deltas to a customer's running
// totals. touchDate refreshes last_purchase_date for purchase-adding paths.
func adjustCustomerAggregates(tx *gorm.DB, customer *model.Customer, amountDelta decimal.Decimal, txnDelta int, touchDate bool) error {
	customer.TotalPurchases = customer.TotalPurchases.Add(amountDelta)
	customer.TotalTransactions += txnDelta

	updates := map[string]interface{}{
		"total_purchases":    customer.TotalPurchases,
		"total_transactions": customer.TotalTransactions,
	}
	if touchDate {
		customer.LastPurchaseDate = time.Now().UTC()
		updates["last_purchase_date"] = customer.LastPurchaseDate
	}
	return tx.Model(customer).Updates(updates).Error
}

// reconcileCustomerAggregates keeps customer aggregates equal to the sum
// over that customer's existing sales across a sale update, covering both
// a totals change and a customer re-link. The sale's CustomerID is updated
// in place when the link changes.
func reconcileCustomerAggregates(tx *gorm.DB, sale *model.Sale, requestedCustomerID *string,
	companyID string, previousTotal, newTotal decimal.Decimal) error {

	requested, err := resolveCustomer(tx, requestedCustomerID, companyID)
	if err != nil {
		return err
	}

	if requested != nil && (sale.CustomerID == nil || *sale.CustomerID != requested.ID) {
		// Re-link: the sale moves wholesale from the old customer to the
		// new one. The old customer loses the sale's previous total and
		// one transaction; the new one gains the new total and one
		// transaction.
		if sale.CustomerID != nil {
			old, err := resolveCustomer(tx, sale.CustomerID, companyID)
			if err != nil {
				return err
			}
			if old != nil {
				if err := adjustCustomerAggregates(tx, old, previousTotal.Neg(), -1, false); err != nil {
					return err
				}
			}
		}
		if err := adjustCustomerAggregates(tx, requested, newTotal, 1, true); err != nil {
			return err
		}
		sale.CustomerID = &requested.ID
		return nil
	}

	// Same customer (or none requested): swap the previous total for the
	// new one, transaction count unchanged.
	if sale.CustomerID != nil {
		current, err := resolveCustomer(tx, sale.CustomerID, companyID)
		if err != nil {
			return err
		}
		if current != nil {
			return adjustCustomerAggregates(tx, current, newTotal.Sub(previousTotal), 0, true)
		}
	}
	return nil
}
