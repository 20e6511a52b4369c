package service

import (
	"fmt"
	"time"

	"shop-service/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// minUnitSellingPrice is the smallest accepted unit price (one cent).
var minUnitSellingPrice = decimal.New(1, -2)

// SaleItemInput is one requested line of a sale.
type SaleItemInput struct {
	ProductID        string          `json:"product_id" validate:"required"`
	Quantity         int             `json:"quantity" validate:"required,gte=1"`
	UnitSellingPrice decimal.Decimal `json:"unit_selling_price"`
}

// SaleInput is the validated request handed to the sale engine by the
// handler layer together with the acting user.
type SaleInput struct {
	Items         []SaleItemInput `json:"items" validate:"required,min=1,dive"`
	CustomerID    *string         `json:"customer_id,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

func validateSaleItems(items []SaleItemInput) error {
	if len(items) == 0 {
		return validationf("at least one sale item is required")
	}
	for _, it := range items {
		if it.ProductID == "" {
			return validationf("sale item is missing a product id")
		}
		if it.Quantity < 1 {
			return validationf("quantity must be at least 1 for product %s", it.ProductID)
		}
		if it.UnitSellingPrice.LessThan(minUnitSellingPrice) {
			return validationf("unit selling price must be at least %s for product %s",
				minUnitSellingPrice.StringFixed(2), it.ProductID)
		}
	}
	return nil
}

// CreateSale creates a sale with its items, debits product stock, appends
// ledger rows and bumps the customer aggregates, all in one transaction.
// A failure at any step leaves stock, history and aggregates untouched.
func CreateSale(db *gorm.DB, in *SaleInput, actor *model.User) (*model.Sale, error) {
	if actor.CompanyID == nil || *actor.CompanyID == "" {
		return nil, ErrNoCompany
	}
	companyID := *actor.CompanyID

	if err := validateSaleItems(in.Items); err != nil {
		return nil, err
	}

	var sale *model.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		totalAmount := decimal.Zero
		totalCost := decimal.Zero
		items := make([]model.SaleItem, 0, len(in.Items))

		// Lock products in submitted order to keep the lock order
		// deterministic across concurrent callers.
		for _, req := range in.Items {
			product, err := lockProduct(tx, req.ProductID, companyID)
			if err != nil {
				return err
			}

			qty := decimal.NewFromInt(int64(req.Quantity))
			itemTotal := req.UnitSellingPrice.Mul(qty)
			itemCost := product.BuyingPrice.Mul(qty)

			if _, err := debitStock(tx, product, req.Quantity, model.StockTxSale,
				req.UnitSellingPrice, itemTotal,
				fmt.Sprintf("Sale of %d units", req.Quantity), actor.ID, companyID); err != nil {
				return err
			}

			items = append(items, model.SaleItem{
				ProductID:        product.ID,
				ProductName:      product.Name,
				Quantity:         req.Quantity,
				UnitBuyingPrice:  product.BuyingPrice,
				UnitSellingPrice: req.UnitSellingPrice,
				TotalAmount:      itemTotal,
				TotalCost:        itemCost,
				TotalProfit:      itemTotal.Sub(itemCost),
			})

			totalAmount = totalAmount.Add(itemTotal)
			totalCost = totalCost.Add(itemCost)
		}

		customer, err := resolveCustomer(tx, in.CustomerID, companyID)
		if err != nil {
			return err
		}
		if customer != nil {
			if err := adjustCustomerAggregates(tx, customer, totalAmount, 1, true); err != nil {
				return err
			}
		}

		sale = &model.Sale{
			SaleDate:      time.Now().UTC(),
			CustomerName:  in.CustomerName,
			CustomerPhone: in.CustomerPhone,
			PaymentMethod: in.PaymentMethod,
			TotalAmount:   totalAmount,
			TotalCost:     totalCost,
			TotalProfit:   totalAmount.Sub(totalCost),
			CreatedBy:     actor.ID,
			CompanyID:     companyID,
		}
		if customer != nil {
			sale.CustomerID = &customer.ID
			if sale.CustomerName == "" {
				sale.CustomerName = customer.Name
			}
			if sale.CustomerPhone == "" {
				sale.CustomerPhone = customer.Phone
			}
		}
		if sale.PaymentMethod == "" {
			sale.PaymentMethod = "cash"
		}
		if err := tx.Create(sale).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].SaleID = sale.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		sale.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// UpdateSale replaces a sale's item set wholesale: existing items are
// credited back to stock before the new list is evaluated, so a reduced
// quantity on the same product is checked against restored stock. Customer
// aggregates are reconciled so they always equal the live sum over the
// customer's existing sales.
func UpdateSale(db *gorm.DB, saleID string, in *SaleInput, actor *model.User) (*model.Sale, error) {
	if actor.CompanyID == nil || *actor.CompanyID == "" {
		return nil, ErrNoCompany
	}
	companyID := *actor.CompanyID

	if err := validateSaleItems(in.Items); err != nil {
		return nil, err
	}

	var sale model.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND company_id = ?", saleID, companyID).First(&sale).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("sale %s: %w", saleID, ErrNotFound)
			}
			return err
		}

		previousTotal := sale.TotalAmount

		var existing []model.SaleItem
		if err := tx.Where("sale_id = ?", sale.ID).Find(&existing).Error; err != nil {
			return err
		}

		// Restore stock for every existing item before recomputing, so the
		// new list is evaluated against pre-sale stock levels.
		for _, item := range existing {
			product, err := lockProduct(tx, item.ProductID, companyID)
			if err != nil {
				return err
			}
			if _, err := creditStock(tx, product, item.Quantity, model.StockTxSaleReversal,
				item.UnitSellingPrice, item.TotalAmount,
				fmt.Sprintf("Reversal before sale update - restored %d units", item.Quantity),
				actor.ID, companyID); err != nil {
				return err
			}
		}

		if err := tx.Where("sale_id = ?", sale.ID).Delete(&model.SaleItem{}).Error; err != nil {
			return err
		}

		newTotal := decimal.Zero
		newCost := decimal.Zero
		items := make([]model.SaleItem, 0, len(in.Items))

		for _, req := range in.Items {
			product, err := lockProduct(tx, req.ProductID, companyID)
			if err != nil {
				return err
			}

			qty := decimal.NewFromInt(int64(req.Quantity))
			itemTotal := req.UnitSellingPrice.Mul(qty)
			itemCost := product.BuyingPrice.Mul(qty)

			if _, err := debitStock(tx, product, req.Quantity, model.StockTxSaleUpdate,
				req.UnitSellingPrice, itemTotal,
				fmt.Sprintf("Sale update - sold %d units", req.Quantity), actor.ID, companyID); err != nil {
				return err
			}

			items = append(items, model.SaleItem{
				SaleID:           sale.ID,
				ProductID:        product.ID,
				ProductName:      product.Name,
				Quantity:         req.Quantity,
				UnitBuyingPrice:  product.BuyingPrice,
				UnitSellingPrice: req.UnitSellingPrice,
				TotalAmount:      itemTotal,
				TotalCost:        itemCost,
				TotalProfit:      itemTotal.Sub(itemCost),
			})

			newTotal = newTotal.Add(itemTotal)
			newCost = newCost.Add(itemCost)
		}

		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		if err := reconcileCustomerAggregates(tx, &sale, in.CustomerID, companyID, previousTotal, newTotal); err != nil {
			return err
		}

		if in.CustomerName != "" {
			sale.CustomerName = in.CustomerName
		}
		if in.CustomerPhone != "" {
			sale.CustomerPhone = in.CustomerPhone
		}
		if in.PaymentMethod != "" {
			sale.PaymentMethod = in.PaymentMethod
		}
		sale.TotalAmount = newTotal
		sale.TotalCost = newCost
		sale.TotalProfit = newTotal.Sub(newCost)

		// Items were created above; keep the header save from touching them.
		if err := tx.Omit("Items").Save(&sale).Error; err != nil {
			return err
		}
		sale.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// DeleteSale reverses a sale completely: stock is credited back, customer
// aggregates are decremented and the sale with its items is removed, all
// in one transaction.
func DeleteSale(db *gorm.DB, saleID string, actor *model.User) (bool, error) {
	if actor.CompanyID == nil || *actor.CompanyID == "" {
		return false, ErrNoCompany
	}
	companyID := *actor.CompanyID

	found := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var sale model.Sale
		if err := tx.Where("id = ? AND company_id = ?", saleID, companyID).First(&sale).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		found = true

		var items []model.SaleItem
		if err := tx.Where("sale_id = ?", sale.ID).Find(&items).Error; err != nil {
			return err
		}

		for _, item := range items {
			product, err := lockProduct(tx, item.ProductID, companyID)
			if err != nil {
				return err
			}
			if _, err := creditStock(tx, product, item.Quantity, model.StockTxSaleCancellation,
				item.UnitSellingPrice, item.TotalAmount,
				fmt.Sprintf("Sale cancellation - restored %d units", item.Quantity),
				actor.ID, companyID); err != nil {
				return err
			}
		}

		if sale.CustomerID != nil {
			var customer model.Customer
			err := tx.Where("id = ? AND company_id = ?", *sale.CustomerID, companyID).First(&customer).Error
			if err == nil {
				if err := adjustCustomerAggregates(tx, &customer, sale.TotalAmount.Neg(), -1, false); err != nil {
					return err
				}
			} else if err != gorm.ErrRecordNotFound {
				return err
			}
		}

		if err := tx.Where("sale_id = ?", sale.ID).Delete(&model.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sale).Error
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// GetSaleByID returns a sale with its items, scoped to the company.
func GetSaleByID(db *gorm.DB, saleID, companyID string) (*model.Sale, error) {
	var sale model.Sale
	err := db.Preload("Items").Where("id = ? AND company_id = ?", saleID, companyID).First(&sale).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("sale %s: %w", saleID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListSales returns the company's sales most-recent-first. startDate is an
// inclusive lower bound; endDate is an exclusive upper bound (handlers pass
// the day after the requested end date to make calendar bounds inclusive).
func ListSales(db *gorm.DB, companyID string, startDate, endDate *time.Time) ([]model.Sale, error) {
	q := db.Preload("Items").Where("company_id = ?", companyID)
	if startDate != nil {
		q = q.Where("sale_date >= ?", *startDate)
	}
	if endDate != nil {
		q = q.Where("sale_date < ?", *endDate)
	}

	var sales []model.Sale
	if err := q.Order("sale_date DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// TodaySales returns the sales of the current UTC day.
func TodaySales(db *gorm.DB, companyID string) ([]model.Sale, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	return ListSales(db, companyID, &start, &end)
}
