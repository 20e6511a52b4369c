package service

import (
	"sort"
	"time"

	"shop-service/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventorySummary is the company-wide stock rollup.
type InventorySummary struct {
	TotalProducts   int             `json:"total_products"`
	LowStockItems   int             `json:"low_stock_items"`
	OutOfStockItems int             `json:"out_of_stock_items"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	TotalInvestment decimal.Decimal `json:"total_investment"`
}

// StockAlert flags a product at or below its minimum stock level.
type StockAlert struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	CategoryName  string `json:"category_name"`
	CurrentStock  int    `json:"current_stock"`
	MinStockLevel int    `json:"min_stock_level"`
	AlertType     string `json:"alert_type"`
}

// CategoryInventory is the per-category stock rollup.
type CategoryInventory struct {
	CategoryID    string          `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	ProductCount  int             `json:"product_count"`
	StockValue    decimal.Decimal `json:"stock_value"`
	LowStockCount int             `json:"low_stock_count"`
}

// GetInventorySummary aggregates stock counts and valuation over the
// company's active products.
func GetInventorySummary(db *gorm.DB, companyID string) (*InventorySummary, error) {
	var products []model.Product
	if err := db.Where("company_id = ? AND is_active = ?", companyID, true).Find(&products).Error; err != nil {
		return nil, err
	}

	summary := &InventorySummary{
		TotalStockValue: decimal.Zero,
		TotalInvestment: decimal.Zero,
	}
	for _, p := range products {
		if p.CurrentStock == 0 {
			summary.OutOfStockItems++
		} else if p.IsLowStock() {
			summary.LowStockItems++
		}
		stock := decimal.NewFromInt(int64(p.CurrentStock))
		summary.TotalStockValue = summary.TotalStockValue.Add(stock.Mul(p.SellingPrice))
		summary.TotalInvestment = summary.TotalInvestment.Add(stock.Mul(p.BuyingPrice))
	}
	summary.TotalProducts = len(products)
	return summary, nil
}

// GetStockAlerts lists products at or below their minimum stock level,
// out-of-stock first, then by ascending stock.
func GetStockAlerts(db *gorm.DB, companyID string) ([]StockAlert, error) {
	var products []model.Product
	err := db.Preload("Category").
		Where("company_id = ? AND is_active = ? AND current_stock <= min_stock_level", companyID, true).
		Order("current_stock").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	alerts := make([]StockAlert, 0, len(products))
	for _, p := range products {
		alert := StockAlert{
			ProductID:     p.ID,
			ProductName:   p.Name,
			CategoryName:  "Unknown",
			CurrentStock:  p.CurrentStock,
			MinStockLevel: p.MinStockLevel,
			AlertType:     "low_stock",
		}
		if p.Category != nil {
			alert.CategoryName = p.Category.Name
		}
		if p.CurrentStock == 0 {
			alert.AlertType = "out_of_stock"
		}
		alerts = append(alerts, alert)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].AlertType != alerts[j].AlertType {
			return alerts[i].AlertType == "out_of_stock"
		}
		return alerts[i].CurrentStock < alerts[j].CurrentStock
	})
	return alerts, nil
}

// GetCategoryInventory rolls active products up per category, ordered by
// descending stock value.
func GetCategoryInventory(db *gorm.DB, companyID string) ([]CategoryInventory, error) {
	var products []model.Product
	err := db.Preload("Category").
		Where("company_id = ? AND is_active = ?", companyID, true).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*CategoryInventory)
	for _, p := range products {
		g, ok := groups[p.CategoryID]
		if !ok {
			g = &CategoryInventory{
				CategoryID:   p.CategoryID,
				CategoryName: "Uncategorized",
				StockValue:   decimal.Zero,
			}
			if p.Category != nil {
				g.CategoryName = p.Category.Name
			}
			groups[p.CategoryID] = g
		}
		g.ProductCount++
		g.StockValue = g.StockValue.Add(decimal.NewFromInt(int64(p.CurrentStock)).Mul(p.SellingPrice))
		if p.IsLowStock() {
			g.LowStockCount++
		}
	}

	result := make([]CategoryInventory, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StockValue.GreaterThan(result[j].StockValue)
	})
	return result, nil
}

// GetProductsNeedingRestock lists active products at or below their
// minimum stock level, lowest stock first.
func GetProductsNeedingRestock(db *gorm.DB, companyID string) ([]model.Product, error) {
	var products []model.Product
	err := db.Where("company_id = ? AND is_active = ? AND current_stock <= min_stock_level", companyID, true).
		Order("current_stock, name").
		Find(&products).Error
	return products, err
}

// InventoryTurnover computes cost of goods sold over the period divided by
// the current inventory investment.
func InventoryTurnover(db *gorm.DB, companyID string, startDate, endDate time.Time) (decimal.Decimal, error) {
	var sales []model.Sale
	err := db.Preload("Items").
		Where("company_id = ? AND sale_date >= ? AND sale_date < ?", companyID, startDate, endDate).
		Find(&sales).Error
	if err != nil {
		return decimal.Zero, err
	}

	cogs := decimal.Zero
	for _, sale := range sales {
		for _, item := range sale.Items {
			cogs = cogs.Add(item.UnitBuyingPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	if !cogs.IsPositive() {
		return decimal.Zero, nil
	}

	var products []model.Product
	if err := db.Where("company_id = ? AND is_active = ?", companyID, true).Find(&products).Error; err != nil {
		return decimal.Zero, err
	}
	inventory := decimal.Zero
	for _, p := range products {
		inventory = inventory.Add(decimal.NewFromInt(int64(p.CurrentStock)).Mul(p.BuyingPrice))
	}
	if !inventory.IsPositive() {
		return decimal.Zero, nil
	}

	return cogs.Div(inventory).Round(2), nil
}
