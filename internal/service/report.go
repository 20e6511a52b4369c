package service

import (
	"sort"
	"time"

	"shop-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// CategoryBreakdown is one category's slice of the profit-loss report.
type CategoryBreakdown struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
}

// ProfitLossReport summarizes revenue, cost and profit over a period.
type ProfitLossReport struct {
	StartDate         time.Time           `json:"start_date"`
	EndDate           time.Time           `json:"end_date"`
	TotalRevenue      decimal.Decimal     `json:"total_revenue"`
	TotalCost         decimal.Decimal     `json:"total_cost"`
	GrossProfit       decimal.Decimal     `json:"gross_profit"`
	GrossProfitMargin decimal.Decimal     `json:"gross_profit_margin"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
}

// ProductSales aggregates one product's sales over a period.
type ProductSales struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
}

// DailySalesReport is one calendar day of the daily sales report.
type DailySalesReport struct {
	Date              string          `json:"date"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalProfit       decimal.Decimal `json:"total_profit"`
	TotalTransactions int             `json:"total_transactions"`
	TopProducts       []ProductSales  `json:"top_products"`
}

// GetProfitLossReport builds the profit-loss report with a per-category
// breakdown for the period.
func GetProfitLossReport(db *gorm.DB, companyID string, startDate, endDate time.Time) (*ProfitLossReport, error) {
	var sales []model.Sale
	err := db.Where("company_id = ? AND sale_date >= ? AND sale_date < ?", companyID, startDate, endDate).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}

	report := &ProfitLossReport{
		StartDate:         startDate,
		EndDate:           endDate,
		TotalRevenue:      decimal.Zero,
		TotalCost:         decimal.Zero,
		GrossProfitMargin: decimal.Zero,
		CategoryBreakdown: []CategoryBreakdown{},
	}
	for _, s := range sales {
		report.TotalRevenue = report.TotalRevenue.Add(s.TotalAmount)
		report.TotalCost = report.TotalCost.Add(s.TotalCost)
	}
	report.GrossProfit = report.TotalRevenue.Sub(report.TotalCost)
	if report.TotalRevenue.IsPositive() {
		report.GrossProfitMargin = report.GrossProfit.Div(report.TotalRevenue).Mul(decimal.NewFromInt(100)).Round(2)
	}

	var categories []model.Category
	if err := db.Where("company_id = ?", companyID).Find(&categories).Error; err != nil {
		return nil, err
	}

	for _, cat := range categories {
		var productIDs []string
		if err := db.Model(&model.Product{}).
			Where("category_id = ? AND company_id = ?", cat.ID, companyID).
			Pluck("id", &productIDs).Error; err != nil {
			return nil, err
		}
		if len(productIDs) == 0 {
			continue
		}

		var items []model.SaleItem
		err := db.Joins("JOIN sales ON sales.id = sale_items.sale_id").
			Where("sale_items.product_id IN ? AND sales.company_id = ? AND sales.sale_date >= ? AND sales.sale_date < ?",
				productIDs, companyID, startDate, endDate).
			Find(&items).Error
		if err != nil {
			return nil, err
		}

		catSales := decimal.Zero
		catProfit := decimal.Zero
		for _, item := range items {
			catSales = catSales.Add(item.TotalAmount)
			catProfit = catProfit.Add(item.TotalProfit)
		}
		margin := decimal.Zero
		if catSales.IsPositive() {
			margin = catProfit.Div(catSales).Mul(decimal.NewFromInt(100)).Round(2)
		}

		report.CategoryBreakdown = append(report.CategoryBreakdown, CategoryBreakdown{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			TotalSales:   catSales,
			TotalProfit:  catProfit,
			ProfitMargin: margin,
		})
	}
	return report, nil
}

// GetDailySalesReport groups sales by calendar day, most recent first,
// each day carrying its top five products by sales.
func GetDailySalesReport(db *gorm.DB, companyID string, startDate, endDate time.Time) ([]DailySalesReport, error) {
	var sales []model.Sale
	err := db.Preload("Items").
		Where("company_id = ? AND sale_date >= ? AND sale_date < ?", companyID, startDate, endDate).
		Order("sale_date DESC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}

	days := make(map[string][]model.Sale)
	for _, s := range sales {
		key := s.SaleDate.UTC().Format("2006-01-02")
		days[key] = append(days[key], s)
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	reports := make([]DailySalesReport, 0, len(keys))
	for _, key := range keys {
		daySales := days[key]

		report := DailySalesReport{
			Date:              key,
			TotalSales:        decimal.Zero,
			TotalProfit:       decimal.Zero,
			TotalTransactions: len(daySales),
		}
		agg := make(map[string]*ProductSales)
		for _, s := range daySales {
			report.TotalSales = report.TotalSales.Add(s.TotalAmount)
			report.TotalProfit = report.TotalProfit.Add(s.TotalProfit)
			accumulateProductSales(agg, s.Items)
		}
		report.TopProducts = topProductSales(agg, 5)
		reports = append(reports, report)
	}
	return reports, nil
}

// GetTopSellingProducts returns the period's best sellers by sales amount.
func GetTopSellingProducts(db *gorm.DB, companyID string, startDate, endDate time.Time, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}

	var items []model.SaleItem
	err := db.Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.company_id = ? AND sales.sale_date >= ? AND sales.sale_date < ?", companyID, startDate, endDate).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	agg := make(map[string]*ProductSales)
	accumulateProductSales(agg, items)
	return topProductSales(agg, limit), nil
}

func accumulateProductSales(agg map[string]*ProductSales, items []model.SaleItem) {
	for _, item := range items {
		p, ok := agg[item.ProductID]
		if !ok {
			p = &ProductSales{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				TotalSales:  decimal.Zero,
				TotalProfit: decimal.Zero,
			}
			agg[item.ProductID] = p
		}
		p.QuantitySold += item.Quantity
		p.TotalSales = p.TotalSales.Add(item.TotalAmount)
		p.TotalProfit = p.TotalProfit.Add(item.TotalProfit)
	}
}

func topProductSales(agg map[string]*ProductSales, limit int) []ProductSales {
	top := make([]ProductSales, 0, len(agg))
	for _, p := range agg {
		top = append(top, *p)
	}
	sort.Slice(top, func(i, j int) bool {
		return top[i].TotalSales.GreaterThan(top[j].TotalSales)
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top
}

// ExportDailySalesXLSX renders the daily sales report as an XLSX workbook.
func ExportDailySalesXLSX(reports []DailySalesReport) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Daily Sales"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Transactions", "Total Sales", "Total Profit", "Top Product", "Top Product Qty"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, report := range reports {
		topName := ""
		topQty := 0
		if len(report.TopProducts) > 0 {
			topName = report.TopProducts[0].ProductName
			topQty = report.TopProducts[0].QuantitySold
		}
		values := []interface{}{
			report.Date,
			report.TotalTransactions,
			report.TotalSales.StringFixed(2),
			report.TotalProfit.StringFixed(2),
			topName,
			topQty,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
