package service_test

import (
	"testing"
	"time"

	"shop-service/internal/model"
	"shop-service/internal/service"
)

func TestInventorySummaryAndAlerts(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)

	f.seedProduct(t, "Cola", "5.00", "8.00", 20)
	low := f.seedProduct(t, "Juice", "3.00", "5.00", 2)
	out := f.seedProduct(t, "Water", "1.00", "2.00", 0)

	inactive := f.seedProduct(t, "Retired", "9.00", "12.00", 4)
	if err := db.Model(&model.Product{}).Where("id = ?", inactive.ID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	summary, err := service.GetInventorySummary(db, f.company.ID)
	if err != nil {
		t.Fatalf("GetInventorySummary: %v", err)
	}
	if summary.TotalProducts != 3 {
		t.Fatalf("total products = %d, want 3 (inactive excluded)", summary.TotalProducts)
	}
	if summary.LowStockItems != 1 || summary.OutOfStockItems != 1 {
		t.Fatalf("low = %d out = %d, want 1 and 1", summary.LowStockItems, summary.OutOfStockItems)
	}
	// 20*8 + 2*5 + 0*2
	assertDecimal(t, "stock value", summary.TotalStockValue, "170.00")
	// 20*5 + 2*3 + 0*1
	assertDecimal(t, "investment", summary.TotalInvestment, "106.00")

	alerts, err := service.GetStockAlerts(db, f.company.ID)
	if err != nil {
		t.Fatalf("GetStockAlerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(alerts))
	}
	if alerts[0].ProductID != out.ID || alerts[0].AlertType != "out_of_stock" {
		t.Fatalf("first alert = %+v, want out-of-stock product first", alerts[0])
	}
	if alerts[1].ProductID != low.ID || alerts[1].AlertType != "low_stock" {
		t.Fatalf("second alert = %+v, want low-stock product", alerts[1])
	}

	restock, err := service.GetProductsNeedingRestock(db, f.company.ID)
	if err != nil {
		t.Fatalf("GetProductsNeedingRestock: %v", err)
	}
	if len(restock) != 2 || restock[0].ID != out.ID {
		t.Fatalf("restock list = %d entries, want out-of-stock first", len(restock))
	}
}

func TestCategoryInventoryRollup(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)

	snacks := model.Category{Name: "Snacks", CompanyID: f.company.ID, CreatedBy: f.actor.ID}
	if err := db.Create(&snacks).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}

	f.seedProduct(t, "Cola", "5.00", "8.00", 20) // beverages: 160
	chips := model.Product{
		Name: "Chips", CategoryID: snacks.ID,
		BuyingPrice: mustDecimal(t, "2.00"), SellingPrice: mustDecimal(t, "3.50"),
		CurrentStock: 10, MinStockLevel: 5, IsActive: true,
		CreatedBy: f.actor.ID, CompanyID: f.company.ID,
	}
	if err := db.Create(&chips).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	rollup, err := service.GetCategoryInventory(db, f.company.ID)
	if err != nil {
		t.Fatalf("GetCategoryInventory: %v", err)
	}
	if len(rollup) != 2 {
		t.Fatalf("rollup groups = %d, want 2", len(rollup))
	}
	if rollup[0].CategoryName != "Beverages" {
		t.Fatalf("first group = %s, want Beverages (highest stock value)", rollup[0].CategoryName)
	}
	assertDecimal(t, "beverages stock value", rollup[0].StockValue, "160.00")
	if rollup[1].ProductCount != 1 {
		t.Fatalf("snacks product count = %d, want 1", rollup[1].ProductCount)
	}
}

func TestProfitLossAndTopProducts(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)

	cola := f.seedProduct(t, "Cola", "5.00", "8.00", 50)
	juice := f.seedProduct(t, "Juice", "3.00", "5.00", 50)

	if _, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: cola.ID, Quantity: 10, UnitSellingPrice: mustDecimal(t, "8.00")},
			{ProductID: juice.ID, Quantity: 4, UnitSellingPrice: mustDecimal(t, "5.00")},
		},
	}, f.actor); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	start := time.Now().UTC().AddDate(0, 0, -1)
	end := time.Now().UTC().AddDate(0, 0, 1)

	report, err := service.GetProfitLossReport(db, f.company.ID, start, end)
	if err != nil {
		t.Fatalf("GetProfitLossReport: %v", err)
	}
	// revenue 10*8 + 4*5 = 100, cost 10*5 + 4*3 = 62
	assertDecimal(t, "revenue", report.TotalRevenue, "100.00")
	assertDecimal(t, "cost", report.TotalCost, "62.00")
	assertDecimal(t, "gross profit", report.GrossProfit, "38.00")
	assertDecimal(t, "margin", report.GrossProfitMargin, "38.00")
	if len(report.CategoryBreakdown) != 1 {
		t.Fatalf("category breakdown = %d entries, want 1", len(report.CategoryBreakdown))
	}
	assertDecimal(t, "category sales", report.CategoryBreakdown[0].TotalSales, "100.00")

	top, err := service.GetTopSellingProducts(db, f.company.ID, start, end, 10)
	if err != nil {
		t.Fatalf("GetTopSellingProducts: %v", err)
	}
	if len(top) != 2 || top[0].ProductID != cola.ID {
		t.Fatalf("top products = %+v, want cola first", top)
	}
	if top[0].QuantitySold != 10 {
		t.Fatalf("cola quantity = %d, want 10", top[0].QuantitySold)
	}

	turnover, err := service.InventoryTurnover(db, f.company.ID, start, end)
	if err != nil {
		t.Fatalf("InventoryTurnover: %v", err)
	}
	// COGS 62 over remaining inventory 40*5 + 46*3 = 338
	assertDecimal(t, "turnover", turnover, "0.18")
}

func TestDailySalesReportAndExport(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)

	cola := f.seedProduct(t, "Cola", "5.00", "8.00", 50)
	if _, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: cola.ID, Quantity: 2, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
	}, f.actor); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if _, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: cola.ID, Quantity: 3, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
	}, f.actor); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	start := time.Now().UTC().AddDate(0, 0, -1)
	end := time.Now().UTC().AddDate(0, 0, 1)

	reports, err := service.GetDailySalesReport(db, f.company.ID, start, end)
	if err != nil {
		t.Fatalf("GetDailySalesReport: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("report days = %d, want 1", len(reports))
	}
	day := reports[0]
	if day.TotalTransactions != 2 {
		t.Fatalf("transactions = %d, want 2", day.TotalTransactions)
	}
	assertDecimal(t, "day sales", day.TotalSales, "40.00")
	if len(day.TopProducts) != 1 || day.TopProducts[0].QuantitySold != 5 {
		t.Fatalf("top products = %+v, want cola with 5 units", day.TopProducts)
	}

	file, err := service.ExportDailySalesXLSX(reports)
	if err != nil {
		t.Fatalf("ExportDailySalesXLSX: %v", err)
	}
	rows, err := file.GetRows("Daily Sales")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("sheet rows = %d, want header plus one day", len(rows))
	}
	if rows[1][1] != "2" || rows[1][2] != "40.00" {
		t.Fatalf("data row = %v", rows[1])
	}
}
