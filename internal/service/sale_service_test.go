package service_test

import (
	"errors"
	"strings"
	"testing"

	"shop-service/internal/model"
	"shop-service/internal/service"
)

func TestCreateSaleDebitsStockAndWritesLedger(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 10)

	sale, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 3, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
		CustomerID: &f.customer.ID,
	}, f.actor)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	assertDecimal(t, "total amount", sale.TotalAmount, "24.00")
	assertDecimal(t, "total cost", sale.TotalCost, "15.00")
	assertDecimal(t, "total profit", sale.TotalProfit, "9.00")
	if sale.PaymentMethod != "cash" {
		t.Fatalf("payment method = %q, want cash", sale.PaymentMethod)
	}
	if sale.CustomerName != f.customer.Name {
		t.Fatalf("customer name snapshot = %q, want %q", sale.CustomerName, f.customer.Name)
	}
	if len(sale.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(sale.Items))
	}
	assertDecimal(t, "item buying price snapshot", sale.Items[0].UnitBuyingPrice, "5.00")

	if got := f.reloadProduct(t, product.ID).CurrentStock; got != 7 {
		t.Fatalf("stock after sale = %d, want 7", got)
	}

	history := f.productHistory(t, product.ID)
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(history))
	}
	row := history[0]
	if row.TransactionType != model.StockTxSale {
		t.Fatalf("transaction type = %q, want %q", row.TransactionType, model.StockTxSale)
	}
	if row.QuantityChanged != -3 || row.StockBefore != 10 || row.StockAfter != 7 {
		t.Fatalf("ledger row = %+v, want change -3 from 10 to 7", row)
	}

	customer := f.reloadCustomer(t, f.customer.ID)
	assertDecimal(t, "customer total purchases", customer.TotalPurchases, "24.00")
	if customer.TotalTransactions != 1 {
		t.Fatalf("customer transactions = %d, want 1", customer.TotalTransactions)
	}
}

func TestCreateSaleInsufficientStockLeavesNoTrace(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Rare Juice", "4.00", "6.00", 2)

	_, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 5, UnitSellingPrice: mustDecimal(t, "6.00")},
		},
	}, f.actor)

	var stockErr *service.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if stockErr.ProductName != "Rare Juice" || stockErr.Requested != 5 || stockErr.Available != 2 {
		t.Fatalf("stock error = %+v", stockErr)
	}
	if !strings.Contains(stockErr.Error(), "Rare Juice") {
		t.Fatalf("error message %q does not name the product", stockErr.Error())
	}

	if got := f.reloadProduct(t, product.ID).CurrentStock; got != 2 {
		t.Fatalf("stock after failed sale = %d, want 2", got)
	}
	if rows := f.productHistory(t, product.ID); len(rows) != 0 {
		t.Fatalf("history rows after failed sale = %d, want 0", len(rows))
	}

	var saleCount int64
	db.Model(&model.Sale{}).Count(&saleCount)
	if saleCount != 0 {
		t.Fatalf("sales after failed create = %d, want 0", saleCount)
	}
}

func TestCreateSaleIsAtomicAcrossItems(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	plenty := f.seedProduct(t, "Water", "1.00", "2.00", 50)
	scarce := f.seedProduct(t, "Honey", "10.00", "15.00", 1)

	_, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: plenty.ID, Quantity: 10, UnitSellingPrice: mustDecimal(t, "2.00")},
			{ProductID: scarce.ID, Quantity: 3, UnitSellingPrice: mustDecimal(t, "15.00")},
		},
		CustomerID: &f.customer.ID,
	}, f.actor)

	var stockErr *service.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}

	// The failing second line must roll back the first line's debit.
	if got := f.reloadProduct(t, plenty.ID).CurrentStock; got != 50 {
		t.Fatalf("first product stock = %d, want 50", got)
	}
	if rows := f.productHistory(t, plenty.ID); len(rows) != 0 {
		t.Fatalf("first product history rows = %d, want 0", len(rows))
	}

	customer := f.reloadCustomer(t, f.customer.ID)
	assertDecimal(t, "customer total purchases", customer.TotalPurchases, "0")
	if customer.TotalTransactions != 0 {
		t.Fatalf("customer transactions = %d, want 0", customer.TotalTransactions)
	}
}

func TestUpdateSaleRestoresThenRedebits(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 10)

	sale, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 3, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
		CustomerID: &f.customer.ID,
	}, f.actor)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	updated, err := service.UpdateSale(db, sale.ID, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 1, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
		CustomerID: &f.customer.ID,
	}, f.actor)
	if err != nil {
		t.Fatalf("UpdateSale: %v", err)
	}

	assertDecimal(t, "updated total", updated.TotalAmount, "8.00")
	assertDecimal(t, "updated profit", updated.TotalProfit, "3.00")

	if got := f.reloadProduct(t, product.ID).CurrentStock; got != 9 {
		t.Fatalf("stock after update = %d, want 9", got)
	}

	history := f.productHistory(t, product.ID)
	if len(history) != 3 {
		t.Fatalf("history rows = %d, want 3", len(history))
	}
	reversal := history[1]
	if reversal.TransactionType != model.StockTxSaleReversal {
		t.Fatalf("second row type = %q, want %q", reversal.TransactionType, model.StockTxSaleReversal)
	}
	if reversal.QuantityChanged != 3 || reversal.StockBefore != 7 || reversal.StockAfter != 10 {
		t.Fatalf("reversal row = %+v, want +3 from 7 to 10", reversal)
	}
	redebit := history[2]
	if redebit.TransactionType != model.StockTxSaleUpdate {
		t.Fatalf("third row type = %q, want %q", redebit.TransactionType, model.StockTxSaleUpdate)
	}
	if redebit.QuantityChanged != -1 || redebit.StockBefore != 10 || redebit.StockAfter != 9 {
		t.Fatalf("redebit row = %+v, want -1 from 10 to 9", redebit)
	}

	customer := f.reloadCustomer(t, f.customer.ID)
	assertDecimal(t, "customer total after update", customer.TotalPurchases, "8.00")
	if customer.TotalTransactions != 1 {
		t.Fatalf("customer transactions after update = %d, want 1", customer.TotalTransactions)
	}
}

func TestUpdateSaleAllowsQuantityGrowthWithinRestoredStock(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 10)

	sale, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 8, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
	}, f.actor)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	// Stock is down to 2, but the update releases the original 8 first, so
	// 10 units are available for the new quantity.
	updated, err := service.UpdateSale(db, sale.ID, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 10, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
	}, f.actor)
	if err != nil {
		t.Fatalf("UpdateSale: %v", err)
	}

	assertDecimal(t, "updated total", updated.TotalAmount, "80.00")
	if got := f.reloadProduct(t, product.ID).CurrentStock; got != 0 {
		t.Fatalf("stock after update = %d, want 0", got)
	}
}

func TestUpdateSaleRelinksCustomer(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 20)

	other := model.Customer{Name: "Moe Thu", CompanyID: f.company.ID, CreatedBy: f.actor.ID}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create second customer: %v", err)
	}

	sale, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 3, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
		CustomerID: &f.customer.ID,
	}, f.actor)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	updated, err := service.UpdateSale(db, sale.ID, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 2, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
		CustomerID: &other.ID,
	}, f.actor)
	if err != nil {
		t.Fatalf("UpdateSale: %v", err)
	}
	if updated.CustomerID == nil || *updated.CustomerID != other.ID {
		t.Fatalf("sale customer = %v, want %s", updated.CustomerID, other.ID)
	}

	old := f.reloadCustomer(t, f.customer.ID)
	assertDecimal(t, "old customer total", old.TotalPurchases, "0")
	if old.TotalTransactions != 0 {
		t.Fatalf("old customer transactions = %d, want 0", old.TotalTransactions)
	}

	relinked := f.reloadCustomer(t, other.ID)
	assertDecimal(t, "new customer total", relinked.TotalPurchases, "16.00")
	if relinked.TotalTransactions != 1 {
		t.Fatalf("new customer transactions = %d, want 1", relinked.TotalTransactions)
	}
}

func TestDeleteSaleRestoresStockAndAggregates(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 10)

	sale, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 3, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
		CustomerID: &f.customer.ID,
	}, f.actor)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	found, err := service.DeleteSale(db, sale.ID, f.actor)
	if err != nil {
		t.Fatalf("DeleteSale: %v", err)
	}
	if !found {
		t.Fatal("DeleteSale reported sale not found")
	}

	if got := f.reloadProduct(t, product.ID).CurrentStock; got != 10 {
		t.Fatalf("stock after delete = %d, want 10", got)
	}

	history := f.productHistory(t, product.ID)
	if len(history) != 2 {
		t.Fatalf("history rows = %d, want 2", len(history))
	}
	cancellation := history[1]
	if cancellation.TransactionType != model.StockTxSaleCancellation {
		t.Fatalf("second row type = %q, want %q", cancellation.TransactionType, model.StockTxSaleCancellation)
	}
	if cancellation.QuantityChanged != 3 || cancellation.StockBefore != 7 || cancellation.StockAfter != 10 {
		t.Fatalf("cancellation row = %+v, want +3 from 7 to 10", cancellation)
	}

	customer := f.reloadCustomer(t, f.customer.ID)
	assertDecimal(t, "customer total after delete", customer.TotalPurchases, "0.00")
	if customer.TotalTransactions != 0 {
		t.Fatalf("customer transactions after delete = %d, want 0", customer.TotalTransactions)
	}

	var itemCount int64
	db.Model(&model.SaleItem{}).Where("sale_id = ?", sale.ID).Count(&itemCount)
	if itemCount != 0 {
		t.Fatalf("sale items after delete = %d, want 0", itemCount)
	}

	// Deleting again is a no-op, not an error.
	found, err = service.DeleteSale(db, sale.ID, f.actor)
	if err != nil {
		t.Fatalf("second DeleteSale: %v", err)
	}
	if found {
		t.Fatal("second DeleteSale reported the sale as found")
	}
}

func TestSaleValidation(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 10)

	cases := []struct {
		name string
		in   service.SaleInput
	}{
		{"no items", service.SaleInput{}},
		{"zero quantity", service.SaleInput{Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 0, UnitSellingPrice: mustDecimal(t, "8.00")},
		}}},
		{"zero price", service.SaleInput{Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 1, UnitSellingPrice: mustDecimal(t, "0")},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateSale(db, &tc.in, f.actor)
			var validationErr *service.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}

	if got := f.reloadProduct(t, product.ID).CurrentStock; got != 10 {
		t.Fatalf("stock after rejected sales = %d, want 10", got)
	}
}

func TestSaleRequiresCompany(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 10)

	loner := model.User{Email: "loner@test.local", Name: "Loner", Role: model.RoleUnassigned, IsActive: 1}
	if err := db.Create(&loner).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 1, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
	}, &loner)
	if !errors.Is(err, service.ErrNoCompany) {
		t.Fatalf("err = %v, want ErrNoCompany", err)
	}
}

func TestSalesAreTenantScoped(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 10)

	sale, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 1, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
	}, f.actor)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	rival := model.Company{Name: "Rival Shop", Status: model.CompanyApproved, IsActive: true}
	if err := db.Create(&rival).Error; err != nil {
		t.Fatalf("create rival company: %v", err)
	}
	outsider := model.User{
		Email: "outsider@rival.test", Name: "Outsider",
		Role: model.RoleOwner, IsActive: 1, CompanyID: &rival.ID,
	}
	if err := db.Create(&outsider).Error; err != nil {
		t.Fatalf("create outsider: %v", err)
	}

	if _, err := service.GetSaleByID(db, sale.ID, rival.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("cross-tenant read err = %v, want ErrNotFound", err)
	}

	_, err = service.UpdateSale(db, sale.ID, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 1, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
	}, &outsider)
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("cross-tenant update err = %v, want ErrNotFound", err)
	}

	found, err := service.DeleteSale(db, sale.ID, &outsider)
	if err != nil {
		t.Fatalf("cross-tenant delete: %v", err)
	}
	if found {
		t.Fatal("cross-tenant delete reported the sale as found")
	}
}

func TestCreateSaleToleratesUnknownCustomerReference(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 10)

	ghost := "00000000-0000-0000-0000-000000000000"
	sale, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 1, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
		CustomerID:   &ghost,
		CustomerName: "Walk In",
	}, f.actor)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if sale.CustomerID != nil {
		t.Fatalf("sale customer = %v, want nil for unresolvable reference", sale.CustomerID)
	}
	if sale.CustomerName != "Walk In" {
		t.Fatalf("customer name = %q, want Walk In", sale.CustomerName)
	}
}

func TestHistoryChainIsConsistent(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 25)

	sale, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 4, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
	}, f.actor)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if _, err := service.UpdateSale(db, sale.ID, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 7, UnitSellingPrice: mustDecimal(t, "8.50")},
		},
	}, f.actor); err != nil {
		t.Fatalf("UpdateSale: %v", err)
	}
	if _, err := service.DeleteSale(db, sale.ID, f.actor); err != nil {
		t.Fatalf("DeleteSale: %v", err)
	}

	history := f.productHistory(t, product.ID)
	if len(history) != 4 {
		t.Fatalf("history rows = %d, want 4", len(history))
	}
	for i, row := range history {
		if row.StockAfter != row.StockBefore+row.QuantityChanged {
			t.Fatalf("row %d inconsistent: %+v", i, row)
		}
		if i > 0 && row.StockBefore != history[i-1].StockAfter {
			t.Fatalf("row %d does not chain from row %d: %d != %d",
				i, i-1, row.StockBefore, history[i-1].StockAfter)
		}
	}
	if last := history[len(history)-1]; last.StockAfter != 25 {
		t.Fatalf("final stock in ledger = %d, want 25", last.StockAfter)
	}
	if got := f.reloadProduct(t, product.ID).CurrentStock; got != 25 {
		t.Fatalf("final stock = %d, want 25", got)
	}
}

func TestListSalesRespectsDateBounds(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	product := f.seedProduct(t, "Cola", "5.00", "8.00", 50)

	sale, err := service.CreateSale(db, &service.SaleInput{
		Items: []service.SaleItemInput{
			{ProductID: product.ID, Quantity: 1, UnitSellingPrice: mustDecimal(t, "8.00")},
		},
	}, f.actor)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	today, err := service.TodaySales(db, f.company.ID)
	if err != nil {
		t.Fatalf("TodaySales: %v", err)
	}
	if len(today) != 1 || today[0].ID != sale.ID {
		t.Fatalf("today sales = %d, want the created sale", len(today))
	}

	past := sale.SaleDate.AddDate(0, 0, -2)
	pastEnd := sale.SaleDate.AddDate(0, 0, -1)
	window, err := service.ListSales(db, f.company.ID, &past, &pastEnd)
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(window) != 0 {
		t.Fatalf("sales in past window = %d, want 0", len(window))
	}
}
