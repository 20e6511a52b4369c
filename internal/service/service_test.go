package service_test

import (
	"path/filepath"
	"testing"

	"shop-service/internal/model"
	"shop-service/pkg/database"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fixture is one approved company with an active staff user, a category
// and a customer.
type fixture struct {
	db       *gorm.DB
	company  model.Company
	actor    *model.User
	category model.Category
	customer model.Customer
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	company := model.Company{Name: "Corner Shop", Status: model.CompanyApproved, IsActive: true}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}

	actor := model.User{
		Email:     "staff@cornershop.test",
		Name:      "Staff",
		ShopName:  company.Name,
		Role:      model.RoleStaff,
		IsActive:  1,
		CompanyID: &company.ID,
	}
	if err := db.Create(&actor).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	category := model.Category{Name: "Beverages", CompanyID: company.ID, CreatedBy: actor.ID}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}

	customer := model.Customer{Name: "Aye Chan", Phone: "0912345678", CompanyID: company.ID, CreatedBy: actor.ID}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}

	return &fixture{db: db, company: company, actor: &actor, category: category, customer: customer}
}

func (f *fixture) seedProduct(t *testing.T, name, buying, selling string, stock int) model.Product {
	t.Helper()

	product := model.Product{
		Name:          name,
		CategoryID:    f.category.ID,
		BuyingPrice:   mustDecimal(t, buying),
		SellingPrice:  mustDecimal(t, selling),
		CurrentStock:  stock,
		MinStockLevel: 5,
		IsActive:      true,
		CreatedBy:     f.actor.ID,
		CompanyID:     f.company.ID,
	}
	if err := f.db.Create(&product).Error; err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return product
}

func (f *fixture) reloadProduct(t *testing.T, id string) model.Product {
	t.Helper()

	var product model.Product
	if err := f.db.Where("id = ?", id).First(&product).Error; err != nil {
		t.Fatalf("reload product %s: %v", id, err)
	}
	return product
}

func (f *fixture) reloadCustomer(t *testing.T, id string) model.Customer {
	t.Helper()

	var customer model.Customer
	if err := f.db.Where("id = ?", id).First(&customer).Error; err != nil {
		t.Fatalf("reload customer %s: %v", id, err)
	}
	return customer
}

func (f *fixture) productHistory(t *testing.T, productID string) []model.ProductHistory {
	t.Helper()

	var rows []model.ProductHistory
	if err := f.db.Where("product_id = ?", productID).Order("created_at ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load history for %s: %v", productID, err)
	}
	return rows
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(mustDecimal(t, want)) {
		t.Fatalf("%s = %s, want %s", label, got.String(), want)
	}
}
