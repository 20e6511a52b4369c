package handler

import (
	"net/http"

	"shop-service/internal/middleware"
	"shop-service/internal/model"
	"shop-service/pkg/database"
	"shop-service/pkg/logger"
	"shop-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name          string          `json:"name" validate:"required"`
	Barcode       string          `json:"barcode"`
	CategoryID    string          `json:"category_id" validate:"required"`
	BuyingPrice   decimal.Decimal `json:"buying_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CurrentStock  int             `json:"current_stock" validate:"gte=0"`
	MinStockLevel int             `json:"min_stock_level" validate:"gte=0"`
	SupplierID    *string         `json:"supplier_id"`
	IsActive      *bool           `json:"is_active"`
}

// ListProducts returns the company's products, optionally filtered
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	query := database.GetDB().Where("company_id = ?", companyID)
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if c.QueryParam("active_only") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var products []model.Product
	if err := query.Preload("Category").Order("name ASC").Find(&products).Error; err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, products)
}

// GetProduct returns a single product in the caller's company
func GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var product model.Product
	err := database.GetDB().Preload("Category").Preload("Supplier").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&product).Error
	if err != nil {
		log.Warn("Product not found", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct creates a product in the caller's company
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.BuyingPrice.IsNegative() || req.SellingPrice.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices cannot be negative"})
	}

	// The category must belong to the same company.
	var categoryCount int64
	database.GetDB().Model(&model.Category{}).
		Where("id = ? AND company_id = ?", req.CategoryID, companyID).
		Count(&categoryCount)
	if categoryCount == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found in your company"})
	}

	if req.SupplierID != nil && *req.SupplierID != "" {
		var supplierCount int64
		database.GetDB().Model(&model.Supplier{}).
			Where("id = ? AND company_id = ?", *req.SupplierID, companyID).
			Count(&supplierCount)
		if supplierCount == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "supplier not found in your company"})
		}
	}

	product := model.Product{
		Name:          req.Name,
		Barcode:       req.Barcode,
		CategoryID:    req.CategoryID,
		BuyingPrice:   req.BuyingPrice,
		SellingPrice:  req.SellingPrice,
		CurrentStock:  req.CurrentStock,
		MinStockLevel: req.MinStockLevel,
		SupplierID:    req.SupplierID,
		IsActive:      true,
		CreatedBy:     actor.ID,
		CompanyID:     companyID,
	}
	if product.MinStockLevel == 0 {
		product.MinStockLevel = 10
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := database.GetDB().Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}

	if product.CurrentStock > 0 {
		history := model.ProductHistory{
			ProductID:       product.ID,
			TransactionType: model.StockTxInitialStock,
			QuantityChanged: product.CurrentStock,
			StockBefore:     0,
			StockAfter:      product.CurrentStock,
			CreatedBy:       actor.ID,
			CompanyID:       companyID,
		}
		if err := database.GetDB().Create(&history).Error; err != nil {
			log.Warn("Failed to record initial stock history",
				zap.String("product_id", product.ID), zap.Error(err))
		}
	}

	prometheus.UpdateProductStock(product.ID, product.Name, float64(product.CurrentStock))
	log.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int("stock", product.CurrentStock))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates a product's catalog fields. Stock is owned by the
// sale engine and manual adjustments are recorded in the history.
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var product model.Product
	err := database.GetDB().Where("id = ? AND company_id = ?", id, companyID).First(&product).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	if req.CategoryID != product.CategoryID {
		var categoryCount int64
		database.GetDB().Model(&model.Category{}).
			Where("id = ? AND company_id = ?", req.CategoryID, companyID).
			Count(&categoryCount)
		if categoryCount == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category not found in your company"})
		}
	}

	oldStock := product.CurrentStock

	product.Name = req.Name
	product.Barcode = req.Barcode
	product.CategoryID = req.CategoryID
	product.BuyingPrice = req.BuyingPrice
	product.SellingPrice = req.SellingPrice
	product.CurrentStock = req.CurrentStock
	product.MinStockLevel = req.MinStockLevel
	product.SupplierID = req.SupplierID
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := database.GetDB().Save(&product).Error; err != nil {
		log.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}

	if product.CurrentStock != oldStock {
		history := model.ProductHistory{
			ProductID:       product.ID,
			TransactionType: model.StockTxAdjustment,
			QuantityChanged: product.CurrentStock - oldStock,
			StockBefore:     oldStock,
			StockAfter:      product.CurrentStock,
			CreatedBy:       actor.ID,
			CompanyID:       companyID,
		}
		if err := database.GetDB().Create(&history).Error; err != nil {
			log.Warn("Failed to record stock adjustment",
				zap.String("product_id", product.ID), zap.Error(err))
		}
	}

	prometheus.UpdateProductStock(product.ID, product.Name, float64(product.CurrentStock))
	log.Info("Product updated",
		zap.String("product_id", id),
		zap.Int("old_stock", oldStock),
		zap.Int("new_stock", product.CurrentStock))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct soft deletes a product by marking it inactive
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	result := database.GetDB().Model(&model.Product{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("is_active", false)
	if result.Error != nil {
		log.Error("Failed to delete product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	log.Info("Product deactivated", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}

// ListLowStockProducts returns active products at or below their minimum
// stock level
func ListLowStockProducts(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var products []model.Product
	err := database.GetDB().
		Where("company_id = ? AND is_active = ? AND current_stock <= min_stock_level", companyID, true).
		Order("current_stock ASC").
		Find(&products).Error
	if err != nil {
		log.Error("Failed to list low stock products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, products)
}

// ListProductHistory returns the stock ledger for one product, newest first
func ListProductHistory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var count int64
	database.GetDB().Model(&model.Product{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Count(&count)
	if count == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	var history []model.ProductHistory
	err := database.GetDB().
		Where("product_id = ? AND company_id = ?", id, companyID).
		Order("created_at DESC").
		Find(&history).Error
	if err != nil {
		log.Error("Failed to list product history", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve history"})
	}

	return c.JSON(http.StatusOK, history)
}
