package handler

import (
	"net/http"

	"shop-service/internal/middleware"
	"shop-service/internal/model"
	"shop-service/pkg/database"
	"shop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name               string           `json:"name" validate:"required"`
	Description        string           `json:"description"`
	ParentCategoryID   *string          `json:"parent_category_id"`
	ProfitMarginTarget *decimal.Decimal `json:"profit_margin_target"`
}

// CategoryResponse is a category with its subcategories and product count
type CategoryResponse struct {
	model.Category
	Subcategories []model.Category `json:"subcategories"`
	ProductCount  int64            `json:"product_count"`
}

// ListCategories returns the company's top-level categories with their
// subcategories and product counts
func ListCategories(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	db := database.GetDB()
	var roots []model.Category
	err := db.Where("company_id = ? AND parent_category_id IS NULL", companyID).
		Order("name ASC").
		Find(&roots).Error
	if err != nil {
		log.Error("Failed to list categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
	}

	responses := make([]CategoryResponse, 0, len(roots))
	for _, root := range roots {
		resp := CategoryResponse{Category: root, Subcategories: []model.Category{}}
		if err := db.Where("parent_category_id = ?", root.ID).Order("name ASC").Find(&resp.Subcategories).Error; err != nil {
			log.Error("Failed to load subcategories", zap.String("category_id", root.ID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
		}
		db.Model(&model.Product{}).Where("category_id = ?", root.ID).Count(&resp.ProductCount)
		responses = append(responses, resp)
	}

	return c.JSON(http.StatusOK, responses)
}

// GetCategory returns a single category with subcategories and product count
func GetCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	db := database.GetDB()
	var category model.Category
	err := db.Preload("ParentCategory").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&category).Error
	if err != nil {
		log.Warn("Category not found", zap.String("category_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	resp := CategoryResponse{Category: category, Subcategories: []model.Category{}}
	db.Where("parent_category_id = ?", category.ID).Order("name ASC").Find(&resp.Subcategories)
	db.Model(&model.Product{}).Where("category_id = ?", category.ID).Count(&resp.ProductCount)

	return c.JSON(http.StatusOK, resp)
}

// CreateCategory creates a category in the caller's company
func CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if req.ParentCategoryID != nil && *req.ParentCategoryID != "" {
		var parentCount int64
		database.GetDB().Model(&model.Category{}).
			Where("id = ? AND company_id = ?", *req.ParentCategoryID, companyID).
			Count(&parentCount)
		if parentCount == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "parent category not found in your company"})
		}
	} else {
		req.ParentCategoryID = nil
	}

	category := model.Category{
		Name:               req.Name,
		Description:        req.Description,
		ParentCategoryID:   req.ParentCategoryID,
		ProfitMarginTarget: req.ProfitMarginTarget,
		CreatedBy:          actor.ID,
		CompanyID:          companyID,
	}
	if err := database.GetDB().Create(&category).Error; err != nil {
		log.Error("Failed to create category", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create category"})
	}

	log.Info("Category created",
		zap.String("category_id", category.ID),
		zap.String("name", category.Name))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory updates an existing category
func UpdateCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var category model.Category
	err := database.GetDB().Where("id = ? AND company_id = ?", id, companyID).First(&category).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	if req.ParentCategoryID != nil && *req.ParentCategoryID != "" {
		if *req.ParentCategoryID == category.ID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category cannot be its own parent"})
		}
		var parentCount int64
		database.GetDB().Model(&model.Category{}).
			Where("id = ? AND company_id = ?", *req.ParentCategoryID, companyID).
			Count(&parentCount)
		if parentCount == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "parent category not found in your company"})
		}
	} else {
		req.ParentCategoryID = nil
	}

	category.Name = req.Name
	category.Description = req.Description
	category.ParentCategoryID = req.ParentCategoryID
	category.ProfitMarginTarget = req.ProfitMarginTarget

	if err := database.GetDB().Save(&category).Error; err != nil {
		log.Error("Failed to update category", zap.String("category_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update category"})
	}

	log.Info("Category updated", zap.String("category_id", id), zap.String("name", category.Name))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category. Categories that still own products or
// subcategories cannot be deleted.
func DeleteCategory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	db := database.GetDB()
	var category model.Category
	if err := db.Where("id = ? AND company_id = ?", id, companyID).First(&category).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	var productCount int64
	db.Model(&model.Product{}).Where("category_id = ?", id).Count(&productCount)
	if productCount > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category has products and cannot be deleted"})
	}

	var childCount int64
	db.Model(&model.Category{}).Where("parent_category_id = ?", id).Count(&childCount)
	if childCount > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category has subcategories and cannot be deleted"})
	}

	if err := db.Delete(&category).Error; err != nil {
		log.Error("Failed to delete category", zap.String("category_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete category"})
	}

	log.Info("Category deleted", zap.String("category_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted successfully"})
}
