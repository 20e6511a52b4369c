package handler

import (
	"net/http"
	"strconv"
	"strings"

	"shop-service/internal/middleware"
	"shop-service/internal/model"
	"shop-service/pkg/database"
	"shop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SupplierRequest defines the structure for supplier creation/update requests
type SupplierRequest struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address"`
}

// ListSuppliers returns the company's suppliers
func ListSuppliers(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var suppliers []model.Supplier
	err := database.GetDB().Where("company_id = ?", companyID).Order("name ASC").Find(&suppliers).Error
	if err != nil {
		log.Error("Failed to list suppliers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve suppliers"})
	}

	return c.JSON(http.StatusOK, suppliers)
}

// GetSupplier returns a single supplier in the caller's company
func GetSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var supplier model.Supplier
	err := database.GetDB().Where("id = ? AND company_id = ?", id, companyID).First(&supplier).Error
	if err != nil {
		log.Warn("Supplier not found", zap.String("supplier_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "supplier not found"})
	}

	return c.JSON(http.StatusOK, supplier)
}

// CreateSupplier creates a supplier in the caller's company
func CreateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	supplier := model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		CreatedBy:     actor.ID,
		CompanyID:     companyID,
	}
	if err := database.GetDB().Create(&supplier).Error; err != nil {
		log.Error("Failed to create supplier", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create supplier"})
	}

	log.Info("Supplier created",
		zap.String("supplier_id", supplier.ID),
		zap.String("name", supplier.Name))
	return c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier updates a supplier's contact details
func UpdateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var supplier model.Supplier
	err := database.GetDB().Where("id = ? AND company_id = ?", id, companyID).First(&supplier).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "supplier not found"})
	}

	supplier.Name = req.Name
	supplier.ContactPerson = req.ContactPerson
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.Address = req.Address

	if err := database.GetDB().Save(&supplier).Error; err != nil {
		log.Error("Failed to update supplier", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update supplier"})
	}

	log.Info("Supplier updated", zap.String("supplier_id", id), zap.String("name", supplier.Name))
	return c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier removes a supplier. Products referencing it keep their
// history but lose the supplier link.
func DeleteSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	db := database.GetDB()
	var supplier model.Supplier
	if err := db.Where("id = ? AND company_id = ?", id, companyID).First(&supplier).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "supplier not found"})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("supplier_id = ?", id).
			Update("supplier_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&supplier).Error
	})
	if err != nil {
		log.Error("Failed to delete supplier", zap.String("supplier_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete supplier"})
	}

	log.Info("Supplier deleted", zap.String("supplier_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "supplier deleted successfully"})
}

// SearchSuppliers filters suppliers by name or contact person
func SearchSuppliers(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query parameter q is required"})
	}

	var suppliers []model.Supplier
	pattern := "%" + strings.ToLower(term) + "%"
	err := database.GetDB().
		Where("company_id = ? AND (LOWER(name) LIKE ? OR LOWER(contact_person) LIKE ?)", companyID, pattern, pattern).
		Find(&suppliers).Error
	if err != nil {
		log.Error("Failed to search suppliers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to search suppliers"})
	}

	return c.JSON(http.StatusOK, suppliers)
}

// ListTopSuppliers returns the suppliers with the highest total purchases
func ListTopSuppliers(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	var suppliers []model.Supplier
	err := database.GetDB().
		Where("company_id = ?", companyID).
		Order("total_purchases DESC").
		Limit(limit).
		Find(&suppliers).Error
	if err != nil {
		log.Error("Failed to list top suppliers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve suppliers"})
	}

	return c.JSON(http.StatusOK, suppliers)
}
