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
)

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

// ListCustomers returns the company's customers
func ListCustomers(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var customers []model.Customer
	err := database.GetDB().Where("company_id = ?", companyID).Order("name ASC").Find(&customers).Error
	if err != nil {
		log.Error("Failed to list customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve customers"})
	}

	return c.JSON(http.StatusOK, customers)
}

// GetCustomer returns a single customer in the caller's company
func GetCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var customer model.Customer
	err := database.GetDB().Where("id = ? AND company_id = ?", id, companyID).First(&customer).Error
	if err != nil {
		log.Warn("Customer not found", zap.String("customer_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer creates a customer in the caller's company
func CreateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	customer := model.Customer{
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		CreatedBy: actor.ID,
		CompanyID: companyID,
	}
	if err := database.GetDB().Create(&customer).Error; err != nil {
		log.Error("Failed to create customer", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create customer"})
	}

	log.Info("Customer created",
		zap.String("customer_id", customer.ID),
		zap.String("name", customer.Name))
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer updates a customer's contact details. Purchase aggregates
// are owned by the sale engine and are not writable here.
func UpdateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var customer model.Customer
	err := database.GetDB().Where("id = ? AND company_id = ?", id, companyID).First(&customer).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address

	if err := database.GetDB().Save(&customer).Error; err != nil {
		log.Error("Failed to update customer", zap.String("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update customer"})
	}

	log.Info("Customer updated", zap.String("customer_id", id), zap.String("name", customer.Name))
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer. Customers referenced by sales cannot
// be deleted.
func DeleteCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	db := database.GetDB()
	var customer model.Customer
	if err := db.Where("id = ? AND company_id = ?", id, companyID).First(&customer).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	var saleCount int64
	db.Model(&model.Sale{}).Where("customer_id = ?", id).Count(&saleCount)
	if saleCount > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer has sales and cannot be deleted"})
	}

	if err := db.Delete(&customer).Error; err != nil {
		log.Error("Failed to delete customer", zap.String("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete customer"})
	}

	log.Info("Customer deleted", zap.String("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "customer deleted successfully"})
}

// SearchCustomers filters customers by name or phone
func SearchCustomers(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query parameter q is required"})
	}

	var customers []model.Customer
	pattern := "%" + strings.ToLower(term) + "%"
	err := database.GetDB().
		Where("company_id = ? AND (LOWER(name) LIKE ? OR phone LIKE ?)", companyID, pattern, "%"+term+"%").
		Find(&customers).Error
	if err != nil {
		log.Error("Failed to search customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to search customers"})
	}

	return c.JSON(http.StatusOK, customers)
}

// ListTopCustomers returns the customers with the highest total purchases
func ListTopCustomers(c echo.Context) error {
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

	var customers []model.Customer
	err := database.GetDB().
		Where("company_id = ?", companyID).
		Order("total_purchases DESC").
		Limit(limit).
		Find(&customers).Error
	if err != nil {
		log.Error("Failed to list top customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve customers"})
	}

	return c.JSON(http.StatusOK, customers)
}
