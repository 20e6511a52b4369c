package handler

import (
	"net/http"

	"shop-service/internal/middleware"
	"shop-service/internal/service"
	"shop-service/pkg/database"
	"shop-service/pkg/logger"
	"shop-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListSales returns the company's sales newest first, optionally bounded
// by inclusive start_date / end_date calendar days
func ListSales(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	start, end, err := parseDateRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be in YYYY-MM-DD format"})
	}

	sales, err := service.ListSales(database.GetDB(), companyID, start, end)
	if err != nil {
		return writeServiceError(c, "list_sales", err)
	}

	log.Info("Sales listed", zap.Int("count", len(sales)))
	return c.JSON(http.StatusOK, sales)
}

// ListTodaySales returns the sales recorded during the current UTC day
func ListTodaySales(c echo.Context) error {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	sales, err := service.TodaySales(database.GetDB(), companyID)
	if err != nil {
		return writeServiceError(c, "today_sales", err)
	}

	return c.JSON(http.StatusOK, sales)
}

// GetSale returns one sale with its items
func GetSale(c echo.Context) error {
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	sale, err := service.GetSaleByID(database.GetDB(), id, companyID)
	if err != nil {
		return writeServiceError(c, "get_sale", err)
	}

	return c.JSON(http.StatusOK, sale)
}

// CreateSale records a new sale transaction
func CreateSale(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	var req service.SaleInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	sale, err := service.CreateSale(database.GetDB(), &req, actor)
	if err != nil {
		prometheus.RecordSaleOperation("create", "error")
		return writeServiceError(c, "create_sale", err)
	}

	prometheus.RecordSaleOperation("create", "success")
	log.Info("Sale created",
		zap.String("sale_id", sale.ID),
		zap.Int("items", len(sale.Items)),
		zap.String("total_amount", sale.TotalAmount.StringFixed(2)))
	return c.JSON(http.StatusCreated, sale)
}

// UpdateSale replaces a sale's items, reversing the previous stock
// movements and reconciling customer aggregates
func UpdateSale(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)
	id := c.Param("id")

	var req service.SaleInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	sale, err := service.UpdateSale(database.GetDB(), id, &req, actor)
	if err != nil {
		prometheus.RecordSaleOperation("update", "error")
		return writeServiceError(c, "update_sale", err)
	}

	prometheus.RecordSaleOperation("update", "success")
	log.Info("Sale updated",
		zap.String("sale_id", sale.ID),
		zap.Int("items", len(sale.Items)),
		zap.String("total_amount", sale.TotalAmount.StringFixed(2)))
	return c.JSON(http.StatusOK, sale)
}

// DeleteSale cancels a sale, restoring stock and customer aggregates
func DeleteSale(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)
	id := c.Param("id")

	found, err := service.DeleteSale(database.GetDB(), id, actor)
	if err != nil {
		prometheus.RecordSaleOperation("delete", "error")
		return writeServiceError(c, "delete_sale", err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sale not found"})
	}

	prometheus.RecordSaleOperation("delete", "success")
	log.Info("Sale cancelled", zap.String("sale_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "sale deleted successfully"})
}
