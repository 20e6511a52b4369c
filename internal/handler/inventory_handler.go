package handler

import (
	"net/http"
	"time"

	"shop-service/internal/middleware"
	"shop-service/internal/service"
	"shop-service/pkg/database"
	"shop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// reportRange resolves the requested period, defaulting to the last
// thirty days ending now.
func reportRange(c echo.Context) (time.Time, time.Time, error) {
	start, end, err := parseDateRange(c)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	now := time.Now().UTC()
	resolvedEnd := now
	if end != nil {
		resolvedEnd = *end
	}
	resolvedStart := resolvedEnd.AddDate(0, 0, -30)
	if start != nil {
		resolvedStart = *start
	}
	return resolvedStart, resolvedEnd, nil
}

// GetInventorySummary returns stock counts and valuation for the company
func GetInventorySummary(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	summary, err := service.GetInventorySummary(database.GetDB(), companyID)
	if err != nil {
		return writeServiceError(c, "inventory_summary", err)
	}

	log.Info("Inventory summary generated", zap.String("company_id", companyID))
	return c.JSON(http.StatusOK, summary)
}

// GetStockAlerts returns out-of-stock and low-stock products
func GetStockAlerts(c echo.Context) error {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	alerts, err := service.GetStockAlerts(database.GetDB(), companyID)
	if err != nil {
		return writeServiceError(c, "stock_alerts", err)
	}

	return c.JSON(http.StatusOK, alerts)
}

// GetCategoryInventory returns the per-category stock rollup
func GetCategoryInventory(c echo.Context) error {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	rollup, err := service.GetCategoryInventory(database.GetDB(), companyID)
	if err != nil {
		return writeServiceError(c, "category_inventory", err)
	}

	return c.JSON(http.StatusOK, rollup)
}

// GetRestockList returns active products that need restocking
func GetRestockList(c echo.Context) error {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	products, err := service.GetProductsNeedingRestock(database.GetDB(), companyID)
	if err != nil {
		return writeServiceError(c, "restock_list", err)
	}

	return c.JSON(http.StatusOK, products)
}

// GetInventoryTurnover returns the turnover ratio for the requested period
func GetInventoryTurnover(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	start, end, err := reportRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be in YYYY-MM-DD format"})
	}

	turnover, err := service.InventoryTurnover(database.GetDB(), companyID, start, end)
	if err != nil {
		return writeServiceError(c, "inventory_turnover", err)
	}

	log.Info("Inventory turnover computed",
		zap.String("company_id", companyID),
		zap.String("turnover", turnover.String()))
	return c.JSON(http.StatusOK, echo.Map{
		"start_date": start.Format("2006-01-02"),
		"end_date":   end.Format("2006-01-02"),
		"turnover":   turnover,
	})
}
