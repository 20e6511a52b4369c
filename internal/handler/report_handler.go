package handler

import (
	"net/http"
	"strconv"

	"shop-service/internal/middleware"
	"shop-service/internal/service"
	"shop-service/pkg/database"
	"shop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetProfitLossReport returns revenue, cost and profit with a category
// breakdown for the requested period
func GetProfitLossReport(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	start, end, err := reportRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be in YYYY-MM-DD format"})
	}

	report, err := service.GetProfitLossReport(database.GetDB(), companyID, start, end)
	if err != nil {
		return writeServiceError(c, "profit_loss_report", err)
	}

	log.Info("Profit-loss report generated", zap.String("company_id", companyID))
	return c.JSON(http.StatusOK, report)
}

// GetDailySalesReport returns per-day sales totals with top products
func GetDailySalesReport(c echo.Context) error {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	start, end, err := reportRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be in YYYY-MM-DD format"})
	}

	reports, err := service.GetDailySalesReport(database.GetDB(), companyID, start, end)
	if err != nil {
		return writeServiceError(c, "daily_sales_report", err)
	}

	return c.JSON(http.StatusOK, reports)
}

// GetTopProducts returns the best selling products for the period
func GetTopProducts(c echo.Context) error {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	start, end, err := reportRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be in YYYY-MM-DD format"})
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	products, err := service.GetTopSellingProducts(database.GetDB(), companyID, start, end, limit)
	if err != nil {
		return writeServiceError(c, "top_products", err)
	}

	return c.JSON(http.StatusOK, products)
}

// ExportDailySalesReport streams the daily sales report as an XLSX file
func ExportDailySalesReport(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	start, end, err := reportRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be in YYYY-MM-DD format"})
	}

	reports, err := service.GetDailySalesReport(database.GetDB(), companyID, start, end)
	if err != nil {
		return writeServiceError(c, "export_daily_sales", err)
	}

	file, err := service.ExportDailySalesXLSX(reports)
	if err != nil {
		return writeServiceError(c, "export_daily_sales", err)
	}

	filename := "daily-sales-" + start.Format("2006-01-02") + "-" + end.Format("2006-01-02") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	if err := file.Write(c.Response()); err != nil {
		log.Error("Failed to stream report", zap.Error(err))
		return err
	}

	log.Info("Daily sales report exported",
		zap.String("company_id", companyID),
		zap.Int("days", len(reports)))
	return nil
}
