package handler

import (
	"errors"
	"net/http"
	"time"

	"shop-service/internal/service"
	"shop-service/pkg/logger"
	"shop-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// writeServiceError maps domain failures onto HTTP statuses. Validation
// problems are surfaced verbatim; anything unexpected is logged with full
// context and answered with a generic message.
func writeServiceError(c echo.Context, operation string, err error) error {
	log := logger.FromContext(c)

	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		prometheus.InsufficientStockTotal.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": stockErr.Error()})
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationErr.Message})
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrNoCompany):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDeactivated),
		errors.Is(err, service.ErrPendingAssignment):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	}

	log.Error("Operation failed",
		zap.String("operation", operation),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "an unexpected error occurred"})
}

// parseDateRange reads inclusive ISO calendar bounds from the query
// string. The returned end bound is the start of the following day, so
// callers can use an exclusive comparison.
func parseDateRange(c echo.Context) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	startStr := c.QueryParam("start_date")
	if startStr == "" {
		startStr = c.QueryParam("startDate")
	}
	endStr := c.QueryParam("end_date")
	if endStr == "" {
		endStr = c.QueryParam("endDate")
	}

	if startStr != "" {
		t, err := time.ParseInLocation("2006-01-02", startStr, time.UTC)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if endStr != "" {
		t, err := time.ParseInLocation("2006-01-02", endStr, time.UTC)
		if err != nil {
			return nil, nil, err
		}
		next := t.AddDate(0, 0, 1)
		end = &next
	}
	return start, end, nil
}
