package middleware

import (
	"net/http"
	"strings"

	"shop-service/internal/model"
	"shop-service/pkg/jwtutil"
	"shop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token and extracts the user's company context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("user_name", claims.Name)
		c.Set("user_role", claims.Role)
		c.Set("company_id", claims.CompanyID)
		c.Set("branch_id", claims.BranchID)

		return next(c)
	}
}

// Actor reconstructs the acting user from the validated claims.
func Actor(c echo.Context) *model.User {
	user := &model.User{
		Name:  stringFromContext(c, "user_name"),
		Email: stringFromContext(c, "email"),
	}
	user.ID = stringFromContext(c, "user_id")
	if role, ok := c.Get("user_role").(int); ok {
		user.Role = model.UserRole(role)
	}
	if companyID := stringFromContext(c, "company_id"); companyID != "" {
		user.CompanyID = &companyID
	}
	if branchID := stringFromContext(c, "branch_id"); branchID != "" {
		user.BranchID = &branchID
	}
	return user
}

// CompanyID retrieves the company ID from the context; ok is false when
// the token carried no company.
func CompanyID(c echo.Context) (string, bool) {
	companyID := stringFromContext(c, "company_id")
	return companyID, companyID != ""
}

func stringFromContext(c echo.Context, key string) string {
	if v, ok := c.Get(key).(string); ok {
		return v
	}
	return ""
}
