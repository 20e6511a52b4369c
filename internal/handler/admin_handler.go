package handler

import (
	"net/http"

	"shop-service/internal/middleware"
	"shop-service/internal/model"
	"shop-service/internal/service"
	"shop-service/pkg/database"
	"shop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// requireSystemAdmin rejects callers that are not platform administrators.
func requireSystemAdmin(c echo.Context) (*model.User, bool) {
	actor := middleware.Actor(c)
	if actor.Role != model.RoleSystemAdmin {
		return nil, false
	}
	return actor, true
}

// ListPendingCompanies returns companies awaiting approval
func ListPendingCompanies(c echo.Context) error {
	log := logger.FromContext(c)

	admin, ok := requireSystemAdmin(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "system admin access required"})
	}

	companies, err := service.GetPendingCompanies(database.GetDB())
	if err != nil {
		return writeServiceError(c, "list_pending_companies", err)
	}

	log.Info("Pending companies listed",
		zap.String("admin_id", admin.ID),
		zap.Int("count", len(companies)))
	return c.JSON(http.StatusOK, companies)
}

// ApproveCompany approves a pending company and activates its owner
func ApproveCompany(c echo.Context) error {
	log := logger.FromContext(c)
	companyID := c.Param("id")

	admin, ok := requireSystemAdmin(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "system admin access required"})
	}

	found, err := service.ApproveCompany(database.GetDB(), companyID, admin,
		c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return writeServiceError(c, "approve_company", err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	log.Info("Company approved",
		zap.String("company_id", companyID),
		zap.String("admin_id", admin.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "company approved"})
}

// RejectCompany rejects a pending company
func RejectCompany(c echo.Context) error {
	log := logger.FromContext(c)
	companyID := c.Param("id")

	admin, ok := requireSystemAdmin(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "system admin access required"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	found, err := service.RejectCompany(database.GetDB(), companyID, admin, req.Reason,
		c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return writeServiceError(c, "reject_company", err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	log.Info("Company rejected",
		zap.String("company_id", companyID),
		zap.String("admin_id", admin.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "company rejected"})
}

// SuspendCompany suspends an approved company and deactivates its users
func SuspendCompany(c echo.Context) error {
	log := logger.FromContext(c)
	companyID := c.Param("id")

	admin, ok := requireSystemAdmin(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "system admin access required"})
	}

	found, err := service.SuspendCompany(database.GetDB(), companyID, admin,
		c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return writeServiceError(c, "suspend_company", err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	log.Info("Company suspended",
		zap.String("company_id", companyID),
		zap.String("admin_id", admin.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "company suspended"})
}

// ListAllCompanies returns every company on the platform
func ListAllCompanies(c echo.Context) error {
	log := logger.FromContext(c)

	if _, ok := requireSystemAdmin(c); !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "system admin access required"})
	}

	var companies []model.Company
	if err := database.GetDB().Order("created_at DESC").Find(&companies).Error; err != nil {
		log.Error("Failed to list companies", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve companies"})
	}

	return c.JSON(http.StatusOK, companies)
}

// CreateCompany lets a system admin create an approved company directly
func CreateCompany(c echo.Context) error {
	log := logger.FromContext(c)

	admin, ok := requireSystemAdmin(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "system admin access required"})
	}

	var req CompanyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	company := model.Company{
		Name:        req.Name,
		Description: req.Description,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		LogoURL:     req.LogoURL,
		Status:      model.CompanyApproved,
		IsActive:    true,
		ApprovedBy:  &admin.ID,
	}
	if req.Currency != "" {
		company.Currency = req.Currency
	}
	if req.Timezone != "" {
		company.Timezone = req.Timezone
	}

	if err := database.GetDB().Create(&company).Error; err != nil {
		log.Error("Failed to create company", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create company"})
	}

	log.Info("Company created by admin",
		zap.String("company_id", company.ID),
		zap.String("name", company.Name),
		zap.String("admin_id", admin.ID))
	return c.JSON(http.StatusCreated, company)
}

// AssignUserToCompany lets a system admin place any user in any company
func AssignUserToCompany(c echo.Context) error {
	log := logger.FromContext(c)

	admin, ok := requireSystemAdmin(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "system admin access required"})
	}

	var req struct {
		UserID    string         `json:"user_id" validate:"required"`
		CompanyID string         `json:"company_id" validate:"required"`
		Role      model.UserRole `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Role == model.RoleSystemAdmin {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot assign this role"})
	}

	var company model.Company
	if err := database.GetDB().Where("id = ?", req.CompanyID).First(&company).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	var user model.User
	if err := database.GetDB().Where("id = ?", req.UserID).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	updates := map[string]interface{}{
		"company_id": company.ID,
		"role":       req.Role,
		"shop_name":  company.Name,
		"is_active":  1,
	}
	if err := database.GetDB().Model(&user).Updates(updates).Error; err != nil {
		log.Error("Failed to assign user to company",
			zap.String("user_id", req.UserID),
			zap.String("company_id", req.CompanyID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to assign user"})
	}

	log.Info("User assigned to company",
		zap.String("user_id", req.UserID),
		zap.String("company_id", req.CompanyID),
		zap.String("admin_id", admin.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "user assigned to company"})
}
