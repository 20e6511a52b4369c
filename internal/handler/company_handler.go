package handler

import (
	"net/http"
	"strings"

	"shop-service/internal/middleware"
	"shop-service/internal/model"
	"shop-service/internal/service"
	"shop-service/pkg/database"
	"shop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompanyRequest defines the structure for company update requests
type CompanyRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	LogoURL     string `json:"logo_url"`
	Currency    string `json:"currency"`
	Timezone    string `json:"timezone"`
}

// GetMyCompany returns the caller's company profile
func GetMyCompany(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var company model.Company
	if err := database.GetDB().Where("id = ?", companyID).First(&company).Error; err != nil {
		log.Error("Company not found", zap.String("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	return c.JSON(http.StatusOK, company)
}

// UpdateMyCompany updates the caller's company profile. Owners and
// managers only.
func UpdateMyCompany(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}
	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can update the company"})
	}

	var req CompanyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var company model.Company
	if err := database.GetDB().Where("id = ?", companyID).First(&company).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	company.Name = req.Name
	company.Description = req.Description
	company.Phone = req.Phone
	company.Email = req.Email
	company.Address = req.Address
	company.LogoURL = req.LogoURL
	if req.Currency != "" {
		company.Currency = req.Currency
	}
	if req.Timezone != "" {
		company.Timezone = req.Timezone
	}

	if err := database.GetDB().Save(&company).Error; err != nil {
		log.Error("Failed to update company", zap.String("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update company"})
	}

	log.Info("Company updated", zap.String("company_id", companyID), zap.String("name", company.Name))
	return c.JSON(http.StatusOK, company)
}

// ListCompanyUsers returns all users belonging to the caller's company
func ListCompanyUsers(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var users []model.User
	if err := database.GetDB().Where("company_id = ?", companyID).Order("created_at ASC").Find(&users).Error; err != nil {
		log.Error("Failed to list company users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, users)
}

// SearchCompanyUsers filters company users by name or email
func SearchCompanyUsers(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	term := strings.TrimSpace(c.QueryParam("q"))
	if term == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query parameter q is required"})
	}

	var users []model.User
	pattern := "%" + strings.ToLower(term) + "%"
	err := database.GetDB().
		Where("company_id = ? AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", companyID, pattern, pattern).
		Find(&users).Error
	if err != nil {
		log.Error("Failed to search company users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to search users"})
	}

	return c.JSON(http.StatusOK, users)
}

// InviteCompanyUser creates a colleague account inside the caller's company
func InviteCompanyUser(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}
	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can invite users"})
	}

	var req service.InviteInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Role == model.RoleSystemAdmin || req.Role == model.RoleOwner {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot invite users with this role"})
	}

	result, err := service.InviteUser(database.GetDB(), &req, companyID)
	if err != nil {
		return writeServiceError(c, "invite_company_user", err)
	}

	log.Info("Company user invited",
		zap.String("company_id", companyID),
		zap.String("user_id", result.ID),
		zap.String("email", result.Email))
	return c.JSON(http.StatusCreated, result)
}

// UpdateCompanyUserRole changes a colleague's role. Owners cannot be
// demoted and callers cannot change their own role.
func UpdateCompanyUserRole(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)
	userID := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}
	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can change roles"})
	}
	if userID == actor.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot change your own role"})
	}

	var req struct {
		Role model.UserRole `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Role == model.RoleSystemAdmin || req.Role == model.RoleOwner {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot assign this role"})
	}

	var user model.User
	if err := database.GetDB().Where("id = ? AND company_id = ?", userID, companyID).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if user.Role == model.RoleOwner {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot change the owner's role"})
	}

	oldRole := user.Role
	if err := database.GetDB().Model(&user).Update("role", req.Role).Error; err != nil {
		log.Error("Failed to update user role", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update role"})
	}

	log.Info("User role updated",
		zap.String("user_id", userID),
		zap.String("old_role", oldRole.String()),
		zap.String("new_role", req.Role.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "role updated successfully"})
}

// RemoveCompanyUser detaches a colleague from the company
func RemoveCompanyUser(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)
	userID := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}
	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can remove users"})
	}
	if userID == actor.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot remove yourself"})
	}

	var user model.User
	if err := database.GetDB().Where("id = ? AND company_id = ?", userID, companyID).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if user.Role == model.RoleOwner {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot remove the company owner"})
	}

	updates := map[string]interface{}{
		"company_id": nil,
		"branch_id":  nil,
		"role":       model.RoleUnassigned,
		"shop_name":  "Pending",
	}
	if err := database.GetDB().Model(&user).Updates(updates).Error; err != nil {
		log.Error("Failed to remove company user", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove user"})
	}

	log.Info("User removed from company",
		zap.String("company_id", companyID),
		zap.String("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "user removed from company"})
}

// setCompanyUserActive activates or deactivates a colleague's account
func setCompanyUserActive(c echo.Context, active int) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)
	userID := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}
	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can change account status"})
	}
	if userID == actor.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot change your own account status"})
	}

	result := database.GetDB().Model(&model.User{}).
		Where("id = ? AND company_id = ?", userID, companyID).
		Update("is_active", active)
	if result.Error != nil {
		log.Error("Failed to change account status", zap.String("user_id", userID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to change account status"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	message := "user deactivated"
	if active == 1 {
		message = "user activated"
	}
	log.Info(message, zap.String("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// ActivateCompanyUser re-enables a deactivated account
func ActivateCompanyUser(c echo.Context) error {
	return setCompanyUserActive(c, 1)
}

// DeactivateCompanyUser disables an account without removing it
func DeactivateCompanyUser(c echo.Context) error {
	return setCompanyUserActive(c, 0)
}

// ListUnassignedUsers returns registered users waiting for a company link
func ListUnassignedUsers(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can view pending users"})
	}

	var users []model.User
	err := database.GetDB().
		Where("company_id IS NULL AND role = ?", model.RoleUnassigned).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		log.Error("Failed to list unassigned users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	return c.JSON(http.StatusOK, users)
}

// LinkCompanyUser attaches an unassigned user to the caller's company
func LinkCompanyUser(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)
	userID := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}
	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can link users"})
	}

	var req struct {
		Role model.UserRole `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Role == model.RoleSystemAdmin || req.Role == model.RoleOwner {
		req.Role = model.RoleStaff
	}

	var company model.Company
	if err := database.GetDB().Where("id = ?", companyID).First(&company).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	var user model.User
	err := database.GetDB().
		Where("id = ? AND company_id IS NULL AND role = ?", userID, model.RoleUnassigned).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unassigned user not found"})
		}
		log.Error("Failed to load user", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to link user"})
	}

	updates := map[string]interface{}{
		"company_id": company.ID,
		"role":       req.Role,
		"shop_name":  company.Name,
		"is_active":  1,
	}
	if err := database.GetDB().Model(&user).Updates(updates).Error; err != nil {
		log.Error("Failed to link user to company", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to link user"})
	}

	log.Info("User linked to company",
		zap.String("company_id", company.ID),
		zap.String("user_id", userID),
		zap.String("role", req.Role.String()))
	return c.JSON(http.StatusOK, echo.Map{"message": "user linked to company"})
}
