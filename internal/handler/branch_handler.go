package handler

import (
	"net/http"

	"shop-service/internal/middleware"
	"shop-service/internal/model"
	"shop-service/pkg/database"
	"shop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BranchRequest defines the structure for branch creation/update requests
type BranchRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	IsMain  bool   `json:"is_main"`
}

// ListBranches returns the company's branches
func ListBranches(c echo.Context) error {
	log := logger.FromContext(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}

	var branches []model.Branch
	err := database.GetDB().Where("company_id = ?", companyID).
		Order("is_main DESC, name ASC").
		Find(&branches).Error
	if err != nil {
		log.Error("Failed to list branches", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve branches"})
	}

	return c.JSON(http.StatusOK, branches)
}

// CreateBranch creates a branch in the caller's company
func CreateBranch(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}
	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can manage branches"})
	}

	var req BranchRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	branch := model.Branch{
		Name:      req.Name,
		CompanyID: companyID,
		Address:   req.Address,
		Phone:     req.Phone,
		Email:     req.Email,
		IsActive:  true,
		IsMain:    req.IsMain,
		CreatedBy: &actor.ID,
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		// A company has at most one main branch.
		if branch.IsMain {
			if err := tx.Model(&model.Branch{}).Where("company_id = ?", companyID).
				Update("is_main", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&branch).Error
	})
	if err != nil {
		log.Error("Failed to create branch", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create branch"})
	}

	log.Info("Branch created",
		zap.String("branch_id", branch.ID),
		zap.String("name", branch.Name))
	return c.JSON(http.StatusCreated, branch)
}

// UpdateBranch updates a branch's details
func UpdateBranch(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}
	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can manage branches"})
	}

	var req BranchRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var branch model.Branch
	err := database.GetDB().Where("id = ? AND company_id = ?", id, companyID).First(&branch).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "branch not found"})
	}

	branch.Name = req.Name
	branch.Address = req.Address
	branch.Phone = req.Phone
	branch.Email = req.Email

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if req.IsMain && !branch.IsMain {
			if err := tx.Model(&model.Branch{}).Where("company_id = ?", companyID).
				Update("is_main", false).Error; err != nil {
				return err
			}
			branch.IsMain = true
		}
		return tx.Save(&branch).Error
	})
	if err != nil {
		log.Error("Failed to update branch", zap.String("branch_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update branch"})
	}

	log.Info("Branch updated", zap.String("branch_id", id), zap.String("name", branch.Name))
	return c.JSON(http.StatusOK, branch)
}

// DeleteBranch removes a branch. The main branch cannot be deleted.
func DeleteBranch(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)
	id := c.Param("id")

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}
	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can manage branches"})
	}

	var branch model.Branch
	err := database.GetDB().Where("id = ? AND company_id = ?", id, companyID).First(&branch).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "branch not found"})
	}
	if branch.IsMain {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "the main branch cannot be deleted"})
	}

	if err := database.GetDB().Delete(&branch).Error; err != nil {
		log.Error("Failed to delete branch", zap.String("branch_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete branch"})
	}

	log.Info("Branch deleted", zap.String("branch_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "branch deleted successfully"})
}
