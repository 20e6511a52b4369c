package handler

import (
	"net/http"
	"strings"
	"time"

	"shop-service/internal/middleware"
	"shop-service/internal/model"
	"shop-service/pkg/database"
	"shop-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const invitationTTL = 7 * 24 * time.Hour

// InvitationRequest defines the structure for invitation creation requests
type InvitationRequest struct {
	Email string         `json:"email" validate:"required,email"`
	Role  model.UserRole `json:"role"`
}

// CreateInvitation invites a user by email into the caller's company
func CreateInvitation(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no company context found"})
	}
	if actor.Role != model.RoleOwner && actor.Role != model.RoleManager {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only owners and managers can invite users"})
	}

	var req InvitationRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Role == model.RoleSystemAdmin || req.Role == model.RoleOwner {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot invite users with this role"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var pending int64
	database.GetDB().Model(&model.Invitation{}).
		Where("email = ? AND company_id = ? AND is_accepted = ? AND is_rejected = ? AND expires_at > ?",
			email, companyID, false, false, time.Now().UTC()).
		Count(&pending)
	if pending > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "an invitation for this email is already pending"})
	}

	invitation := model.Invitation{
		Email:           email,
		Role:            req.Role,
		CompanyID:       &companyID,
		Token:           uuid.NewString(),
		ExpiresAt:       time.Now().UTC().Add(invitationTTL),
		InvitedByUserID: actor.ID,
	}
	if err := database.GetDB().Create(&invitation).Error; err != nil {
		log.Error("Failed to create invitation", zap.String("email", email), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create invitation"})
	}

	log.Info("Invitation created",
		zap.String("invitation_id", invitation.ID),
		zap.String("email", email),
		zap.String("company_id", companyID))
	return c.JSON(http.StatusCreated, invitation)
}

// ListMyInvitations returns pending invitations addressed to the caller
func ListMyInvitations(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	var invitations []model.Invitation
	err := database.GetDB().
		Where("email = ? AND is_accepted = ? AND is_rejected = ? AND expires_at > ?",
			strings.ToLower(actor.Email), false, false, time.Now().UTC()).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		log.Error("Failed to list invitations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve invitations"})
	}

	return c.JSON(http.StatusOK, invitations)
}

// AcceptInvitation accepts an invitation addressed to the caller and links
// them to the inviting company
func AcceptInvitation(c echo.Context) error {
	id := c.Param("id")
	actor := middleware.Actor(c)

	var invitation model.Invitation
	err := database.GetDB().
		Where("id = ? AND email = ?", id, strings.ToLower(actor.Email)).
		First(&invitation).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
	}

	return consumeInvitation(c, &invitation, actor.ID)
}

// ClaimInvitation accepts an invitation by its token, for users following
// an invitation link
func ClaimInvitation(c echo.Context) error {
	actor := middleware.Actor(c)

	var req struct {
		Token string `json:"token" validate:"required"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invitation token is required"})
	}

	var invitation model.Invitation
	err := database.GetDB().Where("token = ?", req.Token).First(&invitation).Error
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
	}
	if !strings.EqualFold(invitation.Email, actor.Email) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invitation was issued to a different email"})
	}

	return consumeInvitation(c, &invitation, actor.ID)
}

// RejectInvitation marks an invitation addressed to the caller as rejected
func RejectInvitation(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	actor := middleware.Actor(c)

	result := database.GetDB().Model(&model.Invitation{}).
		Where("id = ? AND email = ? AND is_accepted = ? AND is_rejected = ?",
			id, strings.ToLower(actor.Email), false, false).
		Update("is_rejected", true)
	if result.Error != nil {
		log.Error("Failed to reject invitation", zap.String("invitation_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject invitation"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
	}

	log.Info("Invitation rejected", zap.String("invitation_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "invitation rejected"})
}

// consumeInvitation validates the invitation state and links the user to
// the company in one transaction.
func consumeInvitation(c echo.Context, invitation *model.Invitation, userID string) error {
	log := logger.FromContext(c)

	if invitation.IsAccepted || invitation.IsRejected {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invitation is no longer open"})
	}
	if !invitation.ExpiresAt.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invitation has expired"})
	}
	if invitation.CompanyID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invitation has no company"})
	}

	db := database.GetDB()
	var company model.Company
	if err := db.Where("id = ?", *invitation.CompanyID).First(&company).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"company_id": company.ID,
			"role":       invitation.Role,
			"shop_name":  company.Name,
			"is_active":  1,
		}
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(invitation).Update("is_accepted", true).Error
	})
	if err != nil {
		log.Error("Failed to accept invitation",
			zap.String("invitation_id", invitation.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to accept invitation"})
	}

	log.Info("Invitation accepted",
		zap.String("invitation_id", invitation.ID),
		zap.String("company_id", company.ID),
		zap.String("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "invitation accepted",
		"company_id":   company.ID,
		"company_name": company.Name,
		"role":         invitation.Role,
	})
}
