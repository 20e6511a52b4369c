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

// Register handles new account creation
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Processing registration request")

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	result, err := service.Register(database.GetDB(), &req)
	if err != nil {
		return writeServiceError(c, "register", err)
	}

	log.Info("User registered successfully",
		zap.String("user_id", result.ID),
		zap.String("email", result.Email))
	return c.JSON(http.StatusCreated, result)
}

// Login handles user authentication
func Login(c echo.Context) error {
	log := logger.FromContext(c)

	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	prometheus.AuthAttemptsCounter.Inc()

	result, err := service.Login(database.GetDB(), &req)
	if err != nil {
		prometheus.RecordAuthError("login_failed")
		log.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		return writeServiceError(c, "login", err)
	}

	log.Info("User logged in successfully",
		zap.String("user_id", result.ID),
		zap.String("email", result.Email))
	return c.JSON(http.StatusOK, result)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func RefreshToken(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	result, err := service.Refresh(database.GetDB(), req.RefreshToken)
	if err != nil {
		prometheus.RecordAuthError("refresh_failed")
		return writeServiceError(c, "refresh_token", err)
	}

	log.Info("Token refreshed", zap.String("user_id", result.ID))
	return c.JSON(http.StatusOK, result)
}

// Logout revokes the caller's refresh token
func Logout(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	revoked, err := service.Revoke(database.GetDB(), actor.ID)
	if err != nil {
		return writeServiceError(c, "logout", err)
	}
	if !revoked {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	log.Info("User logged out", zap.String("user_id", actor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

// SendVerification issues a fresh email verification code for the caller
func SendVerification(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	verification, err := service.CreateVerification(database.GetDB(), actor.ID, actor.Email)
	if err != nil {
		return writeServiceError(c, "send_verification", err)
	}

	log.Info("Verification code created",
		zap.String("user_id", actor.ID),
		zap.Time("expires_at", verification.ExpiresAt))
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "verification code sent",
		"expires_at": verification.ExpiresAt,
	})
}

// VerifyEmail checks the submitted code and marks the account verified
func VerifyEmail(c echo.Context) error {
	log := logger.FromContext(c)
	actor := middleware.Actor(c)

	var req struct {
		OTP string `json:"otp" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	ok, err := service.VerifyOTP(database.GetDB(), actor.ID, req.OTP)
	if err != nil {
		return writeServiceError(c, "verify_email", err)
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired verification code"})
	}

	log.Info("Email verified", zap.String("user_id", actor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified successfully"})
}
