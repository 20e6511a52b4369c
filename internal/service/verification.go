package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"shop-service/internal/model"

	"gorm.io/gorm"
)

// generateOTP returns a 6-digit one-time code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// CreateVerification issues a fresh OTP for the user's email, valid for
// ten minutes.
func CreateVerification(db *gorm.DB, userID, email string) (*model.EmailVerification, error) {
	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}

	verification := model.EmailVerification{
		UserID:    userID,
		Email:     email,
		OTP:       otp,
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}
	if err := db.Create(&verification).Error; err != nil {
		return nil, err
	}
	return &verification, nil
}

// VerifyOTP checks the latest unexpired OTP for the user and marks the
// user's email verified when it matches.
func VerifyOTP(db *gorm.DB, userID, otp string) (bool, error) {
	var verification model.EmailVerification
	err := db.Where("user_id = ? AND otp = ? AND is_verified = ? AND expires_at > ?",
		userID, otp, false, time.Now().UTC()).
		Order("created_at DESC").
		First(&verification).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&verification).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", userID).Update("is_email_verified", true).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
