package jwtutil

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"shop-service/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	secret          []byte
	expirationHours int
)

// UserClaims represents the JWT claims for an authenticated user
type UserClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	BranchID  string `json:"branch_id,omitempty"`
	Role      int    `json:"role"`
	ShopName  string `json:"shop_name,omitempty"`
	jwt.RegisteredClaims
}

// Initialize configures the signing key and token lifetime
func Initialize(cfg *config.JWTConfig) {
	secret = []byte(cfg.SigningKey)
	expirationHours = cfg.ExpirationHours
	if expirationHours <= 0 {
		expirationHours = 1
	}
}

// GenerateToken creates a signed access token carrying the user's company context
func GenerateToken(userID, email, name, companyID, branchID string, role int, shopName string) (string, time.Time, error) {
	expiry := time.Now().Add(time.Duration(expirationHours) * time.Hour)
	claims := UserClaims{
		UserID:    userID,
		Email:     email,
		Name:      name,
		CompanyID: companyID,
		BranchID:  branchID,
		Role:      role,
		ShopName:  shopName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	return signed, expiry, err
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// GenerateRefreshToken returns an opaque token stored against the user row
func GenerateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
