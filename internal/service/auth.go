package service

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"shop-service/internal/model"
	"shop-service/pkg/jwtutil"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Authentication failures that map to 401 rather than 400.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDeactivated  = errors.New("account is deactivated, please contact your company manager")
	ErrPendingAssignment   = errors.New("account is pending company assignment")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// RegisterInput is the self-service registration request.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
}

// LoginInput is the credential pair for login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is the response payload for login, refresh and invite flows.
type AuthResult struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	Name          string         `json:"name"`
	Phone         string         `json:"phone,omitempty"`
	Role          model.UserRole `json:"role"`
	CompanyID     string         `json:"company_id"`
	CompanyName   string         `json:"company_name"`
	CompanyStatus *int           `json:"company_status,omitempty"`
	BranchID      string         `json:"branch_id"`
	BranchName    string         `json:"branch_name"`
	Token         string         `json:"token"`
	RefreshToken  string         `json:"refresh_token"`
	TokenExpiry   time.Time      `json:"token_expiry"`
	HasCompany    bool           `json:"has_company"`
	HasBranch     bool           `json:"has_branch"`
	IsApproved    bool           `json:"is_approved"`
}

// RegisterResult is the response payload for registration.
type RegisterResult struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

// Register creates a user account. Registrations that claim a company
// become that company's pending owner and wait for admin approval;
// bare registrations are active immediately as unassigned users.
func Register(db *gorm.DB, in *RegisterInput) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationf("user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var company *model.Company
	if in.CompanyID != "" {
		var c model.Company
		if err := db.Where("id = ?", in.CompanyID).First(&c).Error; err == nil {
			company = &c
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	user := model.User{
		Email:        email,
		Name:         in.Name,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		ShopName:     "Pending",
		Role:         model.RoleUnassigned,
		IsActive:     1,
	}
	message := "Registration successful. You can now login to your dashboard."
	if company != nil {
		user.ShopName = company.Name
		user.Role = model.RoleOwner
		user.CompanyID = &company.ID
		user.IsActive = 0 // pending admin approval
		message = "Registration successful. Waiting for admin approval."
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if company != nil {
			return tx.Model(company).Update("owner_id", user.ID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Phone:   user.Phone,
		Message: message,
	}, nil
}

// Login authenticates a user and issues an access token plus a rotated
// refresh token.
func Login(db *gorm.DB, in *LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsActive == 0 {
		return nil, ErrAccountDeactivated
	}
	if user.CompanyID == nil && user.Role != model.RoleSystemAdmin && user.Role != model.RoleUnassigned {
		return nil, ErrPendingAssignment
	}

	now := time.Now().UTC()
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}

	return buildAuthResult(db, &user)
}

// Refresh rotates the user's refresh token and issues a new access token.
func Refresh(db *gorm.DB, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	var user model.User
	if err := db.Where("refresh_token = ?", refreshToken).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if user.RefreshTokenExpiry == nil || !user.RefreshTokenExpiry.After(time.Now().UTC()) {
		return nil, ErrInvalidRefreshToken
	}

	return buildAuthResult(db, &user)
}

// Revoke clears the user's stored refresh token.
func Revoke(db *gorm.DB, userID string) (bool, error) {
	result := db.Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"refresh_token": nil, "refresh_token_expiry": nil})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// InviteInput is a company-manager request to create a colleague account.
type InviteInput struct {
	Email    string         `json:"email" validate:"required,email"`
	Name     string         `json:"name" validate:"required"`
	Phone    string         `json:"phone,omitempty"`
	Role     model.UserRole `json:"role"`
	Password string         `json:"password,omitempty"`
}

// InviteUser creates an active account inside the actor's company. When no
// password is supplied a random one is generated.
func InviteUser(db *gorm.DB, in *InviteInput, companyID string) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationf("user with this email already exists")
	}

	var company model.Company
	if err := db.Where("id = ?", companyID).First(&company).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, validationf("company not found")
		}
		return nil, err
	}

	password := in.Password
	if password == "" {
		generated, err := randomPassword(12)
		if err != nil {
			return nil, err
		}
		password = generated
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Email:        email,
		Name:         in.Name,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		ShopName:     company.Name,
		Role:         in.Role,
		CompanyID:    &company.ID,
		IsActive:     1,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	return buildAuthResult(db, &user)
}

// buildAuthResult issues tokens for the user and persists the rotated
// refresh token.
func buildAuthResult(db *gorm.DB, user *model.User) (*AuthResult, error) {
	var company *model.Company
	if user.CompanyID != nil {
		var c model.Company
		if err := db.Where("id = ?", *user.CompanyID).First(&c).Error; err == nil {
			company = &c
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	var branch *model.Branch
	if user.BranchID != nil {
		var b model.Branch
		if err := db.Where("id = ?", *user.BranchID).First(&b).Error; err == nil {
			branch = &b
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	companyID := ""
	branchID := ""
	if company != nil {
		companyID = company.ID
	}
	if branch != nil {
		branchID = branch.ID
	}

	token, expiry, err := jwtutil.GenerateToken(user.ID, user.Email, user.Name, companyID, branchID, int(user.Role), user.ShopName)
	if err != nil {
		return nil, err
	}
	refreshToken, err := jwtutil.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	refreshExpiry := time.Now().UTC().Add(7 * 24 * time.Hour)
	err = db.Model(user).Updates(map[string]interface{}{
		"refresh_token":        refreshToken,
		"refresh_token_expiry": refreshExpiry,
	}).Error
	if err != nil {
		return nil, err
	}

	result := &AuthResult{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Phone:        user.Phone,
		Role:         user.Role,
		CompanyName:  user.ShopName,
		Token:        token,
		RefreshToken: refreshToken,
		TokenExpiry:  expiry,
		HasCompany:   company != nil,
		HasBranch:    branch != nil,
	}
	if company != nil {
		result.CompanyID = company.ID
		result.CompanyName = company.Name
		status := int(company.Status)
		result.CompanyStatus = &status
		result.IsApproved = company.Status == model.CompanyApproved
	}
	if branch != nil {
		result.BranchID = branch.ID
		result.BranchName = branch.Name
	}
	return result, nil
}

const passwordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%"

func randomPassword(length int) (string, error) {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(passwordChars[n.Int64()])
	}
	return sb.String(), nil
}
