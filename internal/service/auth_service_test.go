package service_test

import (
	"errors"
	"testing"

	"shop-service/internal/model"
	"shop-service/internal/service"
	"shop-service/pkg/config"
	"shop-service/pkg/jwtutil"
)

func initTestJWT() {
	jwtutil.Initialize(&config.JWTConfig{
		SigningKey:       "test-signing-key",
		ExpirationHours:  1,
		RefreshTokenDays: 7,
	})
}

func TestRegisterAndLoginUnassignedUser(t *testing.T) {
	initTestJWT()
	db := newTestDB(t)

	reg, err := service.Register(db, &service.RegisterInput{
		Email:    "New.User@Example.COM",
		Password: "secret123",
		Name:     "New User",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Email != "new.user@example.com" {
		t.Fatalf("email normalized to %q", reg.Email)
	}

	// Duplicate registration is rejected.
	_, err = service.Register(db, &service.RegisterInput{
		Email:    "new.user@example.com",
		Password: "secret123",
		Name:     "Dup",
	})
	var validationErr *service.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("duplicate register err = %v, want ValidationError", err)
	}

	result, err := service.Login(db, &service.LoginInput{
		Email:    "new.user@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" || result.RefreshToken == "" {
		t.Fatal("login returned empty tokens")
	}
	if result.HasCompany {
		t.Fatal("unassigned user reported as having a company")
	}

	claims, err := jwtutil.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != reg.ID || claims.Role != int(model.RoleUnassigned) {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := service.Login(db, &service.LoginInput{
		Email:    "new.user@example.com",
		Password: "wrong",
	}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestCompanyRegistrationNeedsApproval(t *testing.T) {
	initTestJWT()
	db := newTestDB(t)

	company := model.Company{Name: "Wannabe Shop", Status: model.CompanyPending}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}

	reg, err := service.Register(db, &service.RegisterInput{
		Email:     "owner@wannabe.test",
		Password:  "secret123",
		Name:      "Owner",
		CompanyID: company.ID,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Pending owners cannot log in yet.
	_, err = service.Login(db, &service.LoginInput{Email: "owner@wannabe.test", Password: "secret123"})
	if !errors.Is(err, service.ErrAccountDeactivated) {
		t.Fatalf("pending owner login err = %v, want ErrAccountDeactivated", err)
	}

	var reloaded model.Company
	if err := db.Where("id = ?", company.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reload company: %v", err)
	}
	if reloaded.OwnerID == nil || *reloaded.OwnerID != reg.ID {
		t.Fatalf("company owner = %v, want %s", reloaded.OwnerID, reg.ID)
	}

	admin := model.User{Email: "admin@platform.test", Name: "Admin", Role: model.RoleSystemAdmin, IsActive: 1}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	found, err := service.ApproveCompany(db, company.ID, &admin, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("ApproveCompany: %v", err)
	}
	if !found {
		t.Fatal("ApproveCompany did not find the company")
	}

	result, err := service.Login(db, &service.LoginInput{Email: "owner@wannabe.test", Password: "secret123"})
	if err != nil {
		t.Fatalf("login after approval: %v", err)
	}
	if !result.IsApproved {
		t.Fatal("login result not marked approved")
	}
	if result.Role != model.RoleOwner {
		t.Fatalf("role = %v, want owner", result.Role)
	}

	var audit model.AuditLog
	if err := db.Where("action = ?", "COMPANY_APPROVED").First(&audit).Error; err != nil {
		t.Fatalf("approval audit row missing: %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	initTestJWT()
	db := newTestDB(t)

	if _, err := service.Register(db, &service.RegisterInput{
		Email:    "user@test.local",
		Password: "secret123",
		Name:     "User",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	login, err := service.Login(db, &service.LoginInput{Email: "user@test.local", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := service.Refresh(db, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// The old token is dead after rotation.
	if _, err := service.Refresh(db, login.RefreshToken); !errors.Is(err, service.ErrInvalidRefreshToken) {
		t.Fatalf("stale refresh err = %v, want ErrInvalidRefreshToken", err)
	}

	revoked, err := service.Revoke(db, refreshed.ID)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if !revoked {
		t.Fatal("Revoke did not find the user")
	}
	if _, err := service.Refresh(db, refreshed.RefreshToken); !errors.Is(err, service.ErrInvalidRefreshToken) {
		t.Fatalf("revoked refresh err = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestInviteUserJoinsCompany(t *testing.T) {
	initTestJWT()
	db := newTestDB(t)
	f := newFixture(t, db)

	result, err := service.InviteUser(db, &service.InviteInput{
		Email: "colleague@cornershop.test",
		Name:  "Colleague",
		Role:  model.RoleStaff,
	}, f.company.ID)
	if err != nil {
		t.Fatalf("InviteUser: %v", err)
	}
	if result.CompanyID != f.company.ID {
		t.Fatalf("invited user company = %s, want %s", result.CompanyID, f.company.ID)
	}
	if result.Token == "" {
		t.Fatal("invited user has no access token")
	}

	var user model.User
	if err := db.Where("email = ?", "colleague@cornershop.test").First(&user).Error; err != nil {
		t.Fatalf("load invited user: %v", err)
	}
	if user.PasswordHash == "" {
		t.Fatal("invited user has no password hash")
	}
	if user.IsActive != 1 {
		t.Fatal("invited user is not active")
	}
}

func TestEmailVerificationFlow(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)

	verification, err := service.CreateVerification(db, f.actor.ID, f.actor.Email)
	if err != nil {
		t.Fatalf("CreateVerification: %v", err)
	}
	if len(verification.OTP) != 6 {
		t.Fatalf("otp length = %d, want 6", len(verification.OTP))
	}

	ok, err := service.VerifyOTP(db, f.actor.ID, "000000")
	if err != nil {
		t.Fatalf("VerifyOTP wrong code: %v", err)
	}
	if ok {
		t.Fatal("wrong code accepted")
	}

	ok, err = service.VerifyOTP(db, f.actor.ID, verification.OTP)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if !ok {
		t.Fatal("correct code rejected")
	}

	var user model.User
	if err := db.Where("id = ?", f.actor.ID).First(&user).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !user.IsEmailVerified {
		t.Fatal("user not marked verified")
	}

	// A consumed code cannot be replayed.
	ok, err = service.VerifyOTP(db, f.actor.ID, verification.OTP)
	if err != nil {
		t.Fatalf("VerifyOTP replay: %v", err)
	}
	if ok {
		t.Fatal("consumed code accepted again")
	}
}

func TestSuspendCompanyDeactivatesUsers(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)

	admin := model.User{Email: "admin@platform.test", Name: "Admin", Role: model.RoleSystemAdmin, IsActive: 1}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	found, err := service.SuspendCompany(db, f.company.ID, &admin, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("SuspendCompany: %v", err)
	}
	if !found {
		t.Fatal("SuspendCompany did not find the company")
	}

	var company model.Company
	if err := db.Where("id = ?", f.company.ID).First(&company).Error; err != nil {
		t.Fatalf("reload company: %v", err)
	}
	if company.Status != model.CompanySuspended {
		t.Fatalf("company status = %v, want suspended", company.Status)
	}

	var user model.User
	if err := db.Where("id = ?", f.actor.ID).First(&user).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.IsActive != 0 {
		t.Fatal("company user still active after suspension")
	}
}
