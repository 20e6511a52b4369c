package service

import (
	"time"

	"shop-service/internal/model"

	"gorm.io/gorm"
)

// PendingCompany is a pending registration with its owner's details.
type PendingCompany struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	Currency    string    `json:"currency"`
	Status      int       `json:"status"`
	OwnerID     string    `json:"owner_id"`
	OwnerName   string    `json:"owner_name"`
	OwnerEmail  string    `json:"owner_email"`
	OwnerPhone  string    `json:"owner_phone"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetPendingCompanies lists companies waiting for approval.
func GetPendingCompanies(db *gorm.DB) ([]PendingCompany, error) {
	var companies []model.Company
	if err := db.Where("status = ?", model.CompanyPending).Find(&companies).Error; err != nil {
		return nil, err
	}

	result := make([]PendingCompany, 0, len(companies))
	for _, c := range companies {
		pc := PendingCompany{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Phone:       c.Phone,
			Email:       c.Email,
			Address:     c.Address,
			Currency:    c.Currency,
			Status:      int(c.Status),
			CreatedAt:   c.CreatedAt,
		}
		if c.OwnerID != nil {
			var owner model.User
			if err := db.Where("id = ?", *c.OwnerID).First(&owner).Error; err == nil {
				pc.OwnerID = owner.ID
				pc.OwnerName = owner.Name
				pc.OwnerEmail = owner.Email
				pc.OwnerPhone = owner.Phone
			}
		}
		result = append(result, pc)
	}
	return result, nil
}

// ApproveCompany marks a company approved and activates its owner.
func ApproveCompany(db *gorm.DB, companyID string, approvedBy *model.User, ip, userAgent string) (bool, error) {
	var company model.Company
	if err := db.Where("id = ?", companyID).First(&company).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":      model.CompanyApproved,
			"approved_by": approvedBy.ID,
			"approved_at": now,
		}
		if err := tx.Model(&company).Updates(updates).Error; err != nil {
			return err
		}
		if company.OwnerID != nil {
			if err := tx.Model(&model.User{}).Where("id = ?", *company.OwnerID).Update("is_active", 1).Error; err != nil {
				return err
			}
		}
		return RecordAudit(tx, AuditEntry{
			UserID:     &approvedBy.ID,
			CompanyID:  &company.ID,
			Action:     "COMPANY_APPROVED",
			EntityType: "Company",
			EntityID:   company.ID,
			NewValue:   map[string]string{"company_name": company.Name},
			IPAddress:  ip,
			UserAgent:  userAgent,
		})
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// RejectCompany marks a company rejected.
func RejectCompany(db *gorm.DB, companyID string, rejectedBy *model.User, reason, ip, userAgent string) (bool, error) {
	var company model.Company
	if err := db.Where("id = ?", companyID).First(&company).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&company).Update("status", model.CompanyRejected).Error; err != nil {
			return err
		}
		return RecordAudit(tx, AuditEntry{
			UserID:     &rejectedBy.ID,
			CompanyID:  &company.ID,
			Action:     "COMPANY_REJECTED",
			EntityType: "Company",
			EntityID:   company.ID,
			NewValue:   map[string]string{"company_name": company.Name, "reason": reason},
			IPAddress:  ip,
			UserAgent:  userAgent,
		})
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// SuspendCompany marks a company suspended and deactivates all its users.
func SuspendCompany(db *gorm.DB, companyID string, suspendedBy *model.User, ip, userAgent string) (bool, error) {
	var company model.Company
	if err := db.Where("id = ?", companyID).First(&company).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&company).Update("status", model.CompanySuspended).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("company_id = ?", company.ID).Update("is_active", 0).Error; err != nil {
			return err
		}
		return RecordAudit(tx, AuditEntry{
			UserID:     &suspendedBy.ID,
			CompanyID:  &company.ID,
			Action:     "COMPANY_SUSPENDED",
			EntityType: "Company",
			EntityID:   company.ID,
			NewValue:   map[string]string{"company_name": company.Name},
			IPAddress:  ip,
			UserAgent:  userAgent,
		})
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
