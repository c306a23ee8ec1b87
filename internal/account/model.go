package account

import (
	"strings"
	"time"
)

// Account represents a login identity scoped to a company and branch.
type Account struct {
	ID             string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FirstName      string           `json:"firstName" gorm:"type:varchar(100)"`
	LastName       string           `json:"lastName" gorm:"type:varchar(100)"`
	Email          string           `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	SecretHash     string           `json:"-" gorm:"type:varchar(100);not null"` // never exposed in JSON
	Phone          string           `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Role           Role             `json:"role" gorm:"type:varchar(30);not null"`
	Permissions    PermissionMatrix `json:"permissions" gorm:"type:text"`
	VehicleTypes   VehicleTypeList  `json:"vehicleTypes" gorm:"type:text"`
	LastLoginAt    *time.Time       `json:"lastLoginAt,omitempty"`
	FailedAttempts int              `json:"-" gorm:"not null;default:0"`
	LockedUntil    *time.Time       `json:"-"`
	IsActive       bool             `json:"isActive" gorm:"not null;default:true"`
	CompanyID      string           `json:"companyId,omitempty" gorm:"type:varchar(36);index"`
	BranchID       string           `json:"branchId,omitempty" gorm:"type:varchar(36);index"`
	CreatedBy      string           `json:"createdBy,omitempty" gorm:"type:varchar(36)"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Lockout extracts the lockout value from the account record.
func (a *Account) Lockout() Lockout {
	return Lockout{Attempts: a.FailedAttempts, LockedUntil: a.LockedUntil}
}

// Summary projects the account into the form handed to callers.
func (a *Account) Summary() Summary {
	return Summary{
		ID:           a.ID,
		Role:         a.Role,
		Permissions:  a.Permissions,
		VehicleTypes: a.VehicleTypes,
		CompanyID:    a.CompanyID,
		BranchID:     a.BranchID,
		Active:       a.IsActive,
		LockedUntil:  a.LockedUntil,
	}
}

// Company is the tenant boundary.
type Company struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TaxID    string `json:"taxId" gorm:"type:varchar(30);uniqueIndex;not null"`
	Name     string `json:"name" gorm:"type:varchar(200);not null"`
	Email    string `json:"email,omitempty" gorm:"type:varchar(255)"`
	Phone    string `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Address  string `json:"address,omitempty" gorm:"type:text"`
	IsActive bool   `json:"isActive" gorm:"not null;default:true"`

	// Embedded administrator descriptor. AdminAccountID is populated in the
	// second phase of company bootstrap and, once set, must reference an
	// account whose CompanyID equals this company's ID.
	AdminName           string `json:"adminName,omitempty" gorm:"type:varchar(200)"`
	AdminEmail          string `json:"adminEmail,omitempty" gorm:"type:varchar(255)"`
	AdminPhone          string `json:"adminPhone,omitempty" gorm:"type:varchar(30)"`
	AdminCanManageUsers bool   `json:"adminCanManageUsers" gorm:"not null;default:true"`
	AdminAccountID      string `json:"adminAccountId,omitempty" gorm:"type:varchar(36)"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Branch is the unit of operational scoping below the company. The
// (company, code) pair is unique.
type Branch struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	Code      string    `json:"code" gorm:"type:varchar(20);not null;uniqueIndex:idx_branches_company_code"`
	CompanyID string    `json:"companyId" gorm:"type:varchar(36);not null;uniqueIndex:idx_branches_company_code;index"`
	IsActive  bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeEmail lower-cases and trims an email before comparison or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeTaxID upper-cases and trims a company tax identifier.
func NormalizeTaxID(taxID string) string {
	return strings.ToUpper(strings.TrimSpace(taxID))
}

// NormalizeBranchCode upper-cases and trims a branch code.
func NormalizeBranchCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
