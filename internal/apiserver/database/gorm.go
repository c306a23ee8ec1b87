package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/flotillahq/flotilla/internal/account"
)

// DB implements Database over a gorm connection; the driver-specific
// constructors in postgres.go, mysql.go and sqlite.go produce it.
type DB struct {
	db *gorm.DB
}

func newDB(gormDB *gorm.DB) (*DB, error) {
	if err := gormDB.AutoMigrate(&account.Account{}, &account.Company{}, &account.Branch{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &DB{db: gormDB}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn inside a transaction carried on the context.
func (d *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account.ErrNotFound
	}
	return err
}

// CreateAccount persists a new account.
func (d *DB) CreateAccount(ctx context.Context, acct *account.Account) error {
	return getDBFromContext(ctx, d.db).Create(acct).Error
}

// GetAccountByID retrieves an account by identifier.
func (d *DB) GetAccountByID(ctx context.Context, id string) (*account.Account, error) {
	var acct account.Account
	if err := getDBFromContext(ctx, d.db).First(&acct, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &acct, nil
}

// GetAccountByEmail retrieves an account by normalized email.
func (d *DB) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	var acct account.Account
	if err := getDBFromContext(ctx, d.db).First(&acct, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return &acct, nil
}

// UpdateAccount persists changes to an existing account.
func (d *DB) UpdateAccount(ctx context.Context, acct *account.Account) error {
	return getDBFromContext(ctx, d.db).Save(acct).Error
}

// ListAccounts retrieves accounts, optionally filtered by company.
func (d *DB) ListAccounts(ctx context.Context, companyID string) ([]*account.Account, error) {
	var accounts []*account.Account
	q := getDBFromContext(ctx, d.db).Order("created_at desc")
	if companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	err := q.Find(&accounts).Error
	return accounts, err
}

// RecordAuthFailure increments the failed-attempt counter with a single
// database-side UPDATE, then sets the lock expiry with a threshold-guarded
// write. Concurrent failures each land their own increment; a load-then-store
// here would under-count under concurrent attack.
func (d *DB) RecordAuthFailure(ctx context.Context, id string, threshold int, lockedUntil time.Time) (*account.Account, error) {
	db := getDBFromContext(ctx, d.db)

	res := db.Model(&account.Account{}).
		Where("id = ?", id).
		UpdateColumn("failed_attempts", gorm.Expr("failed_attempts + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, account.ErrNotFound
	}

	if err := db.Model(&account.Account{}).
		Where("id = ? AND failed_attempts >= ? AND locked_until IS NULL", id, threshold).
		UpdateColumn("locked_until", lockedUntil).Error; err != nil {
		return nil, err
	}

	return d.GetAccountByID(ctx, id)
}

// RestartLockoutWindow resets the counter to one and clears the lock, guarded
// by a compare-and-swap on the expiry the caller observed.
func (d *DB) RestartLockoutWindow(ctx context.Context, id string, seen time.Time) (bool, error) {
	res := getDBFromContext(ctx, d.db).Model(&account.Account{}).
		Where("id = ? AND locked_until = ?", id, seen).
		UpdateColumns(map[string]any{
			"failed_attempts": 1,
			"locked_until":    nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ResetLockout zeroes the counter, clears the lock expiry and stamps the last
// login.
func (d *DB) ResetLockout(ctx context.Context, id string, lastLogin time.Time) error {
	res := getDBFromContext(ctx, d.db).Model(&account.Account{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"failed_attempts": 0,
			"locked_until":    nil,
			"last_login_at":   lastLogin,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return account.ErrNotFound
	}
	return nil
}

// CreateCompany persists a new company.
func (d *DB) CreateCompany(ctx context.Context, company *account.Company) error {
	return getDBFromContext(ctx, d.db).Create(company).Error
}

// GetCompanyByID retrieves a company by identifier.
func (d *DB) GetCompanyByID(ctx context.Context, id string) (*account.Company, error) {
	var company account.Company
	if err := getDBFromContext(ctx, d.db).First(&company, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &company, nil
}

// GetCompanyByTaxID retrieves a company by normalized tax identifier.
func (d *DB) GetCompanyByTaxID(ctx context.Context, taxID string) (*account.Company, error) {
	var company account.Company
	if err := getDBFromContext(ctx, d.db).First(&company, "tax_id = ?", taxID).Error; err != nil {
		return nil, notFound(err)
	}
	return &company, nil
}

// UpdateCompany persists changes to an existing company.
func (d *DB) UpdateCompany(ctx context.Context, company *account.Company) error {
	return getDBFromContext(ctx, d.db).Save(company).Error
}

// ListCompanies retrieves all companies.
func (d *DB) ListCompanies(ctx context.Context) ([]*account.Company, error) {
	var companies []*account.Company
	err := getDBFromContext(ctx, d.db).Order("created_at desc").Find(&companies).Error
	return companies, err
}

// CreateBranch persists a new branch.
func (d *DB) CreateBranch(ctx context.Context, branch *account.Branch) error {
	return getDBFromContext(ctx, d.db).Create(branch).Error
}

// GetBranchByID retrieves a branch by identifier.
func (d *DB) GetBranchByID(ctx context.Context, id string) (*account.Branch, error) {
	var branch account.Branch
	if err := getDBFromContext(ctx, d.db).First(&branch, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &branch, nil
}

// GetBranchByCode retrieves a branch by company and normalized code.
func (d *DB) GetBranchByCode(ctx context.Context, companyID, code string) (*account.Branch, error) {
	var branch account.Branch
	err := getDBFromContext(ctx, d.db).
		Where("company_id = ? AND code = ?", companyID, code).
		First(&branch).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &branch, nil
}

// UpdateBranch persists changes to an existing branch.
func (d *DB) UpdateBranch(ctx context.Context, branch *account.Branch) error {
	return getDBFromContext(ctx, d.db).Save(branch).Error
}

// ListBranches retrieves branches, optionally filtered by company.
func (d *DB) ListBranches(ctx context.Context, companyID string) ([]*account.Branch, error) {
	var branches []*account.Branch
	q := getDBFromContext(ctx, d.db).Order("code asc")
	if companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	err := q.Find(&branches).Error
	return branches, err
}
