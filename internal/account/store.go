package account

import (
	"context"
	"time"
)

// Store is the persistence handle injected into the Service. Implementations
// return ErrNotFound for missing records and must make the lockout operations
// atomic: two concurrent failed logins for the same account may not both
// write back the same counter value.
type Store interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, acct *Account) error

	// GetAccountByID loads an account by identifier.
	GetAccountByID(ctx context.Context, id string) (*Account, error)

	// GetAccountByEmail loads an account by normalized email.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// UpdateAccount persists changes to an existing account.
	UpdateAccount(ctx context.Context, acct *Account) error

	// ListAccounts returns accounts, optionally filtered by company.
	ListAccounts(ctx context.Context, companyID string) ([]*Account, error)

	// RecordAuthFailure increments the failed-attempt counter with a
	// database-side atomic increment and, when the post-increment counter
	// reaches the threshold on an unlocked row, sets the lock expiry. It
	// returns the account as stored after the update.
	RecordAuthFailure(ctx context.Context, id string, threshold int, lockedUntil time.Time) (*Account, error)

	// RestartLockoutWindow resets the counter to one and clears the lock,
	// guarded by a compare-and-swap on the lock expiry the caller observed.
	// It reports false when another writer got there first.
	RestartLockoutWindow(ctx context.Context, id string, seen time.Time) (bool, error)

	// ResetLockout zeroes the counter, clears the lock expiry and stamps the
	// last login after a successful authentication.
	ResetLockout(ctx context.Context, id string, lastLogin time.Time) error

	// CreateCompany persists a new company.
	CreateCompany(ctx context.Context, company *Company) error

	// GetCompanyByID loads a company by identifier.
	GetCompanyByID(ctx context.Context, id string) (*Company, error)

	// GetCompanyByTaxID loads a company by normalized tax identifier.
	GetCompanyByTaxID(ctx context.Context, taxID string) (*Company, error)

	// UpdateCompany persists changes to an existing company.
	UpdateCompany(ctx context.Context, company *Company) error

	// ListCompanies returns all companies.
	ListCompanies(ctx context.Context) ([]*Company, error)

	// CreateBranch persists a new branch.
	CreateBranch(ctx context.Context, branch *Branch) error

	// GetBranchByID loads a branch by identifier.
	GetBranchByID(ctx context.Context, id string) (*Branch, error)

	// GetBranchByCode loads a branch by company and normalized code.
	GetBranchByCode(ctx context.Context, companyID, code string) (*Branch, error)

	// UpdateBranch persists changes to an existing branch.
	UpdateBranch(ctx context.Context, branch *Branch) error

	// ListBranches returns branches, optionally filtered by company.
	ListBranches(ctx context.Context, companyID string) ([]*Branch, error)
}
