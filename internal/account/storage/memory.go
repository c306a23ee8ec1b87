package storage

import (
	"context"
	"sync"
	"time"

	"github.com/flotillahq/flotilla/internal/account"
)

// MemoryStore implements account.Store using in-memory maps. It is used by
// unit tests and local development; the mutex makes the lockout operations
// atomic the same way the database-side updates are.
type MemoryStore struct {
	mu sync.RWMutex

	accounts  map[string]*account.Account
	byEmail   map[string]string
	companies map[string]*account.Company
	branches  map[string]*account.Branch
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[string]*account.Account),
		byEmail:   make(map[string]string),
		companies: make(map[string]*account.Company),
		branches:  make(map[string]*account.Branch),
	}
}

// CreateAccount stores a new account.
func (s *MemoryStore) CreateAccount(ctx context.Context, acct *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[acct.Email]; exists {
		return account.ErrValidation
	}
	cp := *acct
	s.accounts[acct.ID] = &cp
	s.byEmail[acct.Email] = acct.ID
	return nil
}

// GetAccountByID retrieves an account by identifier.
func (s *MemoryStore) GetAccountByID(ctx context.Context, id string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if acct, ok := s.accounts[id]; ok {
		cp := *acct
		return &cp, nil
	}
	return nil, account.ErrNotFound
}

// GetAccountByEmail retrieves an account by normalized email.
func (s *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.byEmail[email]; ok {
		cp := *s.accounts[id]
		return &cp, nil
	}
	return nil, account.ErrNotFound
}

// UpdateAccount replaces an existing account.
func (s *MemoryStore) UpdateAccount(ctx context.Context, acct *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.accounts[acct.ID]
	if !ok {
		return account.ErrNotFound
	}
	if old.Email != acct.Email {
		delete(s.byEmail, old.Email)
		s.byEmail[acct.Email] = acct.ID
	}
	cp := *acct
	s.accounts[acct.ID] = &cp
	return nil
}

// ListAccounts returns accounts, optionally filtered by company.
func (s *MemoryStore) ListAccounts(ctx context.Context, companyID string) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*account.Account
	for _, acct := range s.accounts {
		if companyID != "" && acct.CompanyID != companyID {
			continue
		}
		cp := *acct
		out = append(out, &cp)
	}
	return out, nil
}

// RecordAuthFailure increments the failure counter under the store lock and
// sets the lock expiry when the threshold is reached on an unlocked row.
func (s *MemoryStore) RecordAuthFailure(ctx context.Context, id string, threshold int, lockedUntil time.Time) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	acct.FailedAttempts++
	if acct.FailedAttempts >= threshold && acct.LockedUntil == nil {
		until := lockedUntil
		acct.LockedUntil = &until
	}
	cp := *acct
	return &cp, nil
}

// RestartLockoutWindow resets the counter to one and clears the lock when the
// stored expiry still equals the one the caller observed.
func (s *MemoryStore) RestartLockoutWindow(ctx context.Context, id string, seen time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return false, account.ErrNotFound
	}
	if acct.LockedUntil == nil || !acct.LockedUntil.Equal(seen) {
		return false, nil
	}
	acct.FailedAttempts = 1
	acct.LockedUntil = nil
	return true, nil
}

// ResetLockout zeroes the counter, clears the lock and stamps the last login.
func (s *MemoryStore) ResetLockout(ctx context.Context, id string, lastLogin time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	acct.FailedAttempts = 0
	acct.LockedUntil = nil
	t := lastLogin
	acct.LastLoginAt = &t
	return nil
}

// CreateCompany stores a new company.
func (s *MemoryStore) CreateCompany(ctx context.Context, company *account.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *company
	s.companies[company.ID] = &cp
	return nil
}

// GetCompanyByID retrieves a company by identifier.
func (s *MemoryStore) GetCompanyByID(ctx context.Context, id string) (*account.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if company, ok := s.companies[id]; ok {
		cp := *company
		return &cp, nil
	}
	return nil, account.ErrNotFound
}

// GetCompanyByTaxID retrieves a company by normalized tax identifier.
func (s *MemoryStore) GetCompanyByTaxID(ctx context.Context, taxID string) (*account.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, company := range s.companies {
		if company.TaxID == taxID {
			cp := *company
			return &cp, nil
		}
	}
	return nil, account.ErrNotFound
}

// UpdateCompany replaces an existing company.
func (s *MemoryStore) UpdateCompany(ctx context.Context, company *account.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[company.ID]; !ok {
		return account.ErrNotFound
	}
	cp := *company
	s.companies[company.ID] = &cp
	return nil
}

// ListCompanies returns all companies.
func (s *MemoryStore) ListCompanies(ctx context.Context) ([]*account.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*account.Company, 0, len(s.companies))
	for _, company := range s.companies {
		cp := *company
		out = append(out, &cp)
	}
	return out, nil
}

// CreateBranch stores a new branch.
func (s *MemoryStore) CreateBranch(ctx context.Context, branch *account.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *branch
	s.branches[branch.ID] = &cp
	return nil
}

// GetBranchByID retrieves a branch by identifier.
func (s *MemoryStore) GetBranchByID(ctx context.Context, id string) (*account.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if branch, ok := s.branches[id]; ok {
		cp := *branch
		return &cp, nil
	}
	return nil, account.ErrNotFound
}

// GetBranchByCode retrieves a branch by company and normalized code.
func (s *MemoryStore) GetBranchByCode(ctx context.Context, companyID, code string) (*account.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, branch := range s.branches {
		if branch.CompanyID == companyID && branch.Code == code {
			cp := *branch
			return &cp, nil
		}
	}
	return nil, account.ErrNotFound
}

// UpdateBranch replaces an existing branch.
func (s *MemoryStore) UpdateBranch(ctx context.Context, branch *account.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.branches[branch.ID]; !ok {
		return account.ErrNotFound
	}
	cp := *branch
	s.branches[branch.ID] = &cp
	return nil
}

// ListBranches returns branches, optionally filtered by company.
func (s *MemoryStore) ListBranches(ctx context.Context, companyID string) ([]*account.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*account.Branch
	for _, branch := range s.branches {
		if companyID != "" && branch.CompanyID != companyID {
			continue
		}
		cp := *branch
		out = append(out, &cp)
	}
	return out, nil
}
