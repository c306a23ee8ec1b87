package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Options configures the lockout policy and hashing cost of a Service.
// Zero values fall back to the defaults.
type Options struct {
	MaxFailedAttempts int
	LockDuration      time.Duration
	BcryptCost        int

	// OnLockout, when set, is invoked once whenever repeated failures
	// trigger a new lock on an account.
	OnLockout func(accountID string)
}

func (o Options) withDefaults() Options {
	if o.MaxFailedAttempts <= 0 {
		o.MaxFailedAttempts = DefaultMaxFailedAttempts
	}
	if o.LockDuration <= 0 {
		o.LockDuration = DefaultLockDuration
	}
	if o.BcryptCost <= 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	return o
}

// Service is the account aggregate. It is the only component that mutates
// account records; the permission builder and lockout machine are pure
// functions over values extracted from them.
type Service struct {
	store  Store
	logger *zap.Logger
	opts   Options
}

// NewService creates a new account service over the given persistence handle.
func NewService(store Store, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// Authenticate verifies an email/secret pair and returns the account on
// success. The lockout machine is consulted before the credential store, so a
// locked account costs no hash work. ErrNotFound and ErrInvalidCredentials
// must be presented identically by callers; they are logged apart here.
func (s *Service) Authenticate(ctx context.Context, email, secret string) (*Account, error) {
	email = NormalizeEmail(email)

	acct, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("authentication attempt for unknown email", zap.String("email", email))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	if !acct.IsActive {
		s.logger.Warn("authentication attempt for inactive account", zap.String("account_id", acct.ID))
		return nil, ErrAccountInactive
	}

	if acct.CompanyID != "" {
		company, err := s.store.GetCompanyByID(ctx, acct.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("load company: %w", err)
		}
		if !company.IsActive {
			s.logger.Warn("authentication attempt for inactive company",
				zap.String("account_id", acct.ID),
				zap.String("company_id", company.ID))
			return nil, ErrTenantInactive
		}
	}

	now := time.Now()
	lockout := acct.Lockout()
	if lockout.State(now) == Locked {
		s.logger.Warn("authentication attempt for locked account",
			zap.String("account_id", acct.ID),
			zap.Timep("locked_until", acct.LockedUntil))
		return nil, ErrAccountLocked
	}

	if !VerifySecret(secret, acct.SecretHash) {
		s.recordFailure(ctx, acct, lockout, now)
		return nil, ErrInvalidCredentials
	}

	if err := s.store.ResetLockout(ctx, acct.ID, now); err != nil {
		return nil, fmt.Errorf("reset lockout: %w", err)
	}
	acct.FailedAttempts = 0
	acct.LockedUntil = nil
	acct.LastLoginAt = &now

	s.logger.Info("authentication succeeded", zap.String("account_id", acct.ID))
	return acct, nil
}

// recordFailure applies the failed-authentication transition. The counter
// update happens database-side: an expired lock restarts the window through a
// compare-and-swap on the observed expiry, every other failure is an atomic
// increment with a threshold-guarded lock write.
func (s *Service) recordFailure(ctx context.Context, acct *Account, lockout Lockout, now time.Time) {
	if lockout.State(now) == LockHalfOpen {
		restarted, err := s.store.RestartLockoutWindow(ctx, acct.ID, *acct.LockedUntil)
		if err != nil {
			s.logger.Error("failed to restart lockout window",
				zap.String("account_id", acct.ID), zap.Error(err))
			return
		}
		if restarted {
			s.logger.Info("lockout window restarted after expired lock",
				zap.String("account_id", acct.ID))
			return
		}
		// Another request reset the window first; this failure counts as a
		// regular attempt against the new window.
	}

	updated, err := s.store.RecordAuthFailure(ctx, acct.ID, s.opts.MaxFailedAttempts, now.Add(s.opts.LockDuration))
	if err != nil {
		s.logger.Error("failed to record authentication failure",
			zap.String("account_id", acct.ID), zap.Error(err))
		return
	}
	if updated.Lockout().State(now) == Locked && lockout.LockedUntil == nil {
		s.logger.Warn("account locked after repeated failures",
			zap.String("account_id", acct.ID),
			zap.Int("attempts", updated.FailedAttempts),
			zap.Timep("locked_until", updated.LockedUntil))
		if s.opts.OnLockout != nil {
			s.opts.OnLockout(acct.ID)
		}
	}
}

// CreateAccountInput carries the fields for a new account. Permissions, when
// nil, are derived from the role; VehicleTypes, when empty, default by role.
type CreateAccountInput struct {
	FirstName    string
	LastName     string
	Email        string
	Secret       string
	Phone        string
	Role         Role
	CompanyID    string
	BranchID     string
	Permissions  *PermissionMatrix
	VehicleTypes VehicleTypeList
	CreatedBy    string
}

// CreateAccount validates the input, derives permissions and vehicle-type
// defaults, hashes the secret and persists the account.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*Account, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if in.Role != RoleSuperAdmin && (in.CompanyID == "" || in.BranchID == "") {
		return nil, fmt.Errorf("%w: company and branch are required for role %s", ErrValidation, in.Role)
	}

	if in.CompanyID != "" {
		if _, err := s.store.GetCompanyByID(ctx, in.CompanyID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: company %s does not exist", ErrValidation, in.CompanyID)
			}
			return nil, fmt.Errorf("load company: %w", err)
		}
	}
	if in.BranchID != "" {
		branch, err := s.store.GetBranchByID(ctx, in.BranchID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: branch %s does not exist", ErrValidation, in.BranchID)
			}
			return nil, fmt.Errorf("load branch: %w", err)
		}
		if branch.CompanyID != in.CompanyID {
			return nil, fmt.Errorf("%w: branch %s belongs to another company", ErrValidation, in.BranchID)
		}
	}

	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := s.store.GetAccountByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrValidation)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := HashSecret(in.Secret, s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	permissions, err := s.resolvePermissions(in.Role, in.Permissions)
	if err != nil {
		return nil, err
	}
	vehicleTypes, err := s.resolveVehicleTypes(in.Role, in.VehicleTypes)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	acct := &Account{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		SecretHash:   hash,
		Phone:        in.Phone,
		Role:         in.Role,
		Permissions:  permissions,
		VehicleTypes: vehicleTypes,
		IsActive:     true,
		CompanyID:    in.CompanyID,
		BranchID:     in.BranchID,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account created",
		zap.String("account_id", acct.ID),
		zap.String("role", acct.Role.String()),
		zap.String("company_id", acct.CompanyID))
	return acct, nil
}

func (s *Service) resolvePermissions(role Role, override *PermissionMatrix) (PermissionMatrix, error) {
	if override != nil {
		return *override, nil
	}
	return DefaultMatrix(role)
}

func (s *Service) resolveVehicleTypes(role Role, explicit VehicleTypeList) (VehicleTypeList, error) {
	if len(explicit) > 0 {
		if err := explicit.Validate(); err != nil {
			return nil, err
		}
		return explicit, nil
	}
	return DefaultVehicleTypes(role)
}

// ChangeRole moves an account to a new role, re-deriving the permission
// matrix. The vehicle-type list is only replaced when it is empty or was the
// prior role's default; an explicit override survives the change.
func (s *Service) ChangeRole(ctx context.Context, id string, newRole Role) (*Account, error) {
	if !newRole.Valid() {
		return nil, ErrInvalidRole
	}
	acct, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if newRole != RoleSuperAdmin && (acct.CompanyID == "" || acct.BranchID == "") {
		return nil, fmt.Errorf("%w: company and branch are required for role %s", ErrValidation, newRole)
	}

	matrix, err := DefaultMatrix(newRole)
	if err != nil {
		return nil, err
	}

	oldDefault, err := DefaultVehicleTypes(acct.Role)
	if err != nil {
		return nil, err
	}
	if len(acct.VehicleTypes) == 0 || acct.VehicleTypes.Equal(oldDefault) {
		newDefault, err := DefaultVehicleTypes(newRole)
		if err != nil {
			return nil, err
		}
		acct.VehicleTypes = newDefault
	}

	acct.Role = newRole
	acct.Permissions = matrix
	acct.UpdatedAt = time.Now()
	if err := s.store.UpdateAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.logger.Info("account role changed",
		zap.String("account_id", acct.ID),
		zap.String("role", newRole.String()))
	return acct, nil
}

// SetVehicleTypes records an explicit vehicle-type override from an
// administrator. The override takes precedence over role defaults and
// survives subsequent role changes.
func (s *Service) SetVehicleTypes(ctx context.Context, id string, types VehicleTypeList) (*Account, error) {
	if err := types.Validate(); err != nil {
		return nil, err
	}
	acct, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	acct.VehicleTypes = types
	acct.UpdatedAt = time.Now()
	if err := s.store.UpdateAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return acct, nil
}

// ChangeSecret verifies the old secret and stores a fresh digest of the new
// one.
func (s *Service) ChangeSecret(ctx context.Context, id, oldSecret, newSecret string) error {
	acct, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		return err
	}
	if !VerifySecret(oldSecret, acct.SecretHash) {
		return ErrInvalidCredentials
	}
	hash, err := HashSecret(newSecret, s.opts.BcryptCost)
	if err != nil {
		return err
	}
	acct.SecretHash = hash
	acct.UpdatedAt = time.Now()
	if err := s.store.UpdateAccount(ctx, acct); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	s.logger.Info("account secret changed", zap.String("account_id", acct.ID))
	return nil
}

// Deactivate soft-deletes an account via the active flag. Hard deletion is
// not part of this core.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	acct, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		return err
	}
	acct.IsActive = false
	acct.UpdatedAt = time.Now()
	if err := s.store.UpdateAccount(ctx, acct); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	s.logger.Info("account deactivated", zap.String("account_id", id))
	return nil
}

// Activate re-enables a deactivated account. The lockout counter is left as
// stored; an active lock still applies on the next authentication.
func (s *Service) Activate(ctx context.Context, id string) error {
	acct, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		return err
	}
	acct.IsActive = true
	acct.UpdatedAt = time.Now()
	if err := s.store.UpdateAccount(ctx, acct); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	s.logger.Info("account activated", zap.String("account_id", id))
	return nil
}

// SetPhone updates the account's contact phone.
func (s *Service) SetPhone(ctx context.Context, id, phone string) (*Account, error) {
	acct, err := s.store.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	acct.Phone = phone
	acct.UpdatedAt = time.Now()
	if err := s.store.UpdateAccount(ctx, acct); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return acct, nil
}

// CreateCompanyInput carries the fields for a new company, including the
// embedded administrator descriptor. The administrator back-reference is left
// empty; it is populated in the second bootstrap phase.
type CreateCompanyInput struct {
	TaxID               string
	Name                string
	Email               string
	Phone               string
	Address             string
	AdminName           string
	AdminEmail          string
	AdminPhone          string
	AdminCanManageUsers bool
}

// CreateCompany is the first phase of tenant onboarding.
func (s *Service) CreateCompany(ctx context.Context, in CreateCompanyInput) (*Company, error) {
	taxID := NormalizeTaxID(in.TaxID)
	if taxID == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: company name and tax id are required", ErrValidation)
	}
	if _, err := s.store.GetCompanyByTaxID(ctx, taxID); err == nil {
		return nil, fmt.Errorf("%w: tax id already registered", ErrValidation)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check tax id: %w", err)
	}

	now := time.Now()
	company := &Company{
		ID:                  uuid.NewString(),
		TaxID:               taxID,
		Name:                in.Name,
		Email:               in.Email,
		Phone:               in.Phone,
		Address:             in.Address,
		IsActive:            true,
		AdminName:           in.AdminName,
		AdminEmail:          in.AdminEmail,
		AdminPhone:          in.AdminPhone,
		AdminCanManageUsers: in.AdminCanManageUsers,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}

	s.logger.Info("company created",
		zap.String("company_id", company.ID),
		zap.String("tax_id", company.TaxID))
	return company, nil
}

// LinkCompanyAdmin is the second phase of tenant onboarding: it patches the
// company's administrator back-reference to an existing account. Re-running
// it against an already-linked company is a no-op, not an error.
func (s *Service) LinkCompanyAdmin(ctx context.Context, companyID, accountID string) error {
	company, err := s.store.GetCompanyByID(ctx, companyID)
	if err != nil {
		return err
	}
	if company.AdminAccountID == accountID {
		return nil
	}
	if company.AdminAccountID != "" {
		return fmt.Errorf("%w: company already linked to another administrator", ErrValidation)
	}

	acct, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.CompanyID != companyID {
		return fmt.Errorf("%w: account is not scoped to this company", ErrValidation)
	}

	company.AdminAccountID = acct.ID
	if company.AdminEmail == "" {
		company.AdminEmail = acct.Email
	}
	if company.AdminName == "" {
		company.AdminName = strings.TrimSpace(acct.FirstName + " " + acct.LastName)
	}
	company.UpdatedAt = time.Now()
	if err := s.store.UpdateCompany(ctx, company); err != nil {
		return fmt.Errorf("update company: %w", err)
	}

	s.logger.Info("company administrator linked",
		zap.String("company_id", companyID),
		zap.String("account_id", accountID))
	return nil
}

// CreateBranchInput carries the fields for a new branch.
type CreateBranchInput struct {
	Name      string
	Code      string
	CompanyID string
}

// CreateBranch persists a branch after normalizing its code and enforcing
// (company, code) uniqueness.
func (s *Service) CreateBranch(ctx context.Context, in CreateBranchInput) (*Branch, error) {
	code := NormalizeBranchCode(in.Code)
	if in.Name == "" || code == "" || in.CompanyID == "" {
		return nil, fmt.Errorf("%w: branch name, code and company are required", ErrValidation)
	}
	if _, err := s.store.GetCompanyByID(ctx, in.CompanyID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: company %s does not exist", ErrValidation, in.CompanyID)
		}
		return nil, fmt.Errorf("load company: %w", err)
	}
	if _, err := s.store.GetBranchByCode(ctx, in.CompanyID, code); err == nil {
		return nil, fmt.Errorf("%w: branch code already used in this company", ErrValidation)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check branch code: %w", err)
	}

	now := time.Now()
	branch := &Branch{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Code:      code,
		CompanyID: in.CompanyID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateBranch(ctx, branch); err != nil {
		return nil, fmt.Errorf("create branch: %w", err)
	}
	return branch, nil
}

// EnsureSuperAdmin creates the bootstrap top-level account when it does not
// exist. An existing account is returned untouched.
func (s *Service) EnsureSuperAdmin(ctx context.Context, email, secret string) (*Account, error) {
	normalized := NormalizeEmail(email)
	acct, err := s.store.GetAccountByEmail(ctx, normalized)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check super admin: %w", err)
	}
	return s.CreateAccount(ctx, CreateAccountInput{
		FirstName: "Super",
		LastName:  "Admin",
		Email:     normalized,
		Secret:    secret,
		Role:      RoleSuperAdmin,
	})
}
