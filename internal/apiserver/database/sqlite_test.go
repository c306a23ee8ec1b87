package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flotillahq/flotilla/internal/account"
	"github.com/flotillahq/flotilla/internal/common/config"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	db, err := NewSQLite(&config.DatabaseConfig{
		Type:   "sqlite",
		DBName: ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func newTestAccount(email string) *account.Account {
	matrix, _ := account.DefaultMatrix(account.RoleMechanic)
	types, _ := account.DefaultVehicleTypes(account.RoleMechanic)
	now := time.Now()
	return &account.Account{
		ID:           uuid.NewString(),
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		SecretHash:   "$2a$04$notarealhashnotarealhashno",
		Role:         account.RoleMechanic,
		Permissions:  matrix,
		VehicleTypes: types,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSQLiteAccountRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	acct := newTestAccount("mech@acme.test")
	require.NoError(t, db.CreateAccount(ctx, acct))

	byID, err := db.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.Email, byID.Email)
	assert.Equal(t, acct.Permissions, byID.Permissions)
	assert.Equal(t, acct.VehicleTypes, byID.VehicleTypes)

	byEmail, err := db.GetAccountByEmail(ctx, "mech@acme.test")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byEmail.ID)

	_, err = db.GetAccountByID(ctx, "missing")
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestSQLiteDuplicateEmailRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateAccount(ctx, newTestAccount("dup@acme.test")))
	err := db.CreateAccount(ctx, newTestAccount("dup@acme.test"))
	assert.Error(t, err)
}

func TestSQLiteRecordAuthFailure(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	acct := newTestAccount("mech@acme.test")
	require.NoError(t, db.CreateAccount(ctx, acct))

	lockUntil := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	for i := 1; i < 5; i++ {
		updated, err := db.RecordAuthFailure(ctx, acct.ID, 5, lockUntil)
		require.NoError(t, err)
		assert.Equal(t, i, updated.FailedAttempts)
		assert.Nil(t, updated.LockedUntil)
	}

	updated, err := db.RecordAuthFailure(ctx, acct.ID, 5, lockUntil)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.FailedAttempts)
	require.NotNil(t, updated.LockedUntil)

	// The guarded write only fires on unlocked rows, so the expiry sticks.
	later := lockUntil.Add(time.Hour)
	updated, err = db.RecordAuthFailure(ctx, acct.ID, 5, later)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.FailedAttempts)
	require.NotNil(t, updated.LockedUntil)
	assert.True(t, updated.LockedUntil.Equal(lockUntil))

	_, err = db.RecordAuthFailure(ctx, "missing", 5, lockUntil)
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestSQLiteRestartLockoutWindow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	acct := newTestAccount("mech@acme.test")
	require.NoError(t, db.CreateAccount(ctx, acct))

	expired := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		_, err := db.RecordAuthFailure(ctx, acct.ID, 5, expired)
		require.NoError(t, err)
	}

	ok, err := db.RestartLockoutWindow(ctx, acct.ID, expired)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := db.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedAttempts)
	assert.Nil(t, stored.LockedUntil)

	// Losing the compare-and-swap reports false without touching the row.
	ok, err = db.RestartLockoutWindow(ctx, acct.ID, expired)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteResetLockout(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	acct := newTestAccount("mech@acme.test")
	require.NoError(t, db.CreateAccount(ctx, acct))

	_, err := db.RecordAuthFailure(ctx, acct.ID, 5, time.Now().Add(time.Hour))
	require.NoError(t, err)

	login := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.ResetLockout(ctx, acct.ID, login))

	stored, err := db.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FailedAttempts)
	assert.Nil(t, stored.LockedUntil)
	require.NotNil(t, stored.LastLoginAt)

	assert.ErrorIs(t, db.ResetLockout(ctx, "missing", login), account.ErrNotFound)
}

func TestSQLiteCompanyAndBranch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	company := &account.Company{
		ID:       uuid.NewString(),
		TaxID:    "TR-100200",
		Name:     "Acme Fleet",
		IsActive: true,
	}
	require.NoError(t, db.CreateCompany(ctx, company))

	byTax, err := db.GetCompanyByTaxID(ctx, "TR-100200")
	require.NoError(t, err)
	assert.Equal(t, company.ID, byTax.ID)

	branch := &account.Branch{
		ID:        uuid.NewString(),
		Name:      "HQ",
		Code:      "HQ",
		CompanyID: company.ID,
		IsActive:  true,
	}
	require.NoError(t, db.CreateBranch(ctx, branch))

	byCode, err := db.GetBranchByCode(ctx, company.ID, "HQ")
	require.NoError(t, err)
	assert.Equal(t, branch.ID, byCode.ID)

	// Same code under another company is allowed.
	other := &account.Company{ID: uuid.NewString(), TaxID: "TR-2", Name: "Other", IsActive: true}
	require.NoError(t, db.CreateCompany(ctx, other))
	require.NoError(t, db.CreateBranch(ctx, &account.Branch{
		ID: uuid.NewString(), Name: "HQ", Code: "HQ", CompanyID: other.ID, IsActive: true,
	}))

	// Duplicate (company, code) is rejected by the composite index.
	err = db.CreateBranch(ctx, &account.Branch{
		ID: uuid.NewString(), Name: "HQ again", Code: "HQ", CompanyID: company.ID, IsActive: true,
	})
	assert.Error(t, err)

	branches, err := db.ListBranches(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, branches, 1)
}

func TestSQLiteTransactionRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	acct := newTestAccount("tx@acme.test")
	err := db.Transaction(ctx, func(txCtx context.Context) error {
		if err := db.CreateAccount(txCtx, acct); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	_, err = db.GetAccountByID(ctx, acct.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestSQLiteTransactionCommit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	acct := newTestAccount("tx@acme.test")
	err := db.Transaction(ctx, func(txCtx context.Context) error {
		return db.CreateAccount(txCtx, acct)
	})
	require.NoError(t, err)

	stored, err := db.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.Email, stored.Email)
}
