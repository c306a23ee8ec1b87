package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func summaryFor(t *testing.T, role Role, companyID, branchID string) Summary {
	t.Helper()
	matrix, err := DefaultMatrix(role)
	require.NoError(t, err)
	types, err := DefaultVehicleTypes(role)
	require.NoError(t, err)
	return Summary{
		ID:           "acct-1",
		Role:         role,
		Permissions:  matrix,
		VehicleTypes: types,
		CompanyID:    companyID,
		BranchID:     branchID,
		Active:       true,
	}
}

func TestAuthorizeOrderedChecks(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name    string
		mutate  func(*Summary)
		res     Resource
		action  Action
		wantErr error
	}{
		{
			name:   "allowed in own scope",
			res:    Resource{Category: CategoryMaintenance, CompanyID: "co-1", BranchID: "br-1", VehicleType: VehicleCar},
			action: ActionCreate,
		},
		{
			name:    "inactive account fails before anything else",
			mutate:  func(s *Summary) { s.Active = false; s.CompanyID = "other" },
			res:     Resource{Category: CategoryMaintenance, CompanyID: "co-1"},
			action:  ActionCreate,
			wantErr: ErrAccountInactive,
		},
		{
			name:    "locked account fails before permission check",
			mutate:  func(s *Summary) { s.LockedUntil = &future; s.Permissions = PermissionMatrix{} },
			res:     Resource{Category: CategoryMaintenance, CompanyID: "co-1"},
			action:  ActionCreate,
			wantErr: ErrAccountLocked,
		},
		{
			name:   "expired lock does not block authorization",
			mutate: func(s *Summary) { s.LockedUntil = &past },
			res:    Resource{Category: CategoryMaintenance, CompanyID: "co-1", BranchID: "br-1"},
			action: ActionCreate,
		},
		{
			name:    "missing capability beats tenant mismatch",
			mutate:  func(s *Summary) { s.CompanyID = "other" },
			res:     Resource{Category: CategoryMaintenance, CompanyID: "co-1"},
			action:  ActionDelete,
			wantErr: ErrPermissionDenied,
		},
		{
			name:    "tenant mismatch",
			res:     Resource{Category: CategoryMaintenance, CompanyID: "co-2"},
			action:  ActionCreate,
			wantErr: ErrTenantMismatch,
		},
		{
			name:    "branch mismatch below company admin",
			res:     Resource{Category: CategoryMaintenance, CompanyID: "co-1", BranchID: "br-2"},
			action:  ActionCreate,
			wantErr: ErrBranchMismatch,
		},
		{
			name:    "vehicle type outside the list",
			res:     Resource{Category: CategoryMaintenance, CompanyID: "co-1", BranchID: "br-1", VehicleType: VehicleHeavyMachinery},
			action:  ActionCreate,
			wantErr: ErrVehicleTypeDenied,
		},
		{
			name:   "empty vehicle list means unrestricted",
			mutate: func(s *Summary) { s.VehicleTypes = nil },
			res:    Resource{Category: CategoryMaintenance, CompanyID: "co-1", BranchID: "br-1", VehicleType: VehicleHeavyMachinery},
			action: ActionCreate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := summaryFor(t, RoleMechanic, "co-1", "br-1")
			if tt.mutate != nil {
				tt.mutate(&acct)
			}
			err := authorizeAt(acct, tt.res, tt.action, now)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAuthorizeSuperAdminBypassesTenancy(t *testing.T) {
	acct := summaryFor(t, RoleSuperAdmin, "", "")
	err := Authorize(acct, Resource{
		Category:  CategoryUsers,
		CompanyID: "some-company",
		BranchID:  "some-branch",
	}, ActionDelete)
	require.NoError(t, err)
}

func TestAuthorizeSuperAdminStillNeedsCapability(t *testing.T) {
	acct := summaryFor(t, RoleSuperAdmin, "", "")
	err := Authorize(acct, Resource{Category: CategoryReports, CompanyID: "co-9"}, ActionDelete)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAuthorizeCompanyAdminSpansBranches(t *testing.T) {
	acct := summaryFor(t, RoleCompanyAdmin, "co-1", "br-1")
	err := Authorize(acct, Resource{
		Category:  CategoryUsers,
		CompanyID: "co-1",
		BranchID:  "br-7",
	}, ActionUpdate)
	require.NoError(t, err)

	err = Authorize(acct, Resource{Category: CategoryUsers, CompanyID: "co-2"}, ActionUpdate)
	require.ErrorIs(t, err, ErrTenantMismatch)
}
