package account

import "time"

// Summary is the projection of an account handed to callers after a
// successful authentication. It carries everything the tenancy scope
// validator needs for subsequent authorization checks.
type Summary struct {
	ID           string           `json:"id"`
	Role         Role             `json:"role"`
	Permissions  PermissionMatrix `json:"permissions"`
	VehicleTypes VehicleTypeList  `json:"vehicleTypes"`
	CompanyID    string           `json:"companyId,omitempty"`
	BranchID     string           `json:"branchId,omitempty"`
	Active       bool             `json:"-"`
	LockedUntil  *time.Time       `json:"-"`
}

// Resource describes the target of an authorization check. BranchID and
// VehicleType are optional; empty values skip the corresponding check.
type Resource struct {
	Category    Category
	CompanyID   string
	BranchID    string
	VehicleType VehicleType
}

// Authorize decides whether the account may perform the action on the
// resource. Checks run in a fixed order and short-circuit on the first
// failure, returning the specific failure kind:
//
//  1. inactive or locked account
//  2. capability bit in the permission matrix
//  3. super admin stops here (global scope)
//  4. company match
//  5. branch match for roles below company admin
//  6. vehicle-type membership (empty list means unrestricted)
func Authorize(acct Summary, res Resource, action Action) error {
	return authorizeAt(acct, res, action, time.Now())
}

func authorizeAt(acct Summary, res Resource, action Action, now time.Time) error {
	if !acct.Active {
		return ErrAccountInactive
	}
	if acct.LockedUntil != nil && acct.LockedUntil.After(now) {
		return ErrAccountLocked
	}
	if !acct.Permissions.Allows(res.Category, action) {
		return ErrPermissionDenied
	}
	if acct.Role == RoleSuperAdmin {
		return nil
	}
	if res.CompanyID != acct.CompanyID {
		return ErrTenantMismatch
	}
	if res.BranchID != "" && !acct.Role.AtLeast(RoleCompanyAdmin) && res.BranchID != acct.BranchID {
		return ErrBranchMismatch
	}
	if res.VehicleType != "" && len(acct.VehicleTypes) > 0 && !acct.VehicleTypes.Contains(res.VehicleType) {
		return ErrVehicleTypeDenied
	}
	return nil
}
