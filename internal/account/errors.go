package account

import "errors"

// Failure kinds returned by the account core. Handlers map these to transport
// responses; NotFound and InvalidCredentials must produce an identical
// response body to prevent account enumeration.
var (
	ErrNotFound           = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrTenantInactive     = errors.New("company is inactive")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidSecret      = errors.New("secret does not meet requirements")
	ErrValidation         = errors.New("validation failed")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrTenantMismatch     = errors.New("resource belongs to another company")
	ErrBranchMismatch     = errors.New("resource belongs to another branch")
	ErrVehicleTypeDenied  = errors.New("vehicle type not permitted")
)
