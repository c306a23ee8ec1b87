package errorx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/flotillahq/flotilla/internal/account"
)

// APIError is the structured error body returned by the HTTP layer.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

var (
	// ErrAuthenticationFailed covers both unknown email and wrong secret;
	// the two must be indistinguishable to prevent account enumeration.
	ErrAuthenticationFailed = &APIError{
		Code:       "E2001",
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrAccountLocked = &APIError{
		Code:       "E2002",
		Message:    "Account is temporarily locked, try again later",
		HTTPStatus: http.StatusForbidden,
	}

	ErrAccountInactive = &APIError{
		Code:       "E2003",
		Message:    "Account is disabled",
		HTTPStatus: http.StatusForbidden,
	}

	ErrTenantInactive = &APIError{
		Code:       "E2004",
		Message:    "Company is disabled",
		HTTPStatus: http.StatusForbidden,
	}

	ErrUnauthorized = &APIError{
		Code:       "E2005",
		Message:    "Unauthorized",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrPermissionDenied = &APIError{
		Code:       "E3001",
		Message:    "Permission denied",
		HTTPStatus: http.StatusForbidden,
	}

	ErrTenantMismatch = &APIError{
		Code:       "E3002",
		Message:    "Resource belongs to another company",
		HTTPStatus: http.StatusForbidden,
	}

	ErrBranchMismatch = &APIError{
		Code:       "E3003",
		Message:    "Resource belongs to another branch",
		HTTPStatus: http.StatusForbidden,
	}

	ErrVehicleTypeDenied = &APIError{
		Code:       "E3004",
		Message:    "Vehicle type not permitted for this account",
		HTTPStatus: http.StatusForbidden,
	}

	ErrInvalidRole = &APIError{
		Code:       "E1001",
		Message:    "Invalid role",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidSecret = &APIError{
		Code:       "E1002",
		Message:    "Password does not meet requirements",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrNotFound = &APIError{
		Code:       "E4001",
		Message:    "Resource not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrInternal = &APIError{
		Code:       "E5001",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
)

// FromDomain maps an account-core failure kind to its API error. Business
// failures get stable codes; anything unrecognized is an internal error.
// Authentication handlers must merge ErrNotFound and ErrInvalidCredentials
// into ErrAuthenticationFailed themselves; here NotFound stays a 404 so that
// resource lookups keep their semantics.
func FromDomain(err error) *APIError {
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		return ErrAuthenticationFailed
	case errors.Is(err, account.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, account.ErrAccountLocked):
		return ErrAccountLocked
	case errors.Is(err, account.ErrAccountInactive):
		return ErrAccountInactive
	case errors.Is(err, account.ErrTenantInactive):
		return ErrTenantInactive
	case errors.Is(err, account.ErrPermissionDenied):
		return ErrPermissionDenied
	case errors.Is(err, account.ErrTenantMismatch):
		return ErrTenantMismatch
	case errors.Is(err, account.ErrBranchMismatch):
		return ErrBranchMismatch
	case errors.Is(err, account.ErrVehicleTypeDenied):
		return ErrVehicleTypeDenied
	case errors.Is(err, account.ErrInvalidRole):
		return ErrInvalidRole
	case errors.Is(err, account.ErrInvalidSecret):
		return ErrInvalidSecret
	case errors.Is(err, account.ErrValidation):
		return &APIError{
			Code:       "E1000",
			Message:    err.Error(),
			HTTPStatus: http.StatusBadRequest,
		}
	default:
		return ErrInternal
	}
}
