package dto

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token and the account summary the host
// layer builds its session from.
type LoginResponse struct {
	Token   string          `json:"token"`
	Account *AccountSummary `json:"account"`
}

// AccountSummary is the externally visible projection of an account.
type AccountSummary struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Phone        string   `json:"phone,omitempty"`
	Role         string   `json:"role"`
	Permissions  any      `json:"permissions"`
	VehicleTypes []string `json:"vehicleTypes"`
	CompanyID    string   `json:"companyId,omitempty"`
	BranchID     string   `json:"branchId,omitempty"`
	IsActive     bool     `json:"isActive"`
}

// ChangePasswordRequest represents a request to change the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// CreateUserRequest represents a request to create a new account.
type CreateUserRequest struct {
	FirstName    string   `json:"firstName" binding:"required"`
	LastName     string   `json:"lastName" binding:"required"`
	Email        string   `json:"email" binding:"required,email"`
	Password     string   `json:"password" binding:"required"`
	Phone        string   `json:"phone,omitempty"`
	Role         string   `json:"role" binding:"required"`
	CompanyID    string   `json:"companyId,omitempty"`
	BranchID     string   `json:"branchId,omitempty"`
	VehicleTypes []string `json:"vehicleTypes,omitempty"`
}

// UpdateUserRequest represents a request to update an account. Role changes
// re-derive the permission matrix; a vehicle-type list set here is an
// explicit override that survives later role changes.
type UpdateUserRequest struct {
	Role         string   `json:"role,omitempty"`
	VehicleTypes []string `json:"vehicleTypes,omitempty"`
	IsActive     *bool    `json:"isActive,omitempty"`
	Phone        string   `json:"phone,omitempty"`
}
