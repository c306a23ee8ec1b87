package dto

// CreateCompanyRequest represents the first phase of tenant onboarding.
type CreateCompanyRequest struct {
	TaxID               string `json:"taxId" binding:"required"`
	Name                string `json:"name" binding:"required"`
	Email               string `json:"email,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Address             string `json:"address,omitempty"`
	AdminName           string `json:"adminName,omitempty"`
	AdminEmail          string `json:"adminEmail,omitempty"`
	AdminPhone          string `json:"adminPhone,omitempty"`
	AdminCanManageUsers bool   `json:"adminCanManageUsers"`
}

// CreateCompanyAdminRequest represents the second phase of tenant
// onboarding: creating the company's first administrator account and linking
// the back-reference. Re-running it for an already-linked company is a no-op.
type CreateCompanyAdminRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Phone     string `json:"phone,omitempty"`
	BranchID  string `json:"branchId" binding:"required"`
}

// UpdateCompanyRequest represents a company update.
type UpdateCompanyRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// CreateBranchRequest represents a branch creation request.
type CreateBranchRequest struct {
	Name      string `json:"name" binding:"required"`
	Code      string `json:"code" binding:"required"`
	CompanyID string `json:"companyId" binding:"required"`
}

// UpdateBranchRequest represents a branch update.
type UpdateBranchRequest struct {
	Name     string `json:"name,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}
