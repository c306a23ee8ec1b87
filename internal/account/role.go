package account

// Role represents the role of an account
type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleCompanyAdmin  Role = "company_admin"
	RoleBranchManager Role = "branch_manager"
	RoleMechanic      Role = "mechanic"
	RoleOperator      Role = "operator"
	RoleViewer        Role = "viewer"
)

// roleLevels orders roles by privilege. Higher means more privileged.
var roleLevels = map[Role]int{
	RoleSuperAdmin:    5,
	RoleCompanyAdmin:  4,
	RoleBranchManager: 3,
	RoleMechanic:      2,
	RoleOperator:      1,
	RoleViewer:        0,
}

// ParseRole converts a string into a Role. Unknown values fail with
// ErrInvalidRole; there is no permissive fallback.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether the role is one of the fixed enumeration.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// AtLeast reports whether the role carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return roleLevels[r] >= roleLevels[other]
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}
