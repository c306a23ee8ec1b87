package account

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Category identifies a resource category in the permission matrix.
type Category string

const (
	CategoryCompanies   Category = "companies"
	CategoryBranches    Category = "branches"
	CategoryVehicles    Category = "vehicles"
	CategoryMaintenance Category = "maintenance"
	CategoryUsers       Category = "users"
	CategoryReports     Category = "reports"
)

// Action identifies an operation on a resource category.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
)

// ParseAction converts a string into an Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionExport:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrValidation, s)
	}
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryCompanies, CategoryBranches, CategoryVehicles,
		CategoryMaintenance, CategoryUsers, CategoryReports:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
	}
}

// Actions is the per-category capability set. Every bit defaults to false;
// reports uses Export instead of Delete.
type Actions struct {
	Create bool `json:"create"`
	Read   bool `json:"read"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
	Export bool `json:"export"`
}

func (a Actions) allows(action Action) bool {
	switch action {
	case ActionCreate:
		return a.Create
	case ActionRead:
		return a.Read
	case ActionUpdate:
		return a.Update
	case ActionDelete:
		return a.Delete
	case ActionExport:
		return a.Export
	default:
		return false
	}
}

// PermissionMatrix is the per-role capability grid, independent of tenancy
// scope. It is derived from the role by DefaultMatrix and persisted on the
// account for fast checks.
type PermissionMatrix struct {
	Companies   Actions `json:"companies"`
	Branches    Actions `json:"branches"`
	Vehicles    Actions `json:"vehicles"`
	Maintenance Actions `json:"maintenance"`
	Users       Actions `json:"users"`
	Reports     Actions `json:"reports"`
}

// Allows reports whether the matrix enables the action on the category.
func (m PermissionMatrix) Allows(category Category, action Action) bool {
	switch category {
	case CategoryCompanies:
		return m.Companies.allows(action)
	case CategoryBranches:
		return m.Branches.allows(action)
	case CategoryVehicles:
		return m.Vehicles.allows(action)
	case CategoryMaintenance:
		return m.Maintenance.allows(action)
	case CategoryUsers:
		return m.Users.allows(action)
	case CategoryReports:
		return m.Reports.allows(action)
	default:
		return false
	}
}

var (
	crud       = Actions{Create: true, Read: true, Update: true, Delete: true}
	readOnly   = Actions{Read: true}
	readUpdate = Actions{Read: true, Update: true}
	cru        = Actions{Create: true, Read: true, Update: true}
	readExport = Actions{Read: true, Export: true}
	none       = Actions{}
)

// DefaultMatrix returns the default capability matrix for a role. It is
// deterministic and idempotent; an unknown role fails with ErrInvalidRole.
func DefaultMatrix(r Role) (PermissionMatrix, error) {
	switch r {
	case RoleSuperAdmin:
		return PermissionMatrix{
			Companies:   crud,
			Branches:    crud,
			Vehicles:    crud,
			Maintenance: crud,
			Users:       crud,
			Reports:     readExport,
		}, nil
	case RoleCompanyAdmin:
		return PermissionMatrix{
			Companies:   readUpdate,
			Branches:    crud,
			Vehicles:    crud,
			Maintenance: crud,
			Users:       crud,
			Reports:     readExport,
		}, nil
	case RoleBranchManager:
		return PermissionMatrix{
			Companies:   readOnly,
			Branches:    readUpdate,
			Vehicles:    cru,
			Maintenance: cru,
			Users:       cru,
			Reports:     readExport,
		}, nil
	case RoleMechanic:
		return PermissionMatrix{
			Companies:   readOnly,
			Branches:    readOnly,
			Vehicles:    readUpdate,
			Maintenance: cru,
			Users:       none,
			Reports:     readOnly,
		}, nil
	case RoleOperator, RoleViewer:
		return PermissionMatrix{
			Companies:   readOnly,
			Branches:    readOnly,
			Vehicles:    readOnly,
			Maintenance: readOnly,
			Users:       none,
			Reports:     readOnly,
		}, nil
	default:
		return PermissionMatrix{}, ErrInvalidRole
	}
}

// DefaultVehicleTypes returns the default vehicle-type access list for a
// role. The default applies only when the account does not already carry an
// explicit, non-empty list.
func DefaultVehicleTypes(r Role) (VehicleTypeList, error) {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin:
		return AllVehicleTypes(), nil
	case RoleBranchManager:
		return VehicleTypeList{VehicleCar, VehicleMotorcycle, VehicleVan, VehicleTruck}, nil
	case RoleMechanic:
		return VehicleTypeList{VehicleCar, VehicleMotorcycle, VehicleVan}, nil
	case RoleOperator, RoleViewer:
		return VehicleTypeList{VehicleCar, VehicleMotorcycle}, nil
	default:
		return nil, ErrInvalidRole
	}
}

// Value implements driver.Valuer, serializing the matrix as JSON text.
func (m PermissionMatrix) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (m *PermissionMatrix) Scan(value any) error {
	if value == nil {
		*m = PermissionMatrix{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported permission matrix column type %T", value)
	}
	if len(data) == 0 {
		*m = PermissionMatrix{}
		return nil
	}
	return json.Unmarshal(data, m)
}
