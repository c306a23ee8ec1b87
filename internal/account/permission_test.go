package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatrixDeterministic(t *testing.T) {
	for _, role := range []Role{RoleSuperAdmin, RoleCompanyAdmin, RoleBranchManager, RoleMechanic, RoleOperator, RoleViewer} {
		first, err := DefaultMatrix(role)
		require.NoError(t, err)
		second, err := DefaultMatrix(role)
		require.NoError(t, err)
		assert.Equal(t, first, second, "matrix for %s must be stable", role)
	}
}

func TestDefaultMatrixUnknownRole(t *testing.T) {
	_, err := DefaultMatrix(Role("janitor"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = DefaultVehicleTypes(Role("janitor"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestDefaultMatrixCells(t *testing.T) {
	tests := []struct {
		role     Role
		category Category
		action   Action
		want     bool
	}{
		{RoleSuperAdmin, CategoryCompanies, ActionDelete, true},
		{RoleSuperAdmin, CategoryReports, ActionExport, true},
		{RoleSuperAdmin, CategoryReports, ActionDelete, false},
		{RoleCompanyAdmin, CategoryCompanies, ActionCreate, false},
		{RoleCompanyAdmin, CategoryCompanies, ActionUpdate, true},
		{RoleCompanyAdmin, CategoryUsers, ActionDelete, true},
		{RoleBranchManager, CategoryUsers, ActionCreate, true},
		{RoleBranchManager, CategoryUsers, ActionDelete, false},
		{RoleBranchManager, CategoryBranches, ActionUpdate, true},
		{RoleBranchManager, CategoryBranches, ActionCreate, false},
		{RoleMechanic, CategoryMaintenance, ActionCreate, true},
		{RoleMechanic, CategoryMaintenance, ActionDelete, false},
		{RoleMechanic, CategoryVehicles, ActionUpdate, true},
		{RoleMechanic, CategoryUsers, ActionRead, false},
		{RoleOperator, CategoryVehicles, ActionRead, true},
		{RoleOperator, CategoryVehicles, ActionUpdate, false},
		{RoleViewer, CategoryUsers, ActionRead, false},
		{RoleViewer, CategoryReports, ActionRead, true},
		{RoleViewer, CategoryReports, ActionExport, false},
	}
	for _, tt := range tests {
		m, err := DefaultMatrix(tt.role)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.Allows(tt.category, tt.action),
			"%s %s %s", tt.role, tt.category, tt.action)
	}
}

func TestDefaultVehicleTypes(t *testing.T) {
	all, err := DefaultVehicleTypes(RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, AllVehicleTypes(), all)

	companyAdmin, err := DefaultVehicleTypes(RoleCompanyAdmin)
	require.NoError(t, err)
	assert.Equal(t, AllVehicleTypes(), companyAdmin)

	manager, err := DefaultVehicleTypes(RoleBranchManager)
	require.NoError(t, err)
	assert.Equal(t, VehicleTypeList{VehicleCar, VehicleMotorcycle, VehicleVan, VehicleTruck}, manager)

	mechanic, err := DefaultVehicleTypes(RoleMechanic)
	require.NoError(t, err)
	assert.Equal(t, VehicleTypeList{VehicleCar, VehicleMotorcycle, VehicleVan}, mechanic)
	assert.False(t, mechanic.Contains(VehicleHeavyMachinery))

	viewer, err := DefaultVehicleTypes(RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, VehicleTypeList{VehicleCar, VehicleMotorcycle}, viewer)
}

func TestMatrixAllowsUnknownInputs(t *testing.T) {
	m, err := DefaultMatrix(RoleSuperAdmin)
	require.NoError(t, err)
	assert.False(t, m.Allows(Category("payroll"), ActionRead))
	assert.False(t, m.Allows(CategoryUsers, Action("approve")))
}

func TestParseCategoryAndAction(t *testing.T) {
	c, err := ParseCategory("maintenance")
	require.NoError(t, err)
	assert.Equal(t, CategoryMaintenance, c)
	_, err = ParseCategory("payroll")
	assert.ErrorIs(t, err, ErrValidation)

	a, err := ParseAction("export")
	require.NoError(t, err)
	assert.Equal(t, ActionExport, a)
	_, err = ParseAction("approve")
	assert.ErrorIs(t, err, ErrValidation)
}
