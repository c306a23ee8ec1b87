package account

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// VehicleType identifies a class of vehicle an account may act upon.
type VehicleType string

const (
	VehicleTractor        VehicleType = "Tractor"
	VehicleTruck          VehicleType = "Truck"
	VehicleVan            VehicleType = "Van"
	VehicleCar            VehicleType = "Car"
	VehicleMotorcycle     VehicleType = "Motorcycle"
	VehicleTrailer        VehicleType = "Trailer"
	VehicleHeavyMachinery VehicleType = "HeavyMachinery"
	VehicleOther          VehicleType = "Other"
)

var allVehicleTypes = VehicleTypeList{
	VehicleTractor,
	VehicleTruck,
	VehicleVan,
	VehicleCar,
	VehicleMotorcycle,
	VehicleTrailer,
	VehicleHeavyMachinery,
	VehicleOther,
}

// AllVehicleTypes returns the full closed set of vehicle types.
func AllVehicleTypes() VehicleTypeList {
	out := make(VehicleTypeList, len(allVehicleTypes))
	copy(out, allVehicleTypes)
	return out
}

// Valid reports whether the vehicle type belongs to the closed set.
func (v VehicleType) Valid() bool {
	for _, t := range allVehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// VehicleTypeList is an ordered set of vehicle types. An empty list is
// interpreted as "all types" during authorization.
type VehicleTypeList []VehicleType

// Contains reports whether the list includes the given type.
func (l VehicleTypeList) Contains(v VehicleType) bool {
	for _, t := range l {
		if t == v {
			return true
		}
	}
	return false
}

// Equal reports whether both lists hold the same types in the same order.
func (l VehicleTypeList) Equal(other VehicleTypeList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Validate fails if any element falls outside the closed set.
func (l VehicleTypeList) Validate() error {
	for _, t := range l {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown vehicle type %q", ErrValidation, t)
		}
	}
	return nil
}

// Value implements driver.Valuer, serializing the list as JSON text.
func (l VehicleTypeList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *VehicleTypeList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported vehicle type list column type %T", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}
