package protocol

import (
	"fmt"
	"strings"
)

// VehicleState is a label published on the vehicle-state topic.
type VehicleState string

const (
	VehicleRunning     VehicleState = "running"
	VehicleLocked      VehicleState = "locked"
	VehicleMaintenance VehicleState = "maintenance"

	// VehicleParkingInvalid is announced when a lock is refused by the parking
	// check. It is not a controller state; the vehicle keeps running.
	VehicleParkingInvalid VehicleState = "parking-invalid"
)

// ParseVehicleState decodes a vehicle-state payload.
func ParseVehicleState(payload []byte) (VehicleState, error) {
	s := VehicleState(strings.TrimSpace(string(payload)))
	switch s {
	case VehicleRunning, VehicleLocked, VehicleMaintenance, VehicleParkingInvalid:
		return s, nil
	}
	return "", fmt.Errorf("unknown vehicle state %q", string(payload))
}

func (s VehicleState) Bytes() []byte {
	return []byte(s)
}

func (s VehicleState) String() string {
	return string(s)
}
