package rental

import (
	"github.com/autopeer-io/scootshare/internal/protocol"
)

// State is the coordinator's position in the rental lifecycle.
type State string

const (
	StateIdle           State = "Idle"
	StateAdmin          State = "Admin"
	StateUser           State = "User"
	StateVehicleRunning State = "VehicleRunning"
)

// AccessLevel is the session held by the coordinator.
type AccessLevel string

const (
	AccessNone  AccessLevel = ""
	AccessAdmin AccessLevel = "admin"
	AccessUser  AccessLevel = "user"
)

// LoginBranch returns the state a login with the given access level leads to.
func LoginBranch(level AccessLevel) State {
	switch level {
	case AccessAdmin:
		return StateAdmin
	case AccessUser:
		return StateUser
	default:
		return StateIdle
	}
}

// accessFor maps a login token to the access level it requests.
func accessFor(cmd protocol.Command) AccessLevel {
	switch cmd {
	case protocol.LoginAdmin:
		return AccessAdmin
	case protocol.LoginUser:
		return AccessUser
	default:
		return AccessNone
	}
}

// Status is a snapshot of the coordinator.
type Status struct {
	State        State                 `json:"state"`
	Session      AccessLevel           `json:"session"`
	VehicleState protocol.VehicleState `json:"vehicleState,omitempty"`
	Version      string                `json:"version"`
}
