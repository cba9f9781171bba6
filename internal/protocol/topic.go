package protocol

import (
	"github.com/autopeer-io/scootshare/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/scootshare/pkg/mqtt/topic"
)

// Role names one information flow on the bus.
type Role string

const (
	RoleUserCommand    Role = "user-command"
	RoleUserAck        Role = "user-ack"
	RoleVehicleCommand Role = "vehicle-command"
	RoleVehicleAck     Role = "vehicle-ack"
	RoleVehicleState   Role = "vehicle-state"
	RoleVehicleInfo    Role = "vehicle-info"
)

// Roles lists every role in contract order.
var Roles = []Role{
	RoleUserCommand,
	RoleUserAck,
	RoleVehicleCommand,
	RoleVehicleAck,
	RoleVehicleState,
	RoleVehicleInfo,
}

var segments = map[Role]string{
	RoleUserCommand:    paths.UserCommand,
	RoleUserAck:        paths.UserAck,
	RoleVehicleCommand: paths.VehicleCommand,
	RoleVehicleAck:     paths.VehicleAck,
	RoleVehicleState:   paths.VehicleState,
	RoleVehicleInfo:    paths.VehicleInfo,
}

// Segment returns the topic segment of the role, or "" for an unknown role.
func (r Role) Segment() string {
	return segments[r]
}

// Topics resolves roles to full topic names under a root namespace.
type Topics struct {
	b *topic.TopicBuilder
}

// NewTopics returns the topic table for root.
func NewTopics(root string) Topics {
	return Topics{b: topic.NewTopicBuilder(root)}
}

// Of returns the full topic of a role.
func (t Topics) Of(r Role) string {
	return t.b.Build(r.Segment())
}

// Root returns the namespace the table was built for.
func (t Topics) Root() string {
	return t.b.Root()
}

// RoleOf maps a full topic back to its role.
func (t Topics) RoleOf(name string) (Role, bool) {
	for _, r := range Roles {
		if t.Of(r) == name {
			return r, true
		}
	}
	return "", false
}
