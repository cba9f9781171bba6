package coordinator

import (
	"context"

	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/log"
)

// parse decodes a command token. Unknown payloads are counted and dropped.
func parse(role protocol.Role, payload []byte) (protocol.Command, bool) {
	cmd, err := protocol.ParseCommand(payload)
	if err != nil {
		metrics.UnknownCommands.WithLabelValues(Name, string(role)).Inc()
		log.Warn("Dropping unknown command", "role", role, "payload", string(payload))
		return "", false
	}
	metrics.CommandsReceived.WithLabelValues(Name, string(cmd)).Inc()
	return cmd, true
}

func (c *Coordinator) handleUserCommand(ctx context.Context, payload []byte) error {
	cmd, ok := parse(protocol.RoleUserCommand, payload)
	if !ok {
		return nil
	}
	return c.machine.HandleUserCommand(ctx, cmd)
}

func (c *Coordinator) handleVehicleAck(ctx context.Context, payload []byte) error {
	cmd, ok := parse(protocol.RoleVehicleAck, payload)
	if !ok {
		return nil
	}
	return c.machine.HandleVehicleAck(ctx, cmd)
}

func (c *Coordinator) handleVehicleState(ctx context.Context, payload []byte) error {
	state, err := protocol.ParseVehicleState(payload)
	if err != nil {
		log.Warn("Dropping unknown vehicle state", "payload", string(payload))
		return nil
	}
	c.machine.ObserveVehicleState(ctx, state)
	return nil
}
