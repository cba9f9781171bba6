// Package coordinator runs the rental coordinator: it owns the rental state
// machine, decides payments and drives the vehicle's unlock/lock handshake.
package coordinator

import (
	"context"
	"fmt"

	"github.com/autopeer-io/scootshare/internal/coordinator/rental"
	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/pkg/server"
	httpserver "github.com/autopeer-io/scootshare/internal/pkg/server/http"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/log"
	"github.com/autopeer-io/scootshare/pkg/options"
)

// Name identifies the coordinator in logs and metrics.
const Name = "coordinator"

type Coordinator struct {
	bus     *bus.Bus
	machine *rental.Machine
	http    *httpserver.Server
}

var _ httpserver.Probe = (*Coordinator)(nil)

// New registers the coordinator's routes on b. The operations server is
// only built when httpOpts is enabled.
func New(b *bus.Bus, machine *rental.Machine, httpOpts *options.HttpOptions) (*Coordinator, error) {
	c := &Coordinator{bus: b, machine: machine}

	routes := map[protocol.Role]bus.HandlerFunc{
		protocol.RoleUserCommand:  c.handleUserCommand,
		protocol.RoleVehicleAck:   c.handleVehicleAck,
		protocol.RoleVehicleState: c.handleVehicleState,
	}
	for role, handler := range routes {
		if err := b.Register(role, handler); err != nil {
			return nil, fmt.Errorf("register %s: %w", role, err)
		}
	}

	if httpOpts != nil && httpOpts.Enabled {
		c.http = httpserver.NewServer(httpOpts, c)
	}
	return c, nil
}

// Run connects to the broker and processes messages until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	log.Info("Starting scoot-coordinator", "root", c.bus.Topics().Root(), "state", c.machine.State())

	if err := c.bus.Start(ctx); err != nil {
		return err
	}
	defer c.bus.Stop()
	defer c.machine.Close()

	servers := []server.Server{server.ServerFunc(c.bus.Run)}
	if c.http != nil {
		servers = append(servers, c.http)
	}

	if err := server.NewManager(servers...).Start(ctx); err != nil {
		return err
	}
	log.Info("Coordinator shutting down...")
	return nil
}

func (c *Coordinator) Ready() bool {
	return c.bus.IsConnected()
}

func (c *Coordinator) Status(ctx context.Context) (any, error) {
	var status rental.Status
	err := c.bus.Call(ctx, func(context.Context) error {
		status = c.machine.Status()
		return nil
	})
	return status, err
}

func (c *Coordinator) Graph(ctx context.Context) (string, error) {
	var graph string
	err := c.bus.Call(ctx, func(context.Context) error {
		graph = c.machine.Graph()
		return nil
	})
	return graph, err
}
