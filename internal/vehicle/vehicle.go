// Package vehicle runs the vehicle controller: it executes unlock and lock
// handshakes, checks parking and serves maintenance commands.
package vehicle

import (
	"context"
	"fmt"

	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	"github.com/autopeer-io/scootshare/internal/pkg/server"
	httpserver "github.com/autopeer-io/scootshare/internal/pkg/server/http"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/log"
	"github.com/autopeer-io/scootshare/pkg/options"
)

// Name identifies the vehicle in logs and metrics.
const Name = "vehicle"

type Vehicle struct {
	bus        *bus.Bus
	controller *Controller
	http       *httpserver.Server
}

var _ httpserver.Probe = (*Vehicle)(nil)

// New registers the vehicle's routes on b. The operations server is only
// built when httpOpts is enabled.
func New(b *bus.Bus, controller *Controller, httpOpts *options.HttpOptions) (*Vehicle, error) {
	v := &Vehicle{bus: b, controller: controller}

	if err := b.Register(protocol.RoleVehicleCommand, v.handleCommand); err != nil {
		return nil, fmt.Errorf("register %s: %w", protocol.RoleVehicleCommand, err)
	}

	if httpOpts != nil && httpOpts.Enabled {
		v.http = httpserver.NewServer(httpOpts, v)
	}
	return v, nil
}

// Run connects to the broker, announces the initial state and processes
// commands until ctx is done.
func (v *Vehicle) Run(ctx context.Context) error {
	log.Info("Starting scoot-vehicle", "vehicleID", v.controller.id, "root", v.bus.Topics().Root())

	if err := v.bus.Start(ctx); err != nil {
		return err
	}
	defer v.bus.Stop()

	err := v.bus.Submit(ctx, func(ctx context.Context) {
		if err := v.controller.Announce(ctx); err != nil {
			log.Error(err, "Failed to announce initial state")
		}
	})
	if err != nil {
		return err
	}

	servers := []server.Server{server.ServerFunc(v.bus.Run)}
	if v.http != nil {
		servers = append(servers, v.http)
	}

	if err := server.NewManager(servers...).Start(ctx); err != nil {
		return err
	}
	log.Info("Vehicle shutting down...")
	return nil
}

func (v *Vehicle) handleCommand(ctx context.Context, payload []byte) error {
	cmd, err := protocol.ParseCommand(payload)
	if err != nil {
		metrics.UnknownCommands.WithLabelValues(Name, string(protocol.RoleVehicleCommand)).Inc()
		log.Warn("Dropping unknown command", "payload", string(payload))
		return nil
	}
	metrics.CommandsReceived.WithLabelValues(Name, string(cmd)).Inc()
	return v.controller.HandleCommand(ctx, cmd)
}

func (v *Vehicle) Ready() bool {
	return v.bus.IsConnected()
}

func (v *Vehicle) Status(ctx context.Context) (any, error) {
	var status Status
	err := v.bus.Call(ctx, func(context.Context) error {
		status = v.controller.Status()
		return nil
	})
	return status, err
}

func (v *Vehicle) Graph(ctx context.Context) (string, error) {
	var graph string
	err := v.bus.Call(ctx, func(context.Context) error {
		graph = v.controller.Graph()
		return nil
	})
	return graph, err
}
