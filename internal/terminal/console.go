package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	"github.com/autopeer-io/scootshare/internal/pkg/server"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/log"
)

// Console attaches a Terminal to the bus and to an operator input stream.
type Console struct {
	bus      *bus.Bus
	terminal *Terminal
	input    io.Reader
}

// NewConsole registers the terminal's routes on b. Each line read from
// input is one menu choice.
func NewConsole(b *bus.Bus, terminal *Terminal, input io.Reader) (*Console, error) {
	c := &Console{bus: b, terminal: terminal, input: input}

	routes := map[protocol.Role]bus.HandlerFunc{
		protocol.RoleUserAck:      c.handleAck,
		protocol.RoleVehicleState: c.handleVehicleState,
		protocol.RoleVehicleInfo:  bus.ProtoAdapter[structpb.Struct](c.terminal.HandleTelemetry),
	}
	for role, handler := range routes {
		if err := b.Register(role, handler); err != nil {
			return nil, fmt.Errorf("register %s: %w", role, err)
		}
	}
	return c, nil
}

// Run connects to the broker and serves the operator until ctx is done, the
// input ends or the operator quits.
func (c *Console) Run(ctx context.Context) error {
	log.Info("Starting scoot-terminal", "root", c.bus.Topics().Root())

	if err := c.bus.Start(ctx); err != nil {
		return err
	}
	defer c.bus.Stop()

	if err := c.bus.Submit(ctx, func(context.Context) { c.terminal.Start() }); err != nil {
		return err
	}

	err := server.NewManager(
		server.ServerFunc(c.bus.Run),
		server.ServerFunc(c.readInput),
	).Start(ctx)
	if errors.Is(err, ErrQuit) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// readInput forwards operator lines to the worker. The read blocks outside
// the worker so incoming messages are still rendered while waiting.
func (c *Console) readInput(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			readErr <- err
			return
		}
		readErr <- io.EOF
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			err := c.bus.Call(ctx, func(ctx context.Context) error {
				return c.terminal.HandleInput(ctx, line)
			})
			if errors.Is(err, ErrQuit) {
				return err
			}
			if err != nil {
				log.Error(err, "Failed to handle input", "input", line)
			}
		}
	}
}

func (c *Console) handleAck(ctx context.Context, payload []byte) error {
	cmd, err := protocol.ParseCommand(payload)
	if err != nil {
		metrics.UnknownCommands.WithLabelValues(Name, string(protocol.RoleUserAck)).Inc()
		log.Warn("Dropping unknown acknowledgement", "payload", string(payload))
		return nil
	}
	metrics.CommandsReceived.WithLabelValues(Name, string(cmd)).Inc()
	return c.terminal.HandleAck(ctx, cmd)
}

func (c *Console) handleVehicleState(ctx context.Context, payload []byte) error {
	state, err := protocol.ParseVehicleState(payload)
	if err != nil {
		log.Warn("Dropping unknown vehicle state", "payload", string(payload))
		return nil
	}
	return c.terminal.HandleVehicleState(ctx, state)
}
