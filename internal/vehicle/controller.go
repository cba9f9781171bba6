package vehicle

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/scootshare/internal/pkg/util/fsm"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/internal/vehicle/hal"
	"github.com/autopeer-io/scootshare/pkg/log"
)

// State is the vehicle controller's state.
type State string

const (
	StateLocked      State = "Locked"
	StateRunning     State = "Running"
	StateMaintenance State = "Maintenance"
)

// label is the wire form announced on the vehicle-state topic.
func (s State) label() protocol.VehicleState {
	switch s {
	case StateRunning:
		return protocol.VehicleRunning
	case StateMaintenance:
		return protocol.VehicleMaintenance
	default:
		return protocol.VehicleLocked
	}
}

const (
	eventUnlock      = "unlock"
	eventLock        = "lock"
	eventDeactivate  = "deactivate"
	eventActivate    = "activate"
	eventRequestInfo = "request-info"
)

var errParkingInvalid = errors.New("parking invalid")

// Status is a snapshot of the vehicle.
type Status struct {
	ID      string `json:"id"`
	State   State  `json:"state"`
	Version string `json:"version"`
}

// Controller is the vehicle's state machine. It is not safe for concurrent
// use; the vehicle drives it from a single worker.
type Controller struct {
	id  string
	fsm *fsm.FSM

	parking ParkingChecker
	sensors hal.Sensors
	sender  bus.Sender
	logger  log.Logger
}

// NewController creates a controller in state Locked.
func NewController(id string, sender bus.Sender, parking ParkingChecker, sensors hal.Sensors) *Controller {
	c := &Controller{
		id:      id,
		parking: parking,
		sensors: sensors,
		sender:  sender,
		logger:  log.WithName(Name).WithValues("vehicleID", id),
	}

	c.fsm = fsm.NewFSM(
		string(StateLocked),
		fsm.Events{
			{Name: eventUnlock, Src: []string{string(StateLocked)}, Dst: string(StateRunning)},
			{Name: eventLock, Src: []string{string(StateRunning)}, Dst: string(StateLocked)},
			{Name: eventDeactivate, Src: []string{string(StateLocked)}, Dst: string(StateMaintenance)},
			{Name: eventActivate, Src: []string{string(StateMaintenance)}, Dst: string(StateLocked)},
			{Name: eventRequestInfo, Src: []string{string(StateLocked)}, Dst: string(StateLocked)},
		},
		fsm.Callbacks{
			"enter_state":               fsmutil.WrapEvent(c.enterState),
			"before_" + eventLock:       c.checkParking,
			"after_" + eventUnlock:      fsmutil.WrapEvent(c.ack(protocol.AckOpenRequest)),
			"after_" + eventLock:        fsmutil.WrapEvent(c.ack(protocol.AckCloseRequest)),
			"after_" + eventRequestInfo: fsmutil.WrapEvent(c.publishTelemetry),
		},
	)
	return c
}

// State returns the current controller state.
func (c *Controller) State() State {
	return State(c.fsm.Current())
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	return Status{ID: c.id, State: c.State(), Version: protocol.Version}
}

// Graph renders the machine in Graphviz format.
func (c *Controller) Graph() string {
	return fsm.Visualize(c.fsm)
}

// Announce publishes the current state. It is called once on start, standing
// in for the initial entry into Locked.
func (c *Controller) Announce(ctx context.Context) error {
	return c.sender.Send(ctx, protocol.RoleVehicleState, c.State().label().Bytes())
}

// HandleCommand applies a command received from the coordinator.
// Commands that are illegal in the current state are logged and ignored.
func (c *Controller) HandleCommand(ctx context.Context, cmd protocol.Command) error {
	switch cmd {
	case protocol.SendUnlock:
		return c.fire(ctx, eventUnlock)
	case protocol.SendLock:
		return c.fire(ctx, eventLock)
	case protocol.Deactivate:
		return c.fire(ctx, eventDeactivate)
	case protocol.Activate:
		return c.fire(ctx, eventActivate)
	case protocol.RequestInfo:
		return c.fire(ctx, eventRequestInfo)
	}

	c.logger.Warn("Ignoring command not accepted by the vehicle", "command", cmd, "state", c.State())
	return nil
}

func (c *Controller) fire(ctx context.Context, event string) error {
	from := c.State()
	err := fsmutil.Fire(ctx, c.fsm, event)
	if err == nil {
		return nil
	}

	if fsmutil.IsRejected(err) {
		metrics.RejectedEvents.WithLabelValues(Name, event, string(from)).Inc()
		c.logger.Warn("Transition rejected", "event", event, "state", from)
		return nil
	}
	if reason, ok := fsmutil.Canceled(err); ok {
		if errors.Is(reason, errParkingInvalid) {
			return nil
		}
		err = reason
	}
	return fmt.Errorf("%s in state %s: %w", event, from, err)
}

// checkParking guards the lock. An improper parking is announced and the
// vehicle keeps running without acknowledging.
func (c *Controller) checkParking(ctx context.Context, e *fsm.Event) {
	valid := c.parking.Valid(ctx)
	metrics.ParkingChecks.WithLabelValues(metrics.Outcome(valid, "valid", "invalid")).Inc()
	if valid {
		c.logger.Info("Parking check passed")
		return
	}

	c.logger.Info("Parking check failed, ride continues")
	if err := c.sender.Send(ctx, protocol.RoleVehicleState, protocol.VehicleParkingInvalid.Bytes()); err != nil {
		e.Cancel(err)
		return
	}
	e.Cancel(errParkingInvalid)
}

func (c *Controller) enterState(ctx context.Context, e *fsm.Event) error {
	metrics.StateTransitions.WithLabelValues(Name, e.Src, e.Dst).Inc()
	c.logger.Info("State changed", "event", e.Event, "from", e.Src, "to", e.Dst)
	return c.sender.Send(ctx, protocol.RoleVehicleState, State(e.Dst).label().Bytes())
}

// ack confirms a completed handshake to the coordinator, after the state
// announcement so observers see the new state first.
func (c *Controller) ack(cmd protocol.Command) func(context.Context, *fsm.Event) error {
	return func(ctx context.Context, e *fsm.Event) error {
		if e.Err != nil {
			return e.Err
		}
		return c.sender.SendCommand(ctx, protocol.RoleVehicleAck, cmd)
	}
}

func (c *Controller) publishTelemetry(ctx context.Context, _ *fsm.Event) error {
	t, err := c.sensors.ReadTelemetry(ctx)
	if err != nil {
		return fmt.Errorf("read sensors: %w", err)
	}
	msg, err := t.Rounded().ToProto()
	if err != nil {
		return err
	}
	c.logger.Info("Publishing telemetry snapshot")
	return c.sender.SendProto(ctx, protocol.RoleVehicleInfo, msg)
}
