package rental

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/scootshare/internal/pkg/util/fsm"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/log"
)

const component = "coordinator"

// Events of the rental machine. Login uses one event per target state so
// the branch decision is taken before the machine is asked to move.
const (
	eventLogin       = "login:"
	eventLogout      = "logout"
	eventRentRequest = "rent-request"
	eventEndRequest  = "end-request"
	eventAckOpen     = "ack-open"
	eventAckClose    = "ack-close"
	eventRelay       = "relay"
)

var sessionStates = []string{string(StateIdle), string(StateAdmin), string(StateUser)}

// Machine is the rental coordinator's state machine. It is not safe for
// concurrent use; the coordinator drives it from a single worker.
type Machine struct {
	fsm *fsm.FSM

	session      AccessLevel
	vehicleState protocol.VehicleState

	payment  PaymentDecider
	sender   bus.Sender
	watchdog *Watchdog
	logger   log.Logger
}

// NewMachine creates a machine in state Idle. watchdog may be nil.
func NewMachine(sender bus.Sender, payment PaymentDecider, watchdog *Watchdog) *Machine {
	m := &Machine{
		payment:  payment,
		sender:   sender,
		watchdog: watchdog,
		logger:   log.WithName(component),
	}

	events := fsm.Events{
		{Name: eventLogout, Src: []string{string(StateAdmin), string(StateUser)}, Dst: string(StateIdle)},
		{Name: eventRentRequest, Src: []string{string(StateUser)}, Dst: string(StateUser)},
		{Name: eventAckOpen, Src: []string{string(StateUser)}, Dst: string(StateVehicleRunning)},
		{Name: eventEndRequest, Src: []string{string(StateVehicleRunning)}, Dst: string(StateVehicleRunning)},
		{Name: eventAckClose, Src: []string{string(StateVehicleRunning)}, Dst: string(StateIdle)},
		{Name: eventRelay, Src: []string{string(StateAdmin)}, Dst: string(StateAdmin)},
	}
	callbacks := fsm.Callbacks{
		"enter_state":               m.enterState,
		"after_" + eventLogout:      fsmutil.WrapEvent(m.afterLogout),
		"after_" + eventRentRequest: fsmutil.WrapEvent(m.afterRentRequest),
		"after_" + eventAckOpen:     fsmutil.WrapEvent(m.afterAckOpen),
		"after_" + eventEndRequest:  fsmutil.WrapEvent(m.afterEndRequest),
		"after_" + eventAckClose:    fsmutil.WrapEvent(m.afterAckClose),
		"after_" + eventRelay:       fsmutil.WrapEvent(m.afterRelay),
	}
	for _, target := range sessionStates {
		name := eventLogin + target
		events = append(events, fsm.EventDesc{Name: name, Src: sessionStates, Dst: target})
		callbacks["after_"+name] = fsmutil.WrapEvent(m.afterLogin)
	}

	m.fsm = fsm.NewFSM(string(StateIdle), events, callbacks)
	return m
}

// State returns the current rental state.
func (m *Machine) State() State {
	return State(m.fsm.Current())
}

// Session returns the current access level.
func (m *Machine) Session() AccessLevel {
	return m.session
}

// Status returns a snapshot of the machine.
func (m *Machine) Status() Status {
	return Status{
		State:        m.State(),
		Session:      m.session,
		VehicleState: m.vehicleState,
		Version:      protocol.Version,
	}
}

// Graph renders the machine in Graphviz format.
func (m *Machine) Graph() string {
	return fsm.Visualize(m.fsm)
}

// HandleUserCommand applies a command received from the terminal.
// Commands that are illegal in the current state are logged and ignored.
func (m *Machine) HandleUserCommand(ctx context.Context, cmd protocol.Command) error {
	switch cmd {
	case protocol.LoginAdmin, protocol.LoginUser, protocol.Login:
		level := accessFor(cmd)
		return m.fire(ctx, eventLogin+string(LoginBranch(level)), cmd, level)

	case protocol.Logout:
		if m.State() == StateIdle {
			// Nothing to close; acknowledge so the terminal resynchronises.
			return m.sender.SendCommand(ctx, protocol.RoleUserAck, protocol.Logout)
		}
		return m.fire(ctx, eventLogout)

	case protocol.ReceivedOpenRequest:
		return m.fire(ctx, eventRentRequest)

	case protocol.ReceivedCloseRequest:
		return m.fire(ctx, eventEndRequest)

	case protocol.RequestInfo, protocol.Deactivate, protocol.Activate:
		return m.fire(ctx, eventRelay, cmd)
	}

	m.logger.Warn("Ignoring command not accepted from the terminal", "command", cmd, "state", m.State())
	return nil
}

// HandleVehicleAck applies an acknowledgement received from the vehicle.
func (m *Machine) HandleVehicleAck(ctx context.Context, cmd protocol.Command) error {
	switch cmd {
	case protocol.AckOpenRequest:
		return m.fire(ctx, eventAckOpen)
	case protocol.AckCloseRequest:
		return m.fire(ctx, eventAckClose)
	}

	m.logger.Warn("Ignoring command not accepted from the vehicle", "command", cmd, "state", m.State())
	return nil
}

// ObserveVehicleState records a vehicle state announcement. It never
// changes the rental state.
func (m *Machine) ObserveVehicleState(_ context.Context, state protocol.VehicleState) {
	m.logger.Info("Vehicle state announced", "vehicleState", state, "state", m.State())
	if state == protocol.VehicleParkingInvalid {
		// The vehicle refused to lock and will not acknowledge; the ride goes on.
		m.watchdog.Disarm(PhaseLock)
		return
	}
	m.vehicleState = state
}

// Close releases the watchdog timers.
func (m *Machine) Close() {
	m.watchdog.Stop()
}

func (m *Machine) fire(ctx context.Context, event string, args ...any) error {
	from := m.State()
	err := fsmutil.Fire(ctx, m.fsm, event, args...)
	if fsmutil.IsRejected(err) {
		metrics.RejectedEvents.WithLabelValues(component, event, string(from)).Inc()
		m.logger.Warn("Transition rejected", "event", event, "state", from)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s in state %s: %w", event, from, err)
	}
	return nil
}

func (m *Machine) enterState(_ context.Context, e *fsm.Event) {
	metrics.StateTransitions.WithLabelValues(component, e.Src, e.Dst).Inc()
	m.logger.Info("State changed", "event", e.Event, "from", e.Src, "to", e.Dst)
}

// afterLogin runs for every login, including one that keeps the state.
// A second login overwrites the session.
func (m *Machine) afterLogin(ctx context.Context, e *fsm.Event) error {
	cmd := e.Args[0].(protocol.Command)
	m.session = e.Args[1].(AccessLevel)
	return m.sender.SendCommand(ctx, protocol.RoleUserAck, cmd)
}

func (m *Machine) afterLogout(ctx context.Context, _ *fsm.Event) error {
	m.session = AccessNone
	return m.sender.SendCommand(ctx, protocol.RoleUserAck, protocol.Logout)
}

// afterRentRequest runs the payment decision. Approval only asks the vehicle
// to unlock; the ride starts with the vehicle's acknowledgement.
func (m *Machine) afterRentRequest(ctx context.Context, _ *fsm.Event) error {
	approved := m.payment.Approve(ctx)
	metrics.PaymentDecisions.WithLabelValues(metrics.Outcome(approved, "approved", "rejected")).Inc()

	if !approved {
		m.logger.Info("Payment rejected")
		return m.sender.SendCommand(ctx, protocol.RoleUserAck, protocol.PaymentFailed)
	}

	m.logger.Info("Payment approved, unlocking vehicle")
	if err := m.sender.SendCommand(ctx, protocol.RoleVehicleCommand, protocol.SendUnlock); err != nil {
		return err
	}
	m.watchdog.Arm(PhaseUnlock)
	return nil
}

func (m *Machine) afterAckOpen(context.Context, *fsm.Event) error {
	m.watchdog.Disarm(PhaseUnlock)
	metrics.RidesStarted.Inc()
	return nil
}

func (m *Machine) afterEndRequest(ctx context.Context, _ *fsm.Event) error {
	if err := m.sender.SendCommand(ctx, protocol.RoleVehicleCommand, protocol.SendLock); err != nil {
		return err
	}
	m.watchdog.Arm(PhaseLock)
	return nil
}

// afterAckClose ends the ride. The session ends with it, and the terminal is
// told so it does not keep showing a menu for a session that is gone.
func (m *Machine) afterAckClose(ctx context.Context, _ *fsm.Event) error {
	m.watchdog.Disarm(PhaseLock)
	metrics.RidesCompleted.Inc()
	m.session = AccessNone
	return m.sender.SendCommand(ctx, protocol.RoleUserAck, protocol.Logout)
}

func (m *Machine) afterRelay(ctx context.Context, e *fsm.Event) error {
	cmd := e.Args[0].(protocol.Command)
	m.logger.Info("Relaying admin command to vehicle", "command", cmd)
	return m.sender.SendCommand(ctx, protocol.RoleVehicleCommand, cmd)
}
