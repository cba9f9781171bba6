// Package terminal runs the user terminal: it maps menu choices to commands
// for the coordinator and renders what comes back.
package terminal

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/scootshare/internal/pkg/util/fsm"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/log"
)

// Name identifies the terminal in logs and metrics.
const Name = "terminal"

const eventRestart = "restart"

// Terminal is the terminal's view machine. It is not safe for concurrent
// use; operator input and bus messages are both handled on one worker.
type Terminal struct {
	fsm      *fsm.FSM
	sender   bus.Sender
	renderer *Renderer
	logger   log.Logger

	// refreshed is set once the current menu has been printed since the
	// last operator input. Later restarts only repeat the prompt.
	refreshed bool
}

func New(sender bus.Sender, renderer *Renderer) *Terminal {
	t := &Terminal{
		sender:   sender,
		renderer: renderer,
		logger:   log.WithName(Name),
	}

	t.fsm = fsm.NewFSM(
		string(ViewWelcome),
		fsm.Events{
			{Name: string(protocol.LoginUser), Src: []string{string(ViewWelcome)}, Dst: string(ViewUserMenu)},
			{Name: string(protocol.LoginAdmin), Src: []string{string(ViewWelcome)}, Dst: string(ViewAdminMenu)},
			{Name: string(protocol.Logout), Src: []string{string(ViewUserMenu), string(ViewAdminMenu)}, Dst: string(ViewWelcome)},
			{Name: string(protocol.Login), Src: []string{string(ViewWelcome), string(ViewUserMenu), string(ViewAdminMenu)}, Dst: string(ViewWelcome)},
			{Name: eventRestart, Src: []string{string(ViewWelcome)}, Dst: string(ViewWelcome)},
			{Name: eventRestart, Src: []string{string(ViewUserMenu)}, Dst: string(ViewUserMenu)},
			{Name: eventRestart, Src: []string{string(ViewAdminMenu)}, Dst: string(ViewAdminMenu)},
		},
		fsm.Callbacks{
			"enter_state":           t.enterView,
			"after_" + eventRestart: t.redraw,
		},
	)
	return t
}

// View returns the current view.
func (t *Terminal) View() View {
	return View(t.fsm.Current())
}

// Graph renders the machine in Graphviz format.
func (t *Terminal) Graph() string {
	return fsm.Visualize(t.fsm)
}

// Start renders the initial view.
func (t *Terminal) Start() {
	t.menu(t.View())
}

// HandleInput applies one line of operator input. Every published command
// is followed by a restart, so the operator is prompted again whether or not
// a reply ever arrives. It returns ErrQuit when the operator leaves.
func (t *Terminal) HandleInput(ctx context.Context, input string) error {
	t.refreshed = false

	opt, ok := Choose(t.View(), input)
	if !ok {
		t.renderer.Notice(msgInvalidChoice)
		return t.restart(ctx)
	}
	if opt.Quit {
		t.renderer.Notice(msgGoodbye)
		return ErrQuit
	}

	if err := t.sender.SendCommand(ctx, protocol.RoleUserCommand, opt.Command); err != nil {
		return err
	}
	return t.restart(ctx)
}

// HandleAck applies an acknowledgement from the coordinator.
func (t *Terminal) HandleAck(ctx context.Context, cmd protocol.Command) error {
	switch cmd {
	case protocol.LoginUser, protocol.LoginAdmin, protocol.Logout, protocol.Login:
		// A login without a role leaves the coordinator idle, so it ends
		// up in Welcome like a logout.
		return t.fire(ctx, string(cmd))
	case protocol.PaymentFailed:
		t.renderer.Notice(msgPaymentFailed)
		return t.restart(ctx)
	}

	t.logger.Warn("Ignoring acknowledgement", "command", cmd, "view", t.View())
	return nil
}

// HandleVehicleState renders a vehicle state announcement.
func (t *Terminal) HandleVehicleState(ctx context.Context, state protocol.VehicleState) error {
	t.renderer.VehicleState(state)
	return t.restart(ctx)
}

// HandleTelemetry renders a telemetry snapshot.
func (t *Terminal) HandleTelemetry(ctx context.Context, msg *structpb.Struct) error {
	t.renderer.Telemetry(protocol.OrderedFields(msg))
	return t.restart(ctx)
}

func (t *Terminal) restart(ctx context.Context) error {
	return t.fire(ctx, eventRestart)
}

func (t *Terminal) fire(ctx context.Context, event string) error {
	from := t.View()
	err := fsmutil.Fire(ctx, t.fsm, event)
	if fsmutil.IsRejected(err) {
		metrics.RejectedEvents.WithLabelValues(Name, event, string(from)).Inc()
		t.logger.Warn("Transition rejected", "event", event, "view", from)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s in view %s: %w", event, from, err)
	}
	return nil
}

func (t *Terminal) enterView(_ context.Context, e *fsm.Event) {
	metrics.StateTransitions.WithLabelValues(Name, e.Src, e.Dst).Inc()
	t.logger.Debug("View changed", "event", e.Event, "from", e.Src, "to", e.Dst)
	t.menu(View(e.Dst))
}

func (t *Terminal) redraw(_ context.Context, e *fsm.Event) {
	if t.refreshed {
		t.renderer.Prompt()
		return
	}
	t.menu(View(e.Dst))
}

func (t *Terminal) menu(view View) {
	t.renderer.Menu(view)
	t.refreshed = true
}
