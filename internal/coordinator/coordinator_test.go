package coordinator

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/scootshare/internal/coordinator/rental"
	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	httpserver "github.com/autopeer-io/scootshare/internal/pkg/server/http"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/mqtt"
	"github.com/autopeer-io/scootshare/pkg/mqtt/broker"
	"github.com/autopeer-io/scootshare/pkg/mqtt/mqtttest"
	"github.com/autopeer-io/scootshare/pkg/options"
)

const root = "test"

var topics = protocol.NewTopics(root)

type peer struct {
	client mqtt.Client
	got    chan string
}

// newPeer subscribes to the given roles and records "role payload" lines.
func newPeer(t *testing.T, br *broker.Broker, id string, roles ...protocol.Role) *peer {
	t.Helper()
	p := &peer{client: mqtttest.Connect(t, br, id), got: make(chan string, 16)}

	for _, role := range roles {
		require.NoError(t, p.client.Subscribe(context.Background(), topics.Of(role), 1,
			func(_ context.Context, _ string, payload []byte) {
				p.got <- string(role) + " " + string(payload)
			}))
	}
	return p
}

func (p *peer) send(t *testing.T, role protocol.Role, payload string) {
	t.Helper()
	require.NoError(t, p.client.Publish(context.Background(), topics.Of(role), 1, false, []byte(payload)))
}

func (p *peer) expect(t *testing.T, want ...string) {
	t.Helper()
	for _, w := range want {
		select {
		case v := <-p.got:
			assert.Equal(t, w, v)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", w)
		}
	}
}

func (p *peer) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case v := <-p.got:
		t.Fatalf("unexpected message %q", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func startCoordinator(t *testing.T, br *broker.Broker, approve bool) *Coordinator {
	t.Helper()
	b := bus.New(Name, mqtttest.NewClient(t, br, Name), topics, 1)
	c, err := New(b, rental.NewMachine(b, rental.FixedPayment(approve), nil), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	// The worker only runs once every route is subscribed.
	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := c.Status(ctx)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	return c
}

func status(t *testing.T, c *Coordinator) rental.Status {
	t.Helper()
	s, err := c.Status(context.Background())
	require.NoError(t, err)
	return s.(rental.Status)
}

func TestRentalOverTheBus(t *testing.T) {
	br := mqtttest.NewBroker(t)
	terminal := newPeer(t, br, "terminal", protocol.RoleUserAck)
	vehicle := newPeer(t, br, "vehicle", protocol.RoleVehicleCommand)
	c := startCoordinator(t, br, true)

	terminal.send(t, protocol.RoleUserCommand, "login-user")
	terminal.expect(t, "user-ack login-user")

	terminal.send(t, protocol.RoleUserCommand, "received-open-request")
	vehicle.expect(t, "vehicle-command send-unlock")

	vehicle.send(t, protocol.RoleVehicleState, "running")
	vehicle.send(t, protocol.RoleVehicleAck, "ack-open-request")
	require.Eventually(t, func() bool {
		return status(t, c).State == rental.StateVehicleRunning
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, protocol.VehicleRunning, status(t, c).VehicleState)

	terminal.send(t, protocol.RoleUserCommand, "received-close-request")
	vehicle.expect(t, "vehicle-command send-lock")

	vehicle.send(t, protocol.RoleVehicleState, "locked")
	vehicle.send(t, protocol.RoleVehicleAck, "ack-close-request")
	terminal.expect(t, "user-ack logout")
	assert.Equal(t, rental.StateIdle, status(t, c).State)
}

func TestPaymentFailureNotifiesTerminal(t *testing.T) {
	br := mqtttest.NewBroker(t)
	terminal := newPeer(t, br, "terminal", protocol.RoleUserAck)
	vehicle := newPeer(t, br, "vehicle", protocol.RoleVehicleCommand)
	startCoordinator(t, br, false)

	terminal.send(t, protocol.RoleUserCommand, "login-user")
	terminal.send(t, protocol.RoleUserCommand, "received-open-request")
	terminal.expect(t, "user-ack login-user", "user-ack payment-failed")
	vehicle.expectNothing(t)
}

func TestUnknownCommandsAreDropped(t *testing.T) {
	br := mqtttest.NewBroker(t)
	terminal := newPeer(t, br, "terminal", protocol.RoleUserAck)
	c := startCoordinator(t, br, true)
	unknown := func() float64 {
		return testutil.ToFloat64(metrics.UnknownCommands.WithLabelValues(Name, string(protocol.RoleUserCommand)))
	}
	before := unknown()

	terminal.send(t, protocol.RoleUserCommand, "LOGIN-ADMIN")
	terminal.send(t, protocol.RoleVehicleState, "flying")
	terminal.send(t, protocol.RoleUserCommand, " login-admin\n")
	terminal.expect(t, "user-ack login-admin")

	assert.Equal(t, before+1, unknown())
	assert.Equal(t, rental.StateAdmin, status(t, c).State)
	assert.Empty(t, status(t, c).VehicleState)
}

func TestOperationsEndpoints(t *testing.T) {
	br := mqtttest.NewBroker(t)
	c := startCoordinator(t, br, true)
	router := httpserver.NewRouter(c)

	get := func(path string) (int, string) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		body, _ := io.ReadAll(rec.Body)
		return rec.Code, string(body)
	}

	code, _ := get("/readyz")
	assert.Equal(t, 200, code)

	code, body := get("/v1/status")
	assert.Equal(t, 200, code)
	assert.JSONEq(t, `{"state":"Idle","session":"","version":"v1"}`, body)

	code, body = get("/v1/fsm")
	assert.Equal(t, 200, code)
	assert.Contains(t, body, "digraph")
}

func TestNewBuildsHttpServerOnlyWhenEnabled(t *testing.T) {
	br := mqtttest.NewBroker(t)
	newCoordinator := func(opts *options.HttpOptions) *Coordinator {
		b := bus.New(Name, mqtttest.NewClient(t, br, Name), topics, 1)
		c, err := New(b, rental.NewMachine(b, rental.FixedPayment(true), nil), opts)
		require.NoError(t, err)
		return c
	}

	assert.NotNil(t, newCoordinator(options.NewHttpOptions("127.0.0.1:0")).http)

	disabled := options.NewHttpOptions("127.0.0.1:0")
	disabled.Enabled = false
	assert.Nil(t, newCoordinator(disabled).http)
}

func TestConfigNewCoordinator(t *testing.T) {
	cfg := &Config{
		MqttOptions:   options.NewMqttOptions(),
		HttpOptions:   options.NewHttpOptions("127.0.0.1:0"),
		RentalOptions: options.NewRentalOptions(),
	}
	c, err := cfg.NewCoordinator()
	require.NoError(t, err)
	assert.Equal(t, rental.StateIdle, c.machine.State())

	cfg.MqttOptions.Broker = "::bad"
	_, err = cfg.NewCoordinator()
	assert.Error(t, err)
}
