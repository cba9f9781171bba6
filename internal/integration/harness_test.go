package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/scootshare/internal/coordinator"
	"github.com/autopeer-io/scootshare/internal/coordinator/rental"
	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/internal/terminal"
	"github.com/autopeer-io/scootshare/internal/vehicle"
	"github.com/autopeer-io/scootshare/internal/vehicle/hal"
	"github.com/autopeer-io/scootshare/pkg/mqtt"
	"github.com/autopeer-io/scootshare/pkg/mqtt/mqtttest"
)

const waitFor = 3 * time.Second

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// script replays a fixed sequence of decisions, then repeats the last one.
type script struct {
	mu   sync.Mutex
	vals []bool
}

func decide(vals ...bool) *script { return &script{vals: vals} }

func (s *script) next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[0]
	if len(s.vals) > 1 {
		s.vals = s.vals[1:]
	}
	return v
}

func (s *script) Approve(context.Context) bool { return s.next() }
func (s *script) Valid(context.Context) bool   { return s.next() }

// clientFactory hands out unstarted broker clients.
type clientFactory func(t *testing.T, id string) mqtt.Client

type harness struct {
	t           *testing.T
	coordinator *coordinator.Coordinator
	vehicle     *vehicle.Vehicle
	out         *syncBuffer
	operator    *io.PipeWriter

	// read offset into out
	seen int
}

// embeddedClients starts a broker for t and connects to it with version.
func embeddedClients(t *testing.T, version int) clientFactory {
	b := mqtttest.NewBroker(t)
	return func(t *testing.T, id string) mqtt.Client {
		return mqtttest.NewClientVersion(t, b, id, version)
	}
}

// eachProtocol runs fn once per MQTT version, each against its own
// embedded broker.
func eachProtocol(t *testing.T, fn func(t *testing.T, clients clientFactory)) {
	for _, version := range []int{mqtt.ProtocolV5, mqtt.ProtocolV311} {
		t.Run(fmt.Sprintf("mqtt-v%d", version), func(t *testing.T) {
			fn(t, embeddedClients(t, version))
		})
	}
}

func newHarness(t *testing.T, clients clientFactory, payment rental.PaymentDecider, parking vehicle.ParkingChecker) *harness {
	t.Helper()
	topics := protocol.NewTopics("it")
	h := &harness{t: t, out: &syncBuffer{}}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				t.Errorf("%s stopped: %v", name, err)
			}
		}()
	}

	cb := bus.New(coordinator.Name, clients(t, "it-coordinator"), topics, 1)
	c, err := coordinator.New(cb, rental.NewMachine(cb, payment, nil), nil)
	require.NoError(t, err)
	h.coordinator = c
	run("coordinator", c.Run)

	vb := bus.New(vehicle.Name, clients(t, "it-vehicle"), topics, 1)
	v, err := vehicle.New(vb, vehicle.NewController("it-scooter", vb, parking, hal.NewSimulator(7)), nil)
	require.NoError(t, err)
	h.vehicle = v
	run("vehicle", v.Run)

	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, cerr := c.Status(ctx)
		_, verr := v.Status(ctx)
		return cerr == nil && verr == nil
	}, waitFor, 10*time.Millisecond)

	in, operator := io.Pipe()
	h.operator = operator
	tb := bus.New(terminal.Name, clients(t, "it-terminal"), topics, 1)
	console, err := terminal.NewConsole(tb, terminal.New(tb, terminal.NewRenderer(h.out)), in)
	require.NoError(t, err)
	run("terminal", console.Run)

	t.Cleanup(func() {
		cancel()
		_ = operator.Close()
		wg.Wait()
	})

	h.await("== Welcome ==")
	return h
}

// enter types one line into the terminal.
func (h *harness) enter(line string) {
	h.t.Helper()
	_, err := io.WriteString(h.operator, line+"\n")
	require.NoError(h.t, err)
}

// await waits until text appears in the terminal output after everything
// matched so far.
func (h *harness) await(text string) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		s := h.out.String()
		i := strings.Index(s[h.seen:], text)
		if i < 0 {
			return false
		}
		h.seen += i + len(text)
		return true
	}, waitFor, 5*time.Millisecond, "terminal never showed %q", text)
}

func (h *harness) rentalState() rental.State {
	h.t.Helper()
	s, err := h.coordinator.Status(context.Background())
	require.NoError(h.t, err)
	return s.(rental.Status).State
}

func (h *harness) vehicleState() vehicle.State {
	h.t.Helper()
	s, err := h.vehicle.Status(context.Background())
	require.NoError(h.t, err)
	return s.(vehicle.Status).State
}
