package vehicle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/internal/vehicle/hal"
)

type recorder struct {
	msgs []string
	err  error
}

func (r *recorder) Send(_ context.Context, role protocol.Role, payload []byte) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, string(role)+" "+string(payload))
	return nil
}

func (r *recorder) SendCommand(ctx context.Context, role protocol.Role, cmd protocol.Command) error {
	return r.Send(ctx, role, cmd.Bytes())
}

func (r *recorder) SendProto(ctx context.Context, role protocol.Role, msg proto.Message) error {
	b, err := protojson.Marshal(msg)
	if err != nil {
		return err
	}
	return r.Send(ctx, role, b)
}

func (r *recorder) take() []string {
	out := r.msgs
	r.msgs = nil
	return out
}

type scriptedParking []bool

func (s *scriptedParking) Valid(context.Context) bool {
	v := (*s)[0]
	*s = (*s)[1:]
	return v
}

type fixedSensors protocol.Telemetry

func (f fixedSensors) ReadTelemetry(context.Context) (protocol.Telemetry, error) {
	return protocol.Telemetry(f), nil
}

type brokenSensors struct{}

func (brokenSensors) ReadTelemetry(context.Context) (protocol.Telemetry, error) {
	return protocol.Telemetry{}, errors.New("i2c timeout")
}

func newController(parking ParkingChecker) (*Controller, *recorder) {
	r := &recorder{}
	return NewController("scooter-test", r, parking, hal.NewSimulator(1)), r
}

func handle(t *testing.T, c *Controller, cmds ...protocol.Command) {
	t.Helper()
	for _, cmd := range cmds {
		require.NoError(t, c.HandleCommand(context.Background(), cmd))
	}
}

func TestAnnounce(t *testing.T) {
	c, r := newController(FixedParking(true))
	require.NoError(t, c.Announce(context.Background()))
	assert.Equal(t, []string{"vehicle-state locked"}, r.take())
}

func TestUnlockAndLock(t *testing.T) {
	c, r := newController(FixedParking(true))

	handle(t, c, protocol.SendUnlock)
	assert.Equal(t, StateRunning, c.State())
	assert.Equal(t, []string{"vehicle-state running", "vehicle-ack ack-open-request"}, r.take())

	handle(t, c, protocol.SendLock)
	assert.Equal(t, StateLocked, c.State())
	assert.Equal(t, []string{"vehicle-state locked", "vehicle-ack ack-close-request"}, r.take())
}

func TestParkingInvalidKeepsRunning(t *testing.T) {
	decisions := scriptedParking{false, true}
	c, r := newController(&decisions)
	invalid := func() float64 { return testutil.ToFloat64(metrics.ParkingChecks.WithLabelValues("invalid")) }
	before := invalid()

	handle(t, c, protocol.SendUnlock)
	r.take()

	handle(t, c, protocol.SendLock)
	assert.Equal(t, StateRunning, c.State())
	assert.Equal(t, []string{"vehicle-state parking-invalid"}, r.take(), "no acknowledgement on improper parking")
	assert.Equal(t, before+1, invalid())

	handle(t, c, protocol.SendLock)
	assert.Equal(t, StateLocked, c.State())
	assert.Equal(t, []string{"vehicle-state locked", "vehicle-ack ack-close-request"}, r.take())
}

func TestMaintenanceIsolation(t *testing.T) {
	c, r := newController(FixedParking(true))

	handle(t, c, protocol.Deactivate)
	assert.Equal(t, StateMaintenance, c.State())
	assert.Equal(t, []string{"vehicle-state maintenance"}, r.take())

	// Nothing but activate leaves maintenance.
	handle(t, c, protocol.SendUnlock, protocol.SendLock, protocol.RequestInfo, protocol.Deactivate)
	assert.Equal(t, StateMaintenance, c.State())
	assert.Empty(t, r.take())

	handle(t, c, protocol.Activate)
	assert.Equal(t, StateLocked, c.State())
	assert.Equal(t, []string{"vehicle-state locked"}, r.take())
}

func TestMaintenanceOnlyFromLocked(t *testing.T) {
	c, r := newController(FixedParking(true))
	handle(t, c, protocol.SendUnlock)
	r.take()

	handle(t, c, protocol.Deactivate, protocol.Activate, protocol.RequestInfo, protocol.SendUnlock)
	assert.Equal(t, StateRunning, c.State())
	assert.Empty(t, r.take())
}

func TestRequestInfoPublishesRoundedTelemetry(t *testing.T) {
	r := &recorder{}
	c := NewController("scooter-test", r, FixedParking(true), fixedSensors{
		Temperature:   21.46,
		Pressure:      1012.04,
		Humidity:      40.25,
		Pitch:         1.5,
		Roll:          -0.5,
		Yaw:           90,
		AccelerationX: 0.2,
		AccelerationY: -0.4,
		AccelerationZ: 0.98,
	})

	handle(t, c, protocol.RequestInfo)
	assert.Equal(t, StateLocked, c.State())

	msgs := r.take()
	require.Len(t, msgs, 1)
	role, payload, _ := strings.Cut(msgs[0], " ")
	assert.Equal(t, "vehicle-info", role)

	fields, err := protocol.DecodeTelemetry([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, []protocol.Field{
		{Key: "temperature", Value: "21.5"},
		{Key: "pressure", Value: "1012"},
		{Key: "humidity", Value: "40.3"},
		{Key: "pitch", Value: "1.5"},
		{Key: "roll", Value: "-0.5"},
		{Key: "yaw", Value: "90"},
		{Key: "acceleration_x", Value: "0"},
		{Key: "acceleration_y", Value: "0"},
		{Key: "acceleration_z", Value: "1"},
	}, fields)
}

func TestSensorFailureSurfaces(t *testing.T) {
	r := &recorder{}
	c := NewController("scooter-test", r, FixedParking(true), brokenSensors{})
	err := c.HandleCommand(context.Background(), protocol.RequestInfo)
	assert.ErrorContains(t, err, "i2c timeout")
	assert.Equal(t, StateLocked, c.State())
}

func TestPublishFailureSkipsAck(t *testing.T) {
	c, r := newController(FixedParking(true))
	r.err = errors.New("broker down")

	err := c.HandleCommand(context.Background(), protocol.SendUnlock)
	assert.ErrorIs(t, err, r.err)
	assert.Equal(t, StateRunning, c.State())
	assert.Empty(t, r.take())
}

func TestUnrelatedCommandsIgnored(t *testing.T) {
	c, r := newController(FixedParking(true))
	handle(t, c, protocol.LoginAdmin, protocol.AckOpenRequest, protocol.SendLock)
	assert.Equal(t, StateLocked, c.State())
	assert.Empty(t, r.take())
}

func TestStatusAndGraph(t *testing.T) {
	c, _ := newController(FixedParking(true))
	assert.Equal(t, Status{ID: "scooter-test", State: StateLocked, Version: protocol.Version}, c.Status())
	assert.Contains(t, c.Graph(), "Maintenance")
}

func TestRandomParkingIsSeeded(t *testing.T) {
	a, b := NewRandomParking(0.5, 9), NewRandomParking(0.5, 9)
	for range 20 {
		assert.Equal(t, a.Valid(context.Background()), b.Valid(context.Background()))
	}
	assert.True(t, NewRandomParking(1, 9).Valid(context.Background()))
	assert.False(t, NewRandomParking(0, 9).Valid(context.Background()))
}
