package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
)

func TestParseCommand(t *testing.T) {
	for c := range commands {
		got, err := ParseCommand(c.Bytes())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCommand([]byte(" send-unlock\n"))
	require.NoError(t, err)
	assert.Equal(t, SendUnlock, got)

	for _, bad := range []string{"", "Send-Unlock", "recieved-open-request", "evt_ack_close"} {
		_, err := ParseCommand([]byte(bad))
		assert.ErrorIs(t, err, ErrUnknownCommand, bad)
	}
}

func TestIsAdminCommand(t *testing.T) {
	assert.True(t, RequestInfo.IsAdminCommand())
	assert.True(t, Deactivate.IsAdminCommand())
	assert.True(t, Activate.IsAdminCommand())
	assert.False(t, SendUnlock.IsAdminCommand())
	assert.False(t, LoginAdmin.IsAdminCommand())
}

func TestTopics(t *testing.T) {
	topics := NewTopics("scootshare")

	want := map[Role]string{
		RoleUserCommand:    "scootshare/user/command",
		RoleUserAck:        "scootshare/user/ack",
		RoleVehicleCommand: "scootshare/vehicle/command",
		RoleVehicleAck:     "scootshare/vehicle/ack",
		RoleVehicleState:   "scootshare/vehicle/state",
		RoleVehicleInfo:    "scootshare/vehicle/info",
	}
	for role, name := range want {
		assert.Equal(t, name, topics.Of(role))
		got, ok := topics.RoleOf(name)
		assert.True(t, ok)
		assert.Equal(t, role, got)
	}

	_, ok := topics.RoleOf("scootshare/vehicle/unknown")
	assert.False(t, ok)
}

func TestParseVehicleState(t *testing.T) {
	s, err := ParseVehicleState([]byte("parking-invalid"))
	require.NoError(t, err)
	assert.Equal(t, VehicleParkingInvalid, s)

	_, err = ParseVehicleState([]byte("flying"))
	assert.Error(t, err)
}

func TestTelemetryRounding(t *testing.T) {
	r := Telemetry{
		Temperature:   21.46,
		Pressure:      1013.251,
		Humidity:      40.04,
		Pitch:         1.234,
		AccelerationX: 0.4,
		AccelerationY: -0.2,
		AccelerationZ: 0.98,
	}.Rounded()

	assert.Equal(t, 21.5, r.Temperature)
	assert.Equal(t, 1013.3, r.Pressure)
	assert.Equal(t, 40.0, r.Humidity)
	assert.Equal(t, 1.234, r.Pitch)
	assert.Equal(t, 0.0, r.AccelerationX)
	assert.Equal(t, 0.0, r.AccelerationY)
	assert.Equal(t, 1.0, r.AccelerationZ)
}

func TestTelemetryEncodeDecode(t *testing.T) {
	s, err := Telemetry{Temperature: 20.04, Pressure: 1000, Humidity: 55.56, Yaw: 90, AccelerationZ: 1.2}.Rounded().ToProto()
	require.NoError(t, err)
	payload, err := protojson.Marshal(s)
	require.NoError(t, err)

	fields, err := DecodeTelemetry(payload)
	require.NoError(t, err)
	require.Len(t, fields, len(telemetryKeys))

	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	assert.Equal(t, telemetryKeys, keys)
	assert.Equal(t, Field{Key: KeyTemperature, Value: "20"}, fields[0])
	assert.Equal(t, Field{Key: KeyHumidity, Value: "55.6"}, fields[2])
	assert.Equal(t, Field{Key: KeyAccelerationZ, Value: "1"}, fields[8])
}

func TestDecodeTelemetryExtraKeys(t *testing.T) {
	fields, err := DecodeTelemetry([]byte(`{"zeta":"z","battery":87,"temperature":19.5}`))
	require.NoError(t, err)
	assert.Equal(t, []Field{
		{Key: KeyTemperature, Value: "19.5"},
		{Key: "battery", Value: "87"},
		{Key: "zeta", Value: "z"},
	}, fields)

	_, err = DecodeTelemetry([]byte("not json"))
	assert.Error(t, err)
}
