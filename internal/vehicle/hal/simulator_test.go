package hal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorIsSeeded(t *testing.T) {
	a, b := NewSimulator(3), NewSimulator(3)
	for range 5 {
		ta, err := a.ReadTelemetry(context.Background())
		require.NoError(t, err)
		tb, err := b.ReadTelemetry(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ta, tb)
	}
}

func TestSimulatorReadsPlausibleValues(t *testing.T) {
	s := NewSimulator(11)
	for range 50 {
		tel, err := s.ReadTelemetry(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 21, tel.Temperature, 4)
		assert.InDelta(t, 1013.25, tel.Pressure, 8)
		assert.GreaterOrEqual(t, tel.Yaw, 0.0)
		assert.Less(t, tel.Yaw, 360.0)

		r := tel.Rounded()
		assert.Equal(t, 0.0, r.AccelerationX)
		assert.Equal(t, 1.0, r.AccelerationZ)
	}
}

func TestSimulatorHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSimulator(1).ReadTelemetry(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
