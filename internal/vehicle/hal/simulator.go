package hal

import (
	"context"
	"math/rand"
	"time"

	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/log"
)

// Simulator produces plausible readings for a parked scooter.
// It is not safe for concurrent use.
type Simulator struct {
	rng *rand.Rand
}

// NewSimulator returns a simulator. A zero seed picks a time-based one.
func NewSimulator(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

func (s *Simulator) ReadTelemetry(ctx context.Context) (protocol.Telemetry, error) {
	if err := ctx.Err(); err != nil {
		return protocol.Telemetry{}, err
	}

	t := protocol.Telemetry{
		Temperature: s.around(21, 4),
		Pressure:    s.around(1013.25, 8),
		Humidity:    s.around(45, 15),
		Pitch:       s.around(0, 3),
		Roll:        s.around(0, 3),
		Yaw:         s.rng.Float64() * 360,

		// At rest the board only sees gravity.
		AccelerationX: s.around(0, 0.05),
		AccelerationY: s.around(0, 0.05),
		AccelerationZ: s.around(1, 0.05),
	}
	log.Debug("[HAL-Sim] Sensor board read", "temperature", t.Temperature, "pressure", t.Pressure)
	return t, nil
}

func (s *Simulator) around(center, spread float64) float64 {
	return center + (s.rng.Float64()*2-1)*spread
}
