// Package hal abstracts the vehicle's sensor board.
package hal

import (
	"context"

	"github.com/autopeer-io/scootshare/internal/protocol"
)

// Sensors is the driven port for reading the sensor board. Readings are raw;
// the controller rounds them before publishing.
type Sensors interface {
	ReadTelemetry(ctx context.Context) (protocol.Telemetry, error)
}
