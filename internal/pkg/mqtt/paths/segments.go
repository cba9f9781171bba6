package paths

// Topic segments for the scootshare protocol.
// These constants define the routing topology between terminal, coordinator
// and vehicle. Changing them breaks compatibility with deployed components.

// Terminal <-> Coordinator
const (
	// UserCommand carries terminal requests (Terminal -> Coordinator).
	// Pattern: {root}/user/command
	UserCommand = "user/command"

	// UserAck carries session acknowledgements and payment failures (Coordinator -> Terminal).
	// Pattern: {root}/user/ack
	UserAck = "user/ack"
)

// Coordinator <-> Vehicle
const (
	// VehicleCommand carries unlock/lock and maintenance directives (Coordinator -> Vehicle).
	// Pattern: {root}/vehicle/command
	VehicleCommand = "vehicle/command"

	// VehicleAck carries handshake acknowledgements (Vehicle -> Coordinator).
	// Pattern: {root}/vehicle/ack
	VehicleAck = "vehicle/ack"
)

// Vehicle broadcasts
const (
	// VehicleState announces the controller state (Vehicle -> Coordinator, Terminal).
	// Payload: running | locked | maintenance | parking-invalid
	// Pattern: {root}/vehicle/state
	VehicleState = "vehicle/state"

	// VehicleInfo carries telemetry snapshots (Vehicle -> Terminal).
	// Payload: { "temperature": 21.5, "pitch": 0.4, ... }
	// Pattern: {root}/vehicle/info
	VehicleInfo = "vehicle/info"
)
