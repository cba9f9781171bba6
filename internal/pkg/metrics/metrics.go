package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every scootshare collector plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

var (
	// BusConnected records the broker connection of each component.
	// 1 = connected, 0 = disconnected
	BusConnected = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scootshare_bus_connected",
			Help: "Connection status to the MQTT broker (1=connected, 0=disconnected).",
		},
		[]string{"component"},
	)

	// CommandsReceived counts decoded command tokens per component.
	CommandsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scootshare_commands_received_total",
			Help: "Total number of command tokens received.",
		},
		[]string{"component", "command"},
	)

	// UnknownCommands counts payloads that are not a known command token.
	UnknownCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scootshare_unknown_commands_total",
			Help: "Total number of payloads dropped because they are not a known command.",
		},
		[]string{"component", "role"},
	)

	// MessagesPublished counts publishes per topic role.
	MessagesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scootshare_messages_published_total",
			Help: "Total number of messages published.",
		},
		[]string{"component", "role", "status"}, // status: success/failed
	)

	// StateTransitions counts completed state machine transitions.
	StateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scootshare_state_transitions_total",
			Help: "Total number of state machine transitions.",
		},
		[]string{"component", "from", "to"},
	)

	// RejectedEvents counts events that were not legal in the current state.
	RejectedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scootshare_rejected_events_total",
			Help: "Total number of events ignored because they are illegal in the current state.",
		},
		[]string{"component", "event", "state"},
	)

	// PaymentDecisions counts payment outcomes.
	PaymentDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scootshare_payment_decisions_total",
			Help: "Total number of payment decisions by outcome.",
		},
		[]string{"outcome"}, // approved/rejected
	)

	// ParkingChecks counts parking check outcomes.
	ParkingChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scootshare_parking_checks_total",
			Help: "Total number of parking checks by outcome.",
		},
		[]string{"outcome"}, // valid/invalid
	)

	RidesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scootshare_rides_started_total",
			Help: "Total number of rides confirmed by the vehicle unlock acknowledgement.",
		},
	)

	RidesCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scootshare_rides_completed_total",
			Help: "Total number of rides closed by the vehicle lock acknowledgement.",
		},
	)

	// HandshakeTimeouts counts vehicle acknowledgements that did not arrive in time.
	HandshakeTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scootshare_handshake_timeouts_total",
			Help: "Total number of unlock/lock handshakes without a timely vehicle acknowledgement.",
		},
		[]string{"phase"}, // unlock/lock
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		BusConnected,
		CommandsReceived,
		UnknownCommands,
		MessagesPublished,
		StateTransitions,
		RejectedEvents,
		PaymentDecisions,
		ParkingChecks,
		RidesStarted,
		RidesCompleted,
		HandshakeTimeouts,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// Outcome maps a boolean decision to a label value.
func Outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// Bool maps a boolean to a gauge value.
func Bool(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
