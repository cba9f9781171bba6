package coordinator

import (
	"fmt"
	"os"

	"github.com/autopeer-io/scootshare/internal/coordinator/rental"
	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/log"
	"github.com/autopeer-io/scootshare/pkg/mqtt"
	"github.com/autopeer-io/scootshare/pkg/options"
)

type Config struct {
	MqttOptions   *options.MqttOptions
	HttpOptions   *options.HttpOptions
	RentalOptions *options.RentalOptions
}

// NewCoordinator wires the broker client, the rental machine and the
// operations server.
func (cfg *Config) NewCoordinator() (*Coordinator, error) {
	mqttClient, err := initMqttClient(cfg.MqttOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to init mqtt client: %w", err)
	}

	b := bus.New(Name, mqttClient, protocol.NewTopics(cfg.MqttOptions.TopicRoot), cfg.MqttOptions.QoS)
	machine := rental.NewMachine(
		b,
		rental.NewRandomPayment(cfg.RentalOptions.PaymentAcceptRate, cfg.RentalOptions.PaymentSeed),
		rental.NewWatchdog(cfg.RentalOptions.AckTimeout, log.WithName(Name)),
	)

	return New(b, machine, cfg.HttpOptions)
}

func initMqttClient(opts *options.MqttOptions) (mqtt.Client, error) {
	cfg := opts.ToClientConfig()

	if cfg.ClientID == "" {
		hostname, _ := os.Hostname()
		cfg.ClientID = fmt.Sprintf("scoot-coordinator-%s", hostname)
	}

	return mqtt.NewClient(cfg)
}
