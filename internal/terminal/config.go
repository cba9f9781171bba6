package terminal

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/mqtt"
	"github.com/autopeer-io/scootshare/pkg/options"
)

type Config struct {
	MqttOptions *options.MqttOptions

	// Input carries operator choices, one per line.
	Input io.Reader
	// Output receives menus and notices.
	Output io.Writer
}

// NewConsole wires the broker client and the terminal to the operator streams.
func (cfg *Config) NewConsole() (*Console, error) {
	clientCfg := cfg.MqttOptions.ToClientConfig()
	if clientCfg.ClientID == "" {
		// Several terminals may share one broker.
		clientCfg.ClientID = "scoot-terminal-" + uuid.NewString()[:8]
	}
	mqttClient, err := mqtt.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init mqtt client: %w", err)
	}

	b := bus.New(Name, mqttClient, protocol.NewTopics(cfg.MqttOptions.TopicRoot), cfg.MqttOptions.QoS)
	return NewConsole(b, New(b, NewRenderer(cfg.Output)), cfg.Input)
}
