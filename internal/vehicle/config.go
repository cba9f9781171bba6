package vehicle

import (
	"fmt"

	"github.com/autopeer-io/scootshare/internal/pkg/bus"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/internal/vehicle/hal"
	"github.com/autopeer-io/scootshare/pkg/mqtt"
	"github.com/autopeer-io/scootshare/pkg/options"
)

type Config struct {
	MqttOptions    *options.MqttOptions
	HttpOptions    *options.HttpOptions
	VehicleOptions *options.VehicleOptions
}

// NewVehicle wires the broker client, the controller with its simulated
// hardware and the operations server.
func (cfg *Config) NewVehicle() (*Vehicle, error) {
	vid := cfg.VehicleOptions.ID
	topics := protocol.NewTopics(cfg.MqttOptions.TopicRoot)

	mqttClient, err := cfg.initMqttClient(vid, topics)
	if err != nil {
		return nil, fmt.Errorf("failed to init mqtt client: %w", err)
	}

	b := bus.New(Name, mqttClient, topics, cfg.MqttOptions.QoS)
	controller := NewController(
		vid,
		b,
		NewRandomParking(cfg.VehicleOptions.ParkingValidRate, cfg.VehicleOptions.ParkingSeed),
		hal.NewSimulator(cfg.VehicleOptions.SensorSeed),
	)

	return New(b, controller, cfg.HttpOptions)
}

func (cfg *Config) initMqttClient(vid string, topics protocol.Topics) (mqtt.Client, error) {
	mqttConfig := cfg.MqttOptions.ToClientConfig()
	if mqttConfig.ClientID == "" {
		mqttConfig.ClientID = fmt.Sprintf("scoot-vehicle-%s", vid)
	}

	// A vehicle that drops off the bus can no longer be unlocked; tell the
	// state subscribers it is out of service.
	mqttConfig.WillTopic = topics.Of(protocol.RoleVehicleState)
	mqttConfig.WillPayload = protocol.VehicleMaintenance.Bytes()
	mqttConfig.WillQoS = byte(cfg.MqttOptions.QoS)

	return mqtt.NewClient(mqttConfig)
}
