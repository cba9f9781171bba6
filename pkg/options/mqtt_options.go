package options

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/autopeer-io/scootshare/pkg/mqtt"
	"github.com/autopeer-io/scootshare/pkg/mqtt/topic"
)

var _ IOptions = (*MqttOptions)(nil)

// MqttOptions contains configuration for MQTT client and topics.
type MqttOptions struct {
	Broker   string `json:"broker" mapstructure:"broker"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	ClientID string `json:"client-id" mapstructure:"client-id"`

	// ProtocolVersion selects the client: 5 (autopaho) or 4 (MQTT 3.1.1).
	ProtocolVersion int `json:"protocol-version" mapstructure:"protocol-version"`

	// QoS used for every publish and subscription.
	QoS int `json:"qos" mapstructure:"qos"`

	// Client behavior
	KeepAlive      time.Duration `json:"keep-alive" mapstructure:"keep-alive"`
	ConnectTimeout time.Duration `json:"connect-timeout" mapstructure:"connect-timeout"`
	SessionExpiry  uint32        `json:"session-expiry" mapstructure:"session-expiry"`
	CleanStart     bool          `json:"clean-start" mapstructure:"clean-start"`

	// InsecureSkipVerify controls whether a client verifies the server's certificate chain and host name.
	// This should be used only for testing.
	InsecureSkipVerify bool `json:"insecure-skip-verify" mapstructure:"insecure-skip-verify"`

	// TopicRoot prefixes every topic: {TopicRoot}/{segment}
	TopicRoot string `json:"topic-root" mapstructure:"topic-root"`

	// Debug routes the MQTT library's own logging through the component logger.
	Debug bool `json:"debug" mapstructure:"debug"`
}

// NewMqttOptions creates a new MqttOptions with default values.
func NewMqttOptions() *MqttOptions {
	return &MqttOptions{
		Broker:          "tcp://localhost:1883",
		ProtocolVersion: mqtt.ProtocolV5,
		QoS:             1,
		KeepAlive:       60 * time.Second,
		ConnectTimeout:  5 * time.Second,
		SessionExpiry:   60,
		CleanStart:      true,
		TopicRoot:       topic.DefaultRoot,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *MqttOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if u, err := url.Parse(o.Broker); err != nil || u.Host == "" {
		errors = append(errors, fmt.Errorf("--mqtt.broker %q is not a valid broker URL", o.Broker))
	}
	if o.ProtocolVersion != mqtt.ProtocolV5 && o.ProtocolVersion != mqtt.ProtocolV311 {
		errors = append(errors, fmt.Errorf("--mqtt.protocol-version must be %d or %d", mqtt.ProtocolV311, mqtt.ProtocolV5))
	}
	if o.QoS < 0 || o.QoS > 2 {
		errors = append(errors, fmt.Errorf("--mqtt.qos must be 0, 1 or 2"))
	}
	if strings.ContainsAny(o.TopicRoot, "+#") {
		errors = append(errors, fmt.Errorf("--mqtt.topic-root must not contain wildcards"))
	}

	return errors
}

// AddFlags adds flags for MqttOptions to the specified FlagSet.
func (o *MqttOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Broker, "mqtt.broker", o.Broker, "The URL of the MQTT broker.")
	fs.StringVar(&o.Username, "mqtt.username", o.Username, "The username for MQTT authentication.")
	fs.StringVar(&o.Password, "mqtt.password", o.Password, "The password for MQTT authentication.")
	fs.StringVar(&o.ClientID, "mqtt.client-id", o.ClientID, "Explicit Client ID (optional, usually generated).")
	fs.IntVar(&o.ProtocolVersion, "mqtt.protocol-version", o.ProtocolVersion, "MQTT protocol version: 5 or 4 (3.1.1).")
	fs.IntVar(&o.QoS, "mqtt.qos", o.QoS, "QoS level for publishes and subscriptions.")

	fs.DurationVar(&o.KeepAlive, "mqtt.keep-alive", o.KeepAlive, "MQTT Keep Alive interval.")
	fs.DurationVar(&o.ConnectTimeout, "mqtt.connect-timeout", o.ConnectTimeout, "Timeout for establishing MQTT connection.")
	fs.Uint32Var(&o.SessionExpiry, "mqtt.session-expiry", o.SessionExpiry, "MQTT Session Expiry Interval in seconds (MQTT 5 only).")
	fs.BoolVar(&o.CleanStart, "mqtt.clean-start", o.CleanStart, "Start with a clean session.")
	fs.BoolVar(&o.InsecureSkipVerify, "mqtt.insecure-skip-verify", o.InsecureSkipVerify, "If true, skips the TLS certificate verification.")
	fs.BoolVar(&o.Debug, "mqtt.debug", o.Debug, "Log MQTT library internals at debug level.")

	fs.StringVar(&o.TopicRoot, "mqtt.topic-root", o.TopicRoot, "Namespace prepended to every topic.")
}

// ToClientConfig converts the options into a client configuration.
func (o *MqttOptions) ToClientConfig() *mqtt.ClientConfig {
	return &mqtt.ClientConfig{
		BrokerURL:          o.Broker,
		Username:           o.Username,
		Password:           o.Password,
		ClientID:           o.ClientID,
		ProtocolVersion:    o.ProtocolVersion,
		KeepAlive:          uint16(o.KeepAlive.Seconds()),
		SessionExpiry:      o.SessionExpiry,
		ConnectTimeout:     o.ConnectTimeout,
		CleanStart:         o.CleanStart,
		InsecureSkipVerify: o.InsecureSkipVerify,
		Debug:              o.Debug,
	}
}

// Topics returns the topic builder for the configured root.
func (o *MqttOptions) Topics() *topic.TopicBuilder {
	return topic.NewTopicBuilder(o.TopicRoot)
}
