package mqtt

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	// ProtocolV311 selects MQTT 3.1.1 (paho.mqtt.golang).
	ProtocolV311 = 4
	// ProtocolV5 selects MQTT 5 (paho.golang autopaho).
	ProtocolV5 = 5
)

// ClientConfig holds the configuration for creating a new MQTT Client.
type ClientConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string

	// ProtocolVersion is ProtocolV5 (default) or ProtocolV311.
	ProtocolVersion int

	// KeepAlive in seconds. Default is 60.
	KeepAlive uint16

	// ConnectTimeout for the initial connection. Default is 5s.
	ConnectTimeout time.Duration

	// SessionExpiry in seconds (MQTT 5 only).
	SessionExpiry uint32

	// CleanStart indicates whether to start a clean session.
	CleanStart bool

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// Last will, published by the broker on unexpected disconnect.
	WillTopic   string
	WillPayload []byte
	WillQoS     byte
	WillRetain  bool

	// Debug routes the paho library's internal logging through pkg/log.
	Debug bool
}

// setDefaultConfig applies safe default values to the configuration.
func setDefaultConfig(cfg *ClientConfig) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = 60
	}

	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = ProtocolV5
	}

	if cfg.ClientID == "" {
		cfg.ClientID = "scootshare-" + uuid.NewString()
	}
}

// Validate checks if the configuration is valid.
func (c *ClientConfig) Validate() error {
	if c.BrokerURL == "" {
		return errors.New("broker url is required")
	}
	u, err := url.Parse(c.BrokerURL)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("broker url %q has no host", c.BrokerURL)
	}
	if c.ProtocolVersion != ProtocolV5 && c.ProtocolVersion != ProtocolV311 {
		return fmt.Errorf("unsupported mqtt protocol version %d", c.ProtocolVersion)
	}
	return nil
}

// NewClient creates a new MQTT client implementing the Client interface,
// backed by autopaho for MQTT 5 or paho.mqtt.golang for MQTT 3.1.1.
func NewClient(cfg *ClientConfig) (Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mqtt config is required")
	}

	setDefaultConfig(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mqtt config: %w", err)
	}

	if cfg.ProtocolVersion == ProtocolV311 {
		return newV311Client(cfg), nil
	}

	return &pahoClient{
		cfg: cfg,
	}, nil
}
