package options

import (
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"
)

var _ IOptions = (*BrokerOptions)(nil)

// BrokerOptions configures the embedded MQTT broker.
type BrokerOptions struct {
	// Addr is the TCP listen address.
	Addr string `json:"addr" mapstructure:"addr"`

	// LogLevel filters the broker's own log records.
	LogLevel string `json:"log-level" mapstructure:"log-level"`
}

// NewBrokerOptions listens on the standard MQTT port.
func NewBrokerOptions() *BrokerOptions {
	return &BrokerOptions{
		Addr:     ":1883",
		LogLevel: "info",
	}
}

// Level parses LogLevel.
func (o *BrokerOptions) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.LogLevel)); err != nil {
		return level, fmt.Errorf("broker.log-level: %w", err)
	}
	return level, nil
}

func (o *BrokerOptions) Validate() []error {
	errors := []error{}

	if err := ValidateAddress(o.Addr); err != nil {
		errors = append(errors, err)
	}
	if _, err := o.Level(); err != nil {
		errors = append(errors, err)
	}

	return errors
}

func (o *BrokerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Addr, "broker.addr", o.Addr, "Address the broker listens on for MQTT clients.")
	fs.StringVar(&o.LogLevel, "broker.log-level", o.LogLevel, "Broker log level: debug, info, warn or error.")
}
