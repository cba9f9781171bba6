package options

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/pflag"
)

// IOptions is implemented by every option group.
type IOptions interface {
	// Validate reports every invalid field of the group.
	Validate() []error

	// AddFlags binds the group to fs. Flag names carry the group prefix,
	// e.g. "mqtt.broker", so they double as config file keys.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

// ValidateAddress checks that addr is a valid host:port pair.
func ValidateAddress(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%q is not in a valid format (host:port): %w", addr, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("%q is not a valid port", port)
	}
	return nil
}

// ValidateRate checks that a probability lies in [0, 1].
func ValidateRate(name string, rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("--%s must be within [0, 1], got %v", name, rate)
	}
	return nil
}
