package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*RentalOptions)(nil)

// RentalOptions configures the coordinator's rental decisions.
type RentalOptions struct {
	// PaymentAcceptRate is the probability that a payment is approved.
	PaymentAcceptRate float64 `json:"payment-accept-rate" mapstructure:"payment-accept-rate"`

	// PaymentSeed seeds the payment decision source. Zero picks a time-based seed.
	PaymentSeed int64 `json:"payment-seed" mapstructure:"payment-seed"`

	// AckTimeout arms a watchdog on unlock/lock handshakes. Zero disables it.
	AckTimeout time.Duration `json:"ack-timeout" mapstructure:"ack-timeout"`
}

// NewRentalOptions creates a RentalOptions object with default parameters.
func NewRentalOptions() *RentalOptions {
	return &RentalOptions{
		PaymentAcceptRate: 0.5,
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *RentalOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if err := ValidateRate("rental.payment-accept-rate", o.PaymentAcceptRate); err != nil {
		errors = append(errors, err)
	}
	if o.AckTimeout < 0 {
		errors = append(errors, fmt.Errorf("--rental.ack-timeout must not be negative"))
	}

	return errors
}

// AddFlags adds flags for RentalOptions to the specified FlagSet.
func (o *RentalOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.Float64Var(&o.PaymentAcceptRate, "rental.payment-accept-rate", o.PaymentAcceptRate, "Probability in [0, 1] that a payment is approved.")
	fs.Int64Var(&o.PaymentSeed, "rental.payment-seed", o.PaymentSeed, "Seed for payment decisions (0 = time based).")
	fs.DurationVar(&o.AckTimeout, "rental.ack-timeout", o.AckTimeout, "Warn when the vehicle does not acknowledge unlock/lock within this duration (0 = disabled).")
}
