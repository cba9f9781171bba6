package options

import (
	"go.uber.org/multierr"

	"github.com/autopeer-io/scootshare/pkg/app"
	"github.com/autopeer-io/scootshare/pkg/log"
	"github.com/autopeer-io/scootshare/pkg/options"
)

type BrokerOptions struct {
	Broker *options.BrokerOptions `json:"broker" mapstructure:"broker"`
	Log    *log.Options           `json:"log" mapstructure:"log"`
}

var (
	_ app.NamedFlagSetOptions = (*BrokerOptions)(nil)
	_ app.LoggerOptions       = (*BrokerOptions)(nil)
)

func NewBrokerOptions() *BrokerOptions {
	return &BrokerOptions{
		Broker: options.NewBrokerOptions(),
		Log:    log.NewOptions(),
	}
}

func (o *BrokerOptions) Flags() app.NamedFlagSets {
	fss := app.NamedFlagSets{}
	o.Broker.AddFlags(fss.FlagSet("broker"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *BrokerOptions) Complete() error {
	return nil
}

func (o *BrokerOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.Broker.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return multierr.Combine(errs...)
}

func (o *BrokerOptions) LogOptions() *log.Options {
	return o.Log
}
