package options

import (
	"go.uber.org/multierr"

	"github.com/autopeer-io/scootshare/internal/coordinator"
	"github.com/autopeer-io/scootshare/pkg/app"
	"github.com/autopeer-io/scootshare/pkg/log"
	"github.com/autopeer-io/scootshare/pkg/options"
)

type CoordinatorOptions struct {
	MqttOptions   *options.MqttOptions   `json:"mqtt" mapstructure:"mqtt"`
	HttpOptions   *options.HttpOptions   `json:"http" mapstructure:"http"`
	RentalOptions *options.RentalOptions `json:"rental" mapstructure:"rental"`
	Log           *log.Options           `json:"log" mapstructure:"log"`
}

var (
	_ app.NamedFlagSetOptions = (*CoordinatorOptions)(nil)
	_ app.LoggerOptions       = (*CoordinatorOptions)(nil)
)

func NewCoordinatorOptions() *CoordinatorOptions {
	return &CoordinatorOptions{
		MqttOptions:   options.NewMqttOptions(),
		HttpOptions:   options.NewHttpOptions(":8080"),
		RentalOptions: options.NewRentalOptions(),
		Log:           log.NewOptions(),
	}
}

func (o *CoordinatorOptions) Flags() app.NamedFlagSets {
	fss := app.NamedFlagSets{}
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.RentalOptions.AddFlags(fss.FlagSet("rental"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *CoordinatorOptions) Complete() error {
	return nil
}

func (o *CoordinatorOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.RentalOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return multierr.Combine(errs...)
}

func (o *CoordinatorOptions) LogOptions() *log.Options {
	return o.Log
}

func (o *CoordinatorOptions) Config() (*coordinator.Config, error) {
	return &coordinator.Config{
		MqttOptions:   o.MqttOptions,
		HttpOptions:   o.HttpOptions,
		RentalOptions: o.RentalOptions,
	}, nil
}
