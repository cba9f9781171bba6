package options

import (
	"go.uber.org/multierr"

	"github.com/autopeer-io/scootshare/internal/vehicle"
	"github.com/autopeer-io/scootshare/pkg/app"
	"github.com/autopeer-io/scootshare/pkg/log"
	"github.com/autopeer-io/scootshare/pkg/options"
)

type VehicleOptions struct {
	MqttOptions    *options.MqttOptions    `json:"mqtt" mapstructure:"mqtt"`
	HttpOptions    *options.HttpOptions    `json:"http" mapstructure:"http"`
	VehicleOptions *options.VehicleOptions `json:"vehicle" mapstructure:"vehicle"`
	Log            *log.Options            `json:"log" mapstructure:"log"`
}

var (
	_ app.NamedFlagSetOptions = (*VehicleOptions)(nil)
	_ app.LoggerOptions       = (*VehicleOptions)(nil)
)

func NewVehicleOptions() *VehicleOptions {
	return &VehicleOptions{
		MqttOptions:    options.NewMqttOptions(),
		HttpOptions:    options.NewHttpOptions(":8081"),
		VehicleOptions: options.NewVehicleOptions(),
		Log:            log.NewOptions(),
	}
}

func (o *VehicleOptions) Flags() app.NamedFlagSets {
	fss := app.NamedFlagSets{}
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.VehicleOptions.AddFlags(fss.FlagSet("vehicle"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *VehicleOptions) Complete() error {
	return nil
}

func (o *VehicleOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.VehicleOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return multierr.Combine(errs...)
}

func (o *VehicleOptions) LogOptions() *log.Options {
	return o.Log
}

func (o *VehicleOptions) Config() (*vehicle.Config, error) {
	return &vehicle.Config{
		MqttOptions:    o.MqttOptions,
		HttpOptions:    o.HttpOptions,
		VehicleOptions: o.VehicleOptions,
	}, nil
}
