package options

import (
	"os"

	"go.uber.org/multierr"

	"github.com/autopeer-io/scootshare/internal/terminal"
	"github.com/autopeer-io/scootshare/pkg/app"
	"github.com/autopeer-io/scootshare/pkg/log"
	"github.com/autopeer-io/scootshare/pkg/options"
)

type TerminalOptions struct {
	MqttOptions *options.MqttOptions `json:"mqtt" mapstructure:"mqtt"`
	Log         *log.Options         `json:"log" mapstructure:"log"`
}

var (
	_ app.NamedFlagSetOptions = (*TerminalOptions)(nil)
	_ app.LoggerOptions       = (*TerminalOptions)(nil)
)

func NewTerminalOptions() *TerminalOptions {
	o := &TerminalOptions{
		MqttOptions: options.NewMqttOptions(),
		Log:         log.NewOptions(),
	}
	// Keep the menus readable.
	o.Log.Level = "warn"
	return o
}

func (o *TerminalOptions) Flags() app.NamedFlagSets {
	fss := app.NamedFlagSets{}
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *TerminalOptions) Complete() error {
	return nil
}

func (o *TerminalOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return multierr.Combine(errs...)
}

func (o *TerminalOptions) LogOptions() *log.Options {
	return o.Log
}

func (o *TerminalOptions) Config() (*terminal.Config, error) {
	return &terminal.Config{
		MqttOptions: o.MqttOptions,
		Input:       os.Stdin,
		Output:      os.Stdout,
	}, nil
}
