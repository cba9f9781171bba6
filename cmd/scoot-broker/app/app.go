package app

import (
	"context"
	"fmt"

	"github.com/autopeer-io/scootshare/cmd/scoot-broker/app/options"
	"github.com/autopeer-io/scootshare/pkg/app"
	"github.com/autopeer-io/scootshare/pkg/mqtt/broker"
)

const (
	commandName = "scoot-broker"
	commandDesc = `The scoot broker is a self-contained MQTT broker for running the
rental system on one machine without installing one.`
)

func NewApp() *app.App {
	opts := options.NewBrokerOptions()
	application := app.NewApp(
		commandName,
		"Launch the embedded MQTT broker",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.BrokerOptions) app.RunFunc {
	return func(ctx context.Context) error {
		level, err := opts.Broker.Level()
		if err != nil {
			return err
		}

		b, err := broker.New(opts.Broker.Addr, level)
		if err != nil {
			return fmt.Errorf("failed to create broker: %w", err)
		}

		return b.Start(ctx)
	}
}
