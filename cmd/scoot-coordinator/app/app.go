package app

import (
	"context"
	"fmt"

	"github.com/autopeer-io/scootshare/cmd/scoot-coordinator/app/options"
	"github.com/autopeer-io/scootshare/pkg/app"
)

const (
	commandName = "scoot-coordinator"
	commandDesc = `The scoot coordinator owns the rental session. It logs users and
admins in, takes payments, and drives the scooter through unlock and lock
handshakes over MQTT.`
)

func NewApp() *app.App {
	opts := options.NewCoordinatorOptions()
	application := app.NewApp(
		commandName,
		"Launch the scooter rental coordinator",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithWatchConfig(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.CoordinatorOptions) app.RunFunc {
	return func(ctx context.Context) error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		c, err := cfg.NewCoordinator()
		if err != nil {
			return fmt.Errorf("failed to create coordinator: %w", err)
		}

		return c.Run(ctx)
	}
}
