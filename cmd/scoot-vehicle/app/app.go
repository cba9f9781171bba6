package app

import (
	"context"
	"fmt"

	"github.com/autopeer-io/scootshare/cmd/scoot-vehicle/app/options"
	"github.com/autopeer-io/scootshare/pkg/app"
)

const (
	commandName = "scoot-vehicle"
	commandDesc = `The scoot vehicle runs on the scooter. It locks and unlocks on the
coordinator's command, checks the parking spot before locking, and reports
its sensor board on request.`
)

func NewApp() *app.App {
	opts := options.NewVehicleOptions()
	application := app.NewApp(
		commandName,
		"Launch a scooter vehicle controller",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.VehicleOptions) app.RunFunc {
	return func(ctx context.Context) error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		v, err := cfg.NewVehicle()
		if err != nil {
			return fmt.Errorf("failed to create vehicle: %w", err)
		}

		return v.Run(ctx)
	}
}
