package app

import (
	"context"
	"fmt"

	"github.com/autopeer-io/scootshare/cmd/scoot-terminal/app/options"
	"github.com/autopeer-io/scootshare/pkg/app"
)

const (
	commandName = "scoot-terminal"
	commandDesc = `The scoot terminal is the interactive front end of the rental
system. Users rent and return the scooter, admins inspect and service it.`
)

func NewApp() *app.App {
	opts := options.NewTerminalOptions()
	application := app.NewApp(
		commandName,
		"Launch the interactive rental terminal",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.TerminalOptions) app.RunFunc {
	return func(ctx context.Context) error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		console, err := cfg.NewConsole()
		if err != nil {
			return fmt.Errorf("failed to create terminal: %w", err)
		}

		return console.Run(ctx)
	}
}
