package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/autopeer-io/scootshare/pkg/log"
)

// RunFunc is the entry point of an application. ctx is cancelled on
// SIGINT or SIGTERM.
type RunFunc func(ctx context.Context) error

// App is the main structure of a cli application built on cobra.
type App struct {
	name        string
	shortDesc   string
	description string
	options     NamedFlagSetOptions
	runFunc     RunFunc
	noConfig    bool
	watchConfig bool
	args        cobra.PositionalArgs

	v   *viper.Viper
	cmd *cobra.Command
}

// Option configures an App.
type Option func(*App)

// WithOptions sets the option set bound to the command flags.
func WithOptions(opts NamedFlagSetOptions) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the function executed after options are validated.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

// WithDescription sets the long description of the command.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithNoConfig disables the --config flag.
func WithNoConfig() Option {
	return func(a *App) { a.noConfig = true }
}

// WithWatchConfig logs changes of the config file while the application runs.
func WithWatchConfig() Option {
	return func(a *App) { a.watchConfig = true }
}

// WithValidArgs sets the positional argument validator.
func WithValidArgs(args cobra.PositionalArgs) Option {
	return func(a *App) { a.args = args }
}

// WithDefaultValidArgs rejects any positional argument.
func WithDefaultValidArgs() Option {
	return func(a *App) {
		a.args = func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}
			return nil
		}
	}
}

// NewApp creates a new application instance based on the given name and options.
func NewApp(name string, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
		v:         viper.New(),
	}

	for _, o := range opts {
		o(a)
	}

	a.buildCommand()
	return a
}

// Command returns the underlying cobra command.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the command and exits the process on failure.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          a.args,
	}
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	cmd.Flags().SortFlags = true

	var fss NamedFlagSets
	if a.options != nil {
		fss = a.options.Flags()
	}
	if !a.noConfig {
		fss.FlagSet("global").StringP("config", "c", "", "Read configuration from the specified file (YAML, JSON or TOML).")
	}
	for _, name := range fss.Order {
		cmd.Flags().AddFlagSet(fss.FlagSets[name])
	}

	cmd.SetUsageFunc(func(cmd *cobra.Command) error {
		fmt.Fprintf(cmd.OutOrStderr(), "Usage:\n  %s\n", cmd.UseLine())
		PrintSections(cmd.OutOrStderr(), fss, 0)
		return nil
	})
	cmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		PrintSections(cmd.OutOrStdout(), fss, 0)
	})

	if a.runFunc != nil {
		cmd.RunE = a.runCommand
	}
	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, _ []string) error {
	if err := a.loadConfig(cmd); err != nil {
		return err
	}

	if a.options != nil {
		if err := a.v.Unmarshal(a.options); err != nil {
			return fmt.Errorf("failed to decode options: %w", err)
		}
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
		if lo, ok := a.options.(LoggerOptions); ok {
			log.Init(lo.LogOptions())
		}
	}
	defer func() { _ = log.Sync() }()

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		log.Warn("Failed to set GOMAXPROCS", "error", err.Error())
	}

	log.Info("Starting application", "name", a.name)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.runFunc(ctx)
}

// loadConfig binds flags and environment variables and reads the config file.
// Precedence: flag > environment > config file > flag default.
func (a *App) loadConfig(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	a.v.SetEnvPrefix(strings.ReplaceAll(strings.ToUpper(a.name), "-", "_"))
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if a.noConfig {
		return nil
	}
	file := a.v.GetString("config")
	if file == "" {
		return nil
	}

	a.v.SetConfigFile(file)
	if err := a.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file %q: %w", file, err)
	}

	if a.watchConfig {
		a.v.OnConfigChange(func(e fsnotify.Event) {
			log.Info("Config file changed, restart to apply", "file", e.Name, "op", e.Op.String())
		})
		a.v.WatchConfig()
	}
	return nil
}
