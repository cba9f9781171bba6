package app

import (
	"github.com/autopeer-io/scootshare/pkg/log"
)

// NamedFlagSetOptions is implemented by the option set of every command.
type NamedFlagSetOptions interface {
	// Flags returns the command's flags grouped by section.
	Flags() NamedFlagSets

	// Complete fills in fields derived from other fields.
	Complete() error

	// Validate reports every invalid option at once.
	Validate() error
}

// LoggerOptions is implemented by option sets that carry a log section.
// When present, the logger is initialised before the run function starts.
type LoggerOptions interface {
	LogOptions() *log.Options
}
