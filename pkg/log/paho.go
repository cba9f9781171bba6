package log

import (
	"fmt"
	"strings"
)

// PahoLogger adapts a Logger to the Println/Printf interface shared by the
// paho.golang and paho.mqtt.golang debug hooks. Output is logged at debug level.
type PahoLogger struct {
	l Logger
}

// NewPahoLogger returns a paho debug logger writing through the global logger
// under the given name.
func NewPahoLogger(name string) *PahoLogger {
	return &PahoLogger{l: WithName(name)}
}

func (p *PahoLogger) Println(v ...any) {
	p.l.Debug(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (p *PahoLogger) Printf(format string, v ...any) {
	p.l.Debug(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}
