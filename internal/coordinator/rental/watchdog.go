package rental

import (
	"sync"
	"time"

	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	"github.com/autopeer-io/scootshare/pkg/log"
)

// Phase names a handshake awaiting a vehicle acknowledgement.
type Phase string

const (
	PhaseUnlock Phase = "unlock"
	PhaseLock   Phase = "lock"
)

// Watchdog warns when a vehicle acknowledgement does not arrive in time.
// It never changes the rental state; a late acknowledgement is still applied.
type Watchdog struct {
	timeout time.Duration
	logger  log.Logger

	mu     sync.Mutex
	timers map[Phase]*time.Timer
}

// NewWatchdog returns a watchdog, or nil when timeout is zero. A nil
// watchdog ignores every call.
func NewWatchdog(timeout time.Duration, logger log.Logger) *Watchdog {
	if timeout <= 0 {
		return nil
	}
	return &Watchdog{
		timeout: timeout,
		logger:  logger,
		timers:  make(map[Phase]*time.Timer),
	}
}

// Arm starts waiting for the acknowledgement of phase.
func (w *Watchdog) Arm(phase Phase) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[phase]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.timeout, func() {
		w.mu.Lock()
		current := w.timers[phase] == t
		if current {
			delete(w.timers, phase)
		}
		w.mu.Unlock()
		if !current {
			return
		}
		metrics.HandshakeTimeouts.WithLabelValues(string(phase)).Inc()
		w.logger.Warn("Vehicle acknowledgement overdue", "phase", phase, "timeout", w.timeout.String())
	})
	w.timers[phase] = t
}

// Disarm stops waiting for phase.
func (w *Watchdog) Disarm(phase Phase) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[phase]; ok {
		t.Stop()
		delete(w.timers, phase)
	}
}

// Stop disarms every phase.
func (w *Watchdog) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	for phase, t := range w.timers {
		t.Stop()
		delete(w.timers, phase)
	}
}
