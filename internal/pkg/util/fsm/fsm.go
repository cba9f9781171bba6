package fsm

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// WrapEvent adapts a callback that returns an error. The error is stored on
// the event and surfaces as the result of FSM.Event.
func WrapEvent(fn func(ctx context.Context, event *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Err = err
		}
	}
}

// Fire triggers event on f. A self-loop is not an error: the callback error
// carried by fsm.NoTransitionError, if any, is returned instead.
func Fire(ctx context.Context, f *fsm.FSM, event string, args ...any) error {
	err := f.Event(ctx, event, args...)

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return noTransition.Err
	}
	return err
}

// IsRejected reports whether err means the event is not legal in the
// current state, or not defined at all.
func IsRejected(err error) bool {
	var invalid fsm.InvalidEventError
	var unknown fsm.UnknownEventError
	return errors.As(err, &invalid) || errors.As(err, &unknown)
}

// Canceled returns the reason a before-callback cancelled the transition.
func Canceled(err error) (error, bool) {
	var canceled fsm.CanceledError
	if errors.As(err, &canceled) {
		return canceled.Err, true
	}
	return nil, false
}
