package fsm

import (
	"context"
	"errors"
	"testing"

	"github.com/looplab/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errGuard = errors.New("guard failed")

func newDoor(allowOpen *bool, ringErr error) *fsm.FSM {
	return fsm.NewFSM(
		"closed",
		fsm.Events{
			{Name: "open", Src: []string{"closed"}, Dst: "open"},
			{Name: "close", Src: []string{"open"}, Dst: "closed"},
			{Name: "ring", Src: []string{"closed"}, Dst: "closed"},
		},
		fsm.Callbacks{
			"before_open": func(_ context.Context, e *fsm.Event) {
				if !*allowOpen {
					e.Cancel(errGuard)
				}
			},
			"after_ring": WrapEvent(func(context.Context, *fsm.Event) error {
				return ringErr
			}),
		},
	)
}

func TestFire(t *testing.T) {
	allow := true
	door := newDoor(&allow, nil)

	require.NoError(t, Fire(context.Background(), door, "open"))
	assert.Equal(t, "open", door.Current())

	err := Fire(context.Background(), door, "ring")
	assert.True(t, IsRejected(err))
	assert.Equal(t, "open", door.Current())

	err = Fire(context.Background(), door, "knock")
	assert.True(t, IsRejected(err))
}

func TestFireSelfLoop(t *testing.T) {
	allow := true
	assert.NoError(t, Fire(context.Background(), newDoor(&allow, nil), "ring"))

	boom := errors.New("bell broken")
	assert.ErrorIs(t, Fire(context.Background(), newDoor(&allow, boom), "ring"), boom)
}

func TestCanceled(t *testing.T) {
	allow := false
	door := newDoor(&allow, nil)

	err := Fire(context.Background(), door, "open")
	reason, ok := Canceled(err)
	require.True(t, ok)
	assert.ErrorIs(t, reason, errGuard)
	assert.False(t, IsRejected(err))
	assert.Equal(t, "closed", door.Current())

	_, ok = Canceled(errors.New("other"))
	assert.False(t, ok)
}
