package mqtt

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"scootshare/user/command", "scootshare/user/command", true},
		{"scootshare/user/command", "scootshare/user/ack", false},
		{"scootshare/+/command", "scootshare/vehicle/command", true},
		{"scootshare/+/command", "scootshare/vehicle/ack", false},
		{"scootshare/#", "scootshare/vehicle/state", true},
		{"scootshare/vehicle/#", "scootshare/user/ack", false},
		{"scootshare/+", "scootshare/vehicle/state", false},
		{"scootshare/vehicle/state/+", "scootshare/vehicle/state", false},
	}

	for _, tt := range tests {
		t.Run(tt.filter+"~"+tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, topicsMatch(tt.filter, tt.topic))
		})
	}
}

func TestTopicFilter(t *testing.T) {
	assert.Equal(t, "scootshare/user/command", topicFilter("$share/coordinators/scootshare/user/command"))
	assert.Equal(t, "scootshare/user/command", topicFilter("scootshare/user/command"))
	assert.Equal(t, "$share/broken", topicFilter("$share/broken"))
}

func TestDispatch(t *testing.T) {
	var subs sync.Map
	var got []string

	subs.Store("scootshare/vehicle/+", subscriptionEntry{
		topic: "scootshare/vehicle/+",
		handler: func(_ context.Context, topic string, payload []byte) {
			got = append(got, topic+"="+string(payload))
		},
	})

	assert.True(t, dispatch(&subs, "scootshare/vehicle/state", []byte("locked")))
	assert.False(t, dispatch(&subs, "scootshare/user/ack", []byte("login")))
	assert.Equal(t, []string{"scootshare/vehicle/state=locked"}, got)
}
