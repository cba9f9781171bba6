package mqtt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)

	_, err = NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883", ProtocolVersion: 3})
	assert.Error(t, err)

	c, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883", ProtocolVersion: ProtocolV311})
	require.NoError(t, err)
	assert.IsType(t, &v311Client{}, c)

	cfg := &ClientConfig{BrokerURL: "tcp://localhost:1883"}
	c, err = NewClient(cfg)
	require.NoError(t, err)
	assert.IsType(t, &pahoClient{}, c)
	assert.Equal(t, ProtocolV5, cfg.ProtocolVersion)
	assert.Contains(t, cfg.ClientID, "scootshare-")
	assert.False(t, c.IsConnected())
}

func TestClientsRequireStart(t *testing.T) {
	ctx := context.Background()
	for _, version := range []int{ProtocolV5, ProtocolV311} {
		c, err := NewClient(&ClientConfig{BrokerURL: "tcp://localhost:1883", ProtocolVersion: version})
		require.NoError(t, err)

		assert.ErrorIs(t, c.Publish(ctx, "t", 1, false, nil), ErrNotStarted)
		assert.ErrorIs(t, c.Subscribe(ctx, "t", 1, nil), ErrNotStarted)
		assert.ErrorIs(t, c.Unsubscribe(ctx, "t"), ErrNotStarted)
		assert.ErrorIs(t, c.AwaitConnection(ctx), ErrNotStarted)
	}
}
