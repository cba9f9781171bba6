package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerDefaults(t *testing.T) {
	o := NewBrokerOptions()
	require.NoError(t, o.Validate())
	assert.Equal(t, ":1883", o.Broker.Addr)
	assert.Equal(t, []string{"broker", "log"}, o.Flags().Order)
}

func TestBrokerValidationCombinesErrors(t *testing.T) {
	o := NewBrokerOptions()
	o.Broker.Addr = "nowhere"
	o.Broker.LogLevel = "chatty"
	assert.Error(t, o.Validate())
}
