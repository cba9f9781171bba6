// Package mqtttest provides an embedded broker and connected clients for
// tests.
package mqtttest

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/autopeer-io/scootshare/pkg/mqtt"
	"github.com/autopeer-io/scootshare/pkg/mqtt/broker"
)

const connectTimeout = 5 * time.Second

// NewBroker starts a broker on a loopback port. It stops when the test ends.
func NewBroker(t testing.TB) *broker.Broker {
	t.Helper()
	b, err := broker.New("127.0.0.1:0", slog.LevelWarn)
	if err != nil {
		t.Fatalf("mqtttest: start broker: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Logf("mqtttest: broker stopped: %v", err)
		}
	})
	return b
}

// NewClient returns an MQTT 5 client for b that is not started yet.
func NewClient(t testing.TB, b *broker.Broker, id string) mqtt.Client {
	t.Helper()
	return NewClientVersion(t, b, id, mqtt.ProtocolV5)
}

// NewClientVersion is NewClient for a given protocol version.
func NewClientVersion(t testing.TB, b *broker.Broker, id string, version int) mqtt.Client {
	t.Helper()
	c, err := mqtt.NewClient(&mqtt.ClientConfig{
		BrokerURL:       b.URL(),
		ClientID:        fmt.Sprintf("%s-v%d", id, version),
		ProtocolVersion: version,
		CleanStart:      true,
		ConnectTimeout:  connectTimeout,
	})
	if err != nil {
		t.Fatalf("mqtttest: new client %s: %v", id, err)
	}
	return c
}

// Connect returns a started and connected client. It disconnects when the
// test ends.
func Connect(t testing.TB, b *broker.Broker, id string) mqtt.Client {
	t.Helper()
	return ConnectVersion(t, b, id, mqtt.ProtocolV5)
}

// ConnectVersion is Connect for a given protocol version.
func ConnectVersion(t testing.TB, b *broker.Broker, id string, version int) mqtt.Client {
	t.Helper()
	c := NewClientVersion(t, b, id, version)

	// The start context bounds the client's lifetime, not the dial.
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("mqtttest: start client %s: %v", id, err)
	}
	t.Cleanup(func() { c.Disconnect(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.AwaitConnection(ctx); err != nil {
		t.Fatalf("mqtttest: connect client %s: %v", id, err)
	}
	return c
}
