// Package broker embeds an MQTT broker speaking MQTT 5 and 3.1.1, for local
// runs without an external broker and for tests.
package broker

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"

	"github.com/autopeer-io/scootshare/pkg/log"
)

// Broker is an embedded broker bound to a TCP listener.
type Broker struct {
	server *mochi.Server
	ln     net.Listener
}

// New binds addr and prepares the broker. Every client is allowed in.
// Use Start to serve.
func New(addr string, logLevel slog.Level) (*Broker, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	server := mochi.New(&mochi.Options{
		InlineClient: false,
		Logger:       log.NewSlogLogger("broker", logLevel),
	})
	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		_ = ln.Close()
		return nil, err
	}
	if err := server.AddListener(listeners.NewNet("tcp", ln)); err != nil {
		_ = ln.Close()
		return nil, err
	}

	return &Broker{server: server, ln: ln}, nil
}

// Addr returns the bound address, useful when New was given port 0.
func (b *Broker) Addr() string {
	return b.ln.Addr().String()
}

// URL returns the broker URL clients connect to.
func (b *Broker) URL() string {
	return "tcp://" + b.Addr()
}

// Start serves clients until ctx is done, then closes every connection.
func (b *Broker) Start(ctx context.Context) error {
	if err := b.server.Serve(); err != nil {
		return err
	}
	log.Info("MQTT broker listening", "addr", b.Addr())

	<-ctx.Done()
	log.Info("MQTT broker shutting down")
	return b.server.Close()
}
