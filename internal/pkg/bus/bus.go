// Package bus connects a component to the MQTT broker. Messages received on
// registered topic roles are handed to a single-worker mailbox, so a
// component's handlers never run concurrently with each other.
package bus

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/autopeer-io/scootshare/internal/pkg/actor"
	"github.com/autopeer-io/scootshare/internal/pkg/metrics"
	"github.com/autopeer-io/scootshare/internal/protocol"
	"github.com/autopeer-io/scootshare/pkg/log"
	"github.com/autopeer-io/scootshare/pkg/mqtt"
)

// MailboxSize bounds the number of received messages waiting for the worker.
const MailboxSize = 256

// HandlerFunc processes one payload received on a topic role.
type HandlerFunc func(ctx context.Context, payload []byte) error

// Sender publishes on topic roles.
type Sender interface {
	Send(ctx context.Context, role protocol.Role, payload []byte) error
	SendCommand(ctx context.Context, role protocol.Role, cmd protocol.Command) error
	SendProto(ctx context.Context, role protocol.Role, msg proto.Message) error
}

// Bus is the MQTT attachment of one component.
type Bus struct {
	component string
	qos       int

	mc     mqtt.Client
	topics protocol.Topics
	box    *actor.Mailbox
	routes map[protocol.Role]HandlerFunc
	logger log.Logger
}

var _ Sender = (*Bus)(nil)

// New creates a Bus for component. Register handlers before calling Start.
func New(component string, client mqtt.Client, topics protocol.Topics, qos int) *Bus {
	return &Bus{
		component: component,
		qos:       qos,
		mc:        client,
		topics:    topics,
		box:       actor.New(MailboxSize),
		routes:    make(map[protocol.Role]HandlerFunc),
		logger:    log.WithName(component).WithValues("component", "bus"),
	}
}

// Register routes messages received on role to handler.
func (b *Bus) Register(role protocol.Role, handler HandlerFunc) error {
	if role.Segment() == "" {
		return fmt.Errorf("unmapped role: %s", role)
	}
	if _, ok := b.routes[role]; ok {
		return fmt.Errorf("role %s already has a handler", role)
	}
	b.routes[role] = handler
	return nil
}

// Start connects to the broker and subscribes every registered role.
func (b *Bus) Start(ctx context.Context) error {
	if err := b.mc.Start(ctx); err != nil {
		return err
	}

	if err := b.mc.AwaitConnection(ctx); err != nil {
		return err
	}
	metrics.BusConnected.WithLabelValues(b.component).Set(1)

	for role, handler := range b.routes {
		topic := b.topics.Of(role)
		err := b.mc.Subscribe(ctx, topic, b.qos, b.deliver(role, handler))
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}

	return nil
}

// deliver queues the payload on the mailbox. It runs on the client's
// delivery path, so it only blocks while the mailbox is full.
func (b *Bus) deliver(role protocol.Role, handler HandlerFunc) mqtt.MessageHandler {
	return func(ctx context.Context, topic string, payload []byte) {
		b.logger.Debug("Message received", "topic", topic, "payload", string(payload))
		err := b.box.Submit(ctx, func(ctx context.Context) {
			if err := handler(ctx, payload); err != nil {
				b.logger.Error(err, "Handler execution failed", "topic", topic, "role", role)
			}
		})
		if err != nil {
			b.logger.Error(err, "Dropping message", "topic", topic)
		}
	}
}

// Run processes received messages and submitted tasks until ctx is done.
func (b *Bus) Run(ctx context.Context) error {
	return b.box.Run(ctx)
}

// Submit runs fn on the component's worker.
func (b *Bus) Submit(ctx context.Context, fn actor.Task) error {
	return b.box.Submit(ctx, fn)
}

// Call runs fn on the component's worker and waits for the result.
func (b *Bus) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.box.Call(ctx, fn)
}

func (b *Bus) Send(ctx context.Context, role protocol.Role, payload []byte) error {
	if role.Segment() == "" {
		return fmt.Errorf("unmapped role: %s", role)
	}
	topic := b.topics.Of(role)
	err := b.mc.Publish(ctx, topic, b.qos, false, payload)
	metrics.MessagesPublished.WithLabelValues(b.component, string(role), metrics.Outcome(err == nil, "success", "failed")).Inc()
	if err != nil {
		return fmt.Errorf("publish %q to %s: %w", payload, topic, err)
	}
	b.logger.Debug("Message published", "topic", topic, "payload", string(payload))
	return nil
}

func (b *Bus) SendCommand(ctx context.Context, role protocol.Role, cmd protocol.Command) error {
	return b.Send(ctx, role, cmd.Bytes())
}

func (b *Bus) SendProto(ctx context.Context, role protocol.Role, msg proto.Message) error {
	payload, err := protojson.Marshal(msg)
	if err != nil {
		return err
	}
	return b.Send(ctx, role, payload)
}

// IsConnected reports the broker connection and refreshes the connectivity gauge.
func (b *Bus) IsConnected() bool {
	ok := b.mc.IsConnected()
	metrics.BusConnected.WithLabelValues(b.component).Set(metrics.Bool(ok))
	return ok
}

// Topics returns the topic table.
func (b *Bus) Topics() protocol.Topics {
	return b.topics
}

// Stop disconnects from the broker.
func (b *Bus) Stop() {
	b.logger.Info("Disconnecting MQTT client...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.mc.Disconnect(ctx)
	metrics.BusConnected.WithLabelValues(b.component).Set(0)
}
