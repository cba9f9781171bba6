package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	paho3 "github.com/eclipse/paho.mqtt.golang"

	"github.com/autopeer-io/scootshare/pkg/log"
)

// v311Client is the MQTT 3.1.1 implementation on top of paho.mqtt.golang.
// Incoming messages go through the default publish handler with ordered
// delivery, which gives the same sequential routing as the MQTT 5 client.
type v311Client struct {
	cfg    *ClientConfig
	client paho3.Client

	mu    sync.Mutex
	ready chan struct{} // closed while connected

	subscriptions sync.Map
}

func newV311Client(cfg *ClientConfig) *v311Client {
	return &v311Client{
		cfg:   cfg,
		ready: make(chan struct{}),
	}
}

func (c *v311Client) Start(ctx context.Context) error {
	opts := paho3.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(c.cfg.ClientID).
		SetUsername(c.cfg.Username).
		SetPassword(c.cfg.Password).
		SetProtocolVersion(ProtocolV311).
		SetKeepAlive(time.Duration(c.cfg.KeepAlive) * time.Second).
		SetConnectTimeout(c.cfg.ConnectTimeout).
		SetCleanSession(c.cfg.CleanStart).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(3 * time.Second).
		SetOrderMatters(true).
		SetTLSConfig(&tls.Config{InsecureSkipVerify: c.cfg.InsecureSkipVerify}).
		SetDefaultPublishHandler(c.router).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	if c.cfg.WillTopic != "" {
		opts.SetBinaryWill(c.cfg.WillTopic, c.cfg.WillPayload, c.cfg.WillQoS, c.cfg.WillRetain)
	}

	if c.cfg.Debug {
		paho3.DEBUG = log.NewPahoLogger("paho3")
	}
	paho3.ERROR = log.NewPahoLogger("paho3")

	log.Info("Starting MQTT client", "broker", c.cfg.BrokerURL, "clientID", c.cfg.ClientID, "protocol", "3.1.1")

	c.client = paho3.NewClient(opts)
	token := c.client.Connect()
	go func() {
		// With ConnectRetry the token only completes on success or Disconnect.
		<-token.Done()
		if err := token.Error(); err != nil {
			log.Error(err, "MQTT connect failed")
		}
	}()
	return nil
}

func (c *v311Client) Disconnect(ctx context.Context) {
	if c.client == nil {
		return
	}
	quiesce := uint(250)
	if deadline, ok := ctx.Deadline(); ok {
		if ms := time.Until(deadline).Milliseconds(); ms >= 0 && ms < int64(quiesce) {
			quiesce = uint(ms)
		}
	}
	c.client.Disconnect(quiesce)
	c.markDown()
	log.Info("MQTT client disconnected")
}

func (c *v311Client) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	if c.client == nil {
		return ErrNotStarted
	}
	return waitToken(ctx, c.client.Publish(topic, byte(qos), retain, payload))
}

func (c *v311Client) Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error {
	if c.client == nil {
		return ErrNotStarted
	}

	c.subscriptions.Store(topic, subscriptionEntry{
		topic:   topic,
		qos:     qos,
		handler: handler,
	})

	// Not connected yet: onConnect sends the subscription.
	if !c.client.IsConnectionOpen() {
		return nil
	}

	if err := waitToken(ctx, c.client.Subscribe(topic, byte(qos), nil)); err != nil {
		return fmt.Errorf("failed to send subscription packet: %w", err)
	}

	log.Info("Subscribed to topic", "topic", topic)
	return nil
}

func (c *v311Client) Unsubscribe(ctx context.Context, topic string) error {
	if c.client == nil {
		return ErrNotStarted
	}
	c.subscriptions.Delete(topic)
	if !c.client.IsConnectionOpen() {
		return nil
	}
	return waitToken(ctx, c.client.Unsubscribe(topic))
}

func (c *v311Client) AwaitConnection(ctx context.Context) error {
	if c.client == nil {
		return ErrNotStarted
	}
	c.mu.Lock()
	ready := c.ready
	c.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *v311Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnectionOpen()
}

func (c *v311Client) onConnect(client paho3.Client) {
	log.Info("MQTT connection established")

	c.subscriptions.Range(func(_, value any) bool {
		entry := value.(subscriptionEntry)
		token := client.Subscribe(entry.topic, byte(entry.qos), nil)
		go func() {
			// Waiting inline would block the paho connection goroutine.
			if err := waitToken(context.Background(), token); err != nil {
				log.Error(err, "Failed to re-subscribe", "topic", entry.topic)
			}
		}()
		return true
	})

	c.mu.Lock()
	select {
	case <-c.ready:
	default:
		close(c.ready)
	}
	c.mu.Unlock()
}

func (c *v311Client) onConnectionLost(_ paho3.Client, err error) {
	log.Error(err, "MQTT connection lost, reconnecting...")
	c.markDown()
}

func (c *v311Client) markDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.ready:
		c.ready = make(chan struct{})
	default:
	}
}

func (c *v311Client) router(_ paho3.Client, msg paho3.Message) {
	if !dispatch(&c.subscriptions, msg.Topic(), msg.Payload()) {
		log.Debug("Received message on unhandled topic", "topic", msg.Topic())
	}
}

func waitToken(ctx context.Context, token paho3.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
