package mqtt_test

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/autopeer-io/scootshare/pkg/mqtt"
	"github.com/autopeer-io/scootshare/pkg/mqtt/broker"
)

// ExampleNewClient shows the usual client lifecycle against an embedded
// broker: start, await the connection, subscribe, publish, disconnect.
func ExampleNewClient() {
	b, err := broker.New("127.0.0.1:0", slog.LevelError)
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() { _ = b.Start(ctx) }()

	connect := func(id string) mqtt.Client {
		c, _ := mqtt.NewClient(&mqtt.ClientConfig{BrokerURL: b.URL(), ClientID: id, CleanStart: true})
		_ = c.Start(ctx)
		wait, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = c.AwaitConnection(wait)
		return c
	}
	vehicle := connect("example-vehicle")
	coordinator := connect("example-coordinator")

	received := make(chan string, 1)
	_ = coordinator.Subscribe(ctx, "scootshare/vehicle/+", 1, func(_ context.Context, topic string, payload []byte) {
		received <- topic + " " + string(payload)
	})

	_ = vehicle.Publish(ctx, "scootshare/vehicle/ack", 1, false, []byte("ack-open-request"))
	fmt.Println(<-received)

	vehicle.Disconnect(ctx)
	coordinator.Disconnect(ctx)
	// Output: scootshare/vehicle/ack ack-open-request
}
