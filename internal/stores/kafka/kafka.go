// Package kafka publishes order lifecycle events. The producer is optional: the
// service runs without it when no broker is configured.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const TopicOrderEvents = "order-events"

type Conf struct {
	client *kgo.Client
}

func NewConf(host string) (*Conf, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(host),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	return &Conf{client: client}, nil
}

// OrderEvent is the payload emitted after a successful order mutation.
type OrderEvent struct {
	OrderID string    `json:"order_id"`
	Action  string    `json:"action"`
	At      time.Time `json:"at"`
}

// PublishOrderEvent produces a single event and waits for the broker ack.
func (c *Conf) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling order event: %w", err)
	}

	record := &kgo.Record{
		Topic: TopicOrderEvents,
		Key:   []byte(event.OrderID),
		Value: value,
	}
	if err := c.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("producing order event: %w", err)
	}
	return nil
}

func (c *Conf) Close() {
	c.client.Close()
}
