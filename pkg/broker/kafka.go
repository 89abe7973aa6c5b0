// Package broker publishes domain events to Kafka.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/resor-app/resor/pkg/metrics"
)

var ErrDisabled = errors.New("broker: kafka disabled")

// Publisher sends a keyed JSON payload.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

type Client struct {
	Brokers []string
}

// NewClient parses a comma separated broker list. Blank entries are dropped.
func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

// NewWriter hashes on the message key so events of one order stay ordered.
func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// Producer returns a Publisher for topic, or ErrDisabled when no brokers
// are configured.
func (c *Client) Producer(topic string) (*Producer, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	return &Producer{w: c.NewWriter(topic), topic: topic}, nil
}

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w     messageWriter
	topic string
}

func (p *Producer) Publish(ctx context.Context, key string, payload any) error {
	err := PublishJSON(ctx, p.w, key, payload)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.EventsPublished.WithLabelValues(p.topic, status).Inc()
	return err
}

func (p *Producer) Close() error { return p.w.Close() }

func PublishJSON(ctx context.Context, writer messageWriter, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()})
}
