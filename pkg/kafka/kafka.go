// Package kafka carries fulfillment events between order-board and the
// notification service. Events are keyed by order id.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrDisabled is returned by publishers that have no broker configured.
var ErrDisabled = errors.New("kafka disabled")

type Client struct {
	Brokers []string
}

// NewClient parses a comma separated broker list. An empty list leaves the
// client disabled.
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

// NewWriter hashes on the message key, so all events of one order land on
// the same partition. Notices arrive one at a time and are flushed without
// waiting for a batch to fill.
func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: writerBatchTimeout,
		WriteTimeout: writerTimeout,
	}
}

const (
	writerBatchTimeout = 10 * time.Millisecond
	writerTimeout      = 5 * time.Second
)

// NewReader joins groupID. A new group starts from the oldest retained
// event so no notification published before the first deploy is skipped.
func (c *Client) NewReader(topic, groupID string) *kafka.Reader {
	return kafka.NewReader(readerConfig(c.Brokers, topic, groupID))
}

func readerConfig(brokers []string, topic, groupID string) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	}
}

// MessageWriter is the part of *kafka.Writer used for publishing.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PublishJSON writes payload keyed by key. Events of one order share a key
// and therefore a partition, which keeps them ordered.
func PublishJSON(ctx context.Context, writer MessageWriter, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()})
}
