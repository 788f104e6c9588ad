// Package kafka publishes relayed ledger events to a Kafka topic. The broker
// is an announcement channel only; the ledger never reads from it.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Sink produces ledger event payloads to a single topic, keyed by the event
// topic so per-topic ordering is preserved.
type Sink struct {
	client *kgo.Client
	topic  string
}

// NewSink connects to the brokers and ensures the topic exists.
func NewSink(ctx context.Context, brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create topic %q: %w", topic, err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("create topic %q: %w", topic, res.Err)
		}
	}

	return &Sink{client: client, topic: topic}, nil
}

// Publish produces one payload synchronously.
func (s *Sink) Publish(ctx context.Context, key string, payload []byte) error {
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(key),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce ledger event: %w", err)
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}
