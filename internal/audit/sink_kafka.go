package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

const defaultTopic = "foncier.audit"

// KafkaSink produces audit events to Kafka for downstream compliance
// consumers. The worker is the only producer path; approvals never touch the
// broker directly.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects a franz-go producer. Returns nil if brokers is empty
// (Kafka not configured; the trail is still persisted by the store).
func NewKafkaSink(brokers string, topic string) (*KafkaSink, error) {
	if brokers == "" {
		return nil, nil
	}
	if topic == "" {
		topic = defaultTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return &KafkaSink{client: client, topic: topic}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		// Key by transaction so one transfer's events stay ordered.
		Key:   []byte(strconv.FormatInt(event.TransactionID, 10)),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() {
	s.client.Close()
}
