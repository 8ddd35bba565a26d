package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 10 * time.Second

type Publisher interface {
	Publish(ctx context.Context, event MaterialEvent) error
	Close() error
}

type KafkaProducer struct {
	writer *kafka.Writer
	log    *logrus.Logger
}

// NewKafkaProducer builds a writer for a comma separated broker list.
func NewKafkaProducer(brokers, topic string, logger *logrus.Logger) (*KafkaProducer, error) {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaProducer{writer: writer, log: logger}, nil
}

// Publish keys messages by SKU so events for one material stay ordered.
func (p *KafkaProducer) Publish(ctx context.Context, event MaterialEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.log.Errorf("Events: Failed to marshal %s event: %v", event.Type, err)
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.SKU),
		Value: eventBytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.WithFields(logrus.Fields{
			"event_id":   event.EventID,
			"event_type": event.Type,
		}).Errorf("Events: Failed to publish message: %v", err)
		return err
	}

	p.log.WithFields(logrus.Fields{
		"event_id":    event.EventID,
		"event_type":  event.Type,
		"material_id": event.MaterialID,
	}).Info("Events: Event published successfully")
	return nil
}

func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

type noopPublisher struct{}

// NewNoop returns a publisher that drops every event.
func NewNoop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, MaterialEvent) error { return nil }
func (noopPublisher) Close() error                                { return nil }
