package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notesboard/cmd/internal/contract"

	"github.com/labstack/gommon/log"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the notifier relies on.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes verification messages to a topic consumed by the mailer.
type KafkaNotifier struct {
	writer  MessageWriter
	timeout time.Duration
}

func NewKafkaNotifier(brokers []string, topic string, timeout time.Duration) (*KafkaNotifier, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}

	for _, broker := range brokers {
		if err := createTopic(topic, broker); err != nil {
			return nil, err
		}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return NewKafkaNotifierWithWriter(writer, timeout), nil
}

func NewKafkaNotifierWithWriter(writer MessageWriter, timeout time.Duration) *KafkaNotifier {
	return &KafkaNotifier{writer: writer, timeout: timeout}
}

// Notify blocks until the broker acknowledged the message, so a nil error means it was handed off.
func (k *KafkaNotifier) Notify(ctx context.Context, msg *contract.VerificationMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode verification message: %w", err)
	}

	if k.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.timeout)
		defer cancel()
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Email),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish verification message: %w", err)
	}
	return nil
}

func (k *KafkaNotifier) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}

func createTopic(topic, broker string) error {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return fmt.Errorf("failed to connect to kafka broker: %w", err)
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		if errors.Is(err, kafka.TopicAlreadyExists) {
			log.Debugf("kafka topic '%s' already exists", topic)
			return nil
		}
		return fmt.Errorf("failed to create kafka topic '%s': %w", topic, err)
	}

	log.Infof("kafka topic '%s' created successfully", topic)
	return nil
}
