package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mycurrency/internal/core/domain"
	"github.com/segmentio/kafka-go"
)

// FailoverPublisher announces provider registry rotations.
type FailoverPublisher interface {
	PublishFailover(ctx context.Context, event domain.FailoverEvent) error
	Close() error
}

// KafkaPublisher writes failover events as JSON to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 10 * time.Second,
		},
	}
}

func (k *KafkaPublisher) PublishFailover(ctx context.Context, event domain.FailoverEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode failover event: %w", err)
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Deactivated),
		Value: msg,
		Time:  event.OccurredAt,
	}); err != nil {
		return fmt.Errorf("failed to publish failover event: %w", err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// LogPublisher records failover events in the structured log. It is used when
// no brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (l *LogPublisher) PublishFailover(ctx context.Context, event domain.FailoverEvent) error {
	l.logger.InfoContext(ctx, "Provider failover",
		slog.String("event_id", event.EventID),
		slog.String("deactivated", event.Deactivated),
		slog.String("activated", event.Activated),
		slog.String("reason", event.Reason),
		slog.String("outcome", event.Outcome),
		slog.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

func (l *LogPublisher) Close() error { return nil }

// NewFailoverPublisher picks Kafka when brokers are configured and falls back to logging.
func NewFailoverPublisher(brokers []string, topic string, logger *slog.Logger) FailoverPublisher {
	if len(brokers) == 0 {
		return NewLogPublisher(logger)
	}
	return NewKafkaPublisher(brokers, topic)
}
