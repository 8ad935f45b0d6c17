package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"nightwatcher/internal/config"

	"github.com/segmentio/kafka-go"
)

// kafkaEvent is the message body published for each notification.
type kafkaEvent struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// KafkaSink publishes notifications as events to a Kafka topic, keyed by
// chat ID, for downstream consumers.
type KafkaSink struct {
	writer *kafka.Writer
	mu     sync.Mutex
}

// NewKafkaSink creates a Kafka sink writing to topic on brokerAddress.
func NewKafkaSink(brokerAddress, topic string) *KafkaSink {
	slog.Info("kafka sink initialized", "broker", brokerAddress, "topic", topic)
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokerAddress),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (k *KafkaSink) Name() string { return "kafka" }

// Send publishes the notification as a JSON event.
func (k *KafkaSink) Send(ctx context.Context, chatID int64, text string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer == nil {
		return fmt.Errorf("%w: kafka sink closed", config.ErrNotificationFailed)
	}

	value, err := json.Marshal(kafkaEvent{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", config.ErrNotificationFailed, err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(chatID, 10)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("%w: kafka write: %v", config.ErrNotificationFailed, err)
	}

	slog.Debug("notification published", "sink", "kafka", "chatID", chatID)
	return nil
}

// Close flushes and closes the underlying writer.
func (k *KafkaSink) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer != nil {
		err := k.writer.Close()
		k.writer = nil
		return err
	}
	return nil
}
