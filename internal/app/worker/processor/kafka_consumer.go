package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"berrymarket/internal/app/reviews/entity"
	"berrymarket/internal/app/reviews/service"
	"berrymarket/pkg/logger"
	"berrymarket/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaConsumer обрабатывает события из топика review_events.
// Каждое событие запускает пересчёт агрегата товара. Offset коммитится
// только после успешного ресинка: если запись агрегата не удалась,
// событие будет доставлено повторно. Повторный пересчёт безопасен,
// потому что ресинк идемпотентен
type KafkaConsumer struct {
	reader      *kafka.Reader
	statsSyncer service.StatsSyncer
	topic       string
	groupID     string
	stopChan    chan struct{}
	doneChan    chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	statsSyncer service.StatsSyncer,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:      reader,
		statsSyncer: statsSyncer,
		topic:       topic,
		groupID:     groupID,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer...")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	logger.Info().Msg("Kafka consumer stopped")
}

// consume читает и обрабатывает сообщения из Kafka
func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}

				// Логируем ошибку и продолжаем
				logger.Warn().Err(err).Msg("Error fetching message")
				time.Sleep(time.Second)
				continue
			}

			if err := c.processMessage(ctx, message); err != nil {
				logger.Error().
					Err(err).
					Int64("offset", message.Offset).
					Msg("Error processing message")
				// Не коммитим offset при ошибке - сообщение будет повторно обработано
				continue
			}

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Error().Err(err).Msg("Error committing message")
			}
		}
	}
}

// processMessage обрабатывает одно событие отзыва: пересчитывает
// агрегат товара, на который ссылается событие
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.ReviewEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal review event: %w", err)
	}

	logger.Debug().
		Str("event_type", event.EventType).
		Str("review_id", event.ReviewID).
		Str("product_id", event.ProductID).
		Int64("offset", message.Offset).
		Msg("Received review event")

	// Событие без товара пересчитывать нечего, пропускаем
	if event.ProductID == "" {
		logger.Warn().Str("review_id", event.ReviewID).Msg("Review event has no product id, skipping")
		return nil
	}

	if err := c.statsSyncer.Resync(ctx, event.ProductID); err != nil {
		return fmt.Errorf("failed to resync product %s: %w", event.ProductID, err)
	}

	metrics.RecordKafkaMessageConsumed("resync-worker", c.topic, c.groupID)

	return nil
}

// GetStats возвращает статистику consumer
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
