package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/thep200/github-classnames/cfg"
	"github.com/thep200/github-classnames/pkg/log"
)

// Handler processes one message value.
type Handler func(ctx context.Context, value []byte) error

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer dispatches messages to handlers by message key.
type Consumer struct {
	Config   *cfg.Config
	Logger   log.Logger
	reader   MessageReader
	topic    string
	handlers map[string]Handler

	// RetryDelay is the pause after a failed read.
	RetryDelay time.Duration
}

func NewConsumer(config *cfg.Config, logger log.Logger, topic, groupID string) (*Consumer, error) {
	if len(config.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Kafka.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3,        // 10KB
		MaxBytes:       10e6,        // 10MB
		MaxWait:        time.Second, // Maximum amount of time to wait for new data
		StartOffset:    kafka.FirstOffset,
		RetentionTime:  7 * 24 * time.Hour,
		CommitInterval: time.Second,
	})

	return NewConsumerWithReader(config, logger, topic, reader), nil
}

func NewConsumerWithReader(config *cfg.Config, logger log.Logger, topic string, reader MessageReader) *Consumer {
	return &Consumer{
		Config:   config,
		Logger:   logger,
		reader:   reader,
		topic:    topic,
		handlers: make(map[string]Handler),

		RetryDelay: time.Second,
	}
}

func (c *Consumer) RegisterHandler(key string, handler Handler) {
	c.handlers[key] = handler
}

// Start reads until ctx is done. Handler errors are logged and the
// message is skipped.
func (c *Consumer) Start(ctx context.Context) error {
	c.Logger.Info(ctx, "Starting Kafka consumer for topic: %s", c.topic)

	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			c.Logger.Error(ctx, "Error reading message, retrying in %v: %v", c.RetryDelay, err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.RetryDelay):
			}
			continue
		}

		key := string(message.Key)
		handler, exists := c.handlers[key]
		if !exists {
			c.Logger.Warn(ctx, "No handler registered for message with key: %s", key)
			continue
		}
		if err := handler(ctx, message.Value); err != nil {
			c.Logger.Error(ctx, "Error handling message with key %s: %v", key, err)
			continue
		}
		c.Logger.Debug(ctx, "Processed message with key: %s", key)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
