package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/segmentio/kafka-go"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/notifications"
)

var _ notifications.Sink = (*Producer)(nil)

// MessageWriter is the subset of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes exported notification records to a topic.
type Producer struct {
	w      MessageWriter
	topic  string
	closed atomic.Bool
	logger *slog.Logger
}

// Option configures a Producer.
type Option func(*Producer)

// WithLogger sets the producer logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Producer) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithWriter replaces the kafka writer, mainly for tests.
func WithWriter(w MessageWriter) Option {
	return func(p *Producer) {
		p.w = w
	}
}

// NewProducer creates a producer for cfg.Topic with a hash balancer keyed
// by message key.
func NewProducer(cfg Config, opts ...Option) (*Producer, error) {
	if cfg.Topic == "" {
		return nil, ErrNoTopic
	}
	p := &Producer{topic: cfg.Topic, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.w == nil {
		if !cfg.Enabled() {
			return nil, ErrNoBrokers
		}
		p.w = &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           cfg.BatchTimeout,
			WriteTimeout:           cfg.WriteTimeout,
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: cfg.AutoCreate,
		}
	}
	p.logger = p.logger.With(logger.Component("kafka.producer"), slog.String("topic", cfg.Topic))
	return p, nil
}

// Write publishes payload under key.
func (p *Producer) Write(ctx context.Context, key string, payload []byte) error {
	if p.closed.Load() {
		return ErrProducerDone
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.logger.LogAttrs(ctx, slog.LevelError, "kafka write failed",
			slog.String("key", key),
			logger.Error(err),
		)
		return errors.Join(ErrWriteFailed, err)
	}
	p.logger.LogAttrs(ctx, slog.LevelDebug, "message published",
		slog.String("key", key),
		slog.Int("value_len", len(payload)),
	)
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.w.Close()
}
