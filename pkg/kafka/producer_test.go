package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/clubnotify/pkg/eventbus"
	"github.com/dmitrymomot/clubnotify/pkg/kafka"
	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/notifications"
)

type recordingWriter struct {
	mu     sync.Mutex
	msgs   []segkafka.Message
	err    error
	closed int
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed++
	return nil
}

func TestNewProducer_Validation(t *testing.T) {
	_, err := kafka.NewProducer(kafka.Config{Brokers: []string{"localhost:9092"}})
	require.ErrorIs(t, err, kafka.ErrNoTopic)

	_, err = kafka.NewProducer(kafka.Config{Topic: "t"})
	require.ErrorIs(t, err, kafka.ErrNoBrokers)

	p, err := kafka.NewProducer(kafka.Config{Topic: "t", Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestProducer_Write(t *testing.T) {
	w := &recordingWriter{}
	p, err := kafka.NewProducer(kafka.Config{Topic: "notifications.created"},
		kafka.WithWriter(w), kafka.WithLogger(logger.Discard()))
	require.NoError(t, err)

	require.NoError(t, p.Write(context.Background(), "user-1", []byte(`{"a":1}`)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "user-1", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"a":1}`, string(w.msgs[0].Value))

	t.Run("writer failure", func(t *testing.T) {
		w.err = errors.New("leader not available")
		err := p.Write(context.Background(), "user-1", nil)
		require.ErrorIs(t, err, kafka.ErrWriteFailed)
		w.err = nil
	})

	t.Run("closed producer", func(t *testing.T) {
		require.NoError(t, p.Close())
		require.NoError(t, p.Close())
		assert.Equal(t, 1, w.closed)
		require.ErrorIs(t, p.Write(context.Background(), "k", nil), kafka.ErrProducerDone)
	})
}

func TestProducer_ExportsCreatedNotifications(t *testing.T) {
	w := &recordingWriter{}
	p, err := kafka.NewProducer(kafka.Config{Topic: "notifications.created"},
		kafka.WithWriter(w), kafka.WithLogger(logger.Discard()))
	require.NoError(t, err)

	bus := eventbus.New(eventbus.WithSync(), eventbus.WithLogger(logger.Discard()))
	notifications.NewExporter(p).Register(bus)

	n := notifications.Notification{
		ID:        7,
		UserID:    uuid.New(),
		Category:  notifications.CategoryClubJoin,
		Content:   "Dana joined Chess Club",
		CreatedAt: time.UnixMilli(1_700_000_000_123).UTC(),
	}
	bus.Publish(context.Background(), notifications.NotificationCreated{Notification: n})

	require.Len(t, w.msgs, 1)
	assert.Equal(t, n.UserID.String(), string(w.msgs[0].Key))

	var rec notifications.ExportRecord
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &rec))
	assert.Equal(t, "CLUB_JOIN_7_1700000000123", rec.EventID)
	assert.Equal(t, n.Content, rec.Notification.Content)
}
