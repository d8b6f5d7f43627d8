package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrymomot/clubnotify/pkg/eventbus"
)

// Sink receives exported notification records, e.g. a message broker topic.
type Sink interface {
	Write(ctx context.Context, key string, payload []byte) error
}

// ExportRecord is the wire shape of an exported notification.
type ExportRecord struct {
	Event        string       `json:"event"`
	EventID      string       `json:"event_id"`
	OccurredAt   time.Time    `json:"occurred_at"`
	Notification Notification `json:"notification"`
}

// Exporter forwards committed notifications to a Sink for downstream consumers
// such as analytics. Records are keyed by user id so one user's records stay
// ordered within a partition.
type Exporter struct {
	sink Sink
	now  func() time.Time
}

// NewExporter creates an exporter writing to sink.
func NewExporter(sink Sink) *Exporter {
	return &Exporter{sink: sink, now: time.Now}
}

// Register subscribes the exporter to bus.
func (e *Exporter) Register(bus *eventbus.Bus) {
	eventbus.Subscribe(bus, e.HandleCreated)
}

// HandleCreated writes one record per created notification.
func (e *Exporter) HandleCreated(ctx context.Context, ev NotificationCreated) error {
	payload, err := json.Marshal(ExportRecord{
		Event:        ev.EventName(),
		EventID:      EventID(ev.Notification),
		OccurredAt:   e.now().UTC(),
		Notification: ev.Notification,
	})
	if err != nil {
		return fmt.Errorf("marshal export record: %w", err)
	}
	return e.sink.Write(ctx, ev.Notification.UserID.String(), payload)
}
