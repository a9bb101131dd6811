// Package events publishes contact lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"contactbook/internal/contact/models"
)

// Type names a contact lifecycle event.
type Type string

const (
	ContactCreated Type = "contact.created"
	ContactUpdated Type = "contact.updated"
	ContactDeleted Type = "contact.deleted"
)

// Event is the payload written for every successful write.
type Event struct {
	Type       Type      `json:"type"`
	ContactID  string    `json:"contactId"`
	Name       string    `json:"name,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent builds an event for c. c may be nil for deletes.
func NewEvent(t Type, id models.ContactID, c *models.Contact, requestID string, now time.Time) Event {
	e := Event{Type: t, ContactID: id.String(), RequestID: requestID, OccurredAt: now}
	if c != nil {
		e.Name = c.Name
	}
	return e
}

// Publisher delivers contact events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// KafkaPublisher writes events to the client's default topic, keyed by contact
// ID so per-contact order is kept within a partition.
type KafkaPublisher struct {
	client *kgo.Client
}

func NewKafkaPublisher(client *kgo.Client) *KafkaPublisher {
	return &KafkaPublisher{client: client}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Key:   []byte(e.ContactID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", e.Type, err)
	}
	return nil
}

// LogPublisher writes events to the log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.InfoContext(ctx, "contact event",
		"type", string(e.Type),
		"contact_id", e.ContactID,
		"request_id", e.RequestID,
	)
	return nil
}
