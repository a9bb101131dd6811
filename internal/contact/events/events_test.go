package events

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactbook/internal/contact/models"
)

func TestNewEvent(t *testing.T) {
	id := uuid.New()
	now := time.Now()

	e := NewEvent(ContactCreated, id, &models.Contact{ID: id, Name: "Ann"}, "req-1", now)
	assert.Equal(t, ContactCreated, e.Type)
	assert.Equal(t, id.String(), e.ContactID)
	assert.Equal(t, "Ann", e.Name)
	assert.Equal(t, "req-1", e.RequestID)

	e = NewEvent(ContactDeleted, id, nil, "", now)
	assert.Empty(t, e.Name)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewTextHandler(&buf, nil)))

	id := uuid.New()
	require.NoError(t, p.Publish(context.Background(), NewEvent(ContactUpdated, id, nil, "req-9", time.Now())))

	assert.Contains(t, buf.String(), "type=contact.updated")
	assert.Contains(t, buf.String(), "contact_id="+id.String())
}
