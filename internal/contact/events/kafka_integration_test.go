//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"contactbook/internal/contact/events"
	"contactbook/internal/platform/config"
	"contactbook/internal/platform/kafka"
	"contactbook/pkg/testutil/containers"
)

func TestKafkaPublisherRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := containers.GetManager().GetRedpanda(t)
	cfg := config.KafkaConfig{
		Brokers:           []string{broker.SeedBroker},
		Topic:             "contacts.events.test",
		Partitions:        1,
		ReplicationFactor: 1,
	}
	client, err := kafka.New(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	id := uuid.New()
	pub := events.NewKafkaPublisher(client)
	require.NoError(t, pub.Publish(ctx, events.NewEvent(events.ContactCreated, id, nil, "req-1", time.Now())))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.SeedBroker),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.NotEmpty(t, records)

	var got events.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, id.String(), got.ContactID)
	require.Equal(t, events.ContactCreated, got.Type)
	require.Equal(t, id.String(), string(records[0].Key))
}
