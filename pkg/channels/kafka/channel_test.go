package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/operion-editor/pkg/channels/kafka"
	"github.com/dukex/operion-editor/pkg/eventbus"
	"github.com/dukex/operion-editor/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaTc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestCreateChannel_NoBrokers(t *testing.T) {
	tests := []struct {
		name    string
		brokers []string
	}{
		{name: "nil", brokers: nil},
		{name: "empty broker", brokers: []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := kafka.CreateChannel(watermill.NopLogger{}, tt.brokers, "operion-editor-test")
			require.ErrorIs(t, err, kafka.ErrNoBrokers)
		})
	}
}

func TestCreateChannel_PublishSubscribe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := kafkaTc.Run(ctx, "confluentinc/confluent-local:7.7.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_CREATE_TOPICS": "true",
	}))
	require.NoError(t, err)

	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate Kafka container: %v", err)
		}
	}()

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	publisher, subscriber, err := kafka.CreateChannel(watermill.NopLogger{}, brokers, "operion-editor-test")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(publisher, subscriber)
	defer func() { _ = bus.Close() }()

	received := make(chan *events.WorkflowSaved, 1)

	require.NoError(t, bus.Handle(events.WorkflowSavedEvent, func(_ context.Context, event eventbus.Event) error {
		select {
		case received <- event.(*events.WorkflowSaved):
		default:
		}

		return nil
	}))

	require.NoError(t, bus.Subscribe(ctx))

	// the consumer group starts at the newest offset, so publish until it has joined
	publish := func() {
		err := bus.Publish(ctx, "wf-1", events.WorkflowSaved{
			BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.WorkflowSavedEvent, WorkflowID: "wf-1"},
			Autosave:  true,
		})
		require.NoError(t, err)
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	publish()

	for {
		select {
		case event := <-received:
			assert.Equal(t, "wf-1", event.WorkflowID)
			assert.True(t, event.Autosave)

			return
		case <-ticker.C:
			publish()
		case <-ctx.Done():
			t.Fatal("workflow saved event was not delivered")
		}
	}
}
