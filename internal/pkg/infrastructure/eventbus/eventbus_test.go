package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestPublishDeliversInOrder(t *testing.T) {
	is, bus := testSetup(t)

	received := make(chan string, 10)
	bus.Subscribe("entity/e1/state", func(ctx context.Context, msg Message) {
		received <- msg.Payload["value"].(string)
	})

	bus.Publish("entity/e1/state", map[string]any{"value": "A"})
	bus.Publish("entity/e1/state", map[string]any{"value": "B"})
	bus.Publish("entity/e1/state", map[string]any{"value": "C"})

	is.Equal(waitFor(t, received), "A")
	is.Equal(waitFor(t, received), "B")
	is.Equal(waitFor(t, received), "C")
}

func TestDeliversToAllSubscribers(t *testing.T) {
	is, bus := testSetup(t)

	first := make(chan string, 1)
	second := make(chan string, 1)

	bus.Subscribe("telemetry", func(ctx context.Context, msg Message) {
		first <- msg.Payload["field"].(string)
	})
	bus.Subscribe("telemetry", func(ctx context.Context, msg Message) {
		second <- msg.Payload["field"].(string)
	})

	bus.Publish("telemetry", map[string]any{"field": "co2"})

	is.Equal(waitFor(t, first), "co2")
	is.Equal(waitFor(t, second), "co2")
}

func TestSubscriberPanicDoesNotAffectOthers(t *testing.T) {
	is, bus := testSetup(t)

	received := make(chan string, 2)
	errors := make(chan Message, 2)

	bus.Subscribe("entity/e1/state", func(ctx context.Context, msg Message) {
		panic("boom")
	})
	bus.Subscribe("entity/e1/state", func(ctx context.Context, msg Message) {
		received <- msg.Payload["value"].(string)
	})
	bus.Subscribe(TopicError, func(ctx context.Context, msg Message) {
		errors <- msg
	})

	bus.Publish("entity/e1/state", map[string]any{"value": "A"})

	is.Equal(waitFor(t, received), "A")

	errMsg := <-errors
	is.Equal(errMsg.Payload["source"], "entity/e1/state")

	select {
	case <-errors:
		t.Fatal("expected exactly one error event")
	case <-time.After(100 * time.Millisecond):
	}

	bus.Publish("entity/e1/state", map[string]any{"value": "B"})
	is.Equal(waitFor(t, received), "B")
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	is, bus := testSetup(t)

	received := make(chan string, 2)
	other := make(chan string, 2)

	unsubscribe := bus.Subscribe("telemetry", func(ctx context.Context, msg Message) {
		received <- msg.Payload["field"].(string)
	})
	bus.Subscribe("telemetry", func(ctx context.Context, msg Message) {
		other <- msg.Payload["field"].(string)
	})

	unsubscribe()
	unsubscribe()

	bus.Publish("telemetry", map[string]any{"field": "temperature"})

	is.Equal(waitFor(t, other), "temperature")

	select {
	case <-received:
		t.Fatal("unsubscribed callback should not be invoked")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWildcardSubscription(t *testing.T) {
	is, bus := testSetup(t)

	received := make(chan string, 4)
	bus.Subscribe("entity/*/state", func(ctx context.Context, msg Message) {
		received <- msg.Topic
	})

	bus.Publish("entity/e1/state", map[string]any{})
	bus.Publish("device/d1/lifecycle", map[string]any{})
	bus.Publish("entity/e2/state", map[string]any{})

	is.Equal(waitFor(t, received), "entity/e1/state")
	is.Equal(waitFor(t, received), "entity/e2/state")
}

func TestClearDropsSubscribers(t *testing.T) {
	_, bus := testSetup(t)

	received := make(chan string, 1)
	bus.Subscribe("telemetry", func(ctx context.Context, msg Message) {
		received <- "got it"
	})

	bus.Clear()
	bus.Publish("telemetry", map[string]any{})

	select {
	case <-received:
		t.Fatal("cleared bus should not deliver")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTopicMatches(t *testing.T) {
	is := is.New(t)

	is.True(topicMatches("telemetry", "telemetry"))
	is.True(topicMatches("entity/*/state", "entity/e1/state"))
	is.True(topicMatches("command/*", "command/e1"))
	is.True(!topicMatches("entity/*/state", "entity/e1/other"))
	is.True(!topicMatches("entity/*/state", "entity/e1"))
	is.True(!topicMatches("telemetry", "entity/e1/state"))
}

func testSetup(t *testing.T) (*is.I, EventBus) {
	bus := New(context.Background())
	t.Cleanup(bus.Close)

	return is.New(t), bus
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
		return ""
	}
}
