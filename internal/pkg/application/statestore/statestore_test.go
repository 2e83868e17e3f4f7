package statestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diwise/home-hub/internal/pkg/infrastructure/database"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/database/hubdb"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/matryer/is"
)

func TestWriteAndReadEntityState(t *testing.T) {
	is, ctx, svc := testSetup(t)

	written, err := svc.WriteEntityState(ctx, "dev:temp", map[string]any{"state": 21.5, "unit": "°C"})
	is.NoErr(err)
	is.True(!written.UpdatedAt.IsZero())

	state, err := svc.GetEntityState(ctx, "dev:temp")
	is.NoErr(err)
	is.Equal(state.State["state"], 21.5)
	is.Equal(state.State["unit"], "°C")
}

func TestGetEntityStateNotFound(t *testing.T) {
	is, ctx, svc := testSetup(t)

	_, err := svc.GetEntityState(ctx, "nosuchentity")
	is.True(errors.Is(err, ErrStateNotFound))
}

func TestStopFlushesQueuedTelemetry(t *testing.T) {
	is, ctx, svc := testSetup(t)

	for i := 0; i < 5; i++ {
		svc.AppendTelemetry(ctx, "dev:temp", "home-1", "temperature", float64(20+i), "°C", time.Time{})
	}

	svc.StartTelemetryBatching(ctx)
	svc.StopTelemetryBatching(ctx)

	points, err := svc.GetEntityTelemetry(ctx, "dev:temp", nil)
	is.NoErr(err)
	is.Equal(len(points), 5)
}

func TestTelemetryValueCoercion(t *testing.T) {
	is, ctx, svc := testSetup(t)

	svc.AppendTelemetry(ctx, "dev:mixed", "home-1", "level", "21.5", "", time.Time{})
	svc.AppendTelemetry(ctx, "dev:mixed", "home-1", "motion", true, "", time.Time{})
	svc.AppendTelemetry(ctx, "dev:mixed", "home-1", "mode", "eco", "", time.Time{})

	svc.StartTelemetryBatching(ctx)
	svc.StopTelemetryBatching(ctx)

	byField := map[string]*float64{}

	points, err := svc.GetEntityTelemetry(ctx, "dev:mixed", nil)
	is.NoErr(err)
	is.Equal(len(points), 3)

	for _, p := range points {
		byField[p.Field] = p.Value
	}

	is.Equal(*byField["level"], 21.5)
	is.Equal(*byField["motion"], 1.0)
	is.Equal(byField["mode"], (*float64)(nil))
}

func TestAppendTelemetryPublishesEvent(t *testing.T) {
	is, ctx, svc, bus := testSetupWithBus(t)

	received := make(chan eventbus.Message, 1)
	bus.Subscribe(eventbus.TopicTelemetry, func(ctx context.Context, msg eventbus.Message) {
		received <- msg
	})

	svc.AppendTelemetry(ctx, "dev:temp", "home-1", "temperature", 20.0, "°C", time.Time{})

	msg := waitFor(t, received)
	is.Equal(msg.Payload["entityId"], "dev:temp")
	is.Equal(msg.Payload["field"], "temperature")
	is.Equal(msg.Payload["value"], 20.0)
}

func TestTelemetryFilters(t *testing.T) {
	is, ctx, svc := testSetup(t)

	now := time.Now().UTC()
	svc.AppendTelemetry(ctx, "dev:env", "home-1", "temperature", 20.0, "°C", now.Add(-2*time.Hour))
	svc.AppendTelemetry(ctx, "dev:env", "home-1", "temperature", 21.0, "°C", now)
	svc.AppendTelemetry(ctx, "dev:env", "home-1", "humidity", 40.0, "%", now)

	svc.StartTelemetryBatching(ctx)
	svc.StopTelemetryBatching(ctx)

	points, err := svc.GetEntityTelemetry(ctx, "dev:env", map[string][]string{"field": {"temperature"}})
	is.NoErr(err)
	is.Equal(len(points), 2)

	points, err = svc.GetHomeTelemetry(ctx, "home-1", map[string][]string{"since": {now.Add(-time.Hour).Format(time.RFC3339)}})
	is.NoErr(err)
	is.Equal(len(points), 2)
}

func testSetup(t *testing.T) (*is.I, context.Context, StateStore) {
	is, ctx, svc, _ := testSetupWithBus(t)
	return is, ctx, svc
}

func testSetupWithBus(t *testing.T) (*is.I, context.Context, StateStore, eventbus.EventBus) {
	is := is.New(t)
	ctx := context.Background()

	storage, err := hubdb.New(ctx, database.NewSQLiteConnector(ctx, ""))
	is.NoErr(err)
	is.NoErr(storage.Initialize(ctx))

	bus := eventbus.New(ctx)

	t.Cleanup(func() {
		bus.Close()
		storage.Close()
	})

	svc := NewWithConfig(storage, bus, time.Hour, 2)

	return is, ctx, svc, bus
}

func waitFor(t *testing.T, ch <-chan eventbus.Message) eventbus.Message {
	t.Helper()

	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return eventbus.Message{}
	}
}
