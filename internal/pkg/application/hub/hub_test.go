package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/diwise/home-hub/internal/pkg/application/drivers"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/database"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/database/hubdb"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/matryer/is"
)

func TestInitializeAssemblesServiceGraph(t *testing.T) {
	is, ctx, h, td := testSetup(t)

	is.NoErr(h.Initialize(ctx))

	is.True(h.Bus() != nil)
	is.True(h.Registry() != nil)
	is.True(h.StateStore() != nil)
	is.True(h.Commands() != nil)
	is.True(h.Drivers().Has("fake"))
	is.Equal(len(td.mock.InitializeCalls()), 1)
}

func TestNewGeneratesHubIDWhenUnset(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	storage, err := hubdb.New(ctx, database.NewSQLiteConnector(ctx, ""))
	is.NoErr(err)

	cfg := DefaultConfig()
	h := New(ctx, cfg, storage, nil)
	t.Cleanup(func() { h.Stop(context.Background()) })

	is.NoErr(h.Initialize(ctx))

	status, err := h.GetStatus(ctx)
	is.NoErr(err)
	is.Equal(len(status.HubID), 36)
}

func TestDiscoveryAdoptsAndPairsDevice(t *testing.T) {
	is, ctx, h, td := testSetup(t)
	td.serveSensor()

	is.NoErr(h.Initialize(ctx))

	lifecycle := &eventCollector{}
	h.Bus().Subscribe("device/*/lifecycle", lifecycle.collect)

	is.NoErr(h.Start(ctx))

	waitUntil(t, func() bool {
		device, err := h.Registry().GetDevice(ctx, "fake-1")
		return err == nil && device.IsPaired()
	})

	connects := td.mock.ConnectCalls()
	is.True(len(connects) > 0)
	is.Equal(connects[0].DeviceID, "fake-1")
	is.Equal(connects[0].Address, "192.0.2.10:6053")

	entity, err := h.Registry().GetEntity(ctx, "fake-1:co2")
	is.NoErr(err)
	is.Equal(entity.Name, "CO2 Reading")
	is.Equal(entity.Kind, types.KindSensor)

	// the empty credential row marks pairing as completed
	data, err := h.Registry().GetCredentials(ctx, "fake-1", "fake")
	is.NoErr(err)
	is.Equal(len(data), 0)

	// re-discovering a paired device must not pair it again
	waitUntil(t, func() bool { return len(lifecycle.ofType("discovered")) >= 3 })
	is.Equal(len(lifecycle.ofType("paired")), 1)
}

func TestDiscoverySkipsConnectWithoutAddress(t *testing.T) {
	is, ctx, h, td := testSetup(t)

	desc := sensorDevice()
	desc.Address = ""
	td.mock.DiscoverFunc = func(ctx context.Context) ([]drivers.DeviceDescriptor, error) {
		return []drivers.DeviceDescriptor{desc}, nil
	}

	is.NoErr(h.Initialize(ctx))
	is.NoErr(h.Start(ctx))

	waitUntil(t, func() bool {
		_, err := h.Registry().GetDevice(ctx, "fake-1")
		return err == nil
	})
	waitUntil(t, func() bool { return len(td.mock.DiscoverCalls()) >= 3 })

	device, err := h.Registry().GetDevice(ctx, "fake-1")
	is.NoErr(err)
	is.True(!device.IsPaired())
	is.Equal(len(td.mock.ConnectCalls()), 0)
	is.Equal(len(td.mock.EntitiesCalls()), 0)
}

func TestDiscoveryKeepsDriverStoredCredentials(t *testing.T) {
	is, ctx, h, td := testSetup(t)
	td.serveSensor()

	is.NoErr(h.Initialize(ctx))

	// a driver minted this secret during an earlier pairing exchange
	is.NoErr(h.Registry().StoreCredentials(ctx, "fake-1", "fake", []byte("secret-token")))

	is.NoErr(h.Start(ctx))

	waitUntil(t, func() bool {
		device, err := h.Registry().GetDevice(ctx, "fake-1")
		return err == nil && device.IsPaired()
	})
	waitUntil(t, func() bool { return len(td.mock.DiscoverCalls()) >= 3 })

	data, err := h.Registry().GetCredentials(ctx, "fake-1", "fake")
	is.NoErr(err)
	is.Equal(string(data), "secret-token")
}

func TestSubscriptionDeliversSensorTelemetry(t *testing.T) {
	is, ctx, h, td := startedWithSensor(t)

	td.fire(t, "fake-1:co2", map[string]any{"value": 420.0, "unit": "ppm"})

	waitUntil(t, func() bool {
		points, err := h.GetEntityTelemetry(ctx, "fake-1:co2", nil)
		return err == nil && len(points) == 1
	})

	points, err := h.GetEntityTelemetry(ctx, "fake-1:co2", nil)
	is.NoErr(err)
	is.Equal(points[0].Field, "co2")
	is.Equal(*points[0].Value, 420.0)
	is.Equal(points[0].Unit, "ppm")
	is.True(points[0].HomeID != "")

	state, err := h.StateStore().GetEntityState(ctx, "fake-1:co2")
	is.NoErr(err)
	is.Equal(state.State["value"], 420.0)

	// the enriched re-publish from the state store must not loop back in
	time.Sleep(50 * time.Millisecond)
	points, err = h.GetEntityTelemetry(ctx, "fake-1:co2", nil)
	is.NoErr(err)
	is.Equal(len(points), 1)
}

func TestTelemetryUnitFallsBackToEntityAttributes(t *testing.T) {
	is, ctx, h, td := startedWithSensor(t)

	td.fire(t, "fake-1:co2", map[string]any{"value": 7.0})

	waitUntil(t, func() bool {
		points, err := h.GetEntityTelemetry(ctx, "fake-1:co2", nil)
		return err == nil && len(points) == 1
	})

	points, err := h.GetEntityTelemetry(ctx, "fake-1:co2", nil)
	is.NoErr(err)
	is.Equal(points[0].Unit, "ppm")
}

func TestSubscriptionSkipsDevicesWithoutCredentials(t *testing.T) {
	is, ctx, h, td := testSetup(t)

	is.NoErr(h.Initialize(ctx))

	home, err := h.Registry().GetOrCreateHome(ctx, "Home", "UTC")
	is.NoErr(err)

	device, err := h.Registry().UpsertDevice(ctx, home.ID, sensorDevice())
	is.NoErr(err)

	_, err = h.Registry().UpsertEntity(ctx, home.ID, device.ID, sensorEntity())
	is.NoErr(err)

	is.NoErr(h.Start(ctx))

	waitUntil(t, func() bool { return len(td.mock.DiscoverCalls()) >= 3 })
	is.Equal(len(td.mock.SubscribeCalls()), 0)
}

func TestGetEntitiesFiltersByKind(t *testing.T) {
	is, ctx, h, _ := startedWithSensor(t)

	sensors, err := h.GetEntities(ctx, map[string][]string{"kind": {types.KindSensor}})
	is.NoErr(err)
	is.Equal(sensors.Count, uint64(1))
	is.Equal(sensors.Data[0].ID, "fake-1:co2")

	lights, err := h.GetEntities(ctx, map[string][]string{"kind": {types.KindLight}})
	is.NoErr(err)
	is.Equal(lights.Count, uint64(0))
}

func TestGetStatusReportsInventory(t *testing.T) {
	is, ctx, h, _ := startedWithSensor(t)

	status, err := h.GetStatus(ctx)
	is.NoErr(err)
	is.Equal(status.HubID, "hub-under-test")
	is.Equal(status.Version, "0.0.0-test")
	is.Equal(status.Homes, int64(1))
	is.Equal(status.Devices, int64(1))
	is.Equal(status.Entities, int64(1))
	is.Equal(status.Drivers["fake"], true)
	is.True(!status.StartedAt.IsZero())
	is.True(status.Uptime != "")
}

func TestStopReleasesSubscriptionsAndDrivers(t *testing.T) {
	is, ctx, h, td := startedWithSensor(t)

	is.NoErr(h.Stop(ctx))

	is.Equal(td.unsubscribedIDs(), []string{"fake-1:co2"})
	is.True(len(td.mock.ShutdownCalls()) > 0)

	// loops are down, no tick runs after Stop returns
	ticks := len(td.mock.DiscoverCalls())
	time.Sleep(50 * time.Millisecond)
	is.Equal(len(td.mock.DiscoverCalls()), ticks)
}

func TestTelemetryFieldNames(t *testing.T) {
	is := is.New(t)

	is.Equal(telemetryFieldName("CO2 Reading"), "co2")
	is.Equal(telemetryFieldName("Indoor CO₂"), "co2")
	is.Equal(telemetryFieldName(" Outside  Temperature "), "outside_temperature")
	is.Equal(telemetryFieldName("Humidity"), "humidity")
	is.Equal(telemetryFieldName(""), "value")
}

func testSetup(t *testing.T) (*is.I, context.Context, Hub, *testDriver) {
	is := is.New(t)
	ctx := context.Background()

	storage, err := hubdb.New(ctx, database.NewSQLiteConnector(ctx, ""))
	is.NoErr(err)

	td := newTestDriver()

	cfg := DefaultConfig()
	cfg.HubID = "hub-under-test"
	cfg.Version = "0.0.0-test"
	cfg.DiscoveryInterval = 10 * time.Millisecond
	cfg.SubscriptionInterval = 10 * time.Millisecond
	cfg.TelemetryFlushInterval = 10 * time.Millisecond

	h := New(ctx, cfg, storage, map[string]drivers.Factory{
		"fake": func(ctx context.Context, env drivers.Environment) (drivers.Driver, error) {
			return td.mock, nil
		},
	})

	t.Cleanup(func() { h.Stop(context.Background()) })

	return is, ctx, h, td
}

func startedWithSensor(t *testing.T) (*is.I, context.Context, Hub, *testDriver) {
	is, ctx, h, td := testSetup(t)
	td.serveSensor()

	is.NoErr(h.Initialize(ctx))
	is.NoErr(h.Start(ctx))

	waitUntil(t, func() bool { return td.callback("fake-1:co2") != nil })

	return is, ctx, h, td
}

func waitUntil(t *testing.T, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}

	t.Fatal("condition not met within deadline")
}

func sensorDevice() drivers.DeviceDescriptor {
	return drivers.DeviceDescriptor{
		ID:       "fake-1",
		Name:     "Air Monitor",
		Protocol: "fake",
		Vendor:   "Acme",
		Model:    "AM-100",
		Address:  "192.0.2.10:6053",
		Metadata: map[string]string{"fingerprint": "fake:aa:bb:cc"},
	}
}

func sensorEntity() drivers.EntityDescriptor {
	return drivers.EntityDescriptor{
		ID:       "fake-1:co2",
		Name:     "CO2 Reading",
		Kind:     types.KindSensor,
		Metadata: map[string]string{"key": "co2_reading", "unit": "ppm"},
	}
}

// testDriver wraps a DriverMock that behaves like a healthy single-device
// protocol: it records state subscriptions so tests can push samples through
// the hub the same way a real driver would.
type testDriver struct {
	mock *drivers.DriverMock

	mu           sync.Mutex
	callbacks    map[string]drivers.StateCallback
	unsubscribed []string
}

func newTestDriver() *testDriver {
	td := &testDriver{callbacks: map[string]drivers.StateCallback{}}

	td.mock = &drivers.DriverMock{
		InitializeFunc: func(ctx context.Context) error { return nil },
		DiscoverFunc: func(ctx context.Context) ([]drivers.DeviceDescriptor, error) {
			return nil, nil
		},
		ConnectFunc: func(ctx context.Context, deviceID, address string) error { return nil },
		EntitiesFunc: func(ctx context.Context, deviceID string) ([]drivers.EntityDescriptor, error) {
			return nil, nil
		},
		SubscribeFunc: func(ctx context.Context, entityID string, cb drivers.StateCallback) (drivers.Unsubscribe, error) {
			td.mu.Lock()
			td.callbacks[entityID] = cb
			td.mu.Unlock()

			return func() {
				td.mu.Lock()
				td.unsubscribed = append(td.unsubscribed, entityID)
				td.mu.Unlock()
			}, nil
		},
		ShutdownFunc: func(ctx context.Context) error { return nil },
	}

	return td
}

func (td *testDriver) serveSensor() {
	td.mock.DiscoverFunc = func(ctx context.Context) ([]drivers.DeviceDescriptor, error) {
		return []drivers.DeviceDescriptor{sensorDevice()}, nil
	}
	td.mock.EntitiesFunc = func(ctx context.Context, deviceID string) ([]drivers.EntityDescriptor, error) {
		return []drivers.EntityDescriptor{sensorEntity()}, nil
	}
}

func (td *testDriver) callback(entityID string) drivers.StateCallback {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.callbacks[entityID]
}

func (td *testDriver) fire(t *testing.T, entityID string, state map[string]any) {
	t.Helper()

	cb := td.callback(entityID)
	if cb == nil {
		t.Fatalf("no subscription for %s", entityID)
	}

	cb(entityID, state)
}

func (td *testDriver) unsubscribedIDs() []string {
	td.mu.Lock()
	defer td.mu.Unlock()
	return append([]string{}, td.unsubscribed...)
}

type eventCollector struct {
	mu     sync.Mutex
	events []eventbus.Message
}

func (c *eventCollector) collect(ctx context.Context, msg eventbus.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, msg)
}

func (c *eventCollector) ofType(eventType string) []eventbus.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches := []eventbus.Message{}
	for _, e := range c.events {
		if t, _ := e.Payload["type"].(string); t == eventType {
			matches = append(matches, e)
		}
	}

	return matches
}
