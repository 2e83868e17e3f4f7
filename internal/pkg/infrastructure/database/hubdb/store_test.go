package hubdb

import (
	"context"
	"testing"
	"time"

	"github.com/diwise/home-hub/internal/pkg/infrastructure/database"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/matryer/is"
)

func TestGetOrCreateHomeIsIdempotent(t *testing.T) {
	is, ctx, s := testSetup(t)

	first, err := s.GetOrCreateHome(ctx, "Default Home", "Europe/Stockholm")
	is.NoErr(err)

	second, err := s.GetOrCreateHome(ctx, "Default Home", "Europe/Stockholm")
	is.NoErr(err)

	is.Equal(first.ID, second.ID)
}

func TestUpsertDeviceConvergesOnFingerprint(t *testing.T) {
	is, ctx, s := testSetup(t)
	home := createHome(is, ctx, s)

	t0 := time.Now().UTC().Truncate(time.Second)

	first, err := s.UpsertDevice(ctx, types.Device{
		HomeID:      home.ID,
		Protocol:    "esphome",
		Name:        "plug",
		Address:     "10.0.0.1",
		Fingerprint: "F1",
		LastSeen:    t0,
	})
	is.NoErr(err)

	second, err := s.UpsertDevice(ctx, types.Device{
		HomeID:      home.ID,
		Protocol:    "esphome",
		Name:        "plug-renamed",
		Address:     "10.0.0.99",
		Fingerprint: "F1",
		LastSeen:    t0.Add(time.Minute),
	})
	is.NoErr(err)

	is.Equal(first.ID, second.ID)

	devices, err := s.GetDevices(ctx, WithHomeID(home.ID))
	is.NoErr(err)
	is.Equal(devices.TotalCount, uint64(1))
	is.Equal(devices.Data[0].Address, "10.0.0.99")
	is.Equal(devices.Data[0].Name, "plug-renamed")
	is.Equal(devices.Data[0].LastSeen.Unix(), t0.Add(time.Minute).Unix())
}

func TestUpsertDeviceMatchesOnAddress(t *testing.T) {
	is, ctx, s := testSetup(t)
	home := createHome(is, ctx, s)

	t0 := time.Now().UTC().Truncate(time.Second)

	first, err := s.UpsertDevice(ctx, types.Device{
		HomeID: home.ID, Protocol: "hue", Vendor: "Signify", Model: "BSB002",
		Name: "bridge", Address: "10.0.0.2", LastSeen: t0,
	})
	is.NoErr(err)

	second, err := s.UpsertDevice(ctx, types.Device{
		HomeID: home.ID, Protocol: "hue", Vendor: "Signify", Model: "BSB002",
		Name: "bridge", Address: "10.0.0.2", LastSeen: t0.Add(time.Minute),
	})
	is.NoErr(err)

	is.Equal(first.ID, second.ID)
	is.Equal(second.LastSeen.Unix(), t0.Add(time.Minute).Unix())
}

func TestUpsertDeviceInsertsWhenNoMatch(t *testing.T) {
	is, ctx, s := testSetup(t)
	home := createHome(is, ctx, s)

	_, err := s.UpsertDevice(ctx, types.Device{HomeID: home.ID, Protocol: "esphome", Address: "10.0.0.1", LastSeen: time.Now()})
	is.NoErr(err)
	_, err = s.UpsertDevice(ctx, types.Device{HomeID: home.ID, Protocol: "esphome", Address: "10.0.0.2", LastSeen: time.Now()})
	is.NoErr(err)

	devices, err := s.GetDevices(ctx, WithHomeID(home.ID))
	is.NoErr(err)
	is.Equal(devices.TotalCount, uint64(2))
}

func TestUpsertEntityIsIdempotentOnKey(t *testing.T) {
	is, ctx, s := testSetup(t)
	home := createHome(is, ctx, s)
	device := createDevice(is, ctx, s, home.ID)

	first, err := s.UpsertEntity(ctx, types.Entity{
		ID: device.ID + ":relay", DeviceID: device.ID, HomeID: home.ID,
		Kind: types.KindSwitch, Name: "Relay", Key: "1234",
	})
	is.NoErr(err)

	second, err := s.UpsertEntity(ctx, types.Entity{
		ID: device.ID + ":relay", DeviceID: device.ID, HomeID: home.ID,
		Kind: types.KindSwitch, Name: "Relay Renamed", Key: "1234",
	})
	is.NoErr(err)

	is.Equal(first.ID, second.ID)
	is.Equal(second.Name, "Relay Renamed")

	entities, err := s.GetEntities(ctx, WithDeviceID(device.ID))
	is.NoErr(err)
	is.Equal(entities.TotalCount, uint64(1))
}

func TestCredentialsAreKeyedByDeviceAndKind(t *testing.T) {
	is, ctx, s := testSetup(t)
	home := createHome(is, ctx, s)
	device := createDevice(is, ctx, s, home.ID)

	is.NoErr(s.UpsertCredentials(ctx, device.ID, "esphome", []byte(`{"password":"pw"}`)))
	is.NoErr(s.UpsertCredentials(ctx, device.ID, "hue", []byte(`{"username":"u1"}`)))

	data, err := s.GetCredentials(ctx, device.ID, "esphome")
	is.NoErr(err)
	is.Equal(string(data), `{"password":"pw"}`)

	is.NoErr(s.UpsertCredentials(ctx, device.ID, "esphome", []byte(`{"password":"rotated"}`)))

	data, err = s.GetCredentials(ctx, device.ID, "esphome")
	is.NoErr(err)
	is.Equal(string(data), `{"password":"rotated"}`)

	_, err = s.GetCredentials(ctx, "no-such-device", "")
	is.True(err != nil)
}

func TestEntityStateIsLastWriteWins(t *testing.T) {
	is, ctx, s := testSetup(t)

	t1 := time.Now().UTC().Truncate(time.Second)

	err := s.UpsertEntityState(ctx, types.EntityState{
		EntityID: "e1", State: map[string]any{"value": float64(1)}, UpdatedAt: t1,
	})
	is.NoErr(err)

	err = s.UpsertEntityState(ctx, types.EntityState{
		EntityID: "e1", State: map[string]any{"value": float64(2)}, UpdatedAt: t1.Add(time.Second),
	})
	is.NoErr(err)

	err = s.UpsertEntityState(ctx, types.EntityState{
		EntityID: "e1", State: map[string]any{"value": float64(0)}, UpdatedAt: t1.Add(-time.Second),
	})
	is.NoErr(err)

	state, err := s.GetEntityState(ctx, "e1")
	is.NoErr(err)
	is.Equal(state.State["value"], float64(2))
	is.Equal(state.UpdatedAt.Unix(), t1.Add(time.Second).Unix())
}

func TestTelemetryAppendAndQuery(t *testing.T) {
	is, ctx, s := testSetup(t)

	now := time.Now().UTC().Truncate(time.Second)
	value := func(v float64) *float64 { return &v }

	err := s.InsertTelemetry(ctx, []types.TelemetryPoint{
		{EntityID: "e1", HomeID: "h1", Field: "co2", Value: value(400), Unit: "ppm", Ts: now.Add(-2 * time.Second)},
		{EntityID: "e1", HomeID: "h1", Field: "co2", Value: value(410), Unit: "ppm", Ts: now.Add(-time.Second)},
		{EntityID: "e1", HomeID: "h1", Field: "temperature", Value: value(21.5), Unit: "°C", Ts: now},
		{EntityID: "e2", HomeID: "h1", Field: "co2", Value: value(600), Unit: "ppm", Ts: now},
	})
	is.NoErr(err)

	points, err := s.GetTelemetry(ctx, WithEntityID("e1"))
	is.NoErr(err)
	is.Equal(len(points), 3)
	is.Equal(points[0].Field, "temperature")

	points, err = s.GetTelemetry(ctx, WithEntityID("e1"), WithField("co2"))
	is.NoErr(err)
	is.Equal(len(points), 2)
	is.Equal(*points[0].Value, float64(410))

	points, err = s.GetTelemetry(ctx, WithHomeID("h1"), WithSince(now))
	is.NoErr(err)
	is.Equal(len(points), 2)
}

func TestGetEntitiesFiltersAndPaging(t *testing.T) {
	is, ctx, s := testSetup(t)
	home := createHome(is, ctx, s)
	device := createDevice(is, ctx, s, home.ID)

	for _, e := range []struct{ key, kind string }{
		{"k1", types.KindSensor}, {"k2", types.KindSensor}, {"k3", types.KindLight},
	} {
		_, err := s.UpsertEntity(ctx, types.Entity{
			DeviceID: device.ID, HomeID: home.ID, Kind: e.kind, Name: e.key, Key: e.key,
		})
		is.NoErr(err)
	}

	sensors, err := s.GetEntities(ctx, WithHomeID(home.ID), WithKind(types.KindSensor))
	is.NoErr(err)
	is.Equal(sensors.TotalCount, uint64(2))

	page, err := s.GetEntities(ctx, WithDeviceID(device.ID), WithLimit(2))
	is.NoErr(err)
	is.Equal(page.Count, uint64(2))
	is.Equal(page.TotalCount, uint64(3))
}

func createHome(is *is.I, ctx context.Context, s Store) types.Home {
	home, err := s.GetOrCreateHome(ctx, "Default Home", "Europe/Stockholm")
	is.NoErr(err)
	return home
}

func createDevice(is *is.I, ctx context.Context, s Store, homeID string) types.Device {
	device, err := s.UpsertDevice(ctx, types.Device{
		HomeID:   homeID,
		Protocol: "esphome",
		Name:     "test-device",
		Address:  "10.0.0.1",
		LastSeen: time.Now().UTC(),
	})
	is.NoErr(err)
	return device
}

func testSetup(t *testing.T) (*is.I, context.Context, Store) {
	is := is.New(t)
	ctx := context.Background()

	s, err := New(ctx, database.NewSQLiteConnector(ctx, ""))
	is.NoErr(err)
	is.NoErr(s.Initialize(ctx))

	t.Cleanup(func() { s.Close() })

	return is, ctx, s
}
