package esphome

import (
	"context"
	"errors"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/diwise/home-hub/internal/pkg/application/drivers"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/discovery"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/matryer/is"
	"google.golang.org/protobuf/encoding/protowire"
)

var _ drivers.HealthChecker = &driver{}

func TestDiscoverMapsServiceRecords(t *testing.T) {
	is, ctx, d, _ := testSetup(t, newFakeDevice(), testConfig())

	d.browser = &discovery.BrowserMock{
		BrowseFunc: func(ctx context.Context, service string, timeout time.Duration) ([]discovery.ServiceRecord, error) {
			is.Equal(service, discovery.ServiceESPHome)
			return []discovery.ServiceRecord{{
				Instance: "plug-1",
				Hostname: "plug-1.local.",
				Address:  net.ParseIP("192.168.1.40"),
				Port:     6053,
				Text:     map[string]string{"mac": "aabbccddeeff", "version": "2024.6.0", "board": "esp32dev"},
			}}, nil
		},
	}

	descriptors, err := d.Discover(ctx)
	is.NoErr(err)
	is.Equal(len(descriptors), 1)
	is.Equal(descriptors[0].ID, "plug-1")
	is.Equal(descriptors[0].Protocol, ProtocolName)
	is.Equal(descriptors[0].Address, "192.168.1.40:6053")
	is.Equal(descriptors[0].Fingerprint(), "esphome:aabbccddeeff")
	is.Equal(descriptors[0].Model, "esp32dev")
}

func TestConnectListsEntities(t *testing.T) {
	fake := newFakeDevice(
		entityInfo{ObjectID: "relay", Key: 1, Name: "Relay", Kind: types.KindSwitch},
		entityInfo{ObjectID: "temperature", Key: 2, Name: "Temperature", Kind: types.KindSensor, Extras: map[string]string{"unit": "°C"}},
	)
	is, ctx, d, events := testSetup(t, fake, testConfig())

	err := d.Connect(ctx, "plug-1", "192.168.1.40:6053")
	is.NoErr(err)

	entities, err := d.Entities(ctx, "plug-1")
	is.NoErr(err)
	is.Equal(len(entities), 2)
	is.Equal(entities[0].ID, "plug-1:relay")
	is.Equal(entities[0].Kind, types.KindSwitch)
	is.Equal(entities[0].Metadata["key"], "1")
	is.Equal(entities[1].ID, "plug-1:temperature")
	is.Equal(entities[1].Metadata["unit"], "°C")

	info, ok := d.DeviceInfo(ctx, "plug-1")
	is.True(ok)
	is.Equal(info.Fingerprint(), "esphome:AA:BB:CC:DD:EE:FF")
	is.Equal(info.Address, "192.168.1.40:6053")

	waitUntil(t, func() bool { return len(events.ofType("connected")) == 1 })
}

func TestConnectIsIdempotent(t *testing.T) {
	fake := newFakeDevice()
	is, ctx, d, _ := testSetup(t, fake, testConfig())

	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))
	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))
	is.Equal(fake.dialCount(), 1)
}

func TestConnectUsesStoredCredentials(t *testing.T) {
	fake := newFakeDevice()
	fake.password = "hunter2"

	is, ctx, d, _ := testSetup(t, fake, testConfig())
	d.env.Credentials = staticCredentials{"plug-1/esphome": []byte("hunter2")}

	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))
}

func TestConnectRejectsInvalidPassword(t *testing.T) {
	fake := newFakeDevice()
	fake.password = "hunter2"

	is, ctx, d, events := testSetup(t, fake, testConfig())

	err := d.Connect(ctx, "plug-1", "192.168.1.40:6053")
	is.True(errors.Is(err, ErrAuthenticationFailed))

	d.mu.Lock()
	_, connected := d.sessions["plug-1"]
	d.mu.Unlock()
	is.True(!connected)

	time.Sleep(4 * testConfig().PingInterval)
	is.Equal(len(fake.framesOfType(TypePingRequest)), 0)
	is.Equal(len(events.ofType("connected")), 0)
}

func TestStateUpdatesReachSubscribers(t *testing.T) {
	fake := newFakeDevice(entityInfo{ObjectID: "temperature", Key: 2, Name: "Temperature", Kind: types.KindSensor})
	is, ctx, d, _ := testSetup(t, fake, testConfig())

	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))
	_, err := d.Entities(ctx, "plug-1")
	is.NoErr(err)

	var mu sync.Mutex
	var got []map[string]any

	unsubscribe, err := d.Subscribe(ctx, "plug-1:temperature", func(entityID string, state map[string]any) {
		is.Equal(entityID, "plug-1:temperature")
		mu.Lock()
		got = append(got, state)
		mu.Unlock()
	})
	is.NoErr(err)

	fake.push(TypeSensorStateResponse, sensorStatePayload(2, 21.5))

	waitUntil(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	is.Equal(got[0]["value"], 21.5)
	mu.Unlock()

	unsubscribe()
	fake.push(TypeSensorStateResponse, sensorStatePayload(2, 22.0))

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	is.Equal(len(got), 1)
	mu.Unlock()
}

func TestRecoversAfterSingleGarbageByte(t *testing.T) {
	fake := newFakeDevice(entityInfo{ObjectID: "temperature", Key: 2, Name: "Temperature", Kind: types.KindSensor})
	is, ctx, d, _ := testSetup(t, fake, testConfig())

	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))
	_, err := d.Entities(ctx, "plug-1")
	is.NoErr(err)

	var mu sync.Mutex
	var got []map[string]any

	_, err = d.Subscribe(ctx, "plug-1:temperature", func(entityID string, state map[string]any) {
		mu.Lock()
		got = append(got, state)
		mu.Unlock()
	})
	is.NoErr(err)

	fake.pushRaw([]byte{0xab})
	fake.push(TypeSensorStateResponse, sensorStatePayload(2, 19.0))

	waitUntil(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	is.Equal(got[0]["value"], 19.0)
	mu.Unlock()
}

func TestInvokeWritesSwitchCommand(t *testing.T) {
	fake := newFakeDevice(entityInfo{ObjectID: "relay", Key: 42, Name: "Relay", Kind: types.KindSwitch})
	is, ctx, d, _ := testSetup(t, fake, testConfig())

	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))
	_, err := d.Entities(ctx, "plug-1")
	is.NoErr(err)

	result := d.Invoke(ctx, "plug-1:relay", drivers.Command{Capability: "on_off", Value: true})
	is.True(result.OK)

	waitUntil(t, func() bool { return len(fake.framesOfType(TypeSwitchCommandRequest)) == 1 })

	frame := fake.framesOfType(TypeSwitchCommandRequest)[0]

	var key uint32
	var state bool
	is.NoErr(walkFields(frame.Payload, func(f field) {
		switch f.num {
		case 1:
			key = f.fixed32
		case 2:
			state = f.bool()
		}
	}))
	is.Equal(key, uint32(42))
	is.True(state)
}

func TestInvokeUnsupportedWritesNothing(t *testing.T) {
	fake := newFakeDevice(
		entityInfo{ObjectID: "lamp", Key: 7, Name: "Lamp", Kind: types.KindLight},
		entityInfo{ObjectID: "status", Key: 8, Name: "Status", Kind: types.KindTextSensor},
	)
	is, ctx, d, _ := testSetup(t, fake, testConfig())

	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))
	_, err := d.Entities(ctx, "plug-1")
	is.NoErr(err)

	result := d.Invoke(ctx, "plug-1:lamp", drivers.Command{Capability: "warble", Value: 1})
	is.True(!result.OK)
	is.Equal(result.Error, "Unsupported capability")

	result = d.Invoke(ctx, "plug-1:status", drivers.Command{Capability: "on_off", Value: true})
	is.True(!result.OK)
	is.Equal(result.Error, "Unsupported entity type")

	time.Sleep(20 * time.Millisecond)
	is.Equal(len(fake.framesOfType(TypeLightCommandRequest)), 0)
	is.Equal(len(fake.framesOfType(TypeSwitchCommandRequest)), 0)
}

func TestConnectSubscribesToDeviceLogs(t *testing.T) {
	fake := newFakeDevice()
	cfg := testConfig()
	cfg.LogLevel = 3

	is, ctx, d, _ := testSetup(t, fake, cfg)

	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))

	waitUntil(t, func() bool { return len(fake.framesOfType(TypeSubscribeLogsRequest)) == 1 })

	frame := fake.framesOfType(TypeSubscribeLogsRequest)[0]

	var level uint64
	is.NoErr(walkFields(frame.Payload, func(f field) {
		if f.num == 1 {
			level = f.varint
		}
	}))
	is.Equal(level, uint64(3))

	// a log line from the device must not disturb the session
	logLine := protowire.AppendTag(nil, 3, protowire.BytesType)
	logLine = protowire.AppendString(logLine, "[I][app:102]: ESPHome version 2024.6.0 compiled")
	fake.push(TypeSubscribeLogsResponse, logLine)
	time.Sleep(20 * time.Millisecond)

	d.mu.Lock()
	_, connected := d.sessions["plug-1"]
	d.mu.Unlock()
	is.True(connected)
}

func TestPingTimeoutDisconnects(t *testing.T) {
	fake := newFakeDevice()
	is, ctx, d, events := testSetup(t, fake, testConfig())

	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))
	fake.setAnswerPings(false)

	waitUntil(t, func() bool { return len(events.ofType("disconnected")) == 1 })
	waitUntil(t, func() bool { return len(events.ofType("error")) == 1 })

	d.mu.Lock()
	_, connected := d.sessions["plug-1"]
	d.mu.Unlock()
	is.True(!connected)
}

func TestReconnectAfterConnectionLoss(t *testing.T) {
	fake := newFakeDevice()
	cfg := testConfig()
	cfg.Reconnect = true

	is, ctx, d, events := testSetup(t, fake, cfg)

	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))
	fake.closeCurrent()

	waitUntil(t, func() bool { return fake.dialCount() == 2 })
	waitUntil(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		_, connected := d.sessions["plug-1"]
		return connected
	})

	waitUntil(t, func() bool { return len(events.ofType("connected")) == 2 })
}

func TestDisconnectDoesNotReconnect(t *testing.T) {
	fake := newFakeDevice()
	cfg := testConfig()
	cfg.Reconnect = true

	is, ctx, d, events := testSetup(t, fake, cfg)

	is.NoErr(d.Connect(ctx, "plug-1", "192.168.1.40:6053"))
	is.NoErr(d.Disconnect(ctx, "plug-1"))

	waitUntil(t, func() bool { return len(events.ofType("disconnected")) == 1 })

	time.Sleep(3 * cfg.ReconnectInterval)
	is.Equal(fake.dialCount(), 1)
}

func testConfig() Config {
	return Config{
		Port:              6053,
		PingInterval:      15 * time.Millisecond,
		Reconnect:         false,
		ReconnectInterval: 20 * time.Millisecond,
	}
}

func testSetup(t *testing.T, fake *fakeDevice, cfg Config) (*is.I, context.Context, *driver, *eventCollector) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	bus := eventbus.New(ctx)
	t.Cleanup(bus.Close)

	events := &eventCollector{}
	bus.Subscribe("device/*/lifecycle", events.collect)

	d := New(ctx, cfg, drivers.Environment{Bus: bus}).(*driver)
	d.dial = fake.dialer()
	t.Cleanup(func() { d.Shutdown(context.Background()) })

	return is, ctx, d, events
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}

	t.Fatal("condition not met within deadline")
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

	var out []eventbus.Message
	for _, msg := range c.events {
		if msg.Payload["type"] == eventType {
			out = append(out, msg)
		}
	}
	return out
}

type staticCredentials map[string][]byte

func (s staticCredentials) GetCredentials(ctx context.Context, deviceID, kind string) ([]byte, error) {
	if data, ok := s[deviceID+"/"+kind]; ok {
		return data, nil
	}
	return nil, errors.New("not found")
}

func sensorStatePayload(key uint32, value float64) []byte {
	payload := protowire.AppendTag(nil, 1, protowire.Fixed32Type)
	payload = protowire.AppendFixed32(payload, key)
	payload = protowire.AppendTag(payload, 2, protowire.Fixed32Type)
	payload = protowire.AppendFixed32(payload, math.Float32bits(float32(value)))
	return payload
}

// fakeDevice plays the firmware side of the native API over an in-memory
// pipe. It answers the handshake, announces a configurable entity list and
// records every frame it receives.
type fakeDevice struct {
	password string
	entities []entityInfo

	mu          sync.Mutex
	received    []Frame
	conns       []net.Conn
	dials       int
	answerPings bool
}

func newFakeDevice(entities ...entityInfo) *fakeDevice {
	return &fakeDevice{entities: entities, answerPings: true}
}

func (f *fakeDevice) dialer() func(ctx context.Context, address string) (net.Conn, error) {
	return func(ctx context.Context, address string) (net.Conn, error) {
		client, server := net.Pipe()

		f.mu.Lock()
		f.dials++
		f.conns = append(f.conns, server)
		f.mu.Unlock()

		go f.serve(server)

		return client, nil
	}
}

func (f *fakeDevice) dialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dials
}

func (f *fakeDevice) setAnswerPings(v bool) {
	f.mu.Lock()
	f.answerPings = v
	f.mu.Unlock()
}

func (f *fakeDevice) closeCurrent() {
	f.mu.Lock()
	conn := f.conns[len(f.conns)-1]
	f.mu.Unlock()
	conn.Close()
}

func (f *fakeDevice) framesOfType(msgType uint64) []Frame {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Frame
	for _, frame := range f.received {
		if frame.Type == msgType {
			out = append(out, frame)
		}
	}
	return out
}

func (f *fakeDevice) push(msgType uint64, payload []byte) {
	f.pushRaw(EncodeFrame(Frame{Type: msgType, Payload: payload}))
}

func (f *fakeDevice) pushRaw(raw []byte) {
	f.mu.Lock()
	conn := f.conns[len(f.conns)-1]
	f.mu.Unlock()
	conn.Write(raw)
}

func (f *fakeDevice) serve(conn net.Conn) {
	var buf []byte
	chunk := make([]byte, 4096)

	for {
		frame, n, err := DecodeFrame(buf)
		if err != nil {
			if !errors.Is(err, ErrNeedMoreData) {
				conn.Close()
				return
			}

			n, rerr := conn.Read(chunk)
			if n > 0 {
				buf = append(buf, chunk[:n]...)
			}
			if rerr != nil {
				conn.Close()
				return
			}
			continue
		}
		buf = buf[n:]

		f.mu.Lock()
		f.received = append(f.received, frame)
		answerPings := f.answerPings
		f.mu.Unlock()

		switch frame.Type {
		case TypeHelloRequest:
			payload := protowire.AppendTag(nil, 1, protowire.VarintType)
			payload = protowire.AppendVarint(payload, 1)
			payload = protowire.AppendTag(payload, 2, protowire.VarintType)
			payload = protowire.AppendVarint(payload, 10)
			payload = protowire.AppendTag(payload, 4, protowire.BytesType)
			payload = protowire.AppendString(payload, "plug-1")
			f.write(conn, TypeHelloResponse, payload)

		case TypeConnectRequest:
			var password string
			walkFields(frame.Payload, func(fd field) {
				if fd.num == 1 {
					password = fd.text()
				}
			})

			invalid := f.password != "" && password != f.password

			var payload []byte
			if invalid {
				payload = protowire.AppendTag(nil, 1, protowire.VarintType)
				payload = protowire.AppendVarint(payload, 1)
			}
			f.write(conn, TypeConnectResponse, payload)

		case TypeDeviceInfoRequest:
			payload := protowire.AppendTag(nil, 2, protowire.BytesType)
			payload = protowire.AppendString(payload, "plug-1")
			payload = protowire.AppendTag(payload, 3, protowire.BytesType)
			payload = protowire.AppendString(payload, "AA:BB:CC:DD:EE:FF")
			payload = protowire.AppendTag(payload, 4, protowire.BytesType)
			payload = protowire.AppendString(payload, "2024.6.0")
			f.write(conn, TypeDeviceInfoResponse, payload)

		case TypeListEntitiesRequest:
			for _, entity := range f.entities {
				msgType, payload := encodeListEntity(entity)
				f.write(conn, msgType, payload)
			}
			f.write(conn, TypeListEntitiesDoneResponse, nil)

		case TypePingRequest:
			if answerPings {
				f.write(conn, TypePingResponse, nil)
			}

		case TypeDisconnectRequest:
			f.write(conn, TypeDisconnectResponse, nil)
			conn.Close()
			return
		}
	}
}

func (f *fakeDevice) write(conn net.Conn, msgType uint64, payload []byte) {
	conn.Write(EncodeFrame(Frame{Type: msgType, Payload: payload}))
}

func encodeListEntity(entity entityInfo) (uint64, []byte) {
	var msgType uint64
	switch entity.Kind {
	case types.KindSwitch:
		msgType = TypeListEntitiesSwitchResponse
	case types.KindLight:
		msgType = TypeListEntitiesLightResponse
	case types.KindSensor:
		msgType = TypeListEntitiesSensorResponse
	case types.KindTextSensor:
		msgType = TypeListEntitiesTextSensorResponse
	}

	payload := protowire.AppendTag(nil, 1, protowire.BytesType)
	payload = protowire.AppendString(payload, entity.ObjectID)
	payload = protowire.AppendTag(payload, 2, protowire.Fixed32Type)
	payload = protowire.AppendFixed32(payload, entity.Key)
	payload = protowire.AppendTag(payload, 3, protowire.BytesType)
	payload = protowire.AppendString(payload, entity.Name)

	if unit, ok := entity.Extras["unit"]; ok && entity.Kind == types.KindSensor {
		payload = protowire.AppendTag(payload, 6, protowire.BytesType)
		payload = protowire.AppendString(payload, unit)
	}

	return msgType, payload
}
