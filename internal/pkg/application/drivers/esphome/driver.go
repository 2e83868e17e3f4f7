package esphome

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diwise/home-hub/internal/pkg/application/drivers"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/discovery"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const ProtocolName = "esphome"

const clientInfo = "home-hub"

const (
	browseTimeout     = 3 * time.Second
	dialTimeout       = 5 * time.Second
	entityListTimeout = 5 * time.Second
)

const (
	msgUnsupportedEntityType = "Unsupported entity type"
	msgUnsupportedCapability = "Unsupported capability"
)

type Config struct {
	Port              int
	PingInterval      time.Duration
	Reconnect         bool
	ReconnectInterval time.Duration
	LogLevel          uint64
}

func DefaultConfig() Config {
	return Config{
		Port:              6053,
		PingInterval:      15 * time.Second,
		Reconnect:         true,
		ReconnectInterval: 30 * time.Second,
		LogLevel:          logLevelInfo,
	}
}

func Factory(cfg Config) drivers.Factory {
	return func(ctx context.Context, env drivers.Environment) (drivers.Driver, error) {
		return New(ctx, cfg, env), nil
	}
}

// driver speaks the ESPHome native API over TCP. Each connected device gets
// its own session; the driver owns the session table, the pairing passwords
// and the per-entity subscriber lists.
type driver struct {
	ctx context.Context
	cfg Config
	env drivers.Environment

	browser discovery.Browser
	dial    func(ctx context.Context, address string) (net.Conn, error)

	mu        sync.Mutex
	sessions  map[string]*session
	addresses map[string]string
	passwords map[string][]byte
	subs      map[string][]*stateSub
	closed    bool

	done chan struct{}
}

type stateSub struct {
	cb drivers.StateCallback
}

func New(ctx context.Context, cfg Config, env drivers.Environment) drivers.Driver {
	d := &driver{
		ctx:       ctx,
		cfg:       cfg,
		env:       env,
		browser:   discovery.NewBrowser(),
		sessions:  map[string]*session{},
		addresses: map[string]string{},
		passwords: map[string][]byte{},
		subs:      map[string][]*stateSub{},
		done:      make(chan struct{}),
	}

	d.dial = func(ctx context.Context, address string) (net.Conn, error) {
		dialer := net.Dialer{Timeout: dialTimeout}
		return dialer.DialContext(ctx, "tcp", address)
	}

	return d
}

// EntityID composes the hub wide entity id for an object on a device.
func EntityID(deviceID, objectID string) string {
	return deviceID + ":" + objectID
}

func splitEntityID(entityID string) (deviceID, objectID string, ok bool) {
	return strings.Cut(entityID, ":")
}

func (d *driver) Initialize(ctx context.Context) error {
	log := logging.GetFromContext(ctx)
	log.Info("esphome driver ready", slog.Int("port", d.cfg.Port), slog.Bool("reconnect", d.cfg.Reconnect))
	return nil
}

func (d *driver) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	sessions := make([]*session, 0, len(d.sessions))
	for _, s := range d.sessions {
		sessions = append(sessions, s)
	}
	d.mu.Unlock()

	close(d.done)

	for _, s := range sessions {
		s.close()
	}

	return nil
}

func (d *driver) Healthy(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed
}

func (d *driver) Discover(ctx context.Context) ([]drivers.DeviceDescriptor, error) {
	records, err := d.browser.Browse(ctx, discovery.ServiceESPHome, browseTimeout)
	if err != nil {
		return nil, err
	}

	descriptors := make([]drivers.DeviceDescriptor, 0, len(records))
	for _, record := range records {
		descriptors = append(descriptors, descriptorFrom(record, d.cfg.Port))
	}

	return descriptors, nil
}

func descriptorFrom(record discovery.ServiceRecord, defaultPort int) drivers.DeviceDescriptor {
	port := record.Port
	if port == 0 {
		port = defaultPort
	}

	metadata := map[string]string{}
	if mac := record.Text["mac"]; mac != "" {
		metadata["fingerprint"] = "esphome:" + mac
	}
	if version := record.Text["version"]; version != "" {
		metadata["version"] = version
	}
	if platform := record.Text["platform"]; platform != "" {
		metadata["platform"] = platform
	}

	name := record.Text["friendly_name"]
	if name == "" {
		name = record.Instance
	}

	return drivers.DeviceDescriptor{
		ID:       record.Instance,
		Name:     name,
		Protocol: ProtocolName,
		Vendor:   "espressif",
		Model:    record.Text["board"],
		Address:  net.JoinHostPort(record.Address.String(), strconv.Itoa(port)),
		Metadata: metadata,
	}
}

// Pair stores the API password for a device. ESPHome has no pairing ceremony
// beyond knowing the password, so the credential is validated on the next
// connect.
func (d *driver) Pair(ctx context.Context, deviceID string, credentials []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.passwords[deviceID] = append([]byte{}, credentials...)
	return nil
}

func (d *driver) Connect(ctx context.Context, deviceID, address string) error {
	log := logging.GetFromContext(ctx)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return fmt.Errorf("driver is shut down")
	}
	if _, connected := d.sessions[deviceID]; connected {
		d.mu.Unlock()
		return nil
	}
	d.addresses[deviceID] = address
	password := d.passwords[deviceID]
	d.mu.Unlock()

	if len(password) == 0 && d.env.Credentials != nil {
		if stored, err := d.env.Credentials.GetCredentials(ctx, deviceID, ProtocolName); err == nil {
			password = stored
		}
	}

	conn, err := d.dial(ctx, address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, err)
	}

	s, err := connectSession(conn, sessionConfig{
		clientInfo:   clientInfo,
		password:     string(password),
		pingInterval: d.cfg.PingInterval,
		logLevel:     d.cfg.LogLevel,
	}, log)
	if err != nil {
		return err
	}

	s.onState = func(entity entityInfo, state map[string]any) {
		d.dispatchState(deviceID, entity, state)
	}
	s.onClose = func(cause error) {
		d.handleClose(deviceID, s, cause)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		s.closeWith(nil)
		return fmt.Errorf("driver is shut down")
	}
	if _, exists := d.sessions[deviceID]; exists {
		// lost a connect race; the surviving session wins
		d.mu.Unlock()
		s.closeWith(nil)
		return nil
	}
	d.sessions[deviceID] = s
	d.mu.Unlock()

	if err := s.start(); err != nil {
		s.closeWith(err)
		return err
	}

	d.env.Bus.Publish(eventbus.DeviceLifecycleTopic(deviceID), map[string]any{
		"deviceId": deviceID,
		"protocol": ProtocolName,
		"type":     "connected",
	})

	log.Info("device connected", slog.String("device_id", deviceID), slog.String("address", address))

	return nil
}

// handleClose runs once per session, from whichever pump noticed the
// connection die. An abnormal close schedules reconnection as long as the
// device has not been explicitly disconnected.
func (d *driver) handleClose(deviceID string, s *session, cause error) {
	d.mu.Lock()
	if current, ok := d.sessions[deviceID]; !ok || current != s {
		d.mu.Unlock()
		return
	}
	delete(d.sessions, deviceID)
	address, tracked := d.addresses[deviceID]
	retry := cause != nil && tracked && d.cfg.Reconnect && !d.closed
	abnormal := cause != nil && !d.closed
	d.mu.Unlock()

	if abnormal {
		d.env.Bus.Publish(eventbus.DeviceLifecycleTopic(deviceID), map[string]any{
			"deviceId": deviceID,
			"protocol": ProtocolName,
			"type":     "error",
			"details":  cause.Error(),
		})
	}

	payload := map[string]any{
		"deviceId": deviceID,
		"protocol": ProtocolName,
		"type":     "disconnected",
	}
	if cause != nil {
		payload["details"] = cause.Error()
	}
	d.env.Bus.Publish(eventbus.DeviceLifecycleTopic(deviceID), payload)

	if retry {
		go d.reconnectLoop(deviceID, address)
	}
}

func (d *driver) reconnectLoop(deviceID, address string) {
	log := logging.GetFromContext(d.ctx)

	ticker := time.NewTicker(d.cfg.ReconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.mu.Lock()
			_, tracked := d.addresses[deviceID]
			closed := d.closed
			d.mu.Unlock()

			if !tracked || closed {
				return
			}

			if err := d.Connect(d.ctx, deviceID, address); err != nil {
				log.Debug("reconnect attempt failed", slog.String("device_id", deviceID), slog.String("err", err.Error()))
				continue
			}

			log.Info("device reconnected", slog.String("device_id", deviceID))
			return
		}
	}
}

func (d *driver) Disconnect(ctx context.Context, deviceID string) error {
	d.mu.Lock()
	delete(d.addresses, deviceID)
	s, ok := d.sessions[deviceID]
	d.mu.Unlock()

	if !ok {
		return nil
	}

	s.close()
	return nil
}

func (d *driver) DeviceInfo(ctx context.Context, deviceID string) (drivers.DeviceDescriptor, bool) {
	d.mu.Lock()
	s, ok := d.sessions[deviceID]
	address := d.addresses[deviceID]
	d.mu.Unlock()

	if !ok {
		return drivers.DeviceDescriptor{}, false
	}

	info := s.deviceInfo()

	name := info.FriendlyName
	if name == "" {
		name = info.Name
	}

	metadata := map[string]string{}
	if info.MacAddress != "" {
		metadata["fingerprint"] = "esphome:" + info.MacAddress
	}
	if info.ESPHomeVersion != "" {
		metadata["version"] = info.ESPHomeVersion
	}

	return drivers.DeviceDescriptor{
		ID:       deviceID,
		Name:     name,
		Protocol: ProtocolName,
		Vendor:   info.Manufacturer,
		Model:    info.Model,
		Address:  address,
		Metadata: metadata,
	}, true
}

func (d *driver) Entities(ctx context.Context, deviceID string) ([]drivers.EntityDescriptor, error) {
	d.mu.Lock()
	s, ok := d.sessions[deviceID]
	d.mu.Unlock()

	if !ok {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, entityListTimeout)
	defer cancel()

	entities, err := s.awaitEntities(ctx)
	if err != nil {
		return nil, err
	}

	descriptors := make([]drivers.EntityDescriptor, 0, len(entities))
	for _, entity := range entities {
		descriptors = append(descriptors, entityDescriptor(deviceID, entity))
	}

	return descriptors, nil
}

func entityDescriptor(deviceID string, entity entityInfo) drivers.EntityDescriptor {
	metadata := map[string]string{"key": strconv.FormatUint(uint64(entity.Key), 10)}
	for k, v := range entity.Extras {
		metadata[k] = v
	}

	name := entity.Name
	if name == "" {
		name = entity.ObjectID
	}

	return drivers.EntityDescriptor{
		ID:       EntityID(deviceID, entity.ObjectID),
		Name:     name,
		Kind:     entity.Kind,
		Metadata: metadata,
	}
}

func (d *driver) Subscribe(ctx context.Context, entityID string, cb drivers.StateCallback) (drivers.Unsubscribe, error) {
	deviceID, _, ok := splitEntityID(entityID)
	if !ok {
		return nil, fmt.Errorf("malformed entity id: %s", entityID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, connected := d.sessions[deviceID]; !connected {
		return nil, ErrNotConnected
	}

	sub := &stateSub{cb: cb}
	d.subs[entityID] = append(d.subs[entityID], sub)

	var once sync.Once

	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()

			subs := d.subs[entityID]
			for i, candidate := range subs {
				if candidate == sub {
					d.subs[entityID] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			if len(d.subs[entityID]) == 0 {
				delete(d.subs, entityID)
			}
		})
	}, nil
}

func (d *driver) dispatchState(deviceID string, entity entityInfo, state map[string]any) {
	entityID := EntityID(deviceID, entity.ObjectID)

	d.mu.Lock()
	subs := append([]*stateSub{}, d.subs[entityID]...)
	d.mu.Unlock()

	for _, sub := range subs {
		sub.cb(entityID, state)
	}
}

func (d *driver) Invoke(ctx context.Context, entityID string, cmd drivers.Command) drivers.Result {
	deviceID, objectID, ok := splitEntityID(entityID)
	if !ok {
		return drivers.Failed("malformed entity id: " + entityID)
	}

	d.mu.Lock()
	s, connected := d.sessions[deviceID]
	d.mu.Unlock()

	if !connected {
		return drivers.Failed(ErrNotConnected.Error())
	}

	entity, found := s.entityByObjectID(objectID)
	if !found {
		return drivers.Failed("unknown entity: " + objectID)
	}

	msgType, payload, errMsg := translateCommand(entity, cmd)
	if errMsg != "" {
		return drivers.Failed(errMsg)
	}

	if err := s.send(msgType, payload); err != nil {
		return drivers.Failed(err.Error())
	}

	return drivers.Result{OK: true}
}

// translateCommand maps a normalized hub command onto the typed wire message
// for the entity's kind. An empty error message means the frame may be sent;
// any other outcome writes nothing to the wire.
func translateCommand(entity entityInfo, cmd drivers.Command) (uint64, []byte, string) {
	key := entity.Key

	switch entity.Kind {
	case types.KindSwitch:
		if cmd.Capability != "on_off" {
			return 0, nil, msgUnsupportedCapability
		}
		return TypeSwitchCommandRequest, encodeSwitchCommand(key, boolValue(cmd.Value)), ""

	case types.KindLight:
		switch cmd.Capability {
		case "on_off":
			return TypeLightCommandRequest, encodeLightCommand(key, lightCommand{HasState: true, State: boolValue(cmd.Value)}), ""
		case "brightness":
			v, ok := floatValue(cmd.Value)
			if !ok {
				return 0, nil, "brightness value must be numeric"
			}
			return TypeLightCommandRequest, encodeLightCommand(key, lightCommand{
				HasState:      true,
				State:         true,
				HasBrightness: true,
				Brightness:    clamp(v/100, 0, 1),
			}), ""
		case "color_rgb":
			r, g, b, ok := rgbValue(cmd.Value)
			if !ok {
				return 0, nil, "color_rgb value must carry r, g and b"
			}
			return TypeLightCommandRequest, encodeLightCommand(key, lightCommand{
				HasState: true,
				State:    true,
				HasRGB:   true,
				Red:      clamp(r/255, 0, 1),
				Green:    clamp(g/255, 0, 1),
				Blue:     clamp(b/255, 0, 1),
			}), ""
		case "color_temp":
			v, ok := floatValue(cmd.Value)
			if !ok {
				return 0, nil, "color_temp value must be numeric"
			}
			return TypeLightCommandRequest, encodeLightCommand(key, lightCommand{
				HasState:     true,
				State:        true,
				HasColorTemp: true,
				ColorTemp:    v,
			}), ""
		}
		return 0, nil, msgUnsupportedCapability

	case types.KindButton:
		return TypeButtonCommandRequest, encodeButtonCommand(key), ""

	case types.KindNumber:
		if cmd.Capability != "numeric" {
			return 0, nil, msgUnsupportedCapability
		}
		v, ok := floatValue(cmd.Value)
		if !ok {
			return 0, nil, "numeric value required"
		}
		return TypeNumberCommandRequest, encodeNumberCommand(key, v), ""

	case types.KindSelect:
		if cmd.Capability != "select" {
			return 0, nil, msgUnsupportedCapability
		}
		option, ok := cmd.Value.(string)
		if !ok {
			return 0, nil, "select value must be a string"
		}
		return TypeSelectCommandRequest, encodeSelectCommand(key, option), ""

	case types.KindFan:
		switch cmd.Capability {
		case "on_off":
			return TypeFanCommandRequest, encodeFanCommand(key, fanCommand{HasState: true, State: boolValue(cmd.Value)}), ""
		case "speed":
			v, ok := floatValue(cmd.Value)
			if !ok {
				return 0, nil, "speed value must be numeric"
			}
			return TypeFanCommandRequest, encodeFanCommand(key, fanCommand{
				HasState:      true,
				State:         true,
				HasSpeedLevel: true,
				SpeedLevel:    int32(v),
			}), ""
		}
		return 0, nil, msgUnsupportedCapability

	case types.KindCover:
		if cmd.Capability != "position" {
			return 0, nil, msgUnsupportedCapability
		}
		v, ok := floatValue(cmd.Value)
		if !ok {
			return 0, nil, "position value must be numeric"
		}
		return TypeCoverCommandRequest, encodeCoverPositionCommand(key, clamp(v/100, 0, 1)), ""

	case types.KindClimate:
		if cmd.Capability != "temperature" {
			return 0, nil, msgUnsupportedCapability
		}
		v, ok := floatValue(cmd.Value)
		if !ok {
			return 0, nil, "temperature value must be numeric"
		}
		return TypeClimateCommandRequest, encodeClimateTemperatureCommand(key, v), ""

	case types.KindLock:
		if cmd.Capability != "lock" {
			return 0, nil, msgUnsupportedCapability
		}
		action, _ := cmd.Value.(string)
		switch action {
		case "lock":
			return TypeLockCommandRequest, encodeLockCommand(key, lockCommandLock), ""
		case "unlock":
			return TypeLockCommandRequest, encodeLockCommand(key, lockCommandUnlock), ""
		case "open":
			return TypeLockCommandRequest, encodeLockCommand(key, lockCommandOpen), ""
		}
		return 0, nil, "lock value must be lock, unlock or open"
	}

	return 0, nil, msgUnsupportedEntityType
}

func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "on" || t == "true" || t == "1"
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return false
}

func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func rgbValue(v any) (r, g, b float64, ok bool) {
	m, isMap := v.(map[string]any)
	if !isMap {
		return 0, 0, 0, false
	}

	r, rok := floatValue(m["r"])
	g, gok := floatValue(m["g"])
	b, bok := floatValue(m["b"])

	return r, g, b, rok && gok && bok
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
