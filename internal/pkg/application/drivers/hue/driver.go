package hue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"reflect"
	"sort"
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

const ProtocolName = "hue"

// deviceType is the application identifier the bridge whitelists when a
// username is created.
const deviceType = "home-hub#hub"

const (
	browseTimeout   = 3 * time.Second
	maxPollFailures = 3
)

// Every entity a bridge exposes is a light or a light group, so the only
// unsupported-type failure Invoke can produce is the capability one.
const msgUnsupportedCapability = "Unsupported capability"

var ErrLinkButtonNotPressed = fmt.Errorf("link button not pressed")
var ErrNotConnected = fmt.Errorf("bridge not connected")

type Config struct {
	PollInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
	}
}

func Factory(cfg Config) drivers.Factory {
	return func(ctx context.Context, env drivers.Environment) (drivers.Driver, error) {
		return New(ctx, cfg, env), nil
	}
}

// driver speaks the Hue v1 REST API. The bridge offers no push channel, so
// each connected bridge gets a poller that diffs light and group state and
// feeds subscribers with the changes.
type driver struct {
	ctx context.Context
	cfg Config
	env drivers.Environment

	browser discovery.Browser

	mu        sync.Mutex
	bridges   map[string]*bridge
	usernames map[string]string
	subs      map[string][]*stateSub
	closed    bool
}

type stateSub struct {
	cb drivers.StateCallback
}

// bridge is one connected Hue bridge with its poller bookkeeping. lastState
// is keyed by object id and holds the most recent normalized state, so a
// fresh subscriber can be primed without waiting for the next poll.
type bridge struct {
	deviceID string
	address  string
	client   *bridgeClient
	info     bridgeConfig

	done     chan struct{}
	stopOnce sync.Once

	mu        sync.Mutex
	lastState map[string]map[string]any
	scenes    map[string]scene
}

func (b *bridge) stop() {
	b.stopOnce.Do(func() {
		close(b.done)
	})
}

func (b *bridge) cachedState(objectID string) (map[string]any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.lastState[objectID]
	return state, ok
}

// resolveScene accepts either a scene id or a scene name and returns the id
// the bridge knows it by.
func (b *bridge) resolveScene(nameOrID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.scenes[nameOrID]; ok {
		return nameOrID, true
	}

	for id, s := range b.scenes {
		if s.Name == nameOrID {
			return id, true
		}
	}

	return "", false
}

func New(ctx context.Context, cfg Config, env drivers.Environment) drivers.Driver {
	return &driver{
		ctx:       ctx,
		cfg:       cfg,
		env:       env,
		browser:   discovery.NewBrowser(),
		bridges:   map[string]*bridge{},
		usernames: map[string]string{},
		subs:      map[string][]*stateSub{},
	}
}

// EntityID composes the hub wide entity id for an object on a bridge.
func EntityID(deviceID, objectID string) string {
	return deviceID + ":" + objectID
}

func splitEntityID(entityID string) (deviceID, objectID string, ok bool) {
	return strings.Cut(entityID, ":")
}

func (d *driver) Initialize(ctx context.Context) error {
	log := logging.GetFromContext(ctx)
	log.Info("hue driver ready", slog.Duration("poll_interval", d.cfg.PollInterval))
	return nil
}

func (d *driver) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	bridges := make([]*bridge, 0, len(d.bridges))
	for _, b := range d.bridges {
		bridges = append(bridges, b)
	}
	d.mu.Unlock()

	for _, b := range bridges {
		b.stop()
	}

	return nil
}

func (d *driver) Healthy(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed
}

func (d *driver) Discover(ctx context.Context) ([]drivers.DeviceDescriptor, error) {
	records, err := d.browser.Browse(ctx, discovery.ServiceHue, browseTimeout)
	if err != nil {
		return nil, err
	}

	descriptors := make([]drivers.DeviceDescriptor, 0, len(records))
	for _, record := range records {
		descriptors = append(descriptors, descriptorFrom(record))
	}

	return descriptors, nil
}

func descriptorFrom(record discovery.ServiceRecord) drivers.DeviceDescriptor {
	bridgeID := strings.ToLower(record.Text["bridgeid"])

	id := record.Instance
	metadata := map[string]string{}
	if bridgeID != "" {
		id = "hue-" + bridgeID
		metadata["fingerprint"] = "hue:" + bridgeID
	}

	return drivers.DeviceDescriptor{
		ID:       id,
		Name:     record.Instance,
		Protocol: ProtocolName,
		Vendor:   "Signify",
		Model:    record.Text["modelid"],
		// the v1 api is plain http on port 80, not the advertised https port
		Address:  net.JoinHostPort(record.Address.String(), "80"),
		Metadata: metadata,
	}
}

// Pair seeds a previously issued username for a bridge. With no credentials
// given this is a no-op; the link button exchange happens inside Connect,
// where the bridge address is known.
func (d *driver) Pair(ctx context.Context, deviceID string, credentials []byte) error {
	if len(credentials) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.usernames[deviceID] = string(credentials)
	return nil
}

func (d *driver) Connect(ctx context.Context, deviceID, address string) error {
	log := logging.GetFromContext(ctx)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return fmt.Errorf("driver is shut down")
	}
	if _, connected := d.bridges[deviceID]; connected {
		d.mu.Unlock()
		return nil
	}
	username := d.usernames[deviceID]
	d.mu.Unlock()

	if username == "" && d.env.Credentials != nil {
		if stored, err := d.env.Credentials.GetCredentials(ctx, deviceID, ProtocolName); err == nil && len(stored) > 0 {
			username = string(stored)
		}
	}

	client := newBridgeClient(address)

	if username == "" {
		created, err := client.createUser(ctx, deviceType)
		if err != nil {
			if errors.Is(err, ErrLinkButtonNotPressed) {
				log.Debug("bridge link button not pressed yet", slog.String("device_id", deviceID))
			}
			return err
		}
		username = created
		d.storeUsername(ctx, deviceID, username)
		log.Info("bridge user created", slog.String("device_id", deviceID))
	}

	client.username = username

	info, err := client.config(ctx)
	if err != nil {
		return fmt.Errorf("failed to read bridge config: %w", err)
	}

	// a stale or revoked username surfaces here, before the bridge is tracked
	if _, err := client.lights(ctx); err != nil {
		return fmt.Errorf("bridge rejected credentials: %w", err)
	}

	b := &bridge{
		deviceID:  deviceID,
		address:   address,
		client:    client,
		info:      info,
		done:      make(chan struct{}),
		lastState: map[string]map[string]any{},
		scenes:    map[string]scene{},
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return fmt.Errorf("driver is shut down")
	}
	if _, exists := d.bridges[deviceID]; exists {
		// lost a connect race; the surviving bridge wins
		d.mu.Unlock()
		return nil
	}
	d.bridges[deviceID] = b
	d.usernames[deviceID] = username
	d.mu.Unlock()

	go d.pollLoop(b)

	d.env.Bus.Publish(eventbus.DeviceLifecycleTopic(deviceID), map[string]any{
		"deviceId": deviceID,
		"protocol": ProtocolName,
		"type":     "connected",
	})

	log.Info("bridge connected", slog.String("device_id", deviceID), slog.String("address", address), slog.String("bridge", info.Name))

	return nil
}

func (d *driver) storeUsername(ctx context.Context, deviceID, username string) {
	d.mu.Lock()
	d.usernames[deviceID] = username
	d.mu.Unlock()

	if store, ok := d.env.Credentials.(drivers.CredentialStore); ok {
		if err := store.StoreCredentials(ctx, deviceID, ProtocolName, []byte(username)); err != nil {
			logging.GetFromContext(ctx).Error("failed to persist bridge username", slog.String("device_id", deviceID), slog.String("err", err.Error()))
		}
	}
}

func (d *driver) pollLoop(b *bridge) {
	log := logging.GetFromContext(d.ctx)

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	failures := 0

	// take a baseline right away so subscribers are not blind for a full
	// poll interval after connect
	if err := d.pollOnce(d.ctx, b); err != nil {
		failures = 1
		log.Debug("bridge poll failed", slog.String("device_id", b.deviceID), slog.Int("failures", failures), slog.String("err", err.Error()))
	}

	for {
		select {
		case <-b.done:
			return
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			select {
			case <-b.done:
				return
			default:
			}

			if err := d.pollOnce(d.ctx, b); err != nil {
				failures++
				log.Debug("bridge poll failed", slog.String("device_id", b.deviceID), slog.Int("failures", failures), slog.String("err", err.Error()))
				if failures >= maxPollFailures {
					d.dropBridge(b, err)
					return
				}
				continue
			}
			failures = 0
		}
	}
}

func (d *driver) pollOnce(ctx context.Context, b *bridge) error {
	lights, err := b.client.lights(ctx)
	if err != nil {
		return err
	}

	for id, l := range lights {
		d.observeState(b, "light-"+id, normalizeState(l.State, true))
	}

	groups, err := b.client.groups(ctx)
	if err != nil {
		return err
	}

	for id, g := range groups {
		d.observeState(b, "group-"+id, normalizeState(g.Action, false))
	}

	return nil
}

// observeState records the latest normalized state for an object and
// notifies subscribers when it differs from the previous poll. The first
// observation after connect always counts as a change.
func (d *driver) observeState(b *bridge, objectID string, state map[string]any) {
	b.mu.Lock()
	previous, seen := b.lastState[objectID]
	changed := !seen || !reflect.DeepEqual(previous, state)
	if changed {
		b.lastState[objectID] = state
	}
	b.mu.Unlock()

	if changed {
		d.dispatchState(b.deviceID, objectID, state)
	}
}

// dropBridge removes the bridge and reports why. A nil cause is a requested
// disconnect; anything else is a failure and gets an error event first.
func (d *driver) dropBridge(b *bridge, cause error) {
	d.mu.Lock()
	if current, ok := d.bridges[b.deviceID]; !ok || current != b {
		d.mu.Unlock()
		return
	}
	delete(d.bridges, b.deviceID)
	closed := d.closed
	d.mu.Unlock()

	b.stop()

	if closed {
		return
	}

	if cause != nil {
		d.env.Bus.Publish(eventbus.DeviceLifecycleTopic(b.deviceID), map[string]any{
			"deviceId": b.deviceID,
			"protocol": ProtocolName,
			"type":     "error",
			"details":  cause.Error(),
		})
	}

	payload := map[string]any{
		"deviceId": b.deviceID,
		"protocol": ProtocolName,
		"type":     "disconnected",
	}
	if cause != nil {
		payload["details"] = cause.Error()
	}
	d.env.Bus.Publish(eventbus.DeviceLifecycleTopic(b.deviceID), payload)
}

func (d *driver) Disconnect(ctx context.Context, deviceID string) error {
	d.mu.Lock()
	b, ok := d.bridges[deviceID]
	d.mu.Unlock()

	if !ok {
		return nil
	}

	d.dropBridge(b, nil)
	return nil
}

func (d *driver) DeviceInfo(ctx context.Context, deviceID string) (drivers.DeviceDescriptor, bool) {
	d.mu.Lock()
	b, ok := d.bridges[deviceID]
	d.mu.Unlock()

	if !ok {
		return drivers.DeviceDescriptor{}, false
	}

	metadata := map[string]string{}
	if b.info.BridgeID != "" {
		metadata["fingerprint"] = "hue:" + strings.ToLower(b.info.BridgeID)
	}
	if b.info.SWVersion != "" {
		metadata["version"] = b.info.SWVersion
	}
	if b.info.APIVersion != "" {
		metadata["api_version"] = b.info.APIVersion
	}

	return drivers.DeviceDescriptor{
		ID:       deviceID,
		Name:     b.info.Name,
		Protocol: ProtocolName,
		Vendor:   "Signify",
		Model:    b.info.ModelID,
		Address:  b.address,
		Metadata: metadata,
	}, true
}

func (d *driver) Entities(ctx context.Context, deviceID string) ([]drivers.EntityDescriptor, error) {
	d.mu.Lock()
	b, ok := d.bridges[deviceID]
	d.mu.Unlock()

	if !ok {
		return nil, ErrNotConnected
	}

	lights, err := b.client.lights(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := b.client.groups(ctx)
	if err != nil {
		return nil, err
	}

	// scenes are not entities of their own; they are cached here and invoked
	// through the scene capability of the group they belong to
	scenes, err := b.client.scenes(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.scenes = scenes
	b.mu.Unlock()

	descriptors := make([]drivers.EntityDescriptor, 0, len(lights)+len(groups))

	for _, id := range sortedKeys(lights) {
		l := lights[id]
		descriptors = append(descriptors, drivers.EntityDescriptor{
			ID:   EntityID(deviceID, "light-"+id),
			Name: l.Name,
			Kind: types.KindLight,
			Metadata: map[string]string{
				"key":       "light-" + id,
				"model":     l.ModelID,
				"product":   l.ProductName,
				"unique_id": l.UniqueID,
			},
		})
	}

	for _, id := range sortedKeys(groups) {
		g := groups[id]
		descriptors = append(descriptors, drivers.EntityDescriptor{
			ID:   EntityID(deviceID, "group-"+id),
			Name: g.Name,
			Kind: types.KindLight,
			Metadata: map[string]string{
				"key":    "group-" + id,
				"group":  "true",
				"class":  g.Class,
				"lights": strconv.Itoa(len(g.Lights)),
			},
		})
	}

	return descriptors, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d *driver) Subscribe(ctx context.Context, entityID string, cb drivers.StateCallback) (drivers.Unsubscribe, error) {
	deviceID, objectID, ok := splitEntityID(entityID)
	if !ok {
		return nil, fmt.Errorf("malformed entity id: %s", entityID)
	}

	d.mu.Lock()
	b, connected := d.bridges[deviceID]
	if !connected {
		d.mu.Unlock()
		return nil, ErrNotConnected
	}

	sub := &stateSub{cb: cb}
	d.subs[entityID] = append(d.subs[entityID], sub)
	d.mu.Unlock()

	// prime the subscriber so it does not wait a full poll for a baseline
	if state, cached := b.cachedState(objectID); cached {
		go cb(entityID, state)
	}

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

func (d *driver) dispatchState(deviceID, objectID string, state map[string]any) {
	entityID := EntityID(deviceID, objectID)

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
	b, connected := d.bridges[deviceID]
	d.mu.Unlock()

	if !connected {
		return drivers.Failed(ErrNotConnected.Error())
	}

	isGroup := strings.HasPrefix(objectID, "group-")
	if !isGroup && !strings.HasPrefix(objectID, "light-") {
		return drivers.Failed("unknown entity: " + objectID)
	}

	body, errMsg := translateCommand(b, isGroup, cmd)
	if errMsg != "" {
		return drivers.Failed(errMsg)
	}

	var err error
	if isGroup {
		err = b.client.setGroupAction(ctx, strings.TrimPrefix(objectID, "group-"), body)
	} else {
		err = b.client.setLightState(ctx, strings.TrimPrefix(objectID, "light-"), body)
	}
	if err != nil {
		return drivers.Failed(err.Error())
	}

	return drivers.Result{OK: true}
}

// translateCommand maps a normalized hub command onto the v1 state body for
// a light, or the action body for a group. An empty error message means the
// body may be sent; any other outcome makes no request.
func translateCommand(b *bridge, isGroup bool, cmd drivers.Command) (map[string]any, string) {
	switch cmd.Capability {
	case "on_off":
		return map[string]any{"on": boolValue(cmd.Value)}, ""

	case "brightness":
		v, ok := floatValue(cmd.Value)
		if !ok {
			return nil, "brightness value must be numeric"
		}
		// bri runs 1..254; setting it implies on
		return map[string]any{"on": true, "bri": scaleToRange(v, 100, 1, 254)}, ""

	case "color_temp":
		v, ok := floatValue(cmd.Value)
		if !ok {
			return nil, "color_temp value must be numeric"
		}
		return map[string]any{"on": true, "ct": clampInt(int(math.Round(v)), 153, 500)}, ""

	case "hue":
		v, ok := floatValue(cmd.Value)
		if !ok {
			return nil, "hue value must be numeric"
		}
		return map[string]any{"on": true, "hue": scaleToRange(v, 360, 0, 65535)}, ""

	case "saturation":
		v, ok := floatValue(cmd.Value)
		if !ok {
			return nil, "saturation value must be numeric"
		}
		return map[string]any{"on": true, "sat": scaleToRange(v, 100, 0, 254)}, ""

	case "scene":
		if !isGroup {
			return nil, msgUnsupportedCapability
		}
		name, ok := cmd.Value.(string)
		if !ok || name == "" {
			return nil, "scene value must be a scene name or id"
		}
		id, found := b.resolveScene(name)
		if !found {
			return nil, "unknown scene: " + name
		}
		return map[string]any{"scene": id}, ""
	}

	return nil, msgUnsupportedCapability
}

// normalizeState converts bridge units into hub units: brightness and
// saturation to percent, hue to degrees. Mirek color temperature passes
// through untouched.
func normalizeState(state lightState, includeReachable bool) map[string]any {
	out := map[string]any{
		"state": state.On,
	}
	if includeReachable {
		out["reachable"] = state.Reachable
	}
	if state.Bri != nil {
		out["brightness"] = scaleFromRange(*state.Bri, 254, 100)
	}
	if state.Ct != nil {
		out["color_temp"] = *state.Ct
	}
	if state.Hue != nil {
		out["hue"] = scaleFromRange(*state.Hue, 65535, 360)
	}
	if state.Sat != nil {
		out["saturation"] = scaleFromRange(*state.Sat, 254, 100)
	}
	return out
}

func scaleFromRange(v, fromMax, toMax int) int {
	return int(math.Round(float64(v) / float64(fromMax) * float64(toMax)))
}

func scaleToRange(v, fromMax float64, toMin, toMax int) int {
	scaled := int(math.Round(v / fromMax * float64(toMax)))
	return clampInt(scaled, toMin, toMax)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "on" || t == "true" || t == "1"
	default:
		f, ok := floatValue(v)
		return ok && f != 0
	}
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
