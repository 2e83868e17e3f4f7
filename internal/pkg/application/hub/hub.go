package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/diwise/home-hub/internal/pkg/application/commands"
	"github.com/diwise/home-hub/internal/pkg/application/drivers"
	"github.com/diwise/home-hub/internal/pkg/application/registry"
	"github.com/diwise/home-hub/internal/pkg/application/statestore"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/database/hubdb"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("home-hub/hub")

type Config struct {
	HubID        string
	Version      string
	HomeName     string
	HomeTimezone string

	DiscoveryInterval    time.Duration
	SubscriptionInterval time.Duration

	TelemetryBatchSize     int
	TelemetryFlushInterval time.Duration

	Commands commands.Config
}

func DefaultConfig() Config {
	return Config{
		HomeName:               "Home",
		HomeTimezone:           "UTC",
		DiscoveryInterval:      15 * time.Second,
		SubscriptionInterval:   3 * time.Second,
		TelemetryBatchSize:     statestore.DefaultBatchSize,
		TelemetryFlushInterval: statestore.DefaultFlushInterval,
		Commands:               commands.DefaultConfig(),
	}
}

// Hub is the daemon orchestrator: it owns the bus, the registry, the state
// store, the loaded drivers and the command router, and runs the discovery
// and subscription loops that tie them together. The HTTP layer talks to the
// hub and to nothing below it.
//
//go:generate moq -rm -out hub_mock.go . Hub
type Hub interface {
	Initialize(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	ProcessCommand(ctx context.Context, req types.CommandRequest) (types.CommandResult, error)
	GetEntities(ctx context.Context, params map[string][]string) (types.Collection[types.Entity], error)
	GetDevicesByHome(ctx context.Context, homeID string) (types.Collection[types.Device], error)
	GetEntityTelemetry(ctx context.Context, entityID string, params map[string][]string) ([]types.TelemetryPoint, error)
	GetStatus(ctx context.Context) (types.HubStatus, error)
	GetDriverHealth(ctx context.Context) map[string]bool

	Bus() eventbus.EventBus
	Registry() registry.DeviceRegistry
	StateStore() statestore.StateStore
	Drivers() *drivers.Registry
	Commands() commands.CommandProcessor
}

type hub struct {
	ctx context.Context
	cfg Config

	storage   hubdb.Store
	factories map[string]drivers.Factory

	bus        eventbus.EventBus
	registry   registry.DeviceRegistry
	stateStore statestore.StateStore
	drivers    *drivers.Registry
	commands   commands.CommandProcessor

	mu            sync.Mutex
	homeID        string
	startedAt     time.Time
	started       bool
	subscriptions map[string]drivers.Unsubscribe
	standing      []eventbus.Unsubscribe
	stopLoops     []func()
}

func New(ctx context.Context, cfg Config, storage hubdb.Store, factories map[string]drivers.Factory) Hub {
	if cfg.HubID == "" {
		cfg.HubID = uuid.NewString()
	}

	return &hub{
		ctx:           ctx,
		cfg:           cfg,
		storage:       storage,
		factories:     factories,
		subscriptions: map[string]drivers.Unsubscribe{},
	}
}

// Initialize opens persistence and assembles the service graph: bus,
// registry, state store, driver loader, command router, plus the two
// standing subscriptions that persist entity state and telemetry.
func (h *hub) Initialize(ctx context.Context) error {
	var err error
	ctx, span := tracer.Start(ctx, "initialize-hub")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if err = h.storage.Initialize(ctx); err != nil {
		err = fmt.Errorf("failed to initialize storage: %w", err)
		return err
	}

	h.bus = eventbus.New(h.ctx)
	h.registry = registry.New(h.storage)
	h.stateStore = statestore.NewWithConfig(h.storage, h.bus, h.cfg.TelemetryFlushInterval, h.cfg.TelemetryBatchSize)
	h.drivers = drivers.NewRegistry()

	// the registry doubles as the credential source and store for drivers
	drivers.Load(h.ctx, h.drivers, drivers.Environment{Bus: h.bus, Credentials: h.registry}, h.factories)

	h.commands = commands.New(h.registry, h.drivers, h.bus, h.cfg.Commands)

	h.standing = append(h.standing,
		h.bus.Subscribe("entity/*/state", h.persistEntityState),
		h.bus.Subscribe(eventbus.TopicTelemetry, h.persistTelemetry),
	)

	logging.GetFromContext(ctx).Info("hub initialized", slog.String("hub_id", h.cfg.HubID))

	return nil
}

// Start ensures the default home exists, starts the telemetry batcher and
// the command coalescer, and launches the discovery and subscription loops.
func (h *hub) Start(ctx context.Context) error {
	var err error
	ctx, span := tracer.Start(ctx, "start-hub")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	home, err := h.registry.GetOrCreateHome(ctx, h.cfg.HomeName, h.cfg.HomeTimezone)
	if err != nil {
		err = fmt.Errorf("failed to ensure default home: %w", err)
		return err
	}

	h.mu.Lock()
	h.homeID = home.ID
	h.startedAt = time.Now()
	h.started = true
	h.mu.Unlock()

	h.stateStore.StartTelemetryBatching(h.ctx)
	h.commands.Start(h.ctx)

	h.stopLoops = append(h.stopLoops,
		h.startLoop(h.ctx, h.cfg.DiscoveryInterval, true, h.discoverTick),
		h.startLoop(h.ctx, h.cfg.SubscriptionInterval, false, h.subscribeTick),
	)

	logging.GetFromContext(ctx).Info("hub started", slog.String("hub_id", h.cfg.HubID), slog.String("home_id", home.ID))

	return nil
}

// Stop winds the daemon down in dependency order: loops first, then batcher
// (flushes), then coalescer (drains), then entity subscriptions, drivers,
// bus and storage.
func (h *hub) Stop(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "stop-hub")
	defer span.End()

	log := logging.GetFromContext(ctx)

	h.mu.Lock()
	wasStarted := h.started
	h.started = false
	stopLoops := h.stopLoops
	h.stopLoops = nil
	h.mu.Unlock()

	// loops first, so no tick can hand out new subscriptions below
	for _, stop := range stopLoops {
		stop()
	}

	if wasStarted {
		h.stateStore.StopTelemetryBatching(ctx)
		h.commands.Stop(ctx)
	}

	h.mu.Lock()
	subs := h.subscriptions
	h.subscriptions = map[string]drivers.Unsubscribe{}
	standing := h.standing
	h.standing = nil
	h.mu.Unlock()

	for _, unsubscribe := range subs {
		unsubscribe()
	}
	for _, unsubscribe := range standing {
		unsubscribe()
	}

	if h.drivers != nil {
		for protocol, drv := range h.drivers.All() {
			if err := drv.Shutdown(ctx); err != nil {
				log.Error("driver shutdown failed", slog.String("protocol", protocol), slog.String("err", err.Error()))
			}
		}
	}

	if h.bus != nil {
		h.bus.Close()
	}

	if err := h.storage.Close(); err != nil {
		log.Error("failed to close storage", slog.String("err", err.Error()))
	}

	log.Info("hub stopped")

	return nil
}

func (h *hub) ProcessCommand(ctx context.Context, req types.CommandRequest) (types.CommandResult, error) {
	return h.commands.ProcessCommand(ctx, req)
}

func (h *hub) GetEntities(ctx context.Context, params map[string][]string) (types.Collection[types.Entity], error) {
	return h.registry.QueryEntities(ctx, h.currentHomeID(), params)
}

func (h *hub) GetDevicesByHome(ctx context.Context, homeID string) (types.Collection[types.Device], error) {
	return h.registry.QueryDevices(ctx, homeID, nil)
}

func (h *hub) GetEntityTelemetry(ctx context.Context, entityID string, params map[string][]string) ([]types.TelemetryPoint, error) {
	return h.stateStore.GetEntityTelemetry(ctx, entityID, params)
}

func (h *hub) GetStatus(ctx context.Context) (types.HubStatus, error) {
	stats, err := h.registry.Stats(ctx)
	if err != nil {
		return types.HubStatus{}, err
	}

	h.mu.Lock()
	startedAt := h.startedAt
	h.mu.Unlock()

	uptime := time.Duration(0)
	if !startedAt.IsZero() {
		uptime = time.Since(startedAt)
	}

	return types.HubStatus{
		HubID:     h.cfg.HubID,
		Version:   h.cfg.Version,
		Uptime:    uptime.Round(time.Second).String(),
		Homes:     stats.Homes,
		Devices:   stats.Devices,
		Entities:  stats.Entities,
		Drivers:   h.drivers.Health(ctx),
		StartedAt: startedAt,
	}, nil
}

func (h *hub) GetDriverHealth(ctx context.Context) map[string]bool {
	return h.drivers.Health(ctx)
}

func (h *hub) Bus() eventbus.EventBus              { return h.bus }
func (h *hub) Registry() registry.DeviceRegistry   { return h.registry }
func (h *hub) StateStore() statestore.StateStore   { return h.stateStore }
func (h *hub) Drivers() *drivers.Registry          { return h.drivers }
func (h *hub) Commands() commands.CommandProcessor { return h.commands }

func (h *hub) currentHomeID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.homeID
}

// persistEntityState is the standing entity/*/state handler; every state
// event lands in the state store regardless of which driver produced it.
func (h *hub) persistEntityState(ctx context.Context, msg eventbus.Message) {
	entityID, _ := msg.Payload["entityId"].(string)
	state, _ := msg.Payload["state"].(map[string]any)

	if entityID == "" || state == nil {
		return
	}

	if _, err := h.stateStore.WriteEntityState(ctx, entityID, state); err != nil {
		logging.GetFromContext(ctx).Error("failed to write entity state", slog.String("entity_id", entityID), slog.String("err", err.Error()))
	}
}

// persistTelemetry resolves the home for a raw telemetry sample and hands it
// to the state store. Samples that already carry a homeId were re-published
// by the state store after enqueueing and are skipped to break the cycle.
func (h *hub) persistTelemetry(ctx context.Context, msg eventbus.Message) {
	if homeID, _ := msg.Payload["homeId"].(string); homeID != "" {
		return
	}

	entityID, _ := msg.Payload["entityId"].(string)
	field, _ := msg.Payload["field"].(string)
	if entityID == "" || field == "" {
		return
	}

	entity, err := h.registry.GetEntity(ctx, entityID)
	if err != nil {
		logging.GetFromContext(ctx).Debug("dropping telemetry for unknown entity", slog.String("entity_id", entityID))
		return
	}

	unit, _ := msg.Payload["unit"].(string)
	h.stateStore.AppendTelemetry(ctx, entityID, entity.HomeID, field, msg.Payload["value"], unit, time.Time{})
}
