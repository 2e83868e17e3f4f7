package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/diwise/home-hub/internal/pkg/application/drivers"
	"github.com/diwise/home-hub/internal/pkg/application/registry"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

// startLoop runs tick on a fixed cadence until the returned stop function is
// called or the context dies. Stop blocks until the loop has wound down, so
// no tick is in flight afterwards.
func (h *hub) startLoop(ctx context.Context, interval time.Duration, immediate bool, tick func(context.Context)) func() {
	done := make(chan bool)
	stopped := make(chan bool)

	go func() {
		defer close(stopped)

		if immediate {
			tick(ctx)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				tick(ctx)
			}
		}
	}()

	return func() {
		select {
		case done <- true:
			<-stopped
		case <-stopped:
		}
	}
}

// discoverTick asks every loaded driver for visible devices and adopts each
// one: registry upsert, auto-connect when an address is known, pairing on
// first successful connect, entity enumeration. One broken device never
// stops the sweep.
func (h *hub) discoverTick(ctx context.Context) {
	log := logging.GetFromContext(ctx)

	for protocol, drv := range h.drivers.All() {
		descriptors, err := drv.Discover(ctx)
		if err != nil {
			log.Error("discovery failed", slog.String("protocol", protocol), slog.String("err", err.Error()))
			continue
		}

		for _, desc := range descriptors {
			if err := h.adoptDevice(ctx, protocol, drv, desc); err != nil {
				log.Error("failed to adopt device", slog.String("protocol", protocol), slog.String("device_id", desc.ID), slog.String("err", err.Error()))
			}
		}
	}
}

func (h *hub) adoptDevice(ctx context.Context, protocol string, drv drivers.Driver, desc drivers.DeviceDescriptor) error {
	device, err := h.registry.UpsertDevice(ctx, h.currentHomeID(), desc)
	if err != nil {
		return err
	}

	h.bus.Publish(eventbus.DeviceLifecycleTopic(device.ID), map[string]any{
		"deviceId": device.ID,
		"protocol": protocol,
		"type":     "discovered",
	})

	if desc.Address == "" {
		return nil
	}

	// the registry row is the canonical identity; drivers key their
	// connections on it, not on whatever id they discovered
	if err := drv.Connect(ctx, device.ID, desc.Address); err != nil {
		return fmt.Errorf("auto-connect failed: %w", err)
	}

	if !device.IsPaired() {
		if err := h.registry.MarkDevicePaired(ctx, device.ID); err != nil {
			return err
		}

		h.bus.Publish(eventbus.DeviceLifecycleTopic(device.ID), map[string]any{
			"deviceId": device.ID,
			"protocol": protocol,
			"type":     "paired",
		})
	}

	// seed an empty credential as the paired marker, but never clobber a
	// real secret a driver has stored for this device
	if _, err := h.registry.GetCredentials(ctx, device.ID, protocol); errors.Is(err, registry.ErrCredentialsNotFound) {
		if err := h.registry.StoreCredentials(ctx, device.ID, protocol, []byte{}); err != nil {
			return err
		}
	}

	entities, err := drv.Entities(ctx, device.ID)
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}

	for _, entity := range entities {
		if _, err := h.registry.UpsertEntity(ctx, device.HomeID, device.ID, entity); err != nil {
			return fmt.Errorf("failed to upsert entity %s: %w", entity.ID, err)
		}
	}

	return nil
}

// subscribeTick walks the entity table and opens driver subscriptions for
// everything paired that has none yet. Handles are tracked per entity and
// released on Stop.
func (h *hub) subscribeTick(ctx context.Context) {
	log := logging.GetFromContext(ctx)

	entities, err := h.registry.QueryEntities(ctx, h.currentHomeID(), nil)
	if err != nil {
		log.Error("failed to enumerate entities", slog.String("err", err.Error()))
		return
	}

	for _, entity := range entities.Data {
		if h.isSubscribed(entity.ID) {
			continue
		}

		device, err := h.registry.GetDevice(ctx, entity.DeviceID)
		if err != nil {
			continue
		}

		drv, ok := h.drivers.Get(device.Protocol)
		if !ok {
			continue
		}

		// no credentials means the device never completed pairing
		if _, err := h.registry.GetCredentials(ctx, device.ID, device.Protocol); err != nil {
			continue
		}

		unsubscribe, err := drv.Subscribe(ctx, entity.ID, h.stateCallback(entity))
		if err != nil {
			log.Debug("subscribe failed", slog.String("entity_id", entity.ID), slog.String("err", err.Error()))
			continue
		}

		h.trackSubscription(entity.ID, unsubscribe)
		log.Debug("subscribed to entity", slog.String("entity_id", entity.ID), slog.String("kind", entity.Kind))
	}
}

// stateCallback publishes each driver state sample as an entity state event
// and, for sensors carrying a value, as a raw telemetry sample.
func (h *hub) stateCallback(entity types.Entity) drivers.StateCallback {
	return func(entityID string, state map[string]any) {
		h.bus.Publish(eventbus.EntityStateTopic(entityID), map[string]any{
			"entityId": entityID,
			"state":    state,
		})

		if entity.Kind != types.KindSensor {
			return
		}

		value, ok := state["value"]
		if !ok {
			return
		}

		payload := map[string]any{
			"entityId": entityID,
			"field":    telemetryFieldName(entity.Name),
			"value":    value,
		}

		unit, _ := state["unit"].(string)
		if unit == "" {
			unit, _ = entity.Capability.Attributes["unit"].(string)
		}
		if unit != "" {
			payload["unit"] = unit
		}

		h.bus.Publish(eventbus.TopicTelemetry, payload)
	}
}

func (h *hub) isSubscribed(entityID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.subscriptions[entityID]
	return ok
}

func (h *hub) trackSubscription(entityID string, unsubscribe drivers.Unsubscribe) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscriptions[entityID] = unsubscribe
}

// telemetryFieldName derives the time-series field from the entity name:
// lowercased, whitespace runs collapsed to underscores. Names that look like
// a CO₂ reading all map to the canonical co2 field.
func telemetryFieldName(entityName string) string {
	name := strings.ToLower(strings.TrimSpace(entityName))
	if name == "" {
		return "value"
	}

	if strings.Contains(name, "co2") || strings.Contains(name, "co₂") {
		return "co2"
	}

	return strings.Join(strings.Fields(name), "_")
}
