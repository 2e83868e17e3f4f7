package msgbridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/diwise/home-hub/pkg/types"
	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

// MsgBridge republishes hub bus traffic on the AMQP topic exchange, so other
// services can follow device lifecycle, entity state, telemetry and command
// outcomes without polling the hub API. It is optional: the hub runs fine
// without a broker and the bridge is only wired when one is configured.
type MsgBridge interface {
	Start()
	Stop()
}

type msgBridge struct {
	bus       eventbus.EventBus
	messenger messaging.MsgContext
	subs      []eventbus.Unsubscribe
}

func New(bus eventbus.EventBus, messenger messaging.MsgContext) MsgBridge {
	return &msgBridge{
		bus:       bus,
		messenger: messenger,
	}
}

func (b *msgBridge) Start() {
	b.subs = append(b.subs,
		b.bus.Subscribe("device/*/lifecycle", b.forwardLifecycle),
		b.bus.Subscribe("entity/*/state", b.forwardEntityState),
		b.bus.Subscribe(eventbus.TopicTelemetry, b.forwardTelemetry),
		b.bus.Subscribe("command/*", b.forwardCommand),
	)
}

func (b *msgBridge) Stop() {
	for _, unsubscribe := range b.subs {
		unsubscribe()
	}
	b.subs = nil
}

func (b *msgBridge) forwardLifecycle(ctx context.Context, msg eventbus.Message) {
	deviceID, _ := msg.Payload["deviceId"].(string)
	event, _ := msg.Payload["type"].(string)

	if deviceID == "" || event == "" {
		return
	}

	details, _ := msg.Payload["details"].(string)

	b.publish(ctx, &types.DeviceLifecycle{
		DeviceID:  deviceID,
		Event:     event,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (b *msgBridge) forwardEntityState(ctx context.Context, msg eventbus.Message) {
	entityID, _ := msg.Payload["entityId"].(string)
	state, _ := msg.Payload["state"].(map[string]any)

	if entityID == "" || state == nil {
		return
	}

	b.publish(ctx, &types.EntityStateUpdated{
		EntityID:  entityID,
		State:     state,
		Timestamp: time.Now().UTC(),
	})
}

func (b *msgBridge) forwardTelemetry(ctx context.Context, msg eventbus.Message) {
	// the state store re-publishes each accepted sample enriched with its
	// home; forwarding the raw driver sample as well would send everything
	// twice
	if homeID, _ := msg.Payload["homeId"].(string); homeID == "" {
		return
	}

	entityID, _ := msg.Payload["entityId"].(string)
	field, _ := msg.Payload["field"].(string)

	if entityID == "" || field == "" {
		return
	}

	unit, _ := msg.Payload["unit"].(string)

	timestamp := time.Now().UTC()
	if ts, _ := msg.Payload["ts"].(string); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			timestamp = parsed
		}
	}

	b.publish(ctx, &types.TelemetryReceived{
		EntityID:  entityID,
		Field:     field,
		Value:     msg.Payload["value"],
		Unit:      unit,
		Timestamp: timestamp,
	})
}

func (b *msgBridge) forwardCommand(ctx context.Context, msg eventbus.Message) {
	entityID, _ := msg.Payload["entityId"].(string)
	capability, _ := msg.Payload["capability"].(string)

	if entityID == "" || capability == "" {
		return
	}

	success, _ := msg.Payload["success"].(bool)
	latency, _ := msg.Payload["latency"].(int64)

	b.publish(ctx, &types.CommandExecuted{
		EntityID:  entityID,
		Command:   capability,
		Success:   success,
		LatencyMs: latency,
		Timestamp: time.Now().UTC(),
	})
}

func (b *msgBridge) publish(ctx context.Context, message messaging.TopicMessage) {
	if err := b.messenger.PublishOnTopic(ctx, message); err != nil {
		logging.GetFromContext(ctx).Error("failed to publish on topic",
			slog.String("topic", message.TopicName()), slog.String("err", err.Error()))
	}
}
