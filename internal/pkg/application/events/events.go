package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"
	yaml "gopkg.in/yaml.v2"
)

const (
	TypeDeviceLifecycle = "homehub.device.lifecycle"
	TypeEntityState     = "homehub.entity.state"
)

// EventSender notifies external subscribers about hub events using
// CloudEvents over HTTP. Which event types reach which endpoints is decided
// by the notification configuration.
type EventSender interface {
	Start(bus eventbus.EventBus)
	Send(ctx context.Context, eventType string, payload map[string]any) error
	Shutdown()
}

type eventSender struct {
	client      cloudevents.Client
	subscribers map[string][]SubscriberConfig
	subs        []eventbus.Unsubscribe
}

func New(cfg *Config) (EventSender, error) {
	client, err := cloudevents.NewClientHTTP()
	if err != nil {
		return nil, err
	}

	e := &eventSender{
		client:      client,
		subscribers: make(map[string][]SubscriberConfig),
	}

	if cfg != nil {
		for _, n := range cfg.Notifications {
			e.subscribers[n.Type] = n.Subscribers
		}
	}

	return e, nil
}

// Start forwards device lifecycle and entity state bus traffic to the
// configured webhook subscribers. Delivery failures are logged by Send.
func (e *eventSender) Start(bus eventbus.EventBus) {
	e.subs = append(e.subs,
		bus.Subscribe("device/*/lifecycle", e.forward(TypeDeviceLifecycle)),
		bus.Subscribe("entity/*/state", e.forward(TypeEntityState)),
	)
}

func (e *eventSender) Shutdown() {
	for _, unsubscribe := range e.subs {
		unsubscribe()
	}
	e.subs = nil
}

func (e *eventSender) forward(eventType string) eventbus.SubscriberFunc {
	return func(ctx context.Context, msg eventbus.Message) {
		e.Send(ctx, eventType, msg.Payload)
	}
}

func (e *eventSender) Send(ctx context.Context, eventType string, payload map[string]any) error {
	if s, ok := e.subscribers[eventType]; !ok || len(s) == 0 {
		return nil
	}

	event := cloudevents.NewEvent()
	event.SetID(uuid.NewString())
	event.SetTime(time.Now().UTC())
	event.SetSource("github.com/diwise/home-hub")
	event.SetType(eventType)

	if err := event.SetData(cloudevents.ApplicationJSON, payload); err != nil {
		return err
	}

	logger := logging.GetFromContext(ctx)

	var err error

	for _, s := range e.subscribers[eventType] {
		ctxWithTarget := cloudevents.ContextWithTarget(ctx, s.Endpoint)

		result := e.client.Send(ctxWithTarget, event)
		if cloudevents.IsUndelivered(result) || errors.Is(result, unix.ECONNREFUSED) {
			logger.Error("failed to deliver event", slog.String("endpoint", s.Endpoint), slog.String("err", result.Error()))
			err = fmt.Errorf("%w", result)
		}
	}

	return err
}

type SubscriberConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type Notification struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Type        string             `yaml:"type"`
	Subscribers []SubscriberConfig `yaml:"subscribers"`
}

type Config struct {
	Notifications []Notification `yaml:"notifications"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
