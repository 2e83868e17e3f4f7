package webevents

import (
	"context"
	"encoding/json"

	gosse "github.com/alexandrevicenzi/go-sse"
	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
)

// WebEvents pushes hub bus traffic to connected web clients over SSE. The
// concrete bus topic becomes the SSE event name, so a browser can listen per
// topic with addEventListener.
type WebEvents interface {
	Server() *gosse.Server
	Start(bus eventbus.EventBus)
	Shutdown()
	Publish(event string, data any) error
}

type webEvents struct {
	s    *gosse.Server
	subs []eventbus.Unsubscribe
}

func New() WebEvents {
	return &webEvents{
		s: gosse.NewServer(&gosse.Options{}),
	}
}

func (we *webEvents) Server() *gosse.Server {
	return we.s
}

func (we *webEvents) Start(bus eventbus.EventBus) {
	forward := func(ctx context.Context, msg eventbus.Message) {
		we.Publish(msg.Topic, msg.Payload)
	}

	for _, topic := range []string{
		"entity/*/state",
		"device/*/lifecycle",
		"command/*",
		eventbus.TopicTelemetry,
	} {
		we.subs = append(we.subs, bus.Subscribe(topic, forward))
	}
}

func (we *webEvents) Shutdown() {
	for _, unsubscribe := range we.subs {
		unsubscribe()
	}
	we.subs = nil

	we.s.Shutdown()
}

func (we *webEvents) Publish(event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}

	message := gosse.NewMessage("", string(b), event)
	we.s.SendMessage("", message)

	return nil
}
