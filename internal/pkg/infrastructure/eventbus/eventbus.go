package eventbus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const (
	TopicTelemetry = "telemetry"
	TopicError     = "error"
)

func EntityStateTopic(entityID string) string {
	return "entity/" + entityID + "/state"
}

func DeviceLifecycleTopic(deviceID string) string {
	return "device/" + deviceID + "/lifecycle"
}

func CommandTopic(entityID string) string {
	return "command/" + entityID
}

type Message struct {
	Topic   string
	Payload map[string]any
}

type SubscriberFunc func(ctx context.Context, msg Message)

// Unsubscribe removes the subscription it was returned for. Calling it more
// than once is a no-op.
type Unsubscribe func()

type EventBus interface {
	Subscribe(topic string, fn SubscriberFunc) Unsubscribe
	Publish(topic string, payload map[string]any)
	Clear()
	Close()
}

type subscription struct {
	id uint64
	fn SubscriberFunc
}

type bus struct {
	ctx context.Context

	mu          sync.Mutex
	subscribers map[string][]*subscription
	queue       []Message
	nextID      uint64
	closed      bool

	wake chan struct{}
	done chan struct{}
}

// New creates an event bus and starts its dispatch worker. Delivery is
// asynchronous and in publish order: a single goroutine drains the queue, so
// subscribers for one message always run before those of the next.
func New(ctx context.Context) EventBus {
	b := &bus{
		ctx:         ctx,
		subscribers: map[string][]*subscription{},
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}

	go b.run()

	return b
}

func (b *bus) Subscribe(topic string, fn SubscriberFunc) Unsubscribe {
	b.mu.Lock()
	b.nextID++
	s := &subscription{id: b.nextID, fn: fn}
	b.subscribers[topic] = append(b.subscribers[topic], s)
	b.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			subs := b.subscribers[topic]
			for i, sub := range subs {
				if sub.id == s.id {
					b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			if len(b.subscribers[topic]) == 0 {
				delete(b.subscribers, topic)
			}
		})
	}
}

func (b *bus) Publish(topic string, payload map[string]any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, Message{Topic: topic, Payload: payload})
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers = map[string][]*subscription{}
	b.queue = nil
}

func (b *bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.done)
}

func (b *bus) run() {
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
			b.drain()
		}
	}
}

func (b *bus) drain() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		msg := b.queue[0]
		b.queue = b.queue[1:]
		subs := b.match(msg.Topic)
		b.mu.Unlock()

		for _, s := range subs {
			b.deliver(s, msg)
		}
	}
}

// match snapshots the subscribers whose topic pattern matches the concrete
// topic, so removals during dispatch never affect an in-flight delivery.
// The caller must hold b.mu.
func (b *bus) match(topic string) []*subscription {
	var matched []*subscription

	for pattern, subs := range b.subscribers {
		if topicMatches(pattern, topic) {
			matched = append(matched, subs...)
		}
	}

	return matched
}

func (b *bus) deliver(s *subscription, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			log := logging.GetFromContext(b.ctx)
			log.Error("subscriber failed", "topic", msg.Topic, "err", fmt.Sprintf("%v", r))

			if msg.Topic != TopicError {
				b.Publish(TopicError, map[string]any{
					"source": msg.Topic,
					"error":  fmt.Sprintf("%v", r),
				})
			}
		}
	}()

	s.fn(b.ctx, msg)
}

// topicMatches reports whether a subscription pattern matches a published
// topic. A "*" segment matches exactly one topic segment.
func topicMatches(pattern, topic string) bool {
	if pattern == topic {
		return true
	}

	if !strings.Contains(pattern, "*") {
		return false
	}

	patternSegments := strings.Split(pattern, "/")
	topicSegments := strings.Split(topic, "/")

	if len(patternSegments) != len(topicSegments) {
		return false
	}

	for i, seg := range patternSegments {
		if seg == "*" {
			continue
		}
		if seg != topicSegments[i] {
			return false
		}
	}

	return true
}
