package hubdb

import (
	"time"
)

type ConditionFunc func(*condition) *condition

type condition struct {
	homeID   string
	deviceID string
	entityID string
	kind     string
	protocol string
	field    string
	since    time.Time
	limit    int
	offset   int
}

func newCondition(conditions ...ConditionFunc) *condition {
	c := &condition{
		limit: 1000,
	}

	for _, fn := range conditions {
		c = fn(c)
	}

	return c
}

func WithHomeID(homeID string) ConditionFunc {
	return func(c *condition) *condition {
		c.homeID = homeID
		return c
	}
}

func WithDeviceID(deviceID string) ConditionFunc {
	return func(c *condition) *condition {
		c.deviceID = deviceID
		return c
	}
}

func WithEntityID(entityID string) ConditionFunc {
	return func(c *condition) *condition {
		c.entityID = entityID
		return c
	}
}

func WithKind(kind string) ConditionFunc {
	return func(c *condition) *condition {
		c.kind = kind
		return c
	}
}

func WithProtocol(protocol string) ConditionFunc {
	return func(c *condition) *condition {
		c.protocol = protocol
		return c
	}
}

func WithField(field string) ConditionFunc {
	return func(c *condition) *condition {
		c.field = field
		return c
	}
}

func WithSince(since time.Time) ConditionFunc {
	return func(c *condition) *condition {
		c.since = since
		return c
	}
}

func WithLimit(limit int) ConditionFunc {
	return func(c *condition) *condition {
		if limit > 0 {
			c.limit = limit
		}
		return c
	}
}

func WithOffset(offset int) ConditionFunc {
	return func(c *condition) *condition {
		if offset >= 0 {
			c.offset = offset
		}
		return c
	}
}
