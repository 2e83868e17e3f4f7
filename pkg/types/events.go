package types

import (
	"encoding/json"
	"time"
)

type DeviceLifecycle struct {
	DeviceID  string    `json:"deviceID"`
	Event     string    `json:"event"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (d *DeviceLifecycle) ContentType() string {
	return "application/json"
}
func (d *DeviceLifecycle) TopicName() string {
	return "device.lifecycle"
}
func (d *DeviceLifecycle) Body() []byte {
	b, _ := json.Marshal(d)
	return b
}

type EntityStateUpdated struct {
	EntityID  string         `json:"entityID"`
	State     map[string]any `json:"state"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e *EntityStateUpdated) ContentType() string {
	return "application/json"
}
func (e *EntityStateUpdated) TopicName() string {
	return "entity.stateUpdated"
}
func (e *EntityStateUpdated) Body() []byte {
	b, _ := json.Marshal(e)
	return b
}

type TelemetryReceived struct {
	EntityID  string    `json:"entityID"`
	Field     string    `json:"field"`
	Value     any       `json:"value"`
	Unit      string    `json:"unit,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (t *TelemetryReceived) ContentType() string {
	return "application/json"
}
func (t *TelemetryReceived) TopicName() string {
	return "telemetry.received"
}
func (t *TelemetryReceived) Body() []byte {
	b, _ := json.Marshal(t)
	return b
}

type CommandExecuted struct {
	EntityID  string    `json:"entityID"`
	Command   string    `json:"command"`
	Success   bool      `json:"success"`
	LatencyMs int64     `json:"latencyMs"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *CommandExecuted) ContentType() string {
	return "application/json"
}
func (c *CommandExecuted) TopicName() string {
	return "command.executed"
}
func (c *CommandExecuted) Body() []byte {
	b, _ := json.Marshal(c)
	return b
}
