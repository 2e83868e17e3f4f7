package types

import (
	"time"
)

type Home struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone,omitempty"`
}

type Device struct {
	ID          string     `json:"id"`
	HomeID      string     `json:"homeID"`
	Protocol    string     `json:"protocol"`
	Name        string     `json:"name"`
	Vendor      string     `json:"vendor,omitempty"`
	Model       string     `json:"model,omitempty"`
	Address     string     `json:"address,omitempty"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	PairedAt    *time.Time `json:"pairedAt,omitempty"`
	LastSeen    time.Time  `json:"lastSeen"`
}

func (d Device) IsPaired() bool {
	return d.PairedAt != nil
}

type Entity struct {
	ID         string     `json:"id"`
	DeviceID   string     `json:"deviceID"`
	HomeID     string     `json:"homeID"`
	Kind       string     `json:"kind"`
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	Capability Capability `json:"capability"`
}

// Capability describes what an entity can do or report.
type Capability struct {
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
	LastState  map[string]any `json:"lastState,omitempty"`
}

type EntityState struct {
	EntityID  string         `json:"entityID"`
	State     map[string]any `json:"state"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type TelemetryPoint struct {
	EntityID string    `json:"entityID"`
	HomeID   string    `json:"homeID"`
	Field    string    `json:"field"`
	Value    *float64  `json:"value"`
	Unit     string    `json:"unit,omitempty"`
	Ts       time.Time `json:"ts"`
}

const (
	KindLight             string = "light"
	KindSwitch            string = "switch"
	KindSensor            string = "sensor"
	KindBinarySensor      string = "binary_sensor"
	KindCover             string = "cover"
	KindClimate           string = "climate"
	KindFan               string = "fan"
	KindLock              string = "lock"
	KindAlarm             string = "alarm"
	KindAlarmControlPanel string = "alarm_control_panel"
	KindButton            string = "button"
	KindNumber            string = "number"
	KindSelect            string = "select"
	KindText              string = "text"
	KindTextSensor        string = "text_sensor"
	KindTime              string = "time"
	KindDate              string = "date"
	KindDateTime          string = "datetime"
	KindImage             string = "image"
	KindCamera            string = "camera"
	KindMediaPlayer       string = "media_player"
	KindNotify            string = "notify"
	KindUpdate            string = "update"
	KindVacuum            string = "vacuum"
	KindValve             string = "valve"
	KindSiren             string = "siren"
	KindEvent             string = "event"
	KindWaterHeater       string = "water_heater"
	KindWeather           string = "weather"
)

type Collection[T any] struct {
	Data       []T    `json:"data"`
	Count      uint64 `json:"count"`
	Offset     uint64 `json:"offset"`
	Limit      uint64 `json:"limit"`
	TotalCount uint64 `json:"totalCount"`
}

type HubStatus struct {
	HubID     string          `json:"hubID"`
	Version   string          `json:"version"`
	Uptime    string          `json:"uptime"`
	Homes     int64           `json:"homes"`
	Devices   int64           `json:"devices"`
	Entities  int64           `json:"entities"`
	Drivers   map[string]bool `json:"drivers"`
	StartedAt time.Time       `json:"startedAt"`
}

type CommandRequest struct {
	EntityID   string         `json:"entityID"`
	Capability string         `json:"capability"`
	Value      any            `json:"value"`
	UserID     string         `json:"userID,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type CommandResult struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	LatencyMs int64          `json:"latencyMs"`
}
