package hubdb

import (
	"time"
)

type Home struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex"`
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Device struct {
	ID          string  `gorm:"primaryKey"`
	HomeID      string  `gorm:"index;index:idx_devices_home_fingerprint,unique"`
	Fingerprint *string `gorm:"index:idx_devices_home_fingerprint,unique"`
	Protocol    string  `gorm:"index"`
	Vendor      string
	Model       string
	Name        string
	Address     string
	PairedAt    *time.Time
	LastSeen    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Entity struct {
	ID         string `gorm:"primaryKey"`
	DeviceID   string `gorm:"index;index:idx_entities_device_key,unique"`
	Key        string `gorm:"index:idx_entities_device_key,unique"`
	HomeID     string `gorm:"index"`
	Kind       string `gorm:"index"`
	Name       string
	Capability []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type EntityState struct {
	EntityID  string `gorm:"primaryKey"`
	State     []byte
	UpdatedAt time.Time
}

type TelemetryPoint struct {
	ID       uint   `gorm:"primaryKey"`
	EntityID string `gorm:"index:idx_telemetry_entity_ts"`
	HomeID   string `gorm:"index"`
	Field    string `gorm:"index"`
	Value    *float64
	Unit     string
	Ts       time.Time `gorm:"index:idx_telemetry_entity_ts"`
}

type Credential struct {
	DeviceID  string `gorm:"primaryKey"`
	Kind      string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt time.Time
}
