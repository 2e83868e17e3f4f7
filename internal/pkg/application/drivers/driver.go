package drivers

import (
	"context"
)

// DeviceDescriptor is what a driver reports about a physical unit it can
// see on the network. The registry owns the persisted identity; descriptors
// are throwaway snapshots.
type DeviceDescriptor struct {
	ID       string
	Name     string
	Protocol string
	Vendor   string
	Model    string
	Address  string
	Metadata map[string]string
}

// Fingerprint returns the stable physical identity of the unit, if the
// protocol provides one. It survives reboots and address changes.
func (d DeviceDescriptor) Fingerprint() string {
	return d.Metadata["fingerprint"]
}

type EntityDescriptor struct {
	ID       string
	Name     string
	Kind     string
	Metadata map[string]string
}

// Key returns the driver local key the entity is deduplicated on within its
// device, falling back to the entity id when the driver assigns none.
func (e EntityDescriptor) Key() string {
	if key, ok := e.Metadata["key"]; ok && key != "" {
		return key
	}
	return e.ID
}

type Command struct {
	Capability string
	Value      any
	Metadata   map[string]any
}

type Result struct {
	OK    bool
	Error string
	Data  map[string]any
}

func Failed(msg string) Result {
	return Result{OK: false, Error: msg}
}

type StateCallback func(entityID string, state map[string]any)

// Unsubscribe releases a state subscription. Calling it more than once is a
// no-op.
type Unsubscribe func()

// Driver is the capability set every protocol adapter satisfies. All methods
// return errors instead of panicking; a driver failure must never take the
// hub down with it.
//
//go:generate moq -rm -out driver_mock.go . Driver
type Driver interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error

	Discover(ctx context.Context) ([]DeviceDescriptor, error)
	Pair(ctx context.Context, deviceID string, credentials []byte) error
	Connect(ctx context.Context, deviceID, address string) error
	Disconnect(ctx context.Context, deviceID string) error

	DeviceInfo(ctx context.Context, deviceID string) (DeviceDescriptor, bool)
	Entities(ctx context.Context, deviceID string) ([]EntityDescriptor, error)

	Subscribe(ctx context.Context, entityID string, cb StateCallback) (Unsubscribe, error)
	Invoke(ctx context.Context, entityID string, cmd Command) Result
}

// HealthChecker is implemented by drivers that can report liveness beyond
// being registered and initialized.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// CredentialSource lets a driver read the credential blob stored for one of
// its devices without depending on the registry service.
type CredentialSource interface {
	GetCredentials(ctx context.Context, deviceID, kind string) ([]byte, error)
}

// CredentialStore is implemented by credential sources that can also persist
// credentials a driver mints on its own, such as a bridge API key obtained
// during pairing. Drivers discover support with a type assertion.
type CredentialStore interface {
	StoreCredentials(ctx context.Context, deviceID, kind string, data []byte) error
}
