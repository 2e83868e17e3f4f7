package drivers

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

var ErrProtocolNotFound = fmt.Errorf("no driver registered for protocol")

// Registry maps protocol tags to driver instances. It is safe for concurrent
// use; registration is expected at startup but drivers may come and go.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

func NewRegistry() *Registry {
	return &Registry{
		drivers: map[string]Driver{},
	}
}

func (r *Registry) Register(protocol string, driver Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drivers[protocol] = driver
}

// RegisterAndInitialize runs the driver's Initialize before it becomes
// visible through Get. A failing Initialize leaves the registry untouched.
func (r *Registry) RegisterAndInitialize(ctx context.Context, protocol string, driver Driver) error {
	if err := driver.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize driver for protocol %s: %w", protocol, err)
	}

	r.Register(protocol, driver)

	return nil
}

func (r *Registry) Unregister(protocol string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.drivers, protocol)
}

func (r *Registry) Get(protocol string) (Driver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	driver, ok := r.drivers[protocol]
	return driver, ok
}

func (r *Registry) Has(protocol string) bool {
	_, ok := r.Get(protocol)
	return ok
}

func (r *Registry) Protocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	protocols := make([]string, 0, len(r.drivers))
	for protocol := range r.drivers {
		protocols = append(protocols, protocol)
	}
	sort.Strings(protocols)

	return protocols
}

func (r *Registry) All() map[string]Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make(map[string]Driver, len(r.drivers))
	for protocol, driver := range r.drivers {
		all[protocol] = driver
	}

	return all
}

// Health reports liveness per registered protocol. Drivers implementing
// HealthChecker answer for themselves; others count as live by being
// registered.
func (r *Registry) Health(ctx context.Context) map[string]bool {
	health := map[string]bool{}

	for protocol, driver := range r.All() {
		if hc, ok := driver.(HealthChecker); ok {
			health[protocol] = hc.Healthy(ctx)
			continue
		}
		health[protocol] = true
	}

	return health
}
