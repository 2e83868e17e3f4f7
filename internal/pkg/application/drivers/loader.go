package drivers

import (
	"context"

	"github.com/diwise/home-hub/internal/pkg/infrastructure/eventbus"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

// Environment is what every driver gets to work with, regardless of
// protocol. Protocol specific settings are bound into the factory closure by
// whoever assembles the factory table.
type Environment struct {
	Bus         eventbus.EventBus
	Credentials CredentialSource
}

type Factory func(ctx context.Context, env Environment) (Driver, error)

// Load instantiates and registers one driver per factory. A driver that
// fails to construct or initialize is logged and skipped; it never prevents
// the remaining drivers from loading. Each loaded driver is initialized
// exactly once, by RegisterAndInitialize.
func Load(ctx context.Context, registry *Registry, env Environment, factories map[string]Factory) {
	log := logging.GetFromContext(ctx)

	for protocol, newDriver := range factories {
		driver, err := newDriver(ctx, env)
		if err != nil {
			log.Error("failed to construct driver", "protocol", protocol, "err", err.Error())
			continue
		}

		if err := registry.RegisterAndInitialize(ctx, protocol, driver); err != nil {
			log.Error("failed to initialize driver", "protocol", protocol, "err", err.Error())
			continue
		}

		log.Info("driver loaded", "protocol", protocol)
	}
}
