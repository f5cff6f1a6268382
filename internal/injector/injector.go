//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/scenewire/scenewire/internal/bridge"
	"github.com/scenewire/scenewire/internal/config"
	"github.com/scenewire/scenewire/internal/core/events/bus"
	"github.com/scenewire/scenewire/internal/core/observability/log"
)

// ProvideHost assembles the bridge host graph from configuration. Regenerate
// wire_gen.go with `wire ./internal/injector` after changing the provider set.
func ProvideHost(cfg *config.Config, logger *log.Logger) (*bridge.Host, error) {
	wire.Build(
		bus.New,
		provideFieldRegistry,
		provideScene,
		provideLibrary,
		provideIndex,
		provideLoop,
		provideWirer,
		provideCommands,
		provideHost,
	)
	return nil, nil
}
