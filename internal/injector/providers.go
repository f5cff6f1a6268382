package injector

import (
	"os"
	"path/filepath"
	"time"

	"github.com/scenewire/scenewire/internal/bridge"
	"github.com/scenewire/scenewire/internal/config"
	"github.com/scenewire/scenewire/internal/core/assets"
	"github.com/scenewire/scenewire/internal/core/autowire"
	"github.com/scenewire/scenewire/internal/core/components"
	"github.com/scenewire/scenewire/internal/core/events/bus"
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/mainloop"
	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// Providers for the host object graph. The stub in injector.go binds them and
// wire_gen.go is the generator output checked into the tree.

func provideFieldRegistry() (*fields.Registry, error) {
	reg := fields.NewRegistry()
	if err := components.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func provideScene(events *bus.Bus) *scene.Scene {
	return scene.New("Main", events)
}

func provideLibrary(cfg *config.Config, logger *log.Logger) (*assets.Library, error) {
	if err := os.MkdirAll(cfg.Assets.VaultRoot, 0o755); err != nil {
		return nil, err
	}
	return assets.NewLibrary(cfg.Assets.VaultRoot, logger)
}

func provideIndex(cfg *config.Config, lib *assets.Library, logger *log.Logger) (*assets.Index, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Assets.IndexPath), 0o755); err != nil {
		return nil, err
	}
	return assets.OpenIndex(cfg.Assets.IndexPath, lib, logger)
}

func provideLoop(cfg *config.Config, logger *log.Logger) *mainloop.Loop {
	return mainloop.New(mainloop.Options{
		TickInterval:    cfg.Loop.TickInterval.Std(),
		QueueSize:       cfg.Loop.QueueSize,
		MaxDrainPerTick: cfg.Loop.MaxDrainTick,
	}, logger)
}

func provideWirer(sc *scene.Scene, reg *fields.Registry, logger *log.Logger) *autowire.Wirer {
	return autowire.New(sc, reg, logger)
}

func provideCommands() (*bridge.Registry, error) {
	commands := bridge.NewRegistry()
	if err := bridge.RegisterBuiltins(commands); err != nil {
		return nil, err
	}
	return commands, nil
}

func provideHost(
	sc *scene.Scene,
	reg *fields.Registry,
	lib *assets.Library,
	idx *assets.Index,
	wirer *autowire.Wirer,
	events *bus.Bus,
	loop *mainloop.Loop,
	commands *bridge.Registry,
	logger *log.Logger,
) *bridge.Host {
	return &bridge.Host{
		Scene:     sc,
		Registry:  reg,
		Library:   lib,
		Index:     idx,
		Wirer:     wirer,
		Bus:       events,
		Loop:      loop,
		Commands:  commands,
		Log:       logger,
		StartedAt: time.Now(),
	}
}
