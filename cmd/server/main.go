package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scenewire/scenewire/internal/bridge"
	"github.com/scenewire/scenewire/internal/config"
	"github.com/scenewire/scenewire/internal/core/assets"
	"github.com/scenewire/scenewire/internal/core/events/bus"
	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/injector"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to YAML config (optional)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("scenewire", bridge.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := log.New(log.ParseLevel(cfg.Log.Level))
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", log.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	host, err := injector.ProvideHost(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = host.Index.Close() }()

	host.Bus.Subscribe(bus.Wildcard, func(ev bus.Event) error {
		logger.Debug("scene event",
			log.String("type", ev.Type),
			log.String("source", ev.Source))
		return nil
	})

	if n, err := host.Index.Rebuild(ctx); err != nil {
		logger.Warn("vault index rebuild failed", log.Error(err))
	} else {
		logger.Info("vault indexed", log.Int("definitions", n))
	}
	if cfg.Assets.Watch {
		watcher := assets.NewWatcher(host.Index, 0, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("vault watcher stopped", log.Error(err))
			}
		}()
	}

	host.Loop.OnTick(host.Scene.Update)
	if err := host.Loop.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = host.Loop.Stop() }()

	srv := bridge.NewServer(host, host.Commands, bridge.Options{
		Addr:           cfg.Addr(),
		Transports:     cfg.Server.Transports,
		MaxSessions:    cfg.Server.MaxSessions,
		MaxLineBytes:   cfg.Server.MaxLineBytes,
		CommandTimeout: cfg.Server.CommandTimeout.Std(),
	}, logger)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info("scenewire bridge up",
		log.String("version", bridge.Version),
		log.String("scene", host.Scene.Name()),
		log.Strings("listening", srv.Addrs()))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	if err := srv.Close(); err != nil {
		logger.Warn("bridge close", log.Error(err))
	}
	return nil
}
