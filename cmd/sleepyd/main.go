package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ava-labs/sleepy"
	"github.com/ava-labs/sleepy/devnode"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	devices := flag.Uint("devices", 0, "Override number of devices to publish")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := devnode.DefaultConfig()
	if *configPath != "" {
		loaded, err := devnode.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *devices > 0 {
		cfg.Devices.Count = uint32(*devices)
	}
	if *debug {
		cfg.Log.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := devnode.NewLogger(cfg.Log.Debug)

	registry := sleepy.NewRegistry(logger)
	server := devnode.NewServer(logger, registry, cfg.Server)
	registry.SetRegistrar(server)

	for minor := uint32(0); minor < cfg.Devices.Count; minor++ {
		if _, err := registry.Register(minor); err != nil {
			logger.Error("Failed to register device",
				zap.Uint32("minor", minor),
				zap.Error(err))
			// Tear down whatever was registered before the failure.
			if err := registry.Close(); err != nil {
				logger.Error("Failed to tear down devices", zap.Error(err))
			}
			os.Exit(1)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := registry.Close(); err != nil {
			logger.Error("Failed to close registry", zap.Error(err))
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down server", zap.Error(err))
		}
	}()

	logger.Info("Serving devices", zap.Uint32("count", cfg.Devices.Count))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server error", zap.Error(err))
	}
}
