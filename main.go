package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"GroundLink/config"
	"GroundLink/internal/link"
	"GroundLink/internal/logger"
)

func main() {
	configFile := flag.String("config", "config/config.yaml", "Path to configuration file")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	logger.Info("Loading configuration from %s", *configFile)
	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	if *logLevel != "" {
		logger.SetLevelFromString(*logLevel)
	} else {
		logger.SetLevelFromString(cfg.Log.Level)
	}
	logger.Info("Configuration loaded successfully (Log level: %s)", logger.GetLevelString())

	// Discovery progress goes straight to the log in the demo binary;
	// an embedding application would forward it to its front end.
	progress := func(res link.Result) {
		if res.Message != "" {
			logger.Info("[DISCOVERY] %s", res.Message)
		} else if res.Data != nil {
			logger.Info("[DISCOVERY] Waiting for heartbeats... %vs", res.Data)
		}
	}

	l, err := link.Open(cfg, progress)
	if err != nil {
		logger.Fatal("Failed to open radio link on %s: %v", cfg.GetAddress(), err)
	}

	for _, v := range l.ListVehicles() {
		logger.Info("Vehicle %d:%d (%s)", v.SystemID, v.ComponentID, v.VehicleType)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Info("Radio link running. Press Ctrl+C to stop.")
	<-sigCh

	logger.Info("Shutting down...")
	l.Close()
}
