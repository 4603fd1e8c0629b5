package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/synology-community/dsm-mqtt-bridge/bridge"
)

func main() {
	var (
		configPath string
		logLevel   string
	)

	flag.StringVar(&configPath, "config", "config.yaml", "path to the bridge configuration file")
	flag.StringVar(&logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")
	flag.Parse()

	cfg, err := bridge.Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger := bridge.NewLogger(cfg.LogLevel)

	b, err := bridge.New(cfg, logger)
	if err != nil {
		log.Fatal(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err.Error())
	}
}
