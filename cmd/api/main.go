package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/universo-platformo/updl-engine/internal/api"
	"github.com/universo-platformo/updl-engine/internal/config"
	"github.com/universo-platformo/updl-engine/internal/events"
	"github.com/universo-platformo/updl-engine/internal/publish"
	"github.com/universo-platformo/updl-engine/internal/updl"
	"github.com/universo-platformo/updl-engine/internal/version"
)

func main() {
	configPath := flag.String("config", "publish.yaml", "path to publish.yaml")
	flag.Parse()

	logger := logrus.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).Fatal("failed to load publish.yaml")
		}
		logger.WithField("path", *configPath).Warn("no publish.yaml found; using defaults")
		cfg = config.Default()
	}

	level, err := logrus.ParseLevel(cfg.LogLevel())
	if err != nil {
		logger.WithError(err).Fatal("invalid log level")
	}
	logger.SetLevel(level)

	store, err := publish.OpenStore(cfg.DatabasePath())
	if err != nil {
		logger.WithError(err).Fatal("failed to open publication store")
	}

	registry := publish.DefaultRegistry(logger)
	processor := updl.NewProcessor(logger)
	svc := publish.NewService(registry, processor, store, logger)

	api.InitMetrics()
	host, _ := os.Hostname()
	_, _ = events.Emit("info", "system.startup", "publish api starting", map[string]interface{}{
		"service":  "api",
		"hostname": host,
		"version":  version.Version,
		"pid":      os.Getpid(),
	})

	server := api.NewServer(svc, cfg.DefaultTemplate(), logger)
	if err := server.ListenAndServe(cfg.Port()); err != nil {
		logger.WithError(err).Fatal("api server failed")
	}
}
