package main

import (
	"context"

	"github.com/tenancydeposit/tribunalrag/internal/config"
	"github.com/tenancydeposit/tribunalrag/internal/engine"
	"github.com/tenancydeposit/tribunalrag/internal/logging"
)

// openEngine loads configuration and builds a fully wired Engine, the single
// entrypoint every subcommand shares.
func openEngine(cfgPath string) (*engine.Engine, error) {
	cfg := config.MustLoad(cfgPath)

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}
	logging.SetDefault(log)

	return engine.Open(context.Background(), *cfg, log)
}
