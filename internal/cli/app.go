package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/bryanwahyu/deepscan/internal/bootstrap"
	"github.com/bryanwahyu/deepscan/internal/config"
	"github.com/bryanwahyu/deepscan/internal/logging"
)

func (d *deps) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(d.flags.configPath)
	if err != nil {
		return nil, err
	}
	if d.flags.provider != "" {
		cfg.AI.Provider = d.flags.provider
	}
	if d.flags.model != "" {
		cfg.AI.Model = d.flags.model
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// build wires the service. Archive stores are only connected for the server.
func (d *deps) build(ctx context.Context, archive bool) (*bootstrap.App, error) {
	cfg, err := d.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := d.logger(cfg, archive)
	if err != nil {
		return nil, err
	}
	return bootstrap.Build(ctx, cfg, logger, bootstrap.Options{
		Backend:   d.backend,
		NoArchive: !archive,
	})
}

// Interactive commands log warnings only so stderr stays readable.
func (d *deps) logger(cfg *config.Config, server bool) (*zap.Logger, error) {
	if d.backend != nil {
		return zap.NewNop(), nil
	}
	lc := cfg.Log
	if !server {
		lc = logging.Config{Level: "warn", Format: "console"}
	}
	return logging.New(lc)
}
