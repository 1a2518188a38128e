package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ekisa-team/shadowsmith/internal/blueprint"
	"github.com/ekisa-team/shadowsmith/internal/config"
	"github.com/ekisa-team/shadowsmith/internal/shadow"
	"github.com/ekisa-team/shadowsmith/internal/target"
	"github.com/ekisa-team/shadowsmith/internal/xfs"
)

// app is everything a command needs once the config is loaded.
type app struct {
	cfg       *config.Config
	catalog   *blueprint.Catalog
	handler   *target.Handler
	assembler *shadow.Assembler
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.LoadAndValidate(flags.configPath, flags.schemaPath)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(flags.configPath)
	for _, m := range []*config.ModelConfig{&cfg.Target, &cfg.Shadow} {
		m.ModulePath = relativeTo(base, m.ModulePath)
		m.Weights = relativeTo(base, m.Weights)
	}

	return cfg, nil
}

func loadCatalog(cfg *config.Config) (*blueprint.Catalog, string, error) {
	catalog := blueprint.NewCatalog()

	dir := config.ResolveBlueprintsPath(cfg)
	if !xfs.Exists(dir) {
		slog.Debug("Blueprints directory not found, skipping scan", "dir", dir)
		return catalog, dir, nil
	}

	if err := catalog.ScanDir(dir); err != nil {
		return nil, dir, err
	}
	return catalog, dir, nil
}

func loadApp(flags *rootFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	catalog, _, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	handler, err := target.New(cfg.Target, catalog, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to set up target: %w", err)
	}

	assembler := shadow.NewAssembler(handler, shadow.WithInitParams(handler.InitParams()))
	if err := assembler.Configure(cfg.Shadow, catalog); err != nil {
		return nil, fmt.Errorf("failed to configure shadow model: %w", err)
	}

	return &app{cfg: cfg, catalog: catalog, handler: handler, assembler: assembler}, nil
}

func relativeTo(base, path string) string {
	if path == "" {
		return ""
	}
	path = xfs.ExpandTilde(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
