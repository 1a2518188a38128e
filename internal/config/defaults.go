package config

import (
	"os"
	"path/filepath"

	"github.com/ekisa-team/shadowsmith/internal/envvar"
	"github.com/ekisa-team/shadowsmith/internal/xfs"
)

// DefaultConfigPath returns the shadowsmith directory inside the user's
// config directory, or ./.shadowsmith when there is none.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".shadowsmith")
	}
	return filepath.Join(dir, "shadowsmith")
}

// DefaultConfigFile returns the config file used when none is given.
// Precedence:
// 1. SHADOWSMITH_CONFIG environment variable.
// 2. config.yaml in the default config directory.
func DefaultConfigFile() string {
	if p := os.Getenv(envvar.ShadowsmithConfig); p != "" {
		return xfs.ExpandTilde(p)
	}
	return filepath.Join(DefaultConfigPath(), "config.yaml")
}

// DefaultBlueprintsPath returns the default directory scanned for blueprint manifests.
func DefaultBlueprintsPath() string {
	return filepath.Join(DefaultConfigPath(), "blueprints")
}

// ResolveBlueprintsPath returns the directory to scan for blueprint manifests.
// Precedence:
// 1. SHADOWSMITH_BLUEPRINTS_PATH environment variable.
// 2. BlueprintsDir field in the config.
// 3. Default blueprints path.
func ResolveBlueprintsPath(cfg *Config) string {
	if p := os.Getenv(envvar.ShadowsmithBlueprintsPath); p != "" {
		return xfs.ExpandTilde(p)
	}
	if cfg != nil && cfg.Storage.BlueprintsDir != "" {
		return xfs.ExpandTilde(cfg.Storage.BlueprintsDir)
	}
	return DefaultBlueprintsPath()
}
