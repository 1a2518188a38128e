package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/shadowsmith/internal/envvar"
	"github.com/ekisa-team/shadowsmith/internal/params"
)

const validConfig = `version: "1"
storage:
  blueprints_dir: /srv/blueprints
target:
  module_path: nets.yaml
  model_class: TargetNet
  init_params: {hidden: [16, 8]}
  optimizer: {name: Adam, params: {lr: 0.001}}
  criterion: {name: CrossEntropyLoss, params: {label_smoothing: 0.1}}
shadow:
  criterion: {name: MSELoss}
  weights: shadow.safetensors
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(validConfig), "")
	require.NoError(t, err)

	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "TargetNet", cfg.Target.ModelClass)
	assert.True(t, cfg.Target.HasBlueprint())
	assert.Equal(t, "Adam", cfg.Target.Optimizer.Name)
	assert.Equal(t, 0.001, cfg.Target.Optimizer.Params["lr"])

	hidden, err := params.Lookup(cfg.Target.InitParams, "hidden", []int(nil))
	require.NoError(t, err)
	assert.Equal(t, []int{16, 8}, hidden)

	assert.False(t, cfg.Shadow.HasBlueprint())
	assert.Nil(t, cfg.Shadow.Optimizer)
	assert.Equal(t, "MSELoss", cfg.Shadow.Criterion.Name)
	assert.Nil(t, cfg.Shadow.InitParams)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "version: [1"},
		{"missing target", `version: "1"`},
		{"target without criterion", "version: \"1\"\ntarget: {model_class: Net, optimizer: {name: SGD}}\n"},
		{"unknown field", "version: \"1\"\ntarget: {model_class: Net, optimizer: {name: SGD}, criterion: {name: L1Loss}, extra: 1}\n"},
		{"module path without class", "version: \"1\"\ntarget: {model_class: Net, optimizer: {name: SGD}, criterion: {name: L1Loss}}\nshadow: {module_path: x.yaml}\n"},
		{"wrong version", "version: \"2\"\ntarget: {model_class: Net, optimizer: {name: SGD}, criterion: {name: L1Loss}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "")
			assert.Error(t, err)
		})
	}
}

func TestLoadAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o644))

	cfg, err := LoadAndValidate(path, "")
	require.NoError(t, err)
	assert.Equal(t, "shadow.safetensors", cfg.Shadow.Weights)

	_, err = LoadAndValidate(filepath.Join(dir, "missing.yaml"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaults(t *testing.T) {
	t.Setenv(envvar.ShadowsmithConfig, "")
	t.Setenv(envvar.ShadowsmithBlueprintsPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if runtime.GOOS == "linux" {
		assert.Equal(t, filepath.Join("/xdg", "shadowsmith"), DefaultConfigPath())
	}

	assert.Equal(t, filepath.Join(DefaultConfigPath(), "config.yaml"), DefaultConfigFile())
	assert.Equal(t, filepath.Join(DefaultConfigPath(), "blueprints"), ResolveBlueprintsPath(nil))
	assert.Equal(t, "/srv/blueprints", ResolveBlueprintsPath(&Config{Storage: StorageConfig{BlueprintsDir: "/srv/blueprints"}}))

	t.Setenv(envvar.ShadowsmithConfig, "/etc/shadowsmith.yaml")
	t.Setenv(envvar.ShadowsmithBlueprintsPath, "/opt/blueprints")
	assert.Equal(t, "/etc/shadowsmith.yaml", DefaultConfigFile())
	assert.Equal(t, "/opt/blueprints", ResolveBlueprintsPath(&Config{Storage: StorageConfig{BlueprintsDir: "/srv/blueprints"}}))
}
