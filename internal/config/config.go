package config

import (
	"github.com/ekisa-team/shadowsmith/internal/params"
)

// Config holds the main configuration for the application.
type Config struct {
	Version string        `json:"version"           yaml:"version"`
	Storage StorageConfig `json:"storage,omitempty" yaml:"storage,omitempty"`
	Target  ModelConfig   `json:"target"            yaml:"target"`
	Shadow  ModelConfig   `json:"shadow,omitempty"  yaml:"shadow,omitempty"`
}

// StorageConfig holds filesystem locations.
type StorageConfig struct {
	BlueprintsDir string `json:"blueprints_dir,omitempty" yaml:"blueprints_dir,omitempty"`
	ModelsDir     string `json:"models_dir,omitempty"     yaml:"models_dir,omitempty"`
}

// ModelConfig describes how to build one model with its training pieces.
// For the shadow section every field is optional; what is left out is
// supplied by the target.
type ModelConfig struct {
	// ModulePath is the blueprint manifest to import ModelClass from. When
	// empty, ModelClass is looked up among the scanned blueprints.
	ModulePath string           `json:"module_path,omitempty" yaml:"module_path,omitempty"`
	ModelClass string           `json:"model_class,omitempty" yaml:"model_class,omitempty"`
	InitParams params.Params    `json:"init_params,omitempty" yaml:"init_params,omitempty"`
	Optimizer  *ComponentConfig `json:"optimizer,omitempty"   yaml:"optimizer,omitempty"`
	Criterion  *ComponentConfig `json:"criterion,omitempty"   yaml:"criterion,omitempty"`
	// Weights optionally points at a saved state for this model.
	Weights string `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// ComponentConfig names a registered optimizer or criterion and its parameters.
type ComponentConfig struct {
	Name   string        `json:"name"             yaml:"name"`
	Params params.Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// HasBlueprint reports whether the section selects a model class.
func (m *ModelConfig) HasBlueprint() bool {
	return m.ModelClass != ""
}
