package blueprint

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"

	"github.com/ekisa-team/shadowsmith/internal/errdefs"
	"github.com/ekisa-team/shadowsmith/internal/params"
)

//go:embed manifest.schema.json
var manifestSchemaJSON string

const manifestSchemaURL = "shadowsmith.blueprint.v1.schema.json"

var manifestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(manifestSchemaURL, strings.NewReader(manifestSchemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(manifestSchemaURL)
})

// Manifest is a blueprint definition file.
type Manifest struct {
	Version    string               `json:"version"    yaml:"version"`
	Blueprints map[string]ClassSpec `json:"blueprints" yaml:"blueprints"`
}

// ClassSpec declares one blueprint class.
type ClassSpec struct {
	Factory     string        `json:"factory"               yaml:"factory"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Params      params.Params `json:"params,omitempty"      yaml:"params,omitempty"`
}

// ReadManifest loads and validates the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	//nolint:gosec // G304: manifest paths are supplied by configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid YAML: %w", ErrInvalidManifest, err)
	}

	schema, err := manifestSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile manifest schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	return &m, nil
}

// Classes returns the declared class names in sorted order.
func (m *Manifest) Classes() []string {
	return slices.Sorted(maps.Keys(m.Blueprints))
}

// Blueprint resolves a declared class into a blueprint.
func (m *Manifest) Blueprint(className string) (*Blueprint, error) {
	spec, ok := m.Blueprints[className]
	if !ok {
		return nil, fmt.Errorf("%w: %s (declared: %s)", ErrClassNotFound, className, strings.Join(m.Classes(), ", "))
	}

	return New(className, spec.Factory, spec.Params)
}

// Import loads the manifest at path and extracts the class named className.
// Every failure is reported as errdefs.ErrImport naming both.
func Import(path, className string) (*Blueprint, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, errdefs.Import(path, className, err)
	}

	bp, err := m.Blueprint(className)
	if err != nil {
		return nil, errdefs.Import(path, className, err)
	}
	bp.Source = path

	return bp, nil
}

// Resolve picks a blueprint from a manifest when modulePath is set, or from
// catalog by class name otherwise. Failures are errdefs.ErrImport.
func Resolve(modulePath, className string, catalog *Catalog) (*Blueprint, error) {
	if modulePath != "" {
		return Import(modulePath, className)
	}

	if catalog != nil {
		if bp, ok := catalog.Get(className); ok {
			return bp, nil
		}
	}
	return nil, errdefs.Import("blueprint catalog", className, ErrClassNotFound)
}
