// Package metadata loads auxiliary data persisted next to shadow models:
// training metrics, configuration echoes and similar object graphs.
//
// YAML and JSON files are decoded with yaml.v3. Anything else is read as a
// Python pickle stream (joblib.dump without compression writes one), and the
// resulting Python values are converted to plain Go values.
package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ekisa-team/shadowsmith/internal/errdefs"
)

// ErrNotMap is returned by LoadMap when the stored object is not a mapping.
var ErrNotMap = errors.New("metadata is not a mapping")

// Load deserializes the object graph stored at path.
func Load(path string) (any, error) {
	//nolint:gosec // G304: metadata paths are supplied by the caller
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errdefs.FileNotFound("metadata", path, err)
		}
		return nil, fmt.Errorf("failed to open metadata %s: %w", path, err)
	}
	defer f.Close()

	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		if err := yaml.NewDecoder(f).Decode(&v); err != nil {
			return nil, fmt.Errorf("failed to decode metadata %s: %w", path, err)
		}
	default:
		v, err = unpickle(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode metadata %s: %w", path, err)
		}
	}

	return v, nil
}

// LoadMap loads path and asserts that the stored object is a mapping.
func LoadMap(path string) (map[string]any, error) {
	v, err := Load(path)
	if err != nil {
		return nil, err
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", ErrNotMap, path, v)
	}
	return m, nil
}

// Save writes v to path as YAML.
func Save(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata %s: %w", path, err)
	}
	return nil
}
