package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ekisa-team/shadowsmith/internal/nn"
)

// Load reads the state dict stored at path. A missing file yields an error
// matching fs.ErrNotExist.
func Load(path string) (map[string]nn.Tensor, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pt", ".pth", ".bin":
		return readTorch(path)
	}

	state, _, err := LoadWithMetadata(path)
	return state, err
}

// LoadWithMetadata reads a SafeTensors file and returns its header metadata
// alongside the state dict.
func LoadWithMetadata(path string) (map[string]nn.Tensor, map[string]string, error) {
	//nolint:gosec // G304: reading user-provided weight files is the point
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}

	state, metadata, err := readSafeTensors(f, info.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return state, metadata, nil
}
