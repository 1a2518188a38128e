package errdefs

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnknownNameIsConstruction(t *testing.T) {
	err := UnknownName("optimizer", "NoSuchOptimizer", errors.New("not registered"))

	assert.ErrorIs(t, err, ErrUnknownName)
	assert.ErrorIs(t, err, ErrConstruction)
	assert.Contains(t, err.Error(), "NoSuchOptimizer")
}

func TestFileNotFoundKeepsCause(t *testing.T) {
	err := FileNotFound("metadata", "missing.bin", fs.ErrNotExist)

	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.bin")
	assert.NotErrorIs(t, err, ErrStateLoad)
}

func TestImportNamesPathAndClass(t *testing.T) {
	err := Import("models/net.yaml", "TargetNet", errors.New("boom"))

	assert.ErrorIs(t, err, ErrImport)
	assert.Contains(t, err.Error(), "models/net.yaml")
	assert.Contains(t, err.Error(), "TargetNet")
	assert.Contains(t, err.Error(), "boom")
}
