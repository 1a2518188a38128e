package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/shadowsmith/internal/errdefs"
)

// pickled {"accuracy": 0.75, "epochs": 3, "tags": ["a", "b"], "ok": True}
// as written by pickle.dumps(..., protocol=2).
var pickledMetrics = []byte("\x80\x02}q\x00(X\x08\x00\x00\x00accuracyq\x01G?\xe8\x00\x00\x00\x00\x00\x00X\x06\x00\x00\x00epochsq\x02K\x03X\x04\x00\x00\x00tagsq\x03]q\x04(X\x01\x00\x00\x00aq\x05X\x01\x00\x00\x00bq\x06eX\x02\x00\x00\x00okq\x07\x88u.")

func TestLoad_Missing(t *testing.T) {
	_, err := Load("missing.bin")

	require.ErrorIs(t, err, errdefs.ErrFileNotFound)
	assert.Contains(t, err.Error(), "missing.bin")
}

func TestLoad_Pickle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.pkl")
	require.NoError(t, os.WriteFile(path, pickledMetrics, 0o644))

	m, err := LoadMap(path)
	require.NoError(t, err)

	assert.Equal(t, 0.75, m["accuracy"])
	assert.Equal(t, 3, m["epochs"])
	assert.Equal(t, []any{"a", "b"}, m["tags"])
	assert.Equal(t, true, m["ok"])
}

func TestLoad_CorruptPickleIsNotFileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.bin")
	require.NoError(t, os.WriteFile(path, []byte("\x80\x02}q"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errdefs.ErrFileNotFound)
}

func TestSaveLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.yaml")
	in := map[string]any{
		"train_indices": []any{1, 4, 9},
		"optimizer":     map[string]any{"name": "SGD", "lr": 0.01},
	}

	require.NoError(t, Save(path, in))

	out, err := LoadMap(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadMap_NotMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2, 3]`), 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, v)

	_, err = LoadMap(path)
	assert.ErrorIs(t, err, ErrNotMap)
}
