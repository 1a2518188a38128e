package state

import (
	"encoding/binary"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/shadowsmith/internal/nn"
)

func testModel(seed uint64) nn.Module {
	rng := nn.NewRand(seed)
	return nn.NewSequential(nn.NewLinear(4, 3, true, rng), nn.NewReLU(), nn.NewLinear(3, 2, true, rng))
}

func TestSaveLoad_F64IsBitExact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shadow.safetensors")
	model := testModel(1)

	require.NoError(t, Save(path, model, WithMetadata(map[string]string{"blueprint": "TargetNet"})))

	got, metadata, err := LoadWithMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"blueprint": "TargetNet"}, metadata)

	want := nn.StateDict(model)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	for name, tensor := range got {
		for i, v := range tensor.Data {
			assert.Equal(t, math.Float64bits(want[name].Data[i]), math.Float64bits(v), "%s[%d]", name, i)
		}
	}
}

func TestSaveLoad_ReducedPrecision(t *testing.T) {
	state := map[string]nn.Tensor{
		"weight": {Shape: []int{2, 2}, Data: []float64{0.5, -1.25, 3, 0.1}},
	}

	for _, dtype := range []DType{F32, F16, BF16} {
		t.Run(string(dtype), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "w.safetensors")
			require.NoError(t, SaveStateDict(path, state, WithDType(dtype)))

			got, err := Load(path)
			require.NoError(t, err)
			require.Contains(t, got, "weight")
			assert.Equal(t, []int{2, 2}, got["weight"].Shape)
			assert.InDeltaSlice(t, state["weight"].Data, got["weight"].Data, 1e-2)
			// Values exactly representable in every format survive unchanged.
			assert.Equal(t, 0.5, got["weight"].Data[0])
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	for _, name := range []string{"missing.safetensors", "missing.pt"} {
		_, err := Load(filepath.Join(t.TempDir(), name))
		assert.ErrorIs(t, err, fs.ErrNotExist, name)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()

	truncated := filepath.Join(dir, "truncated.safetensors")
	require.NoError(t, os.WriteFile(truncated, []byte{1, 2, 3}, 0o644))
	_, err := Load(truncated)
	assert.ErrorIs(t, err, ErrFormat)

	huge := filepath.Join(dir, "huge.safetensors")
	header := make([]byte, 8)
	binary.LittleEndian.PutUint64(header, math.MaxUint64)
	require.NoError(t, os.WriteFile(huge, header, 0o644))
	_, err = Load(huge)
	assert.ErrorIs(t, err, ErrHeaderTooLarge)

	badJSON := filepath.Join(dir, "bad.safetensors")
	body := []byte("{nope")
	binary.LittleEndian.PutUint64(header, uint64(len(body)))
	require.NoError(t, os.WriteFile(badJSON, append(header, body...), 0o644))
	_, err = Load(badJSON)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestSave_UnsupportedDType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.safetensors")
	err := SaveStateDict(path, map[string]nn.Tensor{"w": {Shape: []int{1}, Data: []float64{1}}}, WithDType("I8"))
	assert.ErrorIs(t, err, ErrUnsupportedDType)
}

func TestLoad_OffsetsPastEndOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crafted.safetensors")
	body := []byte(`{"weight":{"dtype":"F64","shape":[2,4],"data_offsets":[0,4611686018427387904]}}`)
	header := make([]byte, 8)
	binary.LittleEndian.PutUint64(header, uint64(len(body)))
	require.NoError(t, os.WriteFile(path, append(header, body...), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrFormat)

	// A header claiming more bytes than the file holds.
	binary.LittleEndian.PutUint64(header, 4096)
	require.NoError(t, os.WriteFile(path, append(header, body...), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoad_NegativeShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crafted.safetensors")
	body := []byte(`{"weight":{"dtype":"F64","shape":[-1,-1],"data_offsets":[0,8]}}`)
	header := make([]byte, 8)
	binary.LittleEndian.PutUint64(header, uint64(len(body)))
	data := append(append(header, body...), make([]byte, 8)...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrFormat)
}

func floatTensor(data []float32, offset int, size, stride []int) *pytorch.Tensor {
	return &pytorch.Tensor{
		Source:        &pytorch.FloatStorage{Data: data},
		StorageOffset: offset,
		Size:          size,
		Stride:        stride,
	}
}

func TestTorchValues(t *testing.T) {
	storage := []float32{1, 2, 3, 4, 5, 6}

	tests := []struct {
		name   string
		tensor *pytorch.Tensor
		want   []float64
	}{
		{"contiguous", floatTensor(storage, 0, []int{2, 3}, []int{3, 1}), []float64{1, 2, 3, 4, 5, 6}},
		{"transposed", floatTensor(storage, 0, []int{3, 2}, []int{1, 3}), []float64{1, 4, 2, 5, 3, 6}},
		{"offset view", floatTensor(storage, 2, []int{2, 2}, []int{2, 1}), []float64{3, 4, 5, 6}},
		{"broadcast", floatTensor(storage, 1, []int{3}, []int{0}), []float64{2, 2, 2}},
		{"empty", floatTensor(storage, 0, []int{0, 3}, []int{3, 1}), []float64{}},
		{"double", &pytorch.Tensor{Source: &pytorch.DoubleStorage{Data: []float64{0.25, 0.5}}, Size: []int{2}, Stride: []int{1}}, []float64{0.25, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := torchValues(tt.tensor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTorchValues_OutOfBounds(t *testing.T) {
	storage := []float32{1, 2, 3, 4}

	tests := []struct {
		name   string
		tensor *pytorch.Tensor
	}{
		{"view past end", floatTensor(storage, 2, []int{2, 2}, []int{2, 1})},
		{"offset past end", floatTensor(storage, 4, []int{1}, []int{1})},
		{"negative offset", floatTensor(storage, -1, []int{1}, []int{1})},
		{"negative size", floatTensor(storage, 0, []int{-2}, []int{1})},
		{"negative stride", floatTensor(storage, 3, []int{2}, []int{-1})},
		{"huge stride", floatTensor(storage, 0, []int{2}, []int{math.MaxInt})},
		{"stride rank mismatch", floatTensor(storage, 0, []int{2, 2}, []int{1})},
		{"empty storage", floatTensor(nil, 0, []int{1}, []int{1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := torchValues(tt.tensor)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestTorchValues_UnsupportedStorage(t *testing.T) {
	_, err := torchValues(&pytorch.Tensor{Source: &pytorch.LongStorage{Data: []int64{1}}, Size: []int{1}, Stride: []int{1}})
	assert.ErrorIs(t, err, ErrUnsupportedDType)
}

func TestCheckpointState(t *testing.T) {
	weight := floatTensor([]float32{1, 2, 3, 4, 5, 6}, 0, []int{3, 2}, []int{1, 3})
	bias := floatTensor([]float32{7, 8, 9}, 0, []int{3}, []int{1})

	flat := types.NewOrderedDict()
	flat.Set("0.weight", weight)
	flat.Set("0.bias", bias)

	want := map[string]nn.Tensor{
		"0.weight": {Shape: []int{3, 2}, Data: []float64{1, 4, 2, 5, 3, 6}},
		"0.bias":   {Shape: []int{3}, Data: []float64{7, 8, 9}},
	}

	t.Run("state dict", func(t *testing.T) {
		got, err := checkpointState(flat)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("state mismatch (-want +got):\n%s", diff)
		}
	})

	for _, key := range []string{"state_dict", "model_state_dict"} {
		t.Run("nested under "+key, func(t *testing.T) {
			checkpoint := types.NewDict()
			checkpoint.Set("epoch", 3)
			checkpoint.Set(key, flat)

			got, err := checkpointState(checkpoint)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("non-tensor entry", func(t *testing.T) {
		d := types.NewOrderedDict()
		d.Set("0.weight", weight)
		d.Set("step", 10)

		_, err := checkpointState(d)
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("not a dict", func(t *testing.T) {
		_, err := checkpointState("not a checkpoint")
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("bad layout", func(t *testing.T) {
		d := types.NewOrderedDict()
		d.Set("0.weight", floatTensor([]float32{1}, 0, []int{2}, []int{1}))

		_, err := checkpointState(d)
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("unsupported storage", func(t *testing.T) {
		d := types.NewOrderedDict()
		d.Set("0.weight", &pytorch.Tensor{Source: &pytorch.LongStorage{Data: []int64{1}}, Size: []int{1}, Stride: []int{1}})

		_, err := checkpointState(d)
		assert.ErrorIs(t, err, ErrUnsupportedDType)
	})
}
