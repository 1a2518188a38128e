package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	m := map[string]any{
		"in_features": 4,
		"lr":          1,
		"momentum":    0.9,
		"name":        "relu",
		"bias":        false,
		"hidden":      []any{8, 16},
		"betas":       []any{0.9, 0.999},
	}

	assert.Equal(t, 4, Get(m, "in_features", 0))
	assert.Equal(t, 1.0, Get(m, "lr", 0.01))
	assert.Equal(t, 0.9, Get(m, "momentum", 0.0))
	assert.Equal(t, "relu", Get(m, "name", ""))
	assert.False(t, Get(m, "bias", true))
	assert.Equal(t, []int{8, 16}, Get(m, "hidden", []int(nil)))
	assert.Equal(t, []float64{0.9, 0.999}, Get(m, "betas", []float64(nil)))
	assert.Equal(t, 7, Get(m, "missing", 7))
}

func TestLookupWrongType(t *testing.T) {
	m := map[string]any{"in_features": "four", "out_features": 2.5}

	_, err := Lookup(m, "in_features", 0)
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = Lookup(m, "out_features", 0)
	assert.ErrorIs(t, err, ErrWrongType)

	assert.Equal(t, 3, Get(m, "in_features", 3))
}

func TestCheckKeys(t *testing.T) {
	require.NoError(t, CheckKeys(map[string]any{"lr": 0.1}, "lr", "momentum"))

	err := CheckKeys(map[string]any{"lr": 0.1, "gamma": 1, "beta": 2}, "lr")
	require.ErrorIs(t, err, ErrUnknownKey)
	assert.Contains(t, err.Error(), "beta, gamma")
}

func TestMerge(t *testing.T) {
	base := Params{"in_features": 4, "bias": true}
	merged := Merge(base, map[string]any{"in_features": 8})

	assert.Equal(t, Params{"in_features": 8, "bias": true}, merged)
	assert.Equal(t, 4, base["in_features"])
	assert.NotNil(t, Params(nil).Clone())
}
