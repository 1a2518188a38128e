package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Lookup(t *testing.T) {
	table := New("optimizer", map[string]int{"SGD": 1, "Adam": 2})

	v, err := table.Lookup("Adam")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = table.Lookup("NoSuchOptimizer")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `"NoSuchOptimizer"`)
	assert.Contains(t, err.Error(), "optimizer")
}

func TestTable_IsImmutable(t *testing.T) {
	entries := map[string]int{"SGD": 1}
	table := New("optimizer", entries)

	entries["Adam"] = 2
	delete(entries, "SGD")

	assert.True(t, table.Has("SGD"))
	assert.False(t, table.Has("Adam"))
	assert.Equal(t, []string{"SGD"}, table.Names())
}

func TestTable_NamesSorted(t *testing.T) {
	table := New("criterion", map[string]string{"MSELoss": "", "BCEWithLogitsLoss": "", "L1Loss": ""})

	assert.Equal(t, []string{"BCEWithLogitsLoss", "L1Loss", "MSELoss"}, table.Names())
	assert.Equal(t, "criterion", table.Kind())
}
