package metadata

import (
	"fmt"
	"io"
	"math/big"

	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/types"
)

func unpickle(r io.Reader) (any, error) {
	u := pickle.NewUnpickler(r)
	v, err := u.Load()
	if err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// normalize converts gopickle's Python types into Go maps, slices and scalars.
// Values without a Go counterpart are returned unchanged.
func normalize(v any) any {
	switch x := v.(type) {
	case *types.Dict:
		out := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			out[key(k)] = normalize(x.MustGet(k))
		}
		return out
	case *types.OrderedDict:
		out := make(map[string]any, x.Len())
		for e := x.List.Front(); e != nil; e = e.Next() {
			entry := e.Value.(*types.OrderedDictEntry)
			out[key(entry.Key)] = normalize(entry.Value)
		}
		return out
	case *types.List:
		return normalizeSlice(*x)
	case *types.Tuple:
		return normalizeSlice(*x)
	case types.Tuple:
		return normalizeSlice(x)
	case *big.Int:
		if x.IsInt64() {
			return x.Int64()
		}
		return x
	}
	return v
}

func normalizeSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = normalize(item)
	}
	return out
}

func key(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(normalize(k))
}
