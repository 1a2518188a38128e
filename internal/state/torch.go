package state

import (
	"fmt"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"

	"github.com/ekisa-team/shadowsmith/internal/nn"
)

// nestedStateKeys are the checkpoint keys training scripts commonly store
// the actual state dict under.
var nestedStateKeys = []string{"state_dict", "model_state_dict", "model"}

// readTorch loads a PyTorch checkpoint written with torch.save.
func readTorch(path string) (map[string]nn.Tensor, error) {
	v, err := pytorch.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return checkpointState(v)
}

// checkpointState extracts the tensors of an unpickled checkpoint, looking
// inside the usual nesting keys when the top level is a training checkpoint.
func checkpointState(v any) (map[string]nn.Tensor, error) {
	entries, ok := dictEntries(v)
	if !ok {
		return nil, fmt.Errorf("%w: checkpoint holds %T, not a state dict", ErrFormat, v)
	}
	for _, key := range nestedStateKeys {
		if nested, ok := dictEntries(entries[key]); ok {
			entries = nested
			break
		}
	}

	state := make(map[string]nn.Tensor, len(entries))
	for name, value := range entries {
		t, ok := value.(*pytorch.Tensor)
		if !ok {
			return nil, fmt.Errorf("%w: %s holds %T, not a tensor", ErrFormat, name, value)
		}

		data, err := torchValues(t)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", name, err)
		}
		state[name] = nn.Tensor{Shape: append([]int(nil), t.Size...), Data: data}
	}

	return state, nil
}

// dictEntries flattens the dict flavours gopickle produces into a Go map.
func dictEntries(v any) (map[string]any, bool) {
	out := make(map[string]any)
	switch d := v.(type) {
	case *types.Dict:
		for _, k := range d.Keys() {
			out[fmt.Sprint(k)] = d.MustGet(k)
		}
	case *types.OrderedDict:
		for e := d.List.Front(); e != nil; e = e.Next() {
			entry := e.Value.(*types.OrderedDictEntry)
			out[fmt.Sprint(entry.Key)] = entry.Value
		}
	default:
		return nil, false
	}
	return out, true
}

// maxTorchElements bounds the element count of one checkpoint tensor.
const maxTorchElements = 1 << 31

// torchValues gathers the elements of t in row-major order, honouring the
// storage offset and strides. Every reachable offset is checked against the
// storage before anything is read.
func torchValues(t *pytorch.Tensor) ([]float64, error) {
	var (
		at     func(i int) float64
		length int
	)
	switch s := t.Source.(type) {
	case *pytorch.DoubleStorage:
		at, length = func(i int) float64 { return s.Data[i] }, len(s.Data)
	case *pytorch.FloatStorage:
		at, length = func(i int) float64 { return float64(s.Data[i]) }, len(s.Data)
	case *pytorch.HalfStorage:
		at, length = func(i int) float64 { return float64(s.Data[i]) }, len(s.Data)
	case *pytorch.BFloat16Storage:
		at, length = func(i int) float64 { return float64(s.Data[i]) }, len(s.Data)
	default:
		return nil, fmt.Errorf("%w: storage %T", ErrUnsupportedDType, t.Source)
	}

	n, err := checkLayout(t, length)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	if n == 0 {
		return out, nil
	}

	index := make([]int, len(t.Size))
	for i := range n {
		offset := t.StorageOffset
		for k, idx := range index {
			offset += idx * t.Stride[k]
		}
		out[i] = at(offset)

		for k := len(index) - 1; k >= 0; k-- {
			index[k]++
			if index[k] < t.Size[k] {
				break
			}
			index[k] = 0
		}
	}

	return out, nil
}

// checkLayout validates the size, stride and offset of t against a storage
// of length elements and returns the tensor's element count.
func checkLayout(t *pytorch.Tensor, length int) (int, error) {
	if len(t.Stride) != len(t.Size) {
		return 0, fmt.Errorf("%w: %d strides for %d dimensions", ErrFormat, len(t.Stride), len(t.Size))
	}
	if t.StorageOffset < 0 {
		return 0, fmt.Errorf("%w: negative storage offset %d", ErrFormat, t.StorageOffset)
	}

	n := 1
	for k, size := range t.Size {
		if size < 0 || t.Stride[k] < 0 {
			return 0, fmt.Errorf("%w: size %v with strides %v", ErrFormat, t.Size, t.Stride)
		}
		if size == 0 {
			return 0, nil
		}
		if n > maxTorchElements/size {
			return 0, fmt.Errorf("%w: size %v exceeds %d elements", ErrFormat, t.Size, maxTorchElements)
		}
		n *= size
	}

	last := t.StorageOffset
	if last >= length {
		return 0, fmt.Errorf("%w: offset %d outside storage of %d elements", ErrFormat, last, length)
	}
	for k, size := range t.Size {
		stride := t.Stride[k]
		if size < 2 || stride == 0 {
			continue
		}
		if size-1 > (length-1-last)/stride {
			return 0, fmt.Errorf("%w: size %v with strides %v from offset %d reads past storage of %d elements",
				ErrFormat, t.Size, t.Stride, t.StorageOffset, length)
		}
		last += (size - 1) * stride
	}

	return n, nil
}
