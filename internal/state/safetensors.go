package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/ekisa-team/shadowsmith/internal/nn"
)

const (
	metadataKey   = "__metadata__"
	maxHeaderSize = 100 << 20
)

type tensorHeader struct {
	DType       DType    `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// Option configures Save.
type Option func(*saveOptions)

type saveOptions struct {
	dtype    DType
	metadata map[string]string
}

// WithDType sets the element type tensors are written with. The default F64
// round-trips parameters bit for bit.
func WithDType(d DType) Option {
	return func(o *saveOptions) {
		o.dtype = d
	}
}

// WithMetadata attaches string metadata to the file header.
func WithMetadata(metadata map[string]string) Option {
	return func(o *saveOptions) {
		o.metadata = metadata
	}
}

// Save writes the parameters of m to path.
func Save(path string, m nn.Module, opts ...Option) error {
	return SaveStateDict(path, nn.StateDict(m), opts...)
}

// SaveStateDict writes a state dict to path. Tensors are laid out in
// alphabetical order by name.
func SaveStateDict(path string, state map[string]nn.Tensor, opts ...Option) error {
	o := saveOptions{dtype: F64}
	for _, opt := range opts {
		opt(&o)
	}

	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	slices.Sort(names)

	header := make(map[string]any, len(names)+1)
	if len(o.metadata) > 0 {
		header[metadataKey] = o.metadata
	}

	payload := make([][]byte, 0, len(names))
	var offset int64
	for _, name := range names {
		t := state[name]
		data, err := encode(o.dtype, t.Data)
		if err != nil {
			return err
		}

		shape := make([]int64, len(t.Shape))
		for i, d := range t.Shape {
			shape[i] = int64(d)
		}

		header[name] = tensorHeader{
			DType:       o.dtype,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + int64(len(data))},
		}
		payload = append(payload, data)
		offset += int64(len(data))
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := writeAll(f, headerJSON, payload); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func writeAll(w io.Writer, header []byte, payload [][]byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(header))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, data := range payload {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write tensor data: %w", err)
		}
	}
	return nil
}

// readSafeTensors decodes a SafeTensors stream of size bytes into a state
// dict and its metadata. Offsets past the end of the stream are rejected
// before anything is allocated for them.
func readSafeTensors(r io.Reader, size int64) (map[string]nn.Tensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("%w: reading header size: %w", ErrFormat, err)
	}
	if headerSize > maxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	if int64(headerSize) > size-8 {
		return nil, nil, fmt.Errorf("%w: header of %d bytes in a %d byte file", ErrFormat, headerSize, size)
	}
	available := size - 8 - int64(headerSize)

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("%w: reading header: %w", ErrFormat, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: decoding header: %w", ErrFormat, err)
	}

	var metadata map[string]string
	if m, ok := raw[metadataKey]; ok {
		if err := json.Unmarshal(m, &metadata); err != nil {
			return nil, nil, fmt.Errorf("%w: decoding metadata: %w", ErrFormat, err)
		}
		delete(raw, metadataKey)
	}

	headers := make(map[string]tensorHeader, len(raw))
	var end int64
	for name, msg := range raw {
		var h tensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, nil, fmt.Errorf("%w: tensor %q: %w", ErrFormat, name, err)
		}
		if h.DataOffsets[0] < 0 || h.DataOffsets[1] < h.DataOffsets[0] {
			return nil, nil, fmt.Errorf("%w: tensor %q has offsets %v", ErrFormat, name, h.DataOffsets)
		}
		if h.DataOffsets[1] > available {
			return nil, nil, fmt.Errorf("%w: tensor %q ends at %d but only %d data bytes follow the header",
				ErrFormat, name, h.DataOffsets[1], available)
		}
		headers[name] = h
		end = max(end, h.DataOffsets[1])
	}

	data := make([]byte, end)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, nil, fmt.Errorf("%w: reading tensor data: %w", ErrFormat, err)
	}

	state := make(map[string]nn.Tensor, len(headers))
	for name, h := range headers {
		values, err := decode(h.DType, data[h.DataOffsets[0]:h.DataOffsets[1]])
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", name, err)
		}

		shape := make([]int, len(h.Shape))
		n := 1
		for i, d := range h.Shape {
			if d < 0 {
				return nil, nil, fmt.Errorf("%w: tensor %q has shape %v", ErrFormat, name, h.Shape)
			}
			shape[i] = int(d)
			n *= int(d)
		}
		if n != len(values) {
			return nil, nil, fmt.Errorf("%w: tensor %q has shape %v but %d values", ErrFormat, name, shape, len(values))
		}

		state[name] = nn.Tensor{Shape: shape, Data: values}
	}

	return state, metadata, nil
}
