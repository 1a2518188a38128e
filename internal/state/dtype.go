package state

import (
	"encoding/binary"
	"fmt"
	"math"

	bfloat16 "github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// DType is a SafeTensors element type.
type DType string

const (
	F64  DType = "F64"
	F32  DType = "F32"
	F16  DType = "F16"
	BF16 DType = "BF16"
)

// Size returns the width of one element in bytes.
func (d DType) Size() (int, error) {
	switch d {
	case F64:
		return 8, nil
	case F32:
		return 4, nil
	case F16, BF16:
		return 2, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedDType, d)
}

func encode(d DType, values []float64) ([]byte, error) {
	size, err := d.Size()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, len(values)*size)
	switch d {
	case F64:
		for i, v := range values {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}
	case F32:
		for i, v := range values {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
		}
	case F16:
		for i, v := range values {
			binary.LittleEndian.PutUint16(buf[i*2:], float16.Fromfloat32(float32(v)).Bits())
		}
	case BF16:
		copy(buf, bfloat16.EncodeFloat32(toFloat32(values)))
	}

	return buf, nil
}

func decode(d DType, raw []byte) ([]float64, error) {
	size, err := d.Size()
	if err != nil {
		return nil, err
	}
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %s width", ErrFormat, len(raw), d)
	}

	n := len(raw) / size
	out := make([]float64, n)
	switch d {
	case F64:
		for i := range n {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	case F32:
		for i := range n {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	case F16:
		for i := range n {
			out[i] = float64(float16.Frombits(binary.LittleEndian.Uint16(raw[i*2:])).Float32())
		}
	case BF16:
		for i, f := range bfloat16.DecodeFloat32(raw) {
			out[i] = float64(f)
		}
	}

	return out, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
