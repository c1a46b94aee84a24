package checkpoint

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/leafkit/leafkit/filter"
	"github.com/leafkit/leafkit/internal/buf"
	"github.com/leafkit/leafkit/tensor"
)

// Kind tags a leaf record.
type Kind uint8

const (
	KindNil Kind = iota
	KindAbsent
	KindTensor
	KindBool
	KindInt
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindAbsent:
		return "absent"
	case KindTensor:
		return "tensor"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Leaf is one stored leaf record.
//
// Record layout: a one-byte kind tag followed by a kind-specific
// payload. Tensors carry dtype, rank, uint32 dims, then elements
// packed at the dtype's encoded width. Strings carry a uint32 length
// and raw bytes. Fixed-width scalars carry their little-endian bits.
// Nil and absent carry nothing.
type Leaf struct {
	// Kind identifies the payload.
	Kind Kind

	// DType and Shape describe a KindTensor record.
	DType tensor.DType
	Shape []int

	raw   []byte // tensor payload, borrowed from the checkpoint data
	value any    // decoded scalar
}

// Elems returns the element count of a tensor record, 0 otherwise.
func (l Leaf) Elems() int {
	if l.Kind != KindTensor {
		return 0
	}
	n := 1
	for _, d := range l.Shape {
		n *= d
	}
	return n
}

// Value materializes the stored leaf. Tensor records copy their data
// out of the checkpoint buffer, so the result outlives any mapping
// the checkpoint was read from.
func (l Leaf) Value() any {
	switch l.Kind {
	case KindNil:
		return nil
	case KindAbsent:
		return filter.Absent
	case KindTensor:
		return tensor.New(l.DType, l.Shape, unpackElems(l.DType, l.raw, l.Elems()))
	default:
		return l.value
	}
}

// cursor reads little-endian records with bounds checking.
type cursor struct {
	b   []byte
	off int
}

func (c *cursor) need(n int) ([]byte, error) {
	p, ok := buf.Slice(c.b, c.off, n)
	if !ok {
		return nil, ErrTruncated
	}
	c.off += n
	return p, nil
}

func (c *cursor) u8() (byte, error) {
	p, err := c.need(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (c *cursor) u32() (uint32, error) {
	p, err := c.need(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (c *cursor) u64() (uint64, error) {
	p, err := c.need(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

// readLeaf decodes the record at the cursor.
func readLeaf(c *cursor) (Leaf, error) {
	tag, err := c.u8()
	if err != nil {
		return Leaf{}, err
	}
	k := Kind(tag)
	switch k {
	case KindNil, KindAbsent:
		return Leaf{Kind: k}, nil

	case KindBool:
		b, err := c.u8()
		if err != nil {
			return Leaf{}, err
		}
		if b > 1 {
			return Leaf{}, fmt.Errorf("%w: bool byte 0x%02x", ErrCorrupt, b)
		}
		return Leaf{Kind: k, value: b == 1}, nil

	case KindInt, KindInt64:
		u, err := c.u64()
		if err != nil {
			return Leaf{}, err
		}
		if k == KindInt {
			return Leaf{Kind: k, value: int(int64(u))}, nil
		}
		return Leaf{Kind: k, value: int64(u)}, nil

	case KindInt32:
		u, err := c.u32()
		if err != nil {
			return Leaf{}, err
		}
		return Leaf{Kind: k, value: int32(u)}, nil

	case KindFloat32:
		u, err := c.u32()
		if err != nil {
			return Leaf{}, err
		}
		return Leaf{Kind: k, value: math.Float32frombits(u)}, nil

	case KindFloat64:
		u, err := c.u64()
		if err != nil {
			return Leaf{}, err
		}
		return Leaf{Kind: k, value: math.Float64frombits(u)}, nil

	case KindString:
		n, err := c.u32()
		if err != nil {
			return Leaf{}, err
		}
		p, err := c.need(int(n))
		if err != nil {
			return Leaf{}, err
		}
		return Leaf{Kind: k, value: string(p)}, nil

	case KindTensor:
		return readTensor(c)

	default:
		return Leaf{}, fmt.Errorf("%w: kind tag 0x%02x", ErrCorrupt, tag)
	}
}

func readTensor(c *cursor) (Leaf, error) {
	dt, err := c.u8()
	if err != nil {
		return Leaf{}, err
	}
	dtype := tensor.DType(dt)
	if dtype.Size() == 0 {
		return Leaf{}, fmt.Errorf("%w: dtype 0x%02x", ErrCorrupt, dt)
	}
	rank, err := c.u8()
	if err != nil {
		return Leaf{}, err
	}
	shape := make([]int, rank)
	elems := 1
	for i := range shape {
		d, err := c.u32()
		if err != nil {
			return Leaf{}, err
		}
		shape[i] = int(d)
		next, ok := buf.MulOverflowSafe(elems, int(d))
		if !ok {
			return Leaf{}, fmt.Errorf("%w: shape %v overflows", ErrCorrupt, shape[:i+1])
		}
		elems = next
	}
	size, ok := buf.MulOverflowSafe(elems, dtype.Size())
	if !ok {
		return Leaf{}, fmt.Errorf("%w: payload for shape %v overflows", ErrCorrupt, shape)
	}
	raw, err := c.need(size)
	if err != nil {
		return Leaf{}, err
	}
	return Leaf{Kind: KindTensor, DType: dtype, Shape: shape, raw: raw}, nil
}

// packElems encodes tensor elements at the dtype's width.
func packElems(d *tensor.Dense) []byte {
	dtype := d.DType()
	data := d.Float64s()
	out := make([]byte, len(data)*dtype.Size())
	for i, v := range data {
		switch dtype {
		case tensor.Bool:
			if v != 0 {
				out[i] = 1
			}
		case tensor.Int32:
			binary.LittleEndian.PutUint32(out[i*4:], uint32(int32(v)))
		case tensor.Int64:
			binary.LittleEndian.PutUint64(out[i*8:], uint64(int64(v)))
		case tensor.Float32:
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(v)))
		default:
			binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
		}
	}
	return out
}

// unpackElems decodes tensor elements into the engine's float64 backing.
func unpackElems(dtype tensor.DType, raw []byte, elems int) []float64 {
	out := make([]float64, elems)
	for i := range out {
		switch dtype {
		case tensor.Bool:
			out[i] = float64(raw[i])
		case tensor.Int32:
			out[i] = float64(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		case tensor.Int64:
			out[i] = float64(int64(binary.LittleEndian.Uint64(raw[i*8:])))
		case tensor.Float32:
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		default:
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	}
	return out
}
