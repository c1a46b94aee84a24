package checkpoint

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/leafkit/leafkit/filter"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// Save writes v as a checkpoint: header, structure string, then one
// record per leaf in flatten order. Leaves must be tensors, fixed
// scalars, strings, nil, or absent markers; anything else fails with
// ErrUnsupportedLeaf before any record is written.
func Save(w io.Writer, v any) error {
	leaves, s := tree.Flatten(v)
	ss := s.String()

	records := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		rec, err := encodeLeaf(leaf)
		if err != nil {
			return fmt.Errorf("%s: %w", s.PathOf(i), err)
		}
		records[i] = rec
	}

	hdr := make([]byte, headerSize)
	putHeader(hdr, fingerprintOf(ss), len(ss), len(records))
	if _, err := w.Write(hdr); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ss); err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// SaveFile writes v as a checkpoint file at path.
func SaveFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := Save(bw, v); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func encodeLeaf(v any) ([]byte, error) {
	if v == nil {
		return []byte{byte(KindNil)}, nil
	}
	if filter.IsAbsent(v) {
		return []byte{byte(KindAbsent)}, nil
	}
	switch x := v.(type) {
	case *tensor.Dense:
		if x == nil {
			return []byte{byte(KindNil)}, nil
		}
		return encodeTensor(x), nil
	case bool:
		b := byte(0)
		if x {
			b = 1
		}
		return []byte{byte(KindBool), b}, nil
	case int:
		return fixed64(KindInt, uint64(int64(x))), nil
	case int32:
		rec := make([]byte, 5)
		rec[0] = byte(KindInt32)
		binary.LittleEndian.PutUint32(rec[1:], uint32(x))
		return rec, nil
	case int64:
		return fixed64(KindInt64, uint64(x)), nil
	case float32:
		rec := make([]byte, 5)
		rec[0] = byte(KindFloat32)
		binary.LittleEndian.PutUint32(rec[1:], math.Float32bits(x))
		return rec, nil
	case float64:
		return fixed64(KindFloat64, math.Float64bits(x)), nil
	case string:
		rec := make([]byte, 5+len(x))
		rec[0] = byte(KindString)
		binary.LittleEndian.PutUint32(rec[1:], uint32(len(x)))
		copy(rec[5:], x)
		return rec, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedLeaf, v)
}

func fixed64(k Kind, u uint64) []byte {
	rec := make([]byte, 9)
	rec[0] = byte(k)
	binary.LittleEndian.PutUint64(rec[1:], u)
	return rec
}

func encodeTensor(d *tensor.Dense) []byte {
	shape := d.Shape()
	rec := make([]byte, 3+4*len(shape))
	rec[0] = byte(KindTensor)
	rec[1] = byte(d.DType())
	rec[2] = byte(len(shape))
	for i, dim := range shape {
		binary.LittleEndian.PutUint32(rec[3+4*i:], uint32(dim))
	}
	return append(rec, packElems(d)...)
}
