package jit

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"reflect"

	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// UnhashableError reports a static leaf whose value cannot take part
// in a cache key.
type UnhashableError struct {
	// Path locates the leaf inside the static argument tree.
	Path string
	// Type is the leaf's Go type.
	Type string
}

func (e *UnhashableError) Error() string {
	return fmt.Sprintf("jit: static leaf %s of type %s is not hashable", e.Path, e.Type)
}

// Fingerprint accumulates a cache key from the pieces that force
// recompilation: argument structure, dynamic tensor signatures, and
// static leaf values.
type Fingerprint struct {
	h interface {
		Write(p []byte) (int, error)
		Sum64() uint64
	}
}

// NewFingerprint returns an empty fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{h: fnv.New64a()}
}

func (f *Fingerprint) writeString(s string) {
	f.h.Write([]byte(s))
}

// Note folds an arbitrary tag into the key.
func (f *Fingerprint) Note(s string) {
	f.writeString(s)
	f.writeString("|")
}

// Structure folds a tree structure into the key.
func (f *Fingerprint) Structure(s *tree.Structure) {
	f.writeString(s.String())
	f.writeString("|")
}

// Dynamic folds a dynamic tensor's signature into the key: dtype and
// shape, never data.
func (f *Fingerprint) Dynamic(d *tensor.Dense) {
	f.writeString(fmt.Sprintf("dyn|%s|%v|", d.DType(), d.Shape()))
}

// Static folds a static leaf's value into the key. Tensors hash by
// dtype, shape and exact bits. Other leaves hash by their printed
// representation, which recompiles on any visible change. Maps,
// funcs and channels have no stable printed form and are rejected.
func (f *Fingerprint) Static(path string, v any) error {
	if v == nil {
		f.writeString("nil|")
		return nil
	}
	if d, ok := v.(*tensor.Dense); ok {
		f.writeString(fmt.Sprintf("st|%s|%v|", d.DType(), d.Shape()))
		var buf [8]byte
		for _, x := range d.Float64s() {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
			f.h.Write(buf[:])
		}
		f.writeString("|")
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan:
		return &UnhashableError{Path: path, Type: fmt.Sprintf("%T", v)}
	case reflect.Slice:
		f.writeString(fmt.Sprintf("st|%T|%v|", v, v))
		return nil
	}
	if !rv.Comparable() {
		return &UnhashableError{Path: path, Type: fmt.Sprintf("%T", v)}
	}
	f.writeString(fmt.Sprintf("st|%T:%#v|", v, v))
	return nil
}

// Key returns the accumulated key.
func (f *Fingerprint) Key() string {
	return fmt.Sprintf("%016x", f.h.Sum64())
}
