// Package checkpoint persists module trees as flat binary files.
//
// A checkpoint stores the tree's structure string and one record per
// leaf. Loading parses the records in place without materializing
// tensors, so a checkpoint opened from a memory-mapped file can be
// inspected cheaply; values are copied out only when restored into a
// model. Restore requires a model with the exact stored structure and
// returns a rebuilt tree, leaving the model untouched.
package checkpoint

import (
	"fmt"

	"github.com/leafkit/leafkit/internal/mmfile"
	"github.com/leafkit/leafkit/tree"
)

// Checkpoint is a parsed checkpoint. The zero value is not usable;
// obtain one from Load or LoadFile.
type Checkpoint struct {
	version     uint32
	fingerprint uint64
	structure   string
	leaves      []Leaf
	cleanup     func() error
}

// Load parses data as a checkpoint. The leaves keep views into data,
// so the caller must not mutate it while the Checkpoint is in use.
func Load(data []byte) (*Checkpoint, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	c := &cursor{b: data, off: headerSize}
	ss, err := c.need(h.structLen)
	if err != nil {
		return nil, fmt.Errorf("structure string: %w", err)
	}
	ck := &Checkpoint{
		version:     h.version,
		fingerprint: h.fingerprint,
		structure:   string(ss),
		leaves:      make([]Leaf, h.leafCount),
	}
	if got := fingerprintOf(ck.structure); got != h.fingerprint {
		return nil, fmt.Errorf("%w: structure hash %016x, header says %016x", ErrCorrupt, got, h.fingerprint)
	}
	for i := range ck.leaves {
		leaf, err := readLeaf(c)
		if err != nil {
			return nil, fmt.Errorf("leaf %d: %w", i, err)
		}
		ck.leaves[i] = leaf
	}
	if c.off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(data)-c.off)
	}
	return ck, nil
}

// LoadFile memory-maps the file at path and parses it. Close releases
// the mapping; leaf values obtained before Close remain valid.
func LoadFile(path string) (*Checkpoint, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	ck, err := Load(data)
	if err != nil {
		cleanup()
		return nil, err
	}
	ck.cleanup = cleanup
	return ck, nil
}

// Close releases the file mapping, if any.
func (c *Checkpoint) Close() error {
	if c.cleanup == nil {
		return nil
	}
	cleanup := c.cleanup
	c.cleanup = nil
	return cleanup()
}

// Version returns the format version the checkpoint was written with.
func (c *Checkpoint) Version() uint32 { return c.version }

// Fingerprint returns the stored hash of the structure string.
func (c *Checkpoint) Fingerprint() uint64 { return c.fingerprint }

// Structure returns the stored structure string.
func (c *Checkpoint) Structure() string { return c.structure }

// NumLeaves returns the number of stored leaf records.
func (c *Checkpoint) NumLeaves() int { return len(c.leaves) }

// Leaf returns the i-th stored record.
func (c *Checkpoint) Leaf(i int) Leaf { return c.leaves[i] }

// Restore rebuilds the stored tree in the shape of model. The model
// supplies the container skeleton and must flatten to exactly the
// stored structure; every leaf comes from the checkpoint. Tensor data
// is copied, so the result stays valid after Close.
func (c *Checkpoint) Restore(model any) (any, error) {
	_, s := tree.Flatten(model)
	if got := s.String(); got != c.structure {
		return nil, fmt.Errorf("%w: checkpoint holds %s, model is %s", ErrStructure, c.structure, got)
	}
	leaves := make([]any, len(c.leaves))
	for i, l := range c.leaves {
		leaves[i] = l.Value()
	}
	out, err := tree.Unflatten(s, leaves)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: rebuilding tree: %w", err)
	}
	return out, nil
}

// Restore loads data and rebuilds it in the shape of model.
func Restore(model any, data []byte) (any, error) {
	c, err := Load(data)
	if err != nil {
		return nil, err
	}
	return c.Restore(model)
}

// RestoreFile loads the checkpoint at path and rebuilds it in the
// shape of model.
func RestoreFile(model any, path string) (any, error) {
	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Restore(model)
}
