package filter

import (
	"fmt"

	"github.com/leafkit/leafkit/tree"
)

// Partition is the result of Split: the selected and unselected
// leaves in their original relative orders, the per-position verdicts
// in original leaf order, and the structure needed to reassemble the
// tree. Partitions are transient values, consumed by Merge.
type Partition struct {
	Active    []any
	Inactive  []any
	Mask      []bool
	Structure *tree.Structure
}

// Split flattens v and partitions its leaves by the filter's verdict,
// preserving relative order within each side. Merge inverts it.
func Split(v any, f Filter) (*Partition, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	leaves, s := tree.Flatten(v)
	keep, err := f.classify(leaves, s, f.Mask)
	if err != nil {
		return nil, err
	}
	p := &Partition{Mask: keep, Structure: s}
	for i, leaf := range leaves {
		if keep[i] {
			p.Active = append(p.Active, leaf)
			continue
		}
		p.Inactive = append(p.Inactive, leaf)
	}
	return p, nil
}

// Merge reassembles the tree a Split took apart: true mask entries
// consume the next active leaf, false entries the next inactive one.
func Merge(active, inactive []any, mask []bool, s *tree.Structure) (any, error) {
	if len(mask) != len(active)+len(inactive) {
		return nil, fmt.Errorf("%w: mask has %d entries, leaves %d active + %d inactive",
			ErrStructureMismatch, len(mask), len(active), len(inactive))
	}
	if s != nil && s.NumLeaves() != len(mask) {
		return nil, fmt.Errorf("%w: structure has %d leaves, mask %d entries",
			ErrStructureMismatch, s.NumLeaves(), len(mask))
	}
	leaves := make([]any, 0, len(mask))
	for _, sel := range mask {
		if sel {
			leaves = append(leaves, active[0])
			active = active[1:]
			continue
		}
		leaves = append(leaves, inactive[0])
		inactive = inactive[1:]
	}
	return tree.Unflatten(s, leaves)
}

// Merge reassembles the partitioned tree.
func (p *Partition) Merge() (any, error) {
	return Merge(p.Active, p.Inactive, p.Mask, p.Structure)
}
