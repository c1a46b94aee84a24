package jit

import (
	"github.com/pkg/errors"
	"jsouthworth.net/go/immutable/vector"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

// Program is a compiled op stream. It is immutable once built and safe
// to replay from multiple goroutines, though replays that should be
// observed by a recorder follow the recorder stack's single-goroutine
// discipline.
type Program struct {
	inputIDs  []int
	numValues int
	instrs    *vector.Vector
	consts    []constBinding
	outStruct *tree.Structure
	outs      []outBinding
}

// NumInputs returns the number of dynamic input slots.
func (p *Program) NumInputs() int { return len(p.inputIDs) }

// NumInstructions returns the length of the compiled op stream.
func (p *Program) NumInstructions() int { return p.instrs.Length() }

// Run replays the program against fresh inputs and rebuilds the traced
// output tree with the replayed tensors in the value positions.
// Non-tensor leaves and tensors the trace never saw come back exactly
// as traced.
//
// Replay dispatches through the op layer, so an active tape or tracer
// records the replayed ops.
func (p *Program) Run(inputs []*tensor.Dense) (any, error) {
	if len(inputs) != len(p.inputIDs) {
		return nil, errors.Errorf("jit: program wants %d inputs, got %d", len(p.inputIDs), len(inputs))
	}
	values := make([]*tensor.Dense, p.numValues)
	for _, c := range p.consts {
		values[c.id] = c.val
	}
	for i, in := range inputs {
		if in == nil {
			return nil, errors.Errorf("jit: input %d is nil", i)
		}
		values[p.inputIDs[i]] = in
	}

	n := p.instrs.Length()
	for i := 0; i < n; i++ {
		ins := p.instrs.At(i).(instruction)
		args := make([]*tensor.Dense, len(ins.in))
		for j, id := range ins.in {
			args[j] = values[id]
		}
		values[ins.out] = autodiff.Apply(ins.op, ins.arg, args)
	}

	leaves := make([]any, len(p.outs))
	for i, ob := range p.outs {
		if ob.isValue {
			leaves[i] = values[ob.id]
			continue
		}
		leaves[i] = ob.lit
	}
	out, err := tree.Unflatten(p.outStruct, leaves)
	if err != nil {
		return nil, errors.Wrap(err, "jit: rebuilding output")
	}
	return out, nil
}
