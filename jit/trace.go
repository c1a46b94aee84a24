// Package jit captures op streams as replayable programs and caches
// them.
//
// Trace runs a function once under a recorder and compiles everything
// the op layer performed into a Program. Run replays the program
// against fresh input tensors. Replay goes back through the op layer,
// so recorders active at replay time (an enclosing tape or tracer)
// observe the replayed work; tracing composes with differentiation in
// either order.
//
// Tracing follows the recorder stack's discipline: one goroutine at a
// time. A compiled Program is immutable and may be replayed
// concurrently. The Cache is safe for concurrent lookups.
package jit

import (
	"github.com/pkg/errors"
	"jsouthworth.net/go/immutable/vector"

	"github.com/leafkit/leafkit/autodiff"
	"github.com/leafkit/leafkit/tensor"
	"github.com/leafkit/leafkit/tree"
)

type instruction struct {
	op  autodiff.Op
	arg float64
	in  []int
	out int
}

type constBinding struct {
	id  int
	val *tensor.Dense
}

type outBinding struct {
	isValue bool
	id      int
	lit     any
}

type tracer struct {
	ids    map[*tensor.Dense]int
	next   int
	consts []constBinding
	instrs []instruction
}

// idOf returns the value id for t, registering it as a captured
// constant when the tracer has not seen it before. Tensors built
// outside the op layer reach the program only this way, frozen at
// their traced values.
func (tr *tracer) idOf(t *tensor.Dense) int {
	if id, ok := tr.ids[t]; ok {
		return id
	}
	id := tr.next
	tr.next++
	tr.ids[t] = id
	tr.consts = append(tr.consts, constBinding{id: id, val: t})
	return id
}

func (tr *tracer) bindFresh(t *tensor.Dense) int {
	if id, ok := tr.ids[t]; ok {
		return id
	}
	id := tr.next
	tr.next++
	tr.ids[t] = id
	return id
}

// Record implements autodiff.Recorder.
func (tr *tracer) Record(op autodiff.Op, arg float64, inputs []*tensor.Dense, output *tensor.Dense) {
	in := make([]int, len(inputs))
	for i, t := range inputs {
		in[i] = tr.idOf(t)
	}
	tr.instrs = append(tr.instrs, instruction{op: op, arg: arg, in: in, out: tr.bindFresh(output)})
}

// Trace runs fn once under a fresh tracer and compiles the op stream
// into a Program whose dynamic slots are the given input tensors. The
// value fn returned is handed back alongside the program, so the
// tracing call doubles as the first execution.
//
// Tensors fn consumes that are neither inputs nor op results are
// captured as constants. An input tensor appearing at several
// positions is traced as one value; replays must keep those positions
// identical.
func Trace(inputs []*tensor.Dense, fn func() any) (*Program, any, error) {
	tr := &tracer{ids: make(map[*tensor.Dense]int, len(inputs))}
	inputIDs := make([]int, len(inputs))
	for i, in := range inputs {
		if in == nil {
			return nil, nil, errors.Errorf("jit: input %d is nil", i)
		}
		inputIDs[i] = tr.bindFresh(in)
	}

	autodiff.PushRecorder(tr)
	defer autodiff.PopRecorder()
	out := fn()

	leaves, outStruct := tree.Flatten(out)
	outs := make([]outBinding, len(leaves))
	for i, leaf := range leaves {
		if d, ok := leaf.(*tensor.Dense); ok {
			if id, known := tr.ids[d]; known {
				outs[i] = outBinding{isValue: true, id: id}
				continue
			}
		}
		outs[i] = outBinding{lit: leaf}
	}

	instrs := vector.Empty().Transform(func(t *vector.TVector) *vector.TVector {
		for _, ins := range tr.instrs {
			t = t.Append(ins)
		}
		return t
	})

	return &Program{
		inputIDs:  inputIDs,
		numValues: tr.next,
		instrs:    instrs,
		consts:    tr.consts,
		outStruct: outStruct,
		outs:      outs,
	}, out, nil
}
