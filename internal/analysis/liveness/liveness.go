// Package liveness solves the backward liveness data-flow equations over
// an instruction graph:
//
//	out[n] = union of in[s] for every successor s of n
//	in[n]  = use[n] ∪ (out[n] − def[n])
//
// Every set starts empty and passes over all instructions are repeated
// until one pass changes nothing. The equations are monotone over a
// finite lattice, so the fixpoint exists and does not depend on the
// visiting order; the order only changes how many passes it takes.
package liveness

import (
	"context"
	"errors"
	"fmt"

	"github.com/gnolang/tdce/internal/analysis/cfg"
	"github.com/gnolang/tdce/internal/analysis/lattice"
	"github.com/gnolang/tdce/internal/analysis/usedef"
	"github.com/gnolang/tdce/internal/ir"
	"github.com/gnolang/tdce/internal/trace"
)

var (
	// ErrNonTermination is returned when the iteration bound is hit
	// before the fixpoint. With well-formed input this means the bound
	// was configured too low or the graph changed under the solver.
	ErrNonTermination = errors.New("fixpoint not reached")
	// ErrBadOrder is returned when a visiting order is not a
	// permutation of the function's instructions.
	ErrBadOrder = errors.New("invalid visiting order")
)

// Result holds the converged in-sets and out-sets.
type Result struct {
	Universe   *lattice.Universe
	Iterations int
	// Snapshots holds a copy of every in-set after each pass, only when
	// requested with WithSnapshots.
	Snapshots []map[ir.ID]*lattice.VarSet

	in  map[ir.ID]*lattice.VarSet
	out map[ir.ID]*lattice.VarSet
}

// In returns the variables live immediately before id.
func (r *Result) In(id ir.ID) *lattice.VarSet {
	if s, ok := r.in[id]; ok {
		return s
	}
	return r.Universe.Bottom()
}

// Out returns the variables live immediately after id.
func (r *Result) Out(id ir.ID) *lattice.VarSet {
	if s, ok := r.out[id]; ok {
		return s
	}
	return r.Universe.Bottom()
}

type solver struct {
	order     []ir.ID
	maxIter   int
	tracer    trace.Tracer
	snapshots bool
}

// Option configures Solve.
type Option func(*solver)

// WithOrder visits instructions in the given order on every pass.
func WithOrder(order []ir.ID) Option {
	return func(s *solver) { s.order = order }
}

// WithMaxIterations bounds the number of passes. Zero or negative values
// select a bound derived from the size of the function.
func WithMaxIterations(n int) Option {
	return func(s *solver) { s.maxIter = n }
}

// WithTracer sends use/def sets and per-iteration sets to t. A nil t
// keeps the no-op tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *solver) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithSnapshots records the in-sets after every pass.
func WithSnapshots() Option {
	return func(s *solver) { s.snapshots = true }
}

// Bound returns the default iteration bound for a function with n
// instructions over v variables. Every pass that changes something adds
// at least one of the 2*n*v bits, and one more pass sees no change.
func Bound(n, v int) int {
	return 2*n*v + 2
}

// Solve computes liveness for f using the use/def sets extracted from it.
func Solve(ctx context.Context, f *ir.Func, sets *usedef.Sets, opts ...Option) (*Result, error) {
	s := &solver{tracer: trace.Nop{}}
	for _, opt := range opts {
		opt(s)
	}

	if err := ir.Validate(f); err != nil {
		return nil, err
	}
	ids := f.Order()
	for _, id := range ids {
		if sets.Use[id] == nil || sets.Def[id] == nil {
			return nil, fmt.Errorf("%w: %s: no use/def sets for instruction %d", ir.ErrMalformedGraph, f.Name, id)
		}
	}

	order := s.order
	if order == nil {
		order = cfg.New(f).Backward()
	} else if err := checkPermutation(order, ids); err != nil {
		return nil, err
	}

	u := sets.Universe
	maxIter := s.maxIter
	if maxIter <= 0 {
		maxIter = Bound(len(ids), u.Len())
	}

	res := &Result{
		Universe: u,
		in:       make(map[ir.ID]*lattice.VarSet, len(ids)),
		out:      make(map[ir.ID]*lattice.VarSet, len(ids)),
	}
	for _, id := range ids {
		res.in[id] = u.Bottom()
		res.out[id] = u.Bottom()
		s.tracer.UseDef(f.Name, f.Instr(id), sets.Use[id], sets.Def[id])
	}

	scratch := u.Bottom()
	for k := 1; ; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		for _, id := range order {
			scratch.Reset()
			for _, succ := range f.Instr(id).Succs {
				scratch.Join(res.in[succ])
			}
			if !scratch.Equal(res.out[id]) {
				res.out[id].Assign(scratch)
				changed = true
			}

			scratch.Remove(sets.Def[id])
			scratch.Join(sets.Use[id])
			if !scratch.Equal(res.in[id]) {
				res.in[id].Assign(scratch)
				changed = true
			}
		}

		res.Iterations = k
		s.tracer.Iteration(f.Name, k, order, res.in, res.out, changed)
		if s.snapshots {
			res.Snapshots = append(res.Snapshots, snapshot(res.in))
		}

		if !changed {
			return res, nil
		}
		if k >= maxIter {
			return nil, fmt.Errorf("%w: %s: still changing after %d iterations", ErrNonTermination, f.Name, k)
		}
	}
}

func snapshot(sets map[ir.ID]*lattice.VarSet) map[ir.ID]*lattice.VarSet {
	c := make(map[ir.ID]*lattice.VarSet, len(sets))
	for id, s := range sets {
		c[id] = s.Clone()
	}
	return c
}

func checkPermutation(order, ids []ir.ID) error {
	if len(order) != len(ids) {
		return fmt.Errorf("%w: %d entries for %d instructions", ErrBadOrder, len(order), len(ids))
	}
	want := make(map[ir.ID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, id := range order {
		if !want[id] {
			return fmt.Errorf("%w: instruction %d missing or repeated", ErrBadOrder, id)
		}
		delete(want, id)
	}
	return nil
}
