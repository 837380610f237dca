package tdce

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/tdce/internal/analysis/lattice"
	"github.com/gnolang/tdce/internal/analysis/liveness"
	"github.com/gnolang/tdce/internal/ir"
	"github.com/gnolang/tdce/internal/trace"
)

// IsDead reports whether in is trivially dead given the variables live
// right after it: it defines a variable nobody reads later and has no
// side effect.
func IsDead(in *ir.Instr, out *lattice.VarSet) bool {
	return in.HasDef() && !in.Effect && !out.Has(in.Def)
}

// Eliminate removes every dead instruction of f according to the
// converged liveness in res and returns copies of the removed
// instructions in sequence order.
//
// The out-sets stay valid while removing: dropping a dead instruction
// can only shrink the liveness of the others.
func Eliminate(f *ir.Func, res *liveness.Result, tr trace.Tracer) ([]*ir.Instr, error) {
	if tr == nil {
		tr = trace.Nop{}
	}

	var removed []*ir.Instr
	for _, in := range f.Instrs() {
		out := res.Out(in.ID)
		if !IsDead(in, out) {
			continue
		}
		// A function has a single entry, so an entry that branches stays.
		if in.ID == f.Entry() && len(in.Succs) > 1 {
			tr.Unexpected(f.Name, "dead entry instruction has several successors, keeping it",
				zap.Int("instr", int(in.ID)))
			continue
		}

		removed = append(removed, in.Clone())
		if err := f.Remove(in.ID); err != nil {
			return removed, fmt.Errorf("eliminate %s: %w", f.Name, err)
		}
		tr.Removed(f.Name, in, out)
	}
	return removed, nil
}
