// Package usedef computes the variables each instruction reads and writes.
package usedef

import (
	"github.com/gnolang/tdce/internal/analysis/lattice"
	"github.com/gnolang/tdce/internal/ir"
)

// Sets holds the use-set and def-set of every instruction of a function,
// indexed by instruction ID.
type Sets struct {
	Universe *lattice.Universe
	Use      map[ir.ID]*lattice.VarSet
	Def      map[ir.ID]*lattice.VarSet
}

// Of returns the use-set and def-set of a single instruction. Constant
// operands are not variables and are ignored.
func Of(in *ir.Instr, u *lattice.Universe) (use, def *lattice.VarSet) {
	use = u.Bottom()
	for _, v := range in.Uses() {
		use.Add(v)
	}
	def = u.Bottom()
	if in.HasDef() {
		def.Add(in.Def)
	}
	return use, def
}

// Extract computes the sets of every live instruction of f over a fresh
// universe of f's variables.
func Extract(f *ir.Func) *Sets {
	u := lattice.UniverseOf(f)
	s := &Sets{
		Universe: u,
		Use:      make(map[ir.ID]*lattice.VarSet, f.Len()),
		Def:      make(map[ir.ID]*lattice.VarSet, f.Len()),
	}
	for _, in := range f.Instrs() {
		s.Use[in.ID], s.Def[in.ID] = Of(in, u)
	}
	return s
}
