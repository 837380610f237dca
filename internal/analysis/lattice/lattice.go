package lattice

import (
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/gnolang/tdce/internal/ir"
)

// Universe maps every variable of one function to a bit index. All sets
// built from the same universe have the same width.
type Universe struct {
	index map[ir.Var]uint
	vars  []ir.Var
}

// NewUniverse creates a universe over vars. Duplicates are ignored.
func NewUniverse(vars []ir.Var) *Universe {
	u := &Universe{
		index: make(map[ir.Var]uint, len(vars)),
		vars:  make([]ir.Var, 0, len(vars)),
	}
	for _, v := range vars {
		if _, ok := u.index[v]; ok {
			continue
		}
		u.index[v] = uint(len(u.vars))
		u.vars = append(u.vars, v)
	}
	return u
}

// UniverseOf builds the universe of all variables appearing in f.
func UniverseOf(f *ir.Func) *Universe {
	return NewUniverse(f.Vars())
}

// Len returns the number of variables.
func (u *Universe) Len() int { return len(u.vars) }

// Index returns the bit index of v.
func (u *Universe) Index(v ir.Var) (uint, bool) {
	i, ok := u.index[v]
	return i, ok
}

// Var returns the variable at bit index i.
func (u *Universe) Var(i uint) ir.Var { return u.vars[i] }

// Bottom returns the empty set, the least element of the lattice.
func (u *Universe) Bottom() *VarSet {
	return &VarSet{u: u, bits: bitset.New(uint(len(u.vars)))}
}

// Of returns the set holding vars. Variables outside the universe are
// ignored.
func (u *Universe) Of(vars ...ir.Var) *VarSet {
	s := u.Bottom()
	for _, v := range vars {
		s.Add(v)
	}
	return s
}

// VarSet is a set of variables over a fixed universe.
type VarSet struct {
	u    *Universe
	bits *bitset.BitSet
}

// Has reports whether v is in the set.
func (s *VarSet) Has(v ir.Var) bool {
	i, ok := s.u.index[v]
	return ok && s.bits.Test(i)
}

// Add inserts v. It is a no-op for variables outside the universe.
func (s *VarSet) Add(v ir.Var) {
	if i, ok := s.u.index[v]; ok {
		s.bits.Set(i)
	}
}

// Len returns the number of members.
func (s *VarSet) Len() int { return int(s.bits.Count()) }

// Empty reports whether the set has no members.
func (s *VarSet) Empty() bool { return s.bits.None() }

// Join adds every member of o to s (least upper bound, in place).
func (s *VarSet) Join(o *VarSet) {
	s.bits.InPlaceUnion(o.bits)
}

// Remove deletes every member of o from s (in place).
func (s *VarSet) Remove(o *VarSet) {
	s.bits.InPlaceDifference(o.bits)
}

// Reset makes s empty.
func (s *VarSet) Reset() {
	s.bits.ClearAll()
}

// Assign overwrites s with the members of o.
func (s *VarSet) Assign(o *VarSet) {
	o.bits.Copy(s.bits)
}

// Clone returns an independent copy of s.
func (s *VarSet) Clone() *VarSet {
	return &VarSet{u: s.u, bits: s.bits.Clone()}
}

// Equal reports whether s and o have the same members.
func (s *VarSet) Equal(o *VarSet) bool {
	return s.bits.Equal(o.bits)
}

// SubsetOf reports whether every member of s is in o.
func (s *VarSet) SubsetOf(o *VarSet) bool {
	return o.bits.IsSuperSet(s.bits)
}

// Vars returns the members in universe order.
func (s *VarSet) Vars() []ir.Var {
	vars := make([]ir.Var, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		vars = append(vars, s.u.vars[i])
	}
	return vars
}

// String renders the set as "{a, b}".
func (s *VarSet) String() string {
	vars := s.Vars()
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = string(v)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Union returns a new set holding the members of both a and b.
func Union(a, b *VarSet) *VarSet {
	out := a.Clone()
	out.Join(b)
	return out
}

// Difference returns a new set holding the members of a not in b.
func Difference(a, b *VarSet) *VarSet {
	out := a.Clone()
	out.Remove(b)
	return out
}
