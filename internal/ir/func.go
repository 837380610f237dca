package ir

import "fmt"

// Func is one function's instruction graph.
//
// Instructions live in an arena indexed by ID. Removing an instruction
// leaves a tombstone in the arena, so IDs held elsewhere never dangle,
// and relinks every predecessor to the removed instruction's successors.
type Func struct {
	Name string

	// arena holds every instruction ever added; nil marks a removed one.
	arena []*Instr
	// order is the instruction sequence. It may contain tombstoned IDs
	// until Compact is called.
	order []ID
}

// NewFunc creates an empty function.
func NewFunc(name string) *Func {
	return &Func{
		Name:  name,
		arena: make([]*Instr, 0, 16),
	}
}

// Add appends in to the instruction sequence and assigns its ID.
func (f *Func) Add(in *Instr) ID {
	id := ID(len(f.arena))
	in.ID = id
	f.arena = append(f.arena, in)
	f.order = append(f.order, id)
	return id
}

// Instr returns the live instruction with the given ID, or nil.
func (f *Func) Instr(id ID) *Instr {
	if id < 0 || int(id) >= len(f.arena) {
		return nil
	}
	return f.arena[id]
}

// Cap returns the number of IDs handed out so far. Every ID, live or
// removed, is below Cap.
func (f *Func) Cap() int { return len(f.arena) }

// Len returns the number of live instructions.
func (f *Func) Len() int {
	n := 0
	for _, id := range f.order {
		if f.arena[id] != nil {
			n++
		}
	}
	return n
}

// Order returns the IDs of the live instructions in sequence order.
func (f *Func) Order() []ID {
	ids := make([]ID, 0, len(f.order))
	for _, id := range f.order {
		if f.arena[id] != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Instrs returns the live instructions in sequence order.
func (f *Func) Instrs() []*Instr {
	res := make([]*Instr, 0, len(f.order))
	for _, id := range f.order {
		if in := f.arena[id]; in != nil {
			res = append(res, in)
		}
	}
	return res
}

// Entry returns the first live instruction, or NoID for an empty function.
func (f *Func) Entry() ID {
	for _, id := range f.order {
		if f.arena[id] != nil {
			return id
		}
	}
	return NoID
}

// Remove tombstones the instruction id. Every live instruction that
// listed id as a successor gets id's successors instead, so control
// that used to pass through id now skips it.
func (f *Func) Remove(id ID) error {
	removed := f.Instr(id)
	if removed == nil {
		return fmt.Errorf("%w: remove of unknown instruction %d", ErrMalformedGraph, id)
	}
	f.arena[id] = nil

	for _, in := range f.arena {
		if in == nil {
			continue
		}
		in.Succs = relink(in.Succs, id, removed.Succs)
	}
	return nil
}

// relink replaces every occurrence of id in succs with repl. The result
// keeps the original order and holds no duplicates and no id.
func relink(succs []ID, id ID, repl []ID) []ID {
	found := false
	for _, s := range succs {
		if s == id {
			found = true
			break
		}
	}
	if !found {
		return succs
	}

	res := make([]ID, 0, len(succs)+len(repl))
	seen := make(map[ID]bool, len(succs)+len(repl))
	add := func(s ID) {
		if s == id || seen[s] {
			return
		}
		seen[s] = true
		res = append(res, s)
	}
	for _, s := range succs {
		if s != id {
			add(s)
			continue
		}
		for _, r := range repl {
			add(r)
		}
	}
	return res
}

// Compact drops tombstones from the instruction sequence and returns how
// many were dropped. IDs of the remaining instructions do not change.
func (f *Func) Compact() int {
	kept := f.order[:0]
	dropped := 0
	for _, id := range f.order {
		if f.arena[id] == nil {
			dropped++
			continue
		}
		kept = append(kept, id)
	}
	f.order = kept
	return dropped
}

// Clone returns a deep copy of f. Tombstones are preserved so IDs match.
func (f *Func) Clone() *Func {
	c := &Func{
		Name:  f.Name,
		arena: make([]*Instr, len(f.arena)),
		order: append([]ID(nil), f.order...),
	}
	for i, in := range f.arena {
		if in != nil {
			c.arena[i] = in.Clone()
		}
	}
	return c
}

// Vars returns every variable defined or read in f, in first-appearance
// order.
func (f *Func) Vars() []Var {
	seen := make(map[Var]bool)
	var vars []Var
	add := func(v Var) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		vars = append(vars, v)
	}
	for _, in := range f.Instrs() {
		for _, a := range in.Args {
			add(a.Var)
		}
		add(in.Def)
	}
	return vars
}
