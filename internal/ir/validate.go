package ir

import (
	"errors"
	"fmt"
)

// ErrMalformedGraph reports a corrupted instruction graph, e.g. a
// successor that refers to an instruction that does not exist.
var ErrMalformedGraph = errors.New("malformed graph")

// Validate checks the structural invariants of f: every live instruction
// sits at its own arena slot, appears once in the sequence, and only
// names live instructions as successors.
func Validate(f *Func) error {
	if f == nil {
		return fmt.Errorf("%w: nil function", ErrMalformedGraph)
	}

	seen := make(map[ID]bool, len(f.order))
	for _, id := range f.order {
		in := f.Instr(id)
		if in == nil {
			continue
		}
		if in.ID != id {
			return fmt.Errorf("%w: %s: instruction at slot %d carries id %d", ErrMalformedGraph, f.Name, id, in.ID)
		}
		if seen[id] {
			return fmt.Errorf("%w: %s: instruction %d appears twice", ErrMalformedGraph, f.Name, id)
		}
		seen[id] = true
	}

	for _, in := range f.Instrs() {
		for _, s := range in.Succs {
			if f.Instr(s) == nil {
				return fmt.Errorf("%w: %s: instruction %d has successor %d which does not exist",
					ErrMalformedGraph, f.Name, in.ID, s)
			}
		}
	}

	for id, in := range f.arena {
		if in != nil && !seen[ID(id)] {
			return fmt.Errorf("%w: %s: instruction %d is not in the sequence", ErrMalformedGraph, f.Name, id)
		}
	}
	return nil
}
