package cfg

import (
	"fmt"
	"io"
	"strings"

	"github.com/gnolang/tdce/internal/ir"
)

// CFG is an indexed, read-only view of a function's control edges.
type CFG struct {
	Entry ir.ID

	fn    *ir.Func
	order []ir.ID
	preds map[ir.ID][]ir.ID
}

// New indexes f. The result goes stale once f is modified.
func New(f *ir.Func) *CFG {
	g := &CFG{
		Entry: f.Entry(),
		fn:    f,
		order: f.Order(),
		preds: make(map[ir.ID][]ir.ID, f.Len()),
	}
	for _, id := range g.order {
		for _, s := range f.Instr(id).Succs {
			g.preds[s] = append(g.preds[s], id)
		}
	}
	return g
}

// Instrs returns the IDs of all instructions in sequence order.
func (g *CFG) Instrs() []ir.ID { return g.order }

// Succs returns the successors of id.
func (g *CFG) Succs(id ir.ID) []ir.ID {
	in := g.fn.Instr(id)
	if in == nil {
		return nil
	}
	return in.Succs
}

// Preds returns the predecessors of id in sequence order.
func (g *CFG) Preds(id ir.ID) []ir.ID { return g.preds[id] }

// PostOrder returns the instructions reachable from the entry in
// depth-first postorder: every instruction comes after all of its
// successors except along back edges.
func (g *CFG) PostOrder() []ir.ID {
	if g.Entry == ir.NoID {
		return nil
	}
	visited := make(map[ir.ID]bool, len(g.order))
	post := make([]ir.ID, 0, len(g.order))

	// Iterative DFS so long straight-line functions do not grow the stack.
	type frame struct {
		id   ir.ID
		next int
	}
	stack := []frame{{id: g.Entry}}
	visited[g.Entry] = true
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.Succs(top.id)
		if top.next < len(succs) {
			s := succs[top.next]
			top.next++
			if !visited[s] {
				visited[s] = true
				stack = append(stack, frame{id: s})
			}
			continue
		}
		post = append(post, top.id)
		stack = stack[:len(stack)-1]
	}
	return post
}

// Reachable returns the set of instructions reachable from the entry.
func (g *CFG) Reachable() map[ir.ID]bool {
	post := g.PostOrder()
	reach := make(map[ir.ID]bool, len(post))
	for _, id := range post {
		reach[id] = true
	}
	return reach
}

// Backward returns every instruction in an order that suits backward
// analyses: the reachable ones in postorder, followed by the unreachable
// ones from last to first.
func (g *CFG) Backward() []ir.ID {
	post := g.PostOrder()
	reach := make(map[ir.ID]bool, len(post))
	for _, id := range post {
		reach[id] = true
	}
	for i := len(g.order) - 1; i >= 0; i-- {
		if id := g.order[i]; !reach[id] {
			post = append(post, id)
		}
	}
	return post
}

// Reverse returns the instructions from last to first in sequence order.
func (g *CFG) Reverse() []ir.ID {
	rev := make([]ir.ID, len(g.order))
	for i, id := range g.order {
		rev[len(g.order)-1-i] = id
	}
	return rev
}

// Fprint writes one line per edge, e.g. "%1 -> %2". An instruction with
// several predecessors gets a "%1 <- %0 %4" line before its edges, and one
// that cannot be reached from the entry is marked "%3 unreachable".
func (g *CFG) Fprint(w io.Writer) error {
	reach := g.Reachable()
	for _, id := range g.order {
		if preds := g.Preds(id); len(preds) > 1 {
			var sb strings.Builder
			fmt.Fprintf(&sb, "%%%d <-", id)
			for _, p := range preds {
				fmt.Fprintf(&sb, " %%%d", p)
			}
			if _, err := fmt.Fprintln(w, sb.String()); err != nil {
				return err
			}
		}
		if !reach[id] {
			if _, err := fmt.Fprintf(w, "%%%d unreachable\n", id); err != nil {
				return err
			}
		}
		for _, s := range g.Succs(id) {
			if _, err := fmt.Fprintf(w, "%%%d -> %%%d\n", id, s); err != nil {
				return err
			}
		}
	}
	return nil
}
