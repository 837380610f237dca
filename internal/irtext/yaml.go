package irtext

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/tdce/internal/ir"
)

// GraphFile is the YAML form of a module with explicit successor edges.
//
//	functions:
//	  - name: main
//	    instructions:
//	      - {id: 1, def: a, op: const, args: ["7"]}
//	      - {id: 2, def: b, op: add, args: [a, "2"], succs: [3]}
//	      - {id: 3, op: ret, args: [b]}
//
// Instructions without a succs key fall through to the next entry, an
// explicit empty list marks a terminal instruction. ret is always terminal.
type GraphFile struct {
	Name      string      `yaml:"name,omitempty"`
	Functions []GraphFunc `yaml:"functions"`
}

// GraphFunc is one function of a GraphFile.
type GraphFunc struct {
	Name         string       `yaml:"name"`
	Instructions []GraphInstr `yaml:"instructions"`
}

// GraphInstr is one instruction of a GraphFunc. IDs only need to be
// unique within their function.
type GraphInstr struct {
	ID     int      `yaml:"id"`
	Op     string   `yaml:"op"`
	Def    string   `yaml:"def,omitempty"`
	Args   []string `yaml:"args,omitempty,flow"`
	Succs  *[]int   `yaml:"succs,omitempty,flow"`
	Effect *bool    `yaml:"effect,omitempty"`
	Block  string   `yaml:"block,omitempty"`
	Callee string   `yaml:"callee,omitempty"`
}

// ParseYAML decodes a GraphFile into a module.
func ParseYAML(name string, data []byte) (*ir.Module, error) {
	var gf GraphFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if gf.Name != "" {
		name = gf.Name
	}

	m := &ir.Module{Name: name}
	for _, gfn := range gf.Functions {
		if m.Func(gfn.Name) != nil {
			return nil, fmt.Errorf("%w: function %q defined twice", ir.ErrMalformedGraph, gfn.Name)
		}
		f, err := buildGraphFunc(gfn)
		if err != nil {
			return nil, err
		}
		m.Funcs = append(m.Funcs, f)
	}
	return m, nil
}

func buildGraphFunc(gfn GraphFunc) (*ir.Func, error) {
	f := ir.NewFunc(gfn.Name)
	ids := make(map[int]ir.ID, len(gfn.Instructions))
	for _, gi := range gfn.Instructions {
		if _, dup := ids[gi.ID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate instruction id %d", ir.ErrMalformedGraph, gfn.Name, gi.ID)
		}
		args, err := parseArgs(gi.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: instruction %d: %w", gfn.Name, gi.ID, err)
		}
		in := &ir.Instr{
			Op:     gi.Op,
			Def:    ir.Var(gi.Def),
			Args:   args,
			Effect: ir.HasSideEffect(gi.Op),
			Block:  gi.Block,
			Callee: gi.Callee,
		}
		if gi.Effect != nil {
			in.Effect = *gi.Effect
		}
		ids[gi.ID] = f.Add(in)
	}

	for k, gi := range gfn.Instructions {
		in := f.Instr(ids[gi.ID])
		switch {
		case gi.Op == ir.OpRet:
		case gi.Succs != nil:
			for _, s := range *gi.Succs {
				id, ok := ids[s]
				if !ok {
					return nil, fmt.Errorf("%w: %s: instruction %d has successor %d which does not exist",
						ir.ErrMalformedGraph, gfn.Name, gi.ID, s)
				}
				in.Succs = append(in.Succs, id)
			}
		case k+1 < len(gfn.Instructions):
			in.Succs = []ir.ID{ids[gfn.Instructions[k+1].ID]}
		}
	}

	if err := ir.Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

func parseArgs(raw []string) ([]ir.Operand, error) {
	args := make([]ir.Operand, 0, len(raw))
	for _, a := range raw {
		if a == "" {
			return nil, fmt.Errorf("empty operand")
		}
		if c, err := strconv.ParseInt(a, 10, 64); err == nil {
			args = append(args, ir.ConstOperand(c))
			continue
		}
		args = append(args, ir.VarOperand(ir.Var(a)))
	}
	return args, nil
}

// MarshalYAML encodes m as a GraphFile with explicit successors.
func MarshalYAML(m *ir.Module) ([]byte, error) {
	gf := GraphFile{Name: m.Name}
	for _, f := range m.Funcs {
		gfn := GraphFunc{Name: f.Name}
		for _, in := range f.Instrs() {
			succs := make([]int, len(in.Succs))
			for i, s := range in.Succs {
				succs[i] = int(s)
			}
			effect := in.Effect
			gi := GraphInstr{
				ID:     int(in.ID),
				Op:     in.Op,
				Def:    string(in.Def),
				Succs:  &succs,
				Effect: &effect,
				Block:  in.Block,
				Callee: in.Callee,
			}
			for _, a := range in.Args {
				gi.Args = append(gi.Args, a.String())
			}
			gfn.Instructions = append(gfn.Instructions, gi)
		}
		gf.Functions = append(gf.Functions, gfn)
	}
	return yaml.Marshal(gf)
}
