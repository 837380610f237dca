package ir

import (
	"strconv"
	"strings"
)

// ID identifies an instruction within its function. IDs are assigned once
// and never reused, so they stay valid after other instructions are removed.
type ID int

// NoID is the ID of nothing, e.g. the entry of an empty function.
const NoID ID = -1

// Var names a value. Two operands refer to the same value iff their
// names are equal.
type Var string

// Operand is either a variable reference or an integer constant.
type Operand struct {
	Var   Var
	Const int64
}

// VarOperand returns an operand reading v.
func VarOperand(v Var) Operand { return Operand{Var: v} }

// ConstOperand returns a constant operand.
func ConstOperand(c int64) Operand { return Operand{Const: c} }

// IsVar reports whether the operand reads a variable.
func (o Operand) IsVar() bool { return o.Var != "" }

func (o Operand) String() string {
	if o.IsVar() {
		return string(o.Var)
	}
	return strconv.FormatInt(o.Const, 10)
}

// Instr is a single instruction of a function.
type Instr struct {
	ID     ID
	Op     string
	Def    Var // empty when the instruction produces no named value
	Args   []Operand
	Effect bool // side effecting instructions are never removed
	Succs  []ID
	Block  string

	// Callee and Targets only carry information for printing.
	Callee  string
	Targets []string
}

// Uses returns the variables read by the instruction, in operand order,
// without duplicates.
func (in *Instr) Uses() []Var {
	var vars []Var
	for _, a := range in.Args {
		if !a.IsVar() {
			continue
		}
		dup := false
		for _, v := range vars {
			if v == a.Var {
				dup = true
				break
			}
		}
		if !dup {
			vars = append(vars, a.Var)
		}
	}
	return vars
}

// HasDef reports whether the instruction defines a variable.
func (in *Instr) HasDef() bool { return in.Def != "" }

// IsTerminal reports whether control leaves the function after in.
func (in *Instr) IsTerminal() bool { return len(in.Succs) == 0 }

// Clone returns a deep copy of in.
func (in *Instr) Clone() *Instr {
	c := *in
	c.Args = append([]Operand(nil), in.Args...)
	c.Succs = append([]ID(nil), in.Succs...)
	c.Targets = append([]string(nil), in.Targets...)
	return &c
}

// String renders the instruction in a compact debugging form, e.g.
// "%3 b = add a, 2 -> [4]".
func (in *Instr) String() string {
	var sb strings.Builder
	sb.WriteString("%")
	sb.WriteString(strconv.Itoa(int(in.ID)))
	sb.WriteString(" ")
	if in.HasDef() {
		sb.WriteString(string(in.Def))
		sb.WriteString(" = ")
	}
	sb.WriteString(in.Op)
	if in.Callee != "" {
		sb.WriteString(" ")
		sb.WriteString(in.Callee)
	}
	for i, a := range in.Args {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteString(" -> [")
	for i, s := range in.Succs {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(strconv.Itoa(int(s)))
	}
	sb.WriteString("]")
	return sb.String()
}

// Module is the set of functions read from one input.
type Module struct {
	Name  string
	Funcs []*Func
}

// Func returns the function with the given name or nil.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
