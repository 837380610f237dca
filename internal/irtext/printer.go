package irtext

import (
	"fmt"
	"io"
	"strings"

	"github.com/gnolang/tdce/internal/ir"
)

// Print writes m in text form. For a module parsed from text, parsing the
// output yields the same instructions with the same successor edges. Text
// only expresses fall-through and label edges, so YAML graphs with other
// edges are written with MarshalYAML instead.
func Print(w io.Writer, m *ir.Module) error {
	for i, f := range m.Funcs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := PrintFunc(w, f); err != nil {
			return err
		}
	}
	return nil
}

// PrintFunc writes one function group.
func PrintFunc(w io.Writer, f *ir.Func) error {
	var sb strings.Builder
	sb.WriteString("func ")
	sb.WriteString(f.Name)
	sb.WriteString(" {\n")

	block := ""
	for _, in := range f.Instrs() {
		if in.Block != block {
			block = in.Block
			if block != "" {
				sb.WriteString(block)
				sb.WriteString(":\n")
			}
		}
		sb.WriteString("  ")
		sb.WriteString(FormatInstr(f, in))
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatInstr renders in as one line of text. f resolves branch targets
// and may be nil for non-branch instructions.
func FormatInstr(f *ir.Func, in *ir.Instr) string {
	var sb strings.Builder
	if in.HasDef() {
		sb.WriteString(string(in.Def))
		sb.WriteString(" = ")
	}

	switch {
	case in.Op == ir.OpConst || in.Op == ir.OpCopy:
		sb.WriteString(joinOperands(in.Args))
		return sb.String()
	case infixOf[in.Op] != "" && len(in.Args) == 2:
		fmt.Fprintf(&sb, "%s %s %s", in.Args[0], infixOf[in.Op], in.Args[1])
		return sb.String()
	}

	sb.WriteString(in.Op)
	if in.Callee != "" {
		sb.WriteString(" ")
		sb.WriteString(in.Callee)
	}
	if len(in.Args) > 0 {
		sb.WriteString(" ")
		sb.WriteString(joinOperands(in.Args))
	}
	for i := range in.Targets {
		if len(in.Args) > 0 || i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" ")
		sb.WriteString(targetLabel(f, in, i))
	}
	return sb.String()
}

// targetLabel names the block the i-th branch target resolves to. After
// elimination a target may have been relinked past an emptied block.
func targetLabel(f *ir.Func, in *ir.Instr, i int) string {
	if f == nil || len(in.Succs) == 0 {
		return in.Targets[i]
	}
	s := in.Succs[len(in.Succs)-1]
	if i < len(in.Succs) {
		s = in.Succs[i]
	}
	if target := f.Instr(s); target != nil && target.Block != "" {
		return target.Block
	}
	return in.Targets[i]
}

func joinOperands(args []ir.Operand) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
