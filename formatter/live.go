package formatter

import (
	"fmt"
	"strings"

	"github.com/gnolang/tdce/internal/analysis/liveness"
	"github.com/gnolang/tdce/internal/analysis/usedef"
	"github.com/gnolang/tdce/internal/ir"
	"github.com/gnolang/tdce/internal/irtext"
)

// FormatLiveness renders one row per instruction with its use, def, in
// and out sets.
func FormatLiveness(f *ir.Func, sets *usedef.Sets, res *liveness.Result) string {
	instrs := f.Instrs()
	text := make([]string, len(instrs))
	width := len("instr")
	for i, in := range instrs {
		text[i] = irtext.FormatInstr(f, in)
		if len(text[i]) > width {
			width = len(text[i])
		}
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Sprintf("func %s", f.Name))
	sb.WriteString(noStyle.Sprintf(" (fixpoint after %d iterations)\n", res.Iterations))
	sb.WriteString(lineStyle.Sprintf("%4s | %-*s | %-12s | %-6s | %-20s | %s\n", "id", width, "instr", "use", "def", "in", "out"))
	for i, in := range instrs {
		row := fmt.Sprintf("%-*s | %-12s | %-6s | %-20s | %s",
			width, text[i],
			sets.Use[in.ID], sets.Def[in.ID],
			res.In(in.ID), res.Out(in.ID),
		)
		sb.WriteString(lineStyle.Sprintf("%4d | ", in.ID))
		sb.WriteString(row)
		sb.WriteString("\n")
	}
	return sb.String()
}
