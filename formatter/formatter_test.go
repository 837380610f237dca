package formatter

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tdce/internal/analysis/usedef"
	"github.com/gnolang/tdce/internal/irtext"
	"github.com/gnolang/tdce/internal/tdce"
	tt "github.com/gnolang/tdce/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

var sampleReport = tt.FileReport{
	Filename: "prog.ir",
	Funcs: []tt.FuncReport{
		{
			Func:       "main",
			Before:     5,
			After:      3,
			Passes:     3,
			Iterations: []int{2, 2, 1},
			Removed: []tt.Removal{
				{ID: 3, Pass: 1, Def: "d", Instr: "d = c / a"},
				{ID: 2, Pass: 2, Def: "c", Instr: "c = b - a"},
			},
		},
		{Func: "empty", Before: 1, After: 1, Passes: 1, Iterations: []int{1}},
	},
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	expected := `--> prog.ir
func main: 5 -> 3 instructions in 3 passes
     3 | - d = c / a  (pass 1)
     2 | - c = b - a  (pass 2)
func empty: 1 -> 1 instructions in 1 pass
removed 2 instructions
`
	assert.Equal(t, expected, FormatReport(sampleReport))
}

func TestFormatReports(t *testing.T) {
	t.Parallel()

	single := tt.FileReport{
		Filename: "one.ir",
		Funcs:    []tt.FuncReport{{Func: "main", Before: 2, After: 1, Passes: 2, Removed: []tt.Removal{{ID: 0, Pass: 1, Def: "a", Instr: "a = 1"}}}},
	}
	out := FormatReports([]tt.FileReport{single, {Filename: "two.ir"}})
	assert.Equal(t, `--> one.ir
func main: 2 -> 1 instructions in 2 passes
     0 | - a = 1  (pass 1)
removed 1 instruction
--> two.ir
removed 0 instructions
`, out)
}

func TestFormatJSON(t *testing.T) {
	t.Parallel()

	data, err := FormatJSON([]tt.FileReport{sampleReport})
	require.NoError(t, err)

	var decoded map[string]tt.FileReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Contains(t, decoded, "prog.ir")
	got := decoded["prog.ir"]
	assert.Equal(t, sampleReport.Funcs, got.Funcs)
	assert.Nil(t, got.Module)
	assert.Contains(t, string(data), `"instr":"d = c / a"`)
}

func TestFormatLiveness(t *testing.T) {
	t.Parallel()

	m, err := irtext.Parse("t", "a = 7; b = a + 2; ret b")
	require.NoError(t, err)
	f := m.Funcs[0]

	res, err := tdce.Analyze(context.Background(), f, tdce.Options{})
	require.NoError(t, err)

	out := FormatLiveness(f, usedef.Extract(f), res)
	assert.Contains(t, out, "func main (fixpoint after 2 iterations)")
	assert.Contains(t, out, "b = a + 2 | {a}          | {b}    | {a}                  | {b}")
	assert.Contains(t, out, "   2 | ret b     | {b}          | {}     | {b}                  | {}")
}
