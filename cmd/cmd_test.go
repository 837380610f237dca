package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/tdce/internal"
	"github.com/gnolang/tdce/internal/config"
	"github.com/gnolang/tdce/internal/ir"
	"github.com/gnolang/tdce/internal/irtext"
)

const sample = "a = 7; b = a + 2; c = b - a; d = c / a; return b\n"

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newEngine(t *testing.T) *internal.Engine {
	t.Helper()
	engine, err := internal.NewEngine(config.Default(), zap.NewNop())
	require.NoError(t, err)
	return engine
}

func resetRunFlags() {
	showReport, jsonOutput, emitYAML, outPath = false, false, false, ""
}

func TestRunEliminationPrintsIR(t *testing.T) {
	defer resetRunFlags()
	path := writeInput(t, "prog.ir", sample)

	var out bytes.Buffer
	require.NoError(t, runElimination(context.Background(), zap.NewNop(), newEngine(t), []string{path}, &out))
	assert.Equal(t, "func main {\n  a = 7\n  b = a + 2\n  ret b\n}\n", out.String())
}

func TestRunEliminationYAML(t *testing.T) {
	defer resetRunFlags()
	emitYAML = true
	path := writeInput(t, "prog.ir", sample)

	var out bytes.Buffer
	require.NoError(t, runElimination(context.Background(), zap.NewNop(), newEngine(t), []string{path}, &out))

	m, err := irtext.ParseYAML("out.yaml", out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, m.Funcs[0].Len())
}

func TestRunEliminationKeepsYAMLEdges(t *testing.T) {
	defer resetRunFlags()
	// a jumps over the print straight to ret, an edge text form cannot express
	path := writeInput(t, "graph.yaml", `
functions:
  - name: f
    instructions:
      - {id: 1, op: const, def: z, args: ["9"]}
      - {id: 2, op: const, def: a, args: ["1"], succs: [4]}
      - {id: 3, op: print, args: [a], effect: true}
      - {id: 4, op: ret, args: [a]}
`)

	var out bytes.Buffer
	require.NoError(t, runElimination(context.Background(), zap.NewNop(), newEngine(t), []string{path}, &out))

	m, err := irtext.ParseYAML("out.yaml", out.Bytes())
	require.NoError(t, err)
	f := m.Funcs[0]
	instrs := f.Instrs()
	require.Len(t, instrs, 3)
	assert.Equal(t, ir.Var("a"), instrs[0].Def)
	assert.Equal(t, []ir.ID{instrs[2].ID}, instrs[0].Succs)
	assert.Equal(t, []ir.ID{instrs[2].ID}, instrs[1].Succs)
}

func TestRunEliminationReport(t *testing.T) {
	defer resetRunFlags()
	color.NoColor = true
	showReport = true
	path := writeInput(t, "prog.ir", sample)

	var out bytes.Buffer
	require.NoError(t, runElimination(context.Background(), zap.NewNop(), newEngine(t), []string{path}, &out))
	assert.Contains(t, out.String(), "- d = c / a  (pass 1)")
	assert.Contains(t, out.String(), "removed 2 instructions")
}

func TestRunEliminationJSONToFile(t *testing.T) {
	defer resetRunFlags()
	jsonOutput = true
	path := writeInput(t, "prog.ir", sample)
	outPath = filepath.Join(t.TempDir(), "report.json")

	var out bytes.Buffer
	require.NoError(t, runElimination(context.Background(), zap.NewNop(), newEngine(t), []string{path}, &out))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, path)
}

func TestRunEliminationError(t *testing.T) {
	defer resetRunFlags()
	path := writeInput(t, "bad.ir", "br nowhere\n")

	var out bytes.Buffer
	err := runElimination(context.Background(), zap.NewNop(), newEngine(t), []string{path}, &out)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestRunLiveAnalysis(t *testing.T) {
	defer func() { showEdges = false }()
	color.NoColor = true
	showEdges = true
	path := writeInput(t, "prog.ir", "func f {\n  a = 1\n  ret a\n}\nfunc g {\n  ret\n}\n")

	var out bytes.Buffer
	ok := runLiveAnalysis(context.Background(), zap.NewNop(), config.Default(), []string{path}, "f", &out)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "func f (fixpoint after 2 iterations)")
	assert.Contains(t, out.String(), "%0 -> %1")
	assert.NotContains(t, out.String(), "func g")

	out.Reset()
	ok = runLiveAnalysis(context.Background(), zap.NewNop(), config.Default(), []string{path}, "missing", &out)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Function not found: missing")
}

func TestLoadConfigTraceOverride(t *testing.T) {
	defer func() { cfgFile, traceFlag = config.DefaultPath, false }()
	cfgFile = writeInput(t, ".tdce.yaml", "max_passes: 4\n")
	traceFlag = true

	c, err := loadConfig()
	require.NoError(t, err)
	assert.True(t, c.Trace)
	assert.Equal(t, 4, c.MaxPasses)
}

func TestInitCommandWritesDefaults(t *testing.T) {
	defer func() { cfgFile = config.DefaultPath }()
	cfgFile = filepath.Join(t.TempDir(), ".tdce.yaml")
	logger = zap.NewNop()

	initCmd.Run(initCmd, nil)

	c, err := config.Load(cfgFile)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
}
