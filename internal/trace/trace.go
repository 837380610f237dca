// Package trace is the diagnostics channel of the analyses. It receives the
// use/def/successor sets of every instruction and the in/out sets after
// every solver iteration. Nothing is recorded unless tracing is enabled.
package trace

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/tdce/internal/analysis/lattice"
	"github.com/gnolang/tdce/internal/ir"
)

// Tracer receives analysis events.
type Tracer interface {
	// UseDef reports the extracted sets and the successors of in.
	UseDef(fn string, in *ir.Instr, use, def *lattice.VarSet)
	// Iteration reports the sets of every instruction after solver pass k.
	Iteration(fn string, k int, order []ir.ID, in, out map[ir.ID]*lattice.VarSet, changed bool)
	// Removed reports an eliminated instruction with its out-set.
	Removed(fn string, in *ir.Instr, out *lattice.VarSet)
	// Unexpected reports a state the analysis tolerates but should not see.
	Unexpected(fn string, msg string, fields ...zap.Field)
}

// New returns a zap-backed tracer when enabled and the no-op tracer
// otherwise.
func New(enabled bool, logger *zap.Logger) Tracer {
	if !enabled || logger == nil {
		return Nop{}
	}
	return &zapTracer{logger: logger.Named("trace")}
}

// Nop discards every event.
type Nop struct{}

func (Nop) UseDef(string, *ir.Instr, *lattice.VarSet, *lattice.VarSet) {}
func (Nop) Iteration(string, int, []ir.ID, map[ir.ID]*lattice.VarSet, map[ir.ID]*lattice.VarSet, bool) {
}
func (Nop) Removed(string, *ir.Instr, *lattice.VarSet) {}
func (Nop) Unexpected(string, string, ...zap.Field) {}

type zapTracer struct {
	logger *zap.Logger
}

func (t *zapTracer) UseDef(fn string, in *ir.Instr, use, def *lattice.VarSet) {
	t.logger.Debug("use/def",
		zap.String("func", fn),
		zap.Int("instr", int(in.ID)),
		zap.String("op", in.Op),
		zap.String("use", use.String()),
		zap.String("def", def.String()),
		zap.String("succs", formatIDs(in.Succs)),
	)
}

func (t *zapTracer) Iteration(fn string, k int, order []ir.ID, in, out map[ir.ID]*lattice.VarSet, changed bool) {
	for _, id := range order {
		t.logger.Debug("live",
			zap.String("func", fn),
			zap.Int("iter", k),
			zap.Int("instr", int(id)),
			zap.String("in", in[id].String()),
			zap.String("out", out[id].String()),
		)
	}
	t.logger.Debug("iteration done",
		zap.String("func", fn),
		zap.Int("iter", k),
		zap.Bool("changed", changed),
	)
}

func (t *zapTracer) Removed(fn string, in *ir.Instr, out *lattice.VarSet) {
	t.logger.Debug("removed",
		zap.String("func", fn),
		zap.Int("instr", int(in.ID)),
		zap.String("def", string(in.Def)),
		zap.String("out", out.String()),
	)
}

func (t *zapTracer) Unexpected(fn string, msg string, fields ...zap.Field) {
	t.logger.Warn(msg, append([]zap.Field{zap.String("func", fn)}, fields...)...)
}

func formatIDs(ids []ir.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
