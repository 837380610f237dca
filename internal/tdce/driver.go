// Package tdce removes trivially dead instructions: instructions whose
// result is never live and that have no side effect.
//
// Run repeats extraction, liveness solving and elimination until a pass
// removes nothing, since removing one instruction can leave the
// instructions that only fed it dead as well.
package tdce

import (
	"context"
	"fmt"

	"github.com/gnolang/tdce/internal/analysis/cfg"
	"github.com/gnolang/tdce/internal/analysis/liveness"
	"github.com/gnolang/tdce/internal/analysis/usedef"
	"github.com/gnolang/tdce/internal/config"
	"github.com/gnolang/tdce/internal/ir"
	"github.com/gnolang/tdce/internal/trace"
)

// Options configures Run.
type Options struct {
	MaxIterations int
	MaxPasses     int
	Order         string
	Tracer        trace.Tracer
}

// OptionsFrom maps a configuration onto driver options.
func OptionsFrom(c config.Config, tr trace.Tracer) Options {
	return Options{
		MaxIterations: c.MaxIterations,
		MaxPasses:     c.MaxPasses,
		Order:         c.Order,
		Tracer:        tr,
	}
}

// Removal is one eliminated instruction and the pass that removed it.
type Removal struct {
	Pass  int
	Instr *ir.Instr
}

// Report describes a finished run over one function.
type Report struct {
	Func    string
	Before  int
	After   int
	Removed []Removal
	Passes  int
	// Iterations holds the solver iteration count of each pass.
	Iterations []int
}

// Run eliminates dead instructions from f in place.
func Run(ctx context.Context, f *ir.Func, opts Options) (*Report, error) {
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop{}
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = config.Default().MaxPasses
	}
	if err := ir.Validate(f); err != nil {
		return nil, err
	}

	report := &Report{Func: f.Name, Before: f.Len()}
	for pass := 1; ; pass++ {
		if pass > opts.MaxPasses {
			return report, fmt.Errorf("%w: %s: still removing instructions after %d passes",
				liveness.ErrNonTermination, f.Name, opts.MaxPasses)
		}

		res, err := Analyze(ctx, f, opts)
		if err != nil {
			return report, err
		}
		report.Passes = pass
		report.Iterations = append(report.Iterations, res.Iterations)

		removed, err := Eliminate(f, res, opts.Tracer)
		for _, in := range removed {
			report.Removed = append(report.Removed, Removal{Pass: pass, Instr: in})
		}
		if err != nil {
			return report, err
		}
		if len(removed) == 0 {
			report.After = f.Len()
			return report, nil
		}

		f.Compact()
		if err := ir.Validate(f); err != nil {
			return report, err
		}
	}
}

// Analyze extracts use/def sets from f and solves liveness in the order
// selected by opts.
func Analyze(ctx context.Context, f *ir.Func, opts Options) (*liveness.Result, error) {
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop{}
	}
	sets := usedef.Extract(f)
	order, err := visitOrder(cfg.New(f), opts.Order)
	if err != nil {
		return nil, err
	}
	return liveness.Solve(ctx, f, sets,
		liveness.WithOrder(order),
		liveness.WithMaxIterations(opts.MaxIterations),
		liveness.WithTracer(opts.Tracer),
	)
}

func visitOrder(g *cfg.CFG, order string) ([]ir.ID, error) {
	switch order {
	case "", config.OrderBackward:
		return g.Backward(), nil
	case config.OrderReverse:
		return g.Reverse(), nil
	case config.OrderForward:
		return append([]ir.ID(nil), g.Instrs()...), nil
	default:
		return nil, fmt.Errorf("%w: %q", liveness.ErrBadOrder, order)
	}
}
