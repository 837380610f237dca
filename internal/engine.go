package internal

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/tdce/internal/config"
	"github.com/gnolang/tdce/internal/ir"
	"github.com/gnolang/tdce/internal/irtext"
	"github.com/gnolang/tdce/internal/tdce"
	"github.com/gnolang/tdce/internal/trace"
	tt "github.com/gnolang/tdce/internal/types"
)

// Engine runs dead code elimination over input files.
type Engine struct {
	config config.Config
	logger *zap.Logger
	tracer trace.Tracer
	cache  *Cache

	// watch mode
	watchMu    sync.Mutex
	watcher    *fsnotify.Watcher
	watchDirs  []string
	isWatching bool
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(cfg config.Config, logger *zap.Logger) (*Engine, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		config: cfg,
		logger: logger,
		tracer: trace.New(cfg.Trace, logger),
	}, nil
}

// Config returns the normalized configuration of the engine.
func (e *Engine) Config() config.Config { return e.config }

// EnableCache makes Run skip files whose content did not change since
// their last run.
func (e *Engine) EnableCache() {
	if e.cache == nil {
		e.cache = NewCache()
	}
}

// Run loads the file at filename and eliminates dead code from every
// function in it.
func (e *Engine) Run(ctx context.Context, filename string) (tt.FileReport, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return tt.FileReport{}, fmt.Errorf("error reading file: %w", err)
	}
	if e.cache != nil {
		if report, ok := e.cache.Get(filename, data); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return report, nil
		}
	}

	report, err := e.RunSource(ctx, filename, data)
	if err != nil {
		return tt.FileReport{}, err
	}
	if e.cache != nil {
		e.cache.Set(filename, data, report)
	}
	return report, nil
}

// RunSource eliminates dead code from a module given as source. name
// selects the format by extension and labels the report.
func (e *Engine) RunSource(ctx context.Context, name string, source []byte) (tt.FileReport, error) {
	m, err := irtext.Decode(name, source)
	if err != nil {
		return tt.FileReport{}, fmt.Errorf("error parsing content: %w", err)
	}

	funcs, err := e.RunModule(ctx, m)
	if err != nil {
		return tt.FileReport{}, fmt.Errorf("%s: %w", name, err)
	}
	return tt.FileReport{Filename: name, Funcs: funcs, Module: m}, nil
}

// RunModule eliminates dead code from every function of m in place.
// Functions share nothing, so they are processed concurrently.
func (e *Engine) RunModule(ctx context.Context, m *ir.Module) ([]tt.FuncReport, error) {
	reports := make([]tt.FuncReport, len(m.Funcs))
	opts := tdce.OptionsFrom(e.config, e.tracer)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)
	for i, f := range m.Funcs {
		g.Go(func() error {
			report, err := tdce.Run(ctx, f, opts)
			if err != nil {
				e.logger.Error("Error eliminating dead code", zap.String("func", f.Name), zap.Error(err))
				return err
			}
			reports[i] = toFuncReport(f, report)
			e.logger.Debug("function done",
				zap.String("func", f.Name),
				zap.Int("removed", len(report.Removed)),
				zap.Int("passes", report.Passes),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func toFuncReport(f *ir.Func, r *tdce.Report) tt.FuncReport {
	fr := tt.FuncReport{
		Func:       r.Func,
		Before:     r.Before,
		After:      r.After,
		Passes:     r.Passes,
		Iterations: r.Iterations,
		Removed:    make([]tt.Removal, 0, len(r.Removed)),
	}
	for _, rm := range r.Removed {
		fr.Removed = append(fr.Removed, tt.Removal{
			ID:    int(rm.Instr.ID),
			Pass:  rm.Pass,
			Block: rm.Instr.Block,
			Def:   string(rm.Instr.Def),
			Instr: irtext.FormatInstr(f, rm.Instr),
		})
	}
	return fr
}
