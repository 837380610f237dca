// Package internal provides the engine behind tdce, a trivial dead code eliminator for a small
// three-address intermediate representation.
//
// The engine loads modules in text or YAML form, runs the elimination driver over every function and
// reports what was removed. It is built from the following parts:
//
// Engine: coordinates a run. It owns the configuration, the logger and the diagnostics tracer, and
// processes the functions of a module concurrently since they share no state.
//
// Cache: remembers reports by file content so that watch mode skips unchanged files.
//
// Watch: re-runs the engine whenever an input file below the watched directories is written.
//
// The analyses themselves live in subpackages: ir holds the instruction graph, analysis/usedef,
// analysis/lattice and analysis/liveness compute liveness, and tdce removes dead instructions.
//
// Usage:
//
//	engine, err := internal.NewEngine(config.Default(), logger)
//	if err != nil {
//	    // handle error
//	}
//	report, err := engine.Run(ctx, "path/to/file.ir")
package internal
