package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnolang/tdce/internal/analysis/liveness"
	"github.com/gnolang/tdce/internal/config"
	"github.com/gnolang/tdce/internal/irtext"
	tt "github.com/gnolang/tdce/internal/types"
)

const twoFuncs = `
func main {
  a = 7
  b = a + 2
  c = b - a
  d = c / a
  ret b
}

func side {
  x = call f 1
  y = x * 2
  ret
}
`

func newTestEngine(t *testing.T, cfg config.Config) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, nil)
	require.NoError(t, err)
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, config.Config{})
	assert.Equal(t, config.Default(), engine.Config())

	_, err := NewEngine(config.Config{Order: "sideways"}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestEngine_RunSource(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, config.Default())
	report, err := engine.RunSource(context.Background(), "prog.ir", []byte(twoFuncs))
	require.NoError(t, err)

	assert.Equal(t, "prog.ir", report.Filename)
	require.Len(t, report.Funcs, 2)
	assert.Equal(t, 3, report.RemovedCount())

	main := report.Funcs[0]
	assert.Equal(t, "main", main.Func)
	assert.Equal(t, 5, main.Before)
	assert.Equal(t, 3, main.After)
	assert.Equal(t, 3, main.Passes)
	assert.Equal(t, []tt.Removal{
		{ID: 3, Pass: 1, Def: "d", Instr: "d = c / a"},
		{ID: 2, Pass: 2, Def: "c", Instr: "c = b - a"},
	}, main.Removed)

	side := report.Funcs[1]
	assert.Equal(t, []tt.Removal{{ID: 1, Pass: 1, Def: "y", Instr: "y = x * 2"}}, side.Removed)

	var buf bytes.Buffer
	require.NoError(t, irtext.Print(&buf, report.Module))
	assert.NotContains(t, buf.String(), "c = b - a")
	assert.Contains(t, buf.String(), "x = call f 1")
}

func TestEngine_RunSourceErrors(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, config.Default())
	_, err := engine.RunSource(context.Background(), "bad.ir", []byte("a = "))
	assert.ErrorContains(t, err, "error parsing content")

	cfg := config.Default()
	cfg.MaxPasses = 1
	engine = newTestEngine(t, cfg)
	_, err = engine.RunSource(context.Background(), "chain.ir", []byte(twoFuncs))
	assert.ErrorIs(t, err, liveness.ErrNonTermination)
}

func TestEngine_RunCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.ir")
	require.NoError(t, os.WriteFile(path, []byte(twoFuncs), 0o644))

	engine := newTestEngine(t, config.Default())
	engine.EnableCache()

	first, err := engine.Run(context.Background(), path)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, first.Module, second.Module, "unchanged content is served from the cache")

	require.NoError(t, os.WriteFile(path, []byte("a = 1\nret\n"), 0o644))
	third, err := engine.Run(context.Background(), path)
	require.NoError(t, err)
	assert.NotSame(t, first.Module, third.Module)
	assert.Equal(t, 1, third.RemovedCount())

	_, err = engine.Run(context.Background(), filepath.Join(dir, "missing.ir"))
	assert.ErrorContains(t, err, "error reading file")
}

func TestEngine_Trace(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	cfg := config.Default()
	cfg.Trace = true
	engine, err := NewEngine(cfg, zap.New(core))
	require.NoError(t, err)

	_, err = engine.RunSource(context.Background(), "prog.ir", []byte("a = 1\nret\n"))
	require.NoError(t, err)
	traced := logs.Filter(func(e observer.LoggedEntry) bool { return e.LoggerName == "trace" })
	assert.NotZero(t, traced.FilterMessage("removed").Len())
	assert.NotZero(t, logs.FilterMessage("function done").Len())
}

func TestEngine_Watch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.ir")
	require.NoError(t, os.WriteFile(path, []byte("ret\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports := make(chan tt.FileReport, 4)
	engine := newTestEngine(t, config.Default())
	require.NoError(t, engine.Watch(ctx, []string{dir}, func(r tt.FileReport) { reports <- r }))
	assert.Error(t, engine.Watch(ctx, []string{dir}, nil), "second watch is refused")

	require.NoError(t, os.WriteFile(path, []byte("a = 1\nb = 2\nret\n"), 0o644))

	select {
	case r := <-reports:
		assert.Equal(t, path, r.Filename)
		assert.Equal(t, 2, r.RemovedCount())
	case <-time.After(5 * time.Second):
		t.Fatal("no report after writing the watched file")
	}
}

func TestEngine_StopWatching(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.ir")
	require.NoError(t, os.WriteFile(path, []byte("a = 1\nret\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	engine := newTestEngine(t, config.Default())
	require.NoError(t, engine.Watch(ctx, []string{dir}, nil))

	_, err := engine.Run(context.Background(), path)
	require.NoError(t, err)
	_, cached := engine.cache.Get(path, []byte("a = 1\nret\n"))
	require.True(t, cached)

	// stopping races with the loop reacting to cancellation
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, engine.StopWatching())
		}()
	}
	cancel()
	wg.Wait()

	_, cached = engine.cache.Get(path, []byte("a = 1\nret\n"))
	assert.False(t, cached, "stopping forgets cached reports")

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	require.NoError(t, engine.Watch(ctx2, []string{dir}, nil), "watching again after a stop")
	assert.NoError(t, engine.StopWatching())
	assert.NoError(t, engine.StopWatching())
}
