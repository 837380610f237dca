package dce

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/tdce/internal"
	"github.com/gnolang/tdce/internal/config"
	"github.com/gnolang/tdce/internal/irtext"
	tt "github.com/gnolang/tdce/internal/types"
)

type DCEEngine interface {
	Run(ctx context.Context, filePath string) (tt.FileReport, error)
	RunSource(ctx context.Context, name string, source []byte) (tt.FileReport, error)
}

// New loads the configuration at configurationPath and creates an engine.
func New(configurationPath string, logger *zap.Logger) (*internal.Engine, error) {
	cfg, err := config.Load(configurationPath)
	if err != nil {
		return nil, err
	}
	return internal.NewEngine(cfg, logger)
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine DCEEngine,
	paths []string,
	processor func(context.Context, DCEEngine, string) (tt.FileReport, error),
) ([]tt.FileReport, error) {
	var allReports []tt.FileReport
	for _, path := range paths {
		reports, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allReports = append(allReports, reports...)
	}

	return allReports, nil
}

// ProcessPath runs processor on path, or on every input file below it when
// path is a directory. Directory results are sorted by file name.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine DCEEngine,
	path string,
	processor func(context.Context, DCEEngine, string) (tt.FileReport, error),
) ([]tt.FileReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !irtext.HasExtension(path) {
			return nil, nil
		}
		report, err := processor(ctx, engine, path)
		if err != nil {
			return nil, err
		}
		return []tt.FileReport{report}, nil
	}

	var files []string
	err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fileInfo.IsDir() && irtext.IsInput(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", path, err)
	}

	type result struct {
		report tt.FileReport
		err    error
	}
	resultChan := make(chan result, len(files))

	// limit the number of workers
	maxWorkers := runtime.NumCPU()
	sem := make(chan struct{}, maxWorkers)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	started := 0
	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		started++
		go func(fp string) {
			defer func() { <-sem }()

			report, err := processor(ctx, engine, fp)
			if err != nil && logger != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
			}
			resultChan <- result{report: report, err: err}
			_ = bar.Add(1)
		}(filePath)
	}

	var reports []tt.FileReport
	var firstErr error
	for i := 0; i < started; i++ {
		r := <-resultChan
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		reports = append(reports, r.report)
	}
	_ = bar.Finish()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(reports, func(i, j int) bool { return reports[i].Filename < reports[j].Filename })
	return reports, nil
}

func ProcessFile(ctx context.Context, engine DCEEngine, filePath string) (tt.FileReport, error) {
	return engine.Run(ctx, filePath)
}

func ProcessSource(ctx context.Context, engine DCEEngine, name string, source []byte) (tt.FileReport, error) {
	return engine.RunSource(ctx, name, source)
}
