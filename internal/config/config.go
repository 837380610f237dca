// Package config reads the tdce configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = ".tdce.yaml"

// Visiting orders of the liveness solver.
const (
	// OrderBackward visits reachable instructions in postorder, so
	// successors come before predecessors.
	OrderBackward = "backward"
	// OrderReverse visits instructions from last to first.
	OrderReverse = "reverse"
	// OrderForward visits instructions from first to last.
	OrderForward = "forward"
)

const (
	defaultMaxPasses = 64
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the options of an analysis run.
type Config struct {
	Name string `yaml:"name"`
	// MaxIterations bounds solver passes per run; 0 derives a bound from
	// the function size.
	MaxIterations int `yaml:"max_iterations"`
	// MaxPasses bounds how often the eliminator re-runs per function.
	MaxPasses int    `yaml:"max_passes"`
	Order     string `yaml:"order"`
	// Trace enables the diagnostics channel.
	Trace   bool `yaml:"trace"`
	Workers int  `yaml:"workers"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Name:      "tdce",
		MaxPasses: defaultMaxPasses,
		Order:     OrderBackward,
		Workers:   runtime.NumCPU(),
	}
}

// Normalize fills unset fields with defaults and checks the rest.
func (c Config) Normalize() (Config, error) {
	def := Default()
	if c.Name == "" {
		c.Name = def.Name
	}
	if c.MaxPasses == 0 {
		c.MaxPasses = def.MaxPasses
	}
	if c.Order == "" {
		c.Order = def.Order
	}
	if c.Workers == 0 {
		c.Workers = def.Workers
	}

	switch c.Order {
	case OrderBackward, OrderReverse, OrderForward:
	default:
		return c, fmt.Errorf("%w: unknown order %q", ErrInvalidConfig, c.Order)
	}
	if c.MaxPasses < 0 {
		return c, fmt.Errorf("%w: max_passes must be positive, got %d", ErrInvalidConfig, c.MaxPasses)
	}
	if c.MaxIterations < 0 {
		return c, fmt.Errorf("%w: max_iterations must not be negative, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.Workers < 0 {
		return c, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	return c, nil
}

// Load reads the configuration at path. A missing file yields the
// defaults; an empty path means DefaultPath.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg.Normalize()
}

// Write stores cfg as YAML at path.
func Write(path string, cfg Config) error {
	d, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
