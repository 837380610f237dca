package irtext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnolang/tdce/internal/ir"
)

var extensions = map[string]bool{
	".ir":   true,
	".yaml": true,
	".yml":  true,
}

// HasExtension reports whether path looks like an input this package reads.
func HasExtension(path string) bool {
	return extensions[filepath.Ext(path)]
}

// IsInput reports whether a file found while walking a directory should be
// read. Hidden files such as the configuration file are skipped.
func IsInput(path string) bool {
	return HasExtension(path) && !strings.HasPrefix(filepath.Base(path), ".")
}

// IsYAML reports whether path holds a YAML graph.
func IsYAML(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the module stored at path, choosing the format by extension.
func Load(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// Decode parses data in the format implied by name's extension; names
// without a YAML extension are read as text.
func Decode(name string, data []byte) (*ir.Module, error) {
	if IsYAML(name) {
		return ParseYAML(name, data)
	}
	m, err := Parse(name, string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}
