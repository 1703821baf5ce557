// Package library loads and validates a pattern-library YAML document: the
// resource caps of spec.md §4.1/§5 (file size, line count, library count)
// and the duplicate-id rejection of a multi-file merge.
package library

import (
	"bytes"
	"fmt"
	"os"

	"github.com/praetorian-inc/zkpm/pkg/pattern"
	"gopkg.in/yaml.v3"
)

// Default resource caps, overridable via Loader fields.
const (
	DefaultMaxFileSize  = 1 << 20 // 1 MiB
	DefaultMaxLines     = 10000
	DefaultMaxLibraries = 100
)

// Loader reads pattern-library documents from disk, enforcing size and
// complexity caps before parsing.
type Loader struct {
	MaxFileSize  int64
	MaxLines     int
	MaxLibraries int
}

// NewLoader returns a Loader configured with the spec's default caps.
func NewLoader() *Loader {
	return &Loader{
		MaxFileSize:  DefaultMaxFileSize,
		MaxLines:     DefaultMaxLines,
		MaxLibraries: DefaultMaxLibraries,
	}
}

// Load reads a single pattern-library file, enforcing size and line caps
// before attempting to parse it.
func (l *Loader) Load(path string) (*pattern.Library, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ioErr(path, err)
	}

	maxSize := l.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if info.Size() > maxSize {
		return nil, limitErr(path, fmt.Sprintf("too large: %d bytes (max %d)", info.Size(), maxSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioErr(path, err)
	}

	maxLines := l.MaxLines
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if n := bytes.Count(data, []byte{'\n'}) + 1; n > maxLines {
		return nil, limitErr(path, fmt.Sprintf("too many lines: %d (max %d)", n, maxLines))
	}

	var lib pattern.Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, deserializationErr(path, err)
	}

	return &lib, nil
}

// LoadMany loads and merges up to MaxLibraries pattern-library files,
// preserving pattern and invariant order across files. It fails with a
// duplicate-id error the first time a pattern.id repeats across the merged
// sequence.
func (l *Loader) LoadMany(paths []string) (*pattern.Library, error) {
	maxLibraries := l.MaxLibraries
	if maxLibraries <= 0 {
		maxLibraries = DefaultMaxLibraries
	}
	if len(paths) > maxLibraries {
		return nil, limitErr("", fmt.Sprintf("too many pattern libraries: %d (max %d)", len(paths), maxLibraries))
	}

	merged := &pattern.Library{}
	seen := make(map[string]bool)

	for _, path := range paths {
		lib, err := l.Load(path)
		if err != nil {
			return nil, err
		}
		for _, p := range lib.Patterns {
			if seen[p.ID] {
				return nil, validationErr(path, fmt.Sprintf("Duplicate pattern id %q", p.ID))
			}
			seen[p.ID] = true
			merged.Patterns = append(merged.Patterns, p)
		}
		merged.Invariants = append(merged.Invariants, lib.Invariants...)
	}

	return merged, nil
}
