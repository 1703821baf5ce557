// Package scanner walks a filesystem path and applies a compiled matcher to
// every accepted file, single-threaded and synchronous (spec.md §5): no
// goroutines, no channels, deterministic lexical file order.
package scanner

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/praetorian-inc/zkpm/pkg/matcher"
)

// Config controls how Scan walks a root path.
type Config struct {
	Recursive bool
	Ignore    *IgnoreSet
	Logger    DebugLogger
}

// Scanner pairs a compiled matcher with a walk configuration.
type Scanner struct {
	matcher *matcher.Matcher
	cfg     Config
}

// New builds a Scanner over an already-compiled matcher.
func New(m *matcher.Matcher, cfg Config) *Scanner {
	if cfg.Logger == nil {
		cfg.Logger = NoopLogger{}
	}
	return &Scanner{matcher: m, cfg: cfg}
}

// Scan walks root (file or directory) and returns every file that produced
// at least one match, plus the aggregate severity summary.
func (s *Scanner) Scan(root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading metadata for %s: %w", root, err)
	}

	result := &Result{}

	if !info.IsDir() {
		if err := s.scanOne(root, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	paths, err := s.collectPaths(root)
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		if err := s.scanOne(path, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// collectPaths walks root and returns the lexically ordered list of file
// paths accepted after ignore-rule filtering. Directory recursion depth is
// governed by cfg.Recursive.
func (s *Scanner) collectPaths(root string) ([]string, error) {
	if !s.cfg.Recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", root, err)
		}
		var paths []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(root, e.Name())
			if s.ignored(root, path) {
				continue
			}
			paths = append(paths, path)
		}
		return paths, nil
	}

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}
		if s.ignored(root, path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Scanner) ignored(root, path string) bool {
	if s.cfg.Ignore == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return s.cfg.Ignore.Matches(filepath.ToSlash(rel))
}

// scanOne scans a single file and, on a match, appends it to result.
// Content that looks binary (a NUL byte in its first 8 KiB, see looksBinary)
// is skipped rather than scanned (spec.md §4.4); every error, including a
// failure to read the file, aborts the walk.
func (s *Scanner) scanOne(path string, result *Result) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading metadata for %s: %w", path, err)
	}
	if info.IsDir() {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if looksBinary(data) {
		s.cfg.Logger.Log("skipping %s: binary content", path)
		return nil
	}

	matches, err := s.matcher.ScanText(string(data))
	if err != nil {
		return fmt.Errorf("scanning %s: %w", path, err)
	}
	if len(matches) == 0 {
		return nil
	}

	result.Files = append(result.Files, FileResult{Path: path, Matches: matches})
	addSummary(&result.Summary, matches)
	return nil
}

// looksBinary classifies content as non-text by checking the first 8KiB for
// a NUL byte, the same heuristic the matcher's upstream ecosystem uses to
// recognize content that cannot be meaningfully scanned as source text.
func looksBinary(content []byte) bool {
	checkSize := len(content)
	if checkSize > 8192 {
		checkSize = 8192
	}
	return bytes.IndexByte(content[:checkSize], 0) != -1
}
