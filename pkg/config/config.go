// Package config loads the TOML configuration file and ignore-pattern file
// that govern resource limits and output defaults.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Default values, per spec.md §5/§6.
const (
	DefaultMaxFileSize        = 10 << 20 // 10 MiB
	DefaultMaxPatternFileSize = 1 << 20  // 1 MiB
	DefaultMaxPatterns        = 1000
	DefaultMaxMatches         = 10000

	DefaultFormat         = "text"
	DefaultShowIcons      = true
	DefaultFailOnCritical = true
)

// Limits mirrors the `[limits]` TOML section.
type Limits struct {
	MaxFileSize        int64 `toml:"max_file_size"`
	MaxPatternFileSize int64 `toml:"max_pattern_file_size"`
	MaxPatterns        int   `toml:"max_patterns"`
	MaxMatches         int   `toml:"max_matches"`
}

// Output mirrors the `[output]` TOML section.
type Output struct {
	DefaultFormat  string `toml:"default_format"`
	ShowIcons      bool   `toml:"show_icons"`
	FailOnCritical bool   `toml:"fail_on_critical"`
}

// Config is the fully resolved configuration, always populated with
// defaults for any field absent from the file.
type Config struct {
	Limits Limits `toml:"limits"`
	Output Output `toml:"output"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Limits: Limits{
			MaxFileSize:        DefaultMaxFileSize,
			MaxPatternFileSize: DefaultMaxPatternFileSize,
			MaxPatterns:        DefaultMaxPatterns,
			MaxMatches:         DefaultMaxMatches,
		},
		Output: Output{
			DefaultFormat:  DefaultFormat,
			ShowIcons:      DefaultShowIcons,
			FailOnCritical: DefaultFailOnCritical,
		},
	}
}

// candidatePaths returns, in search order, `./.zkpm.toml` then
// `$HOME/.zkpm/config.toml`.
func candidatePaths() []string {
	paths := []string{".zkpm.toml"}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".zkpm", "config.toml"))
	}
	return paths
}

// Load searches the candidate paths for a config file and parses the first
// one found. A missing file at every candidate path is not an error: it
// resolves to Default(). A parse error at a found file is not an error
// either — it is reported to stderr and Default() is still returned,
// matching original_source's load_config "warn and fall back" behavior.
func Load() Config {
	for _, path := range candidatePaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			fmt.Fprintf(os.Stderr, "warning: failed to read config at %s: %v. Using defaults.\n", path, err)
			return Default()
		}

		cfg := Default()
		if err := toml.Unmarshal(data, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to parse config at %s: %v. Using defaults.\n", path, err)
			return Default()
		}
		return cfg
	}
	return Default()
}

// ignoreCandidatePaths returns, in search order, `./.zkpmignore` then
// `$HOME/.zkpm/ignore`.
func ignoreCandidatePaths() []string {
	paths := []string{".zkpmignore"}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".zkpm", "ignore"))
	}
	return paths
}

// LoadIgnorePatterns returns the raw pattern lines (blank lines and
// `#`-comments already dropped) from the first ignore file found, or nil if
// none exist. The compiled grammar itself lives in pkg/scanner.
func LoadIgnorePatterns() []string {
	for _, path := range ignoreCandidatePaths() {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()

		var out []string
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			out = append(out, line)
		}
		return out
	}
	return nil
}
