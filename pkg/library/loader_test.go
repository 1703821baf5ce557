package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSinglePattern(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "lib.yml", `
patterns:
  - id: p1
    kind: regex
    pattern: "<--"
    message: unconstrained assignment
    severity: critical
`)

	l := NewLoader()
	lib, err := l.Load(path)
	require.NoError(t, err)
	require.Len(t, lib.Patterns, 1)
	assert.Equal(t, "p1", lib.Patterns[0].ID)
}

func TestLoadRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "lib.yml", "patterns: []\n")

	l := NewLoader()
	l.MaxFileSize = 4
	_, err := l.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestLoadRejectsTooManyLines(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "lib.yml", strings.Repeat("\n", 20))

	l := NewLoader()
	l.MaxLines = 10
	_, err := l.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many lines")
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "lib.yml", "patterns: [this is not valid")

	l := NewLoader()
	_, err := l.Load(path)
	require.Error(t, err)
	var libErr *Error
	require.ErrorAs(t, err, &libErr)
	assert.Equal(t, KindDeserialization, libErr.Kind)
}

func TestLoadManyMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.yml", `
patterns:
  - id: a1
    kind: literal
    pattern: foo
    message: m
`)
	b := writeTemp(t, dir, "b.yml", `
patterns:
  - id: b1
    kind: literal
    pattern: bar
    message: m
`)

	l := NewLoader()
	lib, err := l.LoadMany([]string{a, b})
	require.NoError(t, err)
	require.Len(t, lib.Patterns, 2)
	assert.Equal(t, "a1", lib.Patterns[0].ID)
	assert.Equal(t, "b1", lib.Patterns[1].ID)
}

func TestLoadManyRejectsDuplicateID(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.yml", `
patterns:
  - id: dup
    kind: literal
    pattern: foo
    message: m
`)
	b := writeTemp(t, dir, "b.yml", `
patterns:
  - id: dup
    kind: literal
    pattern: bar
    message: m
`)

	l := NewLoader()
	_, err := l.LoadMany([]string{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Duplicate pattern id")
}

func TestLoadManyRejectsTooManyLibraries(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.yml", "patterns: []\n")

	l := NewLoader()
	l.MaxLibraries = 1
	_, err := l.LoadMany([]string{path, path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many pattern libraries")
}

func TestSeverityDefaultsToInfoWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "lib.yml", `
patterns:
  - id: p1
    kind: literal
    pattern: foo
    message: m
`)

	l := NewLoader()
	lib, err := l.Load(path)
	require.NoError(t, err)
	require.Len(t, lib.Patterns, 1)
	assert.Equal(t, "info", lib.Patterns[0].Severity.String())
}
