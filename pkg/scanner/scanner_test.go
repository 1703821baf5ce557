package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/zkpm/pkg/matcher"
	"github.com/praetorian-inc/zkpm/pkg/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMatcher(t *testing.T) *matcher.Matcher {
	t.Helper()
	lib := &pattern.Library{Patterns: []pattern.Pattern{
		{ID: "unconstrained_assignment", Kind: pattern.Regex, Pattern: `<--`, Severity: pattern.High},
	}}
	m, err := matcher.New(lib, matcher.DefaultConfig())
	require.NoError(t, err)
	return m
}

func TestScanRecursiveFindsNestedMatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.circom"), []byte("x <-- 1;"), 0o644))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.circom"), []byte("y <-- 2;"), 0o644))

	s := New(newMatcher(t), Config{Recursive: true})
	result, err := s.Scan(dir)
	require.NoError(t, err)
	assert.Len(t, result.Files, 2)
	assert.Equal(t, 2, result.Summary.Total)
}

func TestScanNonRecursiveSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.circom"), []byte("x <-- 1;"), 0o644))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.circom"), []byte("y <-- 2;"), 0o644))

	s := New(newMatcher(t), Config{Recursive: false})
	result, err := s.Scan(dir)
	require.NoError(t, err)
	assert.Len(t, result.Files, 1)
}

func TestScanSkipsBinaryFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin.circom"), []byte("x <-- 1;\x00more"), 0o644))

	s := New(newMatcher(t), Config{Recursive: true})
	result, err := s.Scan(dir)
	require.NoError(t, err)
	assert.Len(t, result.Files, 0)
}

func TestScanAppliesIgnoreRules(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.circom"), []byte("x <-- 1;"), 0o644))
	vendor := filepath.Join(dir, "vendor")
	require.NoError(t, os.Mkdir(vendor, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(vendor, "skip.circom"), []byte("y <-- 2;"), 0o644))

	ignore, err := NewIgnoreSet([]string{"vendor/"})
	require.NoError(t, err)

	s := New(newMatcher(t), Config{Recursive: true, Ignore: ignore})
	result, err := s.Scan(dir)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, filepath.Join(dir, "keep.circom"), result.Files[0].Path)
}

func TestScanSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.circom")
	require.NoError(t, os.WriteFile(path, []byte("x <-- 1;"), 0o644))

	s := New(newMatcher(t), Config{})
	result, err := s.Scan(path)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
}

func TestIgnoreGlobPattern(t *testing.T) {
	set, err := NewIgnoreSet([]string{"*.test.circom"})
	require.NoError(t, err)
	assert.True(t, set.Matches("foo.test.circom"))
	assert.True(t, set.Matches("dir/foo.test.circom"))
	assert.False(t, set.Matches("foo.circom"))
}

func TestIgnoreLiteralComponentMatch(t *testing.T) {
	set, err := NewIgnoreSet([]string{"node_modules"})
	require.NoError(t, err)
	assert.True(t, set.Matches("a/node_modules/b.circom"))
	assert.False(t, set.Matches("a/node/b.circom"))
}

func TestLoadIgnoreFileMissingIsEmpty(t *testing.T) {
	set, err := LoadIgnoreFile(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.False(t, set.Matches("anything"))
}
