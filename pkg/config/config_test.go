package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	cfg := Load()
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesTOMLFile(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	content := `
[limits]
max_file_size = 2048
max_patterns = 5

[output]
default_format = "json"
show_icons = false
fail_on_critical = false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".zkpm.toml"), []byte(content), 0o644))

	cfg := Load()
	assert.Equal(t, int64(2048), cfg.Limits.MaxFileSize)
	assert.Equal(t, 5, cfg.Limits.MaxPatterns)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.False(t, cfg.Output.ShowIcons)
	assert.False(t, cfg.Output.FailOnCritical)
}

func TestLoadMalformedFileWarnsAndFallsBack(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".zkpm.toml"), []byte("not valid toml [["), 0o644))

	cfg := Load()
	assert.Equal(t, Default(), cfg)
}

func TestLoadIgnorePatternsSkipsBlankAndComments(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	content := "# comment\n\nvendor/\n*.test.circom\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".zkpmignore"), []byte(content), 0o644))

	patterns := LoadIgnorePatterns()
	assert.Equal(t, []string{"vendor/", "*.test.circom"}, patterns)
}

func TestLoadIgnorePatternsMissingIsNil(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	assert.Nil(t, LoadIgnorePatterns())
}

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(prev) }
}
