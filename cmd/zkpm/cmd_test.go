package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLibrary = `
patterns:
  - id: unconstrained_assignment
    kind: regex
    pattern: "<--"
    message: unconstrained witness assignment
    severity: high
`

func writeLib(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "lib.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleLibrary), 0o644))
	return path
}

func TestRunValidateOK(t *testing.T) {
	dir := t.TempDir()
	libPath := writeLib(t, dir)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runValidate(cmd, []string{libPath}))
	assert.Contains(t, buf.String(), "1 patterns")
}

func TestRunValidateRejectsDuplicateID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.yaml")
	content := `
patterns:
  - id: a
    kind: literal
    pattern: x
  - id: a
    kind: literal
    pattern: y
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	err := runValidate(cmd, []string{path})
	assert.Error(t, err)
}

func TestRunListOutputsTable(t *testing.T) {
	dir := t.TempDir()
	libPath := writeLib(t, dir)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runList(cmd, []string{libPath}))
	output := buf.String()
	assert.Contains(t, output, "unconstrained_assignment")
	assert.Contains(t, output, "high")
}

func TestRunScanProducesTextReport(t *testing.T) {
	dir := t.TempDir()
	libPath := writeLib(t, dir)
	targetPath := filepath.Join(dir, "a.circom")
	require.NoError(t, os.WriteFile(targetPath, []byte("out <-- 1;"), 0o644))

	flagFormat = "text"
	flagRecursive = false
	flagIgnore = nil
	flagSemantic = false

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runScan(cmd, []string{libPath, targetPath})
	assert.ErrorIs(t, err, errCriticalFindings)
	assert.Contains(t, buf.String(), "unconstrained_assignment")
}

func TestRunScanRejectsWrongArgCount(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	err := runScan(cmd, []string{"only-one-arg"})
	assert.Error(t, err)
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, 0, exitCodeFor(nil))
	assert.Equal(t, 1, exitCodeFor(errCriticalFindings))
	assert.Equal(t, 2, exitCodeFor(assert.AnError))
}
