package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeData(t *testing.T, cats string, abilities string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cats.json"), []byte(cats), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abilities.json"), []byte(abilities), 0644))
	return dir
}

func TestValidateCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	dir := writeData(t, `{"cats": []}`, `{"abilities": {}}`)
	results := filepath.Join(dir, "results")
	rootCmd.SetArgs([]string{"validate", "--data", dir, "--results", results})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Overall Validation: ✅ PASSED")

	files, err := os.ReadDir(results)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	out.Reset()
	dir = writeData(t, `{"cats": [{"id": "a", "abilities": ["ghost"]}]}`, `{"abilities": {}}`)
	rootCmd.SetArgs([]string{"validate", "--data", dir, "--results", filepath.Join(dir, "results")})
	assert.ErrorIs(t, rootCmd.Execute(), errInvalidData)
	assert.Contains(t, out.String(), "Overall Validation: ❌ FAILED")
}

func TestValidateCommand_MissingData(t *testing.T) {
	rootCmd.SetArgs([]string{"validate", "--data", t.TempDir(), "--results", t.TempDir()})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.NotErrorIs(t, err, errInvalidData)
}
