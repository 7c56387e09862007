package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadModuleName_ParsesModuleDirective(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/widgets\n\ngo 1.24.0\n"), 0o644))

	name, err := readModuleName(dir)
	require.NoError(t, err)
	require.Equal(t, "example.com/widgets", name)
}

func TestReadModuleName_MissingFileErrors(t *testing.T) {
	_, err := readModuleName(t.TempDir())
	require.Error(t, err)
}

func TestReadModuleName_NoModuleDirectiveErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("go 1.24.0\n"), 0o644))

	_, err := readModuleName(dir)
	require.Error(t, err)
}
