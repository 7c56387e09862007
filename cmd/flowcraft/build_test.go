package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowcraft-dev/flowcraft-go/flowcraftcfg"
)

const fixtureFlowSource = `package flows

import "context"

// flowcraft:step
func ValidateOrder(ctx context.Context) error { return nil }

// flowcraft:step
func ChargeCard(ctx context.Context) error { return nil }

// flowcraft:flow
func OrderFlow(ctx context.Context) error {
	ValidateOrder(ctx)
	ChargeCard(ctx)
	return nil
}
`

func writeFixtureProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/widgets\n\ngo 1.24.0\n"), 0o644))

	flowsDir := filepath.Join(dir, "flows")
	require.NoError(t, os.MkdirAll(flowsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(flowsDir, "order.go"), []byte(fixtureFlowSource), 0o644))

	cfgYAML := "entry_points: [\"" + flowsDir + "\"]\nmanifest_path: " + filepath.Join(dir, "flowcraft.manifest.go") + "\n"
	cfgPath := filepath.Join(dir, "flowcraft.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	return dir
}

func TestRunBuild_WritesManifestForValidProject(t *testing.T) {
	dir := writeFixtureProject(t)
	cfgPath := filepath.Join(dir, "flowcraft.yaml")
	manifestPath := filepath.Join(dir, "flowcraft.manifest.go")

	opts := buildOptions{projectDir: dir, packageName: "manifest", cachePath: ""}
	err := runBuild(context.Background(), cfgPath, opts, flowcraftcfg.NullLogger{})
	require.NoError(t, err)

	out, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	require.Contains(t, string(out), "package manifest")
	require.Contains(t, string(out), "OrderFlow")
	require.Contains(t, string(out), "ValidateOrder")
}

func TestRunBuild_MissingConfigErrors(t *testing.T) {
	dir := t.TempDir()
	err := runBuild(context.Background(), filepath.Join(dir, "missing.yaml"), buildOptions{projectDir: dir}, flowcraftcfg.NullLogger{})
	require.Error(t, err)
}

func TestRunBuild_BadModuleDirectiveErrors(t *testing.T) {
	dir := writeFixtureProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("go 1.24.0\n"), 0o644))

	cfgPath := filepath.Join(dir, "flowcraft.yaml")
	err := runBuild(context.Background(), cfgPath, buildOptions{projectDir: dir}, flowcraftcfg.NullLogger{})
	require.Error(t, err)
}
