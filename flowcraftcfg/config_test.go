package flowcraftcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "flowcraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "entry_points: [\"./src\"]\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"./src"}, cfg.EntryPoints)
	require.Equal(t, "flowcraft.manifest.go", cfg.ManifestPath)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EmptyFileGetsFullDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"./flows"}, cfg.EntryPoints)
}

func TestLoad_RejectsBadManifestPath(t *testing.T) {
	path := writeConfig(t, "manifest_path: out/manifest.txt\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	path := writeConfig(t, "log_level: verbose\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_LLMRequiresAKeySource(t *testing.T) {
	path := writeConfig(t, "llm:\n  provider: anthropic\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_LLMWithAPIKeyEnvSucceeds(t *testing.T) {
	t.Setenv("TEST_ANTHROPIC_KEY", "sk-test")
	path := writeConfig(t, "llm:\n  provider: anthropic\n  api_key_env: TEST_ANTHROPIC_KEY\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "anthropic", cfg.LLM.Provider)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, "llm:\n  provider: bogus\n  api_key: x\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestBuildModel_NilWhenNoLLMConfigured(t *testing.T) {
	cfg := &Config{}
	model, err := cfg.BuildModel()
	require.NoError(t, err)
	require.Nil(t, model)
}

func TestBuildModel_ConstructsConfiguredProvider(t *testing.T) {
	cfg := &Config{LLM: &LLMConfig{Provider: "openai", APIKey: "sk-test"}}
	model, err := cfg.BuildModel()
	require.NoError(t, err)
	require.NotNil(t, model)
}
