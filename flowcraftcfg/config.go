// Package flowcraftcfg loads and validates flowcraft.yaml, the project
// config spec.md §6 calls flowcraft.config.<ext>: entry points for the
// analyzer, the manifest output path, and the LLM provider a blueprint's
// llmstep calls should use by default.
package flowcraftcfg

import (
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is flowcraft.yaml decoded and validated.
type Config struct {
	// EntryPoints lists the directories whose .go files the analyzer walks.
	// Defaults to ["./flows"] if empty.
	EntryPoints []string `yaml:"entry_points"`

	// ManifestPath is where Generate's output is written. Defaults to
	// "flowcraft.manifest.go".
	ManifestPath string `yaml:"manifest_path"`

	// LogLevel is one of debug/info/warn/error. Defaults to "info".
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LLM configures the model llmstep.Default is wired to at startup.
	// Optional: a project with no LLM-calling steps omits it entirely.
	LLM *LLMConfig `yaml:"llm,omitempty"`
}

// LLMConfig selects and authenticates the default chat model.
type LLMConfig struct {
	Provider string `yaml:"provider" validate:"required,oneof=anthropic openai google"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	// APIKeyEnv names an environment variable to read the key from
	// instead of embedding it in flowcraft.yaml.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

const (
	defaultEntryPoint = "./flows"
	defaultManifest   = "flowcraft.manifest.go"
	defaultLogLevel   = "info"
)

var manifestPathPattern = regexp.MustCompile(`\.go$`)

// Load reads, decodes, defaults, and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flowcraftcfg: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("flowcraftcfg: parsing %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.EntryPoints) == 0 {
		c.EntryPoints = []string{defaultEntryPoint}
	}
	if c.ManifestPath == "" {
		c.ManifestPath = defaultManifest
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// Validate runs struct-tag validation plus the cross-field checks tags
// can't express (manifest path must end .go, an LLM config must resolve
// to a non-empty key from one of its two sources).
func (c *Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		return convertValidationError(err)
	}
	if !manifestPathPattern.MatchString(c.ManifestPath) {
		return fmt.Errorf("flowcraftcfg: manifest_path %q must end in .go", c.ManifestPath)
	}
	if c.LLM != nil {
		if err := validatorInstance().Struct(c.LLM); err != nil {
			return convertValidationError(err)
		}
		if c.LLM.resolveKey() == "" {
			return fmt.Errorf("flowcraftcfg: llm.api_key or llm.api_key_env must be set")
		}
	}
	return nil
}

// resolveKey returns the configured API key, preferring an explicit
// literal over the environment-variable indirection.
func (c *LLMConfig) resolveKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	return ""
}
