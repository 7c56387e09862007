package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/flowcraft-dev/flowcraft-go/compilecache"
	"github.com/flowcraft-dev/flowcraft-go/flowanalyzer"
	"github.com/flowcraft-dev/flowcraft-go/flowcraftcfg"
	"github.com/flowcraft-dev/flowcraft-go/graphbuilder"
	"github.com/flowcraft-dev/flowcraft-go/manifest"
	"github.com/flowcraft-dev/flowcraft-go/stepkit/llmstep"
)

type buildOptions struct {
	projectDir  string
	packageName string
	cachePath   string
	cacheDSN    string
}

func newBuildCmd(root *rootFlags) *cobra.Command {
	opts := buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile flow source into a manifest Go file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := flowcraftcfg.NewLogger("info")
			if root.verbose {
				logger = flowcraftcfg.NewLogger("debug")
			}
			return runBuild(cmd.Context(), root.configPath, opts, logger)
		},
	}

	cmd.Flags().StringVar(&opts.projectDir, "project-dir", ".", "Directory containing go.mod")
	cmd.Flags().StringVar(&opts.packageName, "package", "manifest", "Package name for the generated manifest file")
	cmd.Flags().StringVar(&opts.cachePath, "cache", ".flowcraft-cache.db", "Path to the sqlite build cache; empty disables caching")
	cmd.Flags().StringVar(&opts.cacheDSN, "cache-mysql-dsn", "", "MySQL DSN for the build cache, overriding --cache")

	return cmd
}

func runBuild(ctx context.Context, configPath string, opts buildOptions, logger flowcraftcfg.Logger) error {
	cfg, err := flowcraftcfg.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if model, err := cfg.BuildModel(); err != nil {
		return fmt.Errorf("configuring llm model: %w", err)
	} else if model != nil {
		llmstep.Default = model
	}

	moduleName, err := readModuleName(opts.projectDir)
	if err != nil {
		return err
	}

	cache, err := openCache(ctx, opts)
	if err != nil {
		return fmt.Errorf("opening build cache: %w", err)
	}
	defer cache.Close()

	diags := &blueprint.Diagnostics{}
	blueprints := make(map[string]*blueprint.Blueprint)
	registry := blueprint.Registry{}

	for _, entry := range cfg.EntryPoints {
		logger.Debug("analyzing entry point", map[string]any{"path": entry})
		result, err := flowanalyzer.AnalyzeProject(ctx, moduleName, entry, cache)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", entry, err)
		}
		for name, bp := range result.Blueprints {
			blueprints[name] = bp
		}
		registry.Merge(result.Registry)
		for _, d := range result.Diagnostic.All() {
			diags.Add(d)
		}
	}

	builder := graphbuilder.New(blueprints)
	flattened := make(map[string]*blueprint.Blueprint, len(blueprints))
	for name := range blueprints {
		bp, err := builder.Flatten(name)
		if err != nil {
			diags.Errorf(blueprint.SourceLocation{}, "flattening flow %q: %s", name, err.Error())
			continue
		}
		flattened[name] = bp
	}

	printDiagnostics(diags)

	if diags.HasErrors() {
		return fmt.Errorf("build failed: %d diagnostic(s) reported", len(diags.All()))
	}

	source, err := manifest.Generate(opts.packageName, registry, flattened)
	if err != nil {
		return fmt.Errorf("generating manifest: %w", err)
	}

	if err := os.WriteFile(cfg.ManifestPath, []byte(source), 0o644); err != nil {
		return fmt.Errorf("writing manifest to %s: %w", cfg.ManifestPath, err)
	}

	logger.Info("manifest written", map[string]any{"path": cfg.ManifestPath, "flows": len(flattened)})
	return nil
}

// printDiagnostics writes every accumulated diagnostic to stderr in the
// driver's "<relative-path>:<line>:<column> - <message>" format.
func printDiagnostics(diags *blueprint.Diagnostics) {
	for _, d := range diags.All() {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func openCache(ctx context.Context, opts buildOptions) (compilecache.Cache[flowanalyzer.FileRecord], error) {
	switch {
	case opts.cacheDSN != "":
		return compilecache.NewMySQLCache[flowanalyzer.FileRecord](ctx, opts.cacheDSN)
	case opts.cachePath != "":
		return compilecache.NewSQLiteCache[flowanalyzer.FileRecord](opts.cachePath)
	default:
		return compilecache.NewMemCache[flowanalyzer.FileRecord](), nil
	}
}
