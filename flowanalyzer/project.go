package flowanalyzer

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/flowcraft-dev/flowcraft-go/compilecache"
)

// ProjectResult is everything the graph builder and manifest emitter need
// from analysis: one unflattened Blueprint per discovered flow, the
// project-wide step/flow registry, and the accumulated diagnostics.
type ProjectResult struct {
	Blueprints map[string]*blueprint.Blueprint
	Registry   blueprint.Registry
	Diagnostic *blueprint.Diagnostics
}

// AnalyzeProject walks every non-test .go file under root, discovers
// flowcraft markers, and lowers every discovered flow into a Blueprint.
// moduleName is the project's go.mod module path, used to resolve the
// durable and flowctx well-known import paths and to compute each file's
// own import path for the Registry.
func AnalyzeProject(ctx context.Context, moduleName, root string, cache compilecache.Cache[FileRecord]) (*ProjectResult, error) {
	paths, err := discoverGoFiles(root)
	if err != nil {
		return nil, fmt.Errorf("flowanalyzer: discover source files: %w", err)
	}

	analyzer := NewFileAnalyzer(moduleName, root, cache)
	diags := &blueprint.Diagnostics{}

	var parsed []*ParsedFile
	for _, path := range paths {
		pf, err := analyzer.AnalyzeFile(ctx, path)
		if err != nil {
			diags.Errorf(blueprint.SourceLocation{File: path}, "%s", err.Error())
			continue
		}
		parsed = append(parsed, pf)
	}

	fullRegistry, kindRegistry := BuildRegistry(parsed)

	blueprints := make(map[string]*blueprint.Blueprint)
	for _, pf := range parsed {
		for _, fn := range pf.Flows {
			bp, flowDiags := AnalyzeFlow(analyzer.FileSet(), pf.Path, fn, kindRegistry, pf.Aliases)
			for _, d := range flowDiags.All() {
				diags.Add(d)
			}
			if err := bp.Validate(); err != nil {
				diags.Errorf(blueprint.SourceLocation{File: pf.Path, Line: analyzer.FileSet().Position(fn.Pos()).Line},
					"flow %q failed validation: %s", fn.Name.Name, err.Error())
			}
			blueprints[fn.Name.Name] = bp
		}
	}

	return &ProjectResult{Blueprints: blueprints, Registry: fullRegistry, Diagnostic: diags}, nil
}

func discoverGoFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if name == "vendor" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
