// Package flowanalyzer implements the two analysis stages that turn Go
// source into graph structure: the file analyzer, which discovers
// flowcraft:flow and flowcraft:step procedures across a project, and the
// flow analyzer, which lowers one flow's body into a Blueprint.
package flowanalyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/flowcraft-dev/flowcraft-go/compilecache"
)

// ExportInfo is one discovered flowcraft:flow/flowcraft:step procedure.
type ExportInfo struct {
	Name string              `json:"name"`
	Kind blueprint.ExportKind `json:"kind"`
	Line int                 `json:"line"`
}

// FileRecord is the cacheable result of analyzing one source file: just
// enough to rebuild the project-wide Registry without re-parsing the file,
// keyed by its content hash.
type FileRecord struct {
	ImportPath string       `json:"importPath"`
	Exports    []ExportInfo `json:"exports"`
}

// ParsedFile is a fully parsed source file, retained (not cached) so the
// flow analyzer can lower each flow's *ast.FuncDecl body.
type ParsedFile struct {
	Path       string
	ImportPath string
	File       *ast.File
	Aliases    importAliases
	Flows      []*ast.FuncDecl
	Record     FileRecord
}

// FileAnalyzer discovers flowcraft markers across a project's Go source
// files, building the project-wide Registry the flow analyzer and graph
// builder both consult to resolve step and subflow references.
type FileAnalyzer struct {
	fset       *token.FileSet
	moduleName string
	moduleRoot string
	cache      compilecache.Cache[FileRecord]
}

// NewFileAnalyzer creates a file analyzer for a project rooted at
// moduleRoot whose go.mod declares module moduleName. cache may be nil, in
// which case every file is re-analyzed on every call.
func NewFileAnalyzer(moduleName, moduleRoot string, cache compilecache.Cache[FileRecord]) *FileAnalyzer {
	return &FileAnalyzer{
		fset:       token.NewFileSet(),
		moduleName: moduleName,
		moduleRoot: moduleRoot,
		cache:      cache,
	}
}

// FileSet returns the analyzer's shared token.FileSet, needed by callers
// that format SourceLocation values from the parsed files it returns.
func (a *FileAnalyzer) FileSet() *token.FileSet { return a.fset }

// AnalyzeFile parses path and discovers its flowcraft markers. If a cache
// was configured and path's content hash has a cached record, that record's
// Exports are trusted and the file is still parsed (the AST itself is never
// cached, only the marker discovery) so flow bodies remain available to
// lower.
func (a *FileAnalyzer) AnalyzeFile(ctx context.Context, path string) (*ParsedFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flowanalyzer: read %s: %w", path, err)
	}

	file, err := parser.ParseFile(a.fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("flowanalyzer: parse %s: %w", path, err)
	}

	importPath := a.importPathFor(path)
	aliases := a.resolveAliases(file, importPath)

	hash := contentHash(src)
	cacheKey := path + "@" + hash

	var record FileRecord
	var flows []*ast.FuncDecl
	cached := false
	if a.cache != nil {
		if r, err := a.cache.Get(ctx, cacheKey); err == nil {
			record = r
			cached = true
		}
	}

	if !cached {
		record = FileRecord{ImportPath: importPath}
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv != nil || !fn.Name.IsExported() {
				continue
			}
			kind := markerKind(fn.Doc)
			if kind == blueprint.ExportUnknown {
				continue
			}
			record.Exports = append(record.Exports, ExportInfo{
				Name: fn.Name.Name,
				Kind: kind,
				Line: a.fset.Position(fn.Pos()).Line,
			})
		}
		if a.cache != nil {
			_ = a.cache.Put(ctx, cacheKey, record)
		}
	}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil {
			continue
		}
		for _, exp := range record.Exports {
			if exp.Name == fn.Name.Name && exp.Kind == blueprint.ExportFlow {
				flows = append(flows, fn)
			}
		}
	}

	return &ParsedFile{
		Path: path, ImportPath: importPath, File: file,
		Aliases: aliases, Flows: flows, Record: record,
	}, nil
}

// BuildRegistry reduces a set of parsed files into the project-wide
// registries: the blueprint.Registry the manifest emits, and the
// name-to-kind lookup the flow analyzer uses to recognise step and subflow
// calls.
func BuildRegistry(files []*ParsedFile) (blueprint.Registry, Registry) {
	full := make(blueprint.Registry)
	kinds := make(Registry)
	for _, f := range files {
		for _, exp := range f.Record.Exports {
			full[exp.Name] = blueprint.RegistryEntry{ImportPath: f.ImportPath, ExportName: exp.Name}
			kinds[exp.Name] = exp.Kind
		}
	}
	return full, kinds
}

func (a *FileAnalyzer) importPathFor(path string) string {
	dir := filepath.Dir(path)
	rel, err := filepath.Rel(a.moduleRoot, dir)
	if err != nil || rel == "." {
		return a.moduleName
	}
	return a.moduleName + "/" + filepath.ToSlash(rel)
}

func (a *FileAnalyzer) resolveAliases(file *ast.File, importPath string) importAliases {
	var aliases importAliases
	durablePath := a.moduleName + "/durable"
	flowctxPath := a.moduleName + "/flowctx"
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		name := ""
		if imp.Name != nil {
			name = imp.Name.Name
		} else {
			parts := strings.Split(path, "/")
			name = parts[len(parts)-1]
		}
		switch path {
		case durablePath:
			aliases.durable = name
		case flowctxPath:
			aliases.flowctx = name
		}
	}
	return aliases
}

func contentHash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}
