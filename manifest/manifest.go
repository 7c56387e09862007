// Package manifest renders a compiled project's registry and blueprints as
// a single Go source file the host program imports, per spec §6's "manifest
// file... round-trips through JSON-compatible structures": the outer shape
// is Go source (since the runtime host is itself a Go program), but every
// Blueprint value inside it is carried as its own JSON text, decoded at
// package-init time, so the data stays fully JSON round-trippable.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
)

// escapeBacktickRaw makes s safe to embed inside a Go raw string literal
// (backtick-delimited) by breaking out of the literal around any backtick
// s itself contains: encoding/json never emits one outside a string value,
// but a step's own data could carry one through to a literal default value.
func escapeBacktickRaw(s string) string {
	return strings.ReplaceAll(s, "`", "`+\"`\"+`")
}

// StepRef is one entry of the generated Registry: where the step's
// implementation lives (import path, exported symbol), under the name it
// was registered with. Mirrors blueprint.RegistryEntry plus the name itself,
// since the generated map is keyed by it.
type StepRef struct {
	Name       string
	ImportPath string
	ExportName string
}

// StepRefsFromRegistry renders a blueprint.Registry as a sorted (by Name)
// slice, the form the manifest template iterates over for deterministic
// output across repeated generations of the same project.
func StepRefsFromRegistry(reg blueprint.Registry) []StepRef {
	out := make([]StepRef, 0, len(reg))
	for name, entry := range reg {
		out = append(out, StepRef{Name: name, ImportPath: entry.ImportPath, ExportName: entry.ExportName})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MustDecodeBlueprint decodes a JSON-encoded blueprint.Blueprint. Panics on
// malformed JSON: it is only ever called against text this package itself
// produced via Generate, at package-init time of a generated
// flowcraft.manifest.go, where a decode failure means the generator and the
// decoder have drifted and there is no sensible recovery.
func MustDecodeBlueprint(jsonText string) blueprint.Blueprint {
	var bp blueprint.Blueprint
	if err := json.Unmarshal([]byte(jsonText), &bp); err != nil {
		panic(fmt.Sprintf("manifest: corrupt embedded blueprint JSON: %v", err))
	}
	return bp
}

// importAlias deterministically aliases an import path as pkgN, in
// first-seen order, so generated source never collides on two packages
// sharing a base name (e.g. two different "steps" packages).
type importAlias struct {
	order []string
	alias map[string]string
}

func newImportAlias() *importAlias { return &importAlias{alias: map[string]string{}} }

func (a *importAlias) get(importPath string) string {
	if alias, ok := a.alias[importPath]; ok {
		return alias
	}
	alias := fmt.Sprintf("pkg%d", len(a.order))
	a.alias[importPath] = alias
	a.order = append(a.order, importPath)
	return alias
}

type templateStep struct {
	Name, Alias, ExportName string
}

type templateBlueprint struct {
	Name string
	JSON string
}

type templateData struct {
	Package    string
	Imports    []templateImport
	Steps      []templateStep
	Blueprints []templateBlueprint
}

type templateImport struct {
	Alias, Path string
}

var manifestTemplate = template.Must(template.New("manifest").Parse(`// Code generated by flowcraft build. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/flowcraft-dev/flowcraft-go/manifest"
{{range .Imports}}	{{.Alias}} "{{.Path}}"
{{end}})

// Registry maps each registered step name to its compiled implementation.
var Registry = map[string]any{
{{range .Steps}}	"{{.Name}}": {{.Alias}}.{{.ExportName}},
{{end}}}

// Blueprints maps each compiled flow's name to its Blueprint, decoded from
// the JSON text the compiler produced.
var Blueprints = map[string]blueprint.Blueprint{
{{range .Blueprints}}	"{{.Name}}": manifest.MustDecodeBlueprint(` + "`{{.JSON}}`" + `),
{{end}}}
`))

// Generate renders flowcraft.manifest.go's source for packageName, wiring
// every entry of reg to its import path/export name and embedding every
// blueprint in blueprints as JSON text. The returned source is gofmt'd.
func Generate(packageName string, reg blueprint.Registry, blueprints map[string]*blueprint.Blueprint) (string, error) {
	aliases := newImportAlias()
	refs := StepRefsFromRegistry(reg)

	steps := make([]templateStep, 0, len(refs))
	for _, ref := range refs {
		steps = append(steps, templateStep{
			Name:       ref.Name,
			Alias:      aliases.get(ref.ImportPath),
			ExportName: ref.ExportName,
		})
	}

	names := make([]string, 0, len(blueprints))
	for name := range blueprints {
		names = append(names, name)
	}
	sort.Strings(names)

	bps := make([]templateBlueprint, 0, len(names))
	for _, name := range names {
		encoded, err := json.Marshal(blueprints[name])
		if err != nil {
			return "", fmt.Errorf("manifest: encoding blueprint %q: %w", name, err)
		}
		bps = append(bps, templateBlueprint{Name: name, JSON: escapeBacktickRaw(string(encoded))})
	}

	imports := make([]templateImport, 0, len(aliases.order))
	for _, path := range aliases.order {
		imports = append(imports, templateImport{Alias: aliases.alias[path], Path: path})
	}

	data := templateData{Package: packageName, Imports: imports, Steps: steps, Blueprints: bps}

	var buf bytes.Buffer
	if err := manifestTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("manifest: rendering template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("manifest: generated source does not parse: %w", err)
	}
	return string(formatted), nil
}
