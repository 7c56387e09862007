package flowanalyzer

import (
	"go/ast"
	"regexp"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
)

// markerPattern matches a raw doc-comment line declaring a procedure's kind,
// e.g. "//flowcraft:flow" or "// flowcraft:step" on a line of its own.
var markerPattern = regexp.MustCompile(`^//\s*flowcraft:(flow|step)\s*$`)

// markerKind inspects a declaration's doc comment for a flowcraft marker.
// Returns blueprint.ExportUnknown if no marker line is present.
func markerKind(doc *ast.CommentGroup) blueprint.ExportKind {
	if doc == nil {
		return blueprint.ExportUnknown
	}
	for _, c := range doc.List {
		m := markerPattern.FindStringSubmatch(c.Text)
		if m == nil {
			continue
		}
		switch m[1] {
		case "flow":
			return blueprint.ExportFlow
		case "step":
			return blueprint.ExportStep
		}
	}
	return blueprint.ExportUnknown
}
