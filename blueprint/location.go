// Package blueprint defines the immutable graph data model shared by the
// flow analyzer, graph builder, and runtime: source locations, diagnostics,
// node/edge definitions, the serializable Blueprint itself, the execution
// Context, and the step Registry.
package blueprint

import "fmt"

// SourceLocation identifies a position in a source file, attached to every
// graph element for diagnostics.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// String renders the location the way the driver prints diagnostics:
// "<relative-path>:<line>:<column>".
func (l SourceLocation) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}
