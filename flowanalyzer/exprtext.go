package flowanalyzer

import (
	"bytes"
	"go/ast"
	"go/printer"
)

// exprText renders an expression back to source text for storage in a node's
// Params or an edge's Condition. The graph is evaluated by the runtime, not
// the compiler, so conditions and arguments travel as text.
func (fa *flowAnalyzer) exprText(e ast.Expr) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fa.fset, e); err != nil {
		return "<unprintable>"
	}
	return buf.String()
}
