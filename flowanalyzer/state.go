package flowanalyzer

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
)

// pendingEdge is a dangling predecessor the next emitted node (or loop close)
// will be wired from. Holding a slice of these instead of a single "cursor"
// lets the analyzer represent if/else fan-out and loop-exit fan-in with the
// same mechanism it uses for a plain sequential chain.
type pendingEdge struct {
	From      string
	Action    string
	Condition string
}

// loopScopeEntry tracks the controller node of an enclosing loop so break
// and continue statements know where to route.
type loopScopeEntry struct {
	ControllerID string
	BreakSources []pendingEdge
}

// flowAnalyzer lowers one flow function's body into a blueprint. A new value
// is created per flow; it is not reused across flows.
type flowAnalyzer struct {
	fset *token.FileSet
	reg  Registry

	aliases importAliases

	nodes []blueprint.NodeDefinition
	edges []blueprint.EdgeDefinition

	pending []pendingEdge
	counts  map[string]int
	loops   []*loopScopeEntry

	// closureDepth is >0 while lowering the body of a durable.Gather or
	// durable.Try literal argument. A bare return inside such a closure is
	// Go's mandatory way of reporting success/failure to the wrapper, not a
	// signal to end the branch, so it is treated as a no-op there instead of
	// the flow-terminating behaviour a top-level return has.
	closureDepth int

	// fallbackTarget, when non-empty, is written onto the Config.Fallback of
	// every node emitted while a try block is being lowered.
	fallbackTarget string

	diags *blueprint.Diagnostics
	file  string
}

// Registry resolves a called name to what kind of durable procedure it is.
// Built by the file analyzer from doc-comment markers across the project.
type Registry map[string]blueprint.ExportKind

type importAliases struct {
	durable string
	flowctx string
}

func newFlowAnalyzer(fset *token.FileSet, file string, reg Registry, aliases importAliases, diags *blueprint.Diagnostics) *flowAnalyzer {
	return &flowAnalyzer{
		fset:    fset,
		file:    file,
		reg:     reg,
		aliases: aliases,
		counts:  make(map[string]int),
		diags:   diags,
	}
}

func (fa *flowAnalyzer) loc(pos token.Pos) blueprint.SourceLocation {
	p := fa.fset.Position(pos)
	return blueprint.SourceLocation{File: fa.file, Line: p.Line, Column: p.Column}
}

func (fa *flowAnalyzer) mint(base string) string {
	fa.counts[base]++
	return fmt.Sprintf("%s_%d", base, fa.counts[base])
}

// emitNode appends node, wires every currently pending edge into it, and
// leaves a single pending edge pointing out of it.
func (fa *flowAnalyzer) emitNode(node blueprint.NodeDefinition) {
	if fa.fallbackTarget != "" {
		if node.Config == nil {
			node.Config = &blueprint.NodeConfig{}
		}
		node.Config.Fallback = fa.fallbackTarget
	}
	fa.nodes = append(fa.nodes, node)
	fa.connectPendingTo(node.ID)
	fa.pending = []pendingEdge{{From: node.ID}}
}

// connectPendingTo wires every pending edge into target and clears pending.
func (fa *flowAnalyzer) connectPendingTo(target string) {
	for _, p := range fa.pending {
		fa.edges = append(fa.edges, blueprint.EdgeDefinition{
			Source: p.From, Target: target, Action: p.Action, Condition: p.Condition,
		})
	}
	fa.pending = nil
}

func tagAll(sources []pendingEdge, action, condition string) []pendingEdge {
	out := make([]pendingEdge, len(sources))
	for i, s := range sources {
		out[i] = pendingEdge{From: s.From, Action: action, Condition: condition}
	}
	return out
}

func negateCondition(expr string) string {
	return "!(" + expr + ")"
}

// callArgsToParams renders a call's argument expressions as source text, the
// compiled node's Params. The graph carries source text rather than
// evaluated values: evaluation happens at run time, not compile time.
func (fa *flowAnalyzer) callArgsToParams(call *ast.CallExpr) map[string]any {
	if len(call.Args) == 0 {
		return nil
	}
	params := make(map[string]any, len(call.Args))
	for i, arg := range call.Args {
		params[fmt.Sprintf("arg%d", i)] = fa.exprText(arg)
	}
	return params
}
