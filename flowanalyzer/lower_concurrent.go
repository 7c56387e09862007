package flowanalyzer

import (
	"go/ast"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
)

// lowerGather lowers durable.Gather(fn1, fn2, ...): each fn becomes a branch
// running from the current node, all converging on a single gather node
// configured to join only once every branch has arrived.
func (fa *flowAnalyzer) lowerGather(call *ast.CallExpr) {
	loc := fa.loc(call.Pos())
	sources := fa.pending

	if len(call.Args) == 0 {
		// No branches to fan out to: no node is added, pending is left as
		// it was, and the call is reported as a warning.
		fa.diags.Warnf(loc, "gather over an empty set of calls")
		return
	}

	containerID := fa.mint("parallel_container")
	fa.nodes = append(fa.nodes, blueprint.NodeDefinition{ID: containerID, Uses: blueprint.UsesParallelRoot, SourceLocation: &loc})
	fa.pending = sources
	fa.connectPendingTo(containerID)

	var branchExits []pendingEdge
	for _, arg := range call.Args {
		lit, ok := arg.(*ast.FuncLit)
		if !ok {
			fa.diags.Warnf(fa.loc(arg.Pos()), "durable.Gather argument is not a literal closure; branch ignored")
			continue
		}
		fa.pending = []pendingEdge{{From: containerID}}
		fa.closureDepth++
		if inner := funcLitCall(lit); inner != nil {
			fa.lowerCall(inner, lit.Pos())
		} else {
			fa.lowerBlock(lit.Body.List)
		}
		fa.closureDepth--
		branchExits = append(branchExits, fa.pending...)
	}

	id := fa.mint("gather")
	node := blueprint.NodeDefinition{
		ID: id, Uses: blueprint.UsesGather,
		Config:         &blueprint.NodeConfig{JoinStrategy: blueprint.JoinAll},
		SourceLocation: &loc,
	}
	if fa.fallbackTarget != "" {
		node.Config.Fallback = fa.fallbackTarget
	}
	fa.nodes = append(fa.nodes, node)
	fa.pending = branchExits
	fa.connectPendingTo(id)
	fa.pending = []pendingEdge{{From: id}}
}

// lowerTry lowers durable.Try(tryFn, catchFn): every node inside tryFn gets
// its fallback wired to catchFn's first node; the result is as if the try
// and catch bodies were two alternative branches that converge afterward,
// matching how the runtime actually resumes execution after a fallback
// fires.
func (fa *flowAnalyzer) lowerTry(call *ast.CallExpr) {
	sources := fa.pending
	if len(call.Args) < 1 {
		fa.diags.Errorf(fa.loc(call.Pos()), "durable.Try requires a try closure argument")
		return
	}
	tryLit, ok := call.Args[0].(*ast.FuncLit)
	if !ok {
		fa.diags.Errorf(fa.loc(call.Pos()), "durable.Try's try argument must be a literal closure")
		return
	}

	var catchLit *ast.FuncLit
	if len(call.Args) >= 2 {
		catchLit, _ = call.Args[1].(*ast.FuncLit)
	}

	// Lower the catch branch first (disconnected from sources; it's only
	// ever reached via a fallback redirect) so its entry node id is known
	// before the try branch's nodes are emitted.
	var catchEntryID string
	savedPending := fa.pending
	fa.pending = nil
	if catchLit != nil && catchLit.Body != nil && len(catchLit.Body.List) > 0 {
		id := fa.mint("catch_entry")
		noop := blueprint.NodeDefinition{ID: id, Uses: blueprint.UsesNoop}
		fa.nodes = append(fa.nodes, noop)
		fa.pending = []pendingEdge{{From: id}}
		catchEntryID = id
		fa.closureDepth++
		fa.lowerBlock(catchLit.Body.List)
		fa.closureDepth--
	}
	// An empty or absent catch adds no node: catchEntryID stays empty, so
	// the try body's nodes carry no fallback config.
	catchExit := fa.pending
	fa.pending = savedPending

	savedFallback := fa.fallbackTarget
	fa.fallbackTarget = catchEntryID
	fa.pending = sources
	fa.closureDepth++
	if tryLit.Body != nil {
		fa.lowerBlock(tryLit.Body.List)
	}
	fa.closureDepth--
	tryExit := fa.pending
	fa.fallbackTarget = savedFallback

	fa.pending = append(append([]pendingEdge{}, tryExit...), catchExit...)
}
