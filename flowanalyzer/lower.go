package flowanalyzer

import (
	"go/ast"
	"go/token"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
)

// AnalyzeFlow lowers one flow function's body into a Blueprint. The
// function's own name (fn.Name) is used as the blueprint id.
func AnalyzeFlow(fset *token.FileSet, file string, fn *ast.FuncDecl, reg Registry, aliases importAliases) (*blueprint.Blueprint, *blueprint.Diagnostics) {
	diags := &blueprint.Diagnostics{}
	fa := newFlowAnalyzer(fset, file, reg, aliases, diags)

	start := blueprint.NodeDefinition{ID: "start", Uses: blueprint.UsesStart, OriginalID: "start", SourceLocation: ptrLoc(fa.loc(fn.Pos()))}
	fa.nodes = append(fa.nodes, start)
	fa.pending = []pendingEdge{{From: "start"}}

	if fn.Body != nil {
		fa.lowerBlock(fn.Body.List)
	}

	for i := range fa.nodes {
		if fa.nodes[i].OriginalID == "" {
			fa.nodes[i].OriginalID = fa.nodes[i].ID
		}
	}

	bp := &blueprint.Blueprint{
		ID:          fn.Name.Name,
		Nodes:       fa.nodes,
		Edges:       fa.edges,
		StartNodeID: "start",
	}
	bp.PredecessorCountMap, bp.OriginalPredecessorIDMap = blueprint.ComputePredecessorMaps(bp.Nodes, bp.Edges)
	return bp, diags
}

func ptrLoc(l blueprint.SourceLocation) *blueprint.SourceLocation { return &l }

func (fa *flowAnalyzer) lowerBlock(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		if fa.pending == nil {
			// Prior statement (return/break/continue with no surviving
			// branch) left nothing to connect from; remaining statements in
			// this block are unreachable and contribute no graph structure.
			return
		}
		fa.lowerStmt(stmt)
	}
}

func (fa *flowAnalyzer) lowerStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		if call, ok := s.X.(*ast.CallExpr); ok {
			fa.lowerCall(call, s.Pos())
		} else {
			fa.diags.Infof(fa.loc(s.Pos()), "non-call expression statement has no effect on the compiled graph")
		}
	case *ast.AssignStmt:
		fa.lowerAssign(s)
	case *ast.DeclStmt:
		// local var/const declarations are compile-time bookkeeping only.
	case *ast.IfStmt:
		fa.lowerIf(s)
	case *ast.ForStmt:
		fa.lowerFor(s)
	case *ast.RangeStmt:
		fa.lowerRange(s)
	case *ast.BranchStmt:
		fa.lowerBranch(s)
	case *ast.ReturnStmt:
		if fa.closureDepth == 0 {
			fa.pending = nil
		}
	case *ast.BlockStmt:
		fa.lowerBlock(s.List)
	default:
		fa.diags.Warnf(fa.loc(stmt.Pos()), "unrecognised statement form passed through without affecting the compiled graph")
	}
}

func (fa *flowAnalyzer) lowerAssign(s *ast.AssignStmt) {
	if len(s.Rhs) != 1 {
		fa.diags.Warnf(fa.loc(s.Pos()), "multi-value assignment not in call form ignored")
		return
	}
	call, ok := s.Rhs[0].(*ast.CallExpr)
	if !ok {
		// Plain value assignment; not a durable operation.
		return
	}
	fa.lowerCall(call, s.Pos())
}

func (fa *flowAnalyzer) lowerCall(call *ast.CallExpr, pos token.Pos) {
	switch {
	case fa.isDurableCall(call, "Sleep"):
		fa.lowerSleep(call)
	case fa.isDurableCall(call, "WaitForEvent"):
		fa.lowerWait(call)
	case fa.isDurableCall(call, "CreateWebhook"):
		fa.lowerWebhook(call)
	case fa.isDurableCall(call, "Gather"):
		fa.lowerGather(call)
	case fa.isDurableCall(call, "Try"):
		fa.lowerTry(call)
	default:
		if _, ok := fa.isFlowctxCall(call); ok {
			return // pure context read/write, no node
		}
		name := calleeName(call)
		kind, known := fa.reg[name]
		if !known {
			fa.diags.Warnf(fa.loc(pos), "call to %q does not resolve to a registered step or flow; ignored as a non-durable expression", name)
			return
		}
		fa.lowerStepOrFlow(call, pos, name, kind)
	}
}

func (fa *flowAnalyzer) lowerStepOrFlow(call *ast.CallExpr, pos token.Pos, name string, kind blueprint.ExportKind) {
	var node blueprint.NodeDefinition
	loc := fa.loc(pos)
	if kind == blueprint.ExportFlow {
		id := fa.mint("subflow")
		node = blueprint.NodeDefinition{
			ID: id, Uses: blueprint.UsesSubflow,
			Params:         map[string]any{"blueprintId": name, "args": fa.callArgsToParams(call)},
			SourceLocation: &loc,
		}
	} else {
		id := fa.mint(name)
		node = blueprint.NodeDefinition{
			ID: id, Uses: name,
			Params:         fa.callArgsToParams(call),
			SourceLocation: &loc,
		}
	}
	fa.emitNode(node)
}

func (fa *flowAnalyzer) lowerSleep(call *ast.CallExpr) {
	loc := fa.loc(call.Pos())
	id := fa.mint("sleep")
	params := map[string]any{}
	if len(call.Args) >= 2 {
		params["duration"] = fa.exprText(call.Args[1])
	}
	fa.emitNode(blueprint.NodeDefinition{ID: id, Uses: blueprint.UsesSleep, Params: params, SourceLocation: &loc})
}

func (fa *flowAnalyzer) lowerWait(call *ast.CallExpr) {
	loc := fa.loc(call.Pos())
	id := fa.mint("wait")
	params := map[string]any{}
	if len(call.Args) >= 2 {
		params["eventName"] = fa.exprText(call.Args[1])
	}
	fa.emitNode(blueprint.NodeDefinition{ID: id, Uses: blueprint.UsesWait, Params: params, SourceLocation: &loc})
}

func (fa *flowAnalyzer) lowerWebhook(call *ast.CallExpr) {
	loc := fa.loc(call.Pos())
	id := fa.mint("webhook")
	fa.emitNode(blueprint.NodeDefinition{ID: id, Uses: blueprint.UsesWebhook, SourceLocation: &loc})
}
