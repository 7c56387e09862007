package flowanalyzer

import (
	"go/ast"
	"go/token"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
)

func (fa *flowAnalyzer) lowerIf(s *ast.IfStmt) {
	condText := fa.exprText(s.Cond)
	sources := fa.pending

	fa.pending = tagAll(sources, "", condText)
	if s.Body != nil {
		fa.lowerBlock(s.Body.List)
	}
	thenExit := fa.pending

	var elseExit []pendingEdge
	if s.Else == nil {
		// No else: the skip path goes straight to the next node, tagged with
		// the negated condition; an if-without-else needs no join node.
		elseExit = tagAll(sources, "", negateCondition(condText))
	} else {
		fa.pending = tagAll(sources, "", negateCondition(condText))
		switch els := s.Else.(type) {
		case *ast.BlockStmt:
			fa.lowerBlock(els.List)
		case *ast.IfStmt:
			fa.lowerIf(els)
		}
		elseExit = fa.pending
	}

	fa.pending = append(append([]pendingEdge{}, thenExit...), elseExit...)
}

func (fa *flowAnalyzer) lowerFor(s *ast.ForStmt) {
	if s.Init != nil || s.Post != nil {
		fa.diags.Warnf(fa.loc(s.Pos()), "for loop with init/post clauses is compiled as a plain condition loop; init and post are ignored")
	}
	condText := "true"
	if s.Cond != nil {
		condText = fa.exprText(s.Cond)
	}
	fa.lowerLoop(s.Pos(), condText, nil, s.Body)
}

func (fa *flowAnalyzer) lowerRange(s *ast.RangeStmt) {
	// A for-range is desugared to a while(true) loop over an implicit
	// iterator; the loop variable bindings become ordinary context reads
	// inside the body rather than graph structure. The controller rebinds
	// key/value into the context under these names on every iteration so
	// that a body step called as e.g. ProcessItem(ctx, item) resolves
	// "item" the same way any other context-backed argument does.
	params := map[string]any{"range": fa.exprText(s.X)}
	if name := identName(s.Key); name != "" {
		params["rangeKey"] = name
	}
	if name := identName(s.Value); name != "" {
		params["rangeValue"] = name
	}
	fa.lowerLoop(s.Pos(), "true", params, s.Body)
}

func identName(e ast.Expr) string {
	id, ok := e.(*ast.Ident)
	if !ok || id.Name == "_" {
		return ""
	}
	return id.Name
}

func (fa *flowAnalyzer) lowerLoop(pos token.Pos, condText string, extraParams map[string]any, body *ast.BlockStmt) {
	loc := fa.loc(pos)
	controllerID := fa.mint("loop_controller")
	params := map[string]any{"condition": condText}
	for k, v := range extraParams {
		params[k] = v
	}
	controllerNode := newControllerNode(controllerID, params, &loc)
	if fa.fallbackTarget != "" {
		controllerNode.Config = &blueprint.NodeConfig{Fallback: fa.fallbackTarget}
	}
	fa.nodes = append(fa.nodes, controllerNode)
	fa.connectPendingTo(controllerID)

	scope := &loopScopeEntry{ControllerID: controllerID}
	fa.loops = append(fa.loops, scope)

	fa.pending = []pendingEdge{{From: controllerID, Action: "true"}}
	if body != nil {
		fa.lowerBlock(body.List)
	}
	// Anything still pending at the end of the body loops back to the
	// controller; a dead pending (return/break/continue already handled it)
	// leaves nothing to close.
	fa.connectPendingTo(controllerID)

	fa.loops = fa.loops[:len(fa.loops)-1]

	exit := []pendingEdge{{From: controllerID, Action: "false"}}
	fa.pending = append(exit, scope.BreakSources...)
}

func (fa *flowAnalyzer) lowerBranch(s *ast.BranchStmt) {
	if len(fa.loops) == 0 {
		fa.diags.Errorf(fa.loc(s.Pos()), "break/continue outside of a loop")
		fa.pending = nil
		return
	}
	top := fa.loops[len(fa.loops)-1]
	switch s.Tok {
	case token.BREAK:
		top.BreakSources = append(top.BreakSources, fa.pending...)
	case token.CONTINUE:
		fa.connectPendingTo(top.ControllerID)
	default:
		fa.diags.Warnf(fa.loc(s.Pos()), "labeled break/continue is not supported; treated as unlabeled")
		if s.Tok == token.BREAK {
			top.BreakSources = append(top.BreakSources, fa.pending...)
		} else {
			fa.connectPendingTo(top.ControllerID)
		}
	}
	fa.pending = nil
}
