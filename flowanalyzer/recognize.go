package flowanalyzer

import "go/ast"

// selectorPkg returns the package alias and selected name of a call of the
// shape pkg.Name(...), or ("", "", false) for any other call shape.
func selectorPkg(call *ast.CallExpr) (pkg, name string, ok bool) {
	sel, isSel := call.Fun.(*ast.SelectorExpr)
	if !isSel {
		return "", "", false
	}
	ident, isIdent := sel.X.(*ast.Ident)
	if !isIdent {
		return "", "", false
	}
	return ident.Name, sel.Sel.Name, true
}

func (fa *flowAnalyzer) isDurableCall(call *ast.CallExpr, name string) bool {
	if fa.aliases.durable == "" {
		return false
	}
	pkg, fn, ok := selectorPkg(call)
	return ok && pkg == fa.aliases.durable && fn == name
}

func (fa *flowAnalyzer) isFlowctxCall(call *ast.CallExpr) (name string, ok bool) {
	if fa.aliases.flowctx == "" {
		return "", false
	}
	pkg, fn, ok := selectorPkg(call)
	if !ok || pkg != fa.aliases.flowctx {
		return "", false
	}
	return fn, true
}

// calleeName extracts the plain identifier a call targets, whether it is
// qualified (pkg.Name) or bare (Name), for matching against the registry.
func calleeName(call *ast.CallExpr) string {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		return fn.Name
	case *ast.SelectorExpr:
		return fn.Sel.Name
	default:
		return ""
	}
}

// funcLitCall extracts the single call expression inside a closure of the
// shape func() (any, error) { return someCall() }, the expected shape of a
// durable.Gather branch. Returns nil if the literal isn't in that shape.
func funcLitCall(lit *ast.FuncLit) *ast.CallExpr {
	if lit.Body == nil || len(lit.Body.List) != 1 {
		return nil
	}
	ret, ok := lit.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return nil
	}
	call, ok := ret.Results[0].(*ast.CallExpr)
	if !ok {
		return nil
	}
	return call
}
