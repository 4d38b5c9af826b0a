package driver

import (
	"surge/internal/ast"
	"surge/internal/checker"
	"surge/internal/checkrt"
	"surge/internal/diag"
	"surge/internal/infer"
	"surge/internal/ir"
	"surge/internal/resolve"
)

// CheckResult is the Check phase's output: one typed expression per checked
// function body, plus whatever diagnostics checking itself produced (as
// opposed to parsing's or resolution's, carried separately in ParseResult
// and ResolveResult).
type CheckResult struct {
	Bodies map[ast.ItemID]*checker.Expr
	Bag    *diag.Bag
}

// Check runs the expression checker (internal/checker) over every function
// item a Resolve pass found, using internal/checker's own Walker to bridge
// parsed syntax into checker.Expr nodes. It is the driver phase that turns
// the checker, inference, predicate, and subtype components from isolated
// packages into something a command actually calls.
func Check(parsed *ParseResult, resolved *ResolveResult, maxDiagnostics int) *CheckResult {
	bag := diag.NewBag(maxDiagnostics)
	store := ir.NewStore()
	rt := checkrt.NewRuntime(checkrt.Config{})
	env := checker.Env{
		Store:    store,
		Infer:    infer.NewStore(rt.Wake, nil),
		Runtime:  rt,
		Table:    resolved.Table,
		Generics: resolve.NewGenericScope(),
		Decls:    checker.NewDeclarations(),
		Bag:      bag,
		Bindings: make(map[ir.PlaceRoot]ir.TypeID),
	}

	walker := checker.NewWalker(parsed.Builder, &resolved.Result)
	result := &CheckResult{Bodies: make(map[ast.ItemID]*checker.Expr)}

	file := parsed.Builder.Files.Get(parsed.FileID)
	if file != nil {
		for _, itemID := range file.Items {
			fn, ok := parsed.Builder.Items.Fn(itemID)
			if !ok {
				continue
			}
			paramIDs := parsed.Builder.Items.GetFnParamIDs(fn)
			params := make([]*ast.FnParam, len(paramIDs))
			for i, pid := range paramIDs {
				params[i] = parsed.Builder.Items.FnParam(pid)
			}
			result.Bodies[itemID] = walker.WalkFunctionBody(env, fn, params)
		}
	}

	rt.BlockUntilQuiescent()
	result.Bag = bag
	return result
}
