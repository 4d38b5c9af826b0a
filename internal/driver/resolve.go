package driver

import (
	"surge/internal/diag"
	"surge/internal/symbols"
)

// ResolveResult is the Resolve phase's output, sitting next to ParseResult
// the way a real pipeline threads one phase's artefacts into the next.
type ResolveResult struct {
	Table  *symbols.Table
	Result symbols.Result
	Bag    *diag.Bag
}

// Resolve runs name resolution over a parsed file, building the symbol
// table a later Check phase binds parameters and let-statements against.
func Resolve(parsed *ParseResult, maxDiagnostics int) *ResolveResult {
	bag := diag.NewBag(maxDiagnostics)
	res := symbols.ResolveFile(parsed.Builder, parsed.FileID, &symbols.ResolveOptions{
		Reporter: &diag.BagReporter{Bag: bag},
		Validate: true,
		FilePath: parsed.File.Path,
	})
	return &ResolveResult{Table: res.Table, Result: res, Bag: bag}
}
