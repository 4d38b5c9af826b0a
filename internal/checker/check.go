package checker

import (
	"surge/internal/checkrt"
	"surge/internal/diag"
	"surge/internal/infer"
	"surge/internal/ir"
	"surge/internal/predicate"
	"surge/internal/resolve"
	"surge/internal/symbols"
)

// Options configure a checking pass over a compilation unit, mirroring
// internal/sema's Options/Result/Check shape (the teacher's top-level
// entrypoint for a semantic pass) generalized to this checker's own
// dependencies: the interned stores components A/E/F built, the predicate
// and runtime components G/D built, name resolution (B), and the
// declaration registry this package owns.
type Options struct {
	Store    *ir.Store
	Infer    *infer.Store
	Vars     predicate.VarContracts
	Runtime  *checkrt.Runtime
	Table    *symbols.Table
	Generics *resolve.GenericScope
	Decls    *Declarations
	Bag      *diag.Bag

	// Items is the per-function body checker: given the Env for one item
	// (Scope and Bindings already positioned at the item's parameter
	// scope), it runs the item's body through CheckVariable/CheckLiteral/
	// LookupMember/CheckMethodCall/CheckAssignment/CheckPermOp/CheckBlock/
	// CheckLet/CheckIf as the item's own AST shape dictates, and returns
	// the body's typed root. Building one of these per function from its
	// AST belongs to whatever walks ast.Builder's function bodies (the
	// query engine's per-function query, §4.C) and is supplied here rather
	// than performed by this package, which only defines how to check a
	// single construct at a time.
	Items map[symbols.SymbolID]func(Env) *Expr
}

// Result stores the typed IR this pass produced, one root Expr per item in
// Options.Items, plus whatever diagnostics Options.Bag accumulated.
type Result struct {
	Bodies map[symbols.SymbolID]*Expr
}

// Check runs every item in opts.Items against a freshly scoped Env and
// drives the cooperative runtime (§4.D) to quiescence once per item, which
// resolves every deferred numeric-literal default and member-lookup
// suspension that item's body scheduled (§5: "a task suspended on variable
// v is marked ready... whenever the checker signals quiescence").
func Check(opts Options) Result {
	res := Result{Bodies: make(map[symbols.SymbolID]*Expr, len(opts.Items))}
	for sym, build := range opts.Items {
		scope := symbols.NoScopeID
		if s := opts.Table.Symbols.Get(sym); s != nil {
			scope = s.Scope
		}
		env := Env{
			Store:    opts.Store,
			Infer:    opts.Infer,
			Vars:     opts.Vars,
			Runtime:  opts.Runtime,
			Table:    opts.Table,
			Generics: opts.Generics,
			Decls:    opts.Decls,
			Bag:      opts.Bag,
			Scope:    scope,
			Bindings: make(map[ir.PlaceRoot]ir.TypeID),
		}
		res.Bodies[sym] = build(env)
		opts.Runtime.BlockUntilQuiescent()
	}
	return res
}
