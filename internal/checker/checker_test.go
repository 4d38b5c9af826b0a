package checker

import (
	"surge/internal/checkrt"
	"surge/internal/diag"
	"surge/internal/infer"
	"surge/internal/ir"
	"surge/internal/resolve"
	"surge/internal/source"
	"surge/internal/symbols"
)

func newTestEnv() Env {
	store := ir.NewStore()
	rt := checkrt.NewRuntime(checkrt.Config{})
	table := symbols.NewTable(symbols.Hints{}, nil)
	root := table.FileRoot(1, source.Span{})
	return Env{
		Store:    store,
		Infer:    infer.NewStore(rt.Wake, nil),
		Runtime:  rt,
		Table:    table,
		Generics: resolve.NewGenericScope(),
		Decls:    NewDeclarations(),
		Bag:      diag.NewBag(16),
		Scope:    root,
		Bindings: make(map[ir.PlaceRoot]ir.TypeID),
	}
}

func declareSymbol(t *symbols.Table, scope symbols.ScopeID, name string, kind symbols.SymbolKind) symbols.SymbolID {
	id := t.Strings.Intern(name)
	symID := t.Symbols.New(symbols.Symbol{Name: id, Kind: kind, Scope: scope})
	s := t.Scopes.Get(scope)
	s.Symbols = append(s.Symbols, symID)
	s.NameIndex[id] = append(s.NameIndex[id], symID)
	return symID
}

func someOrElse() diag.OrElse {
	return diag.Simple(source.Span{}, diag.SemaTypeMismatch, "test failure")
}
