// Package resolve implements component B: a thin external-interface adapter
// over internal/symbols' scope/symbol tables. It does not itself maintain
// scopes or declare symbols — internal/symbols already does both — it only
// answers the two questions the checking core needs of its host: what kind
// of name is this, and is this generic variable in scope.
package resolve

import (
	"surge/internal/diag"
	"surge/internal/ir"
	"surge/internal/source"
	"surge/internal/symbols"
)

// Kind classifies a resolved name the way §4.B requires: Module, Class,
// Function, Variable, or Primitive. It deliberately does not distinguish
// symbols.SymbolKind's finer categories (let vs const vs param all collapse
// to Variable; tag and contract are out of this checker's scope).
type Kind uint8

const (
	KindInvalid Kind = iota
	KindModule
	KindClass
	KindFunction
	KindVariable
	KindPrimitive
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindVariable:
		return "variable"
	case KindPrimitive:
		return "primitive"
	default:
		return "invalid"
	}
}

// NameResolution is the successful outcome of resolve(identifier, scope):
// a classification plus the underlying symbol table handle, so callers that
// need more than the classification (a function's signature, say) can go
// back to the table themselves rather than this package re-exporting it.
type NameResolution struct {
	Kind   Kind
	Symbol symbols.SymbolID
}

// Resolve walks the scope chain starting at scope looking for name, the
// same innermost-shadows-outermost order symbols.Resolver.LookupOne uses —
// but taking scope as an explicit argument instead of a resolver's internal
// stack, since §4.B's contract is resolve(identifier, scope), a pure
// function of both. On failure it reports SemaUnresolvedSymbol through
// orElse and returns (NameResolution{}, false): the Reported half of
// NameResolution | Reported.
func Resolve(table *symbols.Table, scope symbols.ScopeID, name source.StringID, orElse diag.OrElse, bag *diag.Bag) (NameResolution, bool) {
	id, ok := lookup(table, scope, name, symbols.KindMaskAny)
	if !ok {
		orElse.Report(bag)
		return NameResolution{}, false
	}
	sym := table.Symbols.Get(id)
	if sym == nil {
		orElse.Report(bag)
		return NameResolution{}, false
	}
	return NameResolution{Kind: classify(sym), Symbol: id}, true
}

// ResolveKind is Resolve restricted to symbol kinds matching mask, mirroring
// symbols.Resolver.LookupOne's kind-masked variant (used by callers that
// know in advance, say, that a name in this position must be a type).
func ResolveKind(table *symbols.Table, scope symbols.ScopeID, name source.StringID, mask symbols.KindMask, orElse diag.OrElse, bag *diag.Bag) (NameResolution, bool) {
	id, ok := lookup(table, scope, name, mask)
	if !ok {
		orElse.Report(bag)
		return NameResolution{}, false
	}
	sym := table.Symbols.Get(id)
	if sym == nil {
		orElse.Report(bag)
		return NameResolution{}, false
	}
	return NameResolution{Kind: classify(sym), Symbol: id}, true
}

// lookup duplicates the walk in symbols.Resolver.LookupOne against an
// explicit starting scope rather than a resolver's current-scope stack.
func lookup(table *symbols.Table, scope symbols.ScopeID, name source.StringID, mask symbols.KindMask) (symbols.SymbolID, bool) {
	if mask == symbols.KindMaskNone {
		return symbols.NoSymbolID, false
	}
	for scope.IsValid() {
		s := table.Scopes.Get(scope)
		if s == nil {
			break
		}
		if ids := s.NameIndex[name]; len(ids) > 0 {
			for i := len(ids) - 1; i >= 0; i-- {
				sym := table.Symbols.Get(ids[i])
				if sym == nil {
					continue
				}
				if mask == symbols.KindMaskAny || mask&sym.Kind.Mask() != 0 {
					return ids[i], true
				}
			}
		}
		scope = s.Parent
	}
	return symbols.NoSymbolID, false
}

// classify maps a resolved symbol onto the coarse NameResolution vocabulary.
// A SymbolType carrying SymbolFlagBuiltin is one of the prelude's primitive
// types (int/uint/bool/float/string/nothing, see symbols.builtinPreludeEntries);
// every other SymbolType is a user-defined Class.
func classify(sym *symbols.Symbol) Kind {
	switch sym.Kind {
	case symbols.SymbolModule:
		return KindModule
	case symbols.SymbolFunction:
		return KindFunction
	case symbols.SymbolType:
		if sym.Flags&symbols.SymbolFlagBuiltin != 0 {
			return KindPrimitive
		}
		return KindClass
	case symbols.SymbolLet, symbols.SymbolConst, symbols.SymbolParam:
		return KindVariable
	default:
		return KindInvalid
	}
}

// GenericScope tracks which generic variables (ir.VarID, from a type's or
// function's OpenUniversal) are visible at each symbols.ScopeID, since
// symbols.Table has no notion of internal/ir's interned variables — that
// binding is this package's job to maintain, populated by whatever opens the
// universal (the checker, building a class or function's signature).
type GenericScope struct {
	vars map[symbols.ScopeID][]ir.VarID
}

// NewGenericScope constructs an empty generic-variable-visibility map.
func NewGenericScope() *GenericScope {
	return &GenericScope{vars: make(map[symbols.ScopeID][]ir.VarID)}
}

// Declare records that vars are visible to anything resolved starting at or
// inside scope — called once per class/function when its generic parameter
// list is opened into fresh ir.GenericTerm vars.
func (g *GenericScope) Declare(scope symbols.ScopeID, vars []ir.VarID) {
	if len(vars) == 0 {
		return
	}
	g.vars[scope] = append(g.vars[scope], vars...)
}

// GenericSymInScope reports whether v was declared at scope or at any
// ancestor of it, per §4.B's generic_sym_in_scope(var) -> bool.
func (g *GenericScope) GenericSymInScope(table *symbols.Table, scope symbols.ScopeID, v ir.VarID) bool {
	for scope.IsValid() {
		for _, cand := range g.vars[scope] {
			if cand == v {
				return true
			}
		}
		s := table.Scopes.Get(scope)
		if s == nil {
			return false
		}
		scope = s.Parent
	}
	return false
}
