package checker

import (
	"surge/internal/checkrt"
	"surge/internal/diag"
	"surge/internal/infer"
	"surge/internal/ir"
	"surge/internal/predicate"
	"surge/internal/resolve"
	"surge/internal/subtype"
	"surge/internal/symbols"
)

// Env bundles every dependency component I's expression-checking functions
// read or extend: the interned store and inference state shared with
// components E–H, the cooperative runtime suspension points route through
// (§4.D), name resolution over the item's symbol table (§4.B), the checked
// declaration registry (this package's own), and the local variable
// bindings introduced by parameters and let-bindings as checking descends
// into a function body.
//
// One Env is built per item being checked; its Bindings/Scope move as
// checking enters and leaves blocks, everything else is shared for the
// whole compilation.
type Env struct {
	Store    *ir.Store
	Infer    *infer.Store
	Vars     predicate.VarContracts
	Runtime  *checkrt.Runtime
	Table    *symbols.Table
	Generics *resolve.GenericScope
	Decls    *Declarations
	Bag      *diag.Bag

	Scope    symbols.ScopeID
	Bindings map[ir.PlaceRoot]ir.TypeID
}

// subtypeEnv narrows Env down to what internal/subtype needs, so every call
// site in this package goes through RequireAssignable instead of
// constructing a subtype.Env by hand.
func (e Env) subtypeEnv() subtype.Env {
	return subtype.Env{Store: e.Store, Infer: e.Infer, Vars: e.Vars}
}

// RequireAssignable is §4.H's require_assignable_type, exposed the way the
// expression checker calls it: at assignment, call-argument, and return
// sites (§4.I).
func (e Env) RequireAssignable(valueTy, placeTy ir.TypeID, orElse diag.OrElse) (diag.Diagnostic, bool) {
	return subtype.RequireAssignableType(e.subtypeEnv(), valueTy, placeTy, orElse)
}

// WithBinding returns a copy of e with name bound to ty in its local
// environment, used when entering a block that introduces a new program
// variable (a let-binding or a function parameter) without mutating the
// caller's Env — siblings in a block (e.g. two arms of an if) must not see
// each other's local bindings.
func (e Env) WithBinding(root ir.PlaceRoot, ty ir.TypeID) Env {
	next := make(map[ir.PlaceRoot]ir.TypeID, len(e.Bindings)+1)
	for k, v := range e.Bindings {
		next[k] = v
	}
	next[root] = ty
	e.Bindings = next
	return e
}

// WithScope returns a copy of e positioned at a (presumably child) scope,
// for entering a block's own symbols.ScopeID.
func (e Env) WithScope(scope symbols.ScopeID) Env {
	e.Scope = scope
	return e
}
