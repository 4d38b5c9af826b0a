// Package subtype implements component H: the subtyping solver
// (§4.H). RequireAssignableType is the single entry point the checker
// (component I) calls at every assignment, call-argument, and return site.
package subtype

import (
	"surge/internal/diag"
	"surge/internal/infer"
	"surge/internal/ir"
	"surge/internal/predicate"
	"surge/internal/red"
)

// Env bundles everything the solver needs to read or extend while relating
// two types: the interning store, the inference-variable store (bound
// recording target for every RelDeferred/TyInfer case), and the variable
// contract table predicate.TermIsProvably consults for declared-copy
// generics. Env itself does not implement red.Env; reduction is driven off
// its Infer field, which does.
type Env struct {
	Store *ir.Store
	Infer *infer.Store
	Vars  predicate.VarContracts
}

// RequireAssignableType is `require_assignable_type` (§4.H): valueTy must be
// assignable to a place of type placeTy, or orElse explains why not. It
// proceeds in three steps: bound propagation, reduce-and-relate on the type
// shape, and pairwise chain relation on the permission. It does not check
// universe escape; that is RequireUniverseEscapeFree, a separate function.
func RequireAssignableType(env Env, valueTy, placeTy ir.TypeID, orElse diag.OrElse) (diag.Diagnostic, bool) {
	if isNeverType(env.Store, valueTy) {
		return diag.Diagnostic{}, true // §4.H: the never type is a subtype of everything.
	}

	if d, ok := propagateBounds(env, valueTy, placeTy, orElse); !ok {
		return d, false
	}

	lower := red.ReduceType(env.Store, env.Infer, valueTy)
	upper := red.ReduceType(env.Store, env.Infer, placeTy)

	if d, ok := relateTy(env, lower.Ty, upper.Ty, orElse); !ok {
		return d, false
	}
	if d, ok := relatePerm(env, lower.Perm, upper.Perm, orElse); !ok {
		return d, false
	}
	return diag.Diagnostic{}, true
}

func isNeverType(store *ir.Store, id ir.TypeID) bool {
	t, ok := store.LookupType(id)
	return ok && t.Kind == ir.TyNever
}

// typePerm returns the permission id a type carries. A type that isn't
// wrapped in a TyPermApplied node is implicitly `my` — ir.Store.PermApplied
// already collapses `Perm ∘ T` back to bare T when Perm is `my` (§3's
// identity-application invariant), so "no wrapper" and "my" are the same
// fact observed two different ways.
func typePerm(store *ir.Store, id ir.TypeID) ir.PermID {
	t, ok := store.LookupType(id)
	if ok && t.Kind == ir.TyPermApplied {
		return t.Perm
	}
	return store.My()
}

// propagateBounds implements §4.H step 1: before relating shapes, push the
// predicates each side's permission is already known to require onto the
// other side, so a later-discovered contradiction is caught at the
// governing inference variable rather than only at the final chain check.
func propagateBounds(env Env, valueTy, placeTy ir.TypeID, orElse diag.OrElse) (diag.Diagnostic, bool) {
	lowerPerm := typePerm(env.Store, valueTy)
	upperPerm := typePerm(env.Store, placeTy)

	if predicate.TermIsProvably(env.Store, env.Infer, env.Vars, lowerPerm, predicate.Copy) == predicate.Yes {
		if d, ok := predicate.RequireTermIs(env.Store, env.Infer, env.Vars, upperPerm, predicate.Copy, orElse); !ok {
			return d, false
		}
	}
	if predicate.TermIsProvably(env.Store, env.Infer, env.Vars, lowerPerm, predicate.Lent) == predicate.Yes {
		if d, ok := predicate.RequireTermIs(env.Store, env.Infer, env.Vars, upperPerm, predicate.Lent, orElse); !ok {
			return d, false
		}
	}
	if predicate.TermIsProvably(env.Store, env.Infer, env.Vars, upperPerm, predicate.Move) == predicate.Yes {
		if d, ok := predicate.RequireTermIs(env.Store, env.Infer, env.Vars, lowerPerm, predicate.Move, orElse); !ok {
			return d, false
		}
	}
	if predicate.TermIsProvably(env.Store, env.Infer, env.Vars, upperPerm, predicate.Owned) == predicate.Yes {
		if d, ok := predicate.RequireTermIs(env.Store, env.Infer, env.Vars, lowerPerm, predicate.Owned, orElse); !ok {
			return d, false
		}
	}
	return diag.Diagnostic{}, true
}

// relateTy implements §4.H step 2: relate two reduced type shapes.
func relateTy(env Env, lower, upper red.Ty, orElse diag.OrElse) (diag.Diagnostic, bool) {
	if lower.Kind == red.TyNever {
		return diag.Diagnostic{}, true
	}
	if lower.Kind == red.TyInfer {
		env.Infer.AddUpperRedType(lower.Infer, upper, orElse)
		return diag.Diagnostic{}, true
	}
	if upper.Kind == red.TyInfer {
		env.Infer.AddLowerRedType(upper.Infer, lower, orElse)
		return diag.Diagnostic{}, true
	}
	if lower.Kind != upper.Kind {
		return orElse.Diagnostic(), false
	}
	switch lower.Kind {
	case red.TyVar:
		if lower.Var != upper.Var {
			return orElse.Diagnostic(), false
		}
		return diag.Diagnostic{}, true
	case red.TyNamed:
		return relateNamed(env, lower, upper, orElse)
	default:
		return orElse.Diagnostic(), false
	}
}

// relateNamed relates two named-type shapes congruently: same head name and
// arity are required, then each generic argument is related per its tag —
// type arguments covariantly (recursive RequireAssignableType), permission
// and place arguments invariantly (§9's variance simplification, recorded
// in DESIGN.md).
func relateNamed(env Env, lower, upper red.Ty, orElse diag.OrElse) (diag.Diagnostic, bool) {
	if lower.Name != upper.Name || len(lower.Args) != len(upper.Args) {
		return orElse.Diagnostic(), false
	}
	for i := range lower.Args {
		la, ua := lower.Args[i], upper.Args[i]
		if la.Tag != ua.Tag {
			return orElse.Diagnostic(), false
		}
		switch la.Tag {
		case ir.TagType:
			if d, ok := RequireAssignableType(env, la.Type, ua.Type, orElse); !ok {
				return d, false
			}
		case ir.TagPerm:
			if !permsInvariantlyEqual(env, la.Perm, ua.Perm, orElse) {
				return orElse.Diagnostic(), false
			}
		case ir.TagPlace:
			if la.Place != ua.Place {
				return orElse.Diagnostic(), false
			}
		}
	}
	return diag.Diagnostic{}, true
}

// permsInvariantlyEqual requires two permission generic arguments to relate
// both ways under <: (an invariant position accepts nothing else).
func permsInvariantlyEqual(env Env, a, b ir.PermID, orElse diag.OrElse) bool {
	ra := red.ReducePerm(env.Store, env.Infer, a)
	rb := red.ReducePerm(env.Store, env.Infer, b)
	_, fwdOK := relatePerm(env, ra, rb, orElse)
	_, backOK := relatePerm(env, rb, ra, orElse)
	return fwdOK && backOK
}

// relatePerm implements §4.H step 3: every chain in the lower vecset must
// find at least one upper chain it relates to under <: (the lower side
// represents alternative real provenances that must each be acceptable;
// the upper side represents alternative acceptable shapes, so only one
// needs to match). A RelDeferred outcome records the bound it names on the
// inference variable it names rather than deciding the chain pair, and
// still counts as a match for this lower chain.
func relatePerm(env Env, lower, upper red.Perm, orElse diag.OrElse) (diag.Diagnostic, bool) {
	for _, lc := range lower.Chains {
		matched := false
		for _, uc := range upper.Chains {
			rel, deferred := red.ChainSub(env.Store, env.Infer, lc, uc)
			switch rel {
			case red.RelHolds:
				matched = true
			case red.RelDeferred:
				recordDeferred(env, deferred, orElse)
				matched = true
			case red.RelFails:
				// keep looking at other upper chains
			}
			if matched {
				break
			}
		}
		if !matched {
			return orElse.Diagnostic(), false
		}
	}
	return diag.Diagnostic{}, true
}

func recordDeferred(env Env, d red.Deferred, orElse diag.OrElse) {
	bound := red.Perm{Chains: []red.Chain{d.Bound}}
	if d.IsUpperBound {
		env.Infer.AddUpperRedPerm(env.Store, env.Infer, d.Infer, bound, orElse)
	} else {
		env.Infer.AddLowerRedPerm(env.Store, env.Infer, d.Infer, bound, orElse)
	}
}

// RequireUniverseEscapeFree implements the resolution-time escape check
// (§9): a universal variable must not appear in the resolved shape of an
// inference variable minted in a shallower universe than the one that
// variable belongs to. varUniverse is typically ir.RootUniverse for a
// fully top-level item.
func RequireUniverseEscapeFree(env Env, v ir.InferID, varUniverse ir.Universe, orElse diag.OrElse) (diag.Diagnostic, bool) {
	if varUniverse > env.Infer.Universe(v) {
		return orElse.Diagnostic(), false
	}
	return diag.Diagnostic{}, true
}
