// Package predicate implements component G: the copy/move/owned/lent
// predicate solver (§4.G). Predicates are properties of permissions;
// because every type carries its permission as the head of a `Perm ∘ T`
// application, checking a predicate on a type reduces to checking it on
// that permission.
package predicate

import (
	"surge/internal/diag"
	"surge/internal/infer"
	"surge/internal/ir"
)

// Predicate re-exports infer.Predicate so callers outside infer don't need
// to import it just to name a predicate.
type Predicate = infer.Predicate

const (
	Copy  = infer.PredicateCopy
	Move  = infer.PredicateMove
	Owned = infer.PredicateOwned
	Lent  = infer.PredicateLent
)

// Result is the three-valued (Kleene) outcome of a predicate query: Yes
// and No are definite, Unknown means the answer depends on an inference
// variable that hasn't been pinned down yet (§4.G: `term_is_provably`
// "may suspend on inference variables" — internal/checkrt re-drives a
// task parked on Unknown by calling back in once the variable is
// signaled, rather than this package blocking itself).
type Result uint8

const (
	Unknown Result = iota
	Yes
	No
)

func kleeneAnd(a, b Result) Result {
	if a == No || b == No {
		return No
	}
	if a == Yes && b == Yes {
		return Yes
	}
	return Unknown
}

func kleeneOr(a, b Result) Result {
	if a == Yes || b == Yes {
		return Yes
	}
	if a == No && b == No {
		return No
	}
	return Unknown
}

// VarContracts answers the declared copy/move contract for a generic
// permission variable (some generics are declared `copy`, some `move`,
// most are left unconstrained). Owned by the checker's symbol layer, not
// this package.
type VarContracts interface {
	VarPredicate(v ir.VarID, p Predicate) Result
}

// TermIsProvably decides whether permission term satisfies predicate p
// given current knowledge, per the combinator rules in §4.G. It never
// mutates infer state; it only reads recorded predicate facts for
// inference variables.
func TermIsProvably(store *ir.Store, infr *infer.Store, vars VarContracts, term ir.PermID, p Predicate) Result {
	perm, ok := store.LookupPerm(term)
	if !ok {
		return Unknown
	}
	switch perm.Kind {
	case ir.PermMy:
		return baseResult(p, false, true, true, false) // move, owned; not copy, not lent
	case ir.PermOur:
		return baseResult(p, true, true, false, false) // copy, owned
	case ir.PermReferenced:
		return baseResult(p, true, false, false, true) // copy, lent
	case ir.PermMutable:
		return baseResult(p, false, false, true, true) // move, lent
	case ir.PermVar:
		if vars == nil {
			return Unknown
		}
		return vars.VarPredicate(perm.Var, p)
	case ir.PermInfer:
		isP, recorded := infr.PredicateState(perm.Infer, p)
		if !recorded {
			return Unknown
		}
		if isP {
			return Yes
		}
		return No
	case ir.PermApp:
		return appResult(store, infr, vars, perm.Left, perm.Right, p)
	default:
		return Unknown
	}
}

// baseResult packs the four fixed predicate answers for a non-variable,
// non-application permission kind into the requested predicate's Result.
func baseResult(p Predicate, copyOK, ownedOK, moveOK, lentOK bool) Result {
	b := func(v bool) Result {
		if v {
			return Yes
		}
		return No
	}
	switch p {
	case Copy:
		return b(copyOK)
	case Move:
		return b(moveOK)
	case Owned:
		return b(ownedOK)
	case Lent:
		return b(lentOK)
	default:
		return Unknown
	}
}

// appResult implements the four combinator formulas for `LHS ∘ RHS`
// (§4.G). Each formula is applied literally, including its eagerness:
// e.g. `copy` returns Yes as soon as LHS is copy and RHS is merely "not
// known non-copy" (Unknown counts), rather than waiting for RHS to fully
// resolve — a speculative requirement recorded on this basis that later
// turns out wrong is caught when the real value of RHS is required
// non-copy and collides with the earlier requirement (§4.E's
// contradiction path), not by this function refusing to answer.
func appResult(store *ir.Store, infr *infer.Store, vars VarContracts, left, right ir.PermID, p Predicate) Result {
	l := func(q Predicate) Result { return TermIsProvably(store, infr, vars, left, q) }
	r := func(q Predicate) Result { return TermIsProvably(store, infr, vars, right, q) }

	switch p {
	case Copy:
		rhsCopy := r(Copy)
		if rhsCopy == Yes {
			return Yes
		}
		if rhsCopy == No {
			return No
		}
		if l(Copy) == Yes {
			return Yes
		}
		return Unknown
	case Move:
		return kleeneAnd(l(Move), r(Move))
	case Owned:
		return kleeneAnd(r(Owned), kleeneOr(l(Owned), r(Copy)))
	case Lent:
		switch r(Copy) {
		case Yes:
			return r(Lent)
		case No:
			return kleeneOr(l(Lent), r(Lent))
		default:
			return Unknown
		}
	default:
		return Unknown
	}
}

// RequireTermIs enforces that term satisfies p (§4.G's `require_term_is`).
// If term is (or bottoms out at) an inference variable whose current
// state already contradicts p, it returns the contradiction diagnostic.
// When the answer is still Unknown, the requirement is pushed down onto
// the governing inference variable so that the requirement fires as soon
// as that variable is pinned down; if no such variable can be identified
// (a degenerate permission shape), it is carried as a no-op — the
// contradiction, if any, will still be caught when the shape becomes
// concrete enough to decide.
func RequireTermIs(store *ir.Store, infr *infer.Store, vars VarContracts, term ir.PermID, p Predicate, orElse diag.OrElse) (diag.Diagnostic, bool) {
	switch TermIsProvably(store, infr, vars, term, p) {
	case Yes:
		return diag.Diagnostic{}, true
	case No:
		return orElse.Diagnostic(), false
	default:
		if v, ok := governingInfer(store, term); ok {
			return infr.RequirePredicate(v, p, orElse)
		}
		return diag.Diagnostic{}, true
	}
}

// RequireTermIsnt is the symmetric counterpart of RequireTermIs.
func RequireTermIsnt(store *ir.Store, infr *infer.Store, vars VarContracts, term ir.PermID, p Predicate, orElse diag.OrElse) (diag.Diagnostic, bool) {
	switch TermIsProvably(store, infr, vars, term, p) {
	case No:
		return diag.Diagnostic{}, true
	case Yes:
		return orElse.Diagnostic(), false
	default:
		if v, ok := governingInfer(store, term); ok {
			return infr.RequireNotPredicate(v, p, orElse)
		}
		return diag.Diagnostic{}, true
	}
}

// governingInfer walks the rightmost spine of a permission application to
// find the inference variable whose resolution would decide an otherwise
// Unknown predicate query — the same variable TermIsProvably's `copy`
// formula ultimately suspends on.
func governingInfer(store *ir.Store, term ir.PermID) (ir.InferID, bool) {
	for {
		p, ok := store.LookupPerm(term)
		if !ok {
			return 0, false
		}
		switch p.Kind {
		case ir.PermInfer:
			return p.Infer, true
		case ir.PermApp:
			term = p.Right
			continue
		default:
			return 0, false
		}
	}
}
