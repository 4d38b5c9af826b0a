package checker

import (
	"surge/internal/diag"
	"surge/internal/ir"
	"surge/internal/source"
)

// CheckPermOp is §4.I's Permission-op case: `e.share`, `e.lease`, `e.give`
// each translate to the corresponding permission constructor applied over
// operand's place, grounded on chains.rs's Lien::Shared/Lien::Leased
// construction (the "apply a lien to the chain" step of lien-chain
// building, specialized here to a single explicit operator rather than
// chains.rs's general lower-bound-chain walk, since an explicit `.share`/
// `.lease`/`.give` names its own place already instead of needing one
// discovered from an inference variable's bounds).
//
// `.give` has no place-taking permission constructor of its own in §3's
// term grammar (`my` takes no places) — it names a move of operand's own
// permission as written, so it is the identity translation. See
// DESIGN.md's Component I entry for this simplification relative to
// chains.rs's fuller move/pending-lien bookkeeping (which this checker
// does not model, having no separate borrow-checking pass).
func CheckPermOp(env Env, op PermOpKind, operand *Expr, span source.Span) *Expr {
	if op == PermOpGive {
		return &Expr{kind: ExprPermOp, Type: operand.Type, Op: op, Operand: operand, Span: span}
	}

	place, ok := exprPlace(env, operand)
	if !ok {
		env.Bag.Add(&diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.SemaTypeMismatch,
			Primary:  span,
			Message:  "this expression does not name a place a permission operator can apply to",
		})
		return &Expr{kind: ExprPermOp, Type: env.Store.InternTypeNever(), Op: op, Operand: operand, Span: span}
	}

	core := operand.Type
	if t, ok := env.Store.LookupType(operand.Type); ok && t.Kind == ir.TyPermApplied {
		core = t.Inner
	}

	var perm ir.PermID
	switch op {
	case PermOpShare:
		perm = env.Store.Referenced([]ir.PlaceID{place})
	case PermOpLease:
		perm = env.Store.Mutable([]ir.PlaceID{place})
	default:
		perm = env.Store.My()
	}

	ty := env.Store.PermApplied(perm, core)
	return &Expr{kind: ExprPermOp, Type: ty, Op: op, Operand: operand, Span: span}
}

// exprPlace recovers the ir.Place an already-checked expression names, for
// the permission operators. Only the place-shaped constructs (a bare variable, or a
// chain of field accesses rooted at one) name a place; everything else
// (a literal, a method call's result, ...) is a value with no place of its
// own, so callers that need one must report an error instead.
func exprPlace(env Env, e *Expr) (ir.PlaceID, bool) {
	switch e.Kind() {
	case ExprVariable:
		return env.Store.InternPlace(ir.Place{Kind: ir.PlaceConcrete, Root: e.Root}), true
	case ExprField:
		base, ok := exprPlace(env, e.Owner)
		if !ok {
			return ir.NoPlaceID, false
		}
		basePlace, ok := env.Store.LookupPlace(base)
		if !ok || basePlace.Kind != ir.PlaceConcrete {
			return ir.NoPlaceID, false
		}
		fields := append(append([]ir.FieldID{}, basePlace.Fields...), ir.FieldID(e.Member))
		return env.Store.InternPlace(ir.Place{Kind: ir.PlaceConcrete, Root: basePlace.Root, Fields: fields}), true
	default:
		return ir.NoPlaceID, false
	}
}
