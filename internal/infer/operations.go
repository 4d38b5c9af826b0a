package infer

import (
	"slices"

	"surge/internal/diag"
	"surge/internal/ir"
	"surge/internal/red"
)

// RequirePredicate records that v must satisfy predicate p (§4.E). If ¬p is
// already recorded, it reports the contradiction using both OrElse sources
// via diag.Pair. Otherwise, if p was not already recorded, it records it
// and signals tasks parked on v.
func (s *Store) RequirePredicate(v ir.InferID, p Predicate, orElse diag.OrElse) (diag.Diagnostic, bool) {
	e := s.entry(v)
	if existing := e.isnt[p]; !existing.IsZero() {
		return diag.Pair(orElse, existing), false
	}
	if !e.is[p].IsZero() {
		return diag.Diagnostic{}, true // already recorded, no-op
	}
	e.is[p] = orElse
	s.signal(v)
	return diag.Diagnostic{}, true
}

// RequireNotPredicate is the symmetric counterpart of RequirePredicate.
func (s *Store) RequireNotPredicate(v ir.InferID, p Predicate, orElse diag.OrElse) (diag.Diagnostic, bool) {
	e := s.entry(v)
	if existing := e.is[p]; !existing.IsZero() {
		return diag.Pair(orElse, existing), false
	}
	if !e.isnt[p].IsZero() {
		return diag.Diagnostic{}, true
	}
	e.isnt[p] = orElse
	s.signal(v)
	return diag.Diagnostic{}, true
}

// PredicateState reports what is currently known about v's relationship to
// p: (isKnown true/false, isRecorded). isRecorded is false when neither p
// nor ¬p has been required yet.
func (s *Store) PredicateState(v ir.InferID, p Predicate) (isP bool, recorded bool) {
	e := s.entry(v)
	if !e.is[p].IsZero() {
		return true, true
	}
	if !e.isnt[p].IsZero() {
		return false, true
	}
	return false, false
}

// AddLowerRedPerm appends rp to v's lower-bound list unless an equal (or
// subsuming, per §4.F) bound is already present, and signals. v must be a
// permission inference variable.
func (s *Store) AddLowerRedPerm(store *ir.Store, env red.Env, v ir.InferID, rp red.Perm, orElse diag.OrElse) {
	e := s.entry(v)
	if permBoundSubsumed(store, env, e.lowerPerms, rp) {
		return
	}
	e.lowerPerms = append(e.lowerPerms, boundedPerm{Perm: rp, OrElse: orElse})
	s.signal(v)
}

// AddUpperRedPerm is the symmetric counterpart of AddLowerRedPerm.
func (s *Store) AddUpperRedPerm(store *ir.Store, env red.Env, v ir.InferID, rp red.Perm, orElse diag.OrElse) {
	e := s.entry(v)
	if permBoundSubsumed(store, env, e.upperPerms, rp) {
		return
	}
	e.upperPerms = append(e.upperPerms, boundedPerm{Perm: rp, OrElse: orElse})
	s.signal(v)
}

// permBoundSubsumed reports whether rp is already implied by one of the
// existing bounds (structurally equal, after LUB simplification collapses
// them to the same chain set).
func permBoundSubsumed(store *ir.Store, env red.Env, existing []boundedPerm, rp red.Perm) bool {
	for _, b := range existing {
		lub := red.LubPerms(store, env, b.Perm, rp)
		if slices.EqualFunc(lub.Chains, b.Perm.Chains, func(x, y red.Chain) bool { return slices.Equal(x, y) }) {
			return true
		}
	}
	return false
}

// LowerPerms returns the recorded lower-bound permission chains for v, in
// the order they were added; the OrElse of each bound is not returned.
func (s *Store) LowerPerms(v ir.InferID) []red.Perm {
	e := s.entry(v)
	out := make([]red.Perm, len(e.lowerPerms))
	for i, b := range e.lowerPerms {
		out[i] = b.Perm
	}
	return out
}

// UpperPerms returns the recorded upper-bound permission chains for v.
func (s *Store) UpperPerms(v ir.InferID) []red.Perm {
	e := s.entry(v)
	out := make([]red.Perm, len(e.upperPerms))
	for i, b := range e.upperPerms {
		out[i] = b.Perm
	}
	return out
}

// AddLowerRedType appends a red-type lower bound for a type inference
// variable, analogous to AddLowerRedPerm (§4.E).
func (s *Store) AddLowerRedType(v ir.InferID, ty red.Ty, orElse diag.OrElse) {
	e := s.entry(v)
	for _, b := range e.lowerTypes {
		if sameRedTyShape(b.Ty, ty) {
			return
		}
	}
	e.lowerTypes = append(e.lowerTypes, boundedType{Ty: ty, OrElse: orElse})
	s.signal(v)
}

// AddUpperRedType is the symmetric counterpart of AddLowerRedType.
func (s *Store) AddUpperRedType(v ir.InferID, ty red.Ty, orElse diag.OrElse) {
	e := s.entry(v)
	for _, b := range e.upperTypes {
		if sameRedTyShape(b.Ty, ty) {
			return
		}
	}
	e.upperTypes = append(e.upperTypes, boundedType{Ty: ty, OrElse: orElse})
	s.signal(v)
}

func (s *Store) LowerTypes(v ir.InferID) []red.Ty {
	e := s.entry(v)
	out := make([]red.Ty, len(e.lowerTypes))
	for i, b := range e.lowerTypes {
		out[i] = b.Ty
	}
	return out
}

func (s *Store) UpperTypes(v ir.InferID) []red.Ty {
	e := s.entry(v)
	out := make([]red.Ty, len(e.upperTypes))
	for i, b := range e.upperTypes {
		out[i] = b.Ty
	}
	return out
}

func sameRedTyShape(a, b red.Ty) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case red.TyNamed:
		return a.Name == b.Name
	case red.TyVar:
		return a.Var == b.Var
	case red.TyInfer:
		return a.Infer == b.Infer
	default:
		return true
	}
}
