package ir

import (
	"fmt"
)

// Subst is a kind-checked mapping from generic-variable-id to replacement
// generic term (§4.A). Substitution into a term replaces all free
// occurrences of variables present in the mapping and leaves everything
// else untouched; it traverses through TyPermApplied congruently (applying
// component-wise, per the §4.A invariant) and through generic-argument
// lists of named types.
type Subst struct {
	byVar map[VarID]GenericTerm
}

// NewSubst builds a Subst from a variable->term mapping.
func NewSubst(mapping map[VarID]GenericTerm) Subst {
	return Subst{byVar: mapping}
}

// BindAll zips a binder's originally-opened variable ids (and their
// declared kinds) against replacement terms, producing the Subst used to
// instantiate the binder's payload with a different set of arguments (e.g.
// re-binding a declaration's universally-opened parameters against a call
// site's inferred arguments).
func BindAll(vars []VarID, kinds []GenericParamKind, terms []GenericTerm) (Subst, error) {
	if len(vars) != len(terms) || len(vars) != len(kinds) {
		return Subst{}, fmt.Errorf("ir: binder arity mismatch: %d vars, %d kinds, %d terms", len(vars), len(kinds), len(terms))
	}
	m := make(map[VarID]GenericTerm, len(vars))
	for i := range vars {
		if terms[i].Kind() != kinds[i] {
			return Subst{}, &InternalError{Msg: fmt.Sprintf(
				"ir: kind mismatch binding parameter %d: declared %s, got %s",
				i, kinds[i], terms[i].Kind())}
		}
	}
	for i := range vars {
		m[vars[i]] = terms[i]
	}
	return Subst{byVar: m}, nil
}

// Bind records one variable -> term substitution, kind-checked.
func (s Subst) Bind(v VarID, kind GenericParamKind, term GenericTerm) (Subst, error) {
	if term.Kind() != kind {
		return s, &InternalError{Msg: fmt.Sprintf(
			"ir: kind mismatch substituting var: declared %s, got %s", kind, term.Kind())}
	}
	if s.byVar == nil {
		s.byVar = make(map[VarID]GenericTerm, 4)
	}
	s.byVar[v] = term
	return s, nil
}

func (s Subst) lookup(v VarID) (GenericTerm, bool) {
	if s.byVar == nil {
		return GenericTerm{}, false
	}
	t, ok := s.byVar[v]
	return t, ok
}

// SubstType applies subst to a Type, re-interning the result. Substitution
// is a congruence: substituting into `Perm ∘ Type` is substituting into
// each component and re-applying (§4.A).
func (s *Store) SubstType(id TypeID, sub Subst) (TypeID, error) {
	t, ok := s.LookupType(id)
	if !ok {
		return id, nil
	}
	switch t.Kind {
	case TyVar:
		term, found := sub.lookup(t.Var)
		if !found {
			return id, nil
		}
		if term.Tag != TagType {
			return id, &InternalError{Msg: fmt.Sprintf("ir: substituting type variable %d with non-type term", t.Var)}
		}
		return term.Type, nil
	case TyPermApplied:
		newPerm, err := s.SubstPerm(t.Perm, sub)
		if err != nil {
			return id, err
		}
		newInner, err := s.SubstType(t.Inner, sub)
		if err != nil {
			return id, err
		}
		if newPerm == t.Perm && newInner == t.Inner {
			return id, nil
		}
		return s.PermApplied(newPerm, newInner), nil
	case TyNamed:
		newArgs := make([]GenericTerm, len(t.Args))
		changed := false
		for i, a := range t.Args {
			na, err := s.substTerm(a, sub)
			if err != nil {
				return id, err
			}
			newArgs[i] = na
			if na != a {
				changed = true
			}
		}
		if !changed {
			return id, nil
		}
		cp := t
		cp.Args = newArgs
		return s.InternType(cp), nil
	default:
		// TyInfer, TyNever, TyError, TyInvalid carry no generic variables.
		return id, nil
	}
}

// SubstPerm applies subst to a Permission, re-interning the result.
func (s *Store) SubstPerm(id PermID, sub Subst) (PermID, error) {
	p, ok := s.LookupPerm(id)
	if !ok {
		return id, nil
	}
	switch p.Kind {
	case PermVar:
		term, found := sub.lookup(p.Var)
		if !found {
			return id, nil
		}
		if term.Tag != TagPerm {
			return id, &InternalError{Msg: fmt.Sprintf("ir: substituting permission variable %d with non-permission term", p.Var)}
		}
		return term.Perm, nil
	case PermApp:
		nl, err := s.SubstPerm(p.Left, sub)
		if err != nil {
			return id, err
		}
		nr, err := s.SubstPerm(p.Right, sub)
		if err != nil {
			return id, err
		}
		if nl == p.Left && nr == p.Right {
			return id, nil
		}
		return s.ApplyPerm(nl, nr), nil
	case PermReferenced, PermMutable:
		newPlaces := make([]PlaceID, len(p.Places))
		changed := false
		for i, pl := range p.Places {
			np, err := s.SubstPlace(pl, sub)
			if err != nil {
				return id, err
			}
			newPlaces[i] = np
			if np != pl {
				changed = true
			}
		}
		if !changed {
			return id, nil
		}
		cp := p
		cp.Places = newPlaces
		return s.InternPerm(cp), nil
	default:
		return id, nil
	}
}

// SubstPlace applies subst to a Place, re-interning the result. Place
// substitution is total: a generic place variable root substitutes exactly
// like a type or permission variable would, closing the open question in
// spec §9 (the original left this path an explicit `todo!`).
func (s *Store) SubstPlace(id PlaceID, sub Subst) (PlaceID, error) {
	p, ok := s.LookupPlace(id)
	if !ok {
		return id, nil
	}
	if p.Kind != PlaceConcrete {
		return id, nil
	}
	v, isVar := PlaceVarID(p.Root)
	if !isVar {
		return id, nil
	}
	term, found := sub.lookup(v)
	if !found {
		return id, nil
	}
	if term.Tag != TagPlace {
		return id, &InternalError{Msg: fmt.Sprintf("ir: substituting place variable %d with non-place term", v)}
	}
	if len(p.Fields) == 0 {
		return term.Place, nil
	}
	// Extend the substituted place with this place's remaining field chain
	// (e.g. substituting `self` into `self.x` when `self := other.y` yields
	// `other.y.x`), which is what makes place substitution total over
	// aggregate field types rather than only over bare variable references.
	base, ok := s.LookupPlace(term.Place)
	if !ok || base.Kind != PlaceConcrete {
		return id, &InternalError{Msg: "ir: place substitution target is not concrete"}
	}
	fields := make([]FieldID, 0, len(base.Fields)+len(p.Fields))
	fields = append(fields, base.Fields...)
	fields = append(fields, p.Fields...)
	return s.InternPlace(Place{Kind: PlaceConcrete, Root: base.Root, Fields: fields}), nil
}

func (s *Store) substTerm(t GenericTerm, sub Subst) (GenericTerm, error) {
	switch t.Tag {
	case TagType:
		id, err := s.SubstType(t.Type, sub)
		return TypeTerm(id), err
	case TagPerm:
		id, err := s.SubstPerm(t.Perm, sub)
		return PermTerm(id), err
	case TagPlace:
		id, err := s.SubstPlace(t.Place, sub)
		return PlaceTerm(id), err
	default:
		return t, nil
	}
}
