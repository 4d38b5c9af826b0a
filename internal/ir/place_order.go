package ir

// placeFields returns the root and field chain of a concrete place; ok is
// false when id is unknown or does not name a concrete place.
func (s *Store) placeFields(id PlaceID) (PlaceRoot, []FieldID, bool) {
	p, ok := s.LookupPlace(id)
	if !ok || p.Kind != PlaceConcrete {
		return 0, nil, false
	}
	return p.Root, p.Fields, true
}

// PlaceIsPrefixOf reports whether place a is a prefix of (an ancestor of,
// or equal to) place b — same root variable, and a's field chain is a
// prefix of b's.
func (s *Store) PlaceIsPrefixOf(a, b PlaceID) bool {
	ra, fa, oka := s.placeFields(a)
	rb, fb, okb := s.placeFields(b)
	if !oka || !okb || ra != rb {
		return false
	}
	if len(fa) > len(fb) {
		return false
	}
	for i := range fa {
		if fa[i] != fb[i] {
			return false
		}
	}
	return true
}

// PlaceGLB computes the greatest lower bound of two places (§4.F): if one
// is a prefix of the other, the deeper (more specific) one is the GLB;
// otherwise no GLB exists.
func (s *Store) PlaceGLB(a, b PlaceID) (PlaceID, bool) {
	if a == b {
		return a, true
	}
	if s.PlaceIsPrefixOf(a, b) {
		return b, true
	}
	if s.PlaceIsPrefixOf(b, a) {
		return a, true
	}
	return 0, false
}
