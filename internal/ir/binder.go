package ir

// Binder introduces a list of generic variables in front of some payload
// (a function signature, a class's field types, ...). Symbolic items carry
// nested binders (§3).
type Binder struct {
	Params []GenericParam
}

// NewBinder constructs a binder over the given parameter list, in
// declaration order.
func NewBinder(params []GenericParam) Binder { return Binder{Params: params} }

// VarFactory mints fresh VarIDs. The checker owns the actual counter (it
// needs to be threaded through one compiler revision); ir only needs the
// ability to ask for a fresh id so that opening never reuses an identity,
// which is what makes substitution capture-free without explicit
// de-Bruijn renumbering (see ids.go's VarID doc).
type VarFactory interface {
	FreshVar() VarID
}

// UniverseFactory mints fresh, strictly-increasing universes for universal
// (skolem) opening.
type UniverseFactory interface {
	FreshUniverse() Universe
}

// OpenUniversal opens the binder by introducing one fresh universal VarID
// per parameter, all placed in a single freshly minted universe, and interns
// a GenericTerm referencing each one. Returns the substitution mapping from
// declared parameter position to the fresh variable's term, plus the
// universe they were introduced in.
func (b Binder) OpenUniversal(store *Store, vars VarFactory, universes UniverseFactory) ([]GenericTerm, Universe) {
	u := universes.FreshUniverse()
	terms := make([]GenericTerm, len(b.Params))
	for i, p := range b.Params {
		v := vars.FreshVar()
		terms[i] = store.varTerm(p.Kind, v)
	}
	return terms, u
}

// InferFactory mints fresh inference-variable ids of a requested kind; it is
// satisfied by internal/infer.Store. ir only needs the minting capability,
// not the bookkeeping, to keep the dependency one-directional (infer
// depends on ir, not the other way around).
type InferFactory interface {
	FreshInfer(kind GenericParamKind) InferID
}

// OpenExistential opens the binder by substituting each parameter with a
// fresh inference variable of the matching kind (existential opening, §3).
func (b Binder) OpenExistential(store *Store, infers InferFactory) []GenericTerm {
	terms := make([]GenericTerm, len(b.Params))
	for i, p := range b.Params {
		iv := infers.FreshInfer(p.Kind)
		terms[i] = store.inferTerm(p.Kind, iv)
	}
	return terms
}

// varTerm interns a reference to generic variable v of the given kind and
// wraps it as a GenericTerm.
func (s *Store) varTerm(kind GenericParamKind, v VarID) GenericTerm {
	switch kind {
	case ParamKindPerm:
		return PermTerm(s.InternPerm(Permission{Kind: PermVar, Var: v}))
	case ParamKindPlace:
		// Places don't intern a "var" shape distinct from concrete places in
		// this encoding; a place generic variable is represented as an
		// inference-free concrete place whose Root carries the variable's
		// identity space (disjoint from ordinary PlaceRoots by convention:
		// the checker's root allocator reserves the high bit for generic
		// place variables).
		return PlaceTerm(s.InternPlace(Place{Kind: PlaceConcrete, Root: PlaceRoot(v) | placeVarBit}))
	default:
		return TypeTerm(s.InternType(Type{Kind: TyVar, Var: v}))
	}
}

// inferTerm interns a reference to inference variable iv of the given kind
// and wraps it as a GenericTerm.
func (s *Store) inferTerm(kind GenericParamKind, iv InferID) GenericTerm {
	switch kind {
	case ParamKindPerm:
		return PermTerm(s.InternPerm(Permission{Kind: PermInfer, Infer: iv}))
	case ParamKindPlace:
		return PlaceTerm(s.InternPlace(Place{Kind: PlaceInfer, Infer: iv}))
	default:
		return TypeTerm(s.InternType(Type{Kind: TyInfer, Infer: iv}))
	}
}

// placeVarBit tags a PlaceRoot as naming a generic place variable rather
// than a concrete program-variable root.
const placeVarBit PlaceRoot = 1 << 31

// PlaceVarID extracts the generic variable identity from a place-root that
// was tagged by varTerm, if any.
func PlaceVarID(root PlaceRoot) (VarID, bool) {
	if root&placeVarBit == 0 {
		return 0, false
	}
	return VarID(root &^ placeVarBit), true
}
