// Package ir implements the hash-consed representation of symbolic types,
// permissions, places and generic terms (component A of the checker design)
// plus the substitution machinery that operates over them.
package ir

import "surge/internal/source"

// TypeID identifies an interned Type.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// PermID identifies an interned Permission.
type PermID uint32

// NoPermID marks the absence of a permission.
const NoPermID PermID = 0

// PlaceID identifies an interned Place.
type PlaceID uint32

// NoPlaceID marks the absence of a place.
const NoPlaceID PlaceID = 0

// VarID identifies a generic variable bound by some Binder. Variables are
// minted fresh per binder-opening (see binder.go), which sidesteps classic
// de Bruijn renumbering: because no two live bindings ever share a VarID,
// substitution can never capture.
type VarID uint32

// NoVarID marks the absence of a generic variable reference.
const NoVarID VarID = 0

// InferID identifies an inference variable (kind + bounds tracked by
// internal/infer; ir only needs the identity to embed references to it
// inside interned terms).
type InferID uint32

// NoInferID marks the absence of an inference-variable reference.
const NoInferID InferID = 0

// NameID identifies a named type head: a primitive, a class, a struct, a
// tuple of some arity, or the `future` wrapper type.
type NameID uint32

// NoNameID marks an unresolved or invalid name.
const NoNameID NameID = 0

// Universe orders binder-introduced scopes for skolemization checks (§3,
// §9). Universe 0 is the root (no universals in scope yet); opening a
// binder as universal introduces a strictly deeper universe.
type Universe uint32

// RootUniverse is the universe types resolved with no open binders live in.
const RootUniverse Universe = 0

// GenericParamKind is the declared kind of a generic variable.
type GenericParamKind uint8

const (
	ParamKindType GenericParamKind = iota
	ParamKindPerm
	ParamKindPlace
)

func (k GenericParamKind) String() string {
	switch k {
	case ParamKindType:
		return "type"
	case ParamKindPerm:
		return "permission"
	case ParamKindPlace:
		return "place"
	default:
		return "unknown"
	}
}

// Variance controls how a generic argument's subtyping direction relates to
// its binder's. §9's open question: the solver currently only consumes
// Invariant for permission/place arguments (so a `Mut`/`Ref` place argument
// cannot be silently widened); type arguments are always Covariant. See
// DESIGN.md for the decision record.
type Variance uint8

const (
	Covariant Variance = iota
	Invariant
)

// GenericParam describes one parameter of a Binder.
type GenericParam struct {
	Name     source.StringID
	Kind     GenericParamKind
	Variance Variance
}

// InternalError reports a contract violation inside the core (kind
// mismatch, corrupted interner state) per spec §7. It is turned into an
// error-severity diagnostic by callers that can recover, and is only
// allowed to panic at truly unreachable states.
type InternalError struct {
	Span source.Span
	Msg  string
}

func (e *InternalError) Error() string { return e.Msg }
