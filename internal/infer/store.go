// Package infer implements component E: inference variables and their
// bounds. A Store owns every inference variable minted while checking a
// single item; it records, per variable, the predicate requirements and
// red-perm/red-type bound lists described in spec §4.E, and signals
// internal/checkrt whenever a write would unblock a parked task.
package infer

import (
	"surge/internal/diag"
	"surge/internal/ir"
	"surge/internal/red"
	"surge/internal/source"
)

// Predicate is one of the four predicates the solver reasons about (§4.G).
type Predicate uint8

const (
	PredicateCopy Predicate = iota
	PredicateMove
	PredicateOwned
	PredicateLent
	numPredicates
)

func (p Predicate) String() string {
	switch p {
	case PredicateCopy:
		return "copy"
	case PredicateMove:
		return "move"
	case PredicateOwned:
		return "owned"
	case PredicateLent:
		return "lent"
	default:
		return "unknown-predicate"
	}
}

// boundedPerm pairs a red permission bound with the OrElse explaining why
// it was added.
type boundedPerm struct {
	Perm   red.Perm
	OrElse diag.OrElse
}

type boundedType struct {
	Ty     red.Ty
	OrElse diag.OrElse
}

type varEntry struct {
	kind     ir.GenericParamKind
	universe ir.Universe
	span     source.Span // where the variable was introduced, for cycle diagnostics

	is    [numPredicates]diag.OrElse // zero value means "not recorded"
	isnt  [numPredicates]diag.OrElse

	lowerPerms []boundedPerm
	upperPerms []boundedPerm

	// type-variable-only bounds; empty slices for permission/place variables.
	lowerTypes []boundedType
	upperTypes []boundedType

	// pairedPerm is the auto-generated permission inference variable
	// associated with a type inference variable (§3), or NoInferID for a
	// variable that is not a type variable.
	pairedPerm ir.InferID
}

// WakeFunc is called once per write that may unblock tasks parked on v; it
// is satisfied by internal/checkrt.Runtime.Wake. Store holds no direct
// dependency on checkrt (which depends on infer, not the reverse) — it
// only needs the capability to signal.
type WakeFunc func(v ir.InferID)

// CopyVarTable answers whether a declared generic variable carries a
// `copy` contract bound. The checker's symbol/contract layer (not owned by
// this package) is the authority here; Store delegates through this small
// interface so infer has no dependency on the checker's symbol layer.
type CopyVarTable interface {
	VarIsCopy(v ir.VarID) bool
}

// Store owns every inference variable minted for one item being checked.
type Store struct {
	vars     []varEntry // 1-indexed; index 0 unused, mirrors ir.Store's sentinel convention
	universe ir.Universe
	nextVar  ir.VarID
	wake     WakeFunc
	copyVars CopyVarTable
}

// NewStore constructs an empty Store. wake may be nil (useful in tests that
// don't exercise scheduler interaction); copyVars may be nil, in which case
// no generic variable is ever treated as declared-copy.
func NewStore(wake WakeFunc, copyVars CopyVarTable) *Store {
	return &Store{vars: make([]varEntry, 1), wake: wake, copyVars: copyVars}
}

// FreshInfer mints a new inference variable of the given kind in the
// current root universe, satisfying ir.InferFactory. Type variables are
// always minted together with a paired permission variable (§3); this
// entry point mints a lone variable of the given kind — use FreshTypeVar
// to get the pair. The variable carries a zero span; callers that know
// where the variable originates (the checker does) should use
// FreshInferAt so resolution cycles can be reported at a useful location.
func (s *Store) FreshInfer(kind ir.GenericParamKind) ir.InferID {
	return s.freshAt(kind, ir.RootUniverse, ir.NoInferID, source.Span{})
}

// FreshInferAt mints a new inference variable in a specific universe and
// span (used when opening a binder discovered deeper inside already-open
// universal scopes, so later escape checks see the right universe, and
// resolution-cycle diagnostics point at the right source location).
func (s *Store) FreshInferAt(kind ir.GenericParamKind, u ir.Universe, span source.Span) ir.InferID {
	return s.freshAt(kind, u, ir.NoInferID, span)
}

func (s *Store) freshAt(kind ir.GenericParamKind, u ir.Universe, paired ir.InferID, span source.Span) ir.InferID {
	s.vars = append(s.vars, varEntry{kind: kind, universe: u, pairedPerm: paired, span: span})
	return ir.InferID(len(s.vars) - 1)
}

// FreshTypeVar mints a type inference variable together with its paired
// permission inference variable (§3's invariant: every type inference
// variable carries an auto-generated permission inference variable).
func (s *Store) FreshTypeVar(u ir.Universe, span source.Span) (ty ir.InferID, perm ir.InferID) {
	perm = s.freshAt(ir.ParamKindPerm, u, ir.NoInferID, span)
	ty = s.freshAt(ir.ParamKindType, u, perm, span)
	return ty, perm
}

// Span reports where v was introduced.
func (s *Store) Span(v ir.InferID) source.Span {
	return s.entry(v).span
}

// FreshVar mints a fresh generic-variable id, satisfying ir.VarFactory.
// Generic variables and inference variables are minted from independent
// spaces in this implementation (VarID vs InferID are distinct types), so
// this counter is local to Store purely as a convenience for callers that
// need both factories from one object.
func (s *Store) FreshVar() ir.VarID {
	s.nextVar++
	return s.nextVar
}

// FreshUniverse mints a fresh, strictly deeper universe, satisfying
// ir.UniverseFactory.
func (s *Store) FreshUniverse() ir.Universe {
	s.universe++
	return s.universe
}

func (s *Store) entry(v ir.InferID) *varEntry {
	return &s.vars[v]
}

// Kind reports the declared kind of inference variable v.
func (s *Store) Kind(v ir.InferID) ir.GenericParamKind {
	return s.entry(v).kind
}

// Universe reports the universe v was minted in (for the escape check in
// §4.H's resolution step).
func (s *Store) Universe(v ir.InferID) ir.Universe {
	return s.entry(v).universe
}

// PairedPermOf implements red.Env: the permission inference variable paired
// with type inference variable v, or v itself if v is not a type variable
// (so the method is safe to call uniformly).
func (s *Store) PairedPermOf(v ir.InferID) ir.InferID {
	e := s.entry(v)
	if e.kind == ir.ParamKindType && e.pairedPerm != ir.NoInferID {
		return e.pairedPerm
	}
	return v
}

// InferIsKnownCopy implements red.Env: reports whether v currently has a
// recorded `copy` requirement.
func (s *Store) InferIsKnownCopy(v ir.InferID) bool {
	return !s.entry(v).is[PredicateCopy].IsZero()
}

// VarIsCopy implements red.Env for generic (non-inference) variables.
func (s *Store) VarIsCopy(v ir.VarID) bool {
	if s.copyVars == nil {
		return false
	}
	return s.copyVars.VarIsCopy(v)
}

func (s *Store) signal(v ir.InferID) {
	if s.wake != nil {
		s.wake(v)
	}
}
