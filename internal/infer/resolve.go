package infer

import (
	"fmt"

	"surge/internal/ir"
	"surge/internal/red"
)

// visitState tracks an inference variable's position in the resolution
// DFS: unvisited variables have no entry, variables mid-resolution are
// marked inProgress, and resolved variables cache their final term so
// repeated references are cheap and so a second visit can be told apart
// from a first one.
type visitState uint8

const (
	visitInProgress visitState = iota + 1
	visitDone
)

// Resolver drives post-fixed-point resolution (§4.H's "Resolution" step):
// for each inference variable, prefer its lower bound, then its upper
// bound, then a language default (`my` for permissions, the never type for
// types). Resolving a bound recurses into any inference variables it
// mentions; a variable revisited while still in progress is an
// inference-resolution cycle, reported as an internal error at the
// variable's span (§7's "Inference resolution cycle") rather than left to
// overflow the stack, grounded on the DFS-with-in-progress-marker pattern
// the original resolver used for its own dependency graph.
type Resolver struct {
	infer *Store
	store *ir.Store

	permState map[ir.InferID]visitState
	permTerm  map[ir.InferID]ir.PermID

	typeState map[ir.InferID]visitState
	typeTerm  map[ir.InferID]ir.TypeID
}

// NewResolver builds a Resolver over the given inference Store and IR
// Store (used to re-intern resolved permissions/types).
func NewResolver(infer *Store, store *ir.Store) *Resolver {
	return &Resolver{
		infer:     infer,
		store:     store,
		permState: make(map[ir.InferID]visitState),
		permTerm:  make(map[ir.InferID]ir.PermID),
		typeState: make(map[ir.InferID]visitState),
		typeTerm:  make(map[ir.InferID]ir.TypeID),
	}
}

// ResolvePerm resolves permission inference variable v to a concrete
// PermID, recursing through any inference variables its bounds mention.
func (r *Resolver) ResolvePerm(v ir.InferID) (ir.PermID, *ir.InternalError) {
	if term, ok := r.permTerm[v]; ok {
		return term, nil
	}
	if r.permState[v] == visitInProgress {
		return ir.NoPermID, r.cycle(v)
	}
	r.permState[v] = visitInProgress

	lowers := r.infer.LowerPerms(v)
	uppers := r.infer.UpperPerms(v)

	var chains []red.Chain
	switch {
	case len(lowers) > 0:
		// Every recorded lower bound must hold simultaneously, so the
		// resolved permission is their join: combining only the first
		// bound and discarding the rest would silently drop whichever
		// constraint arrived later (e.g. two differently-permissioned
		// arguments substituted onto the same opened inference variable
		// in a generic call).
		combined := lowers[0]
		for _, next := range lowers[1:] {
			combined = red.LubPerms(r.store, r.infer, combined, next)
		}
		chains = combined.Chains
	case len(uppers) > 0:
		combined := uppers[0]
		ok := true
		for _, next := range uppers[1:] {
			combined, ok = red.GlbPerms(r.store, r.infer, combined, next)
			if !ok {
				return ir.NoPermID, &ir.InternalError{
					Span: r.infer.Span(v),
					Msg:  fmt.Sprintf("infer: upper bounds on inference variable %d have no meet", v),
				}
			}
		}
		chains = combined.Chains
	default:
		id := r.store.My()
		r.permTerm[v] = id
		r.permState[v] = visitDone
		return id, nil
	}

	id, err := r.materializeChains(chains)
	if err != nil {
		return ir.NoPermID, err
	}
	r.permTerm[v] = id
	r.permState[v] = visitDone
	return id, nil
}

// ResolveType resolves type inference variable v to a concrete TypeID,
// wrapping the resolved shape in its paired permission variable's
// resolution (§3: every type inference variable's final type is its
// resolved permission applied to its resolved shape).
func (r *Resolver) ResolveType(v ir.InferID) (ir.TypeID, *ir.InternalError) {
	if term, ok := r.typeTerm[v]; ok {
		return term, nil
	}
	if r.typeState[v] == visitInProgress {
		return ir.NoTypeID, r.cycle(v)
	}
	r.typeState[v] = visitInProgress

	lowers := r.infer.LowerTypes(v)
	uppers := r.infer.UpperTypes(v)

	var shape red.Ty
	switch {
	case len(lowers) > 0:
		var err *ir.InternalError
		shape, err = r.agreeingShape(v, lowers)
		if err != nil {
			return ir.NoTypeID, err
		}
	case len(uppers) > 0:
		var err *ir.InternalError
		shape, err = r.agreeingShape(v, uppers)
		if err != nil {
			return ir.NoTypeID, err
		}
	default:
		shape = red.Ty{Kind: red.TyNever}
	}

	shapeID, err := r.materializeTy(shape)
	if err != nil {
		return ir.NoTypeID, err
	}

	permID, err := r.ResolvePerm(r.infer.PairedPermOf(v))
	if err != nil {
		return ir.NoTypeID, err
	}

	id := r.store.PermApplied(permID, shapeID)
	r.typeTerm[v] = id
	r.typeState[v] = visitDone
	return id, nil
}

// agreeingShape folds a recorded bound set down to one shape, same spirit
// as materializeChains' permission folding: every bound must describe the
// same shape (red shapes have no general join the way permissions do via
// LubPerms/GlbPerms), so the first bound is kept and every later one is
// required to match it rather than silently discarded — a disagreement
// here means the opened inference variable was substituted against two
// incompatible types, which is a soundness bug in whatever checked the
// call, not something resolution should paper over.
func (r *Resolver) agreeingShape(v ir.InferID, bounds []red.Ty) (red.Ty, *ir.InternalError) {
	shape := bounds[0]
	for _, next := range bounds[1:] {
		if !shapesAgree(shape, next) {
			return red.Ty{}, &ir.InternalError{
				Span: r.infer.Span(v),
				Msg:  fmt.Sprintf("infer: conflicting type bounds recorded on inference variable %d", v),
			}
		}
	}
	return shape, nil
}

func shapesAgree(a, b red.Ty) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case red.TyNamed:
		return a.Name == b.Name && len(a.Args) == len(b.Args)
	case red.TyVar:
		return a.Var == b.Var
	case red.TyInfer:
		return a.Infer == b.Infer
	default:
		return true
	}
}

func (r *Resolver) cycle(v ir.InferID) *ir.InternalError {
	return &ir.InternalError{
		Span: r.infer.Span(v),
		Msg:  fmt.Sprintf("infer: resolution cycle at inference variable %d", v),
	}
}

// materializeChains folds a chosen bound's chain set back into a concrete
// permission. The common case is a single chain; when the vecset holds
// several chains of the same link kind (e.g. `referenced[p, q]` reduces to
// two Ref chains), they recombine into one multi-place permission. A
// vecset mixing different link kinds at the head has no single concrete
// permission literal and resolves to its first chain; the remaining chains
// are not represented in the result. Such a vecset can come from the lub
// that ResolvePerm takes over several lower bounds (e.g. one `ref[x]` bound
// and one `mut[y]` bound).
func (r *Resolver) materializeChains(chains []red.Chain) (ir.PermID, *ir.InternalError) {
	if len(chains) == 0 {
		return r.store.My(), nil
	}
	if len(chains) > 1 && sameHeadKind(chains) {
		places := make([]ir.PlaceID, 0, len(chains))
		for _, c := range chains {
			places = append(places, c[0].Place)
		}
		switch chains[0][0].Kind {
		case red.LinkRef:
			return r.store.Referenced(places), nil
		case red.LinkMut:
			return r.store.Mutable(places), nil
		}
	}
	return r.materializeChain(chains[0])
}

func sameHeadKind(chains []red.Chain) bool {
	if len(chains) == 0 {
		return true
	}
	head := chains[0]
	if len(head) != 1 || (head[0].Kind != red.LinkRef && head[0].Kind != red.LinkMut) {
		return false
	}
	for _, c := range chains[1:] {
		if len(c) != 1 || c[0].Kind != head[0].Kind {
			return false
		}
	}
	return true
}

func (r *Resolver) materializeChain(c red.Chain) (ir.PermID, *ir.InternalError) {
	result := r.store.My()
	for _, link := range c {
		var linkPerm ir.PermID
		switch link.Kind {
		case red.LinkOur:
			linkPerm = r.store.Our()
		case red.LinkRef:
			linkPerm = r.store.Referenced([]ir.PlaceID{link.Place})
		case red.LinkMut:
			linkPerm = r.store.Mutable([]ir.PlaceID{link.Place})
		case red.LinkVar:
			linkPerm = r.store.InternPermVar(link.Var)
		case red.LinkInfer:
			resolved, err := r.ResolvePerm(link.Infer)
			if err != nil {
				return ir.NoPermID, err
			}
			linkPerm = resolved
		default:
			return ir.NoPermID, &ir.InternalError{Msg: "infer: cannot materialize error link"}
		}
		result = r.store.ApplyPerm(result, linkPerm)
	}
	return result, nil
}

func (r *Resolver) materializeTy(ty red.Ty) (ir.TypeID, *ir.InternalError) {
	switch ty.Kind {
	case red.TyNamed:
		args, err := r.resolveArgs(ty.Args)
		if err != nil {
			return ir.NoTypeID, err
		}
		return r.store.InternTypeNamed(ty.Name, args), nil
	case red.TyVar:
		return r.store.InternTypeVar(ty.Var), nil
	case red.TyInfer:
		return r.ResolveType(ty.Infer)
	case red.TyNever:
		return r.store.InternTypeNever(), nil
	default:
		return ir.NoTypeID, &ir.InternalError{Msg: "infer: cannot materialize error type"}
	}
}

func (r *Resolver) resolveArgs(args []ir.GenericTerm) ([]ir.GenericTerm, *ir.InternalError) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]ir.GenericTerm, len(args))
	for i, a := range args {
		switch a.Tag {
		case ir.TagType:
			if t, ok := r.store.LookupType(a.Type); ok && t.Kind == ir.TyInfer {
				resolved, err := r.ResolveType(t.Infer)
				if err != nil {
					return nil, err
				}
				out[i] = ir.TypeTerm(resolved)
				continue
			}
		case ir.TagPerm:
			if p, ok := r.store.LookupPerm(a.Perm); ok && p.Kind == ir.PermInfer {
				resolved, err := r.ResolvePerm(p.Infer)
				if err != nil {
					return nil, err
				}
				out[i] = ir.PermTerm(resolved)
				continue
			}
		}
		out[i] = a
	}
	return out, nil
}
