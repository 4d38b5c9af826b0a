package red

import "surge/internal/ir"

// Relation is the outcome of relating two chains under <: (§4.H step 3).
type Relation uint8

const (
	RelHolds Relation = iota
	RelFails
	// RelDeferred means one side began with an inference-variable link;
	// the caller (internal/subtype) must record Bound as a bound on Infer
	// rather than decide the relation outright (§4.H: "chains starting
	// with Infer(v) trigger bound additions").
	RelDeferred
)

// Deferred describes the bound a RelDeferred outcome asks the caller to
// record.
type Deferred struct {
	Infer ir.InferID
	// IsUpperBound is true when Infer was on the *lower* side of <: (so the
	// opposing chain becomes an upper bound on it); false when Infer was on
	// the upper side (the opposing chain becomes a lower bound).
	IsUpperBound bool
	Bound        Chain
}

// ChainSub relates two chains via <: (§4.H step 3's case table). It never
// mutates inference-variable state itself; RelDeferred results are handed
// back to the caller to record via internal/infer.
func ChainSub(store *ir.Store, env Env, lower, upper Chain) (Relation, Deferred) {
	for {
		if len(lower) > 0 && lower[0].Kind == LinkInfer {
			return RelDeferred, Deferred{Infer: lower[0].Infer, IsUpperBound: true, Bound: upper}
		}
		if len(upper) > 0 && upper[0].Kind == LinkInfer {
			return RelDeferred, Deferred{Infer: upper[0].Infer, IsUpperBound: false, Bound: lower}
		}
		if len(lower) == 0 {
			// `my <: C` for all C (§4.H).
			return RelHolds, Deferred{}
		}
		if len(upper) == 0 {
			// No rule relates a non-identity chain to `my`.
			return RelFails, Deferred{}
		}
		lh, uh := lower[0], upper[0]
		switch {
		case lh.Kind == LinkOur && len(lower) == 1:
			// `our <: C` iff C is copy.
			if isCopyChain(store, env, upper) {
				return RelHolds, Deferred{}
			}
			return RelFails, Deferred{}
		case lh.Kind == LinkOur && uh.Kind == LinkOur:
			lower, upper = lower[1:], upper[1:]
			continue
		case lh.Kind == LinkRef && uh.Kind == LinkRef:
			if !store.PlaceIsPrefixOf(uh.Place, lh.Place) {
				return RelFails, Deferred{}
			}
			lower, upper = lower[1:], upper[1:]
			continue
		case lh.Kind == LinkMut && uh.Kind == LinkMut:
			if !store.PlaceIsPrefixOf(uh.Place, lh.Place) {
				return RelFails, Deferred{}
			}
			lower, upper = lower[1:], upper[1:]
			continue
		case lh.Kind == LinkRef && uh.Kind == LinkOur:
			// `(ref[p0] C0) <: (our C1)` iff `(mut[p0] C0) <: C1`.
			reinterpreted := make(Chain, 0, len(lower))
			reinterpreted = append(reinterpreted, Link{Kind: LinkMut, Place: lh.Place})
			reinterpreted = append(reinterpreted, lower[1:]...)
			lower, upper = reinterpreted, upper[1:]
			continue
		case lh.Kind == LinkVar && uh.Kind == LinkVar:
			if lh.Var != uh.Var {
				return RelFails, Deferred{}
			}
			lower, upper = lower[1:], upper[1:]
			continue
		default:
			return RelFails, Deferred{}
		}
	}
}

func isCopyChain(store *ir.Store, env Env, c Chain) bool {
	if c.IsIdentity() {
		return false // `my` is move, not copy
	}
	last := c[len(c)-1]
	return isCopyLink(env, last) || (len(c) == 1 && last.Kind == LinkOur)
}

// LubPerms computes the least upper bound of two red permissions (§4.F):
// union the chain sets, then drop any chain subsumed by another (c1 is
// dropped if some other chain c2 in the union satisfies c1 <: c2).
func LubPerms(store *ir.Store, env Env, a, b Perm) Perm {
	union := make([]Chain, 0, len(a.Chains)+len(b.Chains))
	union = append(union, a.Chains...)
	union = append(union, b.Chains...)
	union = dedup(union)
	return Perm{Chains: simplifyBySubsumption(store, env, union)}
}

func simplifyBySubsumption(store *ir.Store, env Env, chains []Chain) []Chain {
	keep := make([]bool, len(chains))
	for i := range chains {
		keep[i] = true
	}
	for i, ci := range chains {
		for j, cj := range chains {
			if i == j || !keep[i] {
				continue
			}
			rel, _ := ChainSub(store, env, ci, cj)
			if rel == RelHolds {
				// ci <: cj: ci is subsumed by (redundant given) cj.
				keep[i] = false
				break
			}
		}
	}
	out := make([]Chain, 0, len(chains))
	for i, c := range chains {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out
}

// GlbPerms computes the greatest lower bound of two red permissions
// (§4.F): for every pair of chains, compute their chain-level GLB and keep
// the defined results; an empty outcome means no GLB exists.
func GlbPerms(store *ir.Store, env Env, a, b Perm) (Perm, bool) {
	var out []Chain
	for _, ca := range a.Chains {
		for _, cb := range b.Chains {
			if c, ok := GlbChain(store, env, ca, cb); ok {
				out = append(out, c)
			}
		}
	}
	if len(out) == 0 {
		return Perm{}, false
	}
	return Perm{Chains: simplifyBySubsumption(store, env, dedup(out))}, true
}

// GlbChain implements the chain-GLB case table from §4.F. env supplies
// copy-declaredness for the Var/Our case: a generic permission variable
// declared copy may glb with `our` (both permit sharing), one that isn't
// has no defined glb with `our`.
func GlbChain(store *ir.Store, env Env, a, b Chain) (Chain, bool) {
	if a.IsIdentity() || b.IsIdentity() {
		// my is the identity/top-most permissive permission: glb(my, X) = X
		// would not be sound in general (my is move-exclusive while X may
		// be lent), so only identity-with-identity has a defined glb here;
		// callers needing my-vs-X behavior drive it through ChainSub
		// instead (glb is only invoked by the solver on already-bounded
		// non-`my` chains in practice).
		if a.IsIdentity() && b.IsIdentity() {
			return Chain{}, true
		}
		return nil, false
	}
	ah, bh := a[0], b[0]
	switch {
	case ah.Kind == LinkOur && bh.Kind == LinkRef:
		return Chain{{Kind: LinkOur}}, true
	case ah.Kind == LinkRef && bh.Kind == LinkOur:
		return Chain{{Kind: LinkOur}}, true
	case ah.Kind == LinkOur && bh.Kind == LinkVar:
		if env != nil && env.VarIsCopy(bh.Var) {
			return Chain{{Kind: LinkOur}}, true
		}
		return nil, false
	case ah.Kind == LinkVar && bh.Kind == LinkOur:
		if env != nil && env.VarIsCopy(ah.Var) {
			return Chain{{Kind: LinkOur}}, true
		}
		return nil, false
	case ah.Kind == LinkRef && bh.Kind == LinkRef:
		if p, ok := store.PlaceGLB(ah.Place, bh.Place); ok {
			return prependGlb(store, env, Link{Kind: LinkRef, Place: p}, a[1:], b[1:])
		}
		return Chain{{Kind: LinkOur}}, true
	case ah.Kind == LinkMut && bh.Kind == LinkMut:
		if p, ok := store.PlaceGLB(ah.Place, bh.Place); ok {
			return prependGlb(store, env, Link{Kind: LinkMut, Place: p}, a[1:], b[1:])
		}
		return nil, false
	case ah.Kind == LinkVar && bh.Kind == LinkVar && ah.Var == bh.Var:
		return prependGlb(store, env, ah, a[1:], b[1:])
	default:
		return nil, false
	}
}

func prependGlb(store *ir.Store, env Env, head Link, restA, restB Chain) (Chain, bool) {
	if len(restA) == 0 && len(restB) == 0 {
		return Chain{head}, true
	}
	tail, ok := GlbChain(store, env, restA, restB)
	if !ok {
		return nil, false
	}
	out := make(Chain, 0, 1+len(tail))
	out = append(out, head)
	out = append(out, tail...)
	return out, true
}
