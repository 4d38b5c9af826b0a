package red

import "surge/internal/ir"

// Env supplies the facts reduction needs that aren't stored in the ir.Store
// itself: whether a generic permission/type variable is declared `copy`
// (a static fact from the variable's contract bounds) and whether an
// inference variable is currently known to be copy (a dynamic fact owned
// by internal/infer), plus the paired permission inference variable for a
// type inference variable (§3: "each type inference variable is paired
// with an auto-generated permission inference variable").
type Env interface {
	VarIsCopy(v ir.VarID) bool
	InferIsKnownCopy(v ir.InferID) bool
	PairedPermOf(v ir.InferID) ir.InferID
}

// ReducePerm reduces a Permission to its canonical red form (§4.F).
func ReducePerm(store *ir.Store, env Env, id ir.PermID) Perm {
	p, ok := store.LookupPerm(id)
	if !ok {
		return Perm{Chains: []Chain{{{Kind: LinkError}}}}
	}
	switch p.Kind {
	case ir.PermMy:
		return Identity()
	case ir.PermOur:
		return Perm{Chains: []Chain{{{Kind: LinkOur}}}}
	case ir.PermReferenced:
		return Perm{Chains: chainsPerPlace(LinkRef, p.Places)}
	case ir.PermMutable:
		return Perm{Chains: chainsPerPlace(LinkMut, p.Places)}
	case ir.PermVar:
		return Perm{Chains: []Chain{{{Kind: LinkVar, Var: p.Var}}}}
	case ir.PermInfer:
		return Perm{Chains: []Chain{{{Kind: LinkInfer, Infer: p.Infer}}}}
	case ir.PermApp:
		left := ReducePerm(store, env, p.Left)
		right := ReducePerm(store, env, p.Right)
		return Perm{Chains: crossConcat(env, left.Chains, right.Chains)}
	default:
		return Perm{Chains: []Chain{{{Kind: LinkError}}}}
	}
}

func chainsPerPlace(kind LinkKind, places []ir.PlaceID) []Chain {
	chains := make([]Chain, len(places))
	for i, p := range places {
		chains[i] = Chain{{Kind: kind, Place: p}}
	}
	return chains
}

// crossConcat concatenates every chain in left with every chain in right
// (application distributes over the vecset, §4.F), truncating each result
// at its rightmost copy link and de-duplicating identical chains.
func crossConcat(env Env, left, right []Chain) []Chain {
	out := make([]Chain, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			out = append(out, concatChain(env, l, r))
		}
	}
	return dedup(out)
}

func concatChain(env Env, l, r Chain) Chain {
	if l.IsIdentity() {
		return truncate(env, r)
	}
	if r.IsIdentity() {
		return truncate(env, l)
	}
	combined := make(Chain, 0, len(l)+len(r))
	combined = append(combined, l...)
	combined = append(combined, r...)
	return truncate(env, combined)
}

// truncate implements "a copy link truncates all prior links on its chain"
// (§4.F): the chain reduces to the suffix starting at its rightmost copy
// link, or itself unchanged if it has none.
func truncate(env Env, c Chain) Chain {
	if c.IsIdentity() {
		return c
	}
	last := -1
	for i, link := range c {
		if isCopyLink(env, link) {
			last = i
		}
	}
	if last < 0 {
		return c
	}
	return c[last:]
}

func isCopyLink(env Env, l Link) bool {
	switch l.Kind {
	case LinkOur, LinkRef:
		return true
	case LinkVar:
		return env != nil && env.VarIsCopy(l.Var)
	case LinkInfer:
		return env != nil && env.InferIsKnownCopy(l.Infer)
	default:
		return false
	}
}

func dedup(chains []Chain) []Chain {
	type key = string
	seen := make(map[key]struct{}, len(chains))
	out := make([]Chain, 0, len(chains))
	for _, c := range chains {
		k := chainKey(c)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

func chainKey(c Chain) string {
	b := make([]byte, 0, len(c)*8)
	for _, l := range c {
		b = append(b, byte(l.Kind))
		b = appendUvarint(b, uint64(l.Place))
		b = appendUvarint(b, uint64(l.Var))
		b = appendUvarint(b, uint64(l.Infer))
	}
	return string(b)
}

func appendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// ReduceType reduces a Type to its canonical red term (§4.F).
func ReduceType(store *ir.Store, env Env, id ir.TypeID) Term {
	t, ok := store.LookupType(id)
	if !ok {
		return Term{Perm: Identity(), Ty: Ty{Kind: TyError}}
	}
	switch t.Kind {
	case ir.TyPermApplied:
		inner := ReduceType(store, env, t.Inner)
		permRed := ReducePerm(store, env, t.Perm)
		combined := crossConcat(env, permRed.Chains, inner.Perm.Chains)
		return Term{Perm: Perm{Chains: combined}, Ty: inner.Ty}
	case ir.TyNamed:
		return Term{Perm: Identity(), Ty: Ty{Kind: TyNamed, Name: t.Name, Args: t.Args}}
	case ir.TyVar:
		return Term{Perm: Identity(), Ty: Ty{Kind: TyVar, Var: t.Var}}
	case ir.TyInfer:
		paired := t.Infer
		if env != nil {
			paired = env.PairedPermOf(t.Infer)
		}
		return Term{
			Perm: Perm{Chains: []Chain{{{Kind: LinkInfer, Infer: paired}}}},
			Ty:   Ty{Kind: TyInfer, Infer: t.Infer},
		}
	case ir.TyNever:
		return Term{Perm: Identity(), Ty: Ty{Kind: TyNever}}
	default:
		return Term{Perm: Identity(), Ty: Ty{Kind: TyError}}
	}
}
