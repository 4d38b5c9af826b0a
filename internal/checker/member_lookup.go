package checker

import (
	"surge/internal/checkrt"
	"surge/internal/diag"
	"surge/internal/ir"
	"surge/internal/red"
	"surge/internal/source"
	"surge/internal/symbols"
)

// LookupMember is §4.I's Field-access / Method-call member resolution,
// grounded on member_lookup.rs's MemberLookup::lookup_member: search the
// lower-bound stream of owner's type for a field or method named name,
// confirm the same resolution holds for every lower bound that arrives
// afterward, and report ambiguity if two different bounds disagree.
//
// member_lookup.rs drives this with an async stream that lazily awaits
// more lower bounds as they become available and never explicitly
// terminates — termination falls out of the whole item eventually reaching
// a fixed point. This checker's cooperative runtime (§4.D) has an explicit
// "no more bounds forthcoming" signal instead (BlockUntilQuiescent's final
// re-drive), so LookupMember uses that as its conservative default: if
// quiescence is reached with no member found on any lower bound observed
// so far, that is reported as no_such_member rather than looping forever.
func LookupMember(env Env, owner *Expr, name source.StringID, span source.Span) *Expr {
	examined := 0
	var resolved *Member
	var resolvedTy ir.TypeID

	task := func() checkrt.TaskResult {
		return scanLowerBounds(env, owner, name, span, &examined, &resolved, &resolvedTy)
	}
	result := task()
	if !result.Done {
		// The first probe couldn't decide from bounds known so far (owner's
		// type is still an unresolved inference variable with no — or not
		// yet enough — lower bounds). Spawning and immediately forcing the
		// runtime to quiescence runs this task (and anything else already
		// pending) to a fixed point before LookupMember returns, so the
		// typed node this produces always reflects a settled resolution
		// rather than a guess; §5 permits this since scheduling order never
		// changes the fixed point, only when it is reached.
		env.Runtime.Spawn("member lookup "+sourceName(env, name), result.Next)
		env.Runtime.BlockUntilQuiescent()
	}
	if resolved == nil {
		return errExpr(env.Store, span)
	}
	return confirmMember(env, owner, *resolved, resolvedTy, span)
}

// sourceName renders an interned name for a task description; failures to
// look it up (shouldn't happen for a name that reached this point) fall
// back to a placeholder rather than panicking, since descriptions are
// diagnostic-only.
func sourceName(env Env, name source.StringID) string {
	if s, ok := env.Table.Strings.Lookup(name); ok {
		return s
	}
	return "<member>"
}

// scanLowerBounds implements search_lower_bound_for_member's loop: each
// call examines any lower bounds of owner.Type not yet seen, looking for a
// class shape to search for name. An inference-variable bound just means
// "keep waiting" (probe again once it resolves further). Unlike a single
// committed guess, this keeps examining every lower bound that arrives up
// to quiescence, comparing each newly-found member against whatever was
// already found — each disagreeing bound is reported as AmbiguousMember,
// and the loop only settles (calls cont) once the runtime signals no
// more bounds are coming (final), per §4.I: "resolution must agree across
// all future lower bounds".
func scanLowerBounds(env Env, owner *Expr, name source.StringID, span source.Span, examined *int, resolved **Member, resolvedTy *ir.TypeID) checkrt.TaskResult {
	t, ok := env.Store.LookupType(owner.Type)
	if !ok {
		return checkrt.Done()
	}
	if t.Kind != ir.TyInfer {
		m, rt, err := searchTypeForMember(env, owner.Type, name)
		agree(env, name, span, resolved, resolvedTy, m, rt, err)
		return checkrt.Done()
	}
	v := t.Infer
	return checkrt.LoopOnInferenceVar(env.Runtime, v, func(final bool) (struct{}, bool) {
		bounds := env.Infer.LowerTypes(v)
		for *examined < len(bounds) {
			b := bounds[*examined]
			*examined++
			if b.Kind == red.TyInfer {
				continue // push deeper: the bound is itself still an inference var
			}
			ty := reconstructNamedType(env, b)
			m, rt, err := searchTypeForMember(env, ty, name)
			agree(env, name, span, resolved, resolvedTy, m, rt, err)
		}
		return struct{}{}, final
	}, func(struct{}) checkrt.TaskResult {
		if *resolved == nil {
			searched := false
			for _, b := range env.Infer.LowerTypes(v) {
				searched = searched || b.Kind != red.TyInfer
			}
			if !searched {
				// No concrete lower bound ever arrived: nothing was searched.
				agree(env, name, span, resolved, resolvedTy, nil, ir.NoTypeID, true)
			}
		}
		return checkrt.Done()
	})
}

// reconstructNamedType rebuilds an ir.TypeID for a red.Ty shape so the rest
// of this package (which works in terms of ir.TypeID, not red.Ty) can keep
// searching it; only TyNamed shapes reach here, and InternTypeNamed is
// idempotent for an already-canonical named type.
func reconstructNamedType(env Env, t red.Ty) ir.TypeID {
	return env.Store.InternTypeNamed(t.Name, t.Args)
}

// agree folds one newly-examined lower bound's search result into the
// running resolution: the first hit is recorded outright; a later hit that
// disagrees (names a different owner/field/method) is reported as
// PermAmbiguousMember and does not overwrite the first; a bound with no
// such member is a hard failure reported at the original span (§4.I:
// "failure on any lower bound is an error at the original expression
// span"), whether or not an earlier bound already resolved, after which
// further bounds are still compared (so a single missing-member bound
// doesn't mask a later, genuine ambiguity). Each disagreeing or failing
// bound adds its own diagnostic.
func agree(env Env, name source.StringID, span source.Span, resolved **Member, resolvedTy *ir.TypeID, m *Member, ty ir.TypeID, failed bool) {
	if failed || m == nil {
		env.Bag.Add(&diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.SemaModuleMemberNotFound,
			Primary:  span,
			Message:  "no member named `" + sourceName(env, name) + "` on this type",
		})
		return
	}
	if *resolved == nil {
		*resolved = m
		*resolvedTy = ty
		return
	}
	same := (*resolved).Owner == m.Owner && (*resolved).Method == m.Method && (*resolved).Field == m.Field
	if !same {
		AmbiguousMember(env, sourceName(env, name), span, **resolved, *m)
	}
}

// searchTypeForMember is search_lower_bound_for_member's per-shape match:
// primitives and the never type have no members; a named class type
// searches its declaration; anything else (an error marker, a bare generic
// variable) fails the lookup outright.
func searchTypeForMember(env Env, ty ir.TypeID, name source.StringID) (*Member, ir.TypeID, bool) {
	t, ok := env.Store.LookupType(ty)
	if !ok {
		return nil, ir.NoTypeID, true
	}
	switch t.Kind {
	case ir.TyPermApplied:
		return searchTypeForMember(env, t.Inner, name)
	case ir.TyNamed:
		class := env.Decls.Class(classSymbolFor(env, t.Name))
		if class == nil {
			return nil, ir.NoTypeID, true
		}
		m, ok := env.Decls.FindMember(env.Table, class, name)
		if !ok {
			return nil, ir.NoTypeID, true
		}
		return &m, ty, false
	default:
		return nil, ir.NoTypeID, true
	}
}

// classSymbolFor recovers the declaring symbol for a named type's interned
// NameID. internal/ir keeps NameID a pure string interning (§4.A has no
// reason to know about symbols.SymbolID), so the checker keeps the inverse
// mapping name -> declaring symbol itself, populated at the same time
// Declarations.DeclareClass is called.
func classSymbolFor(env Env, name ir.NameID) symbols.SymbolID {
	return env.Decls.classByName[name]
}

// confirmMember builds the typed IR node for a resolved member, per
// member_lookup.rs's confirm_member: a field access yields a place
// expression whose type is the field's declared type, substituted against
// ownerTy's own generic arguments (classFieldType); a method access yields
// a method-call node still awaiting its argument list (CheckMethodCall
// finishes that one, substituting against the call's own inferred
// arguments rather than ownerTy's).
func confirmMember(env Env, owner *Expr, m Member, ownerTy ir.TypeID, span source.Span) *Expr {
	if m.Field != nil {
		ty := classFieldType(env, ownerTy, m.Owner, m.Field)
		return &Expr{kind: ExprField, Type: ty, Owner: owner, Member: m.Field.Symbol, Span: span}
	}
	sig := env.Decls.Signature(m.Method)
	retTy := ir.NoTypeID
	if sig != nil {
		retTy = sig.Return
	}
	return &Expr{kind: ExprMethod, Type: retTy, Owner: owner, Member: m.Method, Span: span}
}

// classFieldType substitutes a field's declared type against the generic
// arguments of the named type it was found through, e.g. relating
// `Box[my String].value`'s declared `T` to `my String`. ownerTy may carry a
// permission wrapper (`Perm ∘ Named[...]`); only the named core's Args
// matter for this substitution, so field access itself never changes which
// permission wraps the result (§4.I names no such rule, and chains.rs's own
// lien bookkeeping is a separate borrow-checking concern this checker does
// not implement).
func classFieldType(env Env, ownerTy ir.TypeID, classSym symbols.SymbolID, field *FieldDecl) ir.TypeID {
	t, ok := env.Store.LookupType(ownerTy)
	if !ok {
		return field.Type
	}
	if t.Kind == ir.TyPermApplied {
		t, ok = env.Store.LookupType(t.Inner)
		if !ok {
			return field.Type
		}
	}
	if t.Kind != ir.TyNamed {
		return field.Type
	}
	class := env.Decls.Class(classSym)
	if class == nil || len(class.Vars) == 0 {
		return field.Type
	}
	kinds := make([]ir.GenericParamKind, len(class.GenericParams))
	for i, p := range class.GenericParams {
		kinds[i] = p.Kind
	}
	n := len(class.Vars)
	if len(t.Args) < n {
		return field.Type
	}
	sub, err := ir.BindAll(class.Vars, kinds, t.Args[:n])
	if err != nil {
		return field.Type
	}
	substituted, err := env.Store.SubstType(field.Type, sub)
	if err != nil {
		return field.Type
	}
	return substituted
}

// AmbiguousMember reports §4.I's "resolution must agree across all future
// lower bounds" failure: two distinct lower bounds of the same owner
// expression resolved name to different members, grounded on
// member_lookup.rs's ambiguous_member, which labels both candidate
// declarations so the diagnostic points at each owner in turn.
func AmbiguousMember(env Env, name string, span source.Span, first, second Member) {
	env.Bag.Add(&diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.PermAmbiguousMember,
		Primary:  span,
		Message:  "ambiguous member `" + name + "`",
		Notes: []diag.Note{
			{Span: env.memberSpan(first), Msg: "one option is " + env.memberLabel(first)},
			{Span: env.memberSpan(second), Msg: "another option is " + env.memberLabel(second)},
		},
	})
}

// memberLabel and memberSpan describe one side of an ambiguity note.
func (e Env) memberLabel(m Member) string {
	if m.Field != nil {
		sym := e.Table.Symbols.Get(m.Field.Symbol)
		if sym != nil {
			return "the field `" + e.Table.Strings.MustLookup(sym.Name) + "`"
		}
		return "a field"
	}
	sym := e.Table.Symbols.Get(m.Method)
	if sym != nil {
		return "the method `" + e.Table.Strings.MustLookup(sym.Name) + "`"
	}
	return "a method"
}

func (e Env) memberSpan(m Member) source.Span {
	if m.Field != nil {
		if sym := e.Table.Symbols.Get(m.Field.Symbol); sym != nil {
			return sym.Span
		}
		return source.Span{}
	}
	if sym := e.Table.Symbols.Get(m.Method); sym != nil {
		return sym.Span
	}
	return source.Span{}
}
