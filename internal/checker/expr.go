// Package checker implements component I: the expression checker (§4.I).
// It produces a typed IR from a function body's AST by walking each
// construct and recording a type on every node, deferring to the
// subtyping solver (internal/subtype), predicate solver
// (internal/predicate), and inference store (internal/infer) built by
// components E–H, and suspending through the cooperative runtime
// (internal/checkrt) wherever a construct needs more than the currently
// known lower/upper bounds of a type to decide something (field access,
// method resolution).
package checker

import (
	"surge/internal/checkrt"
	"surge/internal/diag"
	"surge/internal/ir"
	"surge/internal/red"
	"surge/internal/source"
	"surge/internal/symbols"
)

// ExprKind discriminates the checked-expression shapes §4.I lists.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprVariable
	ExprLiteral
	ExprField
	ExprMethod
	ExprAssign
	ExprPermOp
	ExprBlock
	ExprLet
	ExprIf
)

// PermOpKind distinguishes the three permission operators (§4.I).
type PermOpKind uint8

const (
	PermOpShare PermOpKind = iota
	PermOpLease
	PermOpGive
)

// Expr is one node of the typed IR §4.I produces: every construct carries a
// Type (possibly an inference variable still being resolved, possibly
// ir.InternTypeNever's error marker after a failed check, per §7's "after
// errors, substitute error-marker terms so dependent code continues").
// Only the fields relevant to Kind are populated, mirroring ir.Type's own
// shape-per-kind convention.
type Expr struct {
	kind ExprKind
	Span source.Span
	Type ir.TypeID

	// ExprVariable
	Symbol symbols.SymbolID
	Root   ir.PlaceRoot

	// ExprField / ExprMethod
	Owner  *Expr
	Member symbols.SymbolID

	// ExprMethod
	Generics []ir.GenericTerm
	Args     []*Expr

	// ExprAssign
	Place *Expr
	Value *Expr

	// ExprPermOp
	Op      PermOpKind
	Operand *Expr

	// ExprBlock / ExprLet
	Stmts []*Expr
	Name  symbols.SymbolID // ExprLet
	Init  *Expr            // ExprLet

	// ExprIf
	Cond *Expr
	Then *Expr
	Else *Expr
}

// Kind reports which §4.I construct produced this node.
func (e *Expr) Kind() ExprKind { return e.kind }

func errExpr(store *ir.Store, span source.Span) *Expr {
	return &Expr{kind: ExprInvalid, Type: store.InternTypeNever(), Span: span}
}

// CheckVariable is §4.I's Variable case: consult the environment for the
// variable's type. "Lazily symbolified" cycle detection (a variable's type
// referring to itself through a self-referential AST) is the caller's job
// when it first populates Bindings, not this lookup's — a root missing
// from Bindings here means the binder never ran, which this reports as an
// unresolved symbol rather than inventing a new diagnostic code for it.
func CheckVariable(env Env, root ir.PlaceRoot, sym symbols.SymbolID, span source.Span) *Expr {
	ty, ok := env.Bindings[root]
	if !ok {
		env.Bag.Add(&diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.SemaUnresolvedSymbol,
			Primary:  span,
			Message:  "variable used before its type was established",
		})
		return errExpr(env.Store, span)
	}
	return &Expr{kind: ExprVariable, Type: ty, Symbol: sym, Root: root, Span: span}
}

// LiteralKind distinguishes the literal forms §4.I's Literal case requires
// a context type for.
type LiteralKind uint8

const (
	LiteralNumeric LiteralKind = iota
	LiteralBool
	LiteralString
)

// CheckLiteral is §4.I's Literal case: ctxTy must already be (or become) an
// appropriate shape for kind. For a numeric literal against a still-unknown
// context type, a deferred task probes the inference variable until a
// concrete numeric shape is known or none is ever coming, at which point it
// defaults rather than leaving the literal's type forever unresolved.
func CheckLiteral(env Env, kind LiteralKind, ctxTy ir.TypeID, defaultNumeric ir.TypeID, span source.Span) *Expr {
	if kind != LiteralNumeric {
		return &Expr{kind: ExprLiteral, Type: ctxTy, Span: span}
	}
	t, ok := env.Store.LookupType(ctxTy)
	if !ok || t.Kind != ir.TyInfer {
		return &Expr{kind: ExprLiteral, Type: ctxTy, Span: span}
	}
	v := t.Infer
	orElse := diag.Simple(span, diag.SemaIntLiteralOutOfRange, "could not infer a numeric type for this literal")
	env.Runtime.Defer("numeric literal context", func() checkrt.TaskResult {
		return checkrt.LoopOnInferenceVar(env.Runtime, v, func(final bool) (bool, bool) {
			if len(env.Infer.LowerTypes(v)) > 0 || len(env.Infer.UpperTypes(v)) > 0 {
				return false, true // something else already constrains this variable
			}
			if final {
				return true, true // default to defaultNumeric
			}
			return false, false
		}, func(shouldDefault bool) checkrt.TaskResult {
			if shouldDefault {
				env.Infer.AddLowerRedType(v, red.ReduceType(env.Store, env.Infer, defaultNumeric).Ty, orElse)
			}
			return checkrt.Done()
		})
	})
	return &Expr{kind: ExprLiteral, Type: ctxTy, Span: span}
}

// CheckAssignment is §4.I's Assignment case: place's type must be the
// supertype value's type is assignable into (§4.H).
func CheckAssignment(env Env, place, value *Expr, span source.Span) *Expr {
	orElse := diag.Simple(span, diag.SemaTypeMismatch, "value is not assignable to this place")
	if _, ok := env.RequireAssignable(value.Type, place.Type, orElse); !ok {
		return &Expr{kind: ExprAssign, Type: env.Store.InternTypeNever(), Place: place, Value: value, Span: span}
	}
	return &Expr{kind: ExprAssign, Type: place.Type, Place: place, Value: value, Span: span}
}

// CheckBlock is §4.I's Block/sequence case: each statement is checked in
// order against whatever bindings earlier statements introduced; the
// block's type is its last statement's type, or emptyTy (the prelude's
// nothing-type, supplied by the caller) for an empty block.
func CheckBlock(stmts []*Expr, emptyTy ir.TypeID, span source.Span) *Expr {
	if len(stmts) == 0 {
		return &Expr{kind: ExprBlock, Type: emptyTy, Span: span}
	}
	return &Expr{kind: ExprBlock, Type: stmts[len(stmts)-1].Type, Stmts: stmts, Span: span}
}

// CheckLet is §4.I's let case: binds name to init's type, or — if the
// caller supplies a declared type — requires init be assignable to it
// first and binds the declared type instead (narrowing the initializer's
// possibly-wider inferred type down to what was written). Returns the
// typed-IR node and the type the caller should install into Bindings for
// name's place root.
func CheckLet(env Env, name symbols.SymbolID, declaredTy ir.TypeID, init *Expr, span source.Span) (*Expr, ir.TypeID) {
	ty := init.Type
	if declaredTy != ir.NoTypeID {
		orElse := diag.Simple(span, diag.SemaTypeMismatch, "initializer does not match the declared type")
		if _, ok := env.RequireAssignable(init.Type, declaredTy, orElse); ok {
			ty = declaredTy
		}
	}
	return &Expr{kind: ExprLet, Type: ty, Name: name, Init: init, Span: span}, ty
}

// CheckIf is §4.I's If/match case: arm result types are mutually equated
// via §4.H in both directions — RequireAssignableType is not symmetric, so
// unification tries then<:else first (the common case: else widens to
// accept then's narrower type) and falls back to else<:then.
func CheckIf(env Env, cond, then, elseArm *Expr, span source.Span) *Expr {
	orElse := diag.Simple(span, diag.SemaTypeMismatch, "if/match arms have incompatible types")
	if _, ok := env.RequireAssignable(then.Type, elseArm.Type, orElse); ok {
		return &Expr{kind: ExprIf, Type: elseArm.Type, Cond: cond, Then: then, Else: elseArm, Span: span}
	}
	if _, ok := env.RequireAssignable(elseArm.Type, then.Type, orElse); ok {
		return &Expr{kind: ExprIf, Type: then.Type, Cond: cond, Then: then, Else: elseArm, Span: span}
	}
	return &Expr{kind: ExprIf, Type: env.Store.InternTypeNever(), Cond: cond, Then: then, Else: elseArm, Span: span}
}
