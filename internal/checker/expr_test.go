package checker

import (
	"testing"

	"surge/internal/ir"
	"surge/internal/source"
	"surge/internal/symbols"
)

func TestCheckVariableFindsBoundType(t *testing.T) {
	env := newTestEnv()
	sym := declareSymbol(env.Table, env.Scope, "x", symbols.SymbolLet)
	widget := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	root := ir.PlaceRoot(1)
	env = env.WithBinding(root, widget)

	e := CheckVariable(env, root, sym, source.Span{})
	if e.Kind() != ExprVariable || e.Type != widget {
		t.Fatalf("expected a variable node typed Widget, got kind=%v type=%v", e.Kind(), e.Type)
	}
}

func TestCheckVariableUnboundReportsDiagnostic(t *testing.T) {
	env := newTestEnv()
	sym := declareSymbol(env.Table, env.Scope, "y", symbols.SymbolLet)

	e := CheckVariable(env, ir.PlaceRoot(2), sym, source.Span{})
	if e.Kind() != ExprInvalid {
		t.Fatalf("expected an invalid node for an unbound root")
	}
	if env.Bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", env.Bag.Len())
	}
}

func TestCheckLiteralAgainstConcreteContext(t *testing.T) {
	env := newTestEnv()
	boolTy := env.Store.InternTypeNamed(env.Store.InternName("Bool"), nil)

	e := CheckLiteral(env, LiteralBool, boolTy, 0, source.Span{})
	if e.Kind() != ExprLiteral || e.Type != boolTy {
		t.Fatalf("expected a bool literal typed Bool")
	}
}

func TestCheckLiteralDefaultsNumericContextAtQuiescence(t *testing.T) {
	env := newTestEnv()
	i32 := env.Store.InternTypeNamed(env.Store.InternName("I32"), nil)
	v := env.Infer.FreshInfer(ir.ParamKindType)
	ctxTy := env.Store.InternType(ir.Type{Kind: ir.TyInfer, Infer: v})

	e := CheckLiteral(env, LiteralNumeric, ctxTy, i32, source.Span{})
	if e.Type != ctxTy {
		t.Fatalf("expected the literal's node type to stay the (still unresolved) context type")
	}
	env.Runtime.BlockUntilQuiescent()

	lower := env.Infer.LowerTypes(v)
	if len(lower) != 1 || lower[0].Name != env.Store.InternName("I32") {
		t.Fatalf("expected the deferred task to default the context var's lower bound to I32, got %v", lower)
	}
}

func TestCheckAssignmentRejectsMismatch(t *testing.T) {
	env := newTestEnv()
	widget := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	gadget := env.Store.InternTypeNamed(env.Store.InternName("Gadget"), nil)
	place := &Expr{kind: ExprVariable, Type: widget}
	value := &Expr{kind: ExprVariable, Type: gadget}

	e := CheckAssignment(env, place, value, source.Span{})
	t2, ok := env.Store.LookupType(e.Type)
	if !ok || t2.Kind != ir.TyNever {
		t.Fatalf("expected a mismatched assignment to type as never, got %v", e.Type)
	}
	if env.Bag.Len() != 1 {
		t.Fatalf("expected one diagnostic for the mismatch, got %d", env.Bag.Len())
	}
}

func TestCheckAssignmentAcceptsMyIntoOur(t *testing.T) {
	env := newTestEnv()
	inner := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	place := &Expr{kind: ExprVariable, Type: env.Store.PermApplied(env.Store.Our(), inner)}
	value := &Expr{kind: ExprVariable, Type: inner}

	e := CheckAssignment(env, place, value, source.Span{})
	if e.Type != place.Type {
		t.Fatalf("expected `my Widget` assignable into `our Widget`")
	}
	if env.Bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %d", env.Bag.Len())
	}
}

func TestCheckBlockTypesAsLastStatement(t *testing.T) {
	env := newTestEnv()
	ty := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	stmts := []*Expr{{kind: ExprLiteral, Type: env.Store.InternTypeNamed(env.Store.InternName("Bool"), nil)}, {kind: ExprVariable, Type: ty}}

	e := CheckBlock(stmts, ir.NoTypeID, source.Span{})
	if e.Type != ty {
		t.Fatalf("expected the block to type as its last statement")
	}
}

func TestCheckBlockEmptyUsesSuppliedEmptyType(t *testing.T) {
	env := newTestEnv()
	nothing := env.Store.InternTypeNamed(env.Store.InternName("Nothing"), nil)

	e := CheckBlock(nil, nothing, source.Span{})
	if e.Type != nothing {
		t.Fatalf("expected an empty block to type as the supplied empty type")
	}
}

func TestCheckLetNarrowsToDeclaredType(t *testing.T) {
	env := newTestEnv()
	inner := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	declared := env.Store.PermApplied(env.Store.Our(), inner)
	init := &Expr{kind: ExprVariable, Type: inner}
	sym := declareSymbol(env.Table, env.Scope, "w", symbols.SymbolLet)

	node, ty := CheckLet(env, sym, declared, init, source.Span{})
	if ty != declared || node.Type != declared {
		t.Fatalf("expected let to narrow to the declared type")
	}
}

func TestCheckLetWithoutDeclaredTypeUsesInit(t *testing.T) {
	env := newTestEnv()
	inner := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	init := &Expr{kind: ExprVariable, Type: inner}
	sym := declareSymbol(env.Table, env.Scope, "w", symbols.SymbolLet)

	_, ty := CheckLet(env, sym, ir.NoTypeID, init, source.Span{})
	if ty != inner {
		t.Fatalf("expected let with no declared type to use the initializer's type")
	}
}

func TestCheckIfUnifiesArmsViaWidening(t *testing.T) {
	env := newTestEnv()
	inner := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	thenArm := &Expr{kind: ExprVariable, Type: inner}
	elseArm := &Expr{kind: ExprVariable, Type: env.Store.PermApplied(env.Store.Our(), inner)}

	e := CheckIf(env, nil, thenArm, elseArm, source.Span{})
	if e.Type != elseArm.Type {
		t.Fatalf("expected the if to widen to the our-permission arm")
	}
}

func TestCheckIfIncompatibleArmsTypeAsNever(t *testing.T) {
	env := newTestEnv()
	widget := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	gadget := env.Store.InternTypeNamed(env.Store.InternName("Gadget"), nil)
	thenArm := &Expr{kind: ExprVariable, Type: widget}
	elseArm := &Expr{kind: ExprVariable, Type: gadget}

	e := CheckIf(env, nil, thenArm, elseArm, source.Span{})
	got, ok := env.Store.LookupType(e.Type)
	if !ok || got.Kind != ir.TyNever {
		t.Fatalf("expected incompatible if arms to type as never")
	}
}
