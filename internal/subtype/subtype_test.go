package subtype

import (
	"testing"

	"surge/internal/diag"
	"surge/internal/infer"
	"surge/internal/ir"
	"surge/internal/source"
)

func someOrElse() diag.OrElse {
	return diag.Simple(source.Span{}, diag.PermSubtypeFailure, "test subtype failure")
}

func newEnv() Env {
	s := ir.NewStore()
	return Env{Store: s, Infer: infer.NewStore(nil, nil)}
}

func TestRequireAssignableTypeNeverIsUniversalSubtype(t *testing.T) {
	env := newEnv()
	never := env.Store.InternTypeNever()
	name := env.Store.InternName("Widget")
	widget := env.Store.InternTypeNamed(name, nil)

	if _, ok := RequireAssignableType(env, never, widget, someOrElse()); !ok {
		t.Fatalf("expected never <: anything to hold")
	}
}

func TestRequireAssignableTypeNamedCongruence(t *testing.T) {
	env := newEnv()
	name := env.Store.InternName("Widget")
	a := env.Store.InternTypeNamed(name, nil)
	b := env.Store.InternTypeNamed(name, nil)

	if _, ok := RequireAssignableType(env, a, b, someOrElse()); !ok {
		t.Fatalf("expected two identical named types to be assignable")
	}
}

func TestRequireAssignableTypeNamedMismatchFails(t *testing.T) {
	env := newEnv()
	widget := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	gadget := env.Store.InternTypeNamed(env.Store.InternName("Gadget"), nil)

	if _, ok := RequireAssignableType(env, widget, gadget, someOrElse()); ok {
		t.Fatalf("expected different named types to fail")
	}
}

func TestRequireAssignableTypePermissionMismatchFails(t *testing.T) {
	env := newEnv()
	name := env.Store.InternName("Widget")
	inner := env.Store.InternTypeNamed(name, nil)
	myWidget := inner // bare named type, implicitly `my`
	ourWidget := env.Store.PermApplied(env.Store.Our(), inner)

	// `our Widget` is not assignable to a place expecting `my Widget`
	// (our is copy, my requires move, and our <: my doesn't hold).
	if _, ok := RequireAssignableType(env, ourWidget, myWidget, someOrElse()); ok {
		t.Fatalf("expected `our Widget` -> `my Widget` to fail")
	}
}

func TestRequireAssignableTypeMyIsAssignableToOur(t *testing.T) {
	env := newEnv()
	inner := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	myWidget := inner
	ourWidget := env.Store.PermApplied(env.Store.Our(), inner)

	if _, ok := RequireAssignableType(env, myWidget, ourWidget, someOrElse()); !ok {
		t.Fatalf("expected `my Widget` -> `our Widget` to hold (my is bottom)")
	}
}

func TestRequireAssignableTypeDeferredInferBoundIsRecorded(t *testing.T) {
	env := newEnv()
	inner := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	ourWidget := env.Store.PermApplied(env.Store.Our(), inner)

	v := env.Infer.FreshInfer(ir.ParamKindPerm)
	infPermID := env.Store.InternPerm(ir.Permission{Kind: ir.PermInfer, Infer: v})
	infWidget := env.Store.PermApplied(infPermID, inner)

	if _, ok := RequireAssignableType(env, ourWidget, infWidget, someOrElse()); !ok {
		t.Fatalf("expected `our Widget` -> `?v Widget` to succeed by deferring a bound")
	}
	lowers := env.Infer.LowerPerms(v)
	if len(lowers) != 1 {
		t.Fatalf("expected the deferred chain to be recorded as a lower bound on v, got %d bounds", len(lowers))
	}
}

func TestRequireAssignableTypeNamedArgsCovariant(t *testing.T) {
	env := newEnv()
	boxName := env.Store.InternName("Box")
	inner := env.Store.InternTypeNamed(env.Store.InternName("Widget"), nil)
	never := env.Store.InternTypeNever()

	boxOfNever := env.Store.InternTypeNamed(boxName, []ir.GenericTerm{ir.TypeTerm(never)})
	boxOfWidget := env.Store.InternTypeNamed(boxName, []ir.GenericTerm{ir.TypeTerm(inner)})

	// Covariant type argument: Box[Never] <: Box[Widget] because Never <:
	// anything.
	if _, ok := RequireAssignableType(env, boxOfNever, boxOfWidget, someOrElse()); !ok {
		t.Fatalf("expected Box[Never] <: Box[Widget] via covariant argument relation")
	}
}
