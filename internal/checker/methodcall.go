package checker

import (
	"surge/internal/diag"
	"surge/internal/ir"
	"surge/internal/source"
)

// CheckMethodCall is §4.I's Method-call case: like field access but with
// generic argument inference via §4.H on parameter vs argument types,
// producing an existentially-opened signature. method is the Expr
// LookupMember/confirmMember already produced (kind ExprMethod, Owner and
// Member populated, Type still the signature's unsubstituted return type);
// this finishes it by opening the callee's own generic parameters
// existentially (ir.Binder.OpenExistential, §3: a call site never knows
// the type/permission/place arguments up front, it infers them the same
// way it would for any other inference variable), relating each argument
// against the substituted parameter type, and substituting the return
// type against the same opening.
func CheckMethodCall(env Env, method *Expr, args []*Expr, span source.Span) *Expr {
	sig := env.Decls.Signature(method.Member)
	if sig == nil {
		env.Bag.Add(&diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.SemaUnresolvedSymbol,
			Primary:  span,
			Message:  "call to a method with no known signature",
		})
		return &Expr{kind: ExprMethod, Type: env.Store.InternTypeNever(), Owner: method.Owner, Member: method.Member, Args: args, Span: span}
	}

	binder := ir.NewBinder(sig.GenericParams)
	opened := binder.OpenExistential(env.Store, env.Infer)

	kinds := make([]ir.GenericParamKind, len(sig.GenericParams))
	for i, p := range sig.GenericParams {
		kinds[i] = p.Kind
	}
	sub, err := ir.BindAll(sig.Vars, kinds, opened)
	if err != nil {
		env.Bag.Add(&diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.SemaUnresolvedSymbol,
			Primary:  span,
			Message:  "internal error opening this method's generic parameters",
		})
		return &Expr{kind: ExprMethod, Type: env.Store.InternTypeNever(), Owner: method.Owner, Member: method.Member, Args: args, Generics: opened, Span: span}
	}

	for i, arg := range args {
		if i >= len(sig.Params) {
			break // arity mismatches are the caller's (AST-building) responsibility to have already reported
		}
		paramTy, serr := env.Store.SubstType(sig.Params[i], sub)
		if serr != nil {
			continue
		}
		orElse := diag.Simple(span, diag.SemaTypeMismatch, "argument is not assignable to this parameter")
		env.RequireAssignable(arg.Type, paramTy, orElse)
	}

	retTy, err := env.Store.SubstType(sig.Return, sub)
	if err != nil {
		retTy = env.Store.InternTypeNever()
	}

	return &Expr{kind: ExprMethod, Type: retTy, Owner: method.Owner, Member: method.Member, Args: args, Generics: opened, Span: span}
}
