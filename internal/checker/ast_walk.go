package checker

import (
	"surge/internal/ast"
	"surge/internal/ir"
	"surge/internal/source"
	"surge/internal/symbols"
)

// WalkFunctionBody bridges a parsed function body to this package's typed
// IR. It is the driver a per-function query (§4.C) installs under
// Options.Items: given the statement a resolved FnItem's Body points at, it
// walks the subset of surface syntax that already exists in this grammar
// (identifiers, literals, member access, assignment, let/if/block) into
// calls against this package's Check* functions and LookupMember.
//
// This grammar has no dedicated syntax yet for permission operators
// (`.share`/`.lease`/`.give`) or for `my`/`our`/`leased`/`shared` type
// annotations — those are exercised directly by this package's own tests
// (CheckPermOp) rather than through parsed source text. A let statement's
// declared type is therefore always treated as inferred from its
// initializer; WalkType exists for the day a permission-aware type syntax
// is added to the parser, so this walker does not need to change shape when
// that lands, only WalkType's body.
type Walker struct {
	Builder  *ast.Builder
	Resolved *symbols.Result
	nextRoot uint32
	locals   []map[source.StringID]localVar
}

type localVar struct {
	root ir.PlaceRoot
	sym  symbols.SymbolID
}

func NewWalker(builder *ast.Builder, resolved *symbols.Result) *Walker {
	return &Walker{Builder: builder, Resolved: resolved, locals: []map[source.StringID]localVar{{}}}
}

func (w *Walker) pushScope()   { w.locals = append(w.locals, map[source.StringID]localVar{}) }
func (w *Walker) popScope()    { w.locals = w.locals[:len(w.locals)-1] }
func (w *Walker) lookupLocal(name source.StringID) (localVar, bool) {
	for i := len(w.locals) - 1; i >= 0; i-- {
		if lv, ok := w.locals[i][name]; ok {
			return lv, true
		}
	}
	return localVar{}, false
}

func (w *Walker) declareLocal(env Env, name source.StringID, ty ir.TypeID) (Env, ir.PlaceRoot) {
	w.nextRoot++
	root := ir.PlaceRoot(w.nextRoot)
	w.locals[len(w.locals)-1][name] = localVar{root: root}
	return env.WithBinding(root, ty), root
}

// WalkType resolves a surface type annotation to an interned type, for the
// forms this grammar already parses (a bare path with no permission
// qualifier, e.g. a parameter's `: Widget`). A permission-qualified
// annotation (`my Widget`, `leased[p] Widget`) has no TypeExprKind of its
// own yet, so every such annotation still types as whatever its initializer
// infers, same as WalkLet does for locals; WalkType only ever sees the
// plain-path case until that syntax is added.
func (w *Walker) WalkType(env Env, id ast.TypeID) ir.TypeID {
	if !id.IsValid() {
		return ir.NoTypeID
	}
	path, ok := w.Builder.Types.Path(id)
	if !ok || len(path.Segments) == 0 {
		return ir.NoTypeID
	}
	seg := path.Segments[len(path.Segments)-1]
	spelling, ok := w.Builder.StringsInterner.Lookup(seg.Name)
	if !ok {
		return ir.NoTypeID
	}
	if len(seg.Generics) == 0 {
		return env.Store.InternTypeNamed(env.Store.InternName(spelling), nil)
	}
	args := make([]ir.GenericTerm, 0, len(seg.Generics))
	for _, g := range seg.Generics {
		argTy := w.WalkType(env, g)
		if argTy == ir.NoTypeID {
			continue
		}
		args = append(args, ir.TypeTerm(argTy))
	}
	return env.Store.InternTypeNamed(env.Store.InternName(spelling), args)
}

// declareParam binds one function parameter into env, resolving its
// annotation via WalkType (falling back to a fresh inference variable for a
// permission-qualified annotation this grammar cannot express yet, so the
// checker can still make progress against the body rather than stalling on
// an unresolved binding).
func (w *Walker) declareParam(env Env, param *ast.FnParam) Env {
	ty := w.WalkType(env, param.Type)
	if ty == ir.NoTypeID {
		v := env.Infer.FreshInfer(ir.ParamKindType)
		ty = env.Store.InternType(ir.Type{Kind: ir.TyInfer, Infer: v})
	}
	next, _ := w.declareLocal(env, param.Name, ty)
	return next
}

// WalkFunctionBody is the entry point a driver installs per resolved
// function: it binds the function's parameters and checks its body block,
// returning the body's typed result.
func (w *Walker) WalkFunctionBody(env Env, fn *ast.FnItem, params []*ast.FnParam) *Expr {
	cur := env
	for _, p := range params {
		if p == nil {
			continue
		}
		cur = w.declareParam(cur, p)
	}
	return w.WalkBlock(cur, fn.Body)
}

// WalkStmt checks one statement, returning the typed node it produces (nil
// for statements with no expression value, e.g. a bare `break`).
func (w *Walker) WalkStmt(env Env, id ast.StmtID) (Env, *Expr) {
	stmt := w.Builder.Stmts.Get(id)
	if stmt == nil {
		return env, nil
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		return env, w.WalkBlock(env, id)
	case ast.StmtLet:
		return w.WalkLet(env, id)
	case ast.StmtExpr:
		data := w.Builder.Stmts.Expr(id)
		if data == nil {
			return env, nil
		}
		return env, w.WalkExpr(env, data.Expr)
	case ast.StmtIf:
		return env, w.WalkIf(env, id)
	default:
		// Loops, return, drop, signal, break/continue carry no §4.I
		// expression-checking role distinct from their sub-expressions;
		// a full driver would still recurse into their bodies, but none of
		// this package's Check* functions model loop control flow itself.
		return env, nil
	}
}

// WalkBlock is §4.I's Block case driven from source: each statement is
// walked in the scope introduced by the ones before it (new let bindings
// extend env), and the block types as the last statement that produced a
// value.
func (w *Walker) WalkBlock(env Env, id ast.StmtID) *Expr {
	block := w.Builder.Stmts.Block(id)
	if block == nil {
		return CheckBlock(nil, env.Store.InternTypeNamed(env.Store.InternName("Nothing"), nil), source.Span{})
	}
	w.pushScope()
	defer w.popScope()

	var stmts []*Expr
	cur := env
	for _, sid := range block.Stmts {
		var e *Expr
		cur, e = w.WalkStmt(cur, sid)
		if e != nil {
			stmts = append(stmts, e)
		}
	}
	emptyTy := env.Store.InternTypeNamed(env.Store.InternName("Nothing"), nil)
	return CheckBlock(stmts, emptyTy, source.Span{})
}

// WalkLet is §4.I's let case driven from source: the initializer is walked
// first (in the outer scope, so it cannot see the name being declared),
// then the declared name is bound for the rest of the enclosing block.
func (w *Walker) WalkLet(env Env, id ast.StmtID) (Env, *Expr) {
	data := w.Builder.Stmts.Let(id)
	if data == nil {
		return env, nil
	}
	init := errExpr(env.Store, source.Span{})
	if data.Value.IsValid() {
		init = w.WalkExpr(env, data.Value)
	}
	sym := symbols.NoSymbolID
	node, ty := CheckLet(env, sym, ir.NoTypeID, init, source.Span{})
	next, _ := w.declareLocal(env, data.Name, ty)
	return next, node
}

// WalkIf is §4.I's If case driven from source.
func (w *Walker) WalkIf(env Env, id ast.StmtID) *Expr {
	data := w.Builder.Stmts.If(id)
	if data == nil {
		return nil
	}
	cond := w.WalkExpr(env, data.Cond)
	_, thenArm := w.WalkStmt(env, data.Then)
	var elseArm *Expr
	if data.Else.IsValid() {
		_, elseArm = w.WalkStmt(env, data.Else)
	}
	if thenArm == nil || elseArm == nil {
		return cond
	}
	return CheckIf(env, cond, thenArm, elseArm, source.Span{})
}

// WalkExpr dispatches the surface expression forms this driver currently
// understands; anything else (casts, collections, tasks, spawns — none of
// which this grammar ties to a permission-relevant §4.I case) becomes an
// invalid expression of the never type; its sub-expressions are not walked
// and no diagnostic is reported for it.
func (w *Walker) WalkExpr(env Env, id ast.ExprID) *Expr {
	e := w.Builder.Exprs.Get(id)
	if e == nil {
		return errExpr(env.Store, source.Span{})
	}
	switch e.Kind {
	case ast.ExprIdent:
		data, _ := w.Builder.Exprs.Ident(id)
		if data == nil {
			return errExpr(env.Store, e.Span)
		}
		lv, ok := w.lookupLocal(data.Name)
		if !ok {
			return errExpr(env.Store, e.Span)
		}
		sym := w.Resolved.ExprSymbols[id]
		return CheckVariable(env, lv.root, sym, e.Span)
	case ast.ExprLit:
		data, _ := w.Builder.Exprs.Literal(id)
		if data == nil {
			return errExpr(env.Store, e.Span)
		}
		return w.walkLiteral(env, *data, e.Span)
	case ast.ExprMember:
		data, _ := w.Builder.Exprs.Member(id)
		if data == nil {
			return errExpr(env.Store, e.Span)
		}
		owner := w.WalkExpr(env, data.Target)
		return LookupMember(env, owner, data.Field, e.Span)
	case ast.ExprBinary:
		data, _ := w.Builder.Exprs.Binary(id)
		if data == nil {
			return errExpr(env.Store, e.Span)
		}
		if data.Op == ast.ExprBinaryAssign {
			place := w.WalkExpr(env, data.Left)
			value := w.WalkExpr(env, data.Right)
			return CheckAssignment(env, place, value, e.Span)
		}
		w.WalkExpr(env, data.Left)
		w.WalkExpr(env, data.Right)
		return errExpr(env.Store, e.Span)
	case ast.ExprCall:
		data, _ := w.Builder.Exprs.Call(id)
		if data == nil {
			return errExpr(env.Store, e.Span)
		}
		method := w.WalkExpr(env, data.Target)
		args := make([]*Expr, len(data.Args))
		for i, a := range data.Args {
			args[i] = w.WalkExpr(env, a.Value)
		}
		if method.Kind() != ExprMethod {
			return errExpr(env.Store, e.Span)
		}
		return CheckMethodCall(env, method, args, e.Span)
	default:
		return errExpr(env.Store, e.Span)
	}
}

func (w *Walker) walkLiteral(env Env, data ast.ExprLiteralData, span source.Span) *Expr {
	switch data.Kind {
	case ast.ExprLitTrue, ast.ExprLitFalse:
		ctx := env.Store.InternTypeNamed(env.Store.InternName("Bool"), nil)
		return CheckLiteral(env, LiteralBool, ctx, ir.NoTypeID, span)
	case ast.ExprLitString:
		ctx := env.Store.InternTypeNamed(env.Store.InternName("String"), nil)
		return CheckLiteral(env, LiteralString, ctx, ir.NoTypeID, span)
	case ast.ExprLitInt, ast.ExprLitUint, ast.ExprLitFloat:
		v := env.Infer.FreshInfer(ir.ParamKindType)
		ctx := env.Store.InternType(ir.Type{Kind: ir.TyInfer, Infer: v})
		i32 := env.Store.InternTypeNamed(env.Store.InternName("I32"), nil)
		return CheckLiteral(env, LiteralNumeric, ctx, i32, span)
	default:
		nothing := env.Store.InternTypeNamed(env.Store.InternName("Nothing"), nil)
		return &Expr{kind: ExprLiteral, Type: nothing, Span: span}
	}
}
