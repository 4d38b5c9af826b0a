package checker

import (
	"surge/internal/ir"
	"surge/internal/source"
	"surge/internal/symbols"
)

// FieldDecl is one field of a class, as the checker needs it: a name (kept
// as the interned source.StringID symbols already uses, so lookups never
// need to re-intern) and a type that may itself mention the class's own
// generic parameters — Substitute with the receiver's GenericTerm args
// before relating it to anything.
type FieldDecl struct {
	Symbol symbols.SymbolID
	Type   ir.TypeID
}

// Signature is a function's or method's fully generic-parameterized shape:
// self (for methods; NoTypeID for standalone functions), positional
// parameter types, and a return type, all possibly mentioning the
// function's own GenericParams before a call site's binder is opened.
type Signature struct {
	GenericParams []ir.GenericParam
	// Vars holds the VarID each GenericParams entry was bound to when the
	// declaration's own ir.Binder was opened universally; Params/Return/Self
	// reference these ids wherever they mention a generic parameter. A call
	// site rebuilds a Subst from Vars to its own opened terms (ir.BindAll)
	// to instantiate the signature, the same way ir.Binder's own doc
	// comment describes re-binding a universally-opened declaration against
	// a call site's arguments.
	Vars   []ir.VarID
	Self   ir.TypeID
	Params []ir.TypeID
	Return ir.TypeID
}

// ClassDecl is a class/struct's checked shape: its own generic parameters
// and member list. Fields and methods are both looked up by name through
// Declarations.Member so §4.I's field-access and method-call cases share
// one search.
type ClassDecl struct {
	Symbol        symbols.SymbolID
	GenericParams []ir.GenericParam
	// Vars mirrors Signature.Vars: the VarID each GenericParams entry was
	// bound to when the class's own binder was opened, so a named type's
	// Args can be substituted into a field's declared type at an access
	// site (e.g. relating `Box[my String].value`'s declared `T` to `my
	// String`).
	Vars    []ir.VarID
	Fields  []FieldDecl
	Methods []symbols.SymbolID
}

// Declarations is the checker's view of every class and function signature
// visible to the item currently being checked, keyed by the symbols.SymbolID
// internal/resolve already resolved a name to. It is populated once per
// compilation (outside this package, by whatever walks the AST after name
// resolution) and then only read during expression checking.
//
// internal/ir has no notion of declarations — it only interns the terms a
// declaration's signature is built from (§3) — so this registry is where
// "what are Point's fields" and "what does sum return" actually live.
type Declarations struct {
	classes     map[symbols.SymbolID]*ClassDecl
	classByName map[ir.NameID]symbols.SymbolID
	signatures  map[symbols.SymbolID]*Signature
}

// NewDeclarations constructs an empty registry.
func NewDeclarations() *Declarations {
	return &Declarations{
		classes:     make(map[symbols.SymbolID]*ClassDecl),
		classByName: make(map[ir.NameID]symbols.SymbolID),
		signatures:  make(map[symbols.SymbolID]*Signature),
	}
}

// DeclareClass installs (or replaces) a class's checked shape. name is the
// ir.NameID a TyNamed referencing this class interns (internal/ir has no
// notion of symbols.SymbolID, so this is the one place the two identity
// spaces are tied together, for member_lookup.go's reverse lookup from a
// reduced type's Name back to the declaration to search).
func (d *Declarations) DeclareClass(sym symbols.SymbolID, name ir.NameID, decl *ClassDecl) {
	d.classes[sym] = decl
	d.classByName[name] = sym
}

// DeclareFunction installs (or replaces) a function's or method's signature.
func (d *Declarations) DeclareFunction(sym symbols.SymbolID, sig *Signature) {
	d.signatures[sym] = sig
}

// Class returns the checked shape for a class symbol, or nil if sym isn't
// one (or hasn't been declared yet).
func (d *Declarations) Class(sym symbols.SymbolID) *ClassDecl {
	return d.classes[sym]
}

// Signature returns a function's or method's checked signature, or nil.
func (d *Declarations) Signature(sym symbols.SymbolID) *Signature {
	return d.signatures[sym]
}

// Member is the result of searching a class for a name: either a field, a
// method, or neither. At most one of Field/Method is non-nil when Found.
type Member struct {
	Found  bool
	Owner  symbols.SymbolID
	Field  *FieldDecl
	Method symbols.SymbolID
}

// FindMember searches class for a field or method named name, grounded on
// member_lookup.rs's search_class_for_member: fields are tried first, then
// methods, first match wins (a class declaring both a field and a method of
// the same name is a duplicate-symbol error the resolver itself already
// reports at declare time, so this never has to pick between two hits).
func (d *Declarations) FindMember(table *symbols.Table, class *ClassDecl, name source.StringID) (Member, bool) {
	for i := range class.Fields {
		if sym := table.Symbols.Get(class.Fields[i].Symbol); sym != nil && sym.Name == name {
			return Member{Found: true, Owner: class.Symbol, Field: &class.Fields[i]}, true
		}
	}
	for _, m := range class.Methods {
		if sym := table.Symbols.Get(m); sym != nil && sym.Name == name {
			return Member{Found: true, Owner: class.Symbol, Method: m}, true
		}
	}
	return Member{}, false
}
