package ir

// TermTag discriminates the tagged union making up a GenericTerm (§3).
type TermTag uint8

const (
	TagType TermTag = iota
	TagPerm
	TagPlace
)

// GenericTerm is the tagged union of Type, Permission and Place references,
// used as the payload of a generic argument or a substitution mapping.
type GenericTerm struct {
	Tag   TermTag
	Type  TypeID
	Perm  PermID
	Place PlaceID
}

func TypeTerm(id TypeID) GenericTerm   { return GenericTerm{Tag: TagType, Type: id} }
func PermTerm(id PermID) GenericTerm   { return GenericTerm{Tag: TagPerm, Perm: id} }
func PlaceTerm(id PlaceID) GenericTerm { return GenericTerm{Tag: TagPlace, Place: id} }

// Kind reports the declared kind a GenericTerm would satisfy as a
// substitution target, for the kind-check §4.A requires before accepting a
// substitution mapping.
func (t GenericTerm) Kind() GenericParamKind {
	switch t.Tag {
	case TagPerm:
		return ParamKindPerm
	case TagPlace:
		return ParamKindPlace
	default:
		return ParamKindType
	}
}

// TypeKind enumerates the shapes a Type may take (§3).
type TypeKind uint8

const (
	TyInvalid TypeKind = iota
	// TyNamed is `Name[generics...]`: a primitive, class, struct,
	// tuple-of-arity-n, or the future wrapper.
	TyNamed
	// TyPermApplied is `Perm ∘ Type`.
	TyPermApplied
	// TyVar is a reference to a generic variable of kind type.
	TyVar
	// TyInfer is a reference to an inference variable of kind type.
	TyInfer
	TyNever
	TyError
)

// Type is the interned descriptor for one of the shapes above. Only the
// fields relevant to Kind are meaningful; the rest are zero.
type Type struct {
	Kind TypeKind

	Name NameID        // TyNamed
	Args []GenericTerm // TyNamed generic arguments, in declaration order

	Perm  PermID // TyPermApplied
	Inner TypeID // TyPermApplied

	Var VarID // TyVar

	Infer InferID // TyInfer
}

// PermKind enumerates the shapes a Permission may take (§3).
type PermKind uint8

const (
	PermInvalid PermKind = iota
	PermMy
	PermOur
	// PermReferenced is `referenced[places...]`.
	PermReferenced
	// PermMutable is `mutable[places...]`.
	PermMutable
	// PermApp is `Perm1 ∘ Perm2` (application).
	PermApp
	PermVar
	PermInfer
	PermError
)

// Permission is the interned descriptor for a permission value.
type Permission struct {
	Kind PermKind

	Places []PlaceID // PermReferenced / PermMutable

	Left, Right PermID // PermApp

	Var VarID // PermVar

	Infer InferID // PermInfer
}

// PlaceRoot identifies the root program variable a Place chain starts from.
// ir treats it as an opaque identity: the checker/resolve layer owns the
// mapping from PlaceRoot back to a resolved program variable symbol, so
// that this package never needs to import internal/symbols.
type PlaceRoot uint32

// NoPlaceRoot marks the absence of a root (used only by error places).
const NoPlaceRoot PlaceRoot = 0

// PlaceKind enumerates the shapes a Place may take (§3).
type PlaceKind uint8

const (
	PlaceInvalid PlaceKind = iota
	// PlaceConcrete is a root variable plus a chain of field selectors.
	PlaceConcrete
	PlaceInfer
	PlaceError
)

// FieldID names one field selector in a place's chain; interned via the
// shared source.Interner so it compares by identity too.
type FieldID uint32

// Place is the interned descriptor for a place value.
type Place struct {
	Kind PlaceKind

	Root   PlaceRoot // PlaceConcrete
	Fields []FieldID // PlaceConcrete, root-to-leaf order

	Infer InferID // PlaceInfer
}
