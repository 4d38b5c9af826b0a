package ir

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Store is the hash-consing arena for types, permissions and places. Every
// interned term is canonical: structurally equal descriptors share an
// identity (§3 invariant). A Store lives for one checking run (driver.Check
// creates a fresh one); it never shrinks.
type Store struct {
	types     []Type
	typeIndex map[string]TypeID

	perms     []Permission
	permIndex map[string]PermID

	places     []Place
	placeIndex map[string]PlaceID

	names []string // debug-friendly names for NameID, 1-based
}

// NewStore constructs an empty Store, reserving index 0 as the invalid
// sentinel in each arena (mirrors types.Interner's convention).
func NewStore() *Store {
	s := &Store{
		typeIndex:  make(map[string]TypeID, 64),
		permIndex:  make(map[string]PermID, 64),
		placeIndex: make(map[string]PlaceID, 64),
	}
	s.types = append(s.types, Type{Kind: TyInvalid})
	s.perms = append(s.perms, Permission{Kind: PermInvalid})
	s.places = append(s.places, Place{Kind: PlaceInvalid})
	s.names = append(s.names, "")
	return s
}

// InternName assigns a stable NameID to a named type head (primitive,
// class, struct, tuple arity, future). Names are interned by their string
// form; callers that need richer identity (e.g. a class vs. a struct with
// the same spelling) should pre-qualify the string.
func (s *Store) InternName(spelling string) NameID {
	for i, n := range s.names {
		if n == spelling {
			return safeNameID(i)
		}
	}
	s.names = append(s.names, spelling)
	return safeNameID(len(s.names) - 1)
}

func (s *Store) NameString(id NameID) string {
	if int(id) >= len(s.names) {
		return "<invalid-name>"
	}
	return s.names[id]
}

func safeNameID(i int) NameID {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("ir: name id overflow: %w", err))
	}
	return NameID(v)
}

// InternType hash-conses a Type descriptor.
func (s *Store) InternType(t Type) TypeID {
	if t.Kind == TyInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := s.typeIndex[key]; ok {
		return id
	}
	id := safeTypeID(len(s.types))
	s.types = append(s.types, t)
	s.typeIndex[key] = id
	return id
}

// LookupType returns the descriptor stored for id.
func (s *Store) LookupType(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(s.types) {
		return Type{}, false
	}
	return s.types[id], true
}

// InternPerm hash-conses a Permission descriptor. `my ∘ P == P` and
// collapsing `our ∘ anything-redundant` is left to red-term normalization
// (§4.F); the interner stores exactly what it is given so that source-level
// permissions round-trip for diagnostics.
func (s *Store) InternPerm(p Permission) PermID {
	if p.Kind == PermInvalid {
		return NoPermID
	}
	key := permKey(p)
	if id, ok := s.permIndex[key]; ok {
		return id
	}
	id := safePermID(len(s.perms))
	s.perms = append(s.perms, p)
	s.permIndex[key] = id
	return id
}

func (s *Store) LookupPerm(id PermID) (Permission, bool) {
	if id == NoPermID || int(id) >= len(s.perms) {
		return Permission{}, false
	}
	return s.perms[id], true
}

// InternPlace hash-conses a Place descriptor.
func (s *Store) InternPlace(p Place) PlaceID {
	if p.Kind == PlaceInvalid {
		return NoPlaceID
	}
	key := placeKey(p)
	if id, ok := s.placeIndex[key]; ok {
		return id
	}
	id := safePlaceID(len(s.places))
	s.places = append(s.places, p)
	s.placeIndex[key] = id
	return id
}

func (s *Store) LookupPlace(id PlaceID) (Place, bool) {
	if id == NoPlaceID || int(id) >= len(s.places) {
		return Place{}, false
	}
	return s.places[id], true
}

// --- canonical key encoding -------------------------------------------------
//
// Types/permissions carry variable-length slices (generic args, place
// chains) so a fixed-size struct key (as internal/types uses for its
// generics-free Type) doesn't fit; instead each term is encoded into a
// short delimited string. This is not performance-sensitive: interning
// happens once per distinct term per checker run.

func typeKey(t Type) string {
	var b strings.Builder
	b.WriteString("t:")
	b.WriteString(strconv.Itoa(int(t.Kind)))
	b.WriteByte(':')
	switch t.Kind {
	case TyNamed:
		b.WriteString(strconv.Itoa(int(t.Name)))
		for _, a := range t.Args {
			b.WriteByte(',')
			writeTermKey(&b, a)
		}
	case TyPermApplied:
		b.WriteString(strconv.Itoa(int(t.Perm)))
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(int(t.Inner)))
	case TyVar:
		b.WriteString(strconv.Itoa(int(t.Var)))
	case TyInfer:
		b.WriteString(strconv.Itoa(int(t.Infer)))
	}
	return b.String()
}

func permKey(p Permission) string {
	var b strings.Builder
	b.WriteString("p:")
	b.WriteString(strconv.Itoa(int(p.Kind)))
	b.WriteByte(':')
	switch p.Kind {
	case PermReferenced, PermMutable:
		for _, pl := range p.Places {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(int(pl)))
		}
	case PermApp:
		b.WriteString(strconv.Itoa(int(p.Left)))
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(int(p.Right)))
	case PermVar:
		b.WriteString(strconv.Itoa(int(p.Var)))
	case PermInfer:
		b.WriteString(strconv.Itoa(int(p.Infer)))
	}
	return b.String()
}

func placeKey(p Place) string {
	var b strings.Builder
	b.WriteString("l:")
	b.WriteString(strconv.Itoa(int(p.Kind)))
	b.WriteByte(':')
	switch p.Kind {
	case PlaceConcrete:
		b.WriteString(strconv.Itoa(int(p.Root)))
		for _, f := range p.Fields {
			b.WriteByte('.')
			b.WriteString(strconv.Itoa(int(f)))
		}
	case PlaceInfer:
		b.WriteString(strconv.Itoa(int(p.Infer)))
	}
	return b.String()
}

func writeTermKey(b *strings.Builder, t GenericTerm) {
	switch t.Tag {
	case TagType:
		b.WriteString("T")
		b.WriteString(strconv.Itoa(int(t.Type)))
	case TagPerm:
		b.WriteString("P")
		b.WriteString(strconv.Itoa(int(t.Perm)))
	case TagPlace:
		b.WriteString("L")
		b.WriteString(strconv.Itoa(int(t.Place)))
	}
}

func safeTypeID(i int) TypeID {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("ir: type id overflow: %w", err))
	}
	return TypeID(v)
}

func safePermID(i int) PermID {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("ir: perm id overflow: %w", err))
	}
	return PermID(v)
}

func safePlaceID(i int) PlaceID {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("ir: place id overflow: %w", err))
	}
	return PlaceID(v)
}

// Convenience constructors for the permission/type constants named in §3.

// My returns the (always-shared) `my` permission id.
func (s *Store) My() PermID { return s.InternPerm(Permission{Kind: PermMy}) }

// Our returns the (always-shared) `our` permission id.
func (s *Store) Our() PermID { return s.InternPerm(Permission{Kind: PermOur}) }

// Referenced interns `referenced[places...]`.
func (s *Store) Referenced(places []PlaceID) PermID {
	return s.InternPerm(Permission{Kind: PermReferenced, Places: places})
}

// Mutable interns `mutable[places...]`.
func (s *Store) Mutable(places []PlaceID) PermID {
	return s.InternPerm(Permission{Kind: PermMutable, Places: places})
}

// ApplyPerm interns `left ∘ right`, applying the identity/absorption
// simplifications from §3's invariants: `my` is the identity on either
// side, and plain structural idempotence (my ∘ my) collapses too.
func (s *Store) ApplyPerm(left, right PermID) PermID {
	lp, _ := s.LookupPerm(left)
	rp, _ := s.LookupPerm(right)
	if lp.Kind == PermMy {
		return right
	}
	if rp.Kind == PermMy {
		return left
	}
	return s.InternPerm(Permission{Kind: PermApp, Left: left, Right: right})
}

// PermApplied interns `perm ∘ inner`, collapsing `my ∘ T == T`.
func (s *Store) PermApplied(perm PermID, inner TypeID) TypeID {
	pp, _ := s.LookupPerm(perm)
	if pp.Kind == PermMy {
		return inner
	}
	return s.InternType(Type{Kind: TyPermApplied, Perm: perm, Inner: inner})
}

// InternPermVar interns a reference to generic permission variable v.
func (s *Store) InternPermVar(v VarID) PermID {
	return s.InternPerm(Permission{Kind: PermVar, Var: v})
}

// InternTypeNamed interns `Name[args...]` with no wrapping permission.
func (s *Store) InternTypeNamed(name NameID, args []GenericTerm) TypeID {
	return s.InternType(Type{Kind: TyNamed, Name: name, Args: args})
}

// InternTypeVar interns a reference to generic type variable v.
func (s *Store) InternTypeVar(v VarID) TypeID {
	return s.InternType(Type{Kind: TyVar, Var: v})
}

// InternTypeNever interns the never type.
func (s *Store) InternTypeNever() TypeID {
	return s.InternType(Type{Kind: TyNever})
}
