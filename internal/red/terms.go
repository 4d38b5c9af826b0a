// Package red implements the canonical "reduced term" representation used
// for subtyping (component F): red permissions, red types, and the lattice
// operations (lub/glb) defined over them (§3, §4.F).
package red

import (
	"fmt"

	"surge/internal/ir"
)

// LinkKind enumerates the shapes a red link may take (§3).
type LinkKind uint8

const (
	LinkOur LinkKind = iota
	LinkRef
	LinkMut
	LinkVar
	LinkInfer
	LinkError
)

func (k LinkKind) String() string {
	switch k {
	case LinkOur:
		return "our"
	case LinkRef:
		return "ref"
	case LinkMut:
		return "mut"
	case LinkVar:
		return "var"
	case LinkInfer:
		return "infer"
	default:
		return "error"
	}
}

// Link is one element of a red chain.
type Link struct {
	Kind  LinkKind
	Place ir.PlaceID // LinkRef, LinkMut
	Var   ir.VarID   // LinkVar
	Infer ir.InferID // LinkInfer
}

// Chain is a sequence of red links. A freshly-reduced non-`my` permission
// always yields a non-empty chain; the single exception is the identity
// chain produced by reducing bare `my`, represented as the zero-length
// chain so that concatenating it with anything is a no-op (my is the
// identity of application, §3's invariant, carried through reduction).
type Chain []Link

// IsIdentity reports whether c is the `my` identity sentinel.
func (c Chain) IsIdentity() bool { return len(c) == 0 }

func (c Chain) String() string {
	if c.IsIdentity() {
		return "my"
	}
	s := ""
	for i, l := range c {
		if i > 0 {
			s += " "
		}
		switch l.Kind {
		case LinkOur:
			s += "our"
		case LinkRef:
			s += fmt.Sprintf("ref[%d]", l.Place)
		case LinkMut:
			s += fmt.Sprintf("mut[%d]", l.Place)
		case LinkVar:
			s += fmt.Sprintf("%%perm%d", l.Var)
		case LinkInfer:
			s += fmt.Sprintf("?perm%d", l.Infer)
		default:
			s += "<error>"
		}
	}
	return s
}

// Perm is a red permission: a finite vecset of chains (§3). Each chain is
// an alternative provenance the permission could resolve to; a permission
// built from a single source (e.g. `our`) reduces to one chain, while
// `referenced[p, q]` reduces to two (one per place).
type Perm struct {
	Chains []Chain
}

// Identity is the reduction of bare `my`.
func Identity() Perm { return Perm{Chains: []Chain{{}}} }

// TyKind enumerates the shapes a red type may take (§3).
type TyKind uint8

const (
	TyNamed TyKind = iota
	TyNever
	TyVar
	TyInfer
	// TyPermMarker marks a permission lifted to type position (used when a
	// bare generic permission parameter appears where a type is expected).
	TyPermMarker
	TyError
)

// Ty captures just the "shape" of a reduced type.
type Ty struct {
	Kind TyKind

	Name ir.NameID
	Args []ir.GenericTerm // unreduced; related recursively during subtyping

	Var ir.VarID

	Infer ir.InferID

	Perm ir.PermID // TyPermMarker
}

// Term pairs a red permission with a red type (§3).
type Term struct {
	Perm Perm
	Ty   Ty
}
