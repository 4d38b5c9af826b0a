package ir

import (
	"fmt"
	"strings"
)

// PermString renders a permission for diagnostics labels (§4.E's OrElse
// handles quote these).
func (s *Store) PermString(id PermID) string {
	p, ok := s.LookupPerm(id)
	if !ok {
		return "<invalid>"
	}
	switch p.Kind {
	case PermMy:
		return "my"
	case PermOur:
		return "our"
	case PermReferenced:
		return "referenced" + s.placesSuffix(p.Places)
	case PermMutable:
		return "mutable" + s.placesSuffix(p.Places)
	case PermApp:
		return s.PermString(p.Left) + " " + s.PermString(p.Right)
	case PermVar:
		return fmt.Sprintf("%%perm%d", p.Var)
	case PermInfer:
		return fmt.Sprintf("?perm%d", p.Infer)
	case PermError:
		return "<error-perm>"
	default:
		return "<invalid-perm>"
	}
}

func (s *Store) placesSuffix(places []PlaceID) string {
	if len(places) == 0 {
		return "[]"
	}
	parts := make([]string, len(places))
	for i, p := range places {
		parts[i] = s.PlaceString(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PlaceString renders a place for diagnostics labels.
func (s *Store) PlaceString(id PlaceID) string {
	p, ok := s.LookupPlace(id)
	if !ok {
		return "<invalid>"
	}
	switch p.Kind {
	case PlaceConcrete:
		if v, isVar := PlaceVarID(p.Root); isVar {
			return fmt.Sprintf("%%place%d%s", v, fieldSuffix(p.Fields))
		}
		return fmt.Sprintf("$%d%s", p.Root, fieldSuffix(p.Fields))
	case PlaceInfer:
		return fmt.Sprintf("?place%d", p.Infer)
	case PlaceError:
		return "<error-place>"
	default:
		return "<invalid-place>"
	}
}

func fieldSuffix(fields []FieldID) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range fields {
		b.WriteByte('.')
		fmt.Fprintf(&b, "%d", f)
	}
	return b.String()
}

// TypeString renders a type for diagnostics labels.
func (s *Store) TypeString(id TypeID) string {
	t, ok := s.LookupType(id)
	if !ok {
		return "<invalid>"
	}
	switch t.Kind {
	case TyNamed:
		name := s.NameString(t.Name)
		if len(t.Args) == 0 {
			return name
		}
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = s.termString(a)
		}
		return name + "[" + strings.Join(parts, ", ") + "]"
	case TyPermApplied:
		return s.PermString(t.Perm) + " " + s.TypeString(t.Inner)
	case TyVar:
		return fmt.Sprintf("%%ty%d", t.Var)
	case TyInfer:
		return fmt.Sprintf("?ty%d", t.Infer)
	case TyNever:
		return "!"
	case TyError:
		return "<error-type>"
	default:
		return "<invalid-type>"
	}
}

func (s *Store) termString(t GenericTerm) string {
	switch t.Tag {
	case TagType:
		return s.TypeString(t.Type)
	case TagPerm:
		return s.PermString(t.Perm)
	case TagPlace:
		return s.PlaceString(t.Place)
	default:
		return "<invalid-term>"
	}
}
