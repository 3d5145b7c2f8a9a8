package schema

import (
	"fmt"
	"strings"
)

// TypeRef is a parsed type reference such as "Zoo", "Int!" or "[Animal!]!".
type TypeRef struct {
	// Name is the named type; empty for lists.
	Name string
	// Elem is the element type of a list; nil for named types.
	Elem *TypeRef
	// NonNull is set by a trailing "!".
	NonNull bool
}

// ParseTypeRef parses the textual form of a type reference.
func ParseTypeRef(s string) (TypeRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeRef{}, fmt.Errorf("empty type reference")
	}

	var ref TypeRef
	if strings.HasSuffix(s, "!") {
		ref.NonNull = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "!"))
	}

	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return TypeRef{}, fmt.Errorf("unterminated list type %q", s)
		}
		elem, err := ParseTypeRef(s[1 : len(s)-1])
		if err != nil {
			return TypeRef{}, err
		}
		ref.Elem = &elem
		return ref, nil
	}

	if !isName(s) {
		return TypeRef{}, fmt.Errorf("invalid type name %q", s)
	}
	ref.Name = s
	return ref, nil
}

// Named returns the innermost named type.
func (r TypeRef) Named() string {
	if r.Elem != nil {
		return r.Elem.Named()
	}
	return r.Name
}

// IsList reports whether r is a list type.
func (r TypeRef) IsList() bool {
	return r.Elem != nil
}

func (r TypeRef) String() string {
	var s string
	if r.Elem != nil {
		s = "[" + r.Elem.String() + "]"
	} else {
		s = r.Name
	}
	if r.NonNull {
		s += "!"
	}
	return s
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
