// Package schema describes the menagerie output types by hand and executes
// selections against them.
//
// A Schema is a table from type name to field list, with one resolver per
// field. The Executor walks a caller's selection and calls a field's resolver
// only when that field is selected, so relations such as Zoo.animals are
// pulled on demand rather than attached to the parent value.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// Built-in scalar type names.
const (
	Int     = "Int"
	Float   = "Float"
	String  = "String"
	Boolean = "Boolean"
)

// TypenameField is the meta field naming the concrete type of an object.
const TypenameField = "__typename"

var scalars = map[string]bool{
	Int:     true,
	Float:   true,
	String:  true,
	Boolean: true,
}

// Schema errors.
var (
	ErrInvalidSchema    = errors.New("invalid schema")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrUnknownField     = errors.New("unknown field")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrNullValue        = errors.New("null value for non-null field")
)

// Params is passed to every field resolver.
type Params struct {
	// Store is the context the operation runs against.
	Store types.Store
	// Source is the resolved parent value; nil for root fields.
	Source any
	// Args holds coerced arguments keyed by name.
	Args map[string]any
}

// Resolver computes the value of one field.
type Resolver func(p Params) (any, error)

// Arg declares a field argument.
type Arg struct {
	Name string
	Type string

	ref TypeRef
}

// Field declares an output field. Type uses the usual notation, for example
// "Int!" or "[Animal!]!".
type Field struct {
	Name    string
	Type    string
	Args    []Arg
	Resolve Resolver

	ref TypeRef
}

// Type is implemented by *Object, *Interface and *InputObject.
type Type interface {
	TypeName() string
}

// Object is a concrete output type.
type Object struct {
	Name       string
	Interfaces []string
	Fields     []*Field

	fields map[string]*Field
}

// TypeName implements Type.
func (o *Object) TypeName() string { return o.Name }

// Field returns the named field or nil.
func (o *Object) Field(name string) *Field { return o.fields[name] }

// Implements reports whether o declares the interface iface.
func (o *Object) Implements(iface string) bool {
	for _, name := range o.Interfaces {
		if name == iface {
			return true
		}
	}
	return false
}

// Interface is an abstract output type. ResolveType names the concrete
// object type of a resolved value.
type Interface struct {
	Name        string
	Fields      []*Field
	ResolveType func(v any) string

	fields        map[string]*Field
	possibleTypes []string
}

// TypeName implements Type.
func (i *Interface) TypeName() string { return i.Name }

// Field returns the named field or nil.
func (i *Interface) Field(name string) *Field { return i.fields[name] }

// PossibleTypes returns the names of the objects implementing i, in
// declaration order.
func (i *Interface) PossibleTypes() []string { return i.possibleTypes }

// InputField declares a field of an input object.
type InputField struct {
	Name string
	Type string

	ref TypeRef
}

// InputObject is a structured argument type.
type InputObject struct {
	Name   string
	Fields []InputField
}

// TypeName implements Type.
func (in *InputObject) TypeName() string { return in.Name }

// Schema is a validated set of types with a query root and an optional
// mutation root.
type Schema struct {
	query      *Object
	mutation   *Object
	objects    map[string]*Object
	interfaces map[string]*Interface
	inputs     map[string]*InputObject
	order      []Type
}

// New validates the declarations and returns a Schema. Every named type
// referenced by a field or argument must be a scalar or one of the given
// types. Every object field must have a resolver. Objects must declare every
// field of the interfaces they implement.
func New(query, mutation *Object, decls ...Type) (*Schema, error) {
	if query == nil {
		return nil, fmt.Errorf("%w: query root is required", ErrInvalidSchema)
	}

	s := &Schema{
		query:      query,
		mutation:   mutation,
		objects:    make(map[string]*Object),
		interfaces: make(map[string]*Interface),
		inputs:     make(map[string]*InputObject),
	}

	all := append([]Type{}, decls...)
	all = append(all, query)
	if mutation != nil {
		all = append(all, mutation)
	}
	for _, d := range all {
		name := d.TypeName()
		if name == "" || scalars[name] {
			return nil, fmt.Errorf("%w: invalid type name %q", ErrInvalidSchema, name)
		}
		if s.lookup(name) != nil {
			return nil, fmt.Errorf("%w: duplicate type %q", ErrInvalidSchema, name)
		}
		switch t := d.(type) {
		case *Object:
			s.objects[name] = t
		case *Interface:
			s.interfaces[name] = t
		case *InputObject:
			s.inputs[name] = t
		default:
			return nil, fmt.Errorf("%w: unsupported declaration %T", ErrInvalidSchema, d)
		}
	}
	s.order = all

	for _, iface := range s.interfaces {
		if iface.ResolveType == nil {
			return nil, fmt.Errorf("%w: interface %s has no ResolveType", ErrInvalidSchema, iface.Name)
		}
		fields, err := s.indexFields(iface.Name, iface.Fields, false)
		if err != nil {
			return nil, err
		}
		iface.fields = fields
		iface.possibleTypes = nil
	}
	for _, obj := range s.objects {
		fields, err := s.indexFields(obj.Name, obj.Fields, true)
		if err != nil {
			return nil, err
		}
		obj.fields = fields
	}
	for _, in := range s.inputs {
		for i := range in.Fields {
			f := &in.Fields[i]
			ref, err := ParseTypeRef(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidSchema, in.Name, f.Name, err)
			}
			if !s.isInputType(ref.Named()) {
				return nil, fmt.Errorf("%w: %s.%s: %s is not an input type", ErrInvalidSchema, in.Name, f.Name, ref.Named())
			}
			f.ref = ref
		}
	}

	// Interface conformance, in declaration order so PossibleTypes is stable.
	for _, d := range s.order {
		obj, ok := d.(*Object)
		if !ok {
			continue
		}
		for _, name := range obj.Interfaces {
			iface, ok := s.interfaces[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s implements unknown interface %q", ErrInvalidSchema, obj.Name, name)
			}
			for _, f := range iface.Fields {
				of := obj.Field(f.Name)
				if of == nil || of.ref.String() != f.ref.String() {
					return nil, fmt.Errorf("%w: %s must declare %s.%s as %s", ErrInvalidSchema, obj.Name, iface.Name, f.Name, f.ref)
				}
			}
			iface.possibleTypes = append(iface.possibleTypes, obj.Name)
		}
	}

	return s, nil
}

// MustNew is like New but panics on an invalid schema.
func MustNew(query, mutation *Object, decls ...Type) *Schema {
	s, err := New(query, mutation, decls...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) indexFields(owner string, fields []*Field, needResolver bool) (map[string]*Field, error) {
	index := make(map[string]*Field, len(fields))
	for _, f := range fields {
		if f.Name == "" || strings.HasPrefix(f.Name, "__") {
			return nil, fmt.Errorf("%w: %s has invalid field name %q", ErrInvalidSchema, owner, f.Name)
		}
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %s.%s", ErrInvalidSchema, owner, f.Name)
		}
		ref, err := ParseTypeRef(f.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidSchema, owner, f.Name, err)
		}
		if !s.isOutputType(ref.Named()) {
			return nil, fmt.Errorf("%w: %s.%s: %s is not an output type", ErrInvalidSchema, owner, f.Name, ref.Named())
		}
		f.ref = ref
		for i := range f.Args {
			a := &f.Args[i]
			aref, err := ParseTypeRef(a.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s(%s): %v", ErrInvalidSchema, owner, f.Name, a.Name, err)
			}
			if !s.isInputType(aref.Named()) {
				return nil, fmt.Errorf("%w: %s.%s(%s): %s is not an input type", ErrInvalidSchema, owner, f.Name, a.Name, aref.Named())
			}
			a.ref = aref
		}
		if needResolver && f.Resolve == nil {
			return nil, fmt.Errorf("%w: %s.%s has no resolver", ErrInvalidSchema, owner, f.Name)
		}
		index[f.Name] = f
	}
	return index, nil
}

func (s *Schema) lookup(name string) Type {
	if o, ok := s.objects[name]; ok {
		return o
	}
	if i, ok := s.interfaces[name]; ok {
		return i
	}
	if in, ok := s.inputs[name]; ok {
		return in
	}
	return nil
}

func (s *Schema) isOutputType(name string) bool {
	if scalars[name] {
		return true
	}
	_, obj := s.objects[name]
	_, iface := s.interfaces[name]
	return obj || iface
}

func (s *Schema) isInputType(name string) bool {
	if scalars[name] {
		return true
	}
	_, ok := s.inputs[name]
	return ok
}

// Query returns the query root.
func (s *Schema) Query() *Object { return s.query }

// Mutation returns the mutation root, or nil.
func (s *Schema) Mutation() *Object { return s.mutation }

// Object returns the named object type, or nil.
func (s *Schema) Object(name string) *Object { return s.objects[name] }

// Interface returns the named interface type, or nil.
func (s *Schema) Interface(name string) *Interface { return s.interfaces[name] }

// Input returns the named input object type, or nil.
func (s *Schema) Input(name string) *InputObject { return s.inputs[name] }

// Types returns every declared type in declaration order, roots last.
func (s *Schema) Types() []Type {
	return append([]Type(nil), s.order...)
}
