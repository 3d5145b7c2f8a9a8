package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(v any) Resolver {
	return func(Params) (any, error) { return v, nil }
}

func TestNewValidates(t *testing.T) {
	named := &Interface{
		Name:        "Named",
		Fields:      []*Field{{Name: "name", Type: "String!"}},
		ResolveType: func(any) string { return "Pet" },
	}

	tests := []struct {
		name  string
		query *Object
		decls []Type
	}{
		{
			name:  "missing query root",
			query: nil,
		},
		{
			name:  "unknown field type",
			query: &Object{Name: "Query", Fields: []*Field{{Name: "pet", Type: "Pet", Resolve: constant(nil)}}},
		},
		{
			name:  "missing resolver",
			query: &Object{Name: "Query", Fields: []*Field{{Name: "hello", Type: "String"}}},
		},
		{
			name:  "duplicate field",
			query: &Object{Name: "Query", Fields: []*Field{{Name: "a", Type: "Int", Resolve: constant(1)}, {Name: "a", Type: "Int", Resolve: constant(1)}}},
		},
		{
			name:  "reserved field name",
			query: &Object{Name: "Query", Fields: []*Field{{Name: "__typename", Type: "String", Resolve: constant("")}}},
		},
		{
			name: "output type as argument",
			query: &Object{Name: "Query", Fields: []*Field{{
				Name: "pet", Type: "Int", Args: []Arg{{Name: "q", Type: "Query"}}, Resolve: constant(1),
			}}},
		},
		{
			name:  "duplicate type",
			query: &Object{Name: "Query", Fields: []*Field{{Name: "a", Type: "Int", Resolve: constant(1)}}},
			decls: []Type{&InputObject{Name: "Query"}},
		},
		{
			name:  "scalar name reused",
			query: &Object{Name: "Query", Fields: []*Field{{Name: "a", Type: "Int", Resolve: constant(1)}}},
			decls: []Type{&InputObject{Name: "Int"}},
		},
		{
			name:  "interface field missing",
			query: &Object{Name: "Query", Fields: []*Field{{Name: "a", Type: "Named", Resolve: constant(nil)}}},
			decls: []Type{named, &Object{Name: "Pet", Interfaces: []string{"Named"}, Fields: []*Field{{Name: "age", Type: "Int", Resolve: constant(1)}}}},
		},
		{
			name:  "interface field type differs",
			query: &Object{Name: "Query", Fields: []*Field{{Name: "a", Type: "Named", Resolve: constant(nil)}}},
			decls: []Type{named, &Object{Name: "Pet", Interfaces: []string{"Named"}, Fields: []*Field{{Name: "name", Type: "String", Resolve: constant("")}}}},
		},
		{
			name:  "unknown interface",
			query: &Object{Name: "Query", Interfaces: []string{"Node"}, Fields: []*Field{{Name: "a", Type: "Int", Resolve: constant(1)}}},
		},
		{
			name:  "interface without ResolveType",
			query: &Object{Name: "Query", Fields: []*Field{{Name: "a", Type: "Int", Resolve: constant(1)}}},
			decls: []Type{&Interface{Name: "Node", Fields: []*Field{{Name: "id", Type: "Int!"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.query, nil, tt.decls...)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}
}

func TestNewIndexesTypes(t *testing.T) {
	named := &Interface{
		Name:        "Named",
		Fields:      []*Field{{Name: "name", Type: "String!"}},
		ResolveType: func(any) string { return "Cat" },
	}
	cat := &Object{Name: "Cat", Interfaces: []string{"Named"}, Fields: []*Field{{Name: "name", Type: "String!", Resolve: constant("Tom")}}}
	dog := &Object{Name: "Dog", Interfaces: []string{"Named"}, Fields: []*Field{{Name: "name", Type: "String!", Resolve: constant("Rex")}}}
	query := &Object{Name: "Query", Fields: []*Field{{Name: "pet", Type: "Named", Resolve: constant(nil)}}}

	s, err := New(query, nil, named, cat, dog)
	require.NoError(t, err)

	assert.Same(t, query, s.Query())
	assert.Nil(t, s.Mutation())
	assert.Same(t, cat, s.Object("Cat"))
	assert.Same(t, named, s.Interface("Named"))
	assert.Nil(t, s.Object("Named"))
	assert.Nil(t, s.Input("Named"))
	assert.Equal(t, []string{"Cat", "Dog"}, named.PossibleTypes())
	assert.True(t, dog.Implements("Named"))
	assert.False(t, query.Implements("Named"))

	names := make([]string, 0)
	for _, typ := range s.Types() {
		names = append(names, typ.TypeName())
	}
	assert.Equal(t, []string{"Named", "Cat", "Dog", "Query"}, names)
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() { MustNew(nil, nil) })
}
