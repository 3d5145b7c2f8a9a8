package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want SelectionSet
	}{
		{
			name: "leaf fields",
			src:  "{ key name }",
			want: Fields("key", "name"),
		},
		{
			name: "outer braces optional",
			src:  "key, name",
			want: Fields("key", "name"),
		},
		{
			name: "nested set",
			src:  "{ name animals { name } }",
			want: SelectionSet{
				{Name: "name"},
				{Name: "animals", Set: Fields("name")},
			},
		},
		{
			name: "alias",
			src:  "{ title: name }",
			want: SelectionSet{{Name: "name", Alias: "title"}},
		},
		{
			name: "inline fragments",
			src: `{
				name
				... on Lion { walkSpeed runSpeed }
				... on Shark { swimSpeed }
			}`,
			want: SelectionSet{
				{Name: "name"},
				{On: "Lion", Set: Fields("walkSpeed", "runSpeed")},
				{On: "Shark", Set: Fields("swimSpeed")},
			},
		},
		{
			name: "typename",
			src:  "{ __typename name }",
			want: Fields("__typename", "name"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelection(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSelectionErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "empty input", src: ""},
		{name: "empty braces", src: "{}"},
		{name: "empty nested set", src: "{ animals { } }"},
		{name: "unclosed brace", src: "{ name"},
		{name: "trailing brace", src: "{ name } }"},
		{name: "alias without field", src: "{ title: }"},
		{name: "fragment without on", src: "{ ... Lion { name } }"},
		{name: "fragment without set", src: "{ ... on Lion }"},
		{name: "two dots", src: "{ .. on Lion { name } }"},
		{name: "arguments", src: "{ getZoo(key: 1) { name } }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSelection(tt.src)
			assert.ErrorIs(t, err, ErrInvalidSelection)
		})
	}
}

func TestSelectionSetString(t *testing.T) {
	src := "{ name pets: animals { name ... on Lion { walkSpeed } } }"
	set := MustParseSelection(src)
	assert.Equal(t, src, set.String())

	again, err := ParseSelection(set.String())
	require.NoError(t, err)
	assert.Equal(t, set, again)
}

func TestMustParseSelectionPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseSelection("{") })
}
