package graph

import (
	"testing"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstSelectionSet(t *testing.T, query string) *ast.SelectionSet {
	t.Helper()
	document, err := parser.Parse(parser.ParseParams{Source: query})
	require.NoError(t, err)
	operation, ok := document.Definitions[0].(*ast.OperationDefinition)
	require.True(t, ok)
	return operation.SelectionSet
}

func TestMeasureDepth(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"sibling leaves", `{ a b }`, 1},
		{"nested twice", `{ a { b { c } } }`, 3},
		{"deepest branch wins", `{ a { b } c { d { e { f } } } }`, 4},
		{"fragment spread is a leaf", `{ a { ...F } }`, 2},
		{"inline fragment adds a level", `{ a { ... on T { b } } }`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeasureDepth(firstSelectionSet(t, tt.query), 1))
		})
	}
}

func TestCheckDepth(t *testing.T) {
	ok, err := CheckDepth(`query { categories { subcategories { title { es } } } }`, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckDepth(`query { categories { subcategories { title { es } } } }`, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckDepthIgnoresMutations(t *testing.T) {
	ok, err := CheckDepth(`mutation { a { b { c { d } } } }`, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckDepthParseError(t *testing.T) {
	_, err := CheckDepth(`{ unclosed`, 10)
	assert.Error(t, err)
}
