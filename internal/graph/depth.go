// internal/graph/depth.go
package graph

import (
	"fmt"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// MeasureDepth returns the nesting depth of a selection set whose own
// selections sit at level. Fragment spreads count as leaves.
func MeasureDepth(selectionSet *ast.SelectionSet, level int) int {
	maxDepth := level
	if selectionSet == nil {
		return maxDepth
	}

	for _, selection := range selectionSet.Selections {
		if child := selection.GetSelectionSet(); child != nil {
			if depth := MeasureDepth(child, level+1); depth > maxDepth {
				maxDepth = depth
			}
		}
	}
	return maxDepth
}

// CheckDepth reports whether every query operation in query stays within
// maxDepth. Mutations and subscriptions are not measured.
func CheckDepth(query string, maxDepth int) (bool, error) {
	document, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false, fmt.Errorf("parse query: %w", err)
	}

	for _, definition := range document.Definitions {
		operation, ok := definition.(*ast.OperationDefinition)
		if !ok || operation.Operation != ast.OperationTypeQuery {
			continue
		}
		if MeasureDepth(operation.SelectionSet, 1) > maxDepth {
			return false, nil
		}
	}
	return true, nil
}
