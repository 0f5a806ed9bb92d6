// internal/graph/request.go
package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

const maxRequestBody = 1 << 20

// Request is one GraphQL operation as sent over HTTP.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// ParseRequest reads the operations of an HTTP request. A JSON array body is
// a batch. The body is restored so later handlers can read it again.
func ParseRequest(r *http.Request) ([]Request, bool, error) {
	if r.Method == http.MethodGet {
		req := Request{
			Query:         r.URL.Query().Get("query"),
			OperationName: r.URL.Query().Get("operationName"),
		}
		if raw := r.URL.Query().Get("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return nil, false, fmt.Errorf("variables are invalid JSON: %w", err)
			}
		}
		return []Request{req}, false, nil
	}

	if r.Body == nil {
		return nil, false, fmt.Errorf("empty request body")
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, false, fmt.Errorf("read body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/graphql") {
		return []Request{{Query: string(body)}}, false, nil
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []Request
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, true, fmt.Errorf("batch is invalid JSON: %w", err)
		}
		return batch, true, nil
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, false, fmt.Errorf("body is invalid JSON: %w", err)
	}
	return []Request{req}, false, nil
}

// IsReadOnly reports whether query parses and holds only query operations.
func IsReadOnly(query string) bool {
	document, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}

	for _, definition := range document.Definitions {
		if operation, ok := definition.(*ast.OperationDefinition); ok && operation.Operation != ast.OperationTypeQuery {
			return false
		}
	}
	return true
}

// HasMutation reports whether query parses and holds a mutation.
func HasMutation(query string) bool {
	document, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}

	for _, definition := range document.Definitions {
		if operation, ok := definition.(*ast.OperationDefinition); ok && operation.Operation == ast.OperationTypeMutation {
			return true
		}
	}
	return false
}
