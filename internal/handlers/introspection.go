// internal/handlers/introspection.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-backend/internal/graph"
	"github.com/javajoker/catalog-backend/internal/utils"
)

const introspectionQuery = `
query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types { ...FullType }
    directives {
      name
      description
      locations
      args { ...InputValue }
    }
  }
}

fragment FullType on __Type {
  kind
  name
  description
  fields(includeDeprecated: true) {
    name
    description
    args { ...InputValue }
    type { ...TypeRef }
    isDeprecated
    deprecationReason
  }
  inputFields { ...InputValue }
  interfaces { ...TypeRef }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes { ...TypeRef }
}

fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
              ofType {
                kind
                name
              }
            }
          }
        }
      }
    }
  }
}
`

type IntrospectionHandler struct {
	schemas *graph.Schemas
}

func NewIntrospectionHandler(schemas *graph.Schemas) *IntrospectionHandler {
	return &IntrospectionHandler{
		schemas: schemas,
	}
}

// GET /graphql_introspection_schema?app=admin
func (h *IntrospectionHandler) Schema(c *gin.Context) {
	user, ok := utils.GetUserFromContext(c)
	if !ok || !user.IsStaff {
		utils.ForbiddenResponse(c)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:        h.schemas.Get(c.Query("app")),
		RequestString: introspectionQuery,
		Context:       c.Request.Context(),
	})
	if result.HasErrors() {
		logrus.WithField("errors", result.Errors).Error("Introspection failed")
		utils.InternalErrorResponse(c, "")
		return
	}

	body, err := json.Marshal(gin.H{"data": result.Data})
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}
