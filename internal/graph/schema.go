// internal/graph/schema.go
package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/javajoker/catalog-backend/internal/services"
)

// Services are the collaborators the resolvers delegate to.
type Services struct {
	Auth       *services.AuthService
	Categories *services.CategoryService
	Offers     *services.OfferService
	Materials  *services.MaterialService
	Contact    *services.ContactService
}

// Schemas holds the two graphs served by the API: the public catalog and
// the staff-only admin graph.
type Schemas struct {
	Public graphql.Schema
	Admin  graphql.Schema
}

func NewSchemas(svc *Services) (*Schemas, error) {
	public, err := newPublicSchema(svc)
	if err != nil {
		return nil, fmt.Errorf("build public schema: %w", err)
	}

	admin, err := newAdminSchema(svc)
	if err != nil {
		return nil, fmt.Errorf("build admin schema: %w", err)
	}

	return &Schemas{Public: public, Admin: admin}, nil
}

// Get returns the admin schema for app "admin" and the public one otherwise.
func (s *Schemas) Get(app string) graphql.Schema {
	if app == "admin" {
		return s.Admin
	}
	return s.Public
}

func newPublicSchema(svc *Services) (graphql.Schema, error) {
	t := newTypes(svc, false)

	query := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: t.catalogQueries(),
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"login":         t.loginMutation(),
			"createMessage": t.createMessageMutation(),
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func newAdminSchema(svc *Services) (graphql.Schema, error) {
	t := newTypes(svc, true)

	queries := t.catalogQueries()
	for name, field := range t.adminQueries() {
		queries[name] = field
	}

	mutations := graphql.Fields{
		"login": t.loginMutation(),
	}
	for name, field := range t.adminMutations() {
		mutations[name] = field
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queries}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutations}),
	})
}
