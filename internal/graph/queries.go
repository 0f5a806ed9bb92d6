// internal/graph/queries.go
package graph

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// catalogQueries are served on both graphs. Offers that are not on sale are
// hidden on the public one.
func (t *types) catalogQueries() graphql.Fields {
	offerArgs := t.offerFilterArgs()
	offerArgs["page"] = &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1}
	offerArgs["limit"] = &graphql.ArgumentConfig{
		Type:         graphql.Int,
		DefaultValue: utils.DefaultPageLimit,
		Description:  fmt.Sprintf("Page size, %d by default and at most %d.", utils.DefaultPageLimit, utils.MaxPageLimit),
	}

	listOffers := func(p graphql.ResolveParams) ([]models.Offer, int64, utils.PaginationParams, error) {
		filters, err := t.offerFilters(p.Args)
		if err != nil {
			return nil, 0, utils.PaginationParams{}, err
		}
		page, _ := p.Args["page"].(int)
		limit, _ := p.Args["limit"].(int)
		pagination := utils.NewPaginationParams(page, limit)

		offers, total, err := t.svc.Offers.List(p.Context, filters, pagination)
		return offers, total, pagination, err
	}

	return graphql.Fields{
		"categories": &graphql.Field{
			Type: graphql.NewList(t.category),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return t.svc.Categories.ListRoots(p.Context)
			},
		},
		"category": &graphql.Field{
			Type: t.category,
			Args: graphql.FieldConfigArgument{
				"id":     &graphql.ArgumentConfig{Type: graphql.ID},
				"slugEs": &graphql.ArgumentConfig{Type: graphql.String},
				"slugEn": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				var lookup services.CategoryLookup
				id, err := optionalID(p.Args, "id")
				if err != nil {
					return nil, apperror.ErrCategoryDoesNotExist
				}
				lookup.ID = id
				if v, ok := p.Args["slugEs"].(string); ok {
					lookup.SlugEs = &v
				}
				if v, ok := p.Args["slugEn"].(string); ok {
					lookup.SlugEn = &v
				}
				return t.svc.Categories.Get(p.Context, lookup)
			},
		},
		"offers": &graphql.Field{
			Type:        graphql.NewList(t.offer),
			Description: "One page of offers. Use offersPage for the totals needed to walk every page.",
			Args:        offerArgs,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				offers, _, _, err := listOffers(p)
				return offers, err
			},
		},
		"offersPage": &graphql.Field{
			Type: t.pageType("Offer", t.offer),
			Args: offerArgs,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				offers, total, pagination, err := listOffers(p)
				if err != nil {
					return nil, err
				}
				return utils.CreatePaginationResult(offers, total, pagination), nil
			},
		},
		"offer": &graphql.Field{
			Type: t.offer,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id, err := parseID(p.Args["id"])
				if err != nil {
					return nil, apperror.ErrDoesNotExist
				}
				offer, err := t.svc.Offers.Get(p.Context, id, !t.admin)
				if errors.Is(err, apperror.ErrDoesNotExist) {
					return nil, nil
				}
				return offer, err
			},
		},
		"materials": &graphql.Field{
			Type: graphql.NewList(t.material),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return t.svc.Materials.List(p.Context)
			},
		},
		"contactInfo": &graphql.Field{
			Type: t.contactInfo,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				contact, err := t.svc.Contact.GetContactInfo(p.Context)
				if errors.Is(err, apperror.ErrDoesNotExist) {
					return nil, nil
				}
				return contact, err
			},
		},
		"manufacturers": &graphql.Field{
			Type: graphql.NewList(t.manufacturer),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return t.svc.Contact.ListManufacturers(p.Context)
			},
		},
	}
}

func (t *types) adminQueries() graphql.Fields {
	pageArgs := func() graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{
			"page":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
			"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: utils.DefaultPageLimit},
		}
	}
	listMessages := func(p graphql.ResolveParams) ([]models.Message, int64, utils.PaginationParams, error) {
		page, _ := p.Args["page"].(int)
		limit, _ := p.Args["limit"].(int)
		pagination := utils.NewPaginationParams(page, limit)
		messages, total, err := t.svc.Contact.ListMessages(p.Context, pagination)
		return messages, total, pagination, err
	}

	return graphql.Fields{
		"me": &graphql.Field{
			Type: t.user,
			Resolve: loginRequired(func(p graphql.ResolveParams, user *models.User) (interface{}, error) {
				return user, nil
			}),
		},
		"messages": &graphql.Field{
			Type: graphql.NewList(t.message),
			Args: pageArgs(),
			Resolve: loginRequired(func(p graphql.ResolveParams, _ *models.User) (interface{}, error) {
				messages, _, _, err := listMessages(p)
				return messages, err
			}),
		},
		"messagesPage": &graphql.Field{
			Type: t.pageType("Message", t.message),
			Args: pageArgs(),
			Resolve: loginRequired(func(p graphql.ResolveParams, _ *models.User) (interface{}, error) {
				messages, total, pagination, err := listMessages(p)
				if err != nil {
					return nil, err
				}
				return utils.CreatePaginationResult(messages, total, pagination), nil
			}),
		},
		"message": &graphql.Field{
			Type: t.message,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: loginRequired(func(p graphql.ResolveParams, _ *models.User) (interface{}, error) {
				id, err := parseID(p.Args["id"])
				if err != nil {
					return nil, apperror.ErrDoesNotExist
				}
				return t.svc.Contact.ReadMessage(p.Context, id)
			}),
		},
	}
}
