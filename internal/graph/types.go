// internal/graph/types.go
package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// types holds the object types of one graph. The public and admin graphs
// build their own set because nested offer listings differ between them.
type types struct {
	svc   *Services
	admin bool

	language     *graphql.Object
	fieldError   *graphql.Object
	image        *graphql.Object
	material     *graphql.Object
	category     *graphql.Object
	offer        *graphql.Object
	user         *graphql.Object
	contactInfo  *graphql.Object
	manufacturer *graphql.Object
	message      *graphql.Object
	bulkPayload  *graphql.Object

	currency      *graphql.Enum
	offerSort     *graphql.Enum
	messageStatus *graphql.Enum

	languageInput *graphql.InputObject
	imageInput    *graphql.InputObject
}

func newTypes(svc *Services, admin bool) *types {
	t := &types{svc: svc, admin: admin}

	// Leaf types first; category and offer reference each other through thunks.
	t.currency = graphql.NewEnum(graphql.EnumConfig{
		Name: "Currency",
		Values: graphql.EnumValueConfigMap{
			"CUC": {Value: string(models.CurrencyCUC)},
			"USD": {Value: string(models.CurrencyUSD)},
			"CUP": {Value: string(models.CurrencyCUP)},
		},
	})
	t.offerSort = graphql.NewEnum(graphql.EnumConfig{
		Name: "OfferSort",
		Values: graphql.EnumValueConfigMap{
			"PRICE":      {Value: string(services.OfferSortPrice)},
			"CREATED_ON": {Value: string(services.OfferSortCreatedOn)},
			"UPDATED_ON": {Value: string(services.OfferSortUpdatedOn)},
		},
	})
	t.messageStatus = graphql.NewEnum(graphql.EnumConfig{
		Name: "MessageStatus",
		Values: graphql.EnumValueConfigMap{
			"UNREAD": {Value: string(models.MessageStatusUnread)},
			"READ":   {Value: string(models.MessageStatusRead)},
		},
	})

	t.language = graphql.NewObject(graphql.ObjectConfig{
		Name: "LanguageType",
		Fields: graphql.Fields{
			"es": &graphql.Field{Type: graphql.String},
			"en": &graphql.Field{Type: graphql.String},
		},
	})
	t.languageInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "LanguageInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"es": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"en": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	t.imageInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ImageInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"url":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"publicId": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	t.fieldError = graphql.NewObject(graphql.ObjectConfig{
		Name: "FieldError",
		Fields: graphql.Fields{
			"field": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: attr(func(e *apperror.FieldError) interface{} { return e.Field }),
			},
			"messages": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(graphql.String)),
				Resolve: source(func(p graphql.ResolveParams, e *apperror.FieldError) (interface{}, error) {
					messages := make([]string, 0, len(e.Messages))
					for _, message := range e.Messages {
						messages = append(messages, i18n.T(lang(p.Context), message))
					}
					return messages, nil
				}),
			},
		},
	})
	t.bulkPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "BulkPayload",
		Fields: graphql.Fields{
			"successIds": &graphql.Field{Type: graphql.NewList(graphql.ID)},
			"errors":     &graphql.Field{Type: graphql.NewList(t.fieldError)},
		},
	})

	t.image = graphql.NewObject(graphql.ObjectConfig{
		Name: "Image",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: attr(func(i *models.Image) interface{} { return i.ID })},
			"url":      &graphql.Field{Type: graphql.String, Resolve: attr(func(i *models.Image) interface{} { return i.URL })},
			"publicId": &graphql.Field{Type: graphql.String, Resolve: attr(func(i *models.Image) interface{} { return i.PublicID })},
		},
	})

	t.material = graphql.NewObject(graphql.ObjectConfig{
		Name: "Material",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: attr(func(m *models.Material) interface{} { return m.ID })},
			"title": &graphql.Field{Type: t.language, Resolve: attr(func(m *models.Material) interface{} { return language(m.TitleEs, m.TitleEn) })},
		},
	})

	t.category = graphql.NewObject(graphql.ObjectConfig{
		Name:   "Category",
		Fields: graphql.FieldsThunk(t.categoryFields),
	})
	t.offer = graphql.NewObject(graphql.ObjectConfig{
		Name:   "Offer",
		Fields: graphql.FieldsThunk(t.offerFields),
	})

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: attr(func(u *models.User) interface{} { return u.ID })},
			"email":    &graphql.Field{Type: graphql.String, Resolve: attr(func(u *models.User) interface{} { return u.Email })},
			"fullName": &graphql.Field{Type: graphql.String, Resolve: attr(func(u *models.User) interface{} { return u.FullName })},
			"isStaff":  &graphql.Field{Type: graphql.Boolean, Resolve: attr(func(u *models.User) interface{} { return u.IsStaff })},
			"joinedAt": &graphql.Field{Type: graphql.DateTime, Resolve: attr(func(u *models.User) interface{} { return u.JoinedAt })},
			"lastLoginAt": &graphql.Field{Type: graphql.DateTime, Resolve: attr(func(u *models.User) interface{} {
				if u.LastLoginAt == nil {
					return nil
				}
				return *u.LastLoginAt
			})},
		},
	})

	t.contactInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "ContactInfo",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: attr(func(c *models.ContactInfo) interface{} { return c.ID })},
			"email":       &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.ContactInfo) interface{} { return c.Email })},
			"phone":       &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.ContactInfo) interface{} { return c.Phone })},
			"address":     &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.ContactInfo) interface{} { return c.Address })},
			"twitter":     &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.ContactInfo) interface{} { return c.Twitter })},
			"facebook":    &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.ContactInfo) interface{} { return c.Facebook })},
			"linkedin":    &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.ContactInfo) interface{} { return c.Linkedin })},
			"about":       &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.ContactInfo) interface{} { return c.About })},
			"pdfUrl":      &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.ContactInfo) interface{} { return c.PdfURL })},
			"pdfPublicId": &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.ContactInfo) interface{} { return c.PdfPublicID })},
		},
	})

	t.manufacturer = graphql.NewObject(graphql.ObjectConfig{
		Name: "Manufacturer",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: attr(func(m *models.Manufacturer) interface{} { return m.ID })},
			"name":         &graphql.Field{Type: graphql.String, Resolve: attr(func(m *models.Manufacturer) interface{} { return m.Name })},
			"logoUrl":      &graphql.Field{Type: graphql.String, Resolve: attr(func(m *models.Manufacturer) interface{} { return m.LogoURL })},
			"logoPublicId": &graphql.Field{Type: graphql.String, Resolve: attr(func(m *models.Manufacturer) interface{} { return m.LogoPublicID })},
		},
	})

	t.message = graphql.NewObject(graphql.ObjectConfig{
		Name: "Message",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: attr(func(m *models.Message) interface{} { return m.ID })},
			"name":      &graphql.Field{Type: graphql.String, Resolve: attr(func(m *models.Message) interface{} { return m.Name })},
			"email":     &graphql.Field{Type: graphql.String, Resolve: attr(func(m *models.Message) interface{} { return m.Email })},
			"topic":     &graphql.Field{Type: graphql.String, Resolve: attr(func(m *models.Message) interface{} { return m.Topic })},
			"message":   &graphql.Field{Type: graphql.String, Resolve: attr(func(m *models.Message) interface{} { return m.Message })},
			"status":    &graphql.Field{Type: t.messageStatus, Resolve: attr(func(m *models.Message) interface{} { return string(m.Status) })},
			"createdAt": &graphql.Field{Type: graphql.DateTime, Resolve: attr(func(m *models.Message) interface{} { return m.CreatedAt })},
		},
	})

	return t
}

func (t *types) categoryFields() graphql.Fields {
	return graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: attr(func(c *models.Category) interface{} { return c.ID })},
		"title":       &graphql.Field{Type: t.language, Resolve: attr(func(c *models.Category) interface{} { return language(c.TitleEs, c.TitleEn) })},
		"description": &graphql.Field{Type: t.language, Resolve: attr(func(c *models.Category) interface{} { return language(c.DescriptionEs, c.DescriptionEn) })},
		"slug":        &graphql.Field{Type: t.language, Resolve: attr(func(c *models.Category) interface{} { return language(c.SlugEs, c.SlugEn) })},
		"order":       &graphql.Field{Type: graphql.Int, Resolve: attr(func(c *models.Category) interface{} { return c.Order })},
		"posterUrl":   &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.Category) interface{} { return c.PosterURL })},
		"posterPublicId": &graphql.Field{Type: graphql.String, Resolve: attr(func(c *models.Category) interface{} {
			return c.PosterPublicID
		})},
		"createdAt": &graphql.Field{Type: graphql.DateTime, Resolve: attr(func(c *models.Category) interface{} { return c.CreatedAt })},
		"updatedAt": &graphql.Field{Type: graphql.DateTime, Resolve: attr(func(c *models.Category) interface{} { return c.UpdatedAt })},
		"parentCategory": &graphql.Field{
			Type: t.category,
			Resolve: source(func(p graphql.ResolveParams, c *models.Category) (interface{}, error) {
				parent, err := t.svc.Categories.Parent(p.Context, c)
				if err != nil || parent == nil {
					return nil, err
				}
				return parent, nil
			}),
		},
		"subcategories": &graphql.Field{
			Type: graphql.NewList(t.category),
			Resolve: source(func(p graphql.ResolveParams, c *models.Category) (interface{}, error) {
				return t.svc.Categories.Subcategories(p.Context, c)
			}),
		},
		"materials": &graphql.Field{
			Type: graphql.NewList(t.material),
			Resolve: source(func(p graphql.ResolveParams, c *models.Category) (interface{}, error) {
				return t.svc.Categories.Materials(p.Context, c)
			}),
		},
		"offers": &graphql.Field{
			Type: graphql.NewList(t.offer),
			Args: t.offerFilterArgs(),
			Resolve: source(func(p graphql.ResolveParams, c *models.Category) (interface{}, error) {
				filters, err := t.offerFilters(p.Args)
				if err != nil {
					return nil, err
				}
				return t.svc.Categories.Offers(p.Context, c, filters)
			}),
		},
	}
}

func (t *types) offerFields() graphql.Fields {
	return graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: attr(func(o *models.Offer) interface{} { return o.ID })},
		"title":       &graphql.Field{Type: t.language, Resolve: attr(func(o *models.Offer) interface{} { return language(o.TitleEs, o.TitleEn) })},
		"description": &graphql.Field{Type: t.language, Resolve: attr(func(o *models.Offer) interface{} { return language(o.DescriptionEs, o.DescriptionEn) })},
		"shortDescription": &graphql.Field{Type: t.language, Resolve: attr(func(o *models.Offer) interface{} {
			return language(o.ShortDescriptionEs, o.ShortDescriptionEn)
		})},
		"slug":      &graphql.Field{Type: t.language, Resolve: attr(func(o *models.Offer) interface{} { return optionalLanguage(o.SlugEs, o.SlugEn) })},
		"permalink": &graphql.Field{Type: t.language, Resolve: attr(func(o *models.Offer) interface{} { return optionalLanguage(o.PermalinkEs, o.PermalinkEn) })},
		"price": &graphql.Field{Type: graphql.Float, Resolve: attr(func(o *models.Offer) interface{} {
			if o.Price == nil {
				return nil
			}
			return *o.Price
		})},
		"currency": &graphql.Field{Type: t.currency, Resolve: attr(func(o *models.Offer) interface{} {
			if o.Currency == nil {
				return nil
			}
			return string(*o.Currency)
		})},
		"onSale":      &graphql.Field{Type: graphql.Boolean, Resolve: attr(func(o *models.Offer) interface{} { return o.OnSale })},
		"recommended": &graphql.Field{Type: graphql.Boolean, Resolve: attr(func(o *models.Offer) interface{} { return o.Recommended })},
		"createdAt":   &graphql.Field{Type: graphql.DateTime, Resolve: attr(func(o *models.Offer) interface{} { return o.CreatedAt })},
		"updatedAt":   &graphql.Field{Type: graphql.DateTime, Resolve: attr(func(o *models.Offer) interface{} { return o.UpdatedAt })},
		"subcategory": &graphql.Field{
			Type: t.category,
			Resolve: source(func(p graphql.ResolveParams, o *models.Offer) (interface{}, error) {
				if o.Subcategory != nil {
					return o.Subcategory, nil
				}
				return t.svc.Offers.Subcategory(p.Context, o)
			}),
		},
		"images": &graphql.Field{
			Type: graphql.NewList(t.image),
			Resolve: source(func(p graphql.ResolveParams, o *models.Offer) (interface{}, error) {
				return t.svc.Offers.Images(p.Context, o)
			}),
		},
		"materials": &graphql.Field{
			Type: graphql.NewList(t.material),
			Resolve: source(func(p graphql.ResolveParams, o *models.Offer) (interface{}, error) {
				return t.svc.Offers.Materials(p.Context, o)
			}),
		},
	}
}

func (t *types) offerFilterArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"id":               &graphql.ArgumentConfig{Type: graphql.ID},
		"subcategory":      &graphql.ArgumentConfig{Type: graphql.ID},
		"parentCategory":   &graphql.ArgumentConfig{Type: graphql.ID},
		"priceGte":         &graphql.ArgumentConfig{Type: graphql.Float},
		"priceLte":         &graphql.ArgumentConfig{Type: graphql.Float},
		"titleDescription": &graphql.ArgumentConfig{Type: graphql.String},
		"materials":        &graphql.ArgumentConfig{Type: graphql.NewList(graphql.ID)},
		"recommended":      &graphql.ArgumentConfig{Type: graphql.Boolean},
		"sort":             &graphql.ArgumentConfig{Type: graphql.NewList(t.offerSort)},
	}
}

// offerFilters reads the filter arguments. The public graph only ever sees
// offers that are on sale.
func (t *types) offerFilters(args map[string]interface{}) (*services.OfferFilters, error) {
	filters := &services.OfferFilters{OnlyOnSale: !t.admin}

	var err error
	if filters.ID, err = optionalID(args, "id"); err != nil {
		return nil, err
	}
	if filters.Subcategory, err = optionalID(args, "subcategory"); err != nil {
		return nil, err
	}
	if filters.ParentCategory, err = optionalID(args, "parentCategory"); err != nil {
		return nil, err
	}
	if v, ok := args["priceGte"].(float64); ok {
		filters.PriceGte = &v
	}
	if v, ok := args["priceLte"].(float64); ok {
		filters.PriceLte = &v
	}
	if v, ok := args["titleDescription"].(string); ok {
		filters.TitleDescription = v
	}
	if v, ok := args["recommended"].(bool); ok {
		filters.Recommended = &v
	}
	if raw, ok := args["materials"]; ok {
		if filters.Materials, err = parseIDs(raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := args["sort"].([]interface{}); ok {
		for _, key := range raw {
			if s, ok := key.(string); ok {
				filters.Sort = append(filters.Sort, services.OfferSort(s))
			}
		}
	}

	return filters, nil
}

// pageType builds "<name>Page { page, limit, total, totalPages, results: [of] }".
func (t *types) pageType(name string, of graphql.Output) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Page",
		Fields: graphql.Fields{
			"page":       &graphql.Field{Type: graphql.Int, Resolve: attr(func(r *utils.PaginationResult) interface{} { return r.Page })},
			"limit":      &graphql.Field{Type: graphql.Int, Resolve: attr(func(r *utils.PaginationResult) interface{} { return r.Limit })},
			"total":      &graphql.Field{Type: graphql.Int, Resolve: attr(func(r *utils.PaginationResult) interface{} { return int(r.Total) })},
			"totalPages": &graphql.Field{Type: graphql.Int, Resolve: attr(func(r *utils.PaginationResult) interface{} { return r.TotalPages })},
			"results":    &graphql.Field{Type: graphql.NewList(of), Resolve: attr(func(r *utils.PaginationResult) interface{} { return r.Data })},
		},
	})
}

// payloadType builds "<name>Payload { <key>: <of>, errors: [FieldError] }".
func (t *types) payloadType(name, key string, of graphql.Output) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Payload",
		Fields: graphql.Fields{
			key:      &graphql.Field{Type: of},
			"errors": &graphql.Field{Type: graphql.NewList(t.fieldError)},
		},
	})
}
