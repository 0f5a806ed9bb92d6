// internal/graph/mutations.go
package graph

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/javajoker/catalog-backend/internal/bulk"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/services"
)

func (t *types) loginMutation() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewObject(graphql.ObjectConfig{
			Name: "LoginPayload",
			Fields: graphql.Fields{
				"token":  &graphql.Field{Type: graphql.String},
				"user":   &graphql.Field{Type: t.user},
				"errors": &graphql.Field{Type: graphql.NewList(t.fieldError)},
			},
		}),
		Args: graphql.FieldConfigArgument{
			"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			email, _ := p.Args["email"].(string)
			password, _ := p.Args["password"].(string)

			resp, err := t.svc.Auth.Login(p.Context, &services.LoginRequest{Email: email, Password: password})
			if err != nil {
				return payload("token", nil, err)
			}
			return map[string]interface{}{"token": resp.Token, "user": resp.User, "errors": nil}, nil
		},
	}
}

func (t *types) createMessageMutation() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewObject(graphql.ObjectConfig{
			Name: "CreateMessagePayload",
			Fields: graphql.Fields{
				"success": &graphql.Field{Type: graphql.Boolean},
				"errors":  &graphql.Field{Type: graphql.NewList(t.fieldError)},
			},
		}),
		Args: graphql.FieldConfigArgument{
			"name":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"email":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"topic":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"message": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			var input services.MessageInput
			if err := decodeInput(p.Args, &input); err != nil {
				return nil, err
			}
			_, err := t.svc.Contact.CreateMessage(p.Context, &input)
			return payload("success", true, err)
		},
	}
}

// bulkMutation exposes a bulk operation over an "ids" argument.
func (t *types) bulkMutation(run func(ctx context.Context, ids []uint) (*bulk.Result, error)) *graphql.Field {
	return &graphql.Field{
		Type: t.bulkPayload,
		Args: graphql.FieldConfigArgument{
			"ids": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
		},
		Resolve: loginRequired(func(p graphql.ResolveParams, _ *models.User) (interface{}, error) {
			ids, err := parseIDs(p.Args["ids"])
			if err != nil {
				return nil, err
			}
			result, err := run(p.Context, ids)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"successIds": result.SuccessIDs, "errors": result.Errors}, nil
		}),
	}
}

// editMutation exposes a create (no id) or update (with id) mutation whose
// input is decoded into a fresh In.
func editMutation[In any, Out any](t *types, name, key string, of graphql.Output, input *graphql.InputObject, withID bool,
	run func(ctx context.Context, id uint, input *In) (Out, error)) *graphql.Field {
	args := graphql.FieldConfigArgument{
		"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(input)},
	}
	if withID {
		args["id"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}
	}

	return &graphql.Field{
		Type: t.payloadType(name, key, of),
		Args: args,
		Resolve: loginRequired(func(p graphql.ResolveParams, _ *models.User) (interface{}, error) {
			var id uint
			if withID {
				var err error
				if id, err = parseID(p.Args["id"]); err != nil {
					return nil, err
				}
			}

			in := new(In)
			if err := decodeInput(p.Args["input"], in); err != nil {
				return nil, err
			}
			if hook, ok := any(in).(interface{ fromArgs(map[string]interface{}) }); ok {
				raw, _ := p.Args["input"].(map[string]interface{})
				hook.fromArgs(raw)
			}

			out, err := run(p.Context, id, in)
			return payload(key, out, err)
		}),
	}
}

func (t *types) adminMutations() graphql.Fields {
	categoryInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CategoryInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"parentCategory": &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"title":          &graphql.InputObjectFieldConfig{Type: t.languageInput},
			"description":    &graphql.InputObjectFieldConfig{Type: t.languageInput},
			"order":          &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"posterUrl":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"posterPublicId": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	offerInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OfferInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"subcategory": &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"title":       &graphql.InputObjectFieldConfig{Type: t.languageInput},
			"description": &graphql.InputObjectFieldConfig{Type: t.languageInput},
			"price":       &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"clearPrice": &graphql.InputObjectFieldConfig{
				Type:        graphql.Boolean,
				Description: "Removes the price and its currency.",
			},
			"currency":    &graphql.InputObjectFieldConfig{Type: t.currency},
			"recommended": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
			"images":      &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(t.imageInput))},
			"materials":   &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.ID))},
		},
	})
	materialInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "MaterialInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title": &graphql.InputObjectFieldConfig{Type: t.languageInput},
		},
	})
	manufacturerInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ManufacturerInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":         &graphql.InputObjectFieldConfig{Type: graphql.String},
			"logoUrl":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"logoPublicId": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	contactInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ContactInfoInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"phone":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"address":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"twitter":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"facebook":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"linkedin":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"about":       &graphql.InputObjectFieldConfig{Type: graphql.String},
			"pdfUrl":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"pdfPublicId": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	categories := t.svc.Categories
	offers := t.svc.Offers
	materials := t.svc.Materials
	contact := t.svc.Contact

	return graphql.Fields{
		"createCategory": editMutation(t, "CreateCategory", "category", t.category, categoryInput, false,
			func(ctx context.Context, _ uint, in *services.CategoryInput) (*models.Category, error) {
				return categories.Create(ctx, in)
			}),
		"updateCategory": editMutation(t, "UpdateCategory", "category", t.category, categoryInput, true,
			func(ctx context.Context, id uint, in *services.CategoryInput) (*models.Category, error) {
				return categories.Update(ctx, id, in)
			}),
		"deleteCategory": t.bulkMutation(categories.DeleteBulk),

		"createOffer": editMutation(t, "CreateOffer", "offer", t.offer, offerInput, false,
			func(ctx context.Context, _ uint, in *offerInputArgs) (*models.Offer, error) {
				return offers.Create(ctx, &in.OfferInput)
			}),
		"updateOffer": editMutation(t, "UpdateOffer", "offer", t.offer, offerInput, true,
			func(ctx context.Context, id uint, in *offerInputArgs) (*models.Offer, error) {
				return offers.Update(ctx, id, &in.OfferInput)
			}),
		"deleteOffer": t.bulkMutation(offers.DeleteBulk),
		"activateOffer": t.bulkMutation(func(ctx context.Context, ids []uint) (*bulk.Result, error) {
			return offers.SetOnSaleBulk(ctx, ids, true)
		}),
		"deactivateOffer": t.bulkMutation(func(ctx context.Context, ids []uint) (*bulk.Result, error) {
			return offers.SetOnSaleBulk(ctx, ids, false)
		}),
		"addRecommendOffer": t.bulkMutation(func(ctx context.Context, ids []uint) (*bulk.Result, error) {
			return offers.SetRecommendedBulk(ctx, ids, true)
		}),
		"deleteRecommendOffer": t.bulkMutation(func(ctx context.Context, ids []uint) (*bulk.Result, error) {
			return offers.SetRecommendedBulk(ctx, ids, false)
		}),
		"deleteImage": &graphql.Field{
			Type: t.successPayload("DeleteImage"),
			Args: graphql.FieldConfigArgument{
				"publicId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: loginRequired(func(p graphql.ResolveParams, _ *models.User) (interface{}, error) {
				publicID, _ := p.Args["publicId"].(string)
				if err := offers.DeleteImage(p.Context, publicID); err != nil {
					return nil, err
				}
				return map[string]interface{}{"success": true}, nil
			}),
		},

		"createMaterial": editMutation(t, "CreateMaterial", "material", t.material, materialInput, false,
			func(ctx context.Context, _ uint, in *services.MaterialInput) (*models.Material, error) {
				return materials.Create(ctx, in)
			}),
		"updateMaterial": editMutation(t, "UpdateMaterial", "material", t.material, materialInput, true,
			func(ctx context.Context, id uint, in *services.MaterialInput) (*models.Material, error) {
				return materials.Update(ctx, id, in)
			}),
		"deleteMaterial": t.bulkMutation(materials.DeleteBulk),

		"createManufacturer": editMutation(t, "CreateManufacturer", "manufacturer", t.manufacturer, manufacturerInput, false,
			func(ctx context.Context, _ uint, in *services.ManufacturerInput) (*models.Manufacturer, error) {
				return contact.CreateManufacturer(ctx, in)
			}),
		"updateManufacturer": editMutation(t, "UpdateManufacturer", "manufacturer", t.manufacturer, manufacturerInput, true,
			func(ctx context.Context, id uint, in *services.ManufacturerInput) (*models.Manufacturer, error) {
				return contact.UpdateManufacturer(ctx, id, in)
			}),
		"deleteManufacturer": t.bulkMutation(contact.DeleteManufacturerBulk),

		"updateContactInfo": editMutation(t, "UpdateContactInfo", "contactInfo", t.contactInfo, contactInput, false,
			func(ctx context.Context, _ uint, in *services.ContactInfoInput) (*models.ContactInfo, error) {
				return contact.UpdateContactInfo(ctx, in)
			}),
		"deleteMessage": t.bulkMutation(contact.DeleteMessageBulk),

		"logout": &graphql.Field{
			Type: t.successPayload("Logout"),
			Resolve: loginRequired(func(p graphql.ResolveParams, user *models.User) (interface{}, error) {
				if err := t.svc.Auth.RevokeAllSessions(p.Context, user); err != nil {
					return nil, err
				}
				return map[string]interface{}{"success": true}, nil
			}),
		},
		"changePassword": &graphql.Field{
			Type: graphql.NewObject(graphql.ObjectConfig{
				Name: "ChangePasswordPayload",
				Fields: graphql.Fields{
					"token":  &graphql.Field{Type: graphql.String},
					"errors": &graphql.Field{Type: graphql.NewList(t.fieldError)},
				},
			}),
			Args: graphql.FieldConfigArgument{
				"oldPassword": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"newPassword": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: loginRequired(func(p graphql.ResolveParams, user *models.User) (interface{}, error) {
				var req services.ChangePasswordRequest
				if err := decodeInput(p.Args, &req); err != nil {
					return nil, err
				}
				resp, err := t.svc.Auth.ChangePassword(p.Context, user, &req)
				if err != nil {
					return payload("token", nil, err)
				}
				return payload("token", resp.Token, nil)
			}),
		},
	}
}

func (t *types) successPayload(name string) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Payload",
		Fields: graphql.Fields{
			"success": &graphql.Field{Type: graphql.Boolean},
		},
	})
}

// offerInputArgs records whether the request touched the price. An absent
// price keeps the stored one; clearPrice removes it.
type offerInputArgs struct {
	services.OfferInput
}

func (a *offerInputArgs) fromArgs(raw map[string]interface{}) {
	_, a.PriceProvided = raw["price"]
	if clearPrice, _ := raw["clearPrice"].(bool); clearPrice {
		a.Price = nil
		a.PriceProvided = true
	}
}
