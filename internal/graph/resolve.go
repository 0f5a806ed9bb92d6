// internal/graph/resolve.go
package graph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/mitchellh/mapstructure"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/models"
	"github.com/javajoker/catalog-backend/internal/utils"
)

// source resolves a field of an object backed by T, accepting both T and *T
// as the parent value.
func source[T any](fn func(p graphql.ResolveParams, src *T) (interface{}, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		switch src := p.Source.(type) {
		case *T:
			if src == nil {
				return nil, nil
			}
			return fn(p, src)
		case T:
			return fn(p, &src)
		}
		return nil, nil
	}
}

// attr resolves a plain attribute of T.
func attr[T any](fn func(src *T) interface{}) graphql.FieldResolveFn {
	return source(func(_ graphql.ResolveParams, src *T) (interface{}, error) {
		return fn(src), nil
	})
}

func language(es, en string) map[string]interface{} {
	return map[string]interface{}{"es": es, "en": en}
}

func optionalLanguage(es, en *string) interface{} {
	if es == nil && en == nil {
		return nil
	}
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return language(deref(es), deref(en))
}

// parseID reads an ID argument, which the engine hands over as a string.
func parseID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid id %q", v)
		}
		return uint(id), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid id %d", v)
		}
		return uint(v), nil
	}
	return 0, fmt.Errorf("invalid id %v", value)
}

func parseIDs(value interface{}) ([]uint, error) {
	items, _ := value.([]interface{})
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		id, err := parseID(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// optionalID reads a nullable ID argument.
func optionalID(args map[string]interface{}, name string) (*uint, error) {
	value, ok := args[name]
	if !ok || value == nil {
		return nil, nil
	}
	id, err := parseID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// decodeInput copies a GraphQL input object into a typed service input.
// ID strings are converted to numbers on the way.
func decodeInput(raw interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

// payload shapes a mutation result. Field errors are reported inside the
// payload; every other error surfaces as a GraphQL error.
func payload(key string, value interface{}, err error) (interface{}, error) {
	if err != nil {
		if fields, ok := apperror.FieldErrors(err); ok {
			return map[string]interface{}{key: nil, "errors": fields}, nil
		}
		return nil, err
	}
	return map[string]interface{}{key: value, "errors": nil}, nil
}

// loginRequired guards resolvers that need an authenticated user.
func loginRequired(next func(p graphql.ResolveParams, user *models.User) (interface{}, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		user := currentUser(p.Context)
		if user == nil {
			return nil, apperror.ErrLoginRequired
		}
		return next(p, user)
	}
}

func currentUser(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	return utils.UserFromContext(ctx)
}

func lang(ctx context.Context) string {
	if ctx == nil {
		return "en"
	}
	return utils.LangFromContext(ctx)
}
