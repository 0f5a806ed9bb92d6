// internal/handlers/graphql.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/location"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/graph"
	"github.com/javajoker/catalog-backend/internal/i18n"
	"github.com/javajoker/catalog-backend/internal/utils"
)

type graphQLError struct {
	Message    string                    `json:"message"`
	Locations  []location.SourceLocation `json:"locations,omitempty"`
	Path       []interface{}             `json:"path,omitempty"`
	Code       string                    `json:"code,omitempty"`
	Extensions map[string]interface{}    `json:"extensions,omitempty"`
}

type graphQLResponse struct {
	Data   interface{}    `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

type GraphQLHandler struct {
	schema graphql.Schema
}

func NewGraphQLHandler(schema graphql.Schema) *GraphQLHandler {
	return &GraphQLHandler{
		schema: schema,
	}
}

// GET|POST /graphql, /graphql_admin
func (h *GraphQLHandler) Serve(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	requests, batch, err := graph.ParseRequest(c.Request)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	if len(requests) == 0 {
		utils.BadRequestResponse(c, "Received an empty list in the batch request.", nil)
		return
	}

	status := http.StatusOK
	responses := make([]graphQLResponse, 0, len(requests))
	for _, req := range requests {
		switch {
		case req.Query == "":
			status = http.StatusBadRequest
			responses = append(responses, errorResponse("Must provide query string."))
		case c.Request.Method == http.MethodGet && graph.HasMutation(req.Query):
			status = http.StatusMethodNotAllowed
			responses = append(responses, errorResponse("Can only perform a mutation operation from a POST request."))
		default:
			responses = append(responses, h.execute(c, lang, req))
		}
	}

	if batch {
		c.JSON(status, responses)
		return
	}
	c.JSON(status, responses[0])
}

func (h *GraphQLHandler) execute(c *gin.Context, lang string, req graph.Request) graphQLResponse {
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.Request.Context(),
	})

	response := graphQLResponse{Data: result.Data}
	for _, formatted := range result.Errors {
		response.Errors = append(response.Errors, formatError(c, lang, formatted))
	}
	return response
}

func errorResponse(message string) graphQLResponse {
	return graphQLResponse{Errors: []graphQLError{{Message: message}}}
}

// formatError adds the domain code of the underlying error, if any, and
// localizes its message.
func formatError(c *gin.Context, lang string, formatted gqlerrors.FormattedError) graphQLError {
	out := graphQLError{
		Message:    formatted.Message,
		Locations:  formatted.Locations,
		Path:       formatted.Path,
		Extensions: formatted.Extensions,
	}

	cause := formatted.OriginalError()
	if located, ok := cause.(*gqlerrors.Error); ok {
		cause = located.OriginalError
	}

	var appErr *apperror.Error
	if cause != nil && errors.As(cause, &appErr) {
		out.Message = i18n.T(lang, appErr.Message)
		out.Code = appErr.Code
		if out.Extensions == nil {
			out.Extensions = map[string]interface{}{}
		}
		out.Extensions["code"] = appErr.Code
		return out
	}

	if cause != nil && len(formatted.Path) > 0 {
		logrus.WithFields(logrus.Fields{
			"path":       formatted.Path,
			"request_id": c.GetString(utils.ContextKeyRequestID),
		}).WithError(cause).Error("Resolver failed")
	}
	return out
}
