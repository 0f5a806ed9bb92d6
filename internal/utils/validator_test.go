package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/catalog-backend/internal/apperror"
)

type signupInput struct {
	Email    string  `json:"email" validate:"required,confusable_email,email"`
	Name     string  `json:"fullName" validate:"required,max=10"`
	Currency *string `json:"currency" validate:"omitempty,currency"`
}

func TestConfusableEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"john@example.com", true},
		{"jose.perez@correo.cu", true},
		{"pаypal@example.com", false}, // Cyrillic "а" in the local part
		{"admin@exаmple.com", false},  // Cyrillic "а" in the domain
		{"иван@пример.рф", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateStruct(&signupInput{Email: tt.email, Name: "x"})
			if tt.valid {
				for _, e := range GetValidationErrors(err) {
					assert.NotEqual(t, "confusable_email", e.Tag)
				}
				return
			}
			require.Error(t, err)
			tags := []string{}
			for _, e := range GetValidationErrors(err) {
				tags = append(tags, e.Tag)
			}
			assert.Contains(t, tags, "confusable_email")
		})
	}
}

func TestValidateFieldsUsesJSONNames(t *testing.T) {
	bad := "EUR"
	v := ValidateFields(&signupInput{Email: "a@example.com", Name: "much too long name", Currency: &bad})
	require.NotNil(t, v)

	fields := map[string][]string{}
	for _, f := range v.Fields {
		fields[f.Field] = f.Messages
	}
	assert.Contains(t, fields, "fullName")
	assert.Contains(t, fields, "currency")
	assert.NotContains(t, fields, "email")
}

func TestValidateFieldsValid(t *testing.T) {
	usd := "USD"
	assert.Nil(t, ValidateFields(&signupInput{Email: "a@example.com", Name: "ok", Currency: &usd}))
	assert.Nil(t, ValidateFields(&signupInput{Email: "a@example.com", Name: "ok"}))
}

func TestValidateFieldsReturnsTypedError(t *testing.T) {
	v := ValidateFields(&signupInput{})
	require.NotNil(t, v)

	var err error = v
	fields, ok := apperror.FieldErrors(err)
	require.True(t, ok)
	assert.NotEmpty(t, fields)
}
