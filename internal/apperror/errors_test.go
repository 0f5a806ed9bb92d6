package apperror

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCodeUnwrapsChain(t *testing.T) {
	err := fmt.Errorf("load category: %w", ErrCategoryDoesNotExist)

	assert.Equal(t, "invalid-category", Code(err))
	assert.True(t, IsDomain(err))
	assert.Equal(t, "", Code(fmt.Errorf("plain")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrDoesNotExist))
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", gorm.ErrRecordNotFound)))
	assert.True(t, IsNotFound(ErrCategoryDoesNotExist))
	assert.False(t, IsNotFound(ErrPermissionDenied))
}

func TestExtensionsCarryCode(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"code": "permission-denied"}, ErrPermissionDenied.Extensions())
}

func TestValidationErrorGroupsByField(t *testing.T) {
	v := &ValidationError{}
	require.NoError(t, v.OrNil())

	v.Add("title", "required")
	v.Add("price", "must be positive")
	v.Add("title", "too long")

	err := v.OrNil()
	require.Error(t, err)

	fields, ok := FieldErrors(fmt.Errorf("save: %w", err))
	require.True(t, ok)
	assert.Equal(t, []FieldError{
		{Field: "title", Messages: []string{"required", "too long"}},
		{Field: "price", Messages: []string{"must be positive"}},
	}, fields)
	assert.Contains(t, err.Error(), "title: required, too long")
}

func TestFieldWrapsCause(t *testing.T) {
	err := error(Field("title", "validation.duplicate_name", ErrDuplicateName))

	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, "duplicate-name", Code(err))

	fields, ok := FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "title", fields[0].Field)
}
