// internal/utils/validator.go
package utils

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/catalog-backend/internal/apperror"
	"github.com/javajoker/catalog-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterValidation("confusable_email", validateConfusableEmail)
	validate.RegisterValidation("currency", validateCurrency)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// Report field errors under the names clients send.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// validateConfusableEmail rejects addresses whose local part or domain mixes
// letters from different scripts, e.g. a Cyrillic "а" inside a Latin name.
func validateConfusableEmail(fl validator.FieldLevel) bool {
	local, domain, ok := strings.Cut(fl.Field().String(), "@")
	if !ok {
		return false
	}
	return !isMixedScript(local) && !isMixedScript(domain)
}

var scripts = []*unicode.RangeTable{
	unicode.Latin, unicode.Cyrillic, unicode.Greek, unicode.Armenian,
	unicode.Hebrew, unicode.Arabic, unicode.Han, unicode.Hiragana,
	unicode.Katakana, unicode.Hangul, unicode.Thai, unicode.Georgian,
}

func isMixedScript(s string) bool {
	var seen *unicode.RangeTable
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		script := scriptOf(r)
		if script == nil {
			continue
		}
		if seen != nil && seen != script {
			return true
		}
		seen = script
	}
	return false
}

func scriptOf(r rune) *unicode.RangeTable {
	for _, table := range scripts {
		if unicode.Is(table, r) {
			return table
		}
	}
	return nil
}

func validateCurrency(fl validator.FieldLevel) bool {
	return models.Currency(fl.Field().String()).Valid()
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldPath(e),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

// ValidateFields runs struct validation and collects the failures into a
// ValidationError. A nil return means the input is valid.
func ValidateFields(s interface{}) *apperror.ValidationError {
	fieldErrors := &apperror.ValidationError{}
	for _, e := range GetValidationErrors(ValidateStruct(s)) {
		fieldErrors.Add(e.Field, e.Message)
	}
	if len(fieldErrors.Fields) == 0 {
		return nil
	}
	return fieldErrors
}

// fieldPath drops the root struct name: "CategoryInput.title.es" -> "title.es".
func fieldPath(e validator.FieldError) string {
	if _, path, ok := strings.Cut(e.Namespace(), "."); ok {
		return path
	}
	return e.Field()
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "confusable_email":
		return "This email address cannot be registered. Please supply a different email address."
	case "currency":
		return "Currency must be one of CUC, USD, CUP"
	default:
		return e.Field() + " is invalid"
	}
}
