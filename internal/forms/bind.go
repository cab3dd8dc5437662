package forms

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Field error codes reported in ValidationError.
const (
	CodeRequired     = "required"
	CodeInvalidEmail = "invalid_email"
	CodeTooShort     = "too_short"
	CodeMismatch     = "mismatch"
	CodeBelowMinimum = "below_minimum"
	CodeInvalidDate  = "invalid_date"
	CodeInvalid      = "invalid"
)

// ErrMalformedInput reports a request body that could not be decoded at all.
var ErrMalformedInput = errors.New("forms.malformed_input")

// ValidationError lists the fields that failed validation, keyed by form
// field name.
type ValidationError struct {
	Fields map[string]string
}

// Error lists the failing fields in name order.
func (validationErr *ValidationError) Error() string {
	names := make([]string, 0, len(validationErr.Fields))
	for name := range validationErr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+validationErr.Fields[name])
	}
	return "forms.validation: " + strings.Join(parts, ", ")
}

var registerFieldNames sync.Once

// Bind decodes the request into form and validates it.
func Bind(contextGin *gin.Context, form any) error {
	registerFieldNames.Do(useFormFieldNames)
	err := contextGin.ShouldBind(form)
	if err == nil {
		return nil
	}
	return translate(err)
}

func translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		if _, seen := fields[fieldErr.Field()]; seen {
			continue
		}
		fields[fieldErr.Field()] = codeFor(fieldErr)
	}
	return &ValidationError{Fields: fields}
}

func codeFor(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return CodeRequired
	case "email":
		return CodeInvalidEmail
	case "eqfield":
		return CodeMismatch
	case "datetime":
		return CodeInvalidDate
	case "min":
		if fieldErr.Kind() == reflect.String {
			return CodeTooShort
		}
		return CodeBelowMinimum
	default:
		return CodeInvalid
	}
}

func useFormFieldNames() {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	engine.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
}
