package validator

import (
	"errors"
	"fmt"
	"strings"

	"anoa.com/blogspace/pkg/apperror"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, getFieldName(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Username":        "Username",
		"Email":           "Email",
		"Password":        "Password",
		"ConfirmPassword": "Password confirmation",
		"CurrentPassword": "Current password",
		"NewPassword":     "New password",
		"Title":           "Title",
		"Description":     "Description",
		"Content":         "Content",
		"Tags":            "Tags",
		"Bio":             "Bio",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

// Validate runs the gin binding rules on v outside of request binding, so
// services enforce the same constraints whatever the entry point.
func Validate(v interface{}) error {
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return fmt.Errorf("%s: %w", FormatValidationError(err), apperror.ErrInvalidInput)
	}
	return nil
}
