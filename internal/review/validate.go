package review

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"manhwarec/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidationError describes the first field of a review that failed validation.
type ValidationError struct {
	Field   string
	Tag     string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets callers match domain.ErrInvalidReview.
func (e *ValidationError) Unwrap() error { return domain.ErrInvalidReview }

// Validate checks a review against its field rules.
func Validate(r domain.Review) error {
	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidReview, err)
	}
	fe := verrs[0]
	return &ValidationError{Field: fieldName(fe.Field()), Tag: fe.Tag(), Message: message(fe)}
}

func fieldName(structField string) string {
	switch structField {
	case "Username":
		return "username"
	case "Rating":
		return "rating"
	case "Text":
		return "review"
	default:
		return structField
	}
}

func message(fe validator.FieldError) string {
	name := fieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min", "max":
		if fe.Field() == "Rating" {
			return "rating must be between 1 and 5"
		}
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
