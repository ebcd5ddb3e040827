package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lealre/cinematch-backend/internal/mongodb"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("fieldkey", func(fl validator.FieldLevel) bool {
		return mongodb.ValidFieldKey(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

// validationMessage turns the first failed rule into a readable message.
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "Invalid request body"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("Field %s is required", fe.Field())
	case "min", "gt":
		return fmt.Sprintf("Field %s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field %s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("Field %s must be one of: %s", fe.Field(), fe.Param())
	case "fieldkey":
		return fmt.Sprintf("Field %s must not contain '.' or '$'", fe.Field())
	case "datetime":
		return fmt.Sprintf("Field %s must be formatted as %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("Field %s is invalid", fe.Field())
}
