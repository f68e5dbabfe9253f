package web

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// GetErrorMsg turns the first validation failure into a human readable message.
func GetErrorMsg(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]

	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "currency":
		return fe.Field() + " is not supported"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	}

	return fe.Field() + " is invalid"
}

// BindingErrorMsg returns the message for an error returned by gin binding.
func BindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return GetErrorMsg(ve)
	}

	return "invalid request body"
}
