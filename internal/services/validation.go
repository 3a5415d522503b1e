package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the custom rules used by the models.
func NewValidator() *validator.Validate {
	v := validator.New()
	// year may not lie in the future
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	})
	return v
}

// validationError converts validator output into a client-facing error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &Error{Kind: KindValidation, Message: strings.Join(msgs, ", "), Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please add a %s", strings.ToLower(field))
	case "max":
		return fmt.Sprintf("%s can not be more than %s characters", field, fe.Param())
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("Please add at least %s %s", fe.Param(), strings.ToLower(field))
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s can not be negative", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "notfuture":
		return fmt.Sprintf("%s can not be in the future", field)
	case "email":
		return "Please add a valid email"
	}
	return fmt.Sprintf("%s is invalid", field)
}
