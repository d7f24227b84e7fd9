package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "ecommerce/internal/errors"
	"ecommerce/internal/interfaces"
)

// RequestValidator валидирует входящие DTO по тегам validate
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() interfaces.RequestValidator {
	return &RequestValidator{
		validator: validator.New(),
	}
}

func (v *RequestValidator) Validate(request interface{}) error {
	if request == nil {
		return apperrors.New(apperrors.ErrorTypeValidation, "request is nil")
	}

	err := v.validator.Struct(request)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errorMessages []string
			for _, validationErr := range validationErrors {
				errorMessages = append(errorMessages, fmt.Sprintf("field '%s' failed validation: %s", validationErr.Field(), validationErr.Tag()))
			}
			return apperrors.NewWithCode(
				apperrors.ErrorTypeValidation,
				"validation failed: "+strings.Join(errorMessages, "; "),
				"VALIDATION_FAILED",
			)
		}
		return apperrors.Wrap(err, apperrors.ErrorTypeValidation, "validation error")
	}

	return nil
}
