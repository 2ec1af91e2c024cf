package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/cablesur/claims-service/pkg/util"
)

var validate = validator.New()

// Validate runs struct tag validation and maps failures to the shared error
// taxonomy.
func Validate(payload any) error {
	if err := validate.Struct(payload); err != nil {
		details := map[string]any{}
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				details[fe.Field()] = fmt.Sprintf("failed %s validation", fe.Tag())
			}
		}
		return apperrors.NewValidationError("invalid payload", details)
	}
	return nil
}
