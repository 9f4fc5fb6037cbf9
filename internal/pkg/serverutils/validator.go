package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts the first failure
// into a 400 with a readable field message.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		first := validationErrors[0]
		return fiber.NewError(
			fiber.StatusBadRequest,
			fmt.Sprintf("field '%s' failed on '%s' validation", first.Field(), first.Tag()),
		)
	}
	return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
}
