package handlers

import (
	"errors"
	"fmt"

	"marketplace/internal/apperrors"
	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// writeError maps err onto the {"error", "message"} response body.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	kind := apperrors.KindOf(err)
	status := apperrors.HTTPStatus(kind)

	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("kind", string(kind)),
			zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("path", c.Path()), zap.String("kind", string(kind)), zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   kind,
		"message": apperrors.Message(err),
	})
}

// bindJSON parses the JSON body into req and runs its validate tags. When it returns
// false the 400 response has already been written and err is the write result.
func bindJSON(c *fiber.Ctx, validate *validator.Validate, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   apperrors.ErrInvalidInput.Kind,
			"message": apperrors.ErrInvalidInput.Message,
		})
	}

	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   apperrors.KindValidation,
				"message": "Validation failed",
			})
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   apperrors.KindValidation,
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}

// currentCaller returns the authenticated caller. When it returns false the 401 response
// has already been written and err is the write result.
func currentCaller(c *fiber.Ctx) (services.Identity, bool, error) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return services.Identity{}, false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
	}
	return identity, true, nil
}
