package api

import (
	"errors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"os"
	"storefront-service/internal/auth"
	"storefront-service/internal/blob"
	"storefront-service/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const genericError = "Something went wrong, please try again"

// respondError maps service errors to responses. Errors it does not know
// are logged and answered with unexpectedStatus and a generic message.
func respondError(c echo.Context, err error, unexpectedStatus int) error {
	var (
		validationErr *service.ValidationError
		stockErr      *service.StockError
	)

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return c.JSON(400, map[string]string{"error": "Cart is empty"})
	case errors.As(err, &validationErr):
		return c.JSON(400, map[string]string{"error": validationErr.Reason, "field": validationErr.Field})
	case errors.As(err, &stockErr):
		return c.JSON(400, map[string]string{"error": stockErr.Error()})
	case errors.Is(err, service.ErrDuplicateRequest):
		return c.JSON(400, map[string]string{"error": "This order has already been submitted"})
	case errors.Is(err, service.ErrInvalidStatus):
		return c.JSON(400, map[string]string{"error": "Invalid status"})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(400, map[string]string{"error": err.Error()})
	case errors.Is(err, blob.ErrNotAnImage):
		return c.JSON(400, map[string]string{"error": "Uploaded file is not a supported image"})
	case errors.Is(err, service.ErrOrderNotFound):
		return c.JSON(404, map[string]string{"error": "Order not found"})
	case errors.Is(err, service.ErrProductNotFound):
		return c.JSON(404, map[string]string{"error": "Product not found"})
	case errors.Is(err, auth.ErrUnauthenticated):
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	case errors.Is(err, auth.ErrForbidden):
		return c.JSON(403, map[string]string{"error": "Forbidden"})
	}

	logger.Error().Err(err).Msgf("Unexpected error on %s %s", c.Request().Method, c.Path())
	return c.JSON(unexpectedStatus, map[string]string{"error": genericError})
}
