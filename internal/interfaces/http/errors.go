package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/pkg/logger"
)

// errorStatus asocia cada error de dominio con su status y código.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicateSKU, fiber.StatusConflict, "DUPLICATE_SKU"},
	{domain.ErrProtected, fiber.StatusForbidden, "PROTECTED_RESOURCE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
}

// writeError traduce err a status + dto.ErrorResponse. Los 5xx se registran y no exponen detalles.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP", Message: fe.Message})
	}
	if log != nil {
		log.Error().Err(err).
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error interno")
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

// ErrorHandler para fiber.Config: rutas inexistentes, panics recuperados, etc.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, log, err)
	}
}

func domainInvalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
}
