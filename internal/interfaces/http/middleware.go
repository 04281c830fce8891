package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/obralink/obralink-api/pkg/logger"
	"github.com/obralink/obralink-api/pkg/metrics"
)

const (
	requestIDHeader = "X-Request-Id"
	localRequestID  = "request_id"
)

// RequestID propaga X-Request-Id o genera uno nuevo.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set(requestIDHeader, id)
		return c.Next()
	}
}

// RequestIDFrom devuelve el id de la petición (vacío si no pasó por RequestID).
func RequestIDFrom(c *fiber.Ctx) string {
	s, _ := c.Locals(localRequestID).(string)
	return s
}

// RequestLogger registra método, ruta, status y latencia; observa el histograma HTTP si m no es nil.
func RequestLogger(log *logger.Logger, m *metrics.HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// El ErrorHandler fija el status; se invoca aquí para registrar el código real.
			if hErr := c.App().ErrorHandler(c, err); hErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		m.Observe(c.Method(), c.Route().Path, status, elapsed)

		if log != nil {
			ev := log.Info()
			if status >= fiber.StatusInternalServerError {
				ev = log.Error()
			} else if status >= fiber.StatusBadRequest {
				ev = log.Warn()
			}
			ev.Str("request_id", RequestIDFrom(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Int("status", status).
				Dur("latency", elapsed).
				Msg("request")
		}
		return nil
	}
}
