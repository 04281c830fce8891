package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/obralink/obralink-api/internal/application/auth"
	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/pkg/logger"
)

// AuthHandler maneja el login.
type AuthHandler struct {
	uc  *auth.AuthUseCase
	log *logger.Logger
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.AuthUseCase, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credenciales"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.LoginResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.LoginResponse{Success: false, Mensaje: "Credenciales incorrectas"})
		}
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
