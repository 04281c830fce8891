package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/application/usecase"
	"github.com/obralink/obralink-api/pkg/logger"
)

// SiteHandler maneja las obras.
type SiteHandler struct {
	uc  *usecase.SiteUseCase
	log *logger.Logger
}

// NewSiteHandler construye el handler.
func NewSiteHandler(uc *usecase.SiteUseCase, log *logger.Logger) *SiteHandler {
	return &SiteHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear obra
// @Tags         obras
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSiteRequest  true  "Obra"
// @Success      201   {object}  dto.SiteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /obras [post]
func (h *SiteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSiteRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar obras
// @Tags         obras
// @Produce      json
// @Success      200  {array}  dto.SiteResponse
// @Router       /obras [get]
func (h *SiteHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener obra
// @Tags         obras
// @Produce      json
// @Param        id   path  int  true  "ID de la obra"
// @Success      200  {object}  dto.SiteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /obras/{id} [get]
func (h *SiteHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Received godoc
// @Summary      Total recibido por la obra
// @Tags         obras
// @Produce      json
// @Param        id   path  int  true  "ID de la obra"
// @Success      200  {object}  dto.SiteReceivedResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /obras/{id}/recibido [get]
func (h *SiteHandler) Received(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.TotalReceived(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar obra
// @Description  Revierte los despachos de la obra (el stock vuelve a bodega) y la borra. La Bodega Central está protegida.
// @Tags         obras
// @Produce      json
// @Param        id   path  int  true  "ID de la obra"
// @Success      200  {object}  dto.SiteDeletedResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /obras/{id} [delete]
func (h *SiteHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Delete(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
