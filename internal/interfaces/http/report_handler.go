package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/obralink/obralink-api/internal/application/reporting"
	"github.com/obralink/obralink-api/pkg/logger"
)

// ReportHandler expone las proyecciones del ledger (JSON y PDF).
type ReportHandler struct {
	uc  *reporting.ReportUseCase
	log *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.ReportUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// Summary godoc
// @Summary      Resumen del inventario
// @Description  Valorización, productos críticos, unidades y totales del período.
// @Tags         reportes
// @Produce      json
// @Param        umbral   query  int     false  "Umbral crítico (por defecto LEDGER_CRITICAL_THRESHOLD)"
// @Param        desde    query  string  false  "Fecha inicial"
// @Param        hasta    query  string  false  "Fecha final"
// @Success      200  {object}  dto.ReportSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /reportes/resumen [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	threshold, err := queryThreshold(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	filter, err := movementFilter(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Summary(c.UserContext(), threshold, filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Critical godoc
// @Summary      Productos críticos
// @Description  Productos bajo el umbral, ordenados por urgencia, con la cantidad faltante.
// @Tags         reportes
// @Produce      json
// @Param        umbral  query  int  false  "Umbral crítico"
// @Success      200  {array}  dto.CriticalProductResponse
// @Router       /reportes/criticos [get]
func (h *ReportHandler) Critical(c *fiber.Ctx) error {
	threshold, err := queryThreshold(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.CriticalProducts(c.UserContext(), threshold)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// InventoryPDF godoc
// @Summary      PDF de inventario
// @Tags         reportes
// @Produce      application/pdf
// @Param        busqueda   query  string  false  "Nombre o SKU"
// @Param        categoria  query  string  false  "Categoría"
// @Success      200
// @Router       /reporte-pdf [get]
func (h *ReportHandler) InventoryPDF(c *fiber.Ctx) error {
	doc, name, err := h.uc.InventoryPDF(c.UserContext(), strings.TrimSpace(c.Query("busqueda")), strings.TrimSpace(c.Query("categoria")))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendPDF(c, doc, name)
}

// HistoryPDF godoc
// @Summary      PDF de historial de movimientos
// @Tags         reportes
// @Produce      application/pdf
// @Param        desde    query  string  false  "Fecha inicial"
// @Param        hasta    query  string  false  "Fecha final"
// @Param        tipo     query  string  false  "ENTRADA | SALIDA"
// @Param        id_obra  query  int     false  "Obra"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /reporte-historial-pdf [get]
func (h *ReportHandler) HistoryPDF(c *fiber.Ctx) error {
	filter, err := movementFilter(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	doc, name, err := h.uc.HistoryPDF(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendPDF(c, doc, name)
}

func sendPDF(c *fiber.Ctx, doc []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}

// queryThreshold lee umbral; nil si no viene (usar el de configuración).
func queryThreshold(c *fiber.Ctx) (*int64, error) {
	raw := strings.TrimSpace(c.Query("umbral"))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil, domainInvalid("umbral debe ser un entero no negativo")
	}
	return &n, nil
}
