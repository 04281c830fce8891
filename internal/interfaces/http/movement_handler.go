package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/application/usecase"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
	"github.com/obralink/obralink-api/pkg/logger"
)

// MovementHandler maneja el ledger de movimientos.
type MovementHandler struct {
	ledger *inventory.LedgerUseCase
	log    *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(ledger *inventory.LedgerUseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{ledger: ledger, log: log}
}

// Record godoc
// @Summary      Registrar movimiento
// @Description  ENTRADA suma stock; SALIDA resta y exige una obra distinta de la Bodega Central.
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /movimientos [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	eventAt, err := dto.ParseFecha(in.Fecha)
	if err != nil {
		return writeError(c, h.log, err)
	}
	m, err := h.ledger.RecordMovement(c.UserContext(), inventory.RecordMovementInput{
		ProductID:  in.IDProducto.Int64(),
		Kind:       entity.MovementKind(strings.ToUpper(in.Tipo)),
		Quantity:   in.Cantidad.Int64(),
		SiteID:     in.IDObra.OptionalID(),
		EventAt:    eventAt,
		Supplier:   in.Proveedor,
		ReceivedBy: in.RecibidoPor,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(m))
}

// Delete godoc
// @Summary      Revertir movimiento
// @Description  Borra el movimiento y aplica el delta inverso sobre el stock.
// @Tags         movimientos
// @Produce      json
// @Param        id   path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /movimientos/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if _, err := h.ledger.DeleteMovement(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Mensaje: "Registro de historial eliminado"})
}

// List godoc
// @Summary      Historial de movimientos
// @Tags         movimientos
// @Produce      json
// @Param        desde        query  string  false  "Fecha inicial (YYYY-MM-DD)"
// @Param        hasta        query  string  false  "Fecha final (YYYY-MM-DD, inclusiva)"
// @Param        tipo         query  string  false  "ENTRADA | SALIDA"
// @Param        id_obra      query  int     false  "Obra"
// @Param        id_producto  query  int     false  "Producto"
// @Success      200  {array}  dto.MovementResponse
// @Router       /movimientos [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	filter, err := movementFilter(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.ledger.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, d := range list {
		r := toMovementResponse(&d.Movement)
		r.Producto = d.ProductName
		r.SKU = d.ProductSKU
		r.Obra = d.SiteName
		out = append(out, r)
	}
	return c.JSON(out)
}

// Ingress godoc
// @Summary      Ingreso completo
// @Description  Crea el producto si es_nuevo (o actualiza su costo) y registra la ENTRADA en una transacción.
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IngressRequest  true  "Ingreso"
// @Success      201   {object}  dto.IngressResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /registrar-ingreso-completo [post]
func (h *MovementHandler) Ingress(c *fiber.Ctx) error {
	var in dto.IngressRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	eventAt, err := dto.ParseFecha(in.Fecha)
	if err != nil {
		return writeError(c, h.log, err)
	}
	input := inventory.IngressInput{
		IsNew:      in.EsNuevo,
		Name:       in.Nombre,
		Category:   in.Categoria,
		ProductID:  in.IDProducto.Int64(),
		Quantity:   in.Cantidad.Int64(),
		UnitCost:   in.PrecioCosto.Int64(),
		EventAt:    eventAt,
		Supplier:   in.Proveedor,
		ReceivedBy: in.RecibidoPor,
	}
	res, err := h.ledger.RegisterIngress(c.UserContext(), input)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.IngressResponse{
		Mensaje:    "Ingreso registrado",
		Creado:     res.Created,
		Producto:   *usecase.ToProductResponse(res.Product),
		Movimiento: toMovementResponse(res.Movement),
	})
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		IDProducto:    m.ProductID,
		Tipo:          string(m.Kind),
		Cantidad:      m.Quantity,
		IDObra:        m.SiteID,
		Fecha:         m.EventAt,
		FechaRegistro: m.RecordedAt,
		Proveedor:     m.Supplier,
		RecibidoPor:   m.ReceivedBy,
	}
}

// movementFilter lee desde, hasta, tipo, id_obra e id_producto de la query.
func movementFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	var f repository.MovementFilter
	from, err := dto.ParseFecha(c.Query("desde"))
	if err != nil {
		return f, err
	}
	to, err := dto.ParseFecha(c.Query("hasta"))
	if err != nil {
		return f, err
	}
	f.From = from
	f.To = dto.EndOfDay(c.Query("hasta"), to)

	if tipo := strings.ToUpper(strings.TrimSpace(c.Query("tipo"))); tipo != "" {
		f.Kind = entity.MovementKind(tipo)
		if !f.Kind.Valid() {
			return f, domainInvalid("tipo debe ser ENTRADA o SALIDA")
		}
	}
	if f.SiteID, err = queryID(c, "id_obra"); err != nil {
		return f, err
	}
	if f.ProductID, err = queryID(c, "id_producto"); err != nil {
		return f, err
	}
	return f, nil
}

func queryID(c *fiber.Ctx, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, domainInvalid(name + " debe ser un entero positivo")
	}
	return &id, nil
}
