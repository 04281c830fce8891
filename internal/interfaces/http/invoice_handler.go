package http

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/pkg/logger"
)

// maxInvoiceSize tamaño máximo del archivo de factura.
const maxInvoiceSize = 10 << 20

// InvoiceHandler maneja la lectura de facturas de proveedor y su ingreso masivo.
type InvoiceHandler struct {
	parser     inventory.InvoiceParser
	reconciler *inventory.ReconcileUseCase
	log        *logger.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(parser inventory.InvoiceParser, reconciler *inventory.ReconcileUseCase, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{parser: parser, reconciler: reconciler, log: log}
}

// Upload godoc
// @Summary      Leer factura
// @Description  Extrae las líneas de una factura (XML UBL o texto). No persiste nada.
// @Tags         facturas
// @Accept       multipart/form-data
// @Produce      json
// @Param        factura  formData  file  true  "Archivo (también se acepta el campo file)"
// @Success      200  {object}  dto.InvoiceParseResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /subir-factura [post]
func (h *InvoiceHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("factura")
	if err != nil {
		fh, err = c.FormFile("file")
	}
	if err != nil {
		return writeError(c, h.log, domainInvalid("falta el archivo (campo factura)"))
	}
	content, err := readUpload(fh)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items, err := h.parser.Parse(fh.Filename, content)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.InvoiceParseResponse{Archivo: fh.Filename, Items: make([]dto.ImportLineRequest, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, dto.ImportLineRequest{
			Nombre: it.Name, SKU: it.SKU, Cantidad: dto.FlexInt(it.Quantity), PrecioCosto: dto.FlexInt(it.UnitCost),
		})
	}
	return c.JSON(out)
}

// Import godoc
// @Summary      Ingreso masivo
// @Description  Concilia las líneas contra el catálogo (SKU, luego nombre) y registra una ENTRADA por línea. Todo o nada.
// @Tags         facturas
// @Accept       json
// @Produce      json
// @Param        body  body  []dto.ImportLineRequest  true  "Líneas (arreglo u objeto {items})"
// @Success      201   {object}  dto.ImportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /ingreso-masivo [post]
func (h *InvoiceHandler) Import(c *fiber.Ctx) error {
	lines, err := decodeImportLines(c.Body())
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]inventory.LineItem, 0, len(lines))
	for i, l := range lines {
		if err := validateStruct(&l); err != nil {
			return writeError(c, h.log, fmt.Errorf("línea %d: %w", i+1, err))
		}
		items = append(items, inventory.LineItem{
			Name: l.Nombre, SKU: l.SKU, Quantity: l.Cantidad.Int64(), UnitCost: l.PrecioCosto.Int64(),
		})
	}
	res, err := h.reconciler.Import(c.UserContext(), items)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.ImportResponse{
		Mensaje:       fmt.Sprintf("%d líneas ingresadas", len(res.Lines)),
		IDLote:        res.BatchID,
		Coincidencias: res.Matched,
		Creados:       res.Created,
		Lineas:        make([]dto.ImportLineResponse, 0, len(res.Lines)),
	}
	for _, l := range res.Lines {
		out.Lineas = append(out.Lineas, dto.ImportLineResponse{
			Linea: l.Line, Nombre: l.Name, SKU: l.SKU,
			IDProducto: l.ProductID, IDMovimiento: l.MovementID, Creado: l.Created,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// decodeImportLines acepta un arreglo de líneas o {"items": [...]}.
func decodeImportLines(body []byte) ([]dto.ImportLineRequest, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, domainInvalid("cuerpo vacío")
	}
	var lines []dto.ImportLineRequest
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(body, &lines); err != nil {
			return nil, fmt.Errorf("%w: cuerpo inválido: %v", domain.ErrInvalidInput, err)
		}
		return lines, nil
	}
	var wrapped struct {
		Items []dto.ImportLineRequest `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: cuerpo inválido: %v", domain.ErrInvalidInput, err)
	}
	return wrapped.Items, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxInvoiceSize {
		return nil, domainInvalid("el archivo supera 10 MB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir archivo: %w", err)
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, maxInvoiceSize+1))
	if err != nil {
		return nil, fmt.Errorf("leer archivo: %w", err)
	}
	if len(content) > maxInvoiceSize {
		return nil, domainInvalid("el archivo supera 10 MB")
	}
	return content, nil
}
