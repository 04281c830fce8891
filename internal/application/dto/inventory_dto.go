package dto

import "time"

// RecordMovementRequest body para POST /movimientos.
type RecordMovementRequest struct {
	IDProducto  FlexInt `json:"id_producto" validate:"required,gt=0"`
	Tipo        string  `json:"tipo" validate:"required,oneof=ENTRADA SALIDA"`
	Cantidad    FlexInt `json:"cantidad" validate:"required,gt=0"`
	IDObra      FlexInt `json:"id_obra" validate:"omitempty,gt=0"`
	Fecha       string  `json:"fecha"`
	Proveedor   *string `json:"proveedor" validate:"omitempty,max=200"`
	RecibidoPor *string `json:"recibido_por" validate:"omitempty,max=200"`
}

// MovementResponse movimiento del ledger. Producto, SKU y Obra solo vienen en el historial.
type MovementResponse struct {
	ID            int64     `json:"id"`
	IDProducto    int64     `json:"id_producto"`
	Tipo          string    `json:"tipo"`
	Cantidad      int64     `json:"cantidad"`
	IDObra        *int64    `json:"id_obra"`
	Fecha         time.Time `json:"fecha"`
	FechaRegistro time.Time `json:"fecha_registro"`
	Proveedor     *string   `json:"proveedor"`
	RecibidoPor   *string   `json:"recibido_por"`
	Producto      string    `json:"producto,omitempty"`
	SKU           string    `json:"sku,omitempty"`
	Obra          *string   `json:"obra,omitempty"`
}

// IngressRequest body para POST /registrar-ingreso-completo.
type IngressRequest struct {
	EsNuevo     bool    `json:"es_nuevo"`
	IDProducto  FlexInt `json:"id_producto" validate:"required_if=EsNuevo false,omitempty,gt=0"`
	Nombre      string  `json:"nombre" validate:"required_if=EsNuevo true,max=200"`
	Categoria   string  `json:"categoria" validate:"omitempty,max=100"`
	Cantidad    FlexInt `json:"cantidad" validate:"required,gt=0"`
	PrecioCosto FlexInt `json:"precio_costo" validate:"min=0"`
	Fecha       string  `json:"fecha"`
	Proveedor   *string `json:"proveedor" validate:"omitempty,max=200"`
	RecibidoPor *string `json:"recibido_por" validate:"omitempty,max=200"`
}

// IngressResponse resultado del ingreso.
type IngressResponse struct {
	Mensaje    string           `json:"mensaje"`
	Creado     bool             `json:"creado"`
	Producto   ProductResponse  `json:"producto"`
	Movimiento MovementResponse `json:"movimiento"`
}

// ImportLineRequest línea de factura para POST /ingreso-masivo (también la salida de /subir-factura).
type ImportLineRequest struct {
	Nombre      string  `json:"nombre" validate:"required,max=200"`
	SKU         string  `json:"sku" validate:"omitempty,max=50"`
	Cantidad    FlexInt `json:"cantidad" validate:"required,gt=0"`
	PrecioCosto FlexInt `json:"precio_costo" validate:"min=0"`
}

// ImportLineResponse resultado de una línea importada.
type ImportLineResponse struct {
	Linea        int    `json:"linea"`
	Nombre       string `json:"nombre"`
	SKU          string `json:"sku"`
	IDProducto   int64  `json:"id_producto"`
	IDMovimiento int64  `json:"id_movimiento"`
	Creado       bool   `json:"creado"`
}

// ImportResponse resultado del lote.
type ImportResponse struct {
	Mensaje       string               `json:"mensaje"`
	IDLote        string               `json:"id_lote"`
	Coincidencias int                  `json:"coincidencias"`
	Creados       int                  `json:"creados"`
	Lineas        []ImportLineResponse `json:"lineas"`
}

// InvoiceParseResponse líneas extraídas de un archivo de factura (no persiste).
type InvoiceParseResponse struct {
	Archivo string              `json:"archivo"`
	Items   []ImportLineRequest `json:"items"`
}
