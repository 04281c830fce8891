package dto

// CreateProductRequest entrada para crear un producto. stock_actual se acepta como alias de
// stock_inicial por compatibilidad con el cliente web.
type CreateProductRequest struct {
	Nombre       string   `json:"nombre" validate:"required,max=200"`
	SKU          string   `json:"sku" validate:"omitempty,max=50"`
	Categoria    string   `json:"categoria" validate:"omitempty,max=100"`
	PrecioCosto  FlexInt  `json:"precio_costo" validate:"min=0"`
	PrecioVenta  FlexInt  `json:"precio_venta" validate:"min=0"`
	StockInicial FlexInt  `json:"stock_inicial" validate:"min=0"`
	StockActual  *FlexInt `json:"stock_actual,omitempty" validate:"omitempty,min=0"`
}

// InitialStock stock inicial efectivo.
func (r CreateProductRequest) InitialStock() int64 {
	if r.StockInicial == 0 && r.StockActual != nil {
		return r.StockActual.Int64()
	}
	return r.StockInicial.Int64()
}

// UpdateProductRequest edición parcial. No existe campo de stock: solo los movimientos lo cambian.
type UpdateProductRequest struct {
	Nombre      *string  `json:"nombre" validate:"omitempty,min=1,max=200"`
	Categoria   *string  `json:"categoria" validate:"omitempty,max=100"`
	PrecioCosto *FlexInt `json:"precio_costo" validate:"omitempty,min=0"`
	Proveedor   *string  `json:"proveedor" validate:"omitempty,max=200"`
}

// ForbiddenProductUpdateKeys claves de stock rechazadas en PUT /productos/:id.
var ForbiddenProductUpdateKeys = []string{"stock_actual", "current_stock", "stock"}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              int64   `json:"id"`
	Nombre          string  `json:"nombre"`
	SKU             string  `json:"sku"`
	Categoria       string  `json:"categoria"`
	PrecioCosto     int64   `json:"precio_costo"`
	PrecioVenta     int64   `json:"precio_venta"`
	StockActual     int64   `json:"stock_actual"`
	UltimoProveedor *string `json:"ultimo_proveedor"`
}
