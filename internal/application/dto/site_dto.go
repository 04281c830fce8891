package dto

// CreateSiteRequest entrada para crear una obra.
type CreateSiteRequest struct {
	Nombre      string  `json:"nombre" validate:"required,max=200"`
	Cliente     string  `json:"cliente" validate:"omitempty,max=200"`
	Presupuesto FlexInt `json:"presupuesto" validate:"min=0"`
}

// SiteResponse salida de una obra.
type SiteResponse struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Cliente     string `json:"cliente"`
	Presupuesto int64  `json:"presupuesto"`
}

// SiteReceivedResponse total despachado a una obra.
type SiteReceivedResponse struct {
	IDObra        int64 `json:"id_obra"`
	TotalRecibido int64 `json:"total_recibido"`
}

// SiteDeletedResponse resultado de borrar una obra.
type SiteDeletedResponse struct {
	Mensaje               string `json:"mensaje"`
	MovimientosRevertidos int    `json:"movimientos_revertidos"`
}
