package dto

import "github.com/shopspring/decimal"

// ReportSummaryResponse respuesta de GET /reportes/resumen.
type ReportSummaryResponse struct {
	Valorizacion    decimal.Decimal `json:"valorizacion"`
	Criticos        int64           `json:"criticos"`
	Umbral          int64           `json:"umbral"`
	UnidadesTotales int64           `json:"unidades_totales"`
	Entradas        int64           `json:"entradas"`
	Salidas         int64           `json:"salidas"`
}

// CriticalProductResponse producto bajo el umbral crítico, con la cantidad faltante para alcanzarlo.
type CriticalProductResponse struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	SKU         string `json:"sku"`
	Categoria   string `json:"categoria"`
	StockActual int64  `json:"stock_actual"`
	Faltante    int64  `json:"faltante"`
	Prioridad   int    `json:"prioridad"` // 1 = más urgente
}
