package reporting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

// InventoryReport datos del PDF de inventario.
type InventoryReport struct {
	GeneratedAt    time.Time
	Search         string
	Category       string
	Products       []*entity.Product
	TotalUnits     int64
	Valuation      decimal.Decimal
	HighlightBelow int64
}

// HistoryReport datos del PDF de historial de movimientos.
type HistoryReport struct {
	GeneratedAt time.Time
	From        *time.Time
	To          *time.Time
	Kind        entity.MovementKind
	SiteName    string
	Movements   []*entity.MovementDetail
	Totals      repository.KindTotals
}

// PDFGenerator genera los reportes imprimibles.
type PDFGenerator interface {
	InventoryPDF(ctx context.Context, report InventoryReport) ([]byte, error)
	HistoryPDF(ctx context.Context, report HistoryReport) ([]byte, error)
}
