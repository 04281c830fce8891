package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// KindTotals suma de cantidades por tipo de movimiento.
type KindTotals struct {
	Entradas int64
	Salidas  int64
}

// ReportRepository consultas de solo lectura para proyecciones (sin caché).
type ReportRepository interface {
	Valuation(ctx context.Context) (decimal.Decimal, error)
	CountBelow(ctx context.Context, threshold int64) (int64, error)
	TotalUnits(ctx context.Context) (int64, error)
	PeriodTotals(ctx context.Context, filter MovementFilter) (KindTotals, error)
	SiteReceived(ctx context.Context, siteID int64) (int64, error)
}
