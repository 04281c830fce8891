package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para las proyecciones del ledger.
// Todas se calculan al vuelo; no hay caché.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Valuation suma stock_actual * precio_costo en NUMERIC para no desbordar.
func (r *ReportRepo) Valuation(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(stock_actual::numeric * precio_costo::numeric), 0) FROM productos`
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("valuation: %w", err)
	}
	return total, nil
}

// CountBelow cuenta productos con stock_actual < threshold (incluye negativos).
func (r *ReportRepo) CountBelow(ctx context.Context, threshold int64) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM productos WHERE stock_actual < $1`, threshold).Scan(&n); err != nil {
		return 0, fmt.Errorf("count below: %w", err)
	}
	return n, nil
}

// TotalUnits suma stock_actual de todo el catálogo.
func (r *ReportRepo) TotalUnits(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(stock_actual), 0)::bigint FROM productos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("total units: %w", err)
	}
	return n, nil
}

// PeriodTotals suma cantidades por tipo dentro del filtro (fechas inclusivas, tipo opcional).
func (r *ReportRepo) PeriodTotals(ctx context.Context, f repository.MovementFilter) (repository.KindTotals, error) {
	where, args := movementWhere(f, "")
	query := `
		SELECT
			COALESCE(SUM(cantidad) FILTER (WHERE tipo = 'ENTRADA'), 0)::bigint,
			COALESCE(SUM(cantidad) FILTER (WHERE tipo = 'SALIDA'), 0)::bigint
		FROM movimientos` + where
	var t repository.KindTotals
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&t.Entradas, &t.Salidas); err != nil {
		return repository.KindTotals{}, fmt.Errorf("period totals: %w", err)
	}
	return t, nil
}

// SiteReceived total de unidades despachadas (SALIDA) a la obra.
func (r *ReportRepo) SiteReceived(ctx context.Context, siteID int64) (int64, error) {
	var n int64
	query := `SELECT COALESCE(SUM(cantidad), 0)::bigint FROM movimientos WHERE id_obra = $1 AND tipo = $2`
	if err := r.pool.QueryRow(ctx, query, siteID, string(entity.MovementSalida)).Scan(&n); err != nil {
		return 0, fmt.Errorf("site received: %w", err)
	}
	return n, nil
}
