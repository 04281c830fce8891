// Package reporting expone proyecciones de solo lectura sobre catálogo y ledger: valorización,
// stock crítico, totales por período y reportes PDF. Nada se cachea.
package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

// PDFHighlightBelow stock bajo el cual el PDF de inventario marca la fila.
const PDFHighlightBelow = 10

// ReportUseCase proyecciones de inventario.
type ReportUseCase struct {
	reports          repository.ReportRepository
	products         repository.ProductRepository
	movements        repository.MovementRepository
	sites            repository.SiteRepository
	pdf              PDFGenerator
	defaultThreshold int64
}

// NewReportUseCase construye el caso de uso. defaultThreshold se usa cuando el caller no indica umbral.
func NewReportUseCase(
	reports repository.ReportRepository,
	products repository.ProductRepository,
	movements repository.MovementRepository,
	sites repository.SiteRepository,
	pdf PDFGenerator,
	defaultThreshold int64,
) *ReportUseCase {
	if defaultThreshold <= 0 {
		defaultThreshold = 5
	}
	return &ReportUseCase{
		reports:          reports,
		products:         products,
		movements:        movements,
		sites:            sites,
		pdf:              pdf,
		defaultThreshold: defaultThreshold,
	}
}

// Threshold umbral efectivo: nil usa el de configuración; 0 es un umbral válido (ningún crítico
// salvo stock negativo).
func (uc *ReportUseCase) Threshold(threshold *int64) (int64, error) {
	if threshold == nil {
		return uc.defaultThreshold, nil
	}
	if *threshold < 0 {
		return 0, fmt.Errorf("%w: umbral debe ser un entero no negativo", domain.ErrInvalidInput)
	}
	return *threshold, nil
}

// Valuation Σ stock_actual × precio_costo. El stock negativo resta.
func (uc *ReportUseCase) Valuation(ctx context.Context) (decimal.Decimal, error) {
	return uc.reports.Valuation(ctx)
}

// CriticalCount productos con stock_actual < threshold.
func (uc *ReportUseCase) CriticalCount(ctx context.Context, threshold *int64) (int64, error) {
	limit, err := uc.Threshold(threshold)
	if err != nil {
		return 0, err
	}
	return uc.reports.CountBelow(ctx, limit)
}

// PeriodTotals Σ cantidades por tipo dentro del filtro.
func (uc *ReportUseCase) PeriodTotals(ctx context.Context, filter repository.MovementFilter) (repository.KindTotals, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return repository.KindTotals{}, fmt.Errorf("%w: el rango de fechas está invertido", domain.ErrInvalidInput)
	}
	return uc.reports.PeriodTotals(ctx, filter)
}

// SiteReceived Σ SALIDA a la obra.
func (uc *ReportUseCase) SiteReceived(ctx context.Context, siteID int64) (int64, error) {
	site, err := uc.sites.GetByID(ctx, siteID)
	if err != nil {
		return 0, err
	}
	if site == nil {
		return 0, fmt.Errorf("%w: obra %d", domain.ErrNotFound, siteID)
	}
	return uc.reports.SiteReceived(ctx, siteID)
}

// Summary agrupa las proyecciones para el panel.
func (uc *ReportUseCase) Summary(ctx context.Context, requested *int64, filter repository.MovementFilter) (*dto.ReportSummaryResponse, error) {
	threshold, err := uc.Threshold(requested)
	if err != nil {
		return nil, err
	}
	valuation, err := uc.Valuation(ctx)
	if err != nil {
		return nil, err
	}
	critical, err := uc.reports.CountBelow(ctx, threshold)
	if err != nil {
		return nil, err
	}
	units, err := uc.reports.TotalUnits(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := uc.PeriodTotals(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.ReportSummaryResponse{
		Valorizacion:    valuation,
		Criticos:        critical,
		Umbral:          threshold,
		UnidadesTotales: units,
		Entradas:        totals.Entradas,
		Salidas:         totals.Salidas,
	}, nil
}

// CriticalProducts lista de reposición: productos bajo el umbral ordenados por urgencia
// (menor stock primero) con la cantidad que falta para alcanzarlo.
func (uc *ReportUseCase) CriticalProducts(ctx context.Context, requested *int64) ([]dto.CriticalProductResponse, error) {
	threshold, err := uc.Threshold(requested)
	if err != nil {
		return nil, err
	}
	list, err := uc.products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]dto.CriticalProductResponse, 0)
	for _, p := range list {
		if p.CurrentStock >= threshold {
			continue
		}
		out = append(out, dto.CriticalProductResponse{
			ID:          p.ID,
			Nombre:      p.Name,
			SKU:         p.SKU,
			Categoria:   p.Category,
			StockActual: p.CurrentStock,
			Faltante:    threshold - p.CurrentStock,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StockActual < out[j].StockActual })
	for i := range out {
		out[i].Prioridad = i + 1
	}
	return out, nil
}

// InventoryPDF genera el PDF de inventario filtrado, ordenado por categoría y nombre.
func (uc *ReportUseCase) InventoryPDF(ctx context.Context, search, category string) ([]byte, string, error) {
	list, err := uc.products.List(ctx, repository.ProductFilter{Search: search, Category: category, ByCategory: true})
	if err != nil {
		return nil, "", err
	}
	report := InventoryReport{
		GeneratedAt:    time.Now(),
		Search:         search,
		Category:       category,
		Products:       list,
		Valuation:      decimal.Zero,
		HighlightBelow: PDFHighlightBelow,
	}
	for _, p := range list {
		report.TotalUnits += p.CurrentStock
		report.Valuation = report.Valuation.Add(decimal.NewFromInt(p.CurrentStock).Mul(decimal.NewFromInt(p.UnitCost)))
	}
	doc, err := uc.pdf.InventoryPDF(ctx, report)
	if err != nil {
		return nil, "", err
	}
	return doc, fmt.Sprintf("inventario_%s.pdf", report.GeneratedAt.Format("20060102")), nil
}

// HistoryPDF genera el PDF del historial de movimientos con sus totales.
func (uc *ReportUseCase) HistoryPDF(ctx context.Context, filter repository.MovementFilter) ([]byte, string, error) {
	totals, err := uc.PeriodTotals(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	movs, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	report := HistoryReport{
		GeneratedAt: time.Now(),
		From:        filter.From,
		To:          filter.To,
		Kind:        filter.Kind,
		Movements:   movs,
		Totals:      totals,
	}
	if filter.SiteID != nil {
		site, err := uc.sites.GetByID(ctx, *filter.SiteID)
		if err != nil {
			return nil, "", err
		}
		if site == nil {
			return nil, "", fmt.Errorf("%w: obra %d", domain.ErrNotFound, *filter.SiteID)
		}
		report.SiteName = site.Name
	}
	doc, err := uc.pdf.HistoryPDF(ctx, report)
	if err != nil {
		return nil, "", err
	}
	return doc, fmt.Sprintf("historial_%s.pdf", report.GeneratedAt.Format("20060102")), nil
}
