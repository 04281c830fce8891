// Package pdf genera los reportes imprimibles del inventario con Maroto v2.
//
// Layout de la página A4 (ambos reportes):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + filtros       │  Fecha de emisión         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: una fila por producto o movimiento                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: unidades / valorización o totales del período     │
//	│  FIRMAS (solo inventario)                                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/obralink/obralink-api/internal/application/reporting"
	"github.com/obralink/obralink-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorCritical = &props.Color{Red: 200, Green: 30, Blue: 30}
	colorEntrada  = &props.Color{Red: 20, Green: 120, Blue: 60}
)

var _ reporting.PDFGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa reporting.PDFGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	company string
}

// NewMarotoReportGenerator construye el generador. company aparece en el encabezado.
func NewMarotoReportGenerator(company string) *MarotoReportGenerator {
	if strings.TrimSpace(company) == "" {
		company = "ObraLink"
	}
	return &MarotoReportGenerator{company: company}
}

func (g *MarotoReportGenerator) newDocument(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.company, true).
		Build()
	return maroto.New(cfg)
}

// InventoryPDF genera el inventario valorizado.
func (g *MarotoReportGenerator) InventoryPDF(_ context.Context, r reporting.InventoryReport) ([]byte, error) {
	m := g.newDocument("Reporte de Inventario")

	m.AddRows(headerRow(g.company, "REPORTE DE INVENTARIO", r.GeneratedAt, inventoryFilters(r)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeader([]column{
		{"Producto / SKU", 4, align.Left},
		{"Categoría", 2, align.Left},
		{"Stock", 2, align.Center},
		{"Costo Unit.", 2, align.Right},
		{"Total", 2, align.Right},
	}))
	for _, p := range r.Products {
		m.AddRows(productRow(p, r.HighlightBelow))
	}
	if len(r.Products) == 0 {
		m.AddRows(emptyRow("Sin productos para los filtros indicados"))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow([][2]string{
		{"Productos:", formatInt(int64(len(r.Products)))},
		{"Unidades totales:", formatInt(r.TotalUnits)},
		{"Valorización:", "$" + formatMoney(r.Valuation.StringFixed(0))},
	}))
	m.AddRows(line.NewRow(15))
	m.AddRows(signatureRow())

	return generate(m)
}

// HistoryPDF genera el historial de movimientos del período.
func (g *MarotoReportGenerator) HistoryPDF(_ context.Context, r reporting.HistoryReport) ([]byte, error) {
	m := g.newDocument("Historial de Movimientos")

	m.AddRows(headerRow(g.company, "HISTORIAL DE MOVIMIENTOS", r.GeneratedAt, historyFilters(r)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeader([]column{
		{"Fecha", 2, align.Left},
		{"Tipo", 2, align.Center},
		{"Producto", 3, align.Left},
		{"Cant.", 1, align.Center},
		{"Obra / Proveedor", 2, align.Left},
		{"Recibido por", 2, align.Left},
	}))
	for _, mv := range r.Movements {
		m.AddRows(movementRow(mv))
	}
	if len(r.Movements) == 0 {
		m.AddRows(emptyRow("Sin movimientos en el período"))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow([][2]string{
		{"Movimientos:", formatInt(int64(len(r.Movements)))},
		{"Total entradas:", formatInt(r.Totals.Entradas)},
		{"Total salidas:", formatInt(r.Totals.Salidas)},
	}))

	return generate(m)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

type column struct {
	label string
	size  int
	align align.Type
}

func headerRow(company, title string, at time.Time, filters string) core.Row {
	return row.New(20).Add(
		col.New(8).Add(
			text.New(company, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Top: 8}),
			text.New(filters, props.Text{Size: 7, Top: 14, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Emitido: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func tableHeader(cols []column) core.Row {
	r := row.New(8)
	for _, c := range cols {
		r.Add(col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		})))
	}
	return r
}

// productRow marca en rojo el stock bajo el umbral (incluye negativos).
func productRow(p *entity.Product, highlightBelow int64) core.Row {
	stockProps := props.Text{Size: 8, Align: align.Center, Top: 1}
	if p.CurrentStock < highlightBelow {
		stockProps.Style = fontstyle.Bold
		stockProps.Color = colorCritical
	}
	total := p.CurrentStock * p.UnitCost
	return row.New(7).Add(
		col.New(4).Add(text.New(p.Name+" ("+p.SKU+")", props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(p.Category, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(formatInt(p.CurrentStock), stockProps)),
		col.New(2).Add(text.New("$"+formatInt(p.UnitCost), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(2).Add(text.New("$"+formatInt(total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

func movementRow(mv *entity.MovementDetail) core.Row {
	kindProps := props.Text{Size: 8, Align: align.Center, Top: 1, Style: fontstyle.Bold, Color: colorEntrada}
	dest := deref(mv.Supplier, "—")
	if mv.Kind == entity.MovementSalida {
		kindProps.Color = colorCritical
		dest = deref(mv.SiteName, "—")
	}
	return row.New(7).Add(
		col.New(2).Add(text.New(mv.EventAt.Format("02/01/2006"), props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(string(mv.Kind), kindProps)),
		col.New(3).Add(text.New(mv.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(1).Add(text.New(formatInt(mv.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(dest, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(deref(mv.ReceivedBy, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
	)
}

func emptyRow(msg string) core.Row {
	return row.New(10).Add(col.New(12).Add(text.New(msg, props.Text{
		Size: 8, Align: align.Center, Top: 3, Color: colorGray,
	})))
}

func summaryRow(pairs [][2]string) core.Row {
	labels := make([]core.Component, 0, len(pairs))
	values := make([]core.Component, 0, len(pairs))
	for i, p := range pairs {
		top := float64(i * 6)
		labels = append(labels, text.New(p[0], props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}))
		values = append(values, text.New(p[1], props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}))
	}
	return row.New(float64(len(pairs)*6+2)).Add(
		col.New(6),
		col.New(3).Add(labels...),
		col.New(3).Add(values...),
	)
}

func signatureRow() core.Row {
	sig := func(label string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{Size: 9, Align: align.Center}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 6, Color: colorGray}),
		)
	}
	return row.New(14).Add(sig("Responsable de Bodega"), sig("Supervisor"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func inventoryFilters(r reporting.InventoryReport) string {
	var parts []string
	if r.Search != "" {
		parts = append(parts, "Búsqueda: "+r.Search)
	}
	if r.Category != "" {
		parts = append(parts, "Categoría: "+r.Category)
	}
	if len(parts) == 0 {
		return "Todos los productos"
	}
	return strings.Join(parts, "  |  ")
}

func historyFilters(r reporting.HistoryReport) string {
	var parts []string
	if r.From != nil {
		parts = append(parts, "Desde: "+r.From.Format("02/01/2006"))
	}
	if r.To != nil {
		parts = append(parts, "Hasta: "+r.To.Format("02/01/2006"))
	}
	if r.Kind != "" {
		parts = append(parts, "Tipo: "+string(r.Kind))
	}
	if r.SiteName != "" {
		parts = append(parts, "Obra: "+r.SiteName)
	}
	if len(parts) == 0 {
		return "Todos los movimientos"
	}
	return strings.Join(parts, "  |  ")
}

func deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func formatInt(n int64) string {
	return formatMoney(fmt.Sprintf("%d", n))
}

// formatMoney inserta puntos de miles en un string numérico sin decimales; respeta el signo.
// Ej: "25000" → "25.000", "-1000000" → "-1.000.000"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
