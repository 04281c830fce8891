package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/application/reporting"
	"github.com/obralink/obralink-api/internal/application/usecase"
	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
	"github.com/obralink/obralink-api/internal/infrastructure/memory"
)

type fakePDF struct {
	inventory reporting.InventoryReport
	history   reporting.HistoryReport
}

func (f *fakePDF) InventoryPDF(_ context.Context, r reporting.InventoryReport) ([]byte, error) {
	f.inventory = r
	return []byte("%PDF-inv"), nil
}

func (f *fakePDF) HistoryPDF(_ context.Context, r reporting.HistoryReport) ([]byte, error) {
	f.history = r
	return []byte("%PDF-hist"), nil
}

type world struct {
	store     *memory.Store
	ledger    *inventory.LedgerUseCase
	reconcile *inventory.ReconcileUseCase
	products  *usecase.ProductUseCase
	sites     *usecase.SiteUseCase
	reports   *reporting.ReportUseCase
	pdf       *fakePDF
}

func ptr[T any](v T) *T { return &v }

func newWorld() *world {
	store := memory.New()
	ledger := inventory.NewLedgerUseCase(store, store.Movements(), inventory.LedgerConfig{CentralSiteID: 1}, nil, nil)
	pdf := &fakePDF{}
	return &world{
		store:     store,
		ledger:    ledger,
		reconcile: inventory.NewReconcileUseCase(store, ledger, repository.NameMatchContains, nil, nil),
		products:  usecase.NewProductUseCase(store.Products(), store, ledger),
		sites:     usecase.NewSiteUseCase(store.Sites(), store.Reports(), store, ledger, 1, nil),
		reports:   reporting.NewReportUseCase(store.Reports(), store.Products(), store.Movements(), store.Sites(), pdf, 5),
		pdf:       pdf,
	}
}

// Recorre los escenarios de punta a punta: alta, despacho, reversa, bodega protegida,
// importación de factura y valorización.
func TestLedgerScenarios(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	// 1. alta + ENTRADA
	taladro, err := w.products.Create(ctx, dto.CreateProductRequest{Nombre: "Taladro", PrecioCosto: 1000})
	require.NoError(t, err)
	_, err = w.ledger.RecordMovement(ctx, inventory.RecordMovementInput{ProductID: taladro.ID, Kind: entity.MovementEntrada, Quantity: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 20, stock(t, w, taladro.ID))

	// 2. SALIDA a obra
	centro, err := w.sites.Create(ctx, dto.CreateSiteRequest{Nombre: "Edificio Centro"})
	require.NoError(t, err)
	out, err := w.ledger.RecordMovement(ctx, inventory.RecordMovementInput{ProductID: taladro.ID, Kind: entity.MovementSalida, Quantity: 5, SiteID: &centro.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 15, stock(t, w, taladro.ID))
	received, err := w.reports.SiteReceived(ctx, centro.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, received)

	// 3. reversa de la SALIDA
	_, err = w.ledger.DeleteMovement(ctx, out.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 20, stock(t, w, taladro.ID))
	received, err = w.reports.SiteReceived(ctx, centro.ID)
	require.NoError(t, err)
	assert.Zero(t, received)

	// 4. la Bodega Central no se borra
	before, err := w.sites.List(ctx)
	require.NoError(t, err)
	_, err = w.sites.Delete(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrProtected)
	after, err := w.sites.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before))

	// 5. importación de factura
	res, err := w.reconcile.Import(ctx, []inventory.LineItem{
		{Name: "Taladro", Quantity: 10, UnitCost: 1200},
		{Name: "NuevoItem", Quantity: 3, UnitCost: 500},
	})
	require.NoError(t, err)
	got, err := w.products.GetByID(ctx, taladro.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 30, got.StockActual)
	assert.EqualValues(t, 1200, got.PrecioCosto)
	nuevo, err := w.products.GetByID(ctx, res.Lines[1].ProductID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, nuevo.StockActual)
	assert.Equal(t, entity.ImportCategory, nuevo.Categoria)

	// 6. valorización
	valuation, err := w.reports.Valuation(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(37500).Equal(valuation), "valorización %s", valuation)
}

func TestSummaryAndCriticalProducts(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	for _, in := range []dto.CreateProductRequest{
		{Nombre: "Taladro", PrecioCosto: 1000, StockInicial: 2},
		{Nombre: "Cemento", PrecioCosto: 5000, StockInicial: 40},
		{Nombre: "Arena", PrecioCosto: 300, StockInicial: 0},
	} {
		_, err := w.products.Create(ctx, in)
		require.NoError(t, err)
	}

	sum, err := w.reports.Summary(ctx, nil, repository.MovementFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, sum.Umbral)
	assert.EqualValues(t, 2, sum.Criticos)
	assert.EqualValues(t, 42, sum.UnidadesTotales)
	assert.EqualValues(t, 42, sum.Entradas)
	assert.Zero(t, sum.Salidas)
	assert.True(t, decimal.NewFromInt(202000).Equal(sum.Valorizacion))

	critical, err := w.reports.CriticalProducts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, critical, 2)
	assert.Equal(t, "Arena", critical[0].Nombre)
	assert.EqualValues(t, 5, critical[0].Faltante)
	assert.Equal(t, 1, critical[0].Prioridad)
	assert.Equal(t, "Taladro", critical[1].Nombre)

	n, err := w.reports.CriticalCount(ctx, ptr(int64(50)))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestThreshold_ZeroIsExplicit(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	_, err := w.products.Create(ctx, dto.CreateProductRequest{Nombre: "Arena", PrecioCosto: 300})
	require.NoError(t, err)

	limit, err := w.reports.Threshold(nil)
	require.NoError(t, err)
	assert.EqualValues(t, 5, limit)

	sum, err := w.reports.Summary(ctx, ptr(int64(0)), repository.MovementFilter{})
	require.NoError(t, err)
	assert.Zero(t, sum.Umbral)
	assert.Zero(t, sum.Criticos)

	critical, err := w.reports.CriticalProducts(ctx, ptr(int64(0)))
	require.NoError(t, err)
	assert.Empty(t, critical)

	_, err = w.reports.CriticalCount(ctx, ptr(int64(-1)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPeriodTotalsRejectsInvertedRange(t *testing.T) {
	w := newWorld()
	from := time.Now()
	to := from.Add(-time.Hour)
	_, err := w.reports.PeriodTotals(context.Background(), repository.MovementFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInventoryPDF_FiltersAndTotals(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	_, err := w.products.Create(ctx, dto.CreateProductRequest{Nombre: "Sierra", Categoria: "Herramientas", PrecioCosto: 100, StockInicial: 3})
	require.NoError(t, err)
	_, err = w.products.Create(ctx, dto.CreateProductRequest{Nombre: "Cemento", Categoria: "Obra gruesa", PrecioCosto: 10, StockInicial: 8})
	require.NoError(t, err)

	doc, name, err := w.reports.InventoryPDF(ctx, "", "Herramientas")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-inv"), doc)
	assert.Regexp(t, `^inventario_\d{8}\.pdf$`, name)
	require.Len(t, w.pdf.inventory.Products, 1)
	assert.EqualValues(t, 3, w.pdf.inventory.TotalUnits)
	assert.True(t, decimal.NewFromInt(300).Equal(w.pdf.inventory.Valuation))
	assert.EqualValues(t, reporting.PDFHighlightBelow, w.pdf.inventory.HighlightBelow)
}

func TestHistoryPDF_SiteFilter(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	p, err := w.products.Create(ctx, dto.CreateProductRequest{Nombre: "Taladro", StockInicial: 10})
	require.NoError(t, err)
	obra, err := w.sites.Create(ctx, dto.CreateSiteRequest{Nombre: "Casa Playa"})
	require.NoError(t, err)
	_, err = w.ledger.RecordMovement(ctx, inventory.RecordMovementInput{ProductID: p.ID, Kind: entity.MovementSalida, Quantity: 4, SiteID: &obra.ID})
	require.NoError(t, err)

	_, _, err = w.reports.HistoryPDF(ctx, repository.MovementFilter{SiteID: &obra.ID})
	require.NoError(t, err)
	assert.Equal(t, "Casa Playa", w.pdf.history.SiteName)
	assert.Len(t, w.pdf.history.Movements, 1)
	assert.EqualValues(t, 4, w.pdf.history.Totals.Salidas)

	missing := int64(99)
	_, _, err = w.reports.HistoryPDF(ctx, repository.MovementFilter{SiteID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func stock(t *testing.T, w *world, id int64) int64 {
	t.Helper()
	p, err := w.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockActual
}
