//go:build db
// +build db

package postgres_test

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
	"github.com/obralink/obralink-api/internal/infrastructure/postgres"
	"github.com/obralink/obralink-api/pkg/config"
)

// openTestPool crea un schema propio por test, aplica las migraciones y lo borra al terminar.
// go test -tags db ./internal/infrastructure/postgres/ con OBRALINK_TEST_DB_DSN apuntando a un PostgreSQL.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("OBRALINK_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("OBRALINK_TEST_DB_DSN is not set")
	}
	ctx := context.Background()

	admin, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 2})
	require.NoError(t, err)
	schema := "obralink_it_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	_, err = admin.Exec(ctx, `CREATE SCHEMA `+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), `DROP SCHEMA `+schema+` CASCADE`)
		admin.Close()
	})

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: withSearchPath(t, dsn, schema), MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.MigrateUp(ctx, pool))
	return pool
}

func withSearchPath(t *testing.T, dsn, schema string) string {
	t.Helper()
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schema
	}
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String()
}

type pgWorld struct {
	pool     *pgxpool.Pool
	runner   *postgres.TxRunner
	products *postgres.ProductRepo
	sites    *postgres.SiteRepo
	reports  *postgres.ReportRepo
	ledger   *inventory.LedgerUseCase
}

func newPGWorld(t *testing.T) *pgWorld {
	pool := openTestPool(t)
	runner := postgres.NewTxRunner(pool)
	return &pgWorld{
		pool:     pool,
		runner:   runner,
		products: postgres.NewProductRepository(pool),
		sites:    postgres.NewSiteRepository(pool),
		reports:  postgres.NewReportRepository(pool),
		ledger:   inventory.NewLedgerUseCase(runner, postgres.NewMovementRepository(pool), inventory.LedgerConfig{CentralSiteID: 1}, nil, nil),
	}
}

func (w *pgWorld) createProduct(t *testing.T, p *entity.Product) {
	t.Helper()
	require.NoError(t, w.runner.Run(context.Background(), func(ctx context.Context, r inventory.TxRepos) error {
		return w.ledger.CreateProductInTx(ctx, r, p)
	}))
}

func (w *pgWorld) stock(t *testing.T, id int64) int64 {
	t.Helper()
	p, err := w.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func (w *pgWorld) movementCount(t *testing.T, productID int64) int {
	t.Helper()
	var n int
	require.NoError(t, w.pool.QueryRow(context.Background(),
		`SELECT count(*) FROM movimientos WHERE id_producto = $1`, productID).Scan(&n))
	return n
}

func strPtr(s string) *string { return &s }

func TestPostgres_RecordReverseAndReports(t *testing.T) {
	w := newPGWorld(t)
	ctx := context.Background()

	p := &entity.Product{Name: "Taladro", SKU: "TAL-1234", UnitCost: 1500}
	w.createProduct(t, p)
	site := &entity.Site{Name: "Edificio Norte", Client: "Constructora", Budget: 100000}
	require.NoError(t, w.sites.Create(ctx, site))

	_, err := w.ledger.RecordMovement(ctx, inventory.RecordMovementInput{
		ProductID: p.ID, Kind: entity.MovementEntrada, Quantity: 10, Supplier: strPtr("Sodimac"),
	})
	require.NoError(t, err)
	out, err := w.ledger.RecordMovement(ctx, inventory.RecordMovementInput{
		ProductID: p.ID, Kind: entity.MovementSalida, Quantity: 4, SiteID: &site.ID,
	})
	require.NoError(t, err)

	got, err := w.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, got.CurrentStock)
	require.NotNil(t, got.LastSupplier)
	assert.Equal(t, "Sodimac", *got.LastSupplier)

	totals, err := w.reports.PeriodTotals(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, repository.KindTotals{Entradas: 10, Salidas: 4}, totals)

	received, err := w.reports.SiteReceived(ctx, site.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, received)

	valuation, err := w.reports.Valuation(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(9000).Equal(valuation), "valorización %s", valuation)

	below, err := w.reports.CountBelow(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, below)
	below, err = w.reports.CountBelow(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, below)

	_, err = w.ledger.DeleteMovement(ctx, out.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, w.stock(t, p.ID))

	_, err = w.ledger.DeleteMovement(ctx, out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_SKUIsCaseInsensitive(t *testing.T) {
	w := newPGWorld(t)
	ctx := context.Background()
	w.createProduct(t, &entity.Product{Name: "Taladro", SKU: "TAL-1234"})

	exists, err := w.products.SKUExists(ctx, "tal-1234")
	require.NoError(t, err)
	assert.True(t, exists)

	err = w.runner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		return w.ledger.CreateProductInTx(ctx, r, &entity.Product{Name: "Otro", SKU: "tal-1234"})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

	// El índice único también rechaza el insert directo.
	err = w.products.Create(ctx, &entity.Product{Name: "Otro", SKU: "Tal-1234", Category: entity.DefaultCategory})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestPostgres_DuplicateInsertKeepsTxUsable(t *testing.T) {
	w := newPGWorld(t)
	ctx := context.Background()
	w.createProduct(t, &entity.Product{Name: "Taladro", SKU: "TAL-1234"})

	var dupErr error
	err := w.runner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		dupErr = r.Products.Create(ctx, &entity.Product{Name: "Taladro percutor", SKU: "TAL-1234", Category: entity.DefaultCategory})
		return r.Products.Create(ctx, &entity.Product{Name: "Taladro percutor", SKU: "TAL-1235", Category: entity.DefaultCategory})
	})
	require.NoError(t, err)
	assert.ErrorIs(t, dupErr, domain.ErrDuplicateSKU)

	p, err := w.products.GetBySKU(ctx, "tal-1235")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Taladro percutor", p.Name)
}

func TestPostgres_UpdateKeepsUnsetFields(t *testing.T) {
	w := newPGWorld(t)
	ctx := context.Background()
	p := &entity.Product{Name: "Cemento", SKU: "CEM-1000", Category: "Obra gruesa", UnitCost: 5000, LastSupplier: strPtr("Easy")}
	w.createProduct(t, p)

	cost := int64(5200)
	updated, err := w.products.Update(ctx, p.ID, repository.ProductUpdate{UnitCost: &cost})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Cemento", updated.Name)
	assert.Equal(t, "Obra gruesa", updated.Category)
	assert.EqualValues(t, 5200, updated.UnitCost)
	require.NotNil(t, updated.LastSupplier)

	updated, err = w.products.Update(ctx, p.ID, repository.ProductUpdate{Name: strPtr("Cemento 25kg"), LastSupplier: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Cemento 25kg", updated.Name)
	assert.EqualValues(t, 5200, updated.UnitCost)
	assert.Nil(t, updated.LastSupplier)

	missing, err := w.products.Update(ctx, 999999, repository.ProductUpdate{UnitCost: &cost})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgres_DeleteProductCascadesMovements(t *testing.T) {
	w := newPGWorld(t)
	ctx := context.Background()
	p := &entity.Product{Name: "Broca", SKU: "BRO-1000"}
	w.createProduct(t, p)
	_, err := w.ledger.RecordMovement(ctx, inventory.RecordMovementInput{ProductID: p.ID, Kind: entity.MovementEntrada, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 1, w.movementCount(t, p.ID))

	deleted, err := w.products.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Zero(t, w.movementCount(t, p.ID))
}

func TestPostgres_ReverseSiteMovements(t *testing.T) {
	w := newPGWorld(t)
	ctx := context.Background()
	p := &entity.Product{Name: "Malla Acma", SKU: "MAL-1000"}
	w.createProduct(t, p)
	site := &entity.Site{Name: "Casa Sur"}
	require.NoError(t, w.sites.Create(ctx, site))

	for _, qty := range []int64{3, 2} {
		_, err := w.ledger.RecordMovement(ctx, inventory.RecordMovementInput{
			ProductID: p.ID, Kind: entity.MovementSalida, Quantity: qty, SiteID: &site.ID,
		})
		require.NoError(t, err)
	}
	assert.EqualValues(t, -5, w.stock(t, p.ID))

	var reversed int
	require.NoError(t, w.runner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		var err error
		reversed, err = w.ledger.ReverseSiteMovementsInTx(ctx, r, site.ID)
		if err != nil {
			return err
		}
		_, err = r.Sites.Delete(ctx, site.ID)
		return err
	}))
	assert.Equal(t, 2, reversed)
	assert.Zero(t, w.stock(t, p.ID))
	assert.Zero(t, w.movementCount(t, p.ID))

	gone, err := w.sites.GetByID(ctx, site.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
