package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, nombre, sku, categoria, precio_costo, precio_venta, stock_actual, ultimo_proveedor`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con stock_actual = 0.
// Un SKU repetido devuelve ErrDuplicateSKU sin abortar la transacción en curso.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO productos (nombre, sku, categoria, precio_costo, precio_venta, stock_actual, ultimo_proveedor)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
		ON CONFLICT DO NOTHING
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		p.Name, p.SKU, p.Category, p.UnitCost, p.UnitPrice, nullableString(p.LastSupplier),
	).Scan(&p.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSKU, p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.CurrentStock = 0
	return nil
}

// GetByID obtiene un producto por ID. nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM productos WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU busca por SKU sin distinguir mayúsculas.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+` FROM productos WHERE lower(sku) = lower($1) ORDER BY id LIMIT 1`,
		strings.TrimSpace(sku)))
	if err != nil {
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// FindByName devuelve el producto de menor id cuyo nombre coincide (contiene o exacto, sin mayúsculas).
func (r *ProductRepo) FindByName(ctx context.Context, name string, mode repository.NameMatch) (*entity.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM productos WHERE nombre ILIKE '%' || $1 || '%' ESCAPE '\' ORDER BY id LIMIT 1`
	arg := escapeLike(name)
	if mode == repository.NameMatchExact {
		query = `SELECT ` + productColumns + ` FROM productos WHERE lower(btrim(nombre)) = lower($1) ORDER BY id LIMIT 1`
		arg = name
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, fmt.Errorf("find product by name: %w", err)
	}
	return p, nil
}

// SKUExists indica si el SKU ya está tomado, sin distinguir mayúsculas.
func (r *ProductRepo) SKUExists(ctx context.Context, sku string) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM productos WHERE lower(sku) = lower($1))`,
		strings.TrimSpace(sku)).Scan(&exists); err != nil {
		return false, fmt.Errorf("sku exists: %w", err)
	}
	return exists, nil
}

// Update aplica la edición parcial. stock_actual no es parte de la sentencia.
func (r *ProductRepo) Update(ctx context.Context, id int64, f repository.ProductUpdate) (*entity.Product, error) {
	query := `
		UPDATE productos SET
			nombre           = COALESCE($2, nombre),
			categoria        = COALESCE($3, categoria),
			precio_costo     = COALESCE($4, precio_costo),
			ultimo_proveedor = CASE WHEN $5::text IS NULL THEN ultimo_proveedor ELSE NULLIF($5::text, '') END
		WHERE id = $1
		RETURNING ` + productColumns
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, f.Name, f.Category, f.UnitCost, f.LastSupplier))
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// UpdateCost reemplaza el costo unitario (último costo gana).
func (r *ProductRepo) UpdateCost(ctx context.Context, id int64, cost int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE productos SET precio_costo = $2 WHERE id = $1`, id, cost)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
	}
	return nil
}

// List lista productos con filtros opcionales.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, escapeLike(s))
		where = append(where, fmt.Sprintf(`(nombre ILIKE '%%' || $%d || '%%' ESCAPE '\' OR sku ILIKE '%%' || $%d || '%%' ESCAPE '\')`, len(args), len(args)))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		where = append(where, fmt.Sprintf(`lower(categoria) = lower($%d)`, len(args)))
	}
	query := `SELECT ` + productColumns + ` FROM productos`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	if f.ByCategory {
		query += ` ORDER BY categoria, nombre, id`
	} else {
		query += ` ORDER BY id`
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.UnitCost, &p.UnitPrice, &p.CurrentStock, &p.LastSupplier); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Delete borra el producto. movimientos.id_producto tiene ON DELETE CASCADE.
func (r *ProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Category, &p.UnitCost, &p.UnitPrice, &p.CurrentStock, &p.LastSupplier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// escapeLike escapa comodines de LIKE en texto del usuario.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// stockRepo capacidad de stock_actual. No se exporta: solo TxRunner la construye.
type stockRepo struct {
	q Querier
}

var _ repository.StockMutator = (*stockRepo)(nil)

func newStockRepository(q Querier) *stockRepo {
	return &stockRepo{q: q}
}

// ApplyDelta suma delta a stock_actual de forma relativa.
func (r *stockRepo) ApplyDelta(ctx context.Context, productID, delta int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE productos SET stock_actual = stock_actual + $1 WHERE id = $2`, delta, productID)
	if err != nil {
		return fmt.Errorf("apply stock delta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
	}
	return nil
}

// SetLastSupplier registra el proveedor de la última ENTRADA.
func (r *stockRepo) SetLastSupplier(ctx context.Context, productID int64, supplier string) error {
	tag, err := r.q.Exec(ctx, `UPDATE productos SET ultimo_proveedor = $1 WHERE id = $2`, supplier, productID)
	if err != nil {
		return fmt.Errorf("set last supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
	}
	return nil
}
