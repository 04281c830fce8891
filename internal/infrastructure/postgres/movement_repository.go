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

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, id_producto, tipo, cantidad, id_obra, fecha, fecha_registro, proveedor, recibido_por`

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento y completa ID y fecha_registro.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movimientos (id_producto, tipo, cantidad, id_obra, fecha, fecha_registro, proveedor, recibido_por)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()), $7, $8)
		RETURNING id, fecha, fecha_registro`
	err := r.q.QueryRow(ctx, query,
		m.ProductID, string(m.Kind), m.Quantity, m.SiteID,
		nullableTime(m.EventAt), nullableTime(m.RecordedAt),
		nullableString(m.Supplier), nullableString(m.ReceivedBy),
	).Scan(&m.ID, &m.EventAt, &m.RecordedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: producto %d u obra inexistente", domain.ErrNotFound, m.ProductID)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID. nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movimientos WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// GetForUpdate bloquea la fila hasta el fin de la transacción. Una reversa concurrente
// espera y luego no encuentra la fila.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movimientos WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("lock movement: %w", err)
	}
	return m, nil
}

// Delete borra el movimiento.
func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movimientos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: movimiento %d", domain.ErrNotFound, id)
	}
	return nil
}

// ListBySite movimientos de una obra, bloqueados para su reversa.
func (r *MovementRepo) ListBySite(ctx context.Context, siteID int64) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM movimientos WHERE id_obra = $1 ORDER BY id FOR UPDATE`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list movements by site: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// DeleteBySite borra los movimientos de una obra.
func (r *MovementRepo) DeleteBySite(ctx context.Context, siteID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM movimientos WHERE id_obra = $1`, siteID); err != nil {
		return fmt.Errorf("delete movements by site: %w", err)
	}
	return nil
}

// DeleteByProduct borra los movimientos de un producto.
func (r *MovementRepo) DeleteByProduct(ctx context.Context, productID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM movimientos WHERE id_producto = $1`, productID); err != nil {
		return fmt.Errorf("delete movements by product: %w", err)
	}
	return nil
}

// List historial con nombres de producto y obra, por fecha descendente.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementDetail, error) {
	where, args := movementWhere(f, "m.")
	query := `
		SELECT m.id, m.id_producto, m.tipo, m.cantidad, m.id_obra, m.fecha, m.fecha_registro, m.proveedor, m.recibido_por,
		       p.nombre, p.sku, o.nombre
		FROM movimientos m
		JOIN productos p ON p.id = m.id_producto
		LEFT JOIN obras o ON o.id = m.id_obra` + where + `
		ORDER BY m.fecha DESC, m.id DESC`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementDetail
	for rows.Next() {
		var d entity.MovementDetail
		var kind string
		if err := rows.Scan(
			&d.ID, &d.ProductID, &kind, &d.Quantity, &d.SiteID, &d.EventAt, &d.RecordedAt, &d.Supplier, &d.ReceivedBy,
			&d.ProductName, &d.ProductSKU, &d.SiteName,
		); err != nil {
			return nil, fmt.Errorf("scan movement detail: %w", err)
		}
		d.Kind = entity.MovementKind(kind)
		list = append(list, &d)
	}
	return list, rows.Err()
}

// movementWhere arma el WHERE para los filtros del historial; prefix califica las columnas.
func movementWhere(f repository.MovementFilter, prefix string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, prefix, len(args)))
	}
	if f.From != nil {
		add("%sfecha >= $%d", *f.From)
	}
	if f.To != nil {
		add("%sfecha <= $%d", *f.To)
	}
	if f.Kind != "" {
		add("%stipo = $%d", string(f.Kind))
	}
	if f.SiteID != nil {
		add("%sid_obra = $%d", *f.SiteID)
	}
	if f.ProductID != nil {
		add("%sid_producto = $%d", *f.ProductID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conds, " AND "), args
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var kind string
	err := row.Scan(&m.ID, &m.ProductID, &kind, &m.Quantity, &m.SiteID, &m.EventAt, &m.RecordedAt, &m.Supplier, &m.ReceivedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	return &m, nil
}
