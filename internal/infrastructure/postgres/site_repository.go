package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

var _ repository.SiteRepository = (*SiteRepo)(nil)

// SiteRepo implementación del puerto SiteRepository sobre PostgreSQL.
type SiteRepo struct {
	q Querier
}

// NewSiteRepository construye el adaptador de persistencia para obras. Pasar pool o tx (Querier).
func NewSiteRepository(q Querier) *SiteRepo {
	return &SiteRepo{q: q}
}

// Create persiste una nueva obra.
func (r *SiteRepo) Create(ctx context.Context, s *entity.Site) error {
	query := `INSERT INTO obras (nombre, cliente, presupuesto) VALUES ($1, $2, $3) RETURNING id`
	if err := r.q.QueryRow(ctx, query, s.Name, s.Client, s.Budget).Scan(&s.ID); err != nil {
		return fmt.Errorf("insert site: %w", err)
	}
	return nil
}

// GetByID obtiene una obra por ID. nil si no existe.
func (r *SiteRepo) GetByID(ctx context.Context, id int64) (*entity.Site, error) {
	var s entity.Site
	err := r.q.QueryRow(ctx, `SELECT id, nombre, cliente, presupuesto FROM obras WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Client, &s.Budget)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get site: %w", err)
	}
	return &s, nil
}

// List lista las obras por id.
func (r *SiteRepo) List(ctx context.Context) ([]*entity.Site, error) {
	rows, err := r.q.Query(ctx, `SELECT id, nombre, cliente, presupuesto FROM obras ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()
	var list []*entity.Site
	for rows.Next() {
		var s entity.Site
		if err := rows.Scan(&s.ID, &s.Name, &s.Client, &s.Budget); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Delete borra la obra. Sus movimientos deben revertirse antes en la misma tx.
func (r *SiteRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM obras WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("%w: la obra %d aún tiene movimientos", domain.ErrInvalidInput, id)
		}
		return false, fmt.Errorf("delete site: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
