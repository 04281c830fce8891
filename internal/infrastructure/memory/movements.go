package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

// MovementRepo ledger en memoria.
type MovementRepo struct {
	store *Store
	tx    *state
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	if err := r.store.check(OpMovementCreate); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.products[m.ProductID]; !ok {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, m.ProductID)
		}
		if m.SiteID != nil {
			if _, ok := st.sites[*m.SiteID]; !ok {
				return fmt.Errorf("%w: obra %d", domain.ErrNotFound, *m.SiteID)
			}
		}
		st.nextMovement++
		m.ID = st.nextMovement
		if m.RecordedAt.IsZero() {
			m.RecordedAt = time.Now()
		}
		if m.EventAt.IsZero() {
			m.EventAt = m.RecordedAt
		}
		st.movements[m.ID] = *m
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id int64) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.store.view(r.tx, func(st *state) error {
		if m, ok := st.movements[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: Run ya serializa las transacciones.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *MovementRepo) Delete(_ context.Context, id int64) error {
	if err := r.store.check(OpMovementDelete); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.movements[id]; !ok {
			return fmt.Errorf("%w: movimiento %d", domain.ErrNotFound, id)
		}
		delete(st.movements, id)
		return nil
	})
}

func (r *MovementRepo) ListBySite(_ context.Context, siteID int64) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.store.view(r.tx, func(st *state) error {
		for _, m := range sortedMovements(st) {
			if m.SiteID != nil && *m.SiteID == siteID {
				m := m
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) DeleteBySite(_ context.Context, siteID int64) error {
	if err := r.store.check(OpMovementBySite); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		for id, m := range st.movements {
			if m.SiteID != nil && *m.SiteID == siteID {
				delete(st.movements, id)
			}
		}
		return nil
	})
}

func (r *MovementRepo) DeleteByProduct(_ context.Context, productID int64) error {
	if err := r.store.check(OpMovementByProduct); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		for id, m := range st.movements {
			if m.ProductID == productID {
				delete(st.movements, id)
			}
		}
		return nil
	})
}

// List historial ordenado por fecha descendente.
func (r *MovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.MovementDetail, error) {
	var out []*entity.MovementDetail
	err := r.store.view(r.tx, func(st *state) error {
		for _, m := range sortedMovements(st) {
			if !matches(m, filter) {
				continue
			}
			d := &entity.MovementDetail{Movement: m}
			if p, ok := st.products[m.ProductID]; ok {
				d.ProductName = p.Name
				d.ProductSKU = p.SKU
			}
			if m.SiteID != nil {
				if s, ok := st.sites[*m.SiteID]; ok {
					name := s.Name
					d.SiteName = &name
				}
			}
			out = append(out, d)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EventAt.Equal(out[j].EventAt) {
			return out[i].EventAt.After(out[j].EventAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func matches(m entity.Movement, f repository.MovementFilter) bool {
	if f.From != nil && m.EventAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.EventAt.After(*f.To) {
		return false
	}
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	if f.SiteID != nil && (m.SiteID == nil || *m.SiteID != *f.SiteID) {
		return false
	}
	if f.ProductID != nil && m.ProductID != *f.ProductID {
		return false
	}
	return true
}

func sortedMovements(st *state) []entity.Movement {
	out := make([]entity.Movement, 0, len(st.movements))
	for _, m := range st.movements {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
