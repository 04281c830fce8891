package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

// ReportRepo proyecciones calculadas sobre el estado publicado.
type ReportRepo struct {
	store *Store
}

func (r *ReportRepo) Valuation(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.store.view(nil, func(st *state) error {
		for _, p := range st.products {
			total = total.Add(decimal.NewFromInt(p.CurrentStock).Mul(decimal.NewFromInt(p.UnitCost)))
		}
		return nil
	})
	return total, err
}

func (r *ReportRepo) CountBelow(_ context.Context, threshold int64) (int64, error) {
	var n int64
	err := r.store.view(nil, func(st *state) error {
		for _, p := range st.products {
			if p.CurrentStock < threshold {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ReportRepo) TotalUnits(_ context.Context) (int64, error) {
	var n int64
	err := r.store.view(nil, func(st *state) error {
		for _, p := range st.products {
			n += p.CurrentStock
		}
		return nil
	})
	return n, err
}

func (r *ReportRepo) PeriodTotals(_ context.Context, filter repository.MovementFilter) (repository.KindTotals, error) {
	var t repository.KindTotals
	err := r.store.view(nil, func(st *state) error {
		for _, m := range st.movements {
			if !matches(m, filter) {
				continue
			}
			if m.Kind == entity.MovementSalida {
				t.Salidas += m.Quantity
			} else {
				t.Entradas += m.Quantity
			}
		}
		return nil
	})
	return t, err
}

func (r *ReportRepo) SiteReceived(_ context.Context, siteID int64) (int64, error) {
	var n int64
	err := r.store.view(nil, func(st *state) error {
		for _, m := range st.movements {
			if m.Kind == entity.MovementSalida && m.SiteID != nil && *m.SiteID == siteID {
				n += m.Quantity
			}
		}
		return nil
	})
	return n, err
}
