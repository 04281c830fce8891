package memory

import (
	"context"
	"sort"

	"github.com/obralink/obralink-api/internal/domain/entity"
)

// SiteRepo obras en memoria.
type SiteRepo struct {
	store *Store
	tx    *state
}

func (r *SiteRepo) Create(_ context.Context, s *entity.Site) error {
	if err := r.store.check(OpSiteCreate); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		st.nextSite++
		s.ID = st.nextSite
		st.sites[s.ID] = *s
		return nil
	})
}

func (r *SiteRepo) GetByID(_ context.Context, id int64) (*entity.Site, error) {
	var out *entity.Site
	err := r.store.view(r.tx, func(st *state) error {
		if s, ok := st.sites[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SiteRepo) List(_ context.Context) ([]*entity.Site, error) {
	var out []*entity.Site
	err := r.store.view(r.tx, func(st *state) error {
		for _, s := range st.sites {
			s := s
			out = append(out, &s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *SiteRepo) Delete(_ context.Context, id int64) (bool, error) {
	if err := r.store.check(OpSiteDelete); err != nil {
		return false, err
	}
	deleted := false
	err := r.store.view(r.tx, func(st *state) error {
		if _, ok := st.sites[id]; ok {
			delete(st.sites, id)
			deleted = true
		}
		return nil
	})
	return deleted, err
}
