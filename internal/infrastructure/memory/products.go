package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

// folded normaliza para comparar sin distinguir mayúsculas. Un Caser no es seguro entre goroutines.
func folded(s string) string { return cases.Fold().String(strings.TrimSpace(s)) }

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	store *Store
	tx    *state
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	if err := r.store.check(OpProductCreate); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		for _, existing := range st.products {
			if folded(existing.SKU) == folded(p.SKU) {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateSKU, p.SKU)
			}
		}
		st.nextProduct++
		p.ID = st.nextProduct
		p.CurrentStock = 0
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		for _, p := range st.products {
			if folded(p.SKU) == folded(sku) {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

// FindByName devuelve el producto de menor id que coincide con name.
func (r *ProductRepo) FindByName(_ context.Context, name string, mode repository.NameMatch) (*entity.Product, error) {
	q := folded(name)
	if q == "" {
		return nil, nil
	}
	var out *entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		for _, p := range sortedProducts(st) {
			n := folded(p.Name)
			hit := n == q
			if mode != repository.NameMatchExact {
				hit = strings.Contains(n, q)
			}
			if hit {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) SKUExists(_ context.Context, sku string) (bool, error) {
	exists := false
	err := r.store.view(r.tx, func(st *state) error {
		for _, p := range st.products {
			if folded(p.SKU) == folded(sku) {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}

func (r *ProductRepo) Update(_ context.Context, id int64, fields repository.ProductUpdate) (*entity.Product, error) {
	if err := r.store.check(OpProductUpdate); err != nil {
		return nil, err
	}
	var out *entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return nil
		}
		if fields.Name != nil {
			p.Name = *fields.Name
		}
		if fields.Category != nil {
			p.Category = *fields.Category
		}
		if fields.UnitCost != nil {
			p.UnitCost = *fields.UnitCost
		}
		if fields.LastSupplier != nil {
			s := *fields.LastSupplier
			p.LastSupplier = &s
		}
		st.products[id] = p
		out = &p
		return nil
	})
	return out, err
}

func (r *ProductRepo) UpdateCost(_ context.Context, id int64, cost int64) error {
	if err := r.store.check(OpProductUpdate); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
		}
		p.UnitCost = cost
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	search := folded(filter.Search)
	var out []*entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		for _, p := range sortedProducts(st) {
			if search != "" && !strings.Contains(folded(p.Name), search) && !strings.Contains(folded(p.SKU), search) {
				continue
			}
			if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
				continue
			}
			p := p
			out = append(out, &p)
		}
		return nil
	})
	if filter.ByCategory {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Category != out[j].Category {
				return out[i].Category < out[j].Category
			}
			return out[i].Name < out[j].Name
		})
	}
	return out, err
}

func (r *ProductRepo) Delete(_ context.Context, id int64) (bool, error) {
	if err := r.store.check(OpProductDelete); err != nil {
		return false, err
	}
	deleted := false
	err := r.store.view(r.tx, func(st *state) error {
		if _, ok := st.products[id]; ok {
			delete(st.products, id)
			deleted = true
		}
		return nil
	})
	return deleted, err
}

func sortedProducts(st *state) []entity.Product {
	out := make([]entity.Product, 0, len(st.products))
	for _, p := range st.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// stockRepo capacidad de stock; solo existe dentro de Run.
type stockRepo struct {
	store *Store
	tx    *state
}

func (r *stockRepo) ApplyDelta(_ context.Context, productID, delta int64) error {
	if err := r.store.check(OpStockApplyDelta); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
		}
		p.CurrentStock += delta
		st.products[productID] = p
		return nil
	})
}

func (r *stockRepo) SetLastSupplier(_ context.Context, productID int64, supplier string) error {
	if err := r.store.check(OpStockSupplier); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
		}
		p.LastSupplier = &supplier
		st.products[productID] = p
		return nil
	})
}
