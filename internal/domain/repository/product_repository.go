package repository

import (
	"context"

	"github.com/obralink/obralink-api/internal/domain/entity"
)

// NameMatch modo de búsqueda de productos por nombre (siempre sin distinguir mayúsculas).
type NameMatch string

// Modos de búsqueda por nombre.
const (
	NameMatchContains NameMatch = "contains" // comportamiento histórico (ILIKE %nombre%)
	NameMatchExact    NameMatch = "exact"
)

// ProductFilter filtros para listar productos.
type ProductFilter struct {
	Search   string // nombre o SKU, contiene
	Category string
	// ByCategory ordena por categoría y nombre (reportes) en vez de por id.
	ByCategory bool
}

// ProductUpdate campos editables del catálogo. No existe campo de stock: solo el ledger lo modifica.
type ProductUpdate struct {
	Name         *string
	Category     *string
	UnitCost     *int64
	LastSupplier *string
}

// ProductRepository define el puerto de persistencia del catálogo (DIP).
// Create siempre inserta stock_actual = 0.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	FindByName(ctx context.Context, name string, mode NameMatch) (*entity.Product, error)
	SKUExists(ctx context.Context, sku string) (bool, error)
	Update(ctx context.Context, id int64, fields ProductUpdate) (*entity.Product, error)
	UpdateCost(ctx context.Context, id int64, cost int64) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// StockMutator es la capacidad de modificar stock_actual. Solo el ledger la recibe (vía TxRunner).
// Las actualizaciones son relativas (stock_actual = stock_actual + delta), nunca leer-modificar-escribir.
type StockMutator interface {
	ApplyDelta(ctx context.Context, productID, delta int64) error
	// SetLastSupplier registra el proveedor de la última ENTRADA.
	SetLastSupplier(ctx context.Context, productID int64, supplier string) error
}
