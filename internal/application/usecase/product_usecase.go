package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/application/inventory"
	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

// InitialStockSupplier proveedor del movimiento que registra el stock inicial de un producto.
const InitialStockSupplier = "Stock inicial"

// ProductUseCase casos de uso del catálogo. El stock nunca se edita aquí: el stock inicial se
// registra como ENTRADA a través del ledger y el resto de los cambios pasa por movimientos.
type ProductUseCase struct {
	repo     repository.ProductRepository
	txRunner inventory.TxRunner
	ledger   *inventory.LedgerUseCase
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, txRunner inventory.TxRunner, ledger *inventory.LedgerUseCase) *ProductUseCase {
	return &ProductUseCase{repo: repo, txRunner: txRunner, ledger: ledger}
}

// Create crea un producto con stock 0 y, si corresponde, su ENTRADA de stock inicial en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	initial := in.InitialStock()
	if initial < 0 {
		return nil, fmt.Errorf("%w: el stock inicial no puede ser negativo", domain.ErrInvalidInput)
	}
	product := &entity.Product{
		Name:      in.Nombre,
		SKU:       in.SKU,
		Category:  strings.TrimSpace(in.Categoria),
		UnitCost:  in.PrecioCosto.Int64(),
		UnitPrice: in.PrecioVenta.Int64(),
	}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		if err := uc.ledger.CreateProductInTx(ctx, repos, product); err != nil {
			return err
		}
		if initial == 0 {
			return nil
		}
		supplier := InitialStockSupplier
		if _, err := uc.ledger.RecordInTx(ctx, repos, inventory.RecordMovementInput{
			ProductID: product.ID,
			Kind:      entity.MovementEntrada,
			Quantity:  initial,
			Supplier:  &supplier,
		}, time.Now()); err != nil {
			return err
		}
		created, err := repos.Products.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}
		product = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
	}
	return ToProductResponse(product), nil
}

// Update edita nombre, categoría, costo y proveedor. No hay vía para modificar el stock.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	fields := repository.ProductUpdate{UnitCost: dto.Int64Ptr(in.PrecioCosto)}
	if in.Nombre != nil {
		name := strings.TrimSpace(*in.Nombre)
		if name == "" {
			return nil, fmt.Errorf("%w: el nombre no puede quedar vacío", domain.ErrInvalidInput)
		}
		fields.Name = &name
	}
	if in.Categoria != nil {
		category := strings.TrimSpace(*in.Categoria)
		if category == "" {
			category = entity.DefaultCategory
		}
		fields.Category = &category
	}
	if in.PrecioCosto != nil && *in.PrecioCosto < 0 {
		return nil, fmt.Errorf("%w: el costo no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.Proveedor != nil {
		supplier := strings.TrimSpace(*in.Proveedor)
		fields.LastSupplier = &supplier
	}
	product, err := uc.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
	}
	return ToProductResponse(product), nil
}

// Delete borra el producto y todos sus movimientos en una transacción.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		product, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
		}
		if err := repos.Movements.DeleteByProduct(ctx, id); err != nil {
			return err
		}
		deleted, err := repos.Products.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
		}
		return nil
	})
}

// List lista productos filtrando por nombre/SKU y categoría.
func (uc *ProductUseCase) List(ctx context.Context, search, category string) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:   strings.TrimSpace(search),
		Category: strings.TrimSpace(category),
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return items, nil
}

// ToProductResponse convierte la entidad a su representación HTTP.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:              p.ID,
		Nombre:          p.Name,
		SKU:             p.SKU,
		Categoria:       p.Category,
		PrecioCosto:     p.UnitCost,
		PrecioVenta:     p.UnitPrice,
		StockActual:     p.CurrentStock,
		UltimoProveedor: p.LastSupplier,
	}
}
