package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
)

// IngressInput ingreso manual completo: producto nuevo o existente más su ENTRADA.
type IngressInput struct {
	IsNew      bool
	ProductID  int64
	Name       string
	Category   string
	Quantity   int64
	UnitCost   int64
	EventAt    *time.Time
	Supplier   *string
	ReceivedBy *string
}

// IngressResult producto resultante y movimiento registrado.
type IngressResult struct {
	Product  *entity.Product
	Movement *entity.Movement
	Created  bool
}

// RegisterIngress crea o actualiza el costo del producto y registra la ENTRADA en una transacción.
func (uc *LedgerUseCase) RegisterIngress(ctx context.Context, in IngressInput) (*IngressResult, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if in.UnitCost < 0 {
		return nil, fmt.Errorf("%w: el costo no puede ser negativo", domain.ErrInvalidInput)
	}
	if !in.IsNew && in.ProductID <= 0 {
		return nil, fmt.Errorf("%w: id_producto requerido para un producto existente", domain.ErrInvalidInput)
	}

	var res IngressResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		now := time.Now()
		productID := in.ProductID
		if in.IsNew {
			p := &entity.Product{
				Name:         in.Name,
				Category:     in.Category,
				UnitCost:     in.UnitCost,
				LastSupplier: optional(in.Supplier),
			}
			if err := uc.CreateProductInTx(ctx, repos, p); err != nil {
				return err
			}
			productID = p.ID
			res.Created = true
		} else {
			if err := repos.Products.UpdateCost(ctx, productID, in.UnitCost); err != nil {
				return err
			}
		}

		mov, err := uc.RecordInTx(ctx, repos, RecordMovementInput{
			ProductID:  productID,
			Kind:       entity.MovementEntrada,
			Quantity:   in.Quantity,
			EventAt:    in.EventAt,
			Supplier:   in.Supplier,
			ReceivedBy: in.ReceivedBy,
		}, now)
		if err != nil {
			return err
		}
		res.Movement = mov

		p, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
		}
		res.Product = p
		return nil
	})
	if err != nil {
		uc.metrics.OperationFailed("ingress")
		return nil, err
	}
	uc.metrics.MovementRecorded(string(entity.MovementEntrada))
	return &res, nil
}
