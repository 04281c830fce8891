package repository

import (
	"context"
	"time"

	"github.com/obralink/obralink-api/internal/domain/entity"
)

// MovementFilter filtros para historial y totales por período.
type MovementFilter struct {
	From      *time.Time
	To        *time.Time
	Kind      entity.MovementKind
	SiteID    *int64
	ProductID *int64
}

// MovementRepository define el puerto de persistencia del ledger. No hay Update: las correcciones son
// borrar (reversa) + crear.
type MovementRepository interface {
	// Create inserta el movimiento y completa ID y RecordedAt.
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	// GetForUpdate obtiene el movimiento bloqueando la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error)
	Delete(ctx context.Context, id int64) error
	ListBySite(ctx context.Context, siteID int64) ([]*entity.Movement, error)
	DeleteBySite(ctx context.Context, siteID int64) error
	DeleteByProduct(ctx context.Context, productID int64) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementDetail, error)
}
