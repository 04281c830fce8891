package repository

import (
	"context"

	"github.com/obralink/obralink-api/internal/domain/entity"
)

// SiteRepository define el puerto de persistencia para obras (DIP).
type SiteRepository interface {
	Create(ctx context.Context, site *entity.Site) error
	GetByID(ctx context.Context, id int64) (*entity.Site, error)
	List(ctx context.Context) ([]*entity.Site, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
