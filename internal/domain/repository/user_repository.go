package repository

import (
	"context"

	"github.com/obralink/obralink-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para usuarios.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Upsert crea o actualiza por email.
	Upsert(ctx context.Context, user *entity.User) error
}
