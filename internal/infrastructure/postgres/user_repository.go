package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// FindByEmail obtiene un usuario por email sin distinguir mayúsculas. nil si no existe.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT id, nombre, email, password_hash, es_admin FROM usuarios WHERE lower(email) = lower($1)`
	var u entity.User
	err := r.pool.QueryRow(ctx, query, strings.TrimSpace(email)).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// Upsert crea el usuario o actualiza nombre, hash y es_admin si el email ya existe.
func (r *UserRepo) Upsert(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO usuarios (nombre, email, password_hash, es_admin)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ((lower(email))) DO UPDATE SET
			nombre        = EXCLUDED.nombre,
			password_hash = EXCLUDED.password_hash,
			es_admin      = EXCLUDED.es_admin
		RETURNING id`
	if err := r.pool.QueryRow(ctx, query, u.Name, strings.TrimSpace(u.Email), u.PasswordHash, u.IsAdmin).Scan(&u.ID); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
