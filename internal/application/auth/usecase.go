package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/obralink/obralink-api/internal/application/dto"
	"github.com/obralink/obralink-api/internal/domain"
	"github.com/obralink/obralink-api/internal/domain/entity"
	"github.com/obralink/obralink-api/internal/domain/repository"
	"github.com/obralink/obralink-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Login verifica email/password con bcrypt y emite un JWT. Credenciales incorrectas o usuario
// inexistente devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: credenciales incorrectas", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("%w: credenciales incorrectas", domain.ErrUnauthorized)
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.IsAdmin, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Success: true,
		Nombre:  user.Name,
		Email:   user.Email,
		EsAdmin: user.IsAdmin,
		Token:   token,
	}, nil
}

// EnsureAdmin crea o actualiza el usuario administrador inicial (arranque con ADMIN_EMAIL/ADMIN_PASSWORD).
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, password, name string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return fmt.Errorf("%w: email y password del administrador son obligatorios", domain.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if name == "" {
		name = email
	}
	return uc.userRepo.Upsert(ctx, &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
	})
}
