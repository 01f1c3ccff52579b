package repository

import (
	"context"

	"github.com/jhoicas/beanstock-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Las lecturas devuelven (nil, nil) si el usuario no existe y cargan User.Roles.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id int64) error
	// ListByRole usuarios que tienen el rol (por nombre) en user_roles, más antiguos primero.
	ListByRole(ctx context.Context, roleName string) ([]*entity.User, error)
}
