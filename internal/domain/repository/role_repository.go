package repository

import (
	"context"

	"github.com/jhoicas/beanstock-api/internal/domain/entity"
)

// RoleRepository registro de roles y su asignación a usuarios (tabla user_roles).
// Assign y Sync también actualizan users.role_id; deben llamarse dentro de una transacción.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	GetByID(ctx context.Context, id int64) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	// Assign agrega el rol (idempotente) y lo deja como rol primario.
	Assign(ctx context.Context, userID, roleID int64) error
	// Sync reemplaza todos los roles del usuario por roleID.
	Sync(ctx context.Context, userID, roleID int64) error
	NamesForUser(ctx context.Context, userID int64) ([]string, error)
}
