package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

// RoleRepo roles y tabla user_roles. Assign/Sync escriben además users.role_id:
// llamarlos con un Querier de transacción (TxRunner) para que ambos cambios sean atómicos.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

func (r *RoleRepo) getOne(ctx context.Context, where string, arg any) (*entity.Role, error) {
	var role entity.Role
	err := r.q.QueryRow(ctx, `SELECT id, name FROM roles WHERE `+where, arg).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}

// GetByName busca un rol por nombre exacto.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.getOne(ctx, "name = $1", name)
}

// GetByID busca un rol por id.
func (r *RoleRepo) GetByID(ctx context.Context, id int64) (*entity.Role, error) {
	return r.getOne(ctx, "id = $1", id)
}

// List catálogo de roles ordenado por id.
func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Role
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		list = append(list, &role)
	}
	return list, rows.Err()
}

// Assign agrega el rol (idempotente) y lo deja como rol primario.
func (r *RoleRepo) Assign(ctx context.Context, userID, roleID int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING`, userID, roleID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("assign role %d a usuario %d: %w", roleID, userID, domain.ErrNotFound)
		}
		return fmt.Errorf("assign role: %w", err)
	}
	return r.setPrimary(ctx, userID, roleID)
}

// Sync reemplaza todos los roles del usuario por roleID.
func (r *RoleRepo) Sync(ctx context.Context, userID, roleID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("sync roles: %w", err)
	}
	return r.Assign(ctx, userID, roleID)
}

func (r *RoleRepo) setPrimary(ctx context.Context, userID, roleID int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET role_id = $2, updated_at = NOW() WHERE id = $1`, userID, roleID)
	if err != nil {
		return fmt.Errorf("update users.role_id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// NamesForUser nombres de los roles del usuario ordenados por id de rol.
func (r *RoleRepo) NamesForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT r.name FROM user_roles ur JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1 ORDER BY r.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("roles de usuario: %w", err)
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan role name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
