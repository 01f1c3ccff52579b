package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/beanstock-api/internal/application/auth"
	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/authz"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/domain/repository"
	"github.com/jhoicas/beanstock-api/pkg/logger"
	"github.com/jhoicas/beanstock-api/pkg/validator"
)

// AdminUseCase operaciones de administración de usuarios y roles.
// Cada operación consulta primero el guard con su acción.
type AdminUseCase struct {
	users     repository.UserRepository
	roles     repository.RoleRepository
	txRunner  auth.TxRunner
	registrar *auth.FarmerRegistrar
	guard     *authz.Guard
	validate  *validator.Validator
	log       *logger.Logger
}

// NewAdminUseCase construye el caso de uso.
func NewAdminUseCase(
	users repository.UserRepository,
	roles repository.RoleRepository,
	txRunner auth.TxRunner,
	registrar *auth.FarmerRegistrar,
	guard *authz.Guard,
	v *validator.Validator,
	log *logger.Logger,
) *AdminUseCase {
	return &AdminUseCase{
		users:     users,
		roles:     roles,
		txRunner:  txRunner,
		registrar: registrar,
		guard:     guard,
		validate:  v,
		log:       log,
	}
}

// CreateFarmer alta de una cuenta Farmer por un administrador.
func (uc *AdminUseCase) CreateFarmer(ctx context.Context, id *authz.Identity, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := uc.authorize(id, authz.ActionCreateFarmer); err != nil {
		return nil, err
	}
	user, err := uc.registrar.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("actor_id", id.UserID).Int64("user_id", user.ID).Msg("farmer creado por admin")
	return &dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		RoleID:    entity.RoleFarmerID,
		Role:      entity.RoleFarmer,
		CreatedAt: &user.CreatedAt,
	}, nil
}

// AssignRole agrega el rol al usuario y lo deja como rol primario (role_id) en la misma transacción.
func (uc *AdminUseCase) AssignRole(ctx context.Context, id *authz.Identity, in dto.AssignRoleRequest) (*dto.AssignRoleResponse, error) {
	if err := uc.authorize(id, authz.ActionAssignRole); err != nil {
		return nil, err
	}
	in.RoleName = strings.TrimSpace(in.RoleName)
	if errs := uc.validate.Struct(in); errs != nil {
		return nil, domain.ValidationFromFields(errs)
	}
	user, err := uc.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	role, err := uc.roles.GetByName(ctx, in.RoleName)
	if err != nil {
		return nil, err
	}
	fields := validator.Errors{}
	if user == nil {
		fields.Add("user_id", "el usuario seleccionado no existe")
	}
	if role == nil {
		fields.Add("role_name", "el rol seleccionado no existe")
	}
	if err := domain.ValidationFromFields(fields); err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(_ repository.UserRepository, roles repository.RoleRepository) error {
		return roles.Assign(ctx, user.ID, role.ID)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("actor_id", id.UserID).Int64("user_id", user.ID).Str("role", role.Name).Msg("rol asignado")
	return &dto.AssignRoleResponse{UserID: user.ID, AssignedRole: role.Name}, nil
}

// UpdateFarmer actualización parcial de una cuenta. Un role_id enviado reemplaza
// todos los roles del usuario y el rol primario en la misma transacción.
func (uc *AdminUseCase) UpdateFarmer(ctx context.Context, id *authz.Identity, userID int64, in dto.UpdateFarmerRequest) (*dto.UserResponse, error) {
	if err := uc.authorize(id, authz.ActionUpdateFarmer); err != nil {
		return nil, err
	}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		in.Name = &n
	}
	if in.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &e
	}
	if errs := uc.validate.Struct(in); errs != nil {
		return nil, domain.ValidationFromFields(errs)
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Email != nil && *in.Email != user.Email {
		other, err := uc.users.GetByEmail(ctx, *in.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, domain.NewValidationError("email", "el email ya está registrado")
		}
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now()

	err = uc.txRunner.Run(ctx, func(users repository.UserRepository, roles repository.RoleRepository) error {
		if err := users.Update(ctx, user); err != nil {
			return err
		}
		if in.RoleID != nil {
			return roles.Sync(ctx, user.ID, *in.RoleID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, domain.NewValidationError("email", "el email ya está registrado")
		}
		return nil, err
	}
	if in.RoleID != nil {
		user.RoleID = *in.RoleID
	}
	uc.log.Info().Int64("actor_id", id.UserID).Int64("user_id", user.ID).Msg("usuario actualizado")
	return &dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		RoleID:    user.RoleID,
		CreatedAt: &user.CreatedAt,
	}, nil
}

// ListFarmers usuarios con rol Farmer, proyectados con role_id = 2.
func (uc *AdminUseCase) ListFarmers(ctx context.Context, id *authz.Identity) ([]dto.UserResponse, error) {
	if err := uc.authorize(id, authz.ActionListFarmers); err != nil {
		return nil, err
	}
	users, err := uc.users.ListByRole(ctx, entity.RoleFarmer)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		createdAt := u.CreatedAt
		out = append(out, dto.UserResponse{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			RoleID:    entity.RoleFarmerID,
			CreatedAt: &createdAt,
		})
	}
	return out, nil
}

// GetUserRoles nombres de los roles asignados a un usuario.
func (uc *AdminUseCase) GetUserRoles(ctx context.Context, id *authz.Identity, userID int64) (*dto.UserRolesResponse, error) {
	if err := uc.authorize(id, authz.ActionGetUserRoles); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	names, err := uc.roles.NamesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return &dto.UserRolesResponse{UserID: userID, Roles: names}, nil
}

// ListRoles catálogo de roles.
func (uc *AdminUseCase) ListRoles(ctx context.Context, id *authz.Identity) ([]dto.RoleResponse, error) {
	if err := uc.authorize(id, authz.ActionListRoles); err != nil {
		return nil, err
	}
	roles, err := uc.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.RoleResponse{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// DeleteUser borra la cuenta y, en cascada, sus observaciones.
// El administrador inicial no se puede borrar.
func (uc *AdminUseCase) DeleteUser(ctx context.Context, id *authz.Identity, userID int64) error {
	if err := uc.authorize(id, authz.ActionDeleteUser); err != nil {
		return err
	}
	if userID == uc.guard.BootstrapAdminID() {
		return domain.ErrForbidden
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if err := uc.users.Delete(ctx, userID); err != nil {
		return err
	}
	uc.log.Info().Int64("actor_id", id.UserID).Int64("user_id", userID).Msg("usuario eliminado")
	return nil
}

func (uc *AdminUseCase) authorize(id *authz.Identity, action authz.Action) error {
	if id == nil {
		return domain.ErrUnauthorized
	}
	if err := uc.guard.Authorize(id, action, nil, authz.DenyAsForbidden); err != nil {
		uc.log.Warn().Int64("user_id", id.UserID).Str("action", string(action)).Msg("acceso denegado")
		return err
	}
	return nil
}
