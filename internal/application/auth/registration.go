package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/beanstock-api/internal/application/dto"
	"github.com/jhoicas/beanstock-api/internal/domain"
	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/domain/repository"
	"github.com/jhoicas/beanstock-api/pkg/validator"
)

const msgEmailTaken = "el email ya está registrado"

// FarmerRegistrar crea cuentas con rol Farmer. Lo usan el registro público y el alta por admin.
type FarmerRegistrar struct {
	users    repository.UserRepository
	txRunner TxRunner
	validate *validator.Validator
}

// NewFarmerRegistrar construye el registrador.
func NewFarmerRegistrar(users repository.UserRepository, txRunner TxRunner, v *validator.Validator) *FarmerRegistrar {
	return &FarmerRegistrar{users: users, txRunner: txRunner, validate: v}
}

// Register valida, hashea el password con bcrypt y crea el usuario + rol Farmer en una sola transacción.
func (r *FarmerRegistrar) Register(ctx context.Context, in dto.RegisterRequest) (*entity.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if errs := r.validate.Struct(in); errs != nil {
		return nil, domain.ValidationFromFields(errs)
	}
	existing, err := r.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewValidationError("email", msgEmailTaken)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		RoleID:       entity.RoleFarmerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = r.txRunner.Run(ctx, func(users repository.UserRepository, roles repository.RoleRepository) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return roles.Assign(ctx, user.ID, entity.RoleFarmerID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, domain.NewValidationError("email", msgEmailTaken)
		}
		return nil, err
	}
	user.Roles = []string{entity.RoleFarmer}
	return user, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
