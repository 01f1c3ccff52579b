// seed aplica el esquema y crea el administrador inicial (BOOTSTRAP_ADMIN_*) con id fijo.
// Es idempotente: si el usuario ya existe solo se asegura su rol Admin.
//
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/domain/repository"
	"github.com/jhoicas/beanstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/beanstock-api/pkg/config"
	"github.com/jhoicas/beanstock-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	boot := cfg.Bootstrap
	if boot.AdminPassword == "" {
		log.Fatal().Msg("BOOTSTRAP_ADMIN_PASSWORD es obligatorio")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	err = postgres.NewTxRunner(pool).Run(ctx, func(users repository.UserRepository, roles repository.RoleRepository) error {
		existing, err := users.GetByID(ctx, boot.AdminID)
		if err != nil {
			return err
		}
		if existing == nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(boot.AdminPassword), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			now := time.Now()
			u := &entity.User{
				ID:           boot.AdminID,
				Name:         strings.TrimSpace(boot.AdminName),
				Email:        strings.ToLower(strings.TrimSpace(boot.AdminEmail)),
				PasswordHash: string(hash),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := users.Create(ctx, u); err != nil {
				return err
			}
			log.Info().Int64("user_id", u.ID).Str("email", u.Email).Msg("administrador inicial creado")
		} else {
			log.Info().Int64("user_id", existing.ID).Msg("administrador inicial ya existe")
		}
		return roles.Assign(ctx, boot.AdminID, entity.RoleAdminID)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("sembrar administrador")
	}

	if err := postgres.SyncUserSequence(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("sincronizar secuencia")
	}
	log.Info().Msg("seed completado")
}
