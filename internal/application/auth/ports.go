package auth

import (
	"context"

	"github.com/jhoicas/beanstock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Crear usuario + asignar rol (o reasignar roles) se confirma completo o no se confirma.
type TxRunner interface {
	Run(ctx context.Context, fn func(users repository.UserRepository, roles repository.RoleRepository) error) error
}

// AttemptLimiter cuenta intentos de login por clave (email). Implementación opcional (Redis).
type AttemptLimiter interface {
	// Allow registra un intento y devuelve false si se superó el límite de la ventana.
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}
