package repository

import (
	"context"
	"time"

	"github.com/jhoicas/beanstock-api/internal/domain/entity"
)

// TokenRepository sesiones emitidas (revocables en logout).
type TokenRepository interface {
	Create(ctx context.Context, t *entity.AccessToken) error
	// IsActive true si el token existe, no está revocado y no expiró en now.
	IsActive(ctx context.Context, id string, now time.Time) (bool, error)
	Revoke(ctx context.Context, id string, at time.Time) error
}
