package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/beanstock-api/internal/domain/entity"
	"github.com/jhoicas/beanstock-api/internal/domain/repository"
)

var _ repository.TokenRepository = (*TokenRepo)(nil)

// TokenRepo sesiones emitidas (tabla access_tokens).
type TokenRepo struct {
	q Querier
}

// NewTokenRepository construye el adaptador.
func NewTokenRepository(q Querier) *TokenRepo {
	return &TokenRepo{q: q}
}

// Create registra el jti emitido en login.
func (r *TokenRepo) Create(ctx context.Context, t *entity.AccessToken) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO access_tokens (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`, t.ID, t.UserID, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert access token: %w", err)
	}
	return nil
}

// IsActive true si el token existe, no fue revocado y no ha expirado.
func (r *TokenRepo) IsActive(ctx context.Context, id string, now time.Time) (bool, error) {
	var active bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM access_tokens
			WHERE id = $1 AND revoked_at IS NULL AND expires_at > $2
		)`, id, now).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("check access token: %w", err)
	}
	return active, nil
}

// Revoke marca el token como revocado (no-op si ya lo estaba).
func (r *TokenRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE access_tokens SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}
