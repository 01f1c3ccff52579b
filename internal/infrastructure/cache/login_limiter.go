package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/beanstock-api/internal/application/auth"
)

var _ auth.AttemptLimiter = (*LoginLimiter)(nil)

// LoginLimiter ventana fija de intentos de login por email (INCR + EXPIRE).
type LoginLimiter struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
}

// NewLoginLimiter construye el limitador: max intentos por ventana.
func NewLoginLimiter(rdb *redis.Client, max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{rdb: rdb, max: int64(max), window: window}
}

func loginKey(email string) string {
	return fmt.Sprintf("rate_limit:login:%s", email)
}

// Allow registra un intento. El primer intento de la ventana fija el TTL.
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	if l.rdb == nil {
		return true, nil
	}
	key := loginKey(email)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("login limiter: %w", err)
	}
	return incr.Val() <= l.max, nil
}

// Reset limpia el contador tras un login exitoso.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, loginKey(email)).Err()
}
