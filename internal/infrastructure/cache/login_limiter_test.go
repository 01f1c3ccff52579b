package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/beanstock-api/pkg/config"
)

func TestLoginLimiter_SinRedis(t *testing.T) {
	l := NewLoginLimiter(nil, 5, time.Minute)
	ok, err := l.Allow(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, l.Reset(context.Background(), "a@example.com"))
}

func TestLoginKey(t *testing.T) {
	assert.Equal(t, "rate_limit:login:a@example.com", loginKey("a@example.com"))
}

func TestNewRedisClient_Desactivado(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, rdb)
}
