package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainerrors "github.com/rafabene/onemore-backend/internal/domain/errors"
	"github.com/rafabene/onemore-backend/internal/domain/ports"
)

// RedisLimiter é um limitador de janela fixa baseado em INCR + EXPIRE
type RedisLimiter struct {
	redis       redis.UniversalClient
	prefix      string
	maxAttempts int
	window      time.Duration
}

// NewRedisLimiter cria um limitador; prefix separa os contadores de cada fluxo
func NewRedisLimiter(client redis.UniversalClient, prefix string, maxAttempts int, window time.Duration) ports.RateLimiter {
	return &RedisLimiter{
		redis:       client,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	redisKey := l.prefix + ":" + key

	count, err := l.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("rate limiter unavailable: %w", err)
	}

	// Janela fixa: TTL só no primeiro hit
	if count == 1 {
		if err := l.redis.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return fmt.Errorf("rate limiter unavailable: %w", err)
		}
	}

	if count > int64(l.maxAttempts) {
		return domainerrors.ErrTooManyRequests
	}
	return nil
}

// NoopLimiter nunca limita; usado quando REDIS_URL não está configurado
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) error { return nil }

// NewRedisClient cria o client a partir de uma URL redis://
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}
