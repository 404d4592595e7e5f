package ports

import "context"

// RateLimiter aplica limite de tentativas por chave.
// Retorna errors.ErrTooManyRequests quando o limite é excedido.
type RateLimiter interface {
	Allow(ctx context.Context, key string) error
}
