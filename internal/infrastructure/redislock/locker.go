package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/elhamd/elhamd-api/internal/domain"
)

// borra la clave solo si el token sigue siendo el nuestro
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker lock exclusivo por clave sobre Redis (SET NX PX + liberación con token).
type Locker struct {
	client redis.Cmdable
}

// NewLocker crea el locker.
func NewLocker(client redis.Cmdable) *Locker {
	return &Locker{client: client}
}

// Acquire toma el lock por ttl. Si ya está tomado devuelve domain.ErrInvoiceLocked.
// La función devuelta libera el lock solo si no expiró y otro lo tomó.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrInvoiceLocked
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("redis release %s: %w", key, err)
		}
		return nil
	}, nil
}
