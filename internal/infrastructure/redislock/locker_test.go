package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elhamd/elhamd-api/internal/domain"
	"github.com/elhamd/elhamd-api/pkg/config"
)

func newLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client), mr
}

func TestLocker_SegundoAcquireFalla(t *testing.T) {
	l, _ := newLocker(t)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "lock:invoice:inv-1:payments", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "lock:invoice:inv-1:payments", time.Minute)
	assert.ErrorIs(t, err, domain.ErrInvoiceLocked)

	// otra factura no se ve afectada
	other, err := l.Acquire(ctx, "lock:invoice:inv-2:payments", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	again, err := l.Acquire(ctx, "lock:invoice:inv-1:payments", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestLocker_ReleaseNoBorraLockAjeno(t *testing.T) {
	l, mr := newLocker(t)
	ctx := context.Background()
	key := "lock:invoice:inv-1:payments"

	release, err := l.Acquire(ctx, key, time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	_, err = l.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	require.NoError(t, release(ctx))
	assert.True(t, mr.Exists(key), "el lock del segundo dueño debe seguir vigente")
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := NewClient(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	// servidor caído: el PING falla
	mr.Close()
	_, err = NewClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
