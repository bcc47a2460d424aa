package throttle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Unlimited(t *testing.T) {
	l := NewLocal(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
}

func TestLocal_Spacing(t *testing.T) {
	l := NewLocal(20)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestLocal_Cancelled(t *testing.T) {
	l := NewLocal(0.01)
	require.NoError(t, l.Wait(context.Background()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx))
}

type failing struct{ calls int }

func (f *failing) Wait(context.Context) error {
	f.calls++
	return errors.New("boom")
}

func TestChain_StopsAtFirstError(t *testing.T) {
	f1, f2 := &failing{}, &failing{}
	err := Chain{nil, NewLocal(0), f1, f2}.Wait(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, f1.calls)
	assert.Equal(t, 0, f2.calls)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rc.Close() })
	return mr, rc
}

func TestRedis_FixedWindow(t *testing.T) {
	mr, rc := newRedis(t)
	now := time.Unix(1_700_000_000, 0)
	r := NewRedis(rc, "geocode", 2, time.Second)
	r.now = func() time.Time { return now }

	require.NoError(t, r.Wait(context.Background()))
	require.NoError(t, r.Wait(context.Background()))
	key := "throttle:geocode:1700000000"
	v, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	assert.Equal(t, 2*time.Second, mr.TTL(key))

	// 窗口已满，下一窗口在 1s 后，先于此超时
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)

	now = now.Add(time.Second)
	require.NoError(t, r.Wait(context.Background()))
	v, err = mr.Get("throttle:geocode:1700000001")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists(key))
}

func TestRedis_DownLetsThrough(t *testing.T) {
	mr, rc := newRedis(t)
	r := NewRedis(rc, "vacancy", 1, time.Second)
	mr.Close()
	assert.NoError(t, r.Wait(context.Background()))
}

func TestNewRedisRate(t *testing.T) {
	_, rc := newRedis(t)
	r := NewRedisRate(rc, "geocode", 0.5)
	require.NotNil(t, r)
	assert.Equal(t, int64(1), r.limit)
	assert.Equal(t, 2*time.Second, r.window)
	assert.Equal(t, 250*time.Millisecond, NewRedisRate(rc, "vacancy", 4).window)
	assert.Nil(t, NewRedisRate(rc, "x", 0))
	assert.Nil(t, NewRedisRate(nil, "x", 1))
}
