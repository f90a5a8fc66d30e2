package settings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"attendance-notifier/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGateway wraps Memory and counts lookups so tests can see whether
// the cache absorbed a read.
type countingGateway struct {
	inner *Memory
	mu    sync.Mutex
	gets  int
	err   error
}

func (g *countingGateway) Get(ctx context.Context, key string) (Value, bool, error) {
	g.mu.Lock()
	g.gets++
	err := g.err
	g.mu.Unlock()
	if err != nil {
		return Value{}, false, err
	}
	return g.inner.Get(ctx, key)
}

func (g *countingGateway) getCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gets
}

func newCacheFixture(t *testing.T) (*Cache, *countingGateway, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	gw := &countingGateway{inner: NewMemory()}
	return NewCache(gw, client, time.Minute, logger.NewNoOpLogger()), gw, mr
}

func TestCacheReadThrough(t *testing.T) {
	cache, gw, _ := newCacheFixture(t)
	gw.inner.Set("mail_config", Structured(map[string]interface{}{"host": "mail.acme.test"}))

	for i := 0; i < 3; i++ {
		value, found, err := cache.Get(context.Background(), "mail_config")
		require.NoError(t, err)
		require.True(t, found)
		m, err := value.AsMap()
		require.NoError(t, err)
		assert.Equal(t, "mail.acme.test", m["host"])
	}

	assert.Equal(t, 1, gw.getCount())
}

func TestCacheCachesAbsence(t *testing.T) {
	cache, gw, _ := newCacheFixture(t)

	for i := 0; i < 3; i++ {
		_, found, err := cache.Get(context.Background(), "welcome_email_template")
		require.NoError(t, err)
		assert.False(t, found)
	}

	assert.Equal(t, 1, gw.getCount())
}

func TestCachePreservesRawStrings(t *testing.T) {
	cache, gw, _ := newCacheFixture(t)
	gw.inner.Set("company_name", Raw("Acme Corp"))

	// Once from the store, once from the cache.
	for i := 0; i < 2; i++ {
		value, found, err := cache.Get(context.Background(), "company_name")
		require.NoError(t, err)
		require.True(t, found)
		assert.False(t, value.IsStructured())
		assert.Equal(t, "Acme Corp", value.AsString())
	}
	assert.Equal(t, 1, gw.getCount())
}

func TestCacheForget(t *testing.T) {
	cache, gw, _ := newCacheFixture(t)
	gw.inner.Set("mail_config", Structured(map[string]interface{}{"host": "old.acme.test"}))

	_, _, err := cache.Get(context.Background(), "mail_config")
	require.NoError(t, err)

	gw.inner.Set("mail_config", Structured(map[string]interface{}{"host": "new.acme.test"}))
	cache.Forget(context.Background(), "mail_config")

	value, found, err := cache.Get(context.Background(), "mail_config")
	require.NoError(t, err)
	require.True(t, found)
	m, _ := value.AsMap()
	assert.Equal(t, "new.acme.test", m["host"])
	assert.Equal(t, 2, gw.getCount())
}

func TestCacheEntryExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	gw := &countingGateway{inner: NewMemory()}
	gw.inner.Set("login_url", Raw("https://acme.test/login"))
	cache := NewCache(gw, client, 5*time.Second, logger.NewNoOpLogger())

	_, _, err := cache.Get(context.Background(), "login_url")
	require.NoError(t, err)

	mr.FastForward(6 * time.Second)

	_, _, err = cache.Get(context.Background(), "login_url")
	require.NoError(t, err)
	assert.Equal(t, 2, gw.getCount())
}

func TestCacheDegradesWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	gw := &countingGateway{inner: NewMemory()}
	gw.inner.Set("company_name", Raw("Acme Corp"))
	cache := NewCache(gw, client, time.Minute, logger.NewNoOpLogger())

	mr.Close()

	value, found, err := cache.Get(context.Background(), "company_name")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Acme Corp", value.AsString())
}

func TestCachePropagatesInnerErrors(t *testing.T) {
	cache, gw, _ := newCacheFixture(t)
	gw.mu.Lock()
	gw.err = errors.New("store unavailable")
	gw.mu.Unlock()

	_, found, err := cache.Get(context.Background(), "mail_config")
	require.Error(t, err)
	assert.False(t, found)
}
