package settings

import (
	"context"
	"encoding/json"
	"time"

	"attendance-notifier/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "settings:"

// cachedEntry is the envelope stored in Redis. Absent keys are cached too so
// a missing override does not hit Postgres on every dispatch.
type cachedEntry struct {
	Found bool            `json:"found"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Cache is a read-through Redis decorator over another Gateway. Cache errors
// degrade to direct lookups; they never fail a read.
type Cache struct {
	inner  Gateway
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(inner Gateway, client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "settings-cache"}),
	}
}

func (c *Cache) Get(ctx context.Context, key string) (Value, bool, error) {
	cached, err := c.client.Get(ctx, cacheKeyPrefix+key).Result()
	if err == nil {
		var entry cachedEntry
		if err := json.Unmarshal([]byte(cached), &entry); err == nil {
			if !entry.Found {
				return Value{}, false, nil
			}
			return decodeCached(entry.Value), true, nil
		}
		// Unreadable envelope: fall through to the inner store.
	} else if err != redis.Nil {
		c.logger.Warn("settings cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	value, found, err := c.inner.Get(ctx, key)
	if err != nil {
		return Value{}, false, err
	}

	c.store(ctx, key, value, found)
	return value, found, nil
}

func (c *Cache) store(ctx context.Context, key string, value Value, found bool) {
	entry := cachedEntry{Found: found}
	if found {
		if m, err := value.AsMap(); err == nil {
			raw, _ := json.Marshal(m)
			entry.Value = raw
		} else {
			raw, _ := json.Marshal(value.AsString())
			entry.Value = raw
		}
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("settings cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Forget drops cached entries for the given keys. Invoked when administrators
// change settings so the next lookup sees the new value immediately.
func (c *Cache) Forget(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = cacheKeyPrefix + k
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		c.logger.Warn("settings cache invalidation failed", map[string]interface{}{
			"keys":  keys,
			"error": err.Error(),
		})
	}
}

func decodeCached(raw json.RawMessage) Value {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err == nil {
		return Structured(m)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Raw(s)
	}
	return Raw(string(raw))
}
