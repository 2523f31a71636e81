package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Matching redis.Nil
	"strconv"       // Key building
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging cache failures
)

// CacheTTL is how long a cached read stays valid
const CacheTTL = 60 * time.Second

// UsersCacheKey holds the active user listing
const UsersCacheKey = "users:active"

// LedgerCacheKey holds one user's session listing and cumulative total
func LedgerCacheKey(userID uint) string {
	return "ledger:user:" + strconv.FormatUint(uint64(userID), 10)
}

// Cache is a JSON read-through cache; a nil client disables it
type Cache struct {
	rdb *redis.Client
}

// NewCache wraps rdb, which may be nil
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Enabled reports whether a Redis client is configured
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if !c.Enabled() {
		return false
	}
	val, err := c.rdb.Get(ctx, key).Result() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return false // Key does not exist
	} else if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache entry undecodable")
		return false
	}
	return true
}

// Set stores a value in Redis with CacheTTL
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if !c.Enabled() {
		return
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, b, CacheTTL).Err(); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
}

// Delete invalidates the given keys
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logrus.WithFields(logrus.Fields{"keys": keys, "error": err.Error()}).Warn("Cache invalidation failed")
	}
}

// DeletePrefix invalidates every key starting with prefix
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) {
	if !c.Enabled() {
		return
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logrus.WithFields(logrus.Fields{"prefix": prefix, "error": err.Error()}).Warn("Cache scan failed")
		return
	}
	c.Delete(ctx, keys...)
}
