package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Cache key building
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// GetCache retrieves a value from Redis and unmarshals it into dest
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	val, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(val), dest)
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// DeleteCache deletes a key from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err()
}

// BalanceCacheKey is the cache key for a user's balance snapshot
func BalanceCacheKey(userID uint) string {
	return "balance:user:" + strconv.Itoa(int(userID))
}

// TxHistoryCacheKey is the cache key for one page of a user's ledger history
func TxHistoryCacheKey(userID uint, page, pageSize int) string {
	return "txhistory:user:" + strconv.Itoa(int(userID)) +
		":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
}

// InvalidateUserCaches drops the balance and ledger-history cache entries
// for a user after a balance mutation (first pages only, same as listing)
func InvalidateUserCaches(ctx context.Context, rdb *redis.Client, userID uint) {
	if rdb == nil {
		return
	}
	_ = DeleteCache(ctx, rdb, BalanceCacheKey(userID))
	for page := 1; page <= 5; page++ {
		_ = DeleteCache(ctx, rdb, TxHistoryCacheKey(userID, page, 20))
	}
}
