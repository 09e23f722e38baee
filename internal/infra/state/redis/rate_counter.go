package redisstate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRateCounter 用 Redis 的 INCR 实现固定窗口计数，供限流中间件使用
type RedisRateCounter struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRateCounter 创建 RedisRateCounter 实例
func NewRedisRateCounter(client *redis.Client, keyPrefix string) *RedisRateCounter {
	if client == nil {
		panic("redis client cannot be nil for RedisRateCounter")
	}
	if keyPrefix == "" {
		keyPrefix = "avarias:"
	}
	return &RedisRateCounter{client: client, keyPrefix: keyPrefix}
}

func (r *RedisRateCounter) rateKey(clientKey string) string {
	return fmt.Sprintf("%sratelimit:%s", r.keyPrefix, clientKey)
}

// Hit 把 clientKey 在当前窗口内的计数加一并返回新值。
// INCR 和 TTL 放在同一个 Pipeline 中发送，每次都检查 key 是否缺少过期时间，缺少时补上 EXPIRE。
func (r *RedisRateCounter) Hit(ctx context.Context, clientKey string, window time.Duration) (int64, error) {
	key := r.rateKey(clientKey)
	pipe := r.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis: incr %s: %w", key, err)
	}

	count := incrCmd.Val()
	if needsExpiry(ttlCmd.Val()) {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("redis: expire %s: %w", key, err)
		}
	}
	return count, nil
}

// needsExpiry 报告 TTL 的结果是否表示 key 没有过期时间 (-1)。
func needsExpiry(ttl time.Duration) bool {
	return ttl < 0
}
