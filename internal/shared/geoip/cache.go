package geoip

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// 缓存 key 前缀与 TTL
const (
	keyPrefix = "geoip:"
	cacheTTL  = 24 * time.Hour
)

// RedisCache Redis 位置缓存
//
// 缓存失败只记日志：拿不到缓存就走外部查询，写不进缓存就算了。
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 从 URL 创建 Redis 位置缓存
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("geoip: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("geoip: connect to redis: %w", err)
	}

	log.Printf("[geoip] Connected to Redis cache at %s", opts.Addr)
	return &RedisCache{client: client}, nil
}

// Close 关闭 Redis 连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetLocation(ctx context.Context, ip string) (string, bool) {
	loc, err := c.client.Get(ctx, keyPrefix+ip).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[geoip] cache get %s: %v", ip, err)
		}
		return "", false
	}
	return loc, true
}

func (c *RedisCache) SetLocation(ctx context.Context, ip, location string) {
	if err := c.client.Set(ctx, keyPrefix+ip, location, cacheTTL).Err(); err != nil {
		log.Printf("[geoip] cache set %s: %v", ip, err)
	}
}

// 确保 RedisCache 实现了 Cache 接口
var _ Cache = (*RedisCache)(nil)
