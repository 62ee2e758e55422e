package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/storedesk/internal/config"

	json "github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	localDefaultTTL      = 5 * time.Minute
	localCleanupInterval = 10 * time.Minute
)

var (
	redisClient  *redis.Client
	redisPrefix  = "sd"
	redisEnabled bool

	localOnce  sync.Once
	localStore *gocache.Cache
)

// InitRedis 初始化 Redis 客户端；未启用时使用进程内缓存
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		redisEnabled = false
		redisClient = nil
		return nil
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	if prefix := strings.TrimSpace(cfg.Prefix); prefix != "" {
		redisPrefix = prefix
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", addr, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	redisEnabled = true
	return nil
}

// Enabled 判断 Redis 是否启用
func Enabled() bool {
	return redisEnabled && redisClient != nil
}

// Client 获取 Redis 客户端
func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return redisClient
}

// Ping 检查 Redis 连通性，未启用时视为正常
func Ping(ctx context.Context) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func Close() error {
	if !Enabled() {
		return nil
	}
	return redisClient.Close()
}

func local() *gocache.Cache {
	localOnce.Do(func() {
		localStore = gocache.New(localDefaultTTL, localCleanupInterval)
	})
	return localStore
}

// GetJSON 获取 JSON 缓存
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		raw, ok := local().Get(buildKey(key))
		if !ok {
			return false, nil
		}
		payload, ok := raw.([]byte)
		if !ok {
			return false, nil
		}
		if err := json.Unmarshal(payload, dest); err != nil {
			return false, err
		}
		return true, nil
	}
	val, err := redisClient.Get(ctx, buildKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if !Enabled() {
		local().Set(buildKey(key), payload, ttl)
		return nil
	}
	return redisClient.Set(ctx, buildKey(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		local().Delete(buildKey(key))
		return nil
	}
	return redisClient.Del(ctx, buildKey(key)).Err()
}

// Flush 清空进程内缓存（仅测试使用）
func Flush() {
	local().Flush()
}

func buildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return redisPrefix
	}
	return fmt.Sprintf("%s:%s", redisPrefix, trimmed)
}
