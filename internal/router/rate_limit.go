package router

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/storedesk/internal/http/response"
	"github.com/storedesk/internal/i18n"
	"github.com/storedesk/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int // 超限后封禁时长，0 表示仅等待窗口结束
	MessageKey    string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) messageKey() string {
	if key := strings.TrimSpace(r.MessageKey); key != "" {
		return key
	}
	return "error.rate_limited"
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
if current == tonumber(ARGV[2]) + 1 and tonumber(ARGV[3]) > 0 then
	redis.call("EXPIRE", KEYS[1], ARGV[3])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware 频率限制中间件：有 Redis 时按固定窗口计数，否则退化为进程内令牌桶
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if !rule.enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	if client == nil {
		return localRateLimit(rule, keyFunc)
	}
	return func(c *gin.Context) {
		key := rule.buildKey(c, keyFunc)
		result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Result()
		if err != nil {
			logger.Warnw("rate_limit_redis_failed", "key", key, "error", err)
			abortRateLimitUnavailable(c)
			return
		}
		values, ok := result.([]interface{})
		if !ok || len(values) < 2 {
			abortRateLimitUnavailable(c)
			return
		}
		count, ok := toInt64(values[0])
		if !ok {
			abortRateLimitUnavailable(c)
			return
		}
		ttlSeconds, _ := toInt64(values[1])
		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			abortRateLimited(c, rule, waitSeconds)
			return
		}
		c.Next()
	}
}

// localRateLimit 单实例部署时的令牌桶限流，空闲 key 随缓存过期回收
func localRateLimit(rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	window := time.Duration(rule.WindowSeconds) * time.Second
	limiters := gocache.New(2*window, window)
	every := rate.Every(window / time.Duration(rule.MaxRequests))
	block := time.Duration(rule.BlockSeconds) * time.Second

	return func(c *gin.Context) {
		key := rule.buildKey(c, keyFunc)
		if _, until, ok := limiters.GetWithExpiration(blockKey(key)); ok {
			abortRateLimited(c, rule, int(math.Ceil(time.Until(until).Seconds())))
			return
		}
		limiter := loadLimiter(limiters, key, every, rule.MaxRequests, 2*window)
		reservation := limiter.Reserve()
		delay := reservation.Delay()
		if delay > 0 {
			reservation.Cancel()
			wait := delay
			if block > 0 {
				limiters.Set(blockKey(key), struct{}{}, block)
				wait = block
			}
			abortRateLimited(c, rule, int(math.Ceil(wait.Seconds())))
			return
		}
		c.Next()
	}
}

func blockKey(key string) string {
	return key + ":blocked"
}

func loadLimiter(limiters *gocache.Cache, key string, every rate.Limit, burst int, ttl time.Duration) *rate.Limiter {
	if value, ok := limiters.Get(key); ok {
		limiters.Set(key, value, ttl)
		return value.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(every, burst)
	if err := limiters.Add(key, limiter, ttl); err != nil {
		if value, ok := limiters.Get(key); ok {
			return value.(*rate.Limiter)
		}
	}
	return limiter
}

func (r RateLimitRule) buildKey(c *gin.Context, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if r.Prefix != "" {
		key = fmt.Sprintf("%s:%s", r.Prefix, key)
	}
	return key
}

func abortRateLimitUnavailable(c *gin.Context) {
	response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable"))
	c.Abort()
}

func abortRateLimited(c *gin.Context, rule RateLimitRule, waitSeconds int) {
	if waitSeconds < 1 {
		waitSeconds = 1
	}
	c.Header("Retry-After", fmt.Sprintf("%d", waitSeconds))
	response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), rule.messageKey(), waitSeconds))
	c.Abort()
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(readJSONField(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch value := payload[field].(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return fmt.Sprintf("%.0f", value)
	default:
		return ""
	}
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
