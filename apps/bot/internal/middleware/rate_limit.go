package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"vkinder/consts"
	"vkinder/pkg/logger"
	"vkinder/pkg/result"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ==================== Redis token bucket ====================

// luaTokenBucketRedis refills and takes from a token bucket atomically.
//
//	KEYS[1]: bucket key
//	ARGV[1]: now, unix milliseconds
//	ARGV[2]: capacity
//	ARGV[3]: tokens added per second
//	ARGV[4]: tokens taken by this request
//
// Returns 1 when the request may pass, 0 otherwise.
const luaTokenBucketRedis = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local current_tokens = tonumber(info[1])
local last_time = tonumber(info[2])

if current_tokens == nil then
    current_tokens = capacity
end
if last_time == nil then
    last_time = now
end

local time_diff = math.max(0, now - last_time)
local new_tokens = math.floor((time_diff * rate) / 1000)

-- last_time only moves when whole tokens were added, so fractions are not lost
if new_tokens > 0 then
    current_tokens = math.min(capacity, current_tokens + new_tokens)
    last_time = now
end

local allowed = 0
if current_tokens >= requested then
    current_tokens = current_tokens - requested
    allowed = 1
end

redis.call('HMSET', key, 'tokens', current_tokens, 'last_time', last_time)

local fill_time = math.ceil(capacity / rate)
local ttl = math.max(60, fill_time * 2)
redis.call('EXPIRE', key, ttl)

return allowed
`

// redisTimeout bounds one limiter round trip so a slow Redis cannot stall the endpoint.
const redisTimeout = 50 * time.Millisecond

// RedisRateLimiter is a token bucket per key kept in Redis.
// Every Redis failure lets the request through.
type RedisRateLimiter struct {
	redisClient *redis.Client
	rate        float64 // tokens per second
	burst       int     // bucket capacity
	mu          sync.RWMutex
}

// NewRedisRateLimiter builds a limiter; a nil client disables limiting.
func NewRedisRateLimiter(rate float64, burst int, redisClient *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		redisClient: redisClient,
		rate:        rate,
		burst:       burst,
	}
}

// SetClient swaps the Redis client.
func (r *RedisRateLimiter) SetClient(redisClient *redis.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redisClient = redisClient
}

// Allow takes one token from the bucket of key.
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	r.mu.RLock()
	client := r.redisClient
	r.mu.RUnlock()

	if client == nil || r.rate <= 0 {
		return true
	}

	redisCtx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	now := time.Now().UnixMilli()
	res, err := client.Eval(redisCtx, luaTokenBucketRedis, []string{key}, now, r.burst, r.rate, 1).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "rate limit check timed out, letting through",
				logger.String("key", key),
				logger.ErrorField("error", err),
			)
			return true
		}
		logger.Error(ctx, "rate limit check failed, letting through",
			logger.String("key", key),
			logger.ErrorField("error", err),
		)
		return true
	}

	allowed, ok := res.(int64)
	if !ok {
		logger.Warn(ctx, "unexpected rate limit reply, letting through",
			logger.String("key", key),
			logger.Any("result", res),
		)
		return true
	}
	return allowed == 1
}

// ==================== middleware ====================

// IPRateLimitMiddleware limits requests per client IP; keyFn maps the IP to the bucket key.
func IPRateLimitMiddleware(limiter *RedisRateLimiter, keyFn func(ip string) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := NewContextWithGin(c)

		// 1. without an IP there is nothing to key on
		ip, ok := GetClientIPSafe(c)
		if !ok {
			logger.Warn(ctx, "client ip unavailable, rate limit skipped",
				logger.String("path", c.Request.URL.Path),
			)
			c.Next()
			return
		}

		// 2. take a token
		if limiter != nil && !limiter.Allow(ctx, keyFn(ip)) {
			logger.Warn(ctx, "request rate limited",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			result.FailWithStatus(c, http.StatusTooManyRequests, consts.CodeTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
