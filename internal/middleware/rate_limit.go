package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter counts requests in Redis fixed windows. When Redis fails it
// falls back to an in-process limiter.
type RateLimiter struct {
	redis    *redis.Client
	fallback *LocalLimiter
	logger   *zap.Logger
}

func NewRateLimiter(redisURL string, maxRequests int, window time.Duration, logger *zap.Logger) (*RateLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRateLimiterWithClient(client, NewLocalLimiter(maxRequests, window), logger), nil
}

func NewRateLimiterWithClient(client *redis.Client, fallback *LocalLimiter, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{redis: client, fallback: fallback, logger: logger.Named("rate_limit")}
}

// allow increments key and reports whether the request fits, plus the
// remaining budget and the time until the window resets.
func (rl *RateLimiter) allow(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, int, time.Duration) {
	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		rl.logger.Warn("redis unavailable, using local limiter", zap.String("key", key), zap.Error(err))
		return rl.fallback.Allow(key, time.Now()), -1, window
	}

	if count == 1 {
		rl.redis.Expire(ctx, key, window)
	}

	if count > int64(maxRequests) {
		ttl, err := rl.redis.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}
		return false, 0, ttl
	}
	return true, maxRequests - int(count), 0
}

func (rl *RateLimiter) limit(c *gin.Context, key string, maxRequests int, window time.Duration, message string) {
	allowed, remaining, retryAfter := rl.allow(c.Request.Context(), key, maxRequests, window)
	if !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		abortWithError(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", message)
		return
	}

	if remaining >= 0 {
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	}
	c.Next()
}

// RateLimitByIP limits requests per route and client IP.
func (rl *RateLimiter) RateLimitByIP(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:ip:%s:%s", c.FullPath(), c.ClientIP())
		rl.limit(c, key, maxRequests, window, "Too many requests. Please try again later.")
	}
}

// RateLimitByEmail limits requests per route and the email found in the JSON
// body. The body is cached so handlers must read it with ShouldBindBodyWith.
func (rl *RateLimiter) RateLimitByEmail(maxRequests int, window time.Duration, emailField string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			abortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}

		email, _ := body[emailField].(string)
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			abortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Email is required")
			return
		}

		key := fmt.Sprintf("rate_limit:email:%s:%s", c.FullPath(), email)
		rl.limit(c, key, maxRequests, window, "Too many requests for this email. Please try again later.")
	}
}

func (rl *RateLimiter) Ping(ctx context.Context) error {
	return rl.redis.Ping(ctx).Err()
}

func (rl *RateLimiter) Close() error {
	return rl.redis.Close()
}
