package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"lucky_streets/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// UseRedis shares the application's Redis client with the rate limiters.
// A nil client leaves every Redis-backed limiter fail-open.
func UseRedis(client *redis.Client) {
	redisClient = client
}

// RedisRateLimit implements a fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<identifier>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		if !allow(c, key, maxRequests, window, c.FullPath()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// UserRateLimit limits requests per authenticated user rather than per IP.
// Requires JWT middleware to run before this.
func UserRateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get("user_id")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if redisClient == nil {
			c.Next()
			return
		}
		id, _ := userID.(int64)
		key := "rl:" + scope + ":" + strconv.FormatInt(id, 10) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		if !allow(c, key, maxRequests, window, scope) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded for " + scope,
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}

// allow counts one hit against key. Redis errors fail open.
func allow(c *gin.Context, key string, maxRequests int, window time.Duration, label string) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
	defer cancel()

	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		logger.Warn("rate limiter unavailable", "key", key, "error", err)
		c.Header("X-RateLimit-Error", "redis-error")
		return true
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(label).Inc()
		return false
	}
	RLRequests.WithLabelValues(label).Inc()
	return true
}
