package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-community-market/pkg/response"
)

const rateKeyPrefix = "market:rl:"

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func routeTemplate(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc names the counter a request is charged against.
type KeyFunc func(c *gin.Context) string

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + clientIP(c) }
}

// KeyByIPAndPath gives every route template its own budget per client.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string { return "route:" + routeTemplate(c) + ":ip:" + clientIP(c) }
}

// KeyByUserID charges signed-in callers by identity and anonymous ones by IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "user:" + uid
		}
		return "anon:ip:" + clientIP(c)
	}
}

// AllowFunc returns true for requests that skip the limiter.
type AllowFunc func(*gin.Context) bool

// hitScript increments the window counter, arms its expiry on the first hit
// and returns {count, remaining ttl in ms}.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RateLimit is a Redis fixed-window limiter that sets the X-RateLimit headers.
// A nil client disables it, OPTIONS is never counted, and Redis errors let
// the request through.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	limit := strconv.Itoa(max)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		count, ttl, err := hit(c, rdb, rateKeyPrefix+keyFn(c), window)
		if err != nil {
			c.Next()
			return
		}
		reset := strconv.Itoa(int(ttl.Round(time.Second).Seconds()))

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining(max, count)))
		c.Header("X-RateLimit-Reset", reset)
		if count > max {
			c.Header("Retry-After", reset)
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}

func hit(c *gin.Context, rdb *redis.Client, key string, window time.Duration) (int, time.Duration, error) {
	vals, err := hitScript.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(vals) != 2 {
		return 0, 0, redis.Nil
	}
	ttl := time.Duration(vals[1]) * time.Millisecond
	if ttl < 0 {
		ttl = 0
	}
	return int(vals[0]), ttl, nil
}

func remaining(max, count int) int {
	if count >= max {
		return 0
	}
	return max - count
}
