package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/jobify/pkg/helpers"
	"github.com/oksasatya/jobify/pkg/response"
)

const msgTooManyRequests = "Too many requests from this IP, please try again later"

// KeyFunc builds the Redis counter key for a request.
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true when the request skips the limit.
type AllowFunc func(*gin.Context) bool

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return helpers.RedisKey("rl", "ip", ipFromCtx(c))
	}
}

// KeyByIPAndPath counts each route separately, so login attempts do not eat
// into the register budget.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return helpers.RedisKey("rl", "path", routeOf(c), "ip", ipFromCtx(c))
	}
}

// KeyByUserID counts per authenticated user, falling back to the client IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return helpers.RedisKey("rl", "user", uid)
		}
		return helpers.RedisKey("rl", "user", "anon", "ip", ipFromCtx(c))
	}
}

// Increments the window counter, starts the window on the first hit and
// returns {count, remaining ms}.
var hitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

type window struct {
	count   int
	resetIn time.Duration
}

func hit(c *gin.Context, rdb *redis.Client, key string, span time.Duration) (window, error) {
	vals, err := hitScript.Run(c.Request.Context(), rdb, []string{key}, span.Milliseconds()).Int64Slice()
	if err != nil {
		return window{}, err
	}
	w := window{}
	if len(vals) > 0 {
		w.count = int(vals[0])
	}
	if len(vals) > 1 && vals[1] > 0 {
		w.resetIn = time.Duration(vals[1]) * time.Millisecond
	}
	return w, nil
}

// RateLimit is a fixed-window limiter backed by Redis. It emits the
// X-RateLimit-* headers and fails open when Redis is unavailable.
func RateLimit(rdb *redis.Client, max int, span time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || span <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		w, err := hit(c, rdb, keyFn(c), span)
		if err != nil {
			c.Next()
			return
		}

		resetSec := strconv.Itoa(int(w.resetIn.Round(time.Second) / time.Second))
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining(max, w.count)))
		c.Header("X-RateLimit-Reset", resetSec)

		if w.count > max {
			if w.resetIn > 0 {
				c.Header("Retry-After", resetSec)
			}
			response.Abort(c, http.StatusTooManyRequests, msgTooManyRequests, nil)
			return
		}
		c.Next()
	}
}

func remaining(max, count int) int {
	if count >= max {
		return 0
	}
	return max - count
}
