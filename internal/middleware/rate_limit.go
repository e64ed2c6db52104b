package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/fresher-training-api/internal/utils"
)

// unlimitedPaths are probed by infrastructure and never throttled.
var unlimitedPaths = map[string]struct{}{
	"/api/v1/health": {},
	"/metrics":       {},
}

// RateLimit throttles callers per scope within a fixed window. Authenticated callers are keyed by
// user id and anonymous ones by IP. Websocket upgrades are exempt since a stream is long lived.
func RateLimit(scope string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			if _, ok := unlimitedPaths[c.Path()]; ok {
				return true
			}
			return isWebSocketUpgrade(c)
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return rateLimitKey(scope, c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests")
		},
	})
}

func rateLimitKey(scope string, c *fiber.Ctx) string {
	var b strings.Builder
	b.WriteString(scope)
	b.WriteByte(':')
	if access := AccessFromContext(c); access.Authenticated {
		b.WriteString("user-")
		b.WriteString(strconv.FormatUint(uint64(access.UserID), 10))
		return b.String()
	}
	b.WriteString("ip-")
	b.WriteString(c.IP())
	return b.String()
}
