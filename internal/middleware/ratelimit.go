package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"bankelig/internal/auth"
	"bankelig/internal/errors"
)

// authSensitivePrefixes are the paths whose non-GET requests are counted
// against the fixed-window limit.
var authSensitivePrefixes = []string{
	"/auth/login",
	"/auth/register",
	"/auth/forgot-password",
	"/auth/reset-password",
	"/login",
}

// RateLimit counts non-GET requests to auth-sensitive paths per client
// address and path, answering 429 with a Retry-After header once the window
// is full.
func RateLimit(limiter *auth.FixedWindowLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method == http.MethodGet || !isAuthSensitive(req.URL.Path) {
				return next(c)
			}

			key := c.RealIP() + ":" + req.URL.Path
			allowed, retryAfter := limiter.Allow(key)
			if !allowed {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				return c.JSON(http.StatusTooManyRequests, errors.ErrorResponse{
					Error: "too many requests, please try again later",
					Code:  "RATE_LIMITED",
				})
			}
			return next(c)
		}
	}
}

func isAuthSensitive(path string) bool {
	for _, prefix := range authSensitivePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
