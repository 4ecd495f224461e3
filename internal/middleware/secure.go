package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders appends the fixed security response headers. CSP is left
// off in development so local tooling keeps working.
func SecurityHeaders(production bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			if production {
				h.Set("Content-Security-Policy",
					"default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:; font-src 'self'; connect-src 'self'")
			}
			return next(c)
		}
	}
}
