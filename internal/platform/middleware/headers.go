package middleware

import (
	"github.com/labstack/echo/v4"
)

// ResponseHeaders sets the headers every API response carries. Generated
// messages are unique per request, so nothing is cacheable.
func ResponseHeaders(service string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			if service != "" {
				h.Set("X-Service", service)
			}
			return next(c)
		}
	}
}
