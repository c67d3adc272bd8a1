package middleware

import (
	"github.com/labstack/echo/v4"
)

// ContentSecurityPolicy admits the rendered chart pages: inline scripts and
// styles plus the echarts asset host, and data: images for captured frames.
const ContentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://go-echarts.github.io; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data:; " +
	"frame-ancestors 'self'"

// SecurityHeaders sets browser hardening headers. The camera stays available
// to same-origin pages so the capture widget can open it.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			// Charts are embedded in same-origin dashboard frames.
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("X-XSS-Protection", "0")
			h.Set("Content-Security-Policy", ContentSecurityPolicy)
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Referrer-Policy", "same-origin")
			h.Set("Permissions-Policy", "camera=(self), microphone=(), geolocation=()")

			return next(c)
		}
	}
}
