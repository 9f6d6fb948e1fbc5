package middleware

import (
	"time"

	applogger "ShipQuote/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs each HTTP request with latency and status.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			if l == nil {
				return err
			}

			req := c.Request()
			res := c.Response()
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("path", c.Path()),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", res.Status),
				applogger.Duration("latency", time.Since(start)),
			}

			switch {
			case res.Status >= 500:
				l.Error("http request", fields...)
			case res.Status >= 400:
				l.Warn("http request", fields...)
			default:
				l.Info("http request", fields...)
			}

			return err
		}
	}
}
