package server

import (
	"github.com/apfk88/heartglance/internal/platform/correlation"
	"github.com/labstack/echo/v4"
)

// correlationMiddleware attaches a fresh correlation ID to every request
// context so log lines emitted while handling it carry a correlation_id.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
