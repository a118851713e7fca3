package middleware

import (
	"time"

	"rentpolicy/internal/common"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request with its outcome. Mutating requests
// and failures log at info, reads at debug.
func RequestLogger(logger logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := logrus.Fields{
				"method":     req.Method,
				"path":       c.Path(),
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"ip":         c.RealIP(),
			}
			if staffID, ok := common.GetStaffIDFromContext(req.Context()); ok {
				fields["staff_id"] = staffID
			}
			if actor, ok := common.GetSelfServiceActor(req.Context()); ok {
				fields["actor_id"] = actor.ID
			}

			entry := logger.WithFields(fields)
			switch {
			case c.Response().Status >= 500:
				entry.Error("request failed")
			case c.Response().Status >= 400 || req.Method != "GET":
				entry.Info("request handled")
			default:
				entry.Debug("request handled")
			}
			return nil
		}
	}
}
