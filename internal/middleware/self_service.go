package middleware

import (
	"context"
	"net/http"
	"time"

	"rentpolicy/internal/common"
	"rentpolicy/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type TokenValidator interface {
	ValidateAndTouch(ctx context.Context, token string) (*models.TokenValidation, error)
}

type RateLimiter interface {
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type SelfServiceConfig struct {
	Limit  int
	Window time.Duration
}

// SelfServiceToken authenticates the :token path parameter and puts the
// owning actor on the request context. limiter may be nil.
func SelfServiceToken(tokens TokenValidator, limiter RateLimiter, cfg SelfServiceConfig, logger logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if limiter != nil {
				limited, err := limiter.IsRateLimited(ctx, "self-service:"+c.RealIP(), cfg.Limit, cfg.Window)
				if err != nil {
					logger.WithError(err).Warn("rate limiter unavailable")
				} else if limited {
					return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many requests", nil))
				}
			}

			result, err := tokens.ValidateAndTouch(ctx, c.Param("token"))
			if err != nil {
				logger.WithError(err).Error("token validation failed")
				return common.SendServerError(c, "Failed to validate token")
			}
			if !result.IsValid {
				return common.SendUnauthorizedError(c, result.Error)
			}

			ctx = context.WithValue(ctx, common.SelfServiceActorKey, result.Actor)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("token_remaining_hours", result.RemainingHours)
			return next(c)
		}
	}
}
