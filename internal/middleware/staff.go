package middleware

import (
	"context"

	"rentpolicy/internal/common"

	"github.com/labstack/echo/v4"
)

// StaffHeader carries the id of the staff member performing a request.
// Authentication happens upstream; this layer only requires the identity.
const StaffHeader = "X-Staff-ID"

func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			staffID, err := common.ValidateUUID(c.Request().Header.Get(StaffHeader), StaffHeader)
			if err != nil {
				return common.SendUnauthorizedError(c, err.Error())
			}

			ctx := context.WithValue(c.Request().Context(), common.StaffIDKey, staffID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
