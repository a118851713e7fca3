package handlers

import (
	"errors"
	"net/http"

	"rentpolicy/internal/common"
	"rentpolicy/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// respondError maps service outcomes onto the error envelope. Anything
// unrecognised is logged and reported as a server error.
func respondError(c echo.Context, logger logrus.FieldLogger, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return common.SendErrorList(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", validationErr.Errors)
	}
	var submissionErr *services.SubmissionError
	if errors.As(err, &submissionErr) {
		return common.SendErrorList(c, http.StatusUnprocessableEntity, "REQUIREMENTS_NOT_MET", "Cannot submit", submissionErr.Missing)
	}

	switch {
	case errors.Is(err, services.ErrActorNotFound):
		return common.SendNotFoundError(c, "Actor")
	case errors.Is(err, services.ErrCoOwnerNotFound):
		return common.SendNotFoundError(c, "Co-owner")
	case errors.Is(err, services.ErrPrimaryOnly):
		return common.SendForbiddenError(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrOnlyLandlord),
		errors.Is(err, services.ErrNotPrimary),
		errors.Is(err, services.ErrTooManyLandlords),
		errors.Is(err, services.ErrTooManyCoOwners),
		errors.Is(err, services.ErrTokenConflict):
		return common.SendConflictError(c, "CONFLICT", err.Error())
	case errors.Is(err, services.ErrNotLandlord),
		errors.Is(err, services.ErrLandlordNotInPolicy),
		errors.Is(err, services.ErrCrossPolicyTransfer),
		errors.Is(err, services.ErrRejectReasonRequired),
		errors.Is(err, services.ErrNotesRequired),
		errors.Is(err, services.ErrInvalidKind),
		errors.Is(err, services.ErrUnknownStrategy),
		errors.Is(err, services.ErrNoToken):
		return common.SendClientError(c, err.Error())
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).Error("request failed")
	return common.SendServerError(c, "Internal server error")
}

// performer returns the staff id set by RequireStaff.
func performer(c echo.Context) string {
	if id, ok := common.GetStaffIDFromContext(c.Request().Context()); ok {
		return id.String()
	}
	return ""
}
