package handlers

import (
	"net/http"

	"rentpolicy/internal/common"
	"rentpolicy/internal/models"
	"rentpolicy/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// SelfServiceHandlers serve token-authenticated requests from the actor
// itself. The actor comes from the SelfServiceToken middleware.
type SelfServiceHandlers struct {
	lifecycle services.LifecycleService
	logger    logrus.FieldLogger
}

func NewSelfServiceHandlers(lifecycle services.LifecycleService, logger logrus.FieldLogger) *SelfServiceHandlers {
	return &SelfServiceHandlers{lifecycle: lifecycle, logger: logger}
}

type selfServiceView struct {
	Actor          *models.Actor             `json:"actor"`
	Submission     *services.SubmissionCheck `json:"submission"`
	RemainingHours float64                   `json:"token_remaining_hours"`
}

func (h *SelfServiceHandlers) Get(c echo.Context) error {
	actor, ok := common.GetSelfServiceActor(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c, models.TokenErrInvalid)
	}

	check, err := h.lifecycle.CanSubmit(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	remaining, _ := c.Get("token_remaining_hours").(float64)
	return c.JSON(http.StatusOK, selfServiceView{Actor: actor, Submission: check, RemainingHours: remaining})
}

func (h *SelfServiceHandlers) Update(c echo.Context) error {
	actor, ok := common.GetSelfServiceActor(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c, models.TokenErrInvalid)
	}

	var req services.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.ActorID = actor.ID
	req.PerformedBy = models.PerformerSelfService

	updated, err := h.lifecycle.UpdateProfile(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *SelfServiceHandlers) Submit(c echo.Context) error {
	actor, ok := common.GetSelfServiceActor(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c, models.TokenErrInvalid)
	}

	updated, err := h.lifecycle.Submit(c.Request().Context(), actor.ID, models.PerformerSelfService)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, updated)
}
