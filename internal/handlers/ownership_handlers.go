package handlers

import (
	"net/http"

	"rentpolicy/internal/common"
	"rentpolicy/internal/models"
	"rentpolicy/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// OwnershipHandlers manages a landlord's co-owners and share split.
type OwnershipHandlers struct {
	ownership services.OwnershipService
	logger    logrus.FieldLogger
}

func NewOwnershipHandlers(ownership services.OwnershipService, logger logrus.FieldLogger) *OwnershipHandlers {
	return &OwnershipHandlers{ownership: ownership, logger: logger}
}

func (h *OwnershipHandlers) GetOwnership(c echo.Context) error {
	landlordID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	summary, err := h.ownership.GetSummary(c.Request().Context(), landlordID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *OwnershipHandlers) ValidateOwnership(c echo.Context) error {
	landlordID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	result, err := h.ownership.ValidateLandlord(c.Request().Context(), landlordID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *OwnershipHandlers) AddCoOwner(c echo.Context) error {
	landlordID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req services.AddCoOwnerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.LandlordID = landlordID
	req.PerformedBy = performer(c)

	coOwner, err := h.ownership.AddCoOwner(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, coOwner)
}

func (h *OwnershipHandlers) UpdateShares(c echo.Context) error {
	landlordID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req services.UpdateSharesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.LandlordID = landlordID
	req.PerformedBy = performer(c)

	summary, err := h.ownership.UpdateShares(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *OwnershipHandlers) RemoveCoOwner(c echo.Context) error {
	landlordID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	coOwnerID, err := common.UUIDParam(c, "coOwnerId")
	if err != nil {
		return common.SendValidationError(c, "coOwnerId", err.Error())
	}

	summary, err := h.ownership.RemoveCoOwner(c.Request().Context(), &services.RemoveCoOwnerRequest{
		LandlordID:  landlordID,
		CoOwnerID:   coOwnerID,
		Strategy:    models.RedistributionStrategy(c.QueryParam("strategy")),
		PerformedBy: performer(c),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, summary)
}
