package handlers

import (
	"net/http"

	"rentpolicy/internal/common"
	"rentpolicy/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// PrimaryHandlers exposes primary landlord designation for a policy.
type PrimaryHandlers struct {
	primary services.PrimaryService
	logger  logrus.FieldLogger
}

func NewPrimaryHandlers(primary services.PrimaryService, logger logrus.FieldLogger) *PrimaryHandlers {
	return &PrimaryHandlers{primary: primary, logger: logger}
}

type SetPrimaryRequest struct {
	LandlordID uuid.UUID `json:"landlord_id"`
}

type TransferPrimaryRequest struct {
	FromLandlordID uuid.UUID `json:"from_landlord_id"`
	ToLandlordID   uuid.UUID `json:"to_landlord_id"`
}

func (h *PrimaryHandlers) GetPrimary(c echo.Context) error {
	policyID, err := common.UUIDParam(c, "policyId")
	if err != nil {
		return common.SendValidationError(c, "policyId", err.Error())
	}

	primary, err := h.primary.GetPrimary(c.Request().Context(), policyID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, primary)
}

func (h *PrimaryHandlers) SetPrimary(c echo.Context) error {
	policyID, err := common.UUIDParam(c, "policyId")
	if err != nil {
		return common.SendValidationError(c, "policyId", err.Error())
	}
	var req SetPrimaryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.LandlordID == uuid.Nil {
		return common.SendValidationError(c, "landlord_id", "landlord_id is required")
	}

	if err := h.primary.SetPrimary(c.Request().Context(), policyID, req.LandlordID, performer(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"policy_id": policyID, "primary_landlord_id": req.LandlordID})
}

func (h *PrimaryHandlers) TransferPrimary(c echo.Context) error {
	policyID, err := common.UUIDParam(c, "policyId")
	if err != nil {
		return common.SendValidationError(c, "policyId", err.Error())
	}
	var req TransferPrimaryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.FromLandlordID == uuid.Nil || req.ToLandlordID == uuid.Nil {
		return common.SendValidationError(c, "landlord_id", "from_landlord_id and to_landlord_id are required")
	}

	err = h.primary.TransferPrimary(c.Request().Context(), policyID, req.FromLandlordID, req.ToLandlordID, performer(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"policy_id": policyID, "primary_landlord_id": req.ToLandlordID})
}

func (h *PrimaryHandlers) RemoveLandlord(c echo.Context) error {
	policyID, err := common.UUIDParam(c, "policyId")
	if err != nil {
		return common.SendValidationError(c, "policyId", err.Error())
	}
	landlordID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.primary.RemoveLandlord(c.Request().Context(), policyID, landlordID, performer(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
