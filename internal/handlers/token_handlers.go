package handlers

import (
	"net/http"

	"rentpolicy/internal/common"
	"rentpolicy/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// TokenHandlers lets staff issue, extend and revoke self-service tokens.
type TokenHandlers struct {
	tokens services.TokenService
	logger logrus.FieldLogger
}

func NewTokenHandlers(tokens services.TokenService, logger logrus.FieldLogger) *TokenHandlers {
	return &TokenHandlers{tokens: tokens, logger: logger}
}

type GenerateTokenRequest struct {
	ExpiryDays int `json:"expiry_days"`
}

type RefreshTokenRequest struct {
	AdditionalDays int `json:"additional_days"`
}

func (h *TokenHandlers) Generate(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req GenerateTokenRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	issued, err := h.tokens.Generate(c.Request().Context(), actorID, req.ExpiryDays, performer(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, issued)
}

func (h *TokenHandlers) Revoke(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.tokens.Revoke(c.Request().Context(), actorID, performer(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TokenHandlers) Refresh(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	issued, err := h.tokens.Refresh(c.Request().Context(), actorID, req.AdditionalDays, performer(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, issued)
}
