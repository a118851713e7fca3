package handlers

import (
	"net/http"
	"strings"

	"rentpolicy/internal/common"
	"rentpolicy/internal/models"
	"rentpolicy/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const maxDocumentSize = 10 << 20

// ActorHandlers serves registration, profile and review endpoints.
type ActorHandlers struct {
	lifecycle services.LifecycleService
	activity  services.ActivityLogService
	documents services.DocumentService
	logger    logrus.FieldLogger
}

func NewActorHandlers(lifecycle services.LifecycleService, activity services.ActivityLogService, documents services.DocumentService, logger logrus.FieldLogger) *ActorHandlers {
	return &ActorHandlers{lifecycle: lifecycle, activity: activity, documents: documents, logger: logger}
}

func (h *ActorHandlers) RegisterActor(c echo.Context) error {
	var req services.RegisterActorRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.PolicyID == uuid.Nil {
		return common.SendValidationError(c, "policy_id", "policy_id is required")
	}
	req.PerformedBy = performer(c)

	actor, err := h.lifecycle.Register(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, actor)
}

func (h *ActorHandlers) GetActor(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	actor, err := h.lifecycle.Get(c.Request().Context(), actorID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, actor)
}

func (h *ActorHandlers) UpdateActor(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	req.ActorID = actorID
	req.PerformedBy = performer(c)

	actor, err := h.lifecycle.UpdateProfile(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, actor)
}

func (h *ActorHandlers) CanSubmit(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	check, err := h.lifecycle.CanSubmit(c.Request().Context(), actorID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, check)
}

func (h *ActorHandlers) Submit(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	actor, err := h.lifecycle.Submit(c.Request().Context(), actorID, performer(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, actor)
}

func (h *ActorHandlers) Approve(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	staffID, _ := common.GetStaffIDFromContext(c.Request().Context())

	actor, err := h.lifecycle.Approve(c.Request().Context(), actorID, staffID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, actor)
}

// ReviewRequest carries the reason for a rejection or change request.
type ReviewRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

func (h *ActorHandlers) Reject(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	staffID, _ := common.GetStaffIDFromContext(c.Request().Context())

	actor, err := h.lifecycle.Reject(c.Request().Context(), actorID, staffID, req.Reason)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, actor)
}

func (h *ActorHandlers) RequestChanges(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	staffID, _ := common.GetStaffIDFromContext(c.Request().Context())

	actor, err := h.lifecycle.RequestChanges(c.Request().Context(), actorID, staffID, req.Notes)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, actor)
}

func (h *ActorHandlers) History(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	limit, offset, err := common.ValidatePaginationParams(c, 50, 500)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	filters := &models.ActivityLogFilters{Limit: limit, Offset: offset}
	if action := c.QueryParam("action"); action != "" {
		filters.Action = &action
	}

	logs, err := h.activity.History(c.Request().Context(), actorID, filters)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"activity": logs,
		"limit":    limit,
		"offset":   offset,
	})
}

// UploadDocument stores a multipart "file" under the :category path value.
func (h *ActorHandlers) UploadDocument(c echo.Context) error {
	actorID, err := common.UUIDParam(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	category := strings.TrimSpace(c.Param("category"))
	if !services.IsDocumentCategory(category) {
		return common.SendValidationError(c, "category", "unknown document category")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "file is required")
	}
	if file.Size > maxDocumentSize {
		return common.SendValidationError(c, "file", "file exceeds 10MB")
	}

	ctx := c.Request().Context()
	if _, err := h.lifecycle.Get(ctx, actorID); err != nil {
		return respondError(c, h.logger, err)
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer src.Close()

	objectName, err := h.documents.UploadDocument(ctx, actorID, category, file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"object": objectName, "category": category})
}
