package common

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"rentpolicy/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	StaffIDKey          contextKey = "staff_id"
	SelfServiceActorKey contextKey = "self_service_actor"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
		Errors  []string          `json:"errors,omitempty"`
	} `json:"error"`
}

func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response for a single field
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendErrorList sends every message of a multi-error outcome at once.
func SendErrorList(c echo.Context, status int, code, message string, errs []string) error {
	resp := CreateErrorResponse(code, message, nil)
	resp.Error.Errors = errs
	return c.JSON(status, resp)
}

func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

func SendConflictError(c echo.Context, code, message string) error {
	return c.JSON(http.StatusConflict, CreateErrorResponse(code, message, nil))
}

func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

func SendUnauthorizedError(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", message, nil))
}

func SendForbiddenError(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, CreateErrorResponse("FORBIDDEN", message, nil))
}

// ValidateUUID parses a UUID field, naming the field in the error.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s must be a valid UUID", fieldName)
	}
	return id, nil
}

// UUIDParam reads a path parameter as a UUID.
func UUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	return ValidateUUID(c.Param(name), name)
}

// ValidatePaginationParams reads limit and offset, applying defaults.
func ValidatePaginationParams(c echo.Context, defaultLimit, maxLimit int) (int, int, error) {
	limit, offset := defaultLimit, 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("limit must be a positive integer")
		}
		if n > maxLimit {
			return 0, 0, fmt.Errorf("limit cannot exceed %d", maxLimit)
		}
		limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("offset must be a non-negative integer")
		}
		offset = n
	}
	return limit, offset, nil
}

func GetStaffIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(StaffIDKey).(uuid.UUID)
	return id, ok
}

func GetSelfServiceActor(ctx context.Context) (*models.Actor, bool) {
	actor, ok := ctx.Value(SelfServiceActorKey).(*models.Actor)
	return actor, ok && actor != nil
}
