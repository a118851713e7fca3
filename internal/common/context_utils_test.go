package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentpolicy/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestValidateUUID(t *testing.T) {
	id := uuid.New()

	got, err := ValidateUUID(" "+id.String()+" ", "id")
	assert.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ValidateUUID("", "policyId")
	assert.EqualError(t, err, "policyId is required")

	_, err = ValidateUUID("123", "policyId")
	assert.EqualError(t, err, "policyId must be a valid UUID")
}

func TestValidatePaginationParams(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		limit  int
		offset int
		err    string
	}{
		{name: "defaults", query: "", limit: 50, offset: 0},
		{name: "explicit", query: "?limit=10&offset=20", limit: 10, offset: 20},
		{name: "zero limit", query: "?limit=0", err: "limit must be a positive integer"},
		{name: "over max", query: "?limit=501", err: "limit cannot exceed 500"},
		{name: "negative offset", query: "?offset=-1", err: "offset must be a non-negative integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), httptest.NewRecorder())

			limit, offset, err := ValidatePaginationParams(c, 50, 500)
			if tt.err != "" {
				assert.EqualError(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestContextValues(t *testing.T) {
	_, ok := GetStaffIDFromContext(context.Background())
	assert.False(t, ok)

	staffID := uuid.New()
	got, ok := GetStaffIDFromContext(context.WithValue(context.Background(), StaffIDKey, staffID))
	assert.True(t, ok)
	assert.Equal(t, staffID, got)

	var nilActor *models.Actor
	_, ok = GetSelfServiceActor(context.WithValue(context.Background(), SelfServiceActorKey, nilActor))
	assert.False(t, ok)
}

func TestSendErrorList(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	assert.NoError(t, SendErrorList(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", []string{"a", "b"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"VALIDATION_ERROR","message":"Validation failed","errors":["a","b"]}}`, rec.Body.String())
}
