package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentpolicy/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityLogService_WritesQueuedEntriesOnClose(t *testing.T) {
	repo := &MockActivityLogRepository{}
	actorID := uuid.New()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.ActivityLog) bool {
		return e.ActorID == actorID && e.PerformedBy == "staff-1"
	})).Return(nil).Times(3)

	svc := NewActivityLogService(repo, quietLogger(), 8)
	svc.Log(context.Background(), actorID, models.ActionRegistered, "staff-1", nil)
	svc.Log(context.Background(), actorID, models.ActionSubmitted, "staff-1", models.JSONB{"from": "PENDING"})
	svc.Log(context.Background(), actorID, models.ActionApproved, "staff-1", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Close(ctx))
	repo.AssertExpectations(t)
}

func TestActivityLogService_WriteFailureIsSwallowed(t *testing.T) {
	repo := &MockActivityLogRepository{}
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once()

	svc := NewActivityLogService(repo, quietLogger(), 1)
	svc.Log(context.Background(), uuid.New(), models.ActionRejected, "staff-1", nil)

	require.NoError(t, svc.Close(context.Background()))
	repo.AssertExpectations(t)
}

func TestActivityLogService_LogAfterCloseIsDropped(t *testing.T) {
	repo := &MockActivityLogRepository{}
	svc := NewActivityLogService(repo, quietLogger(), 1)
	require.NoError(t, svc.Close(context.Background()))

	assert.NotPanics(t, func() {
		svc.Log(context.Background(), uuid.New(), models.ActionRegistered, "staff-1", nil)
	})
	assert.NoError(t, svc.Close(context.Background()))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestActivityLogService_FullQueueDoesNotBlock(t *testing.T) {
	repo := &MockActivityLogRepository{}
	release := make(chan struct{})
	repo.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) { <-release }).Return(nil)

	svc := NewActivityLogService(repo, quietLogger(), 1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			svc.Log(context.Background(), uuid.New(), models.ActionRegistered, "staff-1", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Log blocked on a full queue")
	}
	close(release)
	require.NoError(t, svc.Close(context.Background()))
}

func TestActivityLogService_History(t *testing.T) {
	repo := &MockActivityLogRepository{}
	actorID := uuid.New()
	action := models.ActionSubmitted
	filters := &models.ActivityLogFilters{Action: &action, Limit: 50}
	entries := []*models.ActivityLog{{ID: uuid.New(), ActorID: actorID, Action: action}}
	repo.On("ListByActor", mock.Anything, actorID, filters).Return(entries, nil)

	svc := NewActivityLogService(repo, quietLogger(), 1)
	defer svc.Close(context.Background())

	got, err := svc.History(context.Background(), actorID, filters)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}
