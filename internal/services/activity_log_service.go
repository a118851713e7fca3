package services

import (
	"context"
	"sync"
	"time"

	"rentpolicy/internal/models"
	"rentpolicy/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ActivityLogger records actor state changes. Log never blocks the caller
// and never reports failure; entries that cannot be written are logged and
// dropped.
type ActivityLogger interface {
	Log(ctx context.Context, actorID uuid.UUID, action, performedBy string, details models.JSONB)
}

type ActivityLogService interface {
	ActivityLogger
	History(ctx context.Context, actorID uuid.UUID, filters *models.ActivityLogFilters) ([]*models.ActivityLog, error)
	// Close stops accepting entries and waits for queued ones to be written
	// or for ctx to end.
	Close(ctx context.Context) error
}

const activityWriteTimeout = 5 * time.Second

type activityLogService struct {
	repo   repositories.ActivityLogRepository
	logger logrus.FieldLogger
	queue  chan *models.ActivityLog
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewActivityLogService(repo repositories.ActivityLogRepository, logger logrus.FieldLogger, buffer int) ActivityLogService {
	if buffer <= 0 {
		buffer = 256
	}
	s := &activityLogService{
		repo:   repo,
		logger: logger,
		queue:  make(chan *models.ActivityLog, buffer),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *activityLogService) Log(_ context.Context, actorID uuid.UUID, action, performedBy string, details models.JSONB) {
	entry := &models.ActivityLog{
		ID:          uuid.New(),
		ActorID:     actorID,
		Action:      action,
		PerformedBy: performedBy,
		Details:     details,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.WithFields(logrus.Fields{"actor_id": actorID, "action": action}).Warn("activity log closed, entry dropped")
		return
	}

	select {
	case s.queue <- entry:
	default:
		s.logger.WithFields(logrus.Fields{"actor_id": actorID, "action": action}).Warn("activity log queue full, entry dropped")
	}
}

func (s *activityLogService) run() {
	defer close(s.done)
	for entry := range s.queue {
		s.write(entry)
	}
}

func (s *activityLogService) write(entry *models.ActivityLog) {
	// Detached from the request context: the request may be long gone.
	ctx, cancel := context.WithTimeout(context.Background(), activityWriteTimeout)
	defer cancel()

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"actor_id": entry.ActorID,
			"action":   entry.Action,
		}).Error("failed to write activity log")
	}
}

func (s *activityLogService) History(ctx context.Context, actorID uuid.UUID, filters *models.ActivityLogFilters) ([]*models.ActivityLog, error) {
	return s.repo.ListByActor(ctx, actorID, filters)
}

func (s *activityLogService) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
