package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentpolicy/internal/models"

	"github.com/google/uuid"
)

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListByActor(ctx context.Context, actorID uuid.UUID, filters *models.ActivityLogFilters) ([]*models.ActivityLog, error)
}

const (
	insertActivityLogQuery = `
		INSERT INTO actor_activity_logs (id, actor_id, action, performed_by, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	selectActivityLogsQuery = `
		SELECT id, actor_id, action, performed_by, details, created_at
		FROM actor_activity_logs
		WHERE actor_id = $1 AND ($2::text IS NULL OR action = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
)

type activityLogRepo struct {
	db DB
}

func NewActivityLogRepository(db DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var details []byte
	if entry.Details != nil {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal details: %w", err)
		}
	}

	_, err := r.db.Exec(ctx, insertActivityLogQuery,
		entry.ID, entry.ActorID, entry.Action, entry.PerformedBy, details, entry.CreatedAt)
	return err
}

func (r *activityLogRepo) ListByActor(ctx context.Context, actorID uuid.UUID, filters *models.ActivityLogFilters) ([]*models.ActivityLog, error) {
	if filters == nil {
		filters = &models.ActivityLogFilters{}
	}
	limit := filters.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, selectActivityLogsQuery, actorID, filters.Action, limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ActivityLog
	for rows.Next() {
		entry := &models.ActivityLog{}
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.ActorID, &entry.Action, &entry.PerformedBy, &details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
