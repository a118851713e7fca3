package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"rentpolicy/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLogRepo_CreateFillsDefaults(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	actorID := uuid.New()
	entry := &models.ActivityLog{ActorID: actorID, Action: models.ActionSubmitted, PerformedBy: "staff", Details: models.JSONB{"from": "PENDING"}}

	mock.ExpectExec(regexp.QuoteMeta(insertActivityLogQuery)).
		WithArgs(pgxmock.AnyArg(), actorID, models.ActionSubmitted, "staff", []byte(`{"from":"PENDING"}`), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewActivityLogRepository(mock).Create(context.Background(), entry))
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityLogRepo_ListByActorDefaultsLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	actorID := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectActivityLogsQuery)).
		WithArgs(actorID, (*string)(nil), 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "actor_id", "action", "performed_by", "details", "created_at"}).
			AddRow(uuid.New(), actorID, models.ActionApproved, "staff", []byte(`{"note":"ok"}`), now).
			AddRow(uuid.New(), actorID, models.ActionRegistered, "staff", []byte(nil), now.Add(-time.Hour)))

	logs, err := NewActivityLogRepository(mock).ListByActor(context.Background(), actorID, &models.ActivityLogFilters{Limit: 1000})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "ok", logs[0].Details["note"])
	assert.Nil(t, logs[1].Details)
	assert.NoError(t, mock.ExpectationsWereMet())
}
