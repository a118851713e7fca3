package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"rentpolicy/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coOwnerColumnNames = []string{"id", "landlord_id", "name", "ownership_bps", "rfc", "curp", "is_active", "created_at", "updated_at"}

func TestCoOwnerRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	c := &models.CoOwner{LandlordID: uuid.New(), Name: "Maria", OwnershipShare: models.SharePercent(30), RFC: stringPtr("GODE561231GR8")}

	mock.ExpectQuery(regexp.QuoteMeta(insertCoOwnerQuery)).
		WithArgs(pgxmock.AnyArg(), c.LandlordID, "Maria", int64(3000), c.RFC, c.CURP).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, NewCoOwnerRepository(mock).Create(context.Background(), c))
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.True(t, c.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoOwnerRepo_ListActiveLocked(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	landlordID := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectActiveCoOwnersLockedQuery)).
		WithArgs(landlordID).
		WillReturnRows(pgxmock.NewRows(coOwnerColumnNames).
			AddRow(uuid.New(), landlordID, "B", int64(3000), (*string)(nil), (*string)(nil), true, now, now).
			AddRow(uuid.New(), landlordID, "C", int64(2000), (*string)(nil), (*string)(nil), true, now, now))

	list, err := NewCoOwnerRepository(mock).ListActive(context.Background(), landlordID, true)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.SharePercent(30), list[0].OwnershipShare)
	assert.Equal(t, "C", list[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoOwnerRepo_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(selectCoOwnerByIDQuery)).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err = NewCoOwnerRepository(mock).GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCoOwnerRepo_DeactivateTwice(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(deactivateCoOwnerQuery)).WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(deactivateCoOwnerQuery)).WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewCoOwnerRepository(mock)
	assert.NoError(t, repo.Deactivate(context.Background(), id))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), id), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
