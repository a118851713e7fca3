package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"rentpolicy/internal/models"
	"rentpolicy/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema. The
// test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to apply schema: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() {
			_, _ = pool.Exec(context.Background(), `TRUNCATE actor_activity_logs, co_owners, actors`)
			pool.Close()
		},
	}
}

// SeedLandlord inserts a landlord row directly, bypassing the services.
func SeedLandlord(t *testing.T, db *TestDB, policyID uuid.UUID, share models.Share, primary bool, createdAt time.Time) *models.Actor {
	t.Helper()

	actor := &models.Actor{
		ID:                 uuid.New(),
		PolicyID:           policyID,
		Kind:               models.KindLandlord,
		FullName:           "Landlord " + createdAt.Format("150405.000"),
		IsPrimary:          primary,
		OwnershipShare:     share,
		VerificationStatus: models.StatusPending,
		Landlord:           &models.LandlordDetails{},
		CreatedAt:          createdAt,
	}

	_, err := db.Pool.Exec(context.Background(), `
		INSERT INTO actors (id, policy_id, kind, full_name, is_primary, ownership_bps, verification_status, details, created_at, updated_at)
		VALUES ($1, $2, 'landlord', $3, $4, $5, 'PENDING', '{}', $6, $6)
	`, actor.ID, policyID, actor.FullName, primary, int64(share), createdAt)
	if err != nil {
		t.Fatalf("Failed to seed landlord: %v", err)
	}
	return actor
}
