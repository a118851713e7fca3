package testhelpers

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"rentpolicy/internal/models"
	"rentpolicy/internal/repositories"
	"rentpolicy/internal/services"
	"rentpolicy/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardActivity struct{}

func (discardActivity) Log(context.Context, uuid.UUID, string, string, models.JSONB) {}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func countPrimaries(t *testing.T, db *TestDB, policyID uuid.UUID) int {
	t.Helper()
	var n int
	err := db.Pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM actors WHERE policy_id = $1 AND is_primary`, policyID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestPrimaryService_ConcurrentSetPrimary(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db := SetupTestDB(t)
	defer db.Cleanup()

	policyID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	landlords := []*models.Actor{
		SeedLandlord(t, db, policyID, models.SharePercent(100), true, base),
		SeedLandlord(t, db, policyID, models.SharePercent(100), false, base.Add(time.Second)),
		SeedLandlord(t, db, policyID, models.SharePercent(100), false, base.Add(2*time.Second)),
	}

	svc := services.NewPrimaryService(repositories.NewStore(db.Pool), discardActivity{}, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		target := landlords[i%len(landlords)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.SetPrimary(context.Background(), policyID, target.ID, "test"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, countPrimaries(t, db, policyID))
}

func TestPrimaryService_RemovePrimaryReassigns(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db := SetupTestDB(t)
	defer db.Cleanup()

	policyID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	first := SeedLandlord(t, db, policyID, models.SharePercent(100), true, base)
	second := SeedLandlord(t, db, policyID, models.SharePercent(60), false, base.Add(time.Second))
	SeedLandlord(t, db, policyID, models.SharePercent(40), false, base.Add(2*time.Second))

	svc := services.NewPrimaryService(repositories.NewStore(db.Pool), discardActivity{}, quietLogger())
	require.NoError(t, svc.RemoveLandlord(context.Background(), policyID, first.ID, "test"))

	primary, err := svc.GetPrimary(context.Background(), policyID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, primary.ID)
	assert.Equal(t, 1, countPrimaries(t, db, policyID))
}

func TestPrimaryService_TransferAcrossPolicies(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db := SetupTestDB(t)
	defer db.Cleanup()

	base := time.Now().UTC()
	policyA, policyB := uuid.New(), uuid.New()
	a := SeedLandlord(t, db, policyA, models.SharePercent(100), true, base)
	b := SeedLandlord(t, db, policyB, models.SharePercent(100), true, base)

	svc := services.NewPrimaryService(repositories.NewStore(db.Pool), discardActivity{}, quietLogger())
	err := svc.TransferPrimary(context.Background(), policyA, a.ID, b.ID, "test")
	assert.ErrorIs(t, err, services.ErrCrossPolicyTransfer)
	assert.Equal(t, 1, countPrimaries(t, db, policyA))
	assert.Equal(t, 1, countPrimaries(t, db, policyB))
}

func newLifecycle(db *TestDB) services.LifecycleService {
	store := repositories.NewStore(db.Pool)
	primary := services.NewPrimaryService(store, discardActivity{}, quietLogger())
	return services.NewLifecycleService(store, primary, nil, validation.New(), discardActivity{}, quietLogger())
}

func registerLandlords(t *testing.T, svc services.LifecycleService, policyID uuid.UUID, n int) []error {
	t.Helper()
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), &services.RegisterActorRequest{
				PolicyID:    policyID,
				Kind:        models.KindLandlord,
				FullName:    "Concurrent Landlord",
				PerformedBy: "test",
			})
		}(i)
	}
	wg.Wait()
	return errs
}

func countLandlords(t *testing.T, db *TestDB, policyID uuid.UUID) int {
	t.Helper()
	var n int
	err := db.Pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM actors WHERE policy_id = $1 AND kind = 'landlord'`, policyID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestLifecycleService_ConcurrentRegisterRespectsLandlordCap(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db := SetupTestDB(t)
	defer db.Cleanup()

	policyID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	SeedLandlord(t, db, policyID, models.SharePercent(100), true, base)
	for i := 1; i < models.MaxLandlordsPerPolicy-1; i++ {
		SeedLandlord(t, db, policyID, models.SharePercent(100), false, base.Add(time.Duration(i)*time.Second))
	}

	errs := registerLandlords(t, newLifecycle(db), policyID, 5)

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, services.ErrTooManyLandlords)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, models.MaxLandlordsPerPolicy, countLandlords(t, db, policyID))
	assert.Equal(t, 1, countPrimaries(t, db, policyID))
}

func TestLifecycleService_ConcurrentFirstLandlordsYieldOnePrimary(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db := SetupTestDB(t)
	defer db.Cleanup()

	policyID := uuid.New()
	errs := registerLandlords(t, newLifecycle(db), policyID, 4)

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 4, countLandlords(t, db, policyID))
	assert.Equal(t, 1, countPrimaries(t, db, policyID))
}
