package services

import (
	"context"
	"io"
	"sync"
	"time"

	"rentpolicy/internal/caching"
	"rentpolicy/internal/models"
	"rentpolicy/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type MockActorRepository struct {
	mock.Mock
}

func (m *MockActorRepository) actorResult(args mock.Arguments) (*models.Actor, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Actor), args.Error(1)
}

func (m *MockActorRepository) Create(ctx context.Context, actor *models.Actor) error {
	return m.Called(ctx, actor).Error(0)
}

func (m *MockActorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	return m.actorResult(m.Called(ctx, id))
}

func (m *MockActorRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	return m.actorResult(m.Called(ctx, id))
}

func (m *MockActorRepository) GetByToken(ctx context.Context, token string) (*models.Actor, error) {
	return m.actorResult(m.Called(ctx, token))
}

func (m *MockActorRepository) UpdateProfile(ctx context.Context, actor *models.Actor) error {
	return m.Called(ctx, actor).Error(0)
}

func (m *MockActorRepository) UpdateReview(ctx context.Context, actor *models.Actor) error {
	return m.Called(ctx, actor).Error(0)
}

func (m *MockActorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockActorRepository) ListLandlords(ctx context.Context, policyID uuid.UUID, forUpdate bool) ([]*models.Actor, error) {
	args := m.Called(ctx, policyID, forUpdate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Actor), args.Error(1)
}

func (m *MockActorRepository) CountLandlords(ctx context.Context, policyID uuid.UUID) (int, error) {
	args := m.Called(ctx, policyID)
	return args.Int(0), args.Error(1)
}

func (m *MockActorRepository) SetPrimary(ctx context.Context, policyID, landlordID uuid.UUID) (int64, error) {
	args := m.Called(ctx, policyID, landlordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActorRepository) UpdateOwnershipShare(ctx context.Context, id uuid.UUID, share models.Share) error {
	return m.Called(ctx, id, share).Error(0)
}

func (m *MockActorRepository) SetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	return m.Called(ctx, id, token, expiry).Error(0)
}

func (m *MockActorRepository) ExtendToken(ctx context.Context, id uuid.UUID, token string, readExpiry *time.Time, expiry time.Time) (bool, error) {
	args := m.Called(ctx, id, token, readExpiry, expiry)
	return args.Bool(0), args.Error(1)
}

func (m *MockActorRepository) ClearToken(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockActorRepository) TouchAccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockActorRepository) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActorRepository) HasAddress(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockCoOwnerRepository struct {
	mock.Mock
}

func (m *MockCoOwnerRepository) Create(ctx context.Context, c *models.CoOwner) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCoOwnerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CoOwner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CoOwner), args.Error(1)
}

func (m *MockCoOwnerRepository) ListActive(ctx context.Context, landlordID uuid.UUID, forUpdate bool) ([]*models.CoOwner, error) {
	args := m.Called(ctx, landlordID, forUpdate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CoOwner), args.Error(1)
}

func (m *MockCoOwnerRepository) UpdateShare(ctx context.Context, id uuid.UUID, share models.Share) error {
	return m.Called(ctx, id, share).Error(0)
}

func (m *MockCoOwnerRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockActivityLogRepository) ListByActor(ctx context.Context, actorID uuid.UUID, filters *models.ActivityLogFilters) ([]*models.ActivityLog, error) {
	args := m.Called(ctx, actorID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ActivityLog), args.Error(1)
}

// MockStore runs transactional callbacks against itself. txCount records
// how many transactions were opened.
type MockStore struct {
	actors   *MockActorRepository
	coOwners *MockCoOwnerRepository
	logs     *MockActivityLogRepository
	txCount  int
}

func newMockStore() *MockStore {
	return &MockStore{
		actors:   &MockActorRepository{},
		coOwners: &MockCoOwnerRepository{},
		logs:     &MockActivityLogRepository{},
	}
}

func (s *MockStore) Actors() repositories.ActorRepository             { return s.actors }
func (s *MockStore) CoOwners() repositories.CoOwnerRepository         { return s.coOwners }
func (s *MockStore) ActivityLogs() repositories.ActivityLogRepository { return s.logs }

func (s *MockStore) RunInTx(_ context.Context, fn func(repositories.Store) error) error {
	s.txCount++
	return fn(s)
}

type loggedActivity struct {
	ActorID     uuid.UUID
	Action      string
	PerformedBy string
	Details     models.JSONB
}

type recordingActivity struct {
	mu      sync.Mutex
	entries []loggedActivity
}

func (r *recordingActivity) Log(_ context.Context, actorID uuid.UUID, action, performedBy string, details models.JSONB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, loggedActivity{ActorID: actorID, Action: action, PerformedBy: performedBy, Details: details})
}

func (r *recordingActivity) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

type MockDocumentChecker struct {
	mock.Mock
}

func (m *MockDocumentChecker) HasRequiredDocuments(ctx context.Context, actor *models.Actor) (bool, error) {
	args := m.Called(ctx, actor)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentChecker) GetMissingDocuments(ctx context.Context, actor *models.Actor) ([]string, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetToken(ctx context.Context, token string) (*caching.TokenEntry, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caching.TokenEntry), args.Error(1)
}

func (m *MockCacheService) SetToken(ctx context.Context, token string, entry *caching.TokenEntry, ttl time.Duration) error {
	return m.Called(ctx, token, entry, ttl).Error(0)
}

func (m *MockCacheService) DeleteToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheService) Close() error {
	return m.Called().Error(0)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func landlord(policyID uuid.UUID, share models.Share, primary bool, createdAt time.Time) *models.Actor {
	return &models.Actor{
		ID:                 uuid.New(),
		PolicyID:           policyID,
		Kind:               models.KindLandlord,
		IsPrimary:          primary,
		OwnershipShare:     share,
		VerificationStatus: models.StatusPending,
		Landlord:           &models.LandlordDetails{},
		CreatedAt:          createdAt,
	}
}

func coOwner(landlordID uuid.UUID, name string, percent int64, createdAt time.Time) *models.CoOwner {
	return &models.CoOwner{
		ID:             uuid.New(),
		LandlordID:     landlordID,
		Name:           name,
		OwnershipShare: models.SharePercent(percent),
		IsActive:       true,
		CreatedAt:      createdAt,
	}
}
