package handlers

import (
	"context"
	"io"
	"time"

	"rentpolicy/internal/models"
	"rentpolicy/internal/repositories"
	"rentpolicy/internal/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type MockLifecycleService struct {
	mock.Mock
}

func actorOrNil(args mock.Arguments) (*models.Actor, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Actor), args.Error(1)
}

func (m *MockLifecycleService) Register(ctx context.Context, req *services.RegisterActorRequest) (*models.Actor, error) {
	return actorOrNil(m.Called(ctx, req))
}

func (m *MockLifecycleService) Get(ctx context.Context, actorID uuid.UUID) (*models.Actor, error) {
	return actorOrNil(m.Called(ctx, actorID))
}

func (m *MockLifecycleService) UpdateProfile(ctx context.Context, req *services.UpdateProfileRequest) (*models.Actor, error) {
	return actorOrNil(m.Called(ctx, req))
}

func (m *MockLifecycleService) CanSubmit(ctx context.Context, actorID uuid.UUID) (*services.SubmissionCheck, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SubmissionCheck), args.Error(1)
}

func (m *MockLifecycleService) Submit(ctx context.Context, actorID uuid.UUID, performedBy string) (*models.Actor, error) {
	return actorOrNil(m.Called(ctx, actorID, performedBy))
}

func (m *MockLifecycleService) Approve(ctx context.Context, actorID, approvedBy uuid.UUID) (*models.Actor, error) {
	return actorOrNil(m.Called(ctx, actorID, approvedBy))
}

func (m *MockLifecycleService) Reject(ctx context.Context, actorID, rejectedBy uuid.UUID, reason string) (*models.Actor, error) {
	return actorOrNil(m.Called(ctx, actorID, rejectedBy, reason))
}

func (m *MockLifecycleService) RequestChanges(ctx context.Context, actorID, requestedBy uuid.UUID, notes string) (*models.Actor, error) {
	return actorOrNil(m.Called(ctx, actorID, requestedBy, notes))
}

type MockPrimaryService struct {
	mock.Mock
}

func (m *MockPrimaryService) GetPrimary(ctx context.Context, policyID uuid.UUID) (*models.Actor, error) {
	return actorOrNil(m.Called(ctx, policyID))
}

func (m *MockPrimaryService) SetPrimary(ctx context.Context, policyID, landlordID uuid.UUID, performedBy string) error {
	return m.Called(ctx, policyID, landlordID, performedBy).Error(0)
}

func (m *MockPrimaryService) TransferPrimary(ctx context.Context, policyID, fromLandlordID, toLandlordID uuid.UUID, performedBy string) error {
	return m.Called(ctx, policyID, fromLandlordID, toLandlordID, performedBy).Error(0)
}

func (m *MockPrimaryService) ClearPrimary(ctx context.Context, policyID, landlordID uuid.UUID, performedBy string) (*models.Actor, error) {
	return actorOrNil(m.Called(ctx, policyID, landlordID, performedBy))
}

func (m *MockPrimaryService) ReassignOnRemoval(ctx context.Context, policyID, removedLandlordID uuid.UUID) (*models.Actor, error) {
	return actorOrNil(m.Called(ctx, policyID, removedLandlordID))
}

func (m *MockPrimaryService) RemoveLandlord(ctx context.Context, policyID, landlordID uuid.UUID, performedBy string) error {
	return m.Called(ctx, policyID, landlordID, performedBy).Error(0)
}

func (m *MockPrimaryService) RequirePrimary(ctx context.Context, actor *models.Actor) error {
	return m.Called(ctx, actor).Error(0)
}

func (m *MockPrimaryService) DesignateInTx(ctx context.Context, st repositories.Store, policyID, landlordID uuid.UUID) error {
	return m.Called(ctx, st, policyID, landlordID).Error(0)
}

type MockOwnershipService struct {
	mock.Mock
}

func summaryOrNil(args mock.Arguments) (*models.OwnershipSummary, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OwnershipSummary), args.Error(1)
}

func (m *MockOwnershipService) GetSummary(ctx context.Context, landlordID uuid.UUID) (*models.OwnershipSummary, error) {
	return summaryOrNil(m.Called(ctx, landlordID))
}

func (m *MockOwnershipService) ValidateLandlord(ctx context.Context, landlordID uuid.UUID) (models.OwnershipValidation, error) {
	args := m.Called(ctx, landlordID)
	return args.Get(0).(models.OwnershipValidation), args.Error(1)
}

func (m *MockOwnershipService) AddCoOwner(ctx context.Context, req *services.AddCoOwnerRequest) (*models.CoOwner, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CoOwner), args.Error(1)
}

func (m *MockOwnershipService) UpdateShares(ctx context.Context, req *services.UpdateSharesRequest) (*models.OwnershipSummary, error) {
	return summaryOrNil(m.Called(ctx, req))
}

func (m *MockOwnershipService) RemoveCoOwner(ctx context.Context, req *services.RemoveCoOwnerRequest) (*models.OwnershipSummary, error) {
	return summaryOrNil(m.Called(ctx, req))
}

type MockTokenService struct {
	mock.Mock
}

func issuedOrNil(args mock.Arguments) (*models.IssuedToken, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IssuedToken), args.Error(1)
}

func (m *MockTokenService) Generate(ctx context.Context, actorID uuid.UUID, expiryDays int, performedBy string) (*models.IssuedToken, error) {
	return issuedOrNil(m.Called(ctx, actorID, expiryDays, performedBy))
}

func (m *MockTokenService) Validate(ctx context.Context, token string) (*models.TokenValidation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenValidation), args.Error(1)
}

func (m *MockTokenService) ValidateAndTouch(ctx context.Context, token string) (*models.TokenValidation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenValidation), args.Error(1)
}

func (m *MockTokenService) Revoke(ctx context.Context, actorID uuid.UUID, performedBy string) error {
	return m.Called(ctx, actorID, performedBy).Error(0)
}

func (m *MockTokenService) Refresh(ctx context.Context, actorID uuid.UUID, additionalDays int, performedBy string) (*models.IssuedToken, error) {
	return issuedOrNil(m.Called(ctx, actorID, additionalDays, performedBy))
}

func (m *MockTokenService) SweepExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockActivityLogService struct {
	mock.Mock
}

func (m *MockActivityLogService) Log(ctx context.Context, actorID uuid.UUID, action, performedBy string, details models.JSONB) {
	m.Called(ctx, actorID, action, performedBy, details)
}

func (m *MockActivityLogService) History(ctx context.Context, actorID uuid.UUID, filters *models.ActivityLogFilters) ([]*models.ActivityLog, error) {
	args := m.Called(ctx, actorID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ActivityLog), args.Error(1)
}

func (m *MockActivityLogService) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) HasRequiredDocuments(ctx context.Context, actor *models.Actor) (bool, error) {
	args := m.Called(ctx, actor)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentService) GetMissingDocuments(ctx context.Context, actor *models.Actor) ([]string, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentService) UploadDocument(ctx context.Context, actorID uuid.UUID, category, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, actorID, category, fileName, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) EnsureBucketExists(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
