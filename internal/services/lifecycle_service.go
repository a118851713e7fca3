package services

import (
	"context"
	"strings"
	"time"

	"rentpolicy/internal/models"
	"rentpolicy/internal/repositories"
	"rentpolicy/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LifecycleService owns registration and the verification state machine:
//
//	PENDING -> IN_REVIEW -> APPROVED | REJECTED | REQUIRES_CHANGES
//	REJECTED, REQUIRES_CHANGES -> IN_REVIEW (resubmit)
//
// APPROVED is terminal. Approve and reject are accepted from any other state.
type LifecycleService interface {
	Register(ctx context.Context, req *RegisterActorRequest) (*models.Actor, error)
	Get(ctx context.Context, actorID uuid.UUID) (*models.Actor, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.Actor, error)
	CanSubmit(ctx context.Context, actorID uuid.UUID) (*SubmissionCheck, error)
	Submit(ctx context.Context, actorID uuid.UUID, performedBy string) (*models.Actor, error)
	Approve(ctx context.Context, actorID, approvedBy uuid.UUID) (*models.Actor, error)
	Reject(ctx context.Context, actorID, rejectedBy uuid.UUID, reason string) (*models.Actor, error)
	RequestChanges(ctx context.Context, actorID, requestedBy uuid.UUID, notes string) (*models.Actor, error)
}

type RegisterActorRequest struct {
	PolicyID    uuid.UUID                `json:"policy_id"`
	Kind        models.ActorKind         `json:"kind"`
	FullName    string                   `json:"full_name"`
	Email       string                   `json:"email"`
	Phone       string                   `json:"phone"`
	AddressID   *uuid.UUID               `json:"address_id"`
	IsPrimary   bool                     `json:"is_primary"`
	Landlord    *models.LandlordDetails  `json:"landlord"`
	Tenant      *models.TenantDetails    `json:"tenant"`
	Guarantor   *models.GuarantorDetails `json:"guarantor"`
	PerformedBy string                   `json:"-"`
}

// UpdateProfileRequest changes contact data and the kind payload. Nil
// fields are left untouched.
type UpdateProfileRequest struct {
	ActorID     uuid.UUID                `json:"-"`
	FullName    *string                  `json:"full_name"`
	Email       *string                  `json:"email"`
	Phone       *string                  `json:"phone"`
	AddressID   *uuid.UUID               `json:"address_id"`
	Landlord    *models.LandlordDetails  `json:"landlord"`
	Tenant      *models.TenantDetails    `json:"tenant"`
	Guarantor   *models.GuarantorDetails `json:"guarantor"`
	PerformedBy string                   `json:"-"`
}

type lifecycleService struct {
	store        repositories.Store
	primary      PrimaryDesignator
	requirements *SubmissionRequirements
	validator    *validation.Validator
	activity     ActivityLogger
	logger       logrus.FieldLogger
	now          func() time.Time
}

func NewLifecycleService(
	store repositories.Store,
	primary PrimaryDesignator,
	requirements *SubmissionRequirements,
	validator *validation.Validator,
	activity ActivityLogger,
	logger logrus.FieldLogger,
) LifecycleService {
	return &lifecycleService{
		store:        store,
		primary:      primary,
		requirements: requirements,
		validator:    validator,
		activity:     activity,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *lifecycleService) Register(ctx context.Context, req *RegisterActorRequest) (*models.Actor, error) {
	if !req.Kind.Valid() {
		return nil, ErrInvalidKind
	}

	actor := &models.Actor{
		ID:                 uuid.New(),
		PolicyID:           req.PolicyID,
		Kind:               req.Kind,
		FullName:           strings.TrimSpace(req.FullName),
		Email:              strings.TrimSpace(req.Email),
		Phone:              strings.TrimSpace(req.Phone),
		AddressID:          req.AddressID,
		VerificationStatus: models.StatusPending,
	}
	switch req.Kind {
	case models.KindLandlord:
		actor.Landlord = orDefault(req.Landlord)
		actor.OwnershipShare = models.FullOwnership
	case models.KindTenant:
		actor.Tenant = orDefault(req.Tenant)
	case models.KindGuarantor:
		actor.Guarantor = orDefault(req.Guarantor)
	}
	if errs := s.validator.Struct(actor); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		if !actor.IsLandlord() {
			return st.Actors().Create(ctx, actor)
		}

		landlords, err := st.Actors().ListLandlords(ctx, req.PolicyID, true)
		if err != nil {
			return err
		}
		if len(landlords) >= models.MaxLandlordsPerPolicy {
			return ErrTooManyLandlords
		}

		actor.IsPrimary = len(landlords) == 0
		if err := st.Actors().Create(ctx, actor); err != nil {
			return err
		}
		if req.IsPrimary && !actor.IsPrimary {
			if err := s.primary.DesignateInTx(ctx, st, req.PolicyID, actor.ID); err != nil {
				return err
			}
			actor.IsPrimary = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"actor_id": actor.ID, "policy_id": actor.PolicyID, "kind": actor.Kind}).Info("actor registered")
	s.activity.Log(ctx, actor.ID, models.ActionRegistered, req.PerformedBy, models.JSONB{
		"kind":       string(actor.Kind),
		"is_primary": actor.IsPrimary,
	})
	return actor, nil
}

func (s *lifecycleService) Get(ctx context.Context, actorID uuid.UUID) (*models.Actor, error) {
	actor, err := s.store.Actors().GetByID(ctx, actorID)
	if err != nil {
		return nil, actorErr(err)
	}
	return actor, nil
}

func (s *lifecycleService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*models.Actor, error) {
	var actor *models.Actor
	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		var err error
		actor, err = st.Actors().GetByIDForUpdate(ctx, req.ActorID)
		if err != nil {
			return actorErr(err)
		}
		if actor.VerificationStatus == models.StatusInReview || actor.VerificationStatus == models.StatusApproved {
			return ErrInvalidTransition
		}

		applyProfile(actor, req)
		if errs := s.validator.Struct(actor); len(errs) > 0 {
			return &ValidationError{Errors: errs}
		}
		return st.Actors().UpdateProfile(ctx, actor)
	})
	if err != nil {
		return nil, err
	}

	action := models.ActionProfileUpdated
	if req.PerformedBy == models.PerformerSelfService {
		action = models.ActionSelfUpdate
	}
	s.activity.Log(ctx, actor.ID, action, req.PerformedBy, nil)
	return actor, nil
}

func (s *lifecycleService) CanSubmit(ctx context.Context, actorID uuid.UUID) (*SubmissionCheck, error) {
	actor, err := s.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.requirements.Evaluate(ctx, actor)
}

// Submit evaluates every requirement before touching state; a failing
// evaluation leaves the actor unchanged.
func (s *lifecycleService) Submit(ctx context.Context, actorID uuid.UUID, performedBy string) (*models.Actor, error) {
	actor, err := s.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !canSubmitFrom(actor.VerificationStatus) {
		return nil, ErrInvalidTransition
	}
	if err := s.primary.RequirePrimary(ctx, actor); err != nil {
		return nil, err
	}

	check, err := s.requirements.Evaluate(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !check.CanSubmit {
		return nil, &SubmissionError{Missing: check.Missing}
	}

	from := actor.VerificationStatus
	updated, err := s.transition(ctx, actorID, canSubmitFrom, func(a *models.Actor) {
		a.VerificationStatus = models.StatusInReview
		a.InformationComplete = true
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, actorID, models.ActionSubmitted, performedBy, models.JSONB{"from": string(from)})
	return updated, nil
}

func (s *lifecycleService) Approve(ctx context.Context, actorID, approvedBy uuid.UUID) (*models.Actor, error) {
	now := s.now()
	updated, err := s.transition(ctx, actorID, notApproved, func(a *models.Actor) {
		a.VerificationStatus = models.StatusApproved
		a.ReviewedBy = &approvedBy
		a.ReviewedAt = &now
		a.ReviewNotes = nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, actorID, models.ActionApproved, approvedBy.String(), models.JSONB{"at": now})
	return updated, nil
}

func (s *lifecycleService) Reject(ctx context.Context, actorID, rejectedBy uuid.UUID, reason string) (*models.Actor, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrRejectReasonRequired
	}

	now := s.now()
	updated, err := s.transition(ctx, actorID, notApproved, func(a *models.Actor) {
		a.VerificationStatus = models.StatusRejected
		a.ReviewedBy = &rejectedBy
		a.ReviewedAt = &now
		a.ReviewNotes = &reason
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, actorID, models.ActionRejected, rejectedBy.String(), models.JSONB{"reason": reason, "at": now})
	return updated, nil
}

func (s *lifecycleService) RequestChanges(ctx context.Context, actorID, requestedBy uuid.UUID, notes string) (*models.Actor, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, ErrNotesRequired
	}

	now := s.now()
	updated, err := s.transition(ctx, actorID, inReview, func(a *models.Actor) {
		a.VerificationStatus = models.StatusRequiresChanges
		a.ReviewedBy = &requestedBy
		a.ReviewedAt = &now
		a.ReviewNotes = &notes
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, actorID, models.ActionChangesRequested, requestedBy.String(), models.JSONB{"notes": notes, "at": now})
	return updated, nil
}

// transition re-reads the actor under lock, checks allowed against the
// locked status and writes the mutation.
func (s *lifecycleService) transition(ctx context.Context, actorID uuid.UUID, allowed func(models.VerificationStatus) bool, mutate func(*models.Actor)) (*models.Actor, error) {
	var actor *models.Actor
	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		var err error
		actor, err = st.Actors().GetByIDForUpdate(ctx, actorID)
		if err != nil {
			return actorErr(err)
		}
		if !allowed(actor.VerificationStatus) {
			return ErrInvalidTransition
		}
		mutate(actor)
		return st.Actors().UpdateReview(ctx, actor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"actor_id": actorID, "status": actor.VerificationStatus}).Info("actor status changed")
	return actor, nil
}

func canSubmitFrom(status models.VerificationStatus) bool {
	switch status {
	case models.StatusPending, models.StatusRejected, models.StatusRequiresChanges:
		return true
	}
	return false
}

func notApproved(status models.VerificationStatus) bool {
	return status != models.StatusApproved
}

func inReview(status models.VerificationStatus) bool {
	return status == models.StatusInReview
}

func applyProfile(a *models.Actor, req *UpdateProfileRequest) {
	if req.FullName != nil {
		a.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		a.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		a.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.AddressID != nil {
		a.AddressID = req.AddressID
	}
	switch a.Kind {
	case models.KindLandlord:
		if req.Landlord != nil {
			a.Landlord = req.Landlord
		}
	case models.KindTenant:
		if req.Tenant != nil {
			a.Tenant = req.Tenant
		}
	case models.KindGuarantor:
		if req.Guarantor != nil {
			a.Guarantor = req.Guarantor
		}
	}
}

func orDefault[T any](v *T) *T {
	if v == nil {
		return new(T)
	}
	return v
}
