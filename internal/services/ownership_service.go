package services

import (
	"context"
	"strings"

	"rentpolicy/internal/models"
	"rentpolicy/internal/repositories"
	"rentpolicy/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OwnershipService applies share changes for a landlord and its co-owners.
// Each change locks the landlord and co-owner rows, re-runs ValidateTotals on
// the resulting state and commits only when it holds.
type OwnershipService interface {
	GetSummary(ctx context.Context, landlordID uuid.UUID) (*models.OwnershipSummary, error)
	ValidateLandlord(ctx context.Context, landlordID uuid.UUID) (models.OwnershipValidation, error)
	AddCoOwner(ctx context.Context, req *AddCoOwnerRequest) (*models.CoOwner, error)
	UpdateShares(ctx context.Context, req *UpdateSharesRequest) (*models.OwnershipSummary, error)
	RemoveCoOwner(ctx context.Context, req *RemoveCoOwnerRequest) (*models.OwnershipSummary, error)
}

type AddCoOwnerRequest struct {
	LandlordID     uuid.UUID    `json:"-"`
	Name           string       `json:"name"`
	OwnershipShare models.Share `json:"ownership_percentage"`
	RFC            *string      `json:"rfc"`
	CURP           *string      `json:"curp"`
	PerformedBy    string       `json:"-"`
}

type UpdateSharesRequest struct {
	LandlordID    uuid.UUID                  `json:"-"`
	PrimaryShare  models.Share               `json:"primary_percentage"`
	CoOwnerShares map[uuid.UUID]models.Share `json:"co_owners"`
	PerformedBy   string                     `json:"-"`
}

type RemoveCoOwnerRequest struct {
	LandlordID  uuid.UUID                     `json:"-"`
	CoOwnerID   uuid.UUID                     `json:"-"`
	Strategy    models.RedistributionStrategy `json:"strategy"`
	PerformedBy string                        `json:"-"`
}

type ownershipService struct {
	store     repositories.Store
	ledger    *OwnershipLedger
	validator *validation.Validator
	activity  ActivityLogger
	logger    logrus.FieldLogger
}

func NewOwnershipService(store repositories.Store, ledger *OwnershipLedger, validator *validation.Validator, activity ActivityLogger, logger logrus.FieldLogger) OwnershipService {
	return &ownershipService{
		store:     store,
		ledger:    ledger,
		validator: validator,
		activity:  activity,
		logger:    logger,
	}
}

func (s *ownershipService) GetSummary(ctx context.Context, landlordID uuid.UUID) (*models.OwnershipSummary, error) {
	landlord, coOwners, err := s.load(ctx, s.store, landlordID, false)
	if err != nil {
		return nil, err
	}
	return s.summary(landlord.ID, landlord.OwnershipShare, coOwners), nil
}

func (s *ownershipService) ValidateLandlord(ctx context.Context, landlordID uuid.UUID) (models.OwnershipValidation, error) {
	summary, err := s.GetSummary(ctx, landlordID)
	if err != nil {
		return models.OwnershipValidation{}, err
	}
	return summary.Validation, nil
}

// AddCoOwner takes the new co-owner's share out of the primary owner's own
// share.
func (s *ownershipService) AddCoOwner(ctx context.Context, req *AddCoOwnerRequest) (*models.CoOwner, error) {
	coOwner := &models.CoOwner{
		ID:             uuid.New(),
		LandlordID:     req.LandlordID,
		Name:           strings.TrimSpace(req.Name),
		OwnershipShare: req.OwnershipShare,
		RFC:            req.RFC,
		CURP:           req.CURP,
		IsActive:       true,
	}
	if errs := s.validator.Struct(coOwner); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		landlord, coOwners, err := s.load(ctx, st, req.LandlordID, true)
		if err != nil {
			return err
		}
		if len(coOwners) >= s.ledger.Rules().MaxCoOwners {
			return ErrTooManyCoOwners
		}

		primary := landlord.OwnershipShare - coOwner.OwnershipShare
		if res := s.ledger.ValidateTotals(primary, append(coOwners, coOwner)); !res.IsValid {
			return &ValidationError{Errors: res.Errors}
		}

		if err := st.Actors().UpdateOwnershipShare(ctx, landlord.ID, primary); err != nil {
			return err
		}
		return st.CoOwners().Create(ctx, coOwner)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, req.LandlordID, models.ActionCoOwnerAdded, req.PerformedBy, models.JSONB{
		"co_owner_id": coOwner.ID.String(),
		"percentage":  coOwner.OwnershipShare.Percent(),
	})
	return coOwner, nil
}

func (s *ownershipService) UpdateShares(ctx context.Context, req *UpdateSharesRequest) (*models.OwnershipSummary, error) {
	var summary *models.OwnershipSummary
	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		landlord, coOwners, err := s.load(ctx, st, req.LandlordID, true)
		if err != nil {
			return err
		}

		known := make(map[uuid.UUID]*models.CoOwner, len(coOwners))
		for _, c := range coOwners {
			known[c.ID] = c
		}
		for id := range req.CoOwnerShares {
			if _, ok := known[id]; !ok {
				return ErrCoOwnerNotFound
			}
		}

		updated := make([]*models.CoOwner, len(coOwners))
		for i, c := range coOwners {
			cp := *c
			if share, ok := req.CoOwnerShares[c.ID]; ok {
				cp.OwnershipShare = share
			}
			updated[i] = &cp
		}

		res := s.ledger.ValidateTotals(req.PrimaryShare, updated)
		if !res.IsValid {
			return &ValidationError{Errors: res.Errors}
		}

		if req.PrimaryShare != landlord.OwnershipShare {
			if err := st.Actors().UpdateOwnershipShare(ctx, landlord.ID, req.PrimaryShare); err != nil {
				return err
			}
		}
		if err := persistShareChanges(ctx, st, coOwners, updated); err != nil {
			return err
		}

		summary = s.summary(landlord.ID, req.PrimaryShare, updated)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, req.LandlordID, models.ActionSharesUpdated, req.PerformedBy, models.JSONB{
		"primary_percentage": req.PrimaryShare.Percent(),
	})
	return summary, nil
}

// RemoveCoOwner deactivates a co-owner and hands its share to the remaining
// co-owners, or to the primary owner when none remain.
func (s *ownershipService) RemoveCoOwner(ctx context.Context, req *RemoveCoOwnerRequest) (*models.OwnershipSummary, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = models.RedistributeProportional
	}

	var summary *models.OwnershipSummary
	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		landlord, coOwners, err := s.load(ctx, st, req.LandlordID, true)
		if err != nil {
			return err
		}

		var removed *models.CoOwner
		remaining := make([]*models.CoOwner, 0, len(coOwners))
		for _, c := range coOwners {
			if c.ID == req.CoOwnerID {
				removed = c
				continue
			}
			remaining = append(remaining, c)
		}
		if removed == nil {
			return ErrCoOwnerNotFound
		}

		primary := landlord.OwnershipShare
		updated, err := s.ledger.Redistribute(removed.OwnershipShare, remaining, strategy)
		if err != nil {
			return err
		}
		if len(updated) == 0 {
			primary += removed.OwnershipShare
		}

		res := s.ledger.ValidateTotals(primary, updated)
		if !res.IsValid {
			return &ValidationError{Errors: res.Errors}
		}

		if err := st.CoOwners().Deactivate(ctx, removed.ID); err != nil {
			return err
		}
		if err := persistShareChanges(ctx, st, remaining, updated); err != nil {
			return err
		}
		if primary != landlord.OwnershipShare {
			if err := st.Actors().UpdateOwnershipShare(ctx, landlord.ID, primary); err != nil {
				return err
			}
		}

		summary = s.summary(landlord.ID, primary, updated)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, req.LandlordID, models.ActionCoOwnerRemoved, req.PerformedBy, models.JSONB{
		"co_owner_id": req.CoOwnerID.String(),
		"strategy":    string(strategy),
	})
	return summary, nil
}

func (s *ownershipService) load(ctx context.Context, st repositories.Store, landlordID uuid.UUID, forUpdate bool) (*models.Actor, []*models.CoOwner, error) {
	var (
		landlord *models.Actor
		err      error
	)
	if forUpdate {
		landlord, err = st.Actors().GetByIDForUpdate(ctx, landlordID)
	} else {
		landlord, err = st.Actors().GetByID(ctx, landlordID)
	}
	if err != nil {
		return nil, nil, actorErr(err)
	}
	if !landlord.IsLandlord() {
		return nil, nil, ErrNotLandlord
	}

	coOwners, err := st.CoOwners().ListActive(ctx, landlordID, forUpdate)
	if err != nil {
		return nil, nil, err
	}
	return landlord, coOwners, nil
}

func (s *ownershipService) summary(landlordID uuid.UUID, primary models.Share, coOwners []*models.CoOwner) *models.OwnershipSummary {
	if coOwners == nil {
		coOwners = []*models.CoOwner{}
	}
	return &models.OwnershipSummary{
		LandlordID:   landlordID,
		PrimaryShare: primary,
		CoOwners:     coOwners,
		Validation:   s.ledger.ValidateTotals(primary, coOwners),
	}
}

// persistShareChanges writes the shares that differ between before and
// after, which hold the same co-owners in the same order.
func persistShareChanges(ctx context.Context, st repositories.Store, before, after []*models.CoOwner) error {
	for i, c := range after {
		if c.OwnershipShare == before[i].OwnershipShare {
			continue
		}
		if err := st.CoOwners().UpdateShare(ctx, c.ID, c.OwnershipShare); err != nil {
			return err
		}
	}
	return nil
}
