package services

import (
	"bytes"
	"context"
	"fmt"

	"rentpolicy/internal/models"
	"rentpolicy/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PrimaryService keeps exactly one primary landlord per policy. Every
// mutation locks all landlord rows of the policy and flips the flags in a
// single statement inside one transaction.
type PrimaryService interface {
	GetPrimary(ctx context.Context, policyID uuid.UUID) (*models.Actor, error)
	SetPrimary(ctx context.Context, policyID, landlordID uuid.UUID, performedBy string) error
	TransferPrimary(ctx context.Context, policyID, fromLandlordID, toLandlordID uuid.UUID, performedBy string) error
	ClearPrimary(ctx context.Context, policyID, landlordID uuid.UUID, performedBy string) (*models.Actor, error)
	ReassignOnRemoval(ctx context.Context, policyID, removedLandlordID uuid.UUID) (*models.Actor, error)
	RemoveLandlord(ctx context.Context, policyID, landlordID uuid.UUID, performedBy string) error
	PrimaryDesignator
}

// PrimaryDesignator is the part of the primary manager other services
// build on: the primary-only gate and designation inside their own tx.
type PrimaryDesignator interface {
	RequirePrimary(ctx context.Context, actor *models.Actor) error
	DesignateInTx(ctx context.Context, st repositories.Store, policyID, landlordID uuid.UUID) error
}

type primaryService struct {
	store    repositories.Store
	activity ActivityLogger
	logger   logrus.FieldLogger
}

func NewPrimaryService(store repositories.Store, activity ActivityLogger, logger logrus.FieldLogger) PrimaryService {
	return &primaryService{store: store, activity: activity, logger: logger}
}

func (s *primaryService) GetPrimary(ctx context.Context, policyID uuid.UUID) (*models.Actor, error) {
	landlords, err := s.store.Actors().ListLandlords(ctx, policyID, false)
	if err != nil {
		return nil, err
	}
	for _, l := range landlords {
		if l.IsPrimary {
			return l, nil
		}
	}
	return nil, ErrActorNotFound
}

func (s *primaryService) SetPrimary(ctx context.Context, policyID, landlordID uuid.UUID, performedBy string) error {
	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		return s.DesignateInTx(ctx, st, policyID, landlordID)
	})
	if err != nil {
		return err
	}

	s.activity.Log(ctx, landlordID, models.ActionPrimarySet, performedBy, models.JSONB{"policy_id": policyID.String()})
	return nil
}

func (s *primaryService) TransferPrimary(ctx context.Context, policyID, fromLandlordID, toLandlordID uuid.UUID, performedBy string) error {
	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		landlords, err := st.Actors().ListLandlords(ctx, policyID, true)
		if err != nil {
			return err
		}

		from := findActor(landlords, fromLandlordID)
		to := findActor(landlords, toLandlordID)
		if from == nil || to == nil {
			missing := fromLandlordID
			if from != nil {
				missing = toLandlordID
			}
			return s.explainOutsider(ctx, st, missing, ErrCrossPolicyTransfer)
		}
		if !from.IsPrimary {
			return ErrNotPrimary
		}
		if from.ID == to.ID {
			return nil
		}
		return s.flip(ctx, st, policyID, to.ID)
	})
	if err != nil {
		return err
	}

	s.activity.Log(ctx, toLandlordID, models.ActionPrimaryTransfer, performedBy, models.JSONB{
		"policy_id": policyID.String(),
		"from":      fromLandlordID.String(),
	})
	return nil
}

func (s *primaryService) ClearPrimary(ctx context.Context, policyID, landlordID uuid.UUID, performedBy string) (*models.Actor, error) {
	var (
		successor *models.Actor
		flipped   bool
	)
	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		landlords, err := st.Actors().ListLandlords(ctx, policyID, true)
		if err != nil {
			return err
		}

		target := findActor(landlords, landlordID)
		if target == nil {
			return s.explainOutsider(ctx, st, landlordID, ErrLandlordNotInPolicy)
		}
		if len(landlords) == 1 {
			return ErrOnlyLandlord
		}
		if !target.IsPrimary {
			successor = primaryOf(landlords)
			return nil
		}

		successor = pickSuccessor(landlords, landlordID)
		flipped = true
		return s.flip(ctx, st, policyID, successor.ID)
	})
	if err != nil {
		return nil, err
	}

	if flipped {
		s.activity.Log(ctx, successor.ID, models.ActionPrimaryReassign, performedBy, models.JSONB{
			"policy_id": policyID.String(),
			"from":      landlordID.String(),
		})
	}
	return successor, nil
}

// ReassignOnRemoval hands the primary flag on when removedLandlordID is
// about to leave the policy. A non-primary leaving changes nothing and the
// current primary is returned.
func (s *primaryService) ReassignOnRemoval(ctx context.Context, policyID, removedLandlordID uuid.UUID) (*models.Actor, error) {
	var (
		successor  *models.Actor
		reassigned bool
	)
	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		landlords, err := st.Actors().ListLandlords(ctx, policyID, true)
		if err != nil {
			return err
		}
		successor, reassigned, err = s.reassignInTx(ctx, st, policyID, landlords, removedLandlordID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if reassigned {
		s.activity.Log(ctx, successor.ID, models.ActionPrimaryReassign, "system", models.JSONB{
			"policy_id": policyID.String(),
			"removed":   removedLandlordID.String(),
		})
	}
	return successor, nil
}

// RemoveLandlord deletes a landlord. A primary landlord hands the flag to
// its successor in the same transaction, so the delete never commits with
// the policy left without a primary.
func (s *primaryService) RemoveLandlord(ctx context.Context, policyID, landlordID uuid.UUID, performedBy string) error {
	var (
		successor  *models.Actor
		reassigned bool
	)
	err := s.store.RunInTx(ctx, func(st repositories.Store) error {
		landlords, err := st.Actors().ListLandlords(ctx, policyID, true)
		if err != nil {
			return err
		}
		successor, reassigned, err = s.reassignInTx(ctx, st, policyID, landlords, landlordID)
		if err != nil {
			return err
		}
		return actorErr(st.Actors().Delete(ctx, landlordID))
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"policy_id": policyID, "landlord_id": landlordID}).Info("landlord removed")
	if reassigned {
		s.activity.Log(ctx, successor.ID, models.ActionPrimaryReassign, performedBy, models.JSONB{
			"policy_id": policyID.String(),
			"removed":   landlordID.String(),
		})
	}
	return nil
}

func (s *primaryService) RequirePrimary(_ context.Context, actor *models.Actor) error {
	if actor.IsLandlord() && !actor.IsPrimary {
		return ErrPrimaryOnly
	}
	return nil
}

// DesignateInTx makes landlordID the policy's only primary using st, which
// must already be transaction-bound.
func (s *primaryService) DesignateInTx(ctx context.Context, st repositories.Store, policyID, landlordID uuid.UUID) error {
	landlords, err := st.Actors().ListLandlords(ctx, policyID, true)
	if err != nil {
		return err
	}
	if findActor(landlords, landlordID) == nil {
		return s.explainOutsider(ctx, st, landlordID, ErrCrossPolicyTransfer)
	}
	return s.flip(ctx, st, policyID, landlordID)
}

// reassignInTx moves the flag off removedID when it is the primary among
// landlords, which must be the policy's locked landlord rows.
func (s *primaryService) reassignInTx(ctx context.Context, st repositories.Store, policyID uuid.UUID, landlords []*models.Actor, removedID uuid.UUID) (*models.Actor, bool, error) {
	removed := findActor(landlords, removedID)
	if removed == nil {
		return nil, false, s.explainOutsider(ctx, st, removedID, ErrLandlordNotInPolicy)
	}
	if len(landlords) == 1 {
		return nil, false, ErrOnlyLandlord
	}
	if !removed.IsPrimary {
		return primaryOf(landlords), false, nil
	}

	successor := pickSuccessor(landlords, removedID)
	if err := s.flip(ctx, st, policyID, successor.ID); err != nil {
		return nil, false, err
	}
	return successor, true, nil
}

func (s *primaryService) flip(ctx context.Context, st repositories.Store, policyID, landlordID uuid.UUID) error {
	primaries, err := st.Actors().SetPrimary(ctx, policyID, landlordID)
	if err != nil {
		return err
	}
	if primaries != 1 {
		return fmt.Errorf("set primary for policy %s left %d primaries", policyID, primaries)
	}
	return nil
}

// explainOutsider resolves why id was not among the policy's landlords.
// otherPolicy is returned for a landlord that belongs elsewhere.
func (s *primaryService) explainOutsider(ctx context.Context, st repositories.Store, id uuid.UUID, otherPolicy error) error {
	actor, err := st.Actors().GetByID(ctx, id)
	if err != nil {
		return actorErr(err)
	}
	if !actor.IsLandlord() {
		return ErrNotLandlord
	}
	return otherPolicy
}

// pickSuccessor chooses the landlord to inherit the primary flag when
// excludeID gives it up: highest own share, then earliest created, then
// lowest id.
func pickSuccessor(landlords []*models.Actor, excludeID uuid.UUID) *models.Actor {
	var best *models.Actor
	for _, l := range landlords {
		if l.ID == excludeID {
			continue
		}
		if best == nil || successorBefore(l, best) {
			best = l
		}
	}
	return best
}

func successorBefore(a, b *models.Actor) bool {
	if a.OwnershipShare != b.OwnershipShare {
		return a.OwnershipShare > b.OwnershipShare
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func findActor(actors []*models.Actor, id uuid.UUID) *models.Actor {
	for _, a := range actors {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func primaryOf(landlords []*models.Actor) *models.Actor {
	for _, l := range landlords {
		if l.IsPrimary {
			return l
		}
	}
	return nil
}
