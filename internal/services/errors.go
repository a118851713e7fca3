package services

import (
	"errors"
	"strings"

	"rentpolicy/internal/repositories"
)

// Precondition failures. These are expected caller mistakes and are
// returned as-is so adapters can map them with errors.Is.
var (
	ErrActorNotFound        = errors.New("actor not found")
	ErrCoOwnerNotFound      = errors.New("co-owner not found")
	ErrNotLandlord          = errors.New("actor is not a landlord")
	ErrLandlordNotInPolicy  = errors.New("landlord does not belong to policy")
	ErrOnlyLandlord         = errors.New("policy has a single landlord; it must stay primary")
	ErrCrossPolicyTransfer  = errors.New("cross-policy transfer")
	ErrNotPrimary           = errors.New("landlord is not the primary")
	ErrPrimaryOnly          = errors.New("only the primary landlord can perform this action")
	ErrTooManyLandlords     = errors.New("policy already has the maximum number of landlords")
	ErrTooManyCoOwners      = errors.New("landlord already has the maximum number of co-owners")
	ErrInvalidTransition    = errors.New("invalid verification status transition")
	ErrRejectReasonRequired = errors.New("rejection reason is required")
	ErrNotesRequired        = errors.New("change request notes are required")
	ErrInvalidKind          = errors.New("invalid actor kind")
	ErrUnknownStrategy      = errors.New("unknown redistribution strategy")
	ErrNoToken              = errors.New("actor has no self-service token")
	ErrTokenConflict        = errors.New("token changed concurrently")
	ErrValidation           = errors.New("validation failed")
	ErrCannotSubmit         = errors.New("cannot submit")
)

// ValidationError carries every violated rule so callers can render the
// full list at once.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SubmissionError lists every unmet submission requirement.
type SubmissionError struct {
	Missing []string
}

func (e *SubmissionError) Error() string {
	return "cannot submit: missing " + strings.Join(e.Missing, ", ")
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrCannotSubmit
}

func actorErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrActorNotFound
	}
	return err
}
