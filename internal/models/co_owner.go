package models

import (
	"time"

	"github.com/google/uuid"
)

// CoOwner is a secondary owner holding a share under a landlord actor.
type CoOwner struct {
	ID             uuid.UUID `json:"id" db:"id"`
	LandlordID     uuid.UUID `json:"landlord_id" db:"landlord_id"`
	Name           string    `json:"name" db:"name" validate:"required"`
	OwnershipShare Share     `json:"ownership_percentage" db:"ownership_bps"`
	RFC            *string   `json:"rfc,omitempty" db:"rfc" validate:"omitempty,rfc"`
	CURP           *string   `json:"curp,omitempty" db:"curp" validate:"omitempty,curp"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// RedistributionStrategy selects how a removed share is spread over the
// remaining co-owners.
type RedistributionStrategy string

const (
	RedistributeEqual        RedistributionStrategy = "equal"
	RedistributeProportional RedistributionStrategy = "proportional"
)

// OwnershipValidation is the outcome of checking a landlord's share totals.
type OwnershipValidation struct {
	IsValid bool     `json:"is_valid"`
	Total   Share    `json:"total"`
	Errors  []string `json:"errors"`
}

// OwnershipSummary is a landlord's current ownership picture.
type OwnershipSummary struct {
	LandlordID   uuid.UUID           `json:"landlord_id"`
	PrimaryShare Share               `json:"primary_percentage"`
	CoOwners     []*CoOwner          `json:"co_owners"`
	Validation   OwnershipValidation `json:"validation"`
}
