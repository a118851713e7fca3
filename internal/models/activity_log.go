package models

import (
	"time"

	"github.com/google/uuid"
)

type JSONB map[string]interface{}

// ActivityLog records a state change made to an actor.
type ActivityLog struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ActorID     uuid.UUID `json:"actor_id" db:"actor_id"`
	Action      string    `json:"action" db:"action"`
	PerformedBy string    `json:"performed_by" db:"performed_by"`
	Details     JSONB     `json:"details" db:"details"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Actions recorded in the activity log.
const (
	ActionRegistered       = "REGISTERED"
	ActionSubmitted        = "SUBMITTED"
	ActionApproved         = "APPROVED"
	ActionRejected         = "REJECTED"
	ActionChangesRequested = "CHANGES_REQUESTED"
	ActionPrimarySet       = "PRIMARY_SET"
	ActionPrimaryTransfer  = "PRIMARY_TRANSFERRED"
	ActionPrimaryReassign  = "PRIMARY_REASSIGNED"
	ActionLandlordRemoved  = "LANDLORD_REMOVED"
	ActionCoOwnerAdded     = "CO_OWNER_ADDED"
	ActionCoOwnerRemoved   = "CO_OWNER_REMOVED"
	ActionSharesUpdated    = "SHARES_UPDATED"
	ActionTokenGenerated   = "TOKEN_GENERATED"
	ActionTokenRevoked     = "TOKEN_REVOKED"
	ActionTokenRefreshed   = "TOKEN_REFRESHED"
	ActionSelfUpdate       = "SELF_SERVICE_UPDATE"
	ActionProfileUpdated   = "PROFILE_UPDATED"
)

// PerformerSelfService marks changes made through a self-service token.
const PerformerSelfService = "self-service"

type ActivityLogFilters struct {
	Action *string `json:"action"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
