package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ActorKind string

const (
	KindLandlord  ActorKind = "landlord"
	KindTenant    ActorKind = "tenant"
	KindGuarantor ActorKind = "guarantor"
)

func (k ActorKind) Valid() bool {
	switch k {
	case KindLandlord, KindTenant, KindGuarantor:
		return true
	}
	return false
}

type VerificationStatus string

const (
	StatusPending         VerificationStatus = "PENDING"
	StatusInReview        VerificationStatus = "IN_REVIEW"
	StatusApproved        VerificationStatus = "APPROVED"
	StatusRejected        VerificationStatus = "REJECTED"
	StatusRequiresChanges VerificationStatus = "REQUIRES_CHANGES"
)

// Actor is a party to a rental policy. Kind selects which of the detail
// payloads is populated; lifecycle and token fields are shared by all kinds.
type Actor struct {
	ID                  uuid.UUID          `json:"id" db:"id"`
	PolicyID            uuid.UUID          `json:"policy_id" db:"policy_id"`
	Kind                ActorKind          `json:"kind" db:"kind"`
	FullName            string             `json:"full_name" db:"full_name"`
	Email               string             `json:"email" db:"email" validate:"omitempty,email"`
	Phone               string             `json:"phone" db:"phone"`
	AddressID           *uuid.UUID         `json:"address_id" db:"address_id"`
	IsPrimary           bool               `json:"is_primary" db:"is_primary"`
	OwnershipShare      Share              `json:"ownership_percentage" db:"ownership_bps"`
	VerificationStatus  VerificationStatus `json:"verification_status" db:"verification_status"`
	InformationComplete bool               `json:"information_complete" db:"information_complete"`
	AccessToken         *string            `json:"-" db:"access_token"`
	TokenExpiry         *time.Time         `json:"token_expiry,omitempty" db:"token_expiry"`
	LastAccessAt        *time.Time         `json:"last_access_at,omitempty" db:"last_access_at"`
	ReviewedBy          *uuid.UUID         `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt          *time.Time         `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewNotes         *string            `json:"review_notes,omitempty" db:"review_notes"`
	Landlord            *LandlordDetails   `json:"landlord,omitempty" db:"-"`
	Tenant              *TenantDetails     `json:"tenant,omitempty" db:"-"`
	Guarantor           *GuarantorDetails  `json:"guarantor,omitempty" db:"-"`
	CreatedAt           time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" db:"updated_at"`
}

// LandlordDetails holds the banking, deed and invoicing data of a landlord.
type LandlordDetails struct {
	BankName           string `json:"bank_name"`
	CLABE              string `json:"clabe" validate:"omitempty,clabe"`
	AccountHolder      string `json:"account_holder"`
	PropertyDeedNumber string `json:"property_deed_number" validate:"omitempty,deed"`
	RequiresCFDI       bool   `json:"requires_cfdi"`
	RFC                string `json:"rfc" validate:"omitempty,rfc"`
	FiscalRegime       string `json:"fiscal_regime"`
}

type TenantDetails struct {
	EmployerName  string  `json:"employer_name"`
	MonthlyIncome float64 `json:"monthly_income" validate:"gte=0"`
}

type GuarantorDetails struct {
	GuaranteeDeedNumber  string `json:"guarantee_deed_number" validate:"omitempty,deed"`
	RelationshipToTenant string `json:"relationship_to_tenant"`
}

func (a *Actor) IsLandlord() bool {
	return a.Kind == KindLandlord
}

// HasToken reports whether a self-service token is currently stored.
func (a *Actor) HasToken() bool {
	return a.AccessToken != nil && a.TokenExpiry != nil
}

// DetailsJSON encodes the kind-specific payload for the details column.
func (a *Actor) DetailsJSON() ([]byte, error) {
	var v any
	switch a.Kind {
	case KindLandlord:
		v = a.Landlord
	case KindTenant:
		v = a.Tenant
	case KindGuarantor:
		v = a.Guarantor
	default:
		return nil, fmt.Errorf("unknown actor kind %q", a.Kind)
	}
	return json.Marshal(v)
}

// SetDetailsJSON decodes the details column into the payload matching Kind.
func (a *Actor) SetDetailsJSON(raw []byte) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	switch a.Kind {
	case KindLandlord:
		a.Landlord = &LandlordDetails{}
		return json.Unmarshal(raw, a.Landlord)
	case KindTenant:
		a.Tenant = &TenantDetails{}
		return json.Unmarshal(raw, a.Tenant)
	case KindGuarantor:
		a.Guarantor = &GuarantorDetails{}
		return json.Unmarshal(raw, a.Guarantor)
	}
	return fmt.Errorf("unknown actor kind %q", a.Kind)
}
