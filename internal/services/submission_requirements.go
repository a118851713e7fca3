package services

import (
	"context"
	"strings"

	"rentpolicy/internal/models"
	"rentpolicy/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DocumentChecker reports which required document categories an actor has
// uploaded.
type DocumentChecker interface {
	HasRequiredDocuments(ctx context.Context, actor *models.Actor) (bool, error)
	GetMissingDocuments(ctx context.Context, actor *models.Actor) ([]string, error)
}

// AddressChecker reports whether an actor has an address assigned.
type AddressChecker interface {
	HasAddress(ctx context.Context, actorID uuid.UUID) (bool, error)
}

// SubmissionCheck is the outcome of evaluating an actor for submission.
type SubmissionCheck struct {
	CanSubmit bool     `json:"can_submit"`
	Missing   []string `json:"missing"`
}

// SubmissionRequirements evaluates every requirement independently and
// collects all failures, in a stable order: personal info, address,
// documents, then kind-specific data.
type SubmissionRequirements struct {
	documents DocumentChecker
	addresses AddressChecker
}

func NewSubmissionRequirements(documents DocumentChecker, addresses AddressChecker) *SubmissionRequirements {
	return &SubmissionRequirements{documents: documents, addresses: addresses}
}

func (r *SubmissionRequirements) Evaluate(ctx context.Context, actor *models.Actor) (*SubmissionCheck, error) {
	var (
		hasAddress  bool
		missingDocs []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hasAddress, err = r.addresses.HasAddress(gctx, actor.ID)
		return err
	})
	g.Go(func() error {
		ok, err := r.documents.HasRequiredDocuments(gctx, actor)
		if err != nil || ok {
			return err
		}
		missingDocs, err = r.documents.GetMissingDocuments(gctx, actor)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	missing := personalInfoMissing(actor)
	if !hasAddress {
		missing = append(missing, "address")
	}
	for _, doc := range missingDocs {
		missing = append(missing, "document: "+doc)
	}

	switch actor.Kind {
	case models.KindLandlord:
		missing = append(missing, landlordMissing(actor.Landlord)...)
	case models.KindTenant:
		missing = append(missing, tenantMissing(actor.Tenant)...)
	case models.KindGuarantor:
		missing = append(missing, guarantorMissing(actor.Guarantor)...)
	}

	if missing == nil {
		missing = []string{}
	}
	return &SubmissionCheck{CanSubmit: len(missing) == 0, Missing: missing}, nil
}

func personalInfoMissing(a *models.Actor) []string {
	var missing []string
	if blank(a.FullName) {
		missing = append(missing, "full name")
	}
	if blank(a.Email) {
		missing = append(missing, "email")
	}
	if blank(a.Phone) {
		missing = append(missing, "phone")
	}
	return missing
}

func landlordMissing(d *models.LandlordDetails) []string {
	if d == nil {
		d = &models.LandlordDetails{}
	}

	var missing []string
	switch {
	case blank(d.BankName) || blank(d.CLABE) || blank(d.AccountHolder):
		missing = append(missing, "bank information")
	case !validation.IsCLABE(d.CLABE):
		missing = append(missing, "valid CLABE")
	}

	switch {
	case blank(d.PropertyDeedNumber):
		missing = append(missing, "property deed number")
	case !validation.IsDeedNumber(d.PropertyDeedNumber):
		missing = append(missing, "valid property deed number")
	}

	if d.RequiresCFDI {
		switch {
		case blank(d.RFC) || blank(d.FiscalRegime):
			missing = append(missing, "CFDI data")
		case !validation.IsRFC(d.RFC):
			missing = append(missing, "valid RFC")
		}
	}
	return missing
}

func tenantMissing(d *models.TenantDetails) []string {
	if d == nil {
		d = &models.TenantDetails{}
	}

	var missing []string
	if blank(d.EmployerName) {
		missing = append(missing, "employer")
	}
	if d.MonthlyIncome <= 0 {
		missing = append(missing, "monthly income")
	}
	return missing
}

func guarantorMissing(d *models.GuarantorDetails) []string {
	if d == nil {
		d = &models.GuarantorDetails{}
	}

	var missing []string
	switch {
	case blank(d.GuaranteeDeedNumber):
		missing = append(missing, "guarantee deed number")
	case !validation.IsDeedNumber(d.GuaranteeDeedNumber):
		missing = append(missing, "valid guarantee deed number")
	}
	if blank(d.RelationshipToTenant) {
		missing = append(missing, "relationship to tenant")
	}
	return missing
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
