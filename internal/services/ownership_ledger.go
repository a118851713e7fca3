package services

import (
	"fmt"
	"sort"

	"rentpolicy/internal/models"
)

// OwnershipRules are the share bounds enforced for a landlord record.
type OwnershipRules struct {
	PrimaryMin  models.Share
	CoOwnerMin  models.Share
	CoOwnerMax  models.Share
	MaxCoOwners int
}

func DefaultOwnershipRules() OwnershipRules {
	return OwnershipRules{
		PrimaryMin:  models.SharePercent(models.PrimaryMinPercent),
		CoOwnerMin:  models.SharePercent(models.CoOwnerMinPercent),
		CoOwnerMax:  models.FullOwnership,
		MaxCoOwners: models.MaxCoOwners,
	}
}

// OwnershipLedger validates share totals and computes redistributions. It
// holds no state and never touches the store.
type OwnershipLedger struct {
	rules OwnershipRules
}

func NewOwnershipLedger(rules OwnershipRules) *OwnershipLedger {
	return &OwnershipLedger{rules: rules}
}

func (l *OwnershipLedger) Rules() OwnershipRules {
	return l.rules
}

// ValidateTotals checks primary plus active co-owner shares. Every violated
// rule is reported; the result is never short-circuited.
func (l *OwnershipLedger) ValidateTotals(primary models.Share, coOwners []*models.CoOwner) models.OwnershipValidation {
	res := models.OwnershipValidation{Total: primary, Errors: []string{}}

	active := 0
	for _, c := range coOwners {
		if !c.IsActive {
			continue
		}
		active++
		res.Total += c.OwnershipShare
		if c.OwnershipShare < l.rules.CoOwnerMin || c.OwnershipShare > l.rules.CoOwnerMax {
			res.Errors = append(res.Errors, fmt.Sprintf("co-owner %s must hold between %s and %s, got %s",
				c.Name, l.rules.CoOwnerMin, l.rules.CoOwnerMax, c.OwnershipShare))
		}
	}

	if res.Total != models.FullOwnership {
		res.Errors = append(res.Errors, fmt.Sprintf("total ownership must equal %s, got %s", models.FullOwnership, res.Total))
	}
	if primary < l.rules.PrimaryMin {
		res.Errors = append(res.Errors, fmt.Sprintf("primary must have at least %s", l.rules.PrimaryMin))
	}
	if active > l.rules.MaxCoOwners {
		res.Errors = append(res.Errors, fmt.Sprintf("at most %d co-owners allowed, got %d", l.rules.MaxCoOwners, active))
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

// Redistribute spreads removed over remaining and returns updated copies in
// the same order; the inputs are not modified. Allocation is exact in basis
// points: leftover points go by largest remainder, ties to the earlier
// co-owner. An empty remaining set yields an empty result; the caller then
// credits the primary.
func (l *OwnershipLedger) Redistribute(removed models.Share, remaining []*models.CoOwner, strategy models.RedistributionStrategy) ([]*models.CoOwner, error) {
	if strategy != models.RedistributeEqual && strategy != models.RedistributeProportional {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	out := make([]*models.CoOwner, len(remaining))
	for i, c := range remaining {
		cp := *c
		out[i] = &cp
	}
	if len(out) == 0 || removed <= 0 {
		return out, nil
	}

	var sum models.Share
	for _, c := range out {
		sum += c.OwnershipShare
	}

	var deltas []models.Share
	if strategy == models.RedistributeProportional && sum > 0 {
		deltas = proportionalDeltas(removed, out, sum)
	} else {
		deltas = equalDeltas(removed, len(out))
	}

	for i, c := range out {
		c.OwnershipShare += deltas[i]
	}
	return out, nil
}

func equalDeltas(removed models.Share, n int) []models.Share {
	deltas := make([]models.Share, n)
	base := removed / models.Share(n)
	extra := int(removed % models.Share(n))
	for i := range deltas {
		deltas[i] = base
		if i < extra {
			deltas[i]++
		}
	}
	return deltas
}

func proportionalDeltas(removed models.Share, owners []*models.CoOwner, sum models.Share) []models.Share {
	type part struct {
		idx int
		rem int64
	}

	deltas := make([]models.Share, len(owners))
	parts := make([]part, len(owners))
	var allocated models.Share
	for i, c := range owners {
		num := int64(removed) * int64(c.OwnershipShare)
		deltas[i] = models.Share(num / int64(sum))
		parts[i] = part{idx: i, rem: num % int64(sum)}
		allocated += deltas[i]
	}

	sort.SliceStable(parts, func(a, b int) bool {
		return parts[a].rem > parts[b].rem
	})
	for i := 0; allocated < removed; i++ {
		deltas[parts[i].idx]++
		allocated++
	}
	return deltas
}
