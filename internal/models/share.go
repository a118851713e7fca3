package models

import (
	"math"
	"strconv"
)

// Share is an ownership share expressed in basis points (1% = 100).
type Share int64

const (
	ShareScale    Share = 100
	FullOwnership Share = 100 * ShareScale
)

// Ownership limits for a single landlord record and its policy.
const (
	MaxCoOwners           = 10
	MaxLandlordsPerPolicy = 10
	CoOwnerMinPercent     = 1
	PrimaryMinPercent     = 25
)

// SharePercent converts a whole percentage into a Share.
func SharePercent(p int64) Share {
	return Share(p) * ShareScale
}

// ShareFromPercent converts a decimal percentage, rounding to two decimals.
func ShareFromPercent(p float64) Share {
	return Share(math.Round(p * float64(ShareScale)))
}

// Percent returns the share as a decimal percentage.
func (s Share) Percent() float64 {
	return float64(s) / float64(ShareScale)
}

func (s Share) String() string {
	return strconv.FormatFloat(s.Percent(), 'f', -1, 64) + "%"
}

// MarshalJSON renders the share as a decimal percentage.
func (s Share) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, s.Percent(), 'f', -1, 64), nil
}

// UnmarshalJSON accepts a decimal percentage.
func (s *Share) UnmarshalJSON(data []byte) error {
	p, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*s = ShareFromPercent(p)
	return nil
}
