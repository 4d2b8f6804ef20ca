package services

import (
	"fmt"

	"marketplace/internal/apperrors"

	"github.com/shopspring/decimal"
)

// DefaultMaxTransactionAmount is the ceiling for a single payment, in minor units.
const DefaultMaxTransactionAmount int64 = 10_000_000

// minorUnitThreshold separates major-unit input from input already in minor units.
var minorUnitThreshold = decimal.NewFromInt(100_000)

var minorPerMajor = decimal.NewFromInt(100)

// AmountNormalizer turns caller-supplied amounts into minor units.
type AmountNormalizer struct {
	ceiling int64
}

// NewAmountNormalizer creates a normalizer that rejects amounts above ceiling minor units.
// A non-positive ceiling selects DefaultMaxTransactionAmount.
func NewAmountNormalizer(ceiling int64) *AmountNormalizer {
	if ceiling <= 0 {
		ceiling = DefaultMaxTransactionAmount
	}
	return &AmountNormalizer{ceiling: ceiling}
}

// Normalize converts raw into minor units. Values above 100000 are taken to be minor units
// already, anything else is major units. Fractional minor units round half up.
func (n *AmountNormalizer) Normalize(raw decimal.Decimal) (int64, error) {
	if !raw.IsPositive() {
		return 0, fmt.Errorf("normalize %s: %w", raw, apperrors.ErrInvalidAmount)
	}

	minor := raw
	if !raw.GreaterThan(minorUnitThreshold) {
		minor = raw.Mul(minorPerMajor)
	}
	return n.bounded(raw, minor)
}

// FromMajor converts an amount known to be in major units, such as an order total, into
// minor units. Only the positivity and ceiling checks apply.
func (n *AmountNormalizer) FromMajor(major decimal.Decimal) (int64, error) {
	if !major.IsPositive() {
		return 0, fmt.Errorf("normalize %s: %w", major, apperrors.ErrInvalidAmount)
	}
	return n.bounded(major, major.Mul(minorPerMajor))
}

func (n *AmountNormalizer) bounded(raw, minor decimal.Decimal) (int64, error) {
	minor = minor.Round(0)
	if !minor.IsPositive() {
		return 0, fmt.Errorf("normalize %s: %w", raw, apperrors.ErrInvalidAmount)
	}
	if minor.GreaterThan(decimal.NewFromInt(n.ceiling)) {
		return 0, fmt.Errorf("normalize %s: %w", raw, apperrors.ErrAmountExceedsLimit)
	}
	return minor.IntPart(), nil
}
