/*
rates.go - Minimum-rate tables and penalty multipliers

PURPOSE:
  The RateTable answers two questions for a payroll rule:
  1. What is the minimum hourly rate for this classification level?
  2. What multiplier applies to Saturday/Sunday/public-holiday work?

TABLE SHAPE:
  Minimum rates are the PERMANENT adult scale per Award. Casual employees
  are checked against permanent minimum x 1.25 (casual loading) by a
  separate rule; the base-rate check deliberately uses the permanent scale
  for every employment type.

RATES:
  Dollar figures are the published adult minimums, transcribed as decimal
  strings so no float conversion ever touches them.

SEE ALSO:
  - award.go: Award/Classification/EmploymentType enums
  - payroll/rules.go: The rules consuming these lookups
*/
package award

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONSTANTS
// =============================================================================

var (
	// CasualLoading is the uplift applied to the permanent minimum for
	// casual employees in lieu of leave entitlements.
	CasualLoading = decimal.RequireFromString("1.25")

	// SuperannuationRate is the superannuation guarantee (12%).
	SuperannuationRate = decimal.RequireFromString("0.12")
)

// PenaltyBucket identifies which penalty-rate window a block of hours
// falls into.
type PenaltyBucket string

const (
	BucketSaturday      PenaltyBucket = "saturday"
	BucketSunday        PenaltyBucket = "sunday"
	BucketPublicHoliday PenaltyBucket = "public_holiday"
)

func (b PenaltyBucket) Label() string {
	switch b {
	case BucketSaturday:
		return "Saturday"
	case BucketSunday:
		return "Sunday"
	case BucketPublicHoliday:
		return "Public Holiday"
	default:
		return string(b)
	}
}

// =============================================================================
// MINIMUM RATE TABLES
// =============================================================================

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// minimumRates holds the permanent adult hourly minimum per Award per level.
// Index 0 is Level 1.
var minimumRates = map[Award][MaxLevel]decimal.Decimal{
	AwardRetail: {
		d("26.55"), d("27.17"), d("27.59"), d("28.13"),
		d("29.29"), d("29.72"), d("31.20"), d("32.47"),
	},
	AwardHospitality: {
		d("24.98"), d("25.80"), d("26.55"), d("27.17"),
		d("28.87"), d("29.65"), d("30.90"), d("32.06"),
	},
	AwardClerks: {
		d("25.65"), d("26.91"), d("27.88"), d("29.26"),
		d("30.45"), d("31.76"), d("33.38"), d("34.93"),
	},
}

// penaltyMultipliers holds Saturday/Sunday/public-holiday multipliers.
// Casuals attract a higher multiplier in every bucket (their 25% loading
// is folded into the penalty rate, per the modeled Awards).
var penaltyMultipliers = map[bool]map[PenaltyBucket]decimal.Decimal{
	false: { // permanent / fixed-term
		BucketSaturday:      d("1.25"),
		BucketSunday:        d("1.50"),
		BucketPublicHoliday: d("2.25"),
	},
	true: { // casual
		BucketSaturday:      d("1.50"),
		BucketSunday:        d("1.75"),
		BucketPublicHoliday: d("2.50"),
	},
}

// =============================================================================
// RATE TABLE
// =============================================================================

// RateTable is the pure lookup component for award pay rules.
// The zero value is not usable; construct with NewRateTable.
type RateTable struct {
	award Award
}

func NewRateTable(a Award) (*RateTable, error) {
	if _, ok := minimumRates[a]; !ok {
		return nil, fmt.Errorf("no rate table for award: %q", a)
	}
	return &RateTable{award: a}, nil
}

func (t *RateTable) Award() Award { return t.award }

// MinimumHourlyRate returns the permanent-scale minimum for a level.
// Employment type intentionally does not influence this lookup.
func (t *RateTable) MinimumHourlyRate(c Classification) (decimal.Decimal, error) {
	if !c.Valid() {
		return decimal.Zero, fmt.Errorf("invalid classification: %v", int(c))
	}
	return minimumRates[t.award][int(c)-1], nil
}

// CasualMinimumRate returns the loaded minimum for casual employees:
// permanent minimum x 1.25.
func (t *RateTable) CasualMinimumRate(c Classification) (decimal.Decimal, error) {
	base, err := t.MinimumHourlyRate(c)
	if err != nil {
		return decimal.Zero, err
	}
	return base.Mul(CasualLoading), nil
}

// PenaltyMultiplier returns the multiplier for a bucket. Casual employees
// use the loaded multiplier set; every other type uses the permanent set.
func (t *RateTable) PenaltyMultiplier(et EmploymentType, bucket PenaltyBucket) (decimal.Decimal, error) {
	set := penaltyMultipliers[et == Casual]
	m, ok := set[bucket]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown penalty bucket: %q", bucket)
	}
	return m, nil
}
