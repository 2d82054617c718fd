/*
rules.go - The four payroll compliance rules

TOLERANCES:
  All money comparisons use a fixed absolute tolerance to absorb rounding
  noise: +/-$0.01 for hourly-rate checks, +/-$0.05 for period totals.
  "At or within tolerance" never raises an issue.

RULE INDEPENDENCE:
  Rules share no state and may fire together on one payslip. In
  particular, BaseRateRule checks casuals against the PERMANENT minimum
  while CasualLoadingRule separately checks the loaded rate - a casual
  row can legitimately raise findings from both in the same run.
*/
package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairwork/compliance-engine/award"
	"github.com/fairwork/compliance-engine/compliance"
)

var (
	// RateTolerance bounds hourly-rate-class comparisons.
	RateTolerance = decimal.RequireFromString("0.01")
	// TotalTolerance bounds period-total comparisons.
	TotalTolerance = decimal.RequireFromString("0.05")
)

// Rule is one payroll compliance check. Implementations are stateless.
type Rule interface {
	CheckType() compliance.CheckType
	Evaluate(slip *Payslip, table *award.RateTable) ([]compliance.Issue, error)
}

// belowTolerance reports whether actual falls short of expected by more
// than the tolerance.
func belowTolerance(actual, expected, tolerance decimal.Decimal) bool {
	return actual.LessThan(expected.Sub(tolerance))
}

func periodDates(slip *Payslip) []time.Time {
	return []time.Time{slip.PeriodStart, slip.PeriodEnd}
}

// firstWorkedBucket returns the label and hours of the first non-zero
// hours bucket, checked in ordinary, Saturday, Sunday, public-holiday
// order. Callers guard with AnyHours first.
func firstWorkedBucket(slip *Payslip) (string, decimal.Decimal) {
	if slip.OrdinaryHours.Sign() != 0 {
		return "Ordinary", slip.OrdinaryHours
	}
	for _, bucket := range []award.PenaltyBucket{award.BucketSaturday, award.BucketSunday, award.BucketPublicHoliday} {
		if h := slip.BucketHours(bucket); h.Sign() != 0 {
			return bucket.Label(), h
		}
	}
	return "Ordinary", decimal.Zero
}

// =============================================================================
// BASE RATE
// =============================================================================

// BaseRateRule checks the rate actually paid for ordinary hours against
// the Award permanent minimum for the payslip's classification level.
// Casuals are intentionally checked against the permanent scale here;
// their loading is CasualLoadingRule's job.
type BaseRateRule struct{}

func (BaseRateRule) CheckType() compliance.CheckType { return compliance.CheckBaseRate }

func (r BaseRateRule) Evaluate(slip *Payslip, table *award.RateTable) ([]compliance.Issue, error) {
	// Nothing to divide by; zero-hour rows are not rate evidence.
	if slip.OrdinaryHours.Sign() == 0 {
		return nil, nil
	}

	minimum, err := table.MinimumHourlyRate(slip.Classification)
	if err != nil {
		return nil, err
	}

	actualRate := slip.OrdinaryPay.Div(slip.OrdinaryHours)

	if belowTolerance(actualRate, minimum, RateTolerance) {
		return []compliance.Issue{{
			CheckType:     r.CheckType(),
			Severity:      compliance.SeverityCritical,
			EmployeeID:    slip.EmployeeID,
			Expected:      minimum,
			Actual:        actualRate.Round(2),
			AffectedDates: periodDates(slip),
			ContextLabel:  "Hourly Rate",
			Description: fmt.Sprintf("Ordinary pay implies $%s/hour, below the %s %s minimum of $%s",
				actualRate.Round(2), slip.Award.ShortName(), slip.Classification, minimum),
		}}, nil
	}

	// Pay is compliant but the declared system rate is below minimum:
	// a data-quality signal, not a pay violation.
	if belowTolerance(slip.HourlyRate, minimum, RateTolerance) {
		return []compliance.Issue{{
			CheckType:     r.CheckType(),
			Severity:      compliance.SeverityWarning,
			EmployeeID:    slip.EmployeeID,
			Expected:      minimum,
			Actual:        slip.HourlyRate,
			AffectedDates: periodDates(slip),
			ContextLabel:  "Hourly Rate",
			Description: fmt.Sprintf("Recorded hourly rate $%s is below the %s minimum of $%s, but pay received is compliant",
				slip.HourlyRate, slip.Classification, minimum),
		}}, nil
	}

	return nil, nil
}

// =============================================================================
// CASUAL LOADING
// =============================================================================

// CasualLoadingRule checks that casual employees receive the 25% loaded
// minimum. Non-casual payslips produce no issues.
type CasualLoadingRule struct{}

func (CasualLoadingRule) CheckType() compliance.CheckType { return compliance.CheckCasualLoading }

func (r CasualLoadingRule) Evaluate(slip *Payslip, table *award.RateTable) ([]compliance.Issue, error) {
	if slip.EmploymentType != award.Casual {
		return nil, nil
	}
	if slip.OrdinaryHours.Sign() == 0 {
		return nil, nil
	}

	loaded, err := table.CasualMinimumRate(slip.Classification)
	if err != nil {
		return nil, err
	}

	// Negative ordinary pay is a correction/reversal entry; flag it
	// rather than treating the implied rate as meaningful.
	if slip.OrdinaryPay.Sign() < 0 {
		return []compliance.Issue{{
			CheckType:     r.CheckType(),
			Severity:      compliance.SeverityWarning,
			EmployeeID:    slip.EmployeeID,
			Expected:      loaded,
			Actual:        slip.OrdinaryPay.Round(2),
			AffectedDates: periodDates(slip),
			ContextLabel:  "Correction Entry",
			Description:   "Negative ordinary pay indicates a correction or reversal entry; casual loading was not evaluated",
		}}, nil
	}

	actualRate := slip.OrdinaryPay.Div(slip.OrdinaryHours)

	if belowTolerance(actualRate, loaded, RateTolerance) {
		return []compliance.Issue{{
			CheckType:     r.CheckType(),
			Severity:      compliance.SeverityCritical,
			EmployeeID:    slip.EmployeeID,
			Expected:      loaded,
			Actual:        actualRate.Round(2),
			AffectedDates: periodDates(slip),
			ContextLabel:  "Hourly Rate",
			Description: fmt.Sprintf("Casual ordinary pay implies $%s/hour, below the loaded minimum of $%s (permanent minimum x 1.25)",
				actualRate.Round(2), loaded),
		}}, nil
	}

	if belowTolerance(slip.HourlyRate, loaded, RateTolerance) {
		return []compliance.Issue{{
			CheckType:     r.CheckType(),
			Severity:      compliance.SeverityWarning,
			EmployeeID:    slip.EmployeeID,
			Expected:      loaded,
			Actual:        slip.HourlyRate,
			AffectedDates: periodDates(slip),
			ContextLabel:  "Hourly Rate",
			Description: fmt.Sprintf("Recorded casual rate $%s is below the loaded minimum of $%s, but pay received is compliant",
				slip.HourlyRate, loaded),
		}}, nil
	}

	return nil, nil
}

// =============================================================================
// PENALTY RATES
// =============================================================================

// PenaltyRateRule independently checks each of the Saturday, Sunday and
// public-holiday buckets whenever hours were worked in that bucket.
// A single payslip can raise up to three penalty-rate issues.
type PenaltyRateRule struct{}

func (PenaltyRateRule) CheckType() compliance.CheckType { return compliance.CheckPenaltyRate }

func (r PenaltyRateRule) Evaluate(slip *Payslip, table *award.RateTable) ([]compliance.Issue, error) {
	buckets := []award.PenaltyBucket{
		award.BucketSaturday,
		award.BucketSunday,
		award.BucketPublicHoliday,
	}

	var issues []compliance.Issue
	for _, bucket := range buckets {
		hours := slip.BucketHours(bucket)
		if hours.Sign() <= 0 {
			continue
		}

		multiplier, err := table.PenaltyMultiplier(slip.EmploymentType, bucket)
		if err != nil {
			return nil, err
		}

		expected := slip.HourlyRate.Mul(multiplier).Mul(hours)
		actual := slip.BucketPay(bucket)

		if belowTolerance(actual, expected, TotalTolerance) {
			issues = append(issues, compliance.Issue{
				CheckType:     r.CheckType(),
				Severity:      compliance.SeverityError,
				EmployeeID:    slip.EmployeeID,
				Expected:      expected.Round(2),
				Actual:        actual.Round(2),
				AffectedDates: periodDates(slip),
				ContextLabel:  bucket.Label(),
				Description: fmt.Sprintf("%s pay $%s is below the expected $%s (%s hours at %sx rate)",
					bucket.Label(), actual.Round(2), expected.Round(2), hours, multiplier),
			})
		}
	}
	return issues, nil
}

// =============================================================================
// SUPERANNUATION
// =============================================================================

// SuperannuationRule checks the superannuation guarantee floor:
// at least 12% of gross pay. Overpayment never flags.
type SuperannuationRule struct{}

func (SuperannuationRule) CheckType() compliance.CheckType { return compliance.CheckSuperannuation }

func (r SuperannuationRule) Evaluate(slip *Payslip, table *award.RateTable) ([]compliance.Issue, error) {
	if slip.GrossPay.Sign() == 0 {
		// Hours with no gross pay is a data problem, not an
		// underpayment we can quantify.
		if slip.AnyHours() {
			label, hours := firstWorkedBucket(slip)
			return []compliance.Issue{{
				CheckType:     r.CheckType(),
				Severity:      compliance.SeverityWarning,
				EmployeeID:    slip.EmployeeID,
				Expected:      decimal.Zero,
				Actual:        hours,
				AffectedDates: periodDates(slip),
				ContextLabel:  "Data Issue",
				Description:   fmt.Sprintf("%s hours were worked but gross pay is missing; superannuation cannot be verified", label),
			}}, nil
		}
		// Unpaid period with no hours: nothing to check.
		return nil, nil
	}

	expected := slip.GrossPay.Mul(award.SuperannuationRate)
	if belowTolerance(slip.SuperPaid, expected, TotalTolerance) {
		return []compliance.Issue{{
			CheckType:     r.CheckType(),
			Severity:      compliance.SeverityError,
			EmployeeID:    slip.EmployeeID,
			Expected:      expected.Round(2),
			Actual:        slip.SuperPaid.Round(2),
			AffectedDates: periodDates(slip),
			ContextLabel:  "Superannuation",
			Description: fmt.Sprintf("Superannuation $%s is below the guarantee of $%s (12%% of gross pay $%s)",
				slip.SuperPaid.Round(2), expected.Round(2), slip.GrossPay.Round(2)),
		}}, nil
	}
	return nil, nil
}
