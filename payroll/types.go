/*
Package payroll checks persisted payslips against Award pay rules.

PURPOSE:
  Each rule receives one Payslip and the organization's rate table and
  returns zero or more issues. Rules are independent, stateless, and run
  as a fixed registered set - see engine.go.

KEY CONCEPTS IN THIS FILE (types.go):
  - Payslip: The authoritative, immutable record a rule evaluates.
    Created once per ingested row; the engine never mutates it.

SEE ALSO:
  - rules.go: BaseRate, CasualLoading, PenaltyRate, Superannuation
  - engine.go: The registered rule set
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairwork/compliance-engine/award"
)

// Payslip is one externally supplied pay record for one employee and one
// pay period. The engine checks it; it never computes payroll itself.
type Payslip struct {
	ID       string
	PayRunID string

	EmployeeID   string
	EmployeeName string

	Award          award.Award
	Classification award.Classification
	EmploymentType award.EmploymentType

	PeriodStart time.Time
	PeriodEnd   time.Time
	PayDate     time.Time

	// HourlyRate is the rate the payroll system claims to pay;
	// rules compare it against both the Award minimum and the rate
	// actually implied by pay / hours.
	HourlyRate decimal.Decimal

	OrdinaryHours decimal.Decimal
	OrdinaryPay   decimal.Decimal

	SaturdayHours      decimal.Decimal
	SaturdayPay        decimal.Decimal
	SundayHours        decimal.Decimal
	SundayPay          decimal.Decimal
	PublicHolidayHours decimal.Decimal
	PublicHolidayPay   decimal.Decimal

	GrossPay  decimal.Decimal
	SuperPaid decimal.Decimal
}

// BucketHours returns the hours worked in a penalty bucket.
func (p *Payslip) BucketHours(b award.PenaltyBucket) decimal.Decimal {
	switch b {
	case award.BucketSaturday:
		return p.SaturdayHours
	case award.BucketSunday:
		return p.SundayHours
	case award.BucketPublicHoliday:
		return p.PublicHolidayHours
	default:
		return decimal.Zero
	}
}

// BucketPay returns the pay received for a penalty bucket.
func (p *Payslip) BucketPay(b award.PenaltyBucket) decimal.Decimal {
	switch b {
	case award.BucketSaturday:
		return p.SaturdayPay
	case award.BucketSunday:
		return p.SundayPay
	case award.BucketPublicHoliday:
		return p.PublicHolidayPay
	default:
		return decimal.Zero
	}
}

// AnyHours reports whether any hours bucket (ordinary or penalty) is
// non-zero.
func (p *Payslip) AnyHours() bool {
	return p.OrdinaryHours.Sign() != 0 ||
		p.SaturdayHours.Sign() != 0 ||
		p.SundayHours.Sign() != 0 ||
		p.PublicHolidayHours.Sign() != 0
}
