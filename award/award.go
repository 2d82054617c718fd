/*
Package award provides the static Fair Work Award reference data.

PURPOSE:
  Pure lookup tables for the three modeled Awards (Retail, Hospitality,
  Clerks): minimum hourly rates by classification level, penalty-rate
  multipliers by employment type, casual loading, the superannuation
  guarantee rate, and the roster thresholds (minimum shift length,
  meal-break tiers, rest periods, weekly caps, consecutive-day cap).

KEY CONCEPTS IN THIS FILE (award.go):
  - Award: Which industrial instrument applies to an organization
  - Classification: Pay grade, Level 1 through Level 8
  - EmploymentType: Full-time / Part-time / Casual / Fixed-term, with a
    tolerant token parser for the vocabulary seen in payroll exports

DESIGN PRINCIPLES:
  1. No I/O: every lookup is a pure function over compiled-in tables
  2. Precision: all money values are decimal.Decimal, never float64
  3. Closed enums: unknown awards/levels/types are parse errors, not defaults

SEE ALSO:
  - rates.go: Minimum-rate tables and penalty multipliers
  - roster_params.go: Roster rule thresholds
*/
package award

import (
	"fmt"
	"strings"
)

// =============================================================================
// AWARD
// =============================================================================

// Award identifies the industrial instrument an organization operates under.
type Award string

const (
	AwardRetail      Award = "retail"
	AwardHospitality Award = "hospitality"
	AwardClerks      Award = "clerks"
)

// ShortName is the value payroll exports carry in the Award Type column.
func (a Award) ShortName() string {
	switch a {
	case AwardRetail:
		return "Retail"
	case AwardHospitality:
		return "Hospitality"
	case AwardClerks:
		return "Clerks"
	default:
		return string(a)
	}
}

// FullName returns the instrument title for display.
func (a Award) FullName() string {
	switch a {
	case AwardRetail:
		return "General Retail Industry Award"
	case AwardHospitality:
		return "Hospitality Industry (General) Award"
	case AwardClerks:
		return "Clerks - Private Sector Award"
	default:
		return string(a)
	}
}

// ParseAward resolves an award short name case-insensitively.
func ParseAward(s string) (Award, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "retail":
		return AwardRetail, nil
	case "hospitality":
		return AwardHospitality, nil
	case "clerks":
		return AwardClerks, nil
	default:
		return "", fmt.Errorf("unsupported award: %q", s)
	}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classification is an employee's pay grade within an Award.
// Only Level 1 through Level 8 exist across the modeled Awards.
type Classification int

const (
	MinLevel = 1
	MaxLevel = 8
)

// ParseClassification accepts the exact "Level N" form used by the
// payroll export format, N in 1..8. Leading/trailing whitespace is
// tolerated, nothing else is.
func ParseClassification(s string) (Classification, error) {
	trimmed := strings.TrimSpace(s)
	var n int
	if _, err := fmt.Sscanf(trimmed, "Level %d", &n); err != nil {
		return 0, fmt.Errorf("invalid classification: %q", s)
	}
	if fmt.Sprintf("Level %d", n) != trimmed || n < MinLevel || n > MaxLevel {
		return 0, fmt.Errorf("invalid classification: %q", s)
	}
	return Classification(n), nil
}

func (c Classification) String() string {
	return fmt.Sprintf("Level %d", int(c))
}

func (c Classification) Valid() bool {
	return int(c) >= MinLevel && int(c) <= MaxLevel
}

// =============================================================================
// EMPLOYMENT TYPE
// =============================================================================

type EmploymentType string

const (
	FullTime  EmploymentType = "full_time"
	PartTime  EmploymentType = "part_time"
	Casual    EmploymentType = "casual"
	FixedTerm EmploymentType = "fixed_term"
)

func (e EmploymentType) String() string {
	switch e {
	case FullTime:
		return "Full-time"
	case PartTime:
		return "Part-time"
	case Casual:
		return "Casual"
	case FixedTerm:
		return "Fixed-term"
	default:
		return string(e)
	}
}

// employmentTokens is the vocabulary accepted in the Employment Type
// column. Exports from different payroll systems disagree on punctuation,
// so matching is done on a lowercased, separator-stripped form.
var employmentTokens = map[string]EmploymentType{
	"fulltime":  FullTime,
	"ft":        FullTime,
	"permanent": FullTime,
	"parttime":  PartTime,
	"pt":        PartTime,
	"casual":    Casual,
	"cas":       Casual,
	"fixedterm": FixedTerm,
	"fixed":     FixedTerm,
	"contract":  FixedTerm,
}

// ParseEmploymentType parses the fixed type-token vocabulary
// ("full-time", "Full Time", "FULLTIME", "ft", ...).
func ParseEmploymentType(s string) (EmploymentType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)
	if et, ok := employmentTokens[normalized]; ok {
		return et, nil
	}
	return "", fmt.Errorf("invalid employment type: %q", s)
}
