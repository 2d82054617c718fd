package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairwork/compliance-engine/award"
	"github.com/fairwork/compliance-engine/compliance"
)

// =============================================================================
// ENGINE - Fixed registered rule set over a roster
// =============================================================================

// Engine runs every registered rule over a roster's shift collection and
// concatenates the findings. Rules are independently pluggable; the
// engine's contract is "run all registered rules, tag every issue with
// the validation id passed in".
type Engine struct {
	params *award.RosterParameters
	rules  []Rule
}

func NewEngine(params *award.RosterParameters) *Engine {
	return &Engine{
		params: params,
		rules: []Rule{
			DataQualityRule{},
			MinimumShiftHoursRule{},
			MealBreakRule{},
			RestPeriodRule{},
			WeeklyHoursRule{},
			MaxConsecutiveDaysRule{},
		},
	}
}

// Evaluate runs all rules, checking ctx between rules.
func (e *Engine) Evaluate(ctx context.Context, ro *Roster, validationID string) ([]compliance.Issue, error) {
	issues := []compliance.Issue{}
	now := time.Now().UTC()

	for _, rule := range e.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := rule.Evaluate(ro, e.params)
		if err != nil {
			return nil, fmt.Errorf("%s rule: %w", rule.CheckType(), err)
		}
		for _, issue := range found {
			issue.ID = uuid.NewString()
			issue.ValidationID = validationID
			issue.CreatedAt = now
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// ExecutedCheckTypes reports which check types the configured rule set
// can produce. The orchestrator compares this against a cached run to
// decide whether that run is stale.
func (e *Engine) ExecutedCheckTypes() []compliance.CheckType {
	seen := make(map[compliance.CheckType]bool)
	var types []compliance.CheckType
	for _, rule := range e.rules {
		if ct := rule.CheckType(); !seen[ct] {
			seen[ct] = true
			types = append(types, ct)
		}
	}
	// WeeklyHoursRule can also emit DataQuality findings; that check
	// type is already registered by DataQualityRule.
	return types
}
