package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairwork/compliance-engine/award"
	"github.com/fairwork/compliance-engine/compliance"
)

// =============================================================================
// ENGINE - Fixed registered rule set over payslips
// =============================================================================

// Engine runs every registered rule over each payslip of a pay run.
// Rules are unordered and independent; the engine concatenates their
// findings and stamps ownership metadata. Rate tables are resolved per
// payslip from its Award, so one engine serves mixed-award stores.
type Engine struct {
	tables map[award.Award]*award.RateTable
	rules  []Rule
}

// NewEngine builds the engine with the fixed rule set.
func NewEngine() *Engine {
	return &Engine{
		tables: make(map[award.Award]*award.RateTable),
		rules: []Rule{
			BaseRateRule{},
			CasualLoadingRule{},
			PenaltyRateRule{},
			SuperannuationRule{},
		},
	}
}

// Evaluate runs all rules over all payslips, tagging every issue with
// the validation id. Evaluation checks ctx between payslips.
func (e *Engine) Evaluate(ctx context.Context, slips []Payslip, validationID string) ([]compliance.Issue, error) {
	issues := []compliance.Issue{}
	now := time.Now().UTC()

	for i := range slips {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := e.tableFor(slips[i].Award)
		if err != nil {
			return nil, fmt.Errorf("payslip %s: %w", slips[i].ID, err)
		}
		for _, rule := range e.rules {
			found, err := rule.Evaluate(&slips[i], table)
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
	}
	return issues, nil
}

func (e *Engine) tableFor(a award.Award) (*award.RateTable, error) {
	if t, ok := e.tables[a]; ok {
		return t, nil
	}
	t, err := award.NewRateTable(a)
	if err != nil {
		return nil, err
	}
	e.tables[a] = t
	return t, nil
}

// ExecutedCheckTypes reports which check types the configured rule set
// can produce.
func (e *Engine) ExecutedCheckTypes() []compliance.CheckType {
	types := make([]compliance.CheckType, len(e.rules))
	for i, rule := range e.rules {
		types[i] = rule.CheckType()
	}
	return types
}
