// Package store provides validation.Store implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/fairwork/compliance-engine/compliance"
	"github.com/fairwork/compliance-engine/payroll"
	"github.com/fairwork/compliance-engine/roster"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	rosters     map[string]*roster.Roster
	payslips    map[string][]payroll.Payslip
	validations map[subjectKey]*compliance.Validation
	issues      map[string][]compliance.Issue // by validation id
}

type subjectKey struct {
	Kind      compliance.Kind
	SubjectID string
}

func NewMemory() *Memory {
	return &Memory{
		rosters:     make(map[string]*roster.Roster),
		payslips:    make(map[string][]payroll.Payslip),
		validations: make(map[subjectKey]*compliance.Validation),
		issues:      make(map[string][]compliance.Issue),
	}
}

// =============================================================================
// SUBJECT FIXTURES
// =============================================================================

// PutRoster registers a roster (with shifts and employees) for loading.
func (m *Memory) PutRoster(ro *roster.Roster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosters[ro.ID] = ro
}

// PutPayslips registers a pay run's payslips for loading.
func (m *Memory) PutPayslips(payRunID string, slips []payroll.Payslip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payslips[payRunID] = slips
}

// =============================================================================
// validation.Store IMPLEMENTATION
// =============================================================================

func (m *Memory) GetRoster(_ context.Context, id string) (*roster.Roster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rosters[id], nil
}

func (m *Memory) GetPayslips(_ context.Context, payRunID string) ([]payroll.Payslip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payslips[payRunID], nil
}

func (m *Memory) GetValidation(_ context.Context, kind compliance.Kind, subjectID string) (*compliance.Validation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.validations[subjectKey{kind, subjectID}]
	if !ok {
		return nil, nil
	}
	copied := *v
	return &copied, nil
}

// SaveValidation upserts keyed on (kind, subject id), mirroring the
// unique constraint the SQLite store enforces.
func (m *Memory) SaveValidation(_ context.Context, v *compliance.Validation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *v
	m.validations[subjectKey{v.Kind, v.SubjectID}] = &copied
	return nil
}

func (m *Memory) SaveIssues(_ context.Context, issues []compliance.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, issue := range issues {
		m.issues[issue.ValidationID] = append(m.issues[issue.ValidationID], issue)
	}
	return nil
}

// RetireIssues tombstones rather than deletes: retired issues stay in
// the map for audit inspection.
func (m *Memory) RetireIssues(_ context.Context, validationID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.issues[validationID]
	for i := range list {
		if list[i].RetiredAt == nil {
			retired := at
			list[i].RetiredAt = &retired
		}
	}
	return nil
}

func (m *Memory) ActiveIssues(_ context.Context, validationID string) ([]compliance.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active []compliance.Issue
	for _, issue := range m.issues[validationID] {
		if issue.RetiredAt == nil {
			active = append(active, issue)
		}
	}
	return active, nil
}

// AllIssues returns every issue, retired included. Test helper.
func (m *Memory) AllIssues(validationID string) []compliance.Issue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]compliance.Issue(nil), m.issues[validationID]...)
}
