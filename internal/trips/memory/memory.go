// Package memory provides an in-memory trip store for development and
// tests. Data lives for the process lifetime only.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"tripledger/internal/core"
	"tripledger/internal/trips"
)

type tripState struct {
	trip     core.Trip
	members  []core.Member
	expenses []core.Expense
	planned  []core.PlannedCostItem
	report   *core.LedgerReport
}

type Store struct {
	mu   sync.Mutex
	byID map[string]*tripState
}

func New() *Store {
	return &Store{byID: make(map[string]*tripState)}
}

// Interface conformance.
var (
	_ trips.TripReader        = (*Store)(nil)
	_ trips.TripWriter        = (*Store)(nil)
	_ trips.MemberReader      = (*Store)(nil)
	_ trips.MemberWriter      = (*Store)(nil)
	_ trips.ExpenseReader     = (*Store)(nil)
	_ trips.ExpenseWriter     = (*Store)(nil)
	_ trips.ExpenseDeleter    = (*Store)(nil)
	_ trips.PlannedCostReader = (*Store)(nil)
	_ trips.PlannedCostWriter = (*Store)(nil)
	_ trips.BudgetWriter      = (*Store)(nil)
	_ trips.ReportWriter      = (*Store)(nil)
)

func (s *Store) CreateTrip(_ context.Context, t core.Trip) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, exists := s.byID[t.ID]; exists {
		return "", fmt.Errorf("trip %s already exists", t.ID)
	}
	s.byID[t.ID] = &tripState{trip: t}
	return t.ID, nil
}

func (s *Store) ReadTrip(_ context.Context, tripID string) (core.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[tripID]
	if !ok {
		return core.Trip{}, trips.ErrTripNotFound
	}
	trip := st.trip
	if st.trip.TargetBudget != nil {
		target := *st.trip.TargetBudget
		trip.TargetBudget = &target
	}
	return trip, nil
}

func (s *Store) AddMember(_ context.Context, tripID string, m core.Member) (string, error) {
	if err := validateMember(&m); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[tripID]
	if !ok {
		return "", trips.ErrTripNotFound
	}
	st.members = append(st.members, m)
	return m.ID, nil
}

func (s *Store) ListMembers(_ context.Context, tripID string) ([]core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[tripID]
	if !ok {
		return nil, trips.ErrTripNotFound
	}
	return append([]core.Member(nil), st.members...), nil
}

func (s *Store) AppendExpense(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[e.TripID]
	if !ok {
		return "", trips.ErrTripNotFound
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Source == "" {
		e.Source = core.SourceManual
	}
	st.expenses = append(st.expenses, e)
	return e.ID, nil
}

func (s *Store) ListExpenses(_ context.Context, tripID string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[tripID]
	if !ok {
		return nil, trips.ErrTripNotFound
	}
	return append([]core.Expense(nil), st.expenses...), nil
}

func (s *Store) DeleteExpense(_ context.Context, tripID, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[tripID]
	if !ok {
		return trips.ErrTripNotFound
	}
	for i, e := range st.expenses {
		if e.ID == expenseID {
			st.expenses = append(st.expenses[:i], st.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %s not found in trip %s", expenseID, tripID)
}

func (s *Store) AppendPlannedCost(_ context.Context, tripID string, p core.PlannedCostItem) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[tripID]
	if !ok {
		return "", trips.ErrTripNotFound
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	st.planned = append(st.planned, p)
	return p.ID, nil
}

func (s *Store) ListPlannedCosts(_ context.Context, tripID string) ([]core.PlannedCostItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[tripID]
	if !ok {
		return nil, trips.ErrTripNotFound
	}
	return append([]core.PlannedCostItem(nil), st.planned...), nil
}

func (s *Store) SetBudget(_ context.Context, tripID string, target float64) error {
	if err := core.ValidateAmount(target); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[tripID]
	if !ok {
		return trips.ErrTripNotFound
	}
	st.trip.TargetBudget = &target
	return nil
}

func (s *Store) ClearBudget(_ context.Context, tripID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[tripID]
	if !ok {
		return trips.ErrTripNotFound
	}
	st.trip.TargetBudget = nil
	return nil
}

func (s *Store) SaveReport(_ context.Context, report core.LedgerReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[report.TripID]
	if !ok {
		return trips.ErrTripNotFound
	}
	st.report = &report
	return nil
}

// ReadReport returns the last saved report for the trip, or
// trips.ErrTripNotFound when none has been saved yet.
func (s *Store) ReadReport(_ context.Context, tripID string) (core.LedgerReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[tripID]
	if !ok || st.report == nil {
		return core.LedgerReport{}, trips.ErrTripNotFound
	}
	return *st.report, nil
}

func validateMember(m *core.Member) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return m.Validate()
}
