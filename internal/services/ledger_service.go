// Package services provides orchestration between the trip store, the
// ledger engine, and the event pipeline.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tripledger/internal/amqp"
	"tripledger/internal/core"
	"tripledger/internal/ledger"
	"tripledger/internal/trips"
)

// Store is the full set of trip-store ports the service needs.
type Store interface {
	trips.TripReader
	trips.TripWriter
	trips.MemberReader
	trips.MemberWriter
	trips.ExpenseReader
	trips.ExpenseWriter
	trips.ExpenseDeleter
	trips.PlannedCostReader
	trips.PlannedCostWriter
	trips.BudgetWriter
}

// Publisher publishes recompute events. Nil-able: without a broker the
// service still works, readers just always compute live.
type Publisher interface {
	PublishRecompute(ctx context.Context, tripID, reason string) error
}

// LedgerService orchestrates trip mutations and ledger computation.
type LedgerService struct {
	store     Store
	publisher Publisher
}

var _ Publisher = (*amqp.Client)(nil)

func NewLedgerService(store Store, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

func (s *LedgerService) CreateTrip(ctx context.Context, t core.Trip) (string, error) {
	id, err := s.store.CreateTrip(ctx, t)
	if err != nil {
		return "", fmt.Errorf("create trip: %w", err)
	}
	return id, nil
}

func (s *LedgerService) AddMember(ctx context.Context, tripID string, m core.Member) (string, error) {
	id, err := s.store.AddMember(ctx, tripID, m)
	if err != nil {
		return "", fmt.Errorf("add member: %w", err)
	}
	s.publish(ctx, tripID, amqp.ReasonMemberAdded)
	return id, nil
}

// CreateExpense persists the expense, then publishes a recompute event.
// Publishing is best effort: the expense is already stored, a failed
// event only delays the cached report.
func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	id, err := s.store.AppendExpense(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}
	s.publish(ctx, e.TripID, amqp.ReasonExpenseCreated)
	return id, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, tripID, expenseID string) error {
	if err := s.store.DeleteExpense(ctx, tripID, expenseID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, tripID, amqp.ReasonExpenseDeleted)
	return nil
}

func (s *LedgerService) AddPlannedCost(ctx context.Context, tripID string, p core.PlannedCostItem) (string, error) {
	id, err := s.store.AppendPlannedCost(ctx, tripID, p)
	if err != nil {
		return "", fmt.Errorf("save planned cost: %w", err)
	}
	s.publish(ctx, tripID, amqp.ReasonPlannedCostAdded)
	return id, nil
}

func (s *LedgerService) SetBudget(ctx context.Context, tripID string, target float64) error {
	if err := s.store.SetBudget(ctx, tripID, target); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	s.publish(ctx, tripID, amqp.ReasonBudgetChanged)
	return nil
}

func (s *LedgerService) ClearBudget(ctx context.Context, tripID string) error {
	if err := s.store.ClearBudget(ctx, tripID); err != nil {
		return fmt.Errorf("clear budget: %w", err)
	}
	s.publish(ctx, tripID, amqp.ReasonBudgetChanged)
	return nil
}

// Snapshot fetches the four snapshot parts concurrently. The store
// serves each read from the same consistent source, so the only cost of
// parallelism here is the errgroup.
func (s *LedgerService) Snapshot(ctx context.Context, tripID string) (ledger.Snapshot, error) {
	var (
		trip     core.Trip
		members  []core.Member
		expenses []core.Expense
		planned  []core.PlannedCostItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trip, err = s.store.ReadTrip(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.store.ListMembers(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpenses(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		planned, err = s.store.ListPlannedCosts(gctx, tripID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ledger.Snapshot{}, fmt.Errorf("fetch snapshot: %w", err)
	}

	return ledger.Snapshot{
		TripID:       trip.ID,
		Currency:     trip.Currency,
		Members:      members,
		Expenses:     expenses,
		Planned:      planned,
		TargetBudget: trip.TargetBudget,
	}, nil
}

// ComputeReport builds the full ledger report from the current snapshot.
func (s *LedgerService) ComputeReport(ctx context.Context, tripID string) (core.LedgerReport, error) {
	snap, err := s.Snapshot(ctx, tripID)
	if err != nil {
		return core.LedgerReport{}, err
	}

	report, err := ledger.Compute(snap)
	if err != nil {
		return core.LedgerReport{}, fmt.Errorf("compute ledger: %w", err)
	}
	return report, nil
}

func (s *LedgerService) publish(ctx context.Context, tripID, reason string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping recompute event",
			"trip_id", tripID, "reason", reason)
		return
	}
	if err := s.publisher.PublishRecompute(ctx, tripID, reason); err != nil {
		slog.ErrorContext(ctx, "Failed to publish recompute event",
			"trip_id", tripID, "reason", reason, "error", err)
	}
}

// Close closes the store and publisher when they own resources.
func (s *LedgerService) Close() error {
	var errs []error

	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if closer, ok := s.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
