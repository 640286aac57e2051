package trips

import (
	"context"
	"errors"

	"tripledger/internal/core"
)

// ErrTripNotFound is returned by any reader when the trip does not exist.
var ErrTripNotFound = errors.New("trip not found")

// Ports for outbound adapters.
type (
	TripReader interface {
		ReadTrip(ctx context.Context, tripID string) (core.Trip, error)
	}

	TripWriter interface {
		CreateTrip(ctx context.Context, t core.Trip) (tripID string, err error)
	}

	MemberReader interface {
		ListMembers(ctx context.Context, tripID string) ([]core.Member, error)
	}

	MemberWriter interface {
		AddMember(ctx context.Context, tripID string, m core.Member) (memberID string, err error)
	}

	ExpenseReader interface {
		ListExpenses(ctx context.Context, tripID string) ([]core.Expense, error)
	}

	ExpenseWriter interface {
		AppendExpense(ctx context.Context, e core.Expense) (expenseID string, err error)
	}

	ExpenseDeleter interface {
		DeleteExpense(ctx context.Context, tripID, expenseID string) error
	}

	PlannedCostReader interface {
		ListPlannedCosts(ctx context.Context, tripID string) ([]core.PlannedCostItem, error)
	}

	PlannedCostWriter interface {
		AppendPlannedCost(ctx context.Context, tripID string, p core.PlannedCostItem) (itemID string, err error)
	}

	// BudgetWriter owns the only validation of target budgets: the ledger
	// core consumes already-accepted values.
	BudgetWriter interface {
		SetBudget(ctx context.Context, tripID string, target float64) error
		ClearBudget(ctx context.Context, tripID string) error
	}

	// ReportWriter persists a computed ledger report snapshot, keeping the
	// latest report per trip available without a live recomputation.
	ReportWriter interface {
		SaveReport(ctx context.Context, report core.LedgerReport) error
	}
)
