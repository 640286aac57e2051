package core

import "time"

// Balance is a member's net position for one computation: what they paid,
// their equal share of the total, and the difference. Positive Net means
// the group owes them money. Never persisted; recomputed per snapshot.
type Balance struct {
	MemberID string
	Name     string
	Paid     float64
	Share    float64
	Net      float64 // Paid - Share
}

// Settlement is a single proposed payment from a debtor to a creditor.
// Amount is strictly positive and rounded to currency precision.
type Settlement struct {
	FromID   string
	FromName string
	ToID     string
	ToName   string
	Amount   float64
}

// BudgetStatus compares a target budget against actual and planned spend.
// Target is nil when no budget has been set for the trip.
type BudgetStatus struct {
	Target        *float64
	TotalActual   float64
	TotalPlanned  float64
	TotalCombined float64
	OverBudget    bool
	Overage       float64
	// Progress is 100*combined/target for display, clamped to [0,100].
	// Zero when no budget is set.
	Progress float64
}

// HasTarget reports whether a budget was set.
func (b BudgetStatus) HasTarget() bool {
	return b.Target != nil
}

// LedgerReport is the full derived output for one trip snapshot.
type LedgerReport struct {
	TripID      string
	Currency    string
	TotalSpent  float64
	Balances    []Balance
	Settlements []Settlement
	Budget      BudgetStatus
	ComputedAt  time.Time
}
