package ledger

import (
	"tripledger/internal/core"
)

// ReconcileBudget compares a target budget against actual spend and
// planned (forecast) spend. A nil target is a valid "no budget set"
// state: over-budget is false and the overage stays zero.
//
// Negative targets are rejected at the write boundary, not here; this
// function only consumes already-validated values.
func ReconcileBudget(target *float64, expenses []core.Expense, planned []core.PlannedCostItem) core.BudgetStatus {
	var actual float64
	for _, e := range expenses {
		actual += e.Amount
	}
	var forecast float64
	for _, p := range planned {
		forecast += p.EstimatedAmount
	}

	status := core.BudgetStatus{
		Target:        target,
		TotalActual:   actual,
		TotalPlanned:  forecast,
		TotalCombined: actual + forecast,
	}
	if target == nil {
		return status
	}

	if status.TotalCombined > *target {
		status.OverBudget = true
		status.Overage = status.TotalCombined - *target
	}
	if *target > 0 {
		progress := 100 * status.TotalCombined / *target
		// Clamp for display only; Overage keeps the real excess.
		if progress > 100 {
			progress = 100
		}
		if progress < 0 {
			progress = 0
		}
		status.Progress = progress
	}
	return status
}
