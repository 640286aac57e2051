package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"tripledger/internal/core"
)

// driftTolerance bounds the acceptable floating-point drift on the
// balance sheet before settlement planning. A closed ledger sums to zero;
// anything past this is surfaced as a validation failure rather than
// silently turned into a leftover transfer.
const driftTolerance = core.SettleEpsilon

// Snapshot is the immutable input for one full ledger computation,
// fetched by the caller from the trip store.
type Snapshot struct {
	TripID       string
	Currency     string
	Members      []core.Member
	Expenses     []core.Expense
	Planned      []core.PlannedCostItem
	TargetBudget *float64
}

// Compute runs the whole pipeline on a snapshot: balances, then the
// settlement plan, then budget reconciliation. It never mutates the
// snapshot and carries no state between calls; concurrent invocations
// are safe.
//
// Degenerate snapshots (no members, no expenses, everything already
// even) produce empty results, not errors.
func Compute(s Snapshot) (core.LedgerReport, error) {
	currency, err := resolveCurrency(s)
	if err != nil {
		return core.LedgerReport{}, err
	}

	balances, err := CalculateBalances(s.Members, s.Expenses)
	if err != nil {
		return core.LedgerReport{}, err
	}

	var sum float64
	for _, b := range balances {
		sum += b.Net
	}
	if math.Abs(sum) > driftTolerance {
		return core.LedgerReport{}, fmt.Errorf("residual %s after balancing: %w",
			core.FormatAmount(sum), core.ErrUnbalancedSum)
	}

	return core.LedgerReport{
		TripID:      s.TripID,
		Currency:    currency,
		TotalSpent:  TotalPaid(balances),
		Balances:    balances,
		Settlements: PlanSettlements(balances),
		Budget:      ReconcileBudget(s.TargetBudget, s.Expenses, s.Planned),
		ComputedAt:  time.Now().UTC(),
	}, nil
}

// resolveCurrency enforces the uniform-currency assumption. Conversion is
// out of scope, so one snapshot mixing currency codes is an input error.
func resolveCurrency(s Snapshot) (string, error) {
	currency := strings.TrimSpace(s.Currency)
	check := func(code string) error {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil
		}
		if currency == "" {
			currency = code
			return nil
		}
		if !strings.EqualFold(code, currency) {
			return fmt.Errorf("%q vs %q: %w", code, currency, core.ErrMixedCurrency)
		}
		return nil
	}
	for _, e := range s.Expenses {
		if err := check(e.Currency); err != nil {
			return "", err
		}
	}
	for _, p := range s.Planned {
		if err := check(p.Currency); err != nil {
			return "", err
		}
	}
	return currency, nil
}
