package ledger

import (
	"errors"
	"math"
	"testing"

	"tripledger/internal/core"
)

func TestCompute(t *testing.T) {
	t.Run("full pipeline", func(t *testing.T) {
		target := 500.0
		snap := Snapshot{
			TripID:   "trip-1",
			Currency: "EUR",
			Members:  members("A", "B", "C"),
			Expenses: []core.Expense{
				expense("A", 90),
				expense("C", 30),
			},
			Planned:      []core.PlannedCostItem{planned(250)},
			TargetBudget: &target,
		}

		report, err := Compute(snap)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}

		if report.TripID != "trip-1" {
			t.Errorf("TripID = %q, want trip-1", report.TripID)
		}
		if report.Currency != "EUR" {
			t.Errorf("Currency = %q, want EUR", report.Currency)
		}
		if math.Abs(report.TotalSpent-120) > 1e-9 {
			t.Errorf("TotalSpent = %v, want 120", report.TotalSpent)
		}
		if len(report.Balances) != 3 {
			t.Errorf("got %d balances, want 3", len(report.Balances))
		}
		if len(report.Settlements) != 2 {
			t.Errorf("got %d settlements, want 2", len(report.Settlements))
		}
		if report.Budget.OverBudget != false {
			t.Error("Budget.OverBudget = true, want false (370 of 500)")
		}
		if report.ComputedAt.IsZero() {
			t.Error("ComputedAt not set")
		}
	})

	t.Run("does not mutate the snapshot", func(t *testing.T) {
		es := []core.Expense{expense("B", 80), expense("A", 10)}
		snap := Snapshot{
			Members:  members("A", "B"),
			Expenses: es,
		}
		orig := make([]core.Expense, len(es))
		copy(orig, es)

		if _, err := Compute(snap); err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		for i := range es {
			if es[i] != orig[i] {
				t.Errorf("expense %d mutated: %+v", i, es[i])
			}
		}
	})

	t.Run("empty snapshot yields empty report", func(t *testing.T) {
		report, err := Compute(Snapshot{TripID: "trip-2"})
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		if len(report.Balances) != 0 || len(report.Settlements) != 0 {
			t.Errorf("report not empty: %+v", report)
		}
		if report.Budget.HasTarget() {
			t.Error("budget target set on empty snapshot")
		}
	})

	t.Run("currency adopted from expenses", func(t *testing.T) {
		snap := Snapshot{
			Members:  members("A"),
			Expenses: []core.Expense{{Title: "t", Amount: 5, PaidBy: "id-A", Currency: "USD"}},
		}
		report, err := Compute(snap)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		if report.Currency != "USD" {
			t.Errorf("Currency = %q, want USD", report.Currency)
		}
	})

	t.Run("mixed currencies rejected", func(t *testing.T) {
		snap := Snapshot{
			Members: members("A", "B"),
			Expenses: []core.Expense{
				{Title: "a", Amount: 5, PaidBy: "id-A", Currency: "EUR"},
				{Title: "b", Amount: 5, PaidBy: "id-B", Currency: "USD"},
			},
		}
		if _, err := Compute(snap); !errors.Is(err, core.ErrMixedCurrency) {
			t.Errorf("error = %v, want ErrMixedCurrency", err)
		}
	})

	t.Run("mixed currency planned item rejected", func(t *testing.T) {
		snap := Snapshot{
			Currency: "EUR",
			Members:  members("A"),
			Planned: []core.PlannedCostItem{
				{Title: "p", EstimatedAmount: 10, Currency: "GBP"},
			},
		}
		if _, err := Compute(snap); !errors.Is(err, core.ErrMixedCurrency) {
			t.Errorf("error = %v, want ErrMixedCurrency", err)
		}
	})

	t.Run("unknown payer surfaces from pipeline", func(t *testing.T) {
		snap := Snapshot{
			Members:  members("A"),
			Expenses: []core.Expense{expense("nobody", 10)},
		}
		if _, err := Compute(snap); !errors.Is(err, core.ErrUnknownPayer) {
			t.Errorf("error = %v, want ErrUnknownPayer", err)
		}
	})

	t.Run("settlements zero the balances", func(t *testing.T) {
		snap := Snapshot{
			Members: members("A", "B", "C", "D", "E"),
			Expenses: []core.Expense{
				expense("A", 123.45),
				expense("B", 67.89),
				expense("C", 0.03),
				expense("A", 200),
			},
		}
		report, err := Compute(snap)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		for id, net := range ApplySettlements(report.Balances, report.Settlements) {
			if math.Abs(net) >= core.SettleEpsilon {
				t.Errorf("member %s residual %v", id, net)
			}
		}
	})
}
