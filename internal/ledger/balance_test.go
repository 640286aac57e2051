package ledger

import (
	"errors"
	"math"
	"testing"

	"tripledger/internal/core"
)

func members(names ...string) []core.Member {
	ms := make([]core.Member, 0, len(names))
	for _, n := range names {
		ms = append(ms, core.Member{ID: "id-" + n, Name: n})
	}
	return ms
}

func expense(payer string, amount float64) core.Expense {
	return core.Expense{
		Title:  "test expense",
		Amount: amount,
		PaidBy: "id-" + payer,
	}
}

func balanceFor(t *testing.T, balances []core.Balance, name string) core.Balance {
	t.Helper()
	for _, b := range balances {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("no balance for %s", name)
	return core.Balance{}
}

func TestCalculateBalances(t *testing.T) {
	t.Run("three members uneven payments", func(t *testing.T) {
		ms := members("A", "B", "C")
		es := []core.Expense{
			expense("A", 90),
			expense("C", 30),
		}

		balances, err := CalculateBalances(ms, es)
		if err != nil {
			t.Fatalf("CalculateBalances() error = %v", err)
		}
		if len(balances) != 3 {
			t.Fatalf("got %d balances, want 3", len(balances))
		}

		// Total 120, share 40: A=+50, B=-40, C=-10.
		cases := []struct {
			name string
			paid float64
			net  float64
		}{
			{"A", 90, 50},
			{"B", 0, -40},
			{"C", 30, -10},
		}
		for _, tc := range cases {
			b := balanceFor(t, balances, tc.name)
			if math.Abs(b.Paid-tc.paid) > 1e-9 {
				t.Errorf("%s paid = %v, want %v", tc.name, b.Paid, tc.paid)
			}
			if math.Abs(b.Share-40) > 1e-9 {
				t.Errorf("%s share = %v, want 40", tc.name, b.Share)
			}
			if math.Abs(b.Net-tc.net) > 1e-9 {
				t.Errorf("%s net = %v, want %v", tc.name, b.Net, tc.net)
			}
		}
	})

	t.Run("zero expenses gives all-zero balances", func(t *testing.T) {
		balances, err := CalculateBalances(members("A", "B"), nil)
		if err != nil {
			t.Fatalf("CalculateBalances() error = %v", err)
		}
		for _, b := range balances {
			if b.Paid != 0 || b.Share != 0 || b.Net != 0 {
				t.Errorf("%s balance = %+v, want all zero", b.Name, b)
			}
		}
	})

	t.Run("single member always zero", func(t *testing.T) {
		balances, err := CalculateBalances(members("A"), []core.Expense{expense("A", 75.50)})
		if err != nil {
			t.Fatalf("CalculateBalances() error = %v", err)
		}
		if math.Abs(balances[0].Net) > 1e-9 {
			t.Errorf("single member net = %v, want 0", balances[0].Net)
		}
		if math.Abs(balances[0].Paid-75.50) > 1e-9 {
			t.Errorf("single member paid = %v, want 75.50", balances[0].Paid)
		}
	})

	t.Run("no members no expenses", func(t *testing.T) {
		balances, err := CalculateBalances(nil, nil)
		if err != nil {
			t.Fatalf("CalculateBalances() error = %v", err)
		}
		if len(balances) != 0 {
			t.Errorf("got %d balances, want 0", len(balances))
		}
	})

	t.Run("payer not in roster", func(t *testing.T) {
		_, err := CalculateBalances(members("A"), []core.Expense{expense("ghost", 10)})
		if !errors.Is(err, core.ErrUnknownPayer) {
			t.Errorf("error = %v, want ErrUnknownPayer", err)
		}
	})

	t.Run("expenses with no roster", func(t *testing.T) {
		_, err := CalculateBalances(nil, []core.Expense{expense("A", 10)})
		if !errors.Is(err, core.ErrUnknownPayer) {
			t.Errorf("error = %v, want ErrUnknownPayer", err)
		}
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		_, err := CalculateBalances(members("A", "B"), []core.Expense{expense("A", -3)})
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("error = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("NaN amount rejected", func(t *testing.T) {
		_, err := CalculateBalances(members("A", "B"), []core.Expense{expense("A", math.NaN())})
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("error = %v, want ErrInvalidAmount", err)
		}
	})
}

func TestCalculateBalancesZeroSum(t *testing.T) {
	sets := [][]core.Expense{
		{expense("A", 90), expense("C", 30)},
		{expense("A", 100), expense("B", 100)},
		{expense("A", 0.01), expense("B", 0.02), expense("C", 99.97)},
		{expense("A", 33.33), expense("A", 33.34), expense("B", 0.10)},
		nil,
	}
	for _, es := range sets {
		balances, err := CalculateBalances(members("A", "B", "C"), es)
		if err != nil {
			t.Fatalf("CalculateBalances() error = %v", err)
		}
		var sum float64
		for _, b := range balances {
			sum += b.Net
		}
		if math.Abs(sum) > 1e-6 {
			t.Errorf("sum of nets = %v, want ~0", sum)
		}
	}
}

func TestCalculateBalancesIdempotent(t *testing.T) {
	ms := members("A", "B", "C")
	es := []core.Expense{expense("A", 90), expense("C", 30)}

	first, err := CalculateBalances(ms, es)
	if err != nil {
		t.Fatalf("CalculateBalances() error = %v", err)
	}
	second, err := CalculateBalances(ms, es)
	if err != nil {
		t.Fatalf("CalculateBalances() error = %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("balance %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
