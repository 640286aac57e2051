// Package ledger implements the group expense ledger engine: per-member
// balances, greedy debt settlement, and budget reconciliation. Everything
// here is a pure function of its inputs; callers own fetching the snapshot
// and persisting anything derived from the results.
package ledger

import (
	"fmt"

	"tripledger/internal/core"
)

// CalculateBalances derives each roster member's paid total, equal fair
// share, and net position from a snapshot of expenses.
//
// The split is always roster-equal: total spend divided by member count,
// applied even to members who paid nothing. An expense whose payer is not
// on the roster, or whose amount fails validation, aborts the computation
// with a typed error. Zero expenses yield all-zero balances.
func CalculateBalances(members []core.Member, expenses []core.Expense) ([]core.Balance, error) {
	if len(members) == 0 {
		if len(expenses) > 0 {
			return nil, fmt.Errorf("expense %q: %w", expenses[0].Title, core.ErrUnknownPayer)
		}
		return nil, nil
	}

	paid := make(map[string]float64, len(members))
	for _, m := range members {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("member %q: %w", m.ID, err)
		}
		paid[m.ID] = 0
	}

	var total float64
	for _, e := range expenses {
		if err := core.ValidateAmount(e.Amount); err != nil {
			return nil, fmt.Errorf("expense %q: %w", e.Title, err)
		}
		if _, ok := paid[e.PaidBy]; !ok {
			return nil, fmt.Errorf("expense %q paid by %q: %w", e.Title, e.PaidBy, core.ErrUnknownPayer)
		}
		paid[e.PaidBy] += e.Amount
		total += e.Amount
	}

	share := total / float64(len(members))

	balances := make([]core.Balance, 0, len(members))
	for _, m := range members {
		p := paid[m.ID]
		balances = append(balances, core.Balance{
			MemberID: m.ID,
			Name:     m.Name,
			Paid:     p,
			Share:    share,
			Net:      p - share,
		})
	}
	return balances, nil
}

// TotalPaid sums the paid column of a balance sheet. It equals the sum of
// all expense amounts that produced it.
func TotalPaid(balances []core.Balance) float64 {
	var total float64
	for _, b := range balances {
		total += b.Paid
	}
	return total
}
