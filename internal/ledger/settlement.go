package ledger

import (
	"math"
	"sort"

	"tripledger/internal/core"
)

// PlanSettlements turns a balance sheet into direct member-to-member
// payments that clear every debt, using a greedy two-pointer sweep over
// the balances sorted largest-creditor-first.
//
// Each step pays the largest outstanding debtor against the largest
// outstanding creditor with min(credit, debt), so every step fully clears
// at least one of the two. That bounds the plan at n-1 transfers; it does
// not chase the combinatorial minimum transaction count.
//
// Nets within core.SettleEpsilon of zero are treated as settled and
// produce no transfer. The remaining nets are apportioned into whole
// cents before the sweep, so every returned amount is a positive
// currency-precision value and replaying the plan leaves every member
// strictly inside the threshold. The input slice is not modified.
func PlanSettlements(balances []core.Balance) []core.Settlement {
	type account struct {
		core.Balance
		cents int64
	}

	cents := apportionCents(balances)
	work := make([]account, len(balances))
	for i, b := range balances {
		work[i] = account{Balance: b, cents: cents[i]}
	}
	sort.SliceStable(work, func(a, b int) bool {
		return work[a].cents > work[b].cents
	})

	var settlements []core.Settlement
	i, j := 0, len(work)-1
	for i < j {
		if work[i].cents <= 0 {
			i++
			continue
		}
		if work[j].cents >= 0 {
			j--
			continue
		}

		amount := work[i].cents
		if debt := -work[j].cents; debt < amount {
			amount = debt
		}
		settlements = append(settlements, core.Settlement{
			FromID:   work[j].MemberID,
			FromName: work[j].Name,
			ToID:     work[i].MemberID,
			ToName:   work[i].Name,
			Amount:   float64(amount) / 100,
		})
		work[i].cents -= amount
		work[j].cents += amount
	}
	return settlements
}

// apportionCents rounds net balances to whole cents so that they sum to
// exactly zero. Equal splits produce repeating decimals (1.00 across 7),
// so naive per-entry rounding can strand more than a cent on one member;
// largest-remainder apportionment displaces every member by less than one
// cent. Nets already inside the settlement threshold are zeroed first.
func apportionCents(balances []core.Balance) []int64 {
	cents := make([]int64, len(balances))
	fracs := make([]float64, len(balances))
	var sum int64
	for i, b := range balances {
		if core.Settled(b.Net) {
			continue
		}
		exact := b.Net * 100
		floor := math.Floor(exact)
		cents[i] = int64(floor)
		fracs[i] = exact - floor
		sum += cents[i]
	}

	order := make([]int, 0, len(balances))
	for i, b := range balances {
		if !core.Settled(b.Net) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fracs[order[a]] > fracs[order[b]]
	})

	// Hand out the missing cents: largest remainders round up first,
	// smallest round down first. The loops cycle only on inputs whose
	// drift exceeds one cent per member, which the facade rejects
	// before planning.
	for k := 0; sum < 0 && len(order) > 0; k++ {
		cents[order[k%len(order)]]++
		sum++
	}
	for k := 0; sum > 0 && len(order) > 0; k++ {
		cents[order[len(order)-1-k%len(order)]]--
		sum--
	}
	return cents
}

// ApplySettlements replays a settlement plan against a balance sheet and
// returns the resulting nets, keyed by member ID. Used to verify the
// zero-sum contract; the input slices are not modified.
func ApplySettlements(balances []core.Balance, settlements []core.Settlement) map[string]float64 {
	nets := make(map[string]float64, len(balances))
	for _, b := range balances {
		nets[b.MemberID] = b.Net
	}
	for _, s := range settlements {
		nets[s.FromID] += s.Amount
		nets[s.ToID] -= s.Amount
	}
	return nets
}
