package sunft

import "github.com/shopspring/decimal"

// CostModel decides how much cumulative principal must be present before the
// item at index k may unlock.
type CostModel interface {
	RequiredCost(items []LockedItem, k int) decimal.Decimal
}

// CumulativeCost requires the sum of rate*duration over items[0..k]. Principal
// is never debited, so funding the whole sequence up front and waiting out
// the durations is a valid way to unlock everything.
type CumulativeCost struct{}

func (CumulativeCost) RequiredCost(items []LockedItem, k int) decimal.Decimal {
	total := decimal.Zero
	for i := 0; i <= k && i < len(items); i++ {
		total = total.Add(ItemCost(items[i]))
	}
	return total
}

// PerItemCost only requires the active item's own rate*duration.
type PerItemCost struct{}

func (PerItemCost) RequiredCost(items []LockedItem, k int) decimal.Decimal {
	if k < 0 || k >= len(items) {
		return decimal.Zero
	}
	return ItemCost(items[k])
}

func ItemCost(it LockedItem) decimal.Decimal {
	return it.Rate.Mul(decimal.NewFromInt(it.Duration))
}

// Elapsed is the time since the first deposit, or 0 before any deposit.
func Elapsed(b *Bundle, now int64) int64 {
	if b == nil || b.StreamStartedAt == 0 {
		return 0
	}
	if now <= b.StreamStartedAt {
		return 0
	}
	return now - b.StreamStartedAt
}

// ConsumedDuration sums the durations of items[0:upTo).
func ConsumedDuration(items []LockedItem, upTo int) int64 {
	var total int64
	for i := 0; i < upTo && i < len(items); i++ {
		total += items[i].Duration
	}
	return total
}

// Progress is the time credited toward the active item, clamped at zero.
func Progress(b *Bundle, items []LockedItem, now int64) int64 {
	p := Elapsed(b, now) - ConsumedDuration(items, b.CurrentIndex)
	if p < 0 {
		return 0
	}
	return p
}

// UnlockPlan lists the item indexes that are eligible right now, in order.
type UnlockPlan struct {
	Indexes  []int
	Progress int64
}

// Evaluate walks the sequence from the current index and stops at the first
// item whose duration or cumulative cost is not yet covered. Surplus time
// after an unlock rolls over to the next item.
func Evaluate(b *Bundle, items []LockedItem, now int64, model CostModel) UnlockPlan {
	plan := UnlockPlan{}
	if b == nil || b.Destroyed || b.CurrentIndex >= len(items) {
		if b != nil {
			plan.Progress = Progress(b, items, now)
		}
		return plan
	}
	if model == nil {
		model = CumulativeCost{}
	}
	progress := Progress(b, items, now)
	for k := b.CurrentIndex; k < len(items); k++ {
		item := items[k]
		if progress < item.Duration {
			break
		}
		if b.Principal.LessThan(model.RequiredCost(items, k)) {
			break
		}
		plan.Indexes = append(plan.Indexes, k)
		progress -= item.Duration
	}
	plan.Progress = progress
	return plan
}

// Apply marks the planned items unlocked and advances the cursor. It must be
// called only after the corresponding custody transfers succeeded.
func Apply(b *Bundle, items []LockedItem, plan UnlockPlan) {
	for _, k := range plan.Indexes {
		items[k].Locked = false
		b.CurrentIndex = k + 1
	}
}
