package sunft

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ForfeitFeePercent is the platform's share of principal when a bundle is
// destroyed with items still locked.
const ForfeitFeePercent = 5

var hundred = decimal.NewFromInt(100)

// SplitPrincipal returns the owner and queen shares of p. The queen share is
// floor(p*5/100); the remainder goes to the owner so the shares sum to p.
func SplitPrincipal(p decimal.Decimal) (ownerShare, queenShare decimal.Decimal) {
	if p.Sign() <= 0 {
		return decimal.Zero, decimal.Zero
	}
	queenShare, _ = p.Mul(decimal.NewFromInt(ForfeitFeePercent)).QuoRem(hundred, 0)
	return p.Sub(queenShare), queenShare
}

// Settlement is the outcome of destroying a bundle.
type Settlement struct {
	Complete      bool            `json:"complete"`
	OwnerShare    decimal.Decimal `json:"owner_share"`
	QueenShare    decimal.Decimal `json:"queen_share"`
	ReturnedItems []int           `json:"returned_items"`
}

// PlanSettlement decides payouts and asset returns without side effects.
func PlanSettlement(b *Bundle, items []LockedItem) Settlement {
	if b.CurrentIndex >= len(items) {
		return Settlement{Complete: true, OwnerShare: b.Principal, QueenShare: decimal.Zero, ReturnedItems: []int{}}
	}
	owner, queen := SplitPrincipal(b.Principal)
	returned := make([]int, 0, len(items)-b.CurrentIndex)
	for i := b.CurrentIndex; i < len(items); i++ {
		returned = append(returned, i)
	}
	return Settlement{OwnerShare: owner, QueenShare: queen, ReturnedItems: returned}
}

// ParseAmount parses a token amount. Amounts are whole, non-negative units.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !IsWholeAmount(d) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func IsWholeAmount(d decimal.Decimal) bool {
	return d.Sign() >= 0 && d.Equal(d.Truncate(0))
}

// CheckInvariants reports the first violated structural invariant, if any.
func CheckInvariants(b *Bundle, items []LockedItem) error {
	if b.CurrentIndex < 0 || b.CurrentIndex > len(items) {
		return fmt.Errorf("bundle %d: current index %d out of range [0,%d]", b.ID, b.CurrentIndex, len(items))
	}
	for i, it := range items {
		if it.Index != i {
			return fmt.Errorf("bundle %d: item at position %d has index %d", b.ID, i, it.Index)
		}
		if i < b.CurrentIndex && it.Locked {
			return fmt.Errorf("bundle %d: item %d before cursor is locked", b.ID, i)
		}
		if i >= b.CurrentIndex && !it.Locked && !b.Destroyed {
			return fmt.Errorf("bundle %d: item %d at or after cursor is unlocked", b.ID, i)
		}
	}
	if b.Principal.Sign() < 0 {
		return fmt.Errorf("bundle %d: negative principal", b.ID)
	}
	if b.Destroyed && !b.Principal.IsZero() {
		return fmt.Errorf("bundle %d: destroyed with principal %s", b.ID, b.Principal)
	}
	return nil
}
